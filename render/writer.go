package render

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-autopan/common"
)

const (
	// FramesDir holds the annotated full frames.
	FramesDir = "frames"
	// ViewportDir holds the viewport crops.
	ViewportDir = "viewport"
	// DefaultQuality is the JPEG quality of persisted frames.
	DefaultQuality = 90
)

// VideoSink consumes rendered frames in order, e.g. a video encoder.
type VideoSink interface {
	Write(img image.Image) error
	Close() error
}

// Writer persists annotated frames and viewport crops under Dir:
//
//	Dir/frames/frame_0001.jpg
//	Dir/viewport/viewport_0001.jpg
//
// Frame numbers in file names are one-based.
type Writer struct {
	// Dir is the output root.
	Dir string
	// Quality is the JPEG quality. Zero means DefaultQuality.
	Quality int
	// FrameSink and ViewportSink optionally receive every annotated frame and crop.
	FrameSink    VideoSink
	ViewportSink VideoSink
	// Logger receives progress messages. nil uses slog.Default().
	Logger *slog.Logger
}

// Clip is everything the renderer needs about a processed clip.
type Clip struct {
	Frames    []image.Image
	Motion    [][]common.BoundingBox
	Positions []common.Point
	Viewport  common.Size
}

// Render writes every frame of the clip, stopping early when ctx is done.
// Sinks are closed before returning.
//
// @example
// w := &render.Writer{Dir: "output"}
// err := w.Render(ctx, render.Clip{Frames: frames, Motion: results, Positions: positions, Viewport: vp})
func (w *Writer) Render(ctx context.Context, clip Clip) (err error) {
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	if len(clip.Motion) != len(clip.Frames) || len(clip.Positions) != len(clip.Frames) {
		return errors.Errorf("render: %d frames, %d motion results, %d positions",
			len(clip.Frames), len(clip.Motion), len(clip.Positions))
	}
	if err := w.prepare(); err != nil {
		return err
	}

	for i, frame := range clip.Frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.WriteFrame(frame, clip.Motion[i], clip.Positions[i], clip.Viewport, i, len(clip.Frames)); err != nil {
			return err
		}
	}

	w.logger().Info("rendered clip",
		slog.String("dir", w.Dir),
		slog.Int("frames", len(clip.Frames)),
	)
	return nil
}

// WriteFrame renders and persists a single frame.
func (w *Writer) WriteFrame(frame image.Image, boxes []common.BoundingBox, pos common.Point, vp common.Size, index, total int) error {
	if err := w.prepare(); err != nil {
		return err
	}

	vis := Annotate(frame, boxes, pos, vp, index, total)
	crop := Crop(frame, pos, vp, index)

	if err := w.save(filepath.Join(w.Dir, FramesDir, fmt.Sprintf("frame_%04d.jpg", index+1)), vis); err != nil {
		return err
	}
	if err := w.save(filepath.Join(w.Dir, ViewportDir, fmt.Sprintf("viewport_%04d.jpg", index+1)), crop); err != nil {
		return err
	}

	if w.FrameSink != nil {
		if err := w.FrameSink.Write(vis); err != nil {
			return errors.Wrapf(err, "write frame %d to video", index)
		}
	}
	if w.ViewportSink != nil {
		if err := w.ViewportSink.Write(crop); err != nil {
			return errors.Wrapf(err, "write viewport %d to video", index)
		}
	}
	return nil
}

// Close closes the sinks. It is safe to call more than once.
func (w *Writer) Close() error {
	var first error
	for _, sink := range []*VideoSink{&w.FrameSink, &w.ViewportSink} {
		if *sink == nil {
			continue
		}
		if err := (*sink).Close(); err != nil && first == nil {
			first = errors.Wrap(err, "close video sink")
		}
		*sink = nil
	}
	return first
}

func (w *Writer) prepare() error {
	for _, dir := range []string{FramesDir, ViewportDir} {
		if err := os.MkdirAll(filepath.Join(w.Dir, dir), 0o755); err != nil {
			return errors.Wrapf(err, "create %s", filepath.Join(w.Dir, dir))
		}
	}
	return nil
}

func (w *Writer) save(path string, img image.Image) error {
	quality := w.Quality
	if quality == 0 {
		quality = DefaultQuality
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
