//go:build withcv

package opencv

import (
	"context"
	"image"
	"log/slog"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-autopan/common"
	"github.com/nvr-ai/go-autopan/source"
)

// VideoCodec is the FourCC used for encoded output.
const VideoCodec = "mp4v"

// VideoSource reads the sampled frames of a video file.
type VideoSource struct {
	// Path is the video file.
	Path string
	// FPS overrides the frame rate reported by the container. Zero uses the container's.
	FPS float64
	// TargetFPS is the analysis frame rate.
	TargetFPS float64
	// Resize scales every kept frame. The zero value keeps the original size.
	Resize common.Size
	// Logger receives progress messages. nil uses slog.Default().
	Logger *slog.Logger
}

// Frames decodes the file and keeps every SampleInterval-th frame.
//
// @example
// src := &opencv.VideoSource{Path: "clip.mp4", TargetFPS: 5, Resize: common.Size{W: 1280, H: 720}}
// frames, err := src.Frames(ctx)
func (v *VideoSource) Frames(ctx context.Context) ([]image.Image, error) {
	logger := v.Logger
	if logger == nil {
		logger = slog.Default()
	}

	capture, err := gocv.VideoCaptureFile(v.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "open video %s", v.Path)
	}
	defer capture.Close()

	fps := v.FPS
	if fps <= 0 {
		fps = capture.Get(gocv.VideoCaptureFPS)
	}
	interval := source.SampleInterval(fps, v.TargetFPS)

	mat := gocv.NewMat()
	defer mat.Close()
	resized := gocv.NewMat()
	defer resized.Close()

	var frames []image.Image
	for index := 0; capture.Read(&mat); index++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if mat.Empty() || index%interval != 0 {
			continue
		}

		out := mat
		if !v.Resize.Empty() && (mat.Cols() != v.Resize.W || mat.Rows() != v.Resize.H) {
			if err := gocv.Resize(mat, &resized, image.Pt(v.Resize.W, v.Resize.H), 0, 0, gocv.InterpolationLinear); err != nil {
				return nil, errors.Wrapf(err, "resize frame %d", index)
			}
			out = resized
		}

		img, err := out.ToImage()
		if err != nil {
			return nil, errors.Wrapf(err, "convert frame %d", index)
		}
		frames = append(frames, img)
	}

	logger.Info("read video",
		slog.String("path", v.Path),
		slog.Float64("fps", fps),
		slog.Int("interval", interval),
		slog.Int("frames", len(frames)),
	)
	return frames, nil
}

// VideoWriter encodes frames into a video file. The file is opened on the
// first Write with that frame's size; later frames are resized to match.
type VideoWriter struct {
	path   string
	fps    float64
	size   common.Size
	writer *gocv.VideoWriter
}

// NewVideoWriter creates a writer for path at fps frames per second.
//
// @example
// w := opencv.NewVideoWriter("output/motion_detection.mp4", 5)
// defer w.Close()
func NewVideoWriter(path string, fps float64) *VideoWriter {
	return &VideoWriter{path: path, fps: fps}
}

// Write appends one frame.
func (w *VideoWriter) Write(img image.Image) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return errors.Wrap(err, "convert frame")
	}
	defer mat.Close()

	if w.writer == nil {
		w.size = common.Size{W: mat.Cols(), H: mat.Rows()}
		w.writer, err = gocv.VideoWriterFile(w.path, VideoCodec, w.fps, w.size.W, w.size.H, true)
		if err != nil {
			return errors.Wrapf(err, "open video writer %s", w.path)
		}
	}

	if mat.Cols() != w.size.W || mat.Rows() != w.size.H {
		resized := gocv.NewMat()
		defer resized.Close()
		if err := gocv.Resize(mat, &resized, image.Pt(w.size.W, w.size.H), 0, 0, gocv.InterpolationLinear); err != nil {
			return errors.Wrap(err, "resize frame")
		}
		return errors.Wrapf(w.writer.Write(resized), "write %s", w.path)
	}
	return errors.Wrapf(w.writer.Write(mat), "write %s", w.path)
}

// Close finalizes the file. Closing a writer that never received a frame
// is a no-op.
func (w *VideoWriter) Close() error {
	if w.writer == nil {
		return nil
	}
	err := w.writer.Close()
	w.writer = nil
	return errors.Wrapf(err, "close %s", w.path)
}
