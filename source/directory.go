package source

import (
	"context"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/nvr-ai/go-autopan/common"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Frame is the trailing number of the file name, or -1 when it has none.
	Frame int
}

var frameNumber = regexp.MustCompile(`(\d+)$`)

// ListDirectoryImageFiles lists the frame files of a directory in playback
// order without reading them.
//
// Files with a trailing number in their name ("frame_0012.jpg", "frame-12.png")
// are ordered by that number; files without one follow in name order.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: One entry per JPEG, PNG or WebP file, with Data unset.
// - error: Error if the directory cannot be read.
func ListDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read frame directory %s", dir)
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() || FormatFromPath(entry.Name()) == FormatUnknown {
			continue
		}
		frame := -1
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if m := frameNumber.FindString(stem); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				frame = n
			}
		}
		files = append(files, ImageFile{Path: filepath.Join(dir, entry.Name()), Frame: frame})
	}

	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if (a.Frame < 0) != (b.Frame < 0) {
			return a.Frame >= 0
		}
		if a.Frame != b.Frame {
			return a.Frame < b.Frame
		}
		return a.Path < b.Path
	})
	return files, nil
}

// LoadDirectoryImageFiles reads all image files from a directory in playback order.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: Slice of ImageFile, each containing the raw bytes of an image file.
// - error: Error if loading fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := ListDirectoryImageFiles(dir)
	if err != nil {
		return nil, err
	}
	for i := range files {
		data, err := os.ReadFile(files[i].Path)
		if err != nil {
			return nil, errors.Wrapf(err, "read frame %s", files[i].Path)
		}
		files[i].Data = data
	}
	return files, nil
}

// Directory reads a clip that was extracted to still images.
type Directory struct {
	// Path is the directory holding the frames.
	Path string
	// Interval keeps every Interval-th file. Values below 1 keep every file.
	Interval int
	// Resize scales every frame to this size. The zero value keeps the original size.
	Resize common.Size
	// Workers bounds concurrent decoding. Zero means one worker per file.
	Workers int
	// Logger receives progress messages. nil uses slog.Default().
	Logger *slog.Logger
}

// Frames decodes the sampled frames of the directory.
//
// @example
// src := &source.Directory{Path: "clip/", Interval: source.SampleInterval(30, 5)}
// frames, err := src.Frames(ctx)
func (d *Directory) Frames(ctx context.Context) ([]image.Image, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	files, err := ListDirectoryImageFiles(d.Path)
	if err != nil {
		return nil, err
	}

	interval := max(d.Interval, 1)
	sampled := make([]ImageFile, 0, len(files)/interval+1)
	for i := 0; i < len(files); i += interval {
		sampled = append(sampled, files[i])
	}

	frames := make([]image.Image, len(sampled))
	g, gctx := errgroup.WithContext(ctx)
	if d.Workers > 0 {
		g.SetLimit(d.Workers)
	}
	for i, file := range sampled {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file.Path)
			if err != nil {
				return errors.Wrapf(err, "read frame %s", file.Path)
			}
			img, err := DecodeResized(data, FormatFromPath(file.Path), d.Resize)
			if err != nil {
				return errors.Wrapf(err, "frame %s", file.Path)
			}
			frames[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("loaded frames",
		slog.String("path", d.Path),
		slog.Int("files", len(files)),
		slog.Int("interval", interval),
		slog.Int("frames", len(frames)),
	)
	return frames, nil
}
