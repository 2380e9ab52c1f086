// Package motion - Per-frame motion detection by frame differencing.
//
// For each frame index i > 0 the detector compares frame i with frame i-1:
//
//	luminance -> blur -> |curr - prev| -> threshold -> dilate -> components -> area filter
//
// The result for frame 0 is always empty. Detection of one pair depends on
// nothing but the two frames and the Config, so DetectAll runs pairs
// concurrently and reassembles the results by index.
package motion

import (
	"context"
	"image"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/nvr-ai/go-autopan/common"
	"github.com/nvr-ai/go-autopan/images"
)

// ErrSizeMismatch matches every SizeMismatchError.
var ErrSizeMismatch = common.ErrSizeMismatch

// ErrNilFrame is returned when a frame needed for a comparison is nil.
var ErrNilFrame = errors.New("nil frame")

// SizeMismatchError reports two consecutive frames with different dimensions.
type SizeMismatchError = common.SizeMismatchError

// Detector implements motion detection using frame differencing.
//
// A Detector holds no per-stream state; it is safe for concurrent use.
type Detector struct {
	config Config
	raster Raster
}

// New creates a detector.
//
// Arguments:
//   - config: Pipeline parameters. Validated before use.
//   - raster: Image backend. nil selects images.Software.
//
// Returns:
//   - *Detector: The configured detector.
//   - error: ErrInvalidConfig (wrapped) if the configuration is invalid.
//
// @example
// detector, err := motion.New(motion.DefaultConfig(), nil)
// if err != nil {
//     return err
// }
// boxes, err := detector.DetectMotion(frames, 1)
func New(config Config, raster Raster) (*Detector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if raster == nil {
		raster = images.NewSoftware()
	}
	return &Detector{config: config, raster: raster}, nil
}

// Config returns the detector configuration.
func (d *Detector) Config() Config {
	return d.config
}

// DetectMotion returns the motion regions of frames[index] relative to
// frames[index-1].
//
// Arguments:
//   - frames: The full frame sequence.
//   - index: The frame to analyze.
//
// Returns:
//   - []common.BoundingBox: Regions with more than MinArea pixels, in scan
//     order of their first pixel. Empty when index < 1 or index >= len(frames).
//   - error: *SizeMismatchError when the two frames differ in size.
//
// @example
// boxes, err := detector.DetectMotion(frames, 5)
// if errors.Is(err, motion.ErrSizeMismatch) {
//     // frames 4 and 5 have different shapes
// }
func (d *Detector) DetectMotion(frames []image.Image, index int) ([]common.BoundingBox, error) {
	if index < 1 || index >= len(frames) {
		return []common.BoundingBox{}, nil
	}
	if err := checkPair(frames, index); err != nil {
		return nil, err
	}

	prev := d.prepare(frames[index-1])
	curr := d.prepare(frames[index])
	return d.compare(index, prev, curr)
}

// DetectAll runs DetectMotion for every frame index.
//
// The blurred luminance of each frame is computed once and shared by the two
// pairs it belongs to. Work is spread over at most Config.Workers goroutines.
// The first error (or a cancelled ctx) aborts the batch.
//
// Arguments:
//   - ctx: Cancels outstanding work.
//   - frames: The full frame sequence.
//
// Returns:
//   - [][]common.BoundingBox: One result per frame, index-aligned; results[0] is empty.
//   - error: *SizeMismatchError for the first mismatching pair, or ctx.Err().
func (d *Detector) DetectAll(ctx context.Context, frames []image.Image) ([][]common.BoundingBox, error) {
	results := make([][]common.BoundingBox, len(frames))
	if len(frames) == 0 {
		return results, nil
	}
	results[0] = []common.BoundingBox{}

	// Sizes are checked up front so the reported mismatch does not depend on
	// goroutine scheduling.
	for i := 1; i < len(frames); i++ {
		if err := checkPair(frames, i); err != nil {
			return nil, err
		}
	}
	if frames[0] == nil {
		return nil, errors.Wrapf(ErrNilFrame, "frame 0")
	}
	if len(frames) == 1 {
		return results, nil
	}

	prepared := make([]*images.Gray, len(frames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.config.workers())
	for i := range frames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			prepared[i] = d.prepare(frames[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(d.config.workers())
	for i := 1; i < len(frames); i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			boxes, err := d.compare(i, prepared[i-1], prepared[i])
			if err != nil {
				return err
			}
			results[i] = boxes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// prepare computes the blurred luminance of one frame.
func (d *Detector) prepare(frame image.Image) *images.Gray {
	return d.raster.Blur(d.raster.Luminance(frame), d.config.BlurKernel)
}

// compare runs the difference, threshold, morphology and extraction steps on
// two prepared frames.
func (d *Detector) compare(index int, prev, curr *images.Gray) ([]common.BoundingBox, error) {
	delta, err := d.raster.AbsDiff(curr, prev)
	if err != nil {
		return nil, errors.Wrapf(err, "frame %d", index)
	}

	mask := d.raster.Threshold(delta, uint8(d.config.Threshold))
	mask = d.raster.Dilate(mask, d.config.DilateKernel, d.config.DilateIterations)

	components := d.raster.ConnectedComponents(mask)
	boxes := make([]common.BoundingBox, 0, len(components))
	for _, c := range components {
		if c.Area > d.config.MinArea {
			boxes = append(boxes, c.Box)
		}
	}
	return boxes, nil
}

func checkPair(frames []image.Image, index int) error {
	prev, curr := frames[index-1], frames[index]
	if prev == nil {
		return errors.Wrapf(ErrNilFrame, "frame %d", index-1)
	}
	if curr == nil {
		return errors.Wrapf(ErrNilFrame, "frame %d", index)
	}
	want, got := common.SizeOf(prev), common.SizeOf(curr)
	if want != got {
		return &SizeMismatchError{Index: index, Param: "frame", Want: want, Got: got}
	}
	return nil
}
