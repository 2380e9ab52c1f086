// Package pipeline - Batch orchestration of one autopan run.
package pipeline

import (
	"context"
	"image"
	"log/slog"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-autopan/common"
	"github.com/nvr-ai/go-autopan/config"
	"github.com/nvr-ai/go-autopan/images"
	"github.com/nvr-ai/go-autopan/images/kernels"
	"github.com/nvr-ai/go-autopan/motion"
	"github.com/nvr-ai/go-autopan/profiler"
	"github.com/nvr-ai/go-autopan/render"
	"github.com/nvr-ai/go-autopan/source"
	"github.com/nvr-ai/go-autopan/store"
	"github.com/nvr-ai/go-autopan/viewport"
)

// ErrBackendUnavailable is returned when the configured backend needs a
// raster that was not supplied in Deps.
var ErrBackendUnavailable = errors.New("raster backend unavailable")

// Stage names recorded in the profiler.
const (
	StageLoad   = "load"
	StageDetect = "detect"
	StageTrack  = "track"
	StageRender = "render"
	StageStore  = "store"
)

// Deps are the collaborators of a run. Every field is optional; nil fields
// are built from the configuration.
type Deps struct {
	// Source overrides the frame directory named by the config input.
	Source source.Source
	// Raster overrides the backend named by the config. It is required for
	// the opencv backend.
	Raster motion.Raster
	// FrameSink and ViewportSink receive the annotated frames and crops when
	// rendering. Run closes them.
	FrameSink    render.VideoSink
	ViewportSink render.VideoSink
	// Store receives the results. When nil and the config names a database,
	// Run opens (and closes) it.
	Store *store.Store
	// Profiler records stage durations.
	Profiler *profiler.Profiler
	// Logger receives stage progress.
	Logger *slog.Logger
}

// Result is the outcome of a run.
type Result struct {
	// RunID is the store ID, empty when nothing was persisted.
	RunID string
	// Frame is the size of the analyzed frames.
	Frame common.Size
	// Viewport is the virtual camera size.
	Viewport common.Size
	// Motion holds the boxes of every frame; Motion[0] is always empty.
	Motion [][]common.BoundingBox
	// Positions holds the viewport center of every frame.
	Positions []common.Point
}

// Run processes one clip: load, detect, track, then optionally render and
// store. A size mismatch between frames aborts the run.
//
// Arguments:
//   - ctx: Cancels loading, detection and rendering.
//   - cfg: A validated configuration.
//   - deps: Optional collaborators.
//
// Returns:
//   - *Result: Motion and viewport results.
//   - error: Configuration, I/O or SizeMismatch errors.
//
// @example
// res, err := pipeline.Run(ctx, cfg, pipeline.Deps{Logger: logger})
func Run(ctx context.Context, cfg config.Config, deps Deps) (res *Result, err error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prof := deps.Profiler
	if prof == nil {
		prof = profiler.New(0)
	}

	writer := &render.Writer{
		Dir:          cfg.Output,
		FrameSink:    deps.FrameSink,
		ViewportSink: deps.ViewportSink,
		Logger:       logger,
	}
	defer func() {
		if cerr := writer.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	vp, err := cfg.ViewportSize()
	if err != nil {
		return nil, err
	}
	raster, err := selectRaster(cfg.Backend, deps.Raster)
	if err != nil {
		return nil, err
	}
	detector, err := motion.New(cfg.Config, raster)
	if err != nil {
		return nil, err
	}

	src := deps.Source
	if src == nil {
		if src, err = directorySource(cfg, logger); err != nil {
			return nil, err
		}
	}

	done := prof.StartOperation(StageLoad)
	frames, err := src.Frames(ctx)
	elapsed := done()
	if err != nil {
		return nil, errors.Wrap(err, "load frames")
	}
	logger.Info("loaded frames", slog.Int("frames", len(frames)), slog.Duration("elapsed", elapsed))

	res = &Result{Viewport: vp, Motion: [][]common.BoundingBox{}, Positions: []common.Point{}}
	if len(frames) == 0 {
		logger.Warn("no frames to process", slog.String("input", cfg.Input))
		return res, nil
	}
	if frames[0] == nil {
		return nil, errors.Wrap(motion.ErrNilFrame, "frame 0")
	}
	res.Frame = common.SizeOf(frames[0])

	done = prof.StartOperation(StageDetect)
	res.Motion, err = detector.DetectAll(ctx, frames)
	elapsed = done()
	if err != nil {
		return nil, errors.Wrap(err, "detect motion")
	}
	total := 0
	for _, boxes := range res.Motion {
		total += len(boxes)
		prof.RecordMetric("motion_boxes", float64(len(boxes)))
	}
	logger.Info("detected motion",
		slog.Int("frames", len(frames)),
		slog.Int("boxes", total),
		slog.String("backend", cfg.Backend),
		slog.Duration("elapsed", elapsed),
	)

	// Detection already rejected frames of differing size.
	sizes := make([]common.Size, len(frames))
	for i := range sizes {
		sizes[i] = res.Frame
	}
	done = prof.StartOperation(StageTrack)
	res.Positions, err = viewport.Track(sizes, res.Motion, vp, cfg.Smoothing)
	elapsed = done()
	if err != nil {
		return nil, errors.Wrap(err, "track viewport")
	}
	logger.Info("tracked viewport",
		slog.String("viewport", vp.String()),
		slog.Float64("smoothing", cfg.Smoothing),
		slog.Duration("elapsed", elapsed),
	)

	if cfg.Render {
		done = prof.StartOperation(StageRender)
		err = renderClip(ctx, writer, frames, res)
		elapsed = done()
		if err != nil {
			return nil, err
		}
		logger.Info("rendered output", slog.String("dir", cfg.Output), slog.Duration("elapsed", elapsed))
	}

	if deps.Store != nil || cfg.Database != "" {
		done = prof.StartOperation(StageStore)
		res.RunID, err = persist(ctx, cfg, deps.Store, res)
		elapsed = done()
		if err != nil {
			return nil, err
		}
		logger.Info("stored results", slog.String("run_id", res.RunID), slog.Duration("elapsed", elapsed))
	}

	return res, nil
}

// selectRaster maps a backend name to a raster. An injected raster always wins.
func selectRaster(backend string, injected motion.Raster) (motion.Raster, error) {
	if injected != nil {
		return injected, nil
	}
	switch backend {
	case config.BackendGaussian, "":
		return images.NewSoftware(), nil
	case config.BackendBox:
		return kernels.NewBoxRaster(), nil
	default:
		return nil, errors.Wrapf(ErrBackendUnavailable, "backend %q", backend)
	}
}

func directorySource(cfg config.Config, logger *slog.Logger) (*source.Directory, error) {
	if cfg.Input == "" {
		return nil, errors.Wrap(config.ErrInvalidConfig, "input is required")
	}
	size, err := cfg.ResolutionSize()
	if err != nil {
		return nil, err
	}
	return &source.Directory{
		Path:     cfg.Input,
		Interval: source.SampleInterval(cfg.FPS, cfg.TargetFPS),
		Resize:   size,
		Workers:  cfg.Workers,
		Logger:   logger,
	}, nil
}

func renderClip(ctx context.Context, w *render.Writer, frames []image.Image, res *Result) error {
	err := w.Render(ctx, render.Clip{
		Frames:    frames,
		Motion:    res.Motion,
		Positions: res.Positions,
		Viewport:  res.Viewport,
	})
	if err != nil {
		return errors.Wrap(err, "render")
	}
	return render.PlotTrajectory(res.Positions, res.Frame, filepath.Join(w.Dir, render.TrajectoryFile))
}

func persist(ctx context.Context, cfg config.Config, db *store.Store, res *Result) (string, error) {
	if db == nil {
		opened, err := store.Open(cfg.Database)
		if err != nil {
			return "", err
		}
		defer opened.Close()
		db = opened
	}

	runID, err := db.RecordRun(ctx, store.Run{
		Source:    cfg.Input,
		Frames:    len(res.Positions),
		Frame:     res.Frame,
		Viewport:  res.Viewport,
		Smoothing: cfg.Smoothing,
		Threshold: cfg.Threshold,
		MinArea:   cfg.MinArea,
	})
	if err != nil {
		return "", err
	}
	if err := db.RecordMotion(ctx, runID, res.Motion); err != nil {
		return "", err
	}
	if err := db.RecordViewport(ctx, runID, res.Positions); err != nil {
		return "", err
	}
	return runID, nil
}
