// Command autopan detects motion in a clip and renders a virtual camera that
// follows it.
//
//	autopan -input frames/ -fps 30 -target-fps 5 -viewport 640x360
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-autopan/config"
	"github.com/nvr-ai/go-autopan/motion"
	"github.com/nvr-ai/go-autopan/pipeline"
	"github.com/nvr-ai/go-autopan/profiler"
	"github.com/nvr-ai/go-autopan/render"
	"github.com/nvr-ai/go-autopan/source"
)

// Output video names, relative to the output directory.
const (
	MotionVideo   = "motion_detection.mp4"
	ViewportVideo = "viewport_tracking.mp4"
)

var supportedVideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}

// OpenCV hooks. They stay nil unless the binary is built with withcv.
var (
	openVideo     func(cfg config.Config, logger *slog.Logger) source.Source
	openCVRaster  func() motion.Raster
	openVideoSink func(path string, fps float64) render.VideoSink
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "autopan: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	cfg, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	deps, err := buildDeps(cfg, logger)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(ctx, cfg, deps)
	if err != nil {
		return err
	}
	deps.Profiler.Report(logger)

	logger.Info("done",
		slog.Int("frames", len(res.Positions)),
		slog.String("output", cfg.Output),
		slog.String("run_id", res.RunID),
	)
	return nil
}

// parseArgs loads the optional config file, then applies the flags that
// were set explicitly on top of it.
func parseArgs(args []string, stderr io.Writer) (config.Config, error) {
	fs := flag.NewFlagSet("autopan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	def := config.Default()
	var (
		configPath = fs.String("config", "", "YAML configuration file")
		input      = fs.String("input", def.Input, "Frame directory or video file")
		output     = fs.String("output", def.Output, "Output directory")
		database   = fs.String("db", def.Database, "SQLite results database (empty disables)")
		fps        = fs.Float64("fps", def.FPS, "Frame rate of the input (0 asks the video container)")
		targetFPS  = fs.Float64("target-fps", def.TargetFPS, "Analysis frame rate")
		resolution = fs.String("resolution", def.Resolution, "Analysis resolution, preset (720p) or WxH")
		vp         = fs.String("viewport", def.Viewport, "Viewport size, WxH")
		smoothing  = fs.Float64("smoothing", def.Smoothing, "Viewport smoothing factor in (0, 1]")
		threshold  = fs.Int("threshold", def.Threshold, "Pixel difference threshold")
		minArea    = fs.Int("min-area", def.MinArea, "Minimum motion region area in pixels")
		blur       = fs.Int("blur", def.BlurKernel, "Blur kernel size (odd)")
		backend    = fs.String("backend", def.Backend, "Raster backend: gaussian, box or opencv")
		workers    = fs.Int("workers", def.Workers, "Detection workers (0 uses every CPU)")
		logLevel   = fs.String("log-level", def.LogLevel, "Log level: debug, info, warn or error")
		noRender   = fs.Bool("no-render", false, "Skip frame, crop and video output")
	)
	if err := fs.Parse(args); err != nil {
		return def, err
	}

	cfg := def
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return def, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input = *input
		case "output":
			cfg.Output = *output
		case "db":
			cfg.Database = *database
		case "fps":
			cfg.FPS = *fps
		case "target-fps":
			cfg.TargetFPS = *targetFPS
		case "resolution":
			cfg.Resolution = *resolution
		case "viewport":
			cfg.Viewport = *vp
		case "smoothing":
			cfg.Smoothing = *smoothing
		case "threshold":
			cfg.Threshold = *threshold
		case "min-area":
			cfg.MinArea = *minArea
		case "blur":
			cfg.BlurKernel = *blur
		case "backend":
			cfg.Backend = *backend
		case "workers":
			cfg.Workers = *workers
		case "log-level":
			cfg.LogLevel = *logLevel
		case "no-render":
			cfg.Render = !*noRender
		}
	})

	if cfg.Input == "" {
		return cfg, errors.Wrap(config.ErrInvalidConfig, "input is required")
	}
	return cfg, cfg.Validate()
}

func buildDeps(cfg config.Config, logger *slog.Logger) (pipeline.Deps, error) {
	deps := pipeline.Deps{Profiler: profiler.New(0), Logger: logger}

	if isVideo(cfg.Input) {
		if openVideo == nil {
			return deps, errors.Errorf("video input %s needs a build with -tags withcv", cfg.Input)
		}
		deps.Source = openVideo(cfg, logger)
	}

	if cfg.Backend == config.BackendOpenCV {
		if openCVRaster == nil {
			return deps, errors.Wrap(pipeline.ErrBackendUnavailable, "opencv backend needs a build with -tags withcv")
		}
		deps.Raster = openCVRaster()
	}

	if cfg.Render && openVideoSink != nil {
		deps.FrameSink = openVideoSink(filepath.Join(cfg.Output, MotionVideo), cfg.VideoFPS)
		deps.ViewportSink = openVideoSink(filepath.Join(cfg.Output, ViewportVideo), cfg.VideoFPS)
	}
	return deps, nil
}

func isVideo(path string) bool {
	return slices.Contains(supportedVideoExtensions, strings.ToLower(filepath.Ext(path)))
}
