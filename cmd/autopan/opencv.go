//go:build withcv

package main

import (
	"log/slog"

	"github.com/nvr-ai/go-autopan/config"
	"github.com/nvr-ai/go-autopan/motion"
	"github.com/nvr-ai/go-autopan/opencv"
	"github.com/nvr-ai/go-autopan/render"
	"github.com/nvr-ai/go-autopan/source"
)

func init() {
	openVideo = func(cfg config.Config, logger *slog.Logger) source.Source {
		size, _ := cfg.ResolutionSize()
		return &opencv.VideoSource{
			Path:      cfg.Input,
			FPS:       cfg.FPS,
			TargetFPS: cfg.TargetFPS,
			Resize:    size,
			Logger:    logger,
		}
	}
	openCVRaster = func() motion.Raster {
		return opencv.NewRaster()
	}
	openVideoSink = func(path string, fps float64) render.VideoSink {
		return opencv.NewVideoWriter(path, fps)
	}
}
