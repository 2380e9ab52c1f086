// Package config - File and default configuration of an autopan run.
package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-autopan/common"
	"github.com/nvr-ai/go-autopan/images"
	"github.com/nvr-ai/go-autopan/motion"
)

// ErrInvalidConfig is returned by Validate, wrapped with the offending key.
var ErrInvalidConfig = errors.New("invalid config")

// Blur backends selectable with the backend key.
const (
	BackendGaussian = "gaussian"
	BackendBox      = "box"
	BackendOpenCV   = "opencv"
)

// Config is the complete configuration of a run. Keys mirror the CLI flags.
type Config struct {
	// Input is a frame directory, or a video file when built with withcv.
	Input string `yaml:"input" json:"input"`
	// Output is the directory receiving rendered frames, videos and the chart.
	Output string `yaml:"output" json:"output"`
	// Database is the SQLite results file. Empty disables persistence.
	Database string `yaml:"database" json:"database"`

	// FPS is the frame rate of the input; zero asks the source (video only).
	FPS float64 `yaml:"fps" json:"fps"`
	// TargetFPS is the analysis frame rate.
	TargetFPS float64 `yaml:"target_fps" json:"target_fps"`
	// Resolution is a preset name ("720p") or "WxH"; empty keeps the input size.
	Resolution string `yaml:"resolution" json:"resolution"`

	// Viewport is the virtual camera size, "WxH".
	Viewport string `yaml:"viewport" json:"viewport"`
	// Smoothing is the tracker factor in (0, 1].
	Smoothing float64 `yaml:"smoothing" json:"smoothing"`

	motion.Config `yaml:",inline"`
	// Backend selects the raster implementation: gaussian, box or opencv.
	Backend string `yaml:"backend" json:"backend"`

	// Render toggles frame, crop and video output.
	Render bool `yaml:"render" json:"render"`
	// VideoFPS is the frame rate of the encoded videos.
	VideoFPS float64 `yaml:"video_fps" json:"video_fps"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Default returns the configuration the pipeline was tuned with.
func Default() Config {
	return Config{
		Output:     "output",
		TargetFPS:  5,
		Resolution: "1280x720",
		Viewport:   "640x360",
		Smoothing:  0.3,
		Config:     motion.DefaultConfig(),
		Backend:    BackendGaussian,
		Render:     true,
		VideoFPS:   5,
		LogLevel:   "info",
	}
}

// Load reads a YAML file over the defaults and validates the result.
//
// @example
// cfg, err := config.Load("autopan.yaml")
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks every key and returns ErrInvalidConfig wrapped with the
// first bad one.
func (c Config) Validate() error {
	if c.TargetFPS <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "target_fps %v must be positive", c.TargetFPS)
	}
	if c.FPS < 0 {
		return errors.Wrapf(ErrInvalidConfig, "fps %v is negative", c.FPS)
	}
	if c.VideoFPS <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "video_fps %v must be positive", c.VideoFPS)
	}
	if !(c.Smoothing > 0 && c.Smoothing <= 1) {
		return errors.Wrapf(ErrInvalidConfig, "smoothing %v outside (0, 1]", c.Smoothing)
	}
	if _, err := c.ResolutionSize(); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "resolution: %v", err)
	}
	vp, err := c.ViewportSize()
	if err != nil {
		return errors.Wrapf(ErrInvalidConfig, "viewport: %v", err)
	}
	if res, _ := c.ResolutionSize(); !res.Empty() && (vp.W > res.W || vp.H > res.H) {
		return errors.Wrapf(ErrInvalidConfig, "viewport %v larger than resolution %v", vp, res)
	}
	if err := c.Config.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	switch c.Backend {
	case BackendGaussian, BackendBox, BackendOpenCV:
	default:
		return errors.Wrapf(ErrInvalidConfig, "backend %q", c.Backend)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "log_level: %v", err)
	}
	return nil
}

// ResolutionSize parses Resolution. An empty value yields a zero size.
func (c Config) ResolutionSize() (common.Size, error) {
	if strings.TrimSpace(c.Resolution) == "" {
		return common.Size{}, nil
	}
	return images.ParseSize(c.Resolution)
}

// ViewportSize parses Viewport.
func (c Config) ViewportSize() (common.Size, error) {
	return images.ParseSize(c.Viewport)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, errors.Wrapf(err, "level %q", name)
	}
	return level, nil
}
