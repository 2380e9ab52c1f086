package motion

import (
	"runtime"

	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned by Config.Validate, wrapped with the offending field.
var ErrInvalidConfig = errors.New("invalid motion config")

// Config contains the tuning parameters of the frame differencing pipeline.
type Config struct {
	// Threshold is the absolute luminance difference a pixel must exceed to count as motion.
	Threshold int `json:"threshold" yaml:"threshold"`
	// MinArea is the pixel count a region must exceed to be reported.
	MinArea int `json:"min_area" yaml:"min_area"`
	// BlurKernel is the Gaussian kernel size used for noise suppression. Must be odd.
	BlurKernel int `json:"blur_kernel" yaml:"blur_kernel"`
	// DilateKernel is the side of the rectangular dilation element.
	DilateKernel int `json:"dilate_kernel" yaml:"dilate_kernel"`
	// DilateIterations is how many times the mask is dilated.
	DilateIterations int `json:"dilate_iterations" yaml:"dilate_iterations"`
	// Workers bounds DetectAll concurrency. Zero means runtime.NumCPU().
	Workers int `json:"workers" yaml:"workers"`
}

// DefaultConfig returns the configuration the pipeline was tuned with.
//
// @example
// detector, err := motion.New(motion.DefaultConfig(), nil)
func DefaultConfig() Config {
	return Config{
		Threshold:        25,
		MinArea:          100,
		BlurKernel:       21,
		DilateKernel:     5,
		DilateIterations: 2,
	}
}

// Validate checks every field and returns ErrInvalidConfig wrapped with the
// name of the first bad one.
func (c Config) Validate() error {
	switch {
	case c.Threshold < 0 || c.Threshold > 255:
		return errors.Wrapf(ErrInvalidConfig, "threshold %d outside [0, 255]", c.Threshold)
	case c.MinArea < 0:
		return errors.Wrapf(ErrInvalidConfig, "min_area %d is negative", c.MinArea)
	case c.BlurKernel < 1 || c.BlurKernel%2 == 0:
		return errors.Wrapf(ErrInvalidConfig, "blur_kernel %d must be odd and positive", c.BlurKernel)
	case c.DilateKernel < 1:
		return errors.Wrapf(ErrInvalidConfig, "dilate_kernel %d must be positive", c.DilateKernel)
	case c.DilateIterations < 0:
		return errors.Wrapf(ErrInvalidConfig, "dilate_iterations %d is negative", c.DilateIterations)
	case c.Workers < 0:
		return errors.Wrapf(ErrInvalidConfig, "workers %d is negative", c.Workers)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}
