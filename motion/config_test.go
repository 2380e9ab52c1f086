package motion

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "no blur", mutate: func(c *Config) { c.BlurKernel = 1 }},
		{name: "no dilation", mutate: func(c *Config) { c.DilateIterations = 0 }},
		{name: "even blur", mutate: func(c *Config) { c.BlurKernel = 20 }, wantErr: true},
		{name: "zero blur", mutate: func(c *Config) { c.BlurKernel = 0 }, wantErr: true},
		{name: "negative threshold", mutate: func(c *Config) { c.Threshold = -1 }, wantErr: true},
		{name: "threshold above 255", mutate: func(c *Config) { c.Threshold = 256 }, wantErr: true},
		{name: "negative min area", mutate: func(c *Config) { c.MinArea = -1 }, wantErr: true},
		{name: "zero dilate kernel", mutate: func(c *Config) { c.DilateKernel = 0 }, wantErr: true},
		{name: "negative iterations", mutate: func(c *Config) { c.DilateIterations = -1 }, wantErr: true},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -2 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			err := c.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidConfig))

			_, err = New(c, nil)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 25, c.Threshold)
	assert.Equal(t, 100, c.MinArea)
	assert.Equal(t, 21, c.BlurKernel)
	assert.Equal(t, 5, c.DilateKernel)
	assert.Equal(t, 2, c.DilateIterations)
	assert.Positive(t, c.workers())
}
