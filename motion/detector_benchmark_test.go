package motion

import (
	"context"
	"fmt"
	"image"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-autopan/images/kernels"
)

// addNoise perturbs every channel by up to ±amp with a fixed seed.
func addNoise(frame *image.RGBA, amp int, seed uint64) *image.RGBA {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range frame.Pix {
		if i%4 == 3 {
			continue
		}
		v := int(frame.Pix[i]) + r.IntN(2*amp+1) - amp
		frame.Pix[i] = uint8(min(max(v, 0), 255))
	}
	return frame
}

func TestNoiseResilience(t *testing.T) {
	gen := NewMockFrameGenerator(320, 240)
	frames := []image.Image{
		addNoise(gen.GenerateStaticFrame(), 10, 1),
		addNoise(gen.GenerateStaticFrame(), 10, 2),
		addNoise(gen.GenerateMotionFrame(100, 100, 50), 10, 3),
	}

	d := newDetector(t, DefaultConfig(), nil)
	results, err := d.DetectAll(context.Background(), frames)
	require.NoError(t, err)

	assert.Empty(t, results[1], "sensor noise alone is not motion")
	require.Len(t, results[2], 1)
	assert.InDelta(t, 125, results[2][0].Center().X, 2)
}

// BenchmarkMultiResolution measures one pair across common frame sizes.
func BenchmarkMultiResolution(b *testing.B) {
	resolutions := []struct {
		name   string
		width  int
		height int
	}{
		{"480p", 640, 480},
		{"720p", 1280, 720},
		{"1080p", 1920, 1080},
	}

	for _, res := range resolutions {
		for name, raster := range map[string]Raster{"gaussian": nil, "box": kernels.NewBoxRaster()} {
			b.Run(res.name+"/"+name, func(b *testing.B) {
				gen := NewMockFrameGenerator(res.width, res.height)
				frames := []image.Image{gen.GenerateStaticFrame(), gen.GenerateMotionFrame(res.width/4, res.height/4, 100)}
				d, err := New(DefaultConfig(), raster)
				require.NoError(b, err)

				b.ResetTimer()
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, err := d.DetectMotion(frames, 1); err != nil {
						b.Fatal(err)
					}
				}
				b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "pairs/s")
			})
		}
	}
}

// BenchmarkDetectAll measures a sequence with changing motion at 720p.
func BenchmarkDetectAll(b *testing.B) {
	gen := NewMockFrameGenerator(1280, 720)
	frames := make([]image.Image, 16)
	for i := range frames {
		frames[i] = gen.GenerateMotionFrame(200+i*40, 150+i*10, 100)
	}

	// Zero workers means one per CPU.
	for _, workers := range []int{1, 4, 0} {
		cfg := DefaultConfig()
		cfg.Workers = workers
		d, err := New(cfg, nil)
		require.NoError(b, err)

		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := d.DetectAll(context.Background(), frames); err != nil {
					b.Fatal(err)
				}
			}
			b.ReportMetric(float64(b.N*len(frames))/b.Elapsed().Seconds(), "frames/s")
		})
	}
}
