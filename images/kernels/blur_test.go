package kernels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-autopan/common"
	"github.com/nvr-ai/go-autopan/images"
)

func TestBoxBlurRadiusZeroReturnsCopy(t *testing.T) {
	src := images.NewGray(8, 7)
	src.Set(3, 3, 200)

	out := BoxBlur(src, Options{Radius: 0})
	require.Equal(t, src.Size(), out.Size())
	assert.Equal(t, src.Pix, out.Pix)

	out.Set(3, 3, 0)
	assert.Equal(t, uint8(200), src.At(3, 3), "copy must not alias the source")
}

func TestBoxBlurConstantIsUnchanged(t *testing.T) {
	src := images.NewGray(40, 30)
	for i := range src.Pix {
		src.Pix[i] = 77
	}

	for _, edge := range []images.EdgeMode{
		images.ClampEdgeMode,
		images.MirrorEdgeMode,
		images.Reflect101EdgeMode,
		images.WrapEdgeMode,
	} {
		t.Run(string(edge), func(t *testing.T) {
			out := BoxBlur(src, Options{Radius: 4, Edge: edge, Parallel: true})
			for _, v := range out.Pix {
				require.Equal(t, uint8(77), v)
			}
		})
	}
}

func TestBoxBlurEdgeModes(t *testing.T) {
	src := images.NewGray(3, 1)
	src.Set(1, 0, 255)

	tests := []struct {
		name string
		edge images.EdgeMode
		want []uint8
	}{
		// Window of 3 over [a b c] with a=c=0, b=255.
		{name: "clamp", edge: images.ClampEdgeMode, want: []uint8{85, 85, 85}},
		{name: "reflect101", edge: images.Reflect101EdgeMode, want: []uint8{170, 85, 170}},
		{name: "wrap", edge: images.WrapEdgeMode, want: []uint8{85, 85, 85}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := BoxBlur(src, Options{Radius: 1, Edge: tt.edge})
			// The vertical pass over a single row is the identity.
			assert.Equal(t, tt.want, out.Pix)
		})
	}
}

func TestBoxBlurParallelMatchesSerial(t *testing.T) {
	src := genGray(300, 200)
	serial := BoxBlur(src, Options{Radius: 5, Edge: images.Reflect101EdgeMode})
	parallel := BoxBlur(src, Options{Radius: 5, Edge: images.Reflect101EdgeMode, Parallel: true})
	assert.Equal(t, serial.Pix, parallel.Pix)
}

func TestBoxBlurPoolReuse(t *testing.T) {
	var pool Pool
	src := genGray(64, 48)
	first := BoxBlur(src, Options{Radius: 3, Pool: &pool})
	second := BoxBlur(src, Options{Radius: 3, Pool: &pool})
	assert.Equal(t, first.Pix, second.Pix)
}

func TestBoxRasterBlur(t *testing.T) {
	r := NewBoxRaster()
	src := images.NewGray(50, 50)
	src.Fill(common.Box(20, 20, 10, 10), 255)

	out := r.Blur(src, 21)
	require.Equal(t, src.Size(), out.Size())
	assert.Greater(t, out.At(25, 25), uint8(0))
	assert.Less(t, out.At(25, 25), uint8(255))
	assert.Equal(t, uint8(0), out.At(0, 0))
}
