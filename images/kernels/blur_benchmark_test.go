package kernels

import (
	"math/rand"
	"testing"

	"github.com/nvr-ai/go-autopan/images"
)

func genGray(w, h int) *images.Gray {
	g := images.NewGray(w, h)
	rng := rand.New(rand.NewSource(1))
	for i := range g.Pix {
		g.Pix[i] = uint8(rng.Intn(256))
	}
	return g
}

func BenchmarkGaussian_720p_k21(b *testing.B) {
	g := genGray(1280, 720)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = images.GaussianBlur(g, 21, images.Reflect101EdgeMode)
	}
}

func BenchmarkBox_720p_r10(b *testing.B) {
	g := genGray(1280, 720)
	opt := Options{Radius: 10, Edge: images.Reflect101EdgeMode, Parallel: true}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = BoxBlur(g, opt)
	}
}

func BenchmarkBox_720p_r10_Pooled(b *testing.B) {
	g := genGray(1280, 720)
	opt := Options{Radius: 10, Edge: images.Reflect101EdgeMode, Parallel: true, Pool: &Pool{}}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = BoxBlur(g, opt)
	}
}

func BenchmarkBox_1080p_r10(b *testing.B) {
	g := genGray(1920, 1080)
	opt := Options{Radius: 10, Edge: images.Reflect101EdgeMode, Parallel: true}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = BoxBlur(g, opt)
	}
}
