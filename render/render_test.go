package render

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-autopan/common"
)

func gradientFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	return img
}

func blackFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func hasColor(img *image.RGBA, r image.Rectangle, c color.RGBA) bool {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) == c {
				return true
			}
		}
	}
	return false
}

func TestAnnotate(t *testing.T) {
	frame := blackFrame(200, 150)
	black := color.RGBA{A: 255}

	vis := Annotate(frame, []common.BoundingBox{common.Box(100, 80, 30, 20)},
		common.Point{X: 100, Y: 75}, common.Size{W: 100, H: 50}, 2, 9)

	require.Equal(t, frame.Bounds(), vis.Bounds())
	assert.Equal(t, BoxColor, vis.RGBAAt(100, 80))
	assert.Equal(t, BoxColor, vis.RGBAAt(115, 80))
	assert.Equal(t, BoxColor, vis.RGBAAt(130, 90))
	assert.Equal(t, black, vis.RGBAAt(115, 90), "box interior untouched")

	assert.Equal(t, ViewportColor, vis.RGBAAt(50, 60))
	assert.Equal(t, ViewportColor, vis.RGBAAt(150, 60))
	assert.Equal(t, ViewportColor, vis.RGBAAt(80, 100))

	assert.True(t, hasColor(vis, image.Rect(10, 15, 120, 33), LabelColor), "label drawn")
	assert.Equal(t, black, frame.RGBAAt(100, 80), "source frame untouched")
}

func TestAnnotateClipsViewport(t *testing.T) {
	vis := Annotate(blackFrame(200, 150), nil, common.Point{X: 20, Y: 20}, common.Size{W: 100, H: 50}, 0, 1)
	assert.Equal(t, ViewportColor, vis.RGBAAt(0, 40))
	assert.Equal(t, ViewportColor, vis.RGBAAt(70, 40))
	assert.Equal(t, ViewportColor, vis.RGBAAt(40, 45))
	assert.Equal(t, image.Rect(0, 0, 70, 45), ViewportBounds(common.Point{X: 20, Y: 20}, common.Size{W: 100, H: 50}, common.Size{W: 200, H: 150}))
}

func TestCrop(t *testing.T) {
	frame := gradientFrame(200, 150)
	vp := common.Size{W: 100, H: 50}

	crop := Crop(frame, common.Point{X: 100, Y: 75}, vp, 0)
	require.Equal(t, image.Rect(0, 0, 100, 50), crop.Bounds())
	assert.Equal(t, frame.RGBAAt(140, 95), crop.RGBAAt(90, 45))
	assert.True(t, hasColor(crop, image.Rect(10, 15, 80, 33), LabelColor))

	for _, pos := range []common.Point{{X: 0, Y: 0}, {X: 199, Y: 149}, {X: 20, Y: 140}} {
		edge := Crop(frame, pos, vp, 3)
		assert.Equal(t, image.Rect(0, 0, 100, 50), edge.Bounds(), "crop at %v", pos)
	}

	offset := frame.SubImage(image.Rect(50, 50, 200, 150))
	sub := Crop(offset, common.Point{X: 60, Y: 30}, common.Size{W: 20, H: 20}, 0)
	assert.Equal(t, frame.RGBAAt(50+60-10+15, 50+30-10+15), sub.RGBAAt(15, 15))
}

type recordingSink struct {
	frames []image.Rectangle
	closed int
}

func (s *recordingSink) Write(img image.Image) error {
	s.frames = append(s.frames, img.Bounds())
	return nil
}

func (s *recordingSink) Close() error {
	s.closed++
	return nil
}

func TestWriterRender(t *testing.T) {
	dir := t.TempDir()
	frameSink, viewportSink := &recordingSink{}, &recordingSink{}
	w := &Writer{Dir: dir, FrameSink: frameSink, ViewportSink: viewportSink}

	vp := common.Size{W: 64, H: 48}
	clip := Clip{
		Frames:    []image.Image{gradientFrame(160, 120), gradientFrame(160, 120), gradientFrame(160, 120)},
		Motion:    [][]common.BoundingBox{{}, {common.Box(10, 10, 20, 20)}, {}},
		Positions: []common.Point{{X: 80, Y: 60}, {X: 70, Y: 55}, {X: 32, Y: 24}},
		Viewport:  vp,
	}
	require.NoError(t, w.Render(context.Background(), clip))

	for i := 1; i <= 3; i++ {
		assert.FileExists(t, filepath.Join(dir, FramesDir, "frame_000"+string(rune('0'+i))+".jpg"))
		assert.FileExists(t, filepath.Join(dir, ViewportDir, "viewport_000"+string(rune('0'+i))+".jpg"))
	}
	assert.NoFileExists(t, filepath.Join(dir, FramesDir, "frame_0000.jpg"))

	require.Len(t, frameSink.frames, 3)
	require.Len(t, viewportSink.frames, 3)
	assert.Equal(t, image.Rect(0, 0, 160, 120), frameSink.frames[0])
	assert.Equal(t, image.Rect(0, 0, 64, 48), viewportSink.frames[2])
	assert.Equal(t, 1, frameSink.closed)
	assert.Equal(t, 1, viewportSink.closed)
	assert.NoError(t, w.Close())
	assert.Equal(t, 1, frameSink.closed, "sinks are closed once")
}

func TestWriterRenderErrors(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}
	err := w.Render(context.Background(), Clip{Frames: []image.Image{blackFrame(10, 10)}})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	clip := Clip{
		Frames:    []image.Image{blackFrame(10, 10)},
		Motion:    [][]common.BoundingBox{nil},
		Positions: []common.Point{{X: 5, Y: 5}},
		Viewport:  common.Size{W: 4, H: 4},
	}
	assert.ErrorIs(t, w.Render(ctx, clip), context.Canceled)
}

func TestPlotTrajectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), TrajectoryFile)
	positions := []common.Point{{X: 320, Y: 180}, {X: 374, Y: 201}, {X: 412, Y: 216}}

	require.NoError(t, PlotTrajectory(positions, common.Size{W: 640, H: 360}, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.False(t, img.Bounds().Empty())
}
