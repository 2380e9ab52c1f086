package motion

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/nvr-ai/go-autopan/common"
)

// MockFrameGenerator creates deterministic test frames.
//
// @example
// gen := NewMockFrameGenerator(320, 240)
// frames := []image.Image{gen.GenerateStaticFrame(), gen.GenerateMotionFrame(100, 100, 50)}
type MockFrameGenerator struct {
	width      int
	height     int
	background uint8
}

// NewMockFrameGenerator creates a generator with a mid-gray background.
func NewMockFrameGenerator(width, height int) *MockFrameGenerator {
	return &MockFrameGenerator{width: width, height: height, background: 128}
}

// GenerateStaticFrame creates a uniform background frame.
func (g *MockFrameGenerator) GenerateStaticFrame() *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, g.width, g.height))
	bg := color.RGBA{g.background, g.background, g.background, 255}
	draw.Draw(frame, frame.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	return frame
}

// GenerateMotionFrame creates a frame with a white size×size square at (x, y).
func (g *MockFrameGenerator) GenerateMotionFrame(x, y, size int) *image.RGBA {
	return g.GenerateFrame(255, common.Box(x, y, size, size))
}

// GenerateFrame paints every box with the gray level v over the background.
func (g *MockFrameGenerator) GenerateFrame(v uint8, boxes ...common.BoundingBox) *image.RGBA {
	frame := g.GenerateStaticFrame()
	fg := &image.Uniform{C: color.RGBA{v, v, v, 255}}
	for _, b := range boxes {
		draw.Draw(frame, b.Rect(), fg, image.Point{}, draw.Src)
	}
	return frame
}
