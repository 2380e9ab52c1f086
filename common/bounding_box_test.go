package common

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestBoundingBoxGeometry(t *testing.T) {
	box := Box(100, 100, 50, 31)

	assert.Equal(t, 1550, box.Area())
	assert.Equal(t, Point{X: 125, Y: 115}, box.Center())
	assert.Equal(t, image.Rect(100, 100, 150, 131), box.Rect())
	assert.Equal(t, box, BoxFromRect(image.Rect(150, 131, 100, 100)))
	assert.Equal(t, "(100, 100, 50, 31)", box.String())
}

func TestBoundingBoxIoU(t *testing.T) {
	tests := []struct {
		name     string
		a, b     BoundingBox
		expected float64
	}{
		{name: "identical", a: Box(0, 0, 100, 100), b: Box(0, 0, 100, 100), expected: 1},
		{name: "disjoint", a: Box(0, 0, 100, 100), b: Box(200, 200, 100, 100), expected: 0},
		{name: "touching", a: Box(0, 0, 100, 100), b: Box(100, 0, 100, 100), expected: 0},
		{name: "half overlap", a: Box(0, 0, 100, 100), b: Box(50, 50, 100, 100), expected: 2500.0 / 17500.0},
		{name: "contained", a: Box(0, 0, 100, 100), b: Box(25, 25, 50, 50), expected: 0.25},
		{name: "both empty", a: Box(5, 5, 0, 0), b: Box(5, 5, 0, 0), expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.a.IoU(tt.b), 1e-9)
		})
	}
}

func TestSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 330, 260))

	size := SizeOf(img)
	assert.Equal(t, Size{W: 320, H: 240}, size)
	assert.False(t, size.Empty())
	assert.True(t, Size{W: 0, H: 10}.Empty())
	assert.Equal(t, "320x240", size.String())
}

func TestSizeMismatchError(t *testing.T) {
	var err error = &SizeMismatchError{Index: 3, Param: "frame", Want: Size{W: 200, H: 200}, Got: Size{W: 100, H: 200}}

	assert.True(t, errors.Is(err, ErrSizeMismatch))
	assert.Equal(t, "size mismatch at frame 3: frame is 100x200, want 200x200", err.Error())

	var target *SizeMismatchError
	assert.True(t, errors.As(errors.Wrap(err, "detect"), &target))
	assert.Equal(t, 3, target.Index)
}
