// Package common - Geometry value types shared by the detector, tracker and renderer.
package common

import (
	"fmt"
	"image"
)

// BoundingBox represents an axis-aligned motion region in pixel units.
//
// X and Y are the top-left corner; W and H are never negative.
type BoundingBox struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

// Box is shorthand for BoundingBox{X: x, Y: y, W: w, H: h}.
func Box(x, y, w, h int) BoundingBox {
	return BoundingBox{X: x, Y: y, W: w, H: h}
}

// BoxFromRect converts an image.Rectangle into a BoundingBox.
//
// Arguments:
// - r: The rectangle to convert. It is canonicalized first.
//
// Returns:
// - A BoundingBox covering the same pixels.
//
// @example
// box := BoxFromRect(image.Rect(10, 10, 60, 40)) // {10 10 50 30}
func BoxFromRect(r image.Rectangle) BoundingBox {
	r = r.Canon()
	return BoundingBox{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Area returns the box area w*h, used as the region weight.
func (b BoundingBox) Area() int {
	return b.W * b.H
}

// Center returns the integer center (x + w/2, y + h/2).
func (b BoundingBox) Center() Point {
	return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

// Rect converts the bounding box to an image.Rectangle.
//
// Returns:
// - An image.Rectangle with Max exclusive, like every image.Rectangle.
//
// @example
// box := BoundingBox{X: 100, Y: 100, W: 50, H: 50}
// rect := box.Rect() // (100,100)-(150,150)
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// Intersection returns the overlapping area of two boxes in pixels.
//
// Arguments:
// - other: The other bounding box.
//
// Returns:
// - The area of intersection, 0 when the boxes do not overlap.
//
// @example
// a := Box(0, 0, 100, 100)
// b := Box(50, 50, 100, 100)
// area := a.Intersection(b) // 2500
func (b BoundingBox) Intersection(other BoundingBox) int {
	size := b.Rect().Intersect(other.Rect()).Size()
	return size.X * size.Y
}

// IoU calculates the Intersection over Union between two bounding boxes.
//
// Returns:
// - The IoU value between 0 and 1; 0 when both boxes are empty.
func (b BoundingBox) IoU(other BoundingBox) float64 {
	inter := b.Intersection(other)
	union := b.Area() + other.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", b.X, b.Y, b.W, b.H)
}

// Point is an integer pixel coordinate. The tracker uses it for viewport centers.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Size is a width/height pair, used for frame shapes and the viewport size.
type Size struct {
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

// SizeOf returns the size of an image's bounds.
func SizeOf(img image.Image) Size {
	b := img.Bounds()
	return Size{W: b.Dx(), H: b.Dy()}
}

// Empty reports whether the size has no pixels.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}
