//go:build withcv

// Package opencv - OpenCV (gocv) implementations of the raster backend, the
// video frame source and the video sinks.
//
// Everything in this package needs a local OpenCV installation and is only
// compiled with the withcv build tag:
//
//	go build -tags withcv ./...
package opencv

import (
	"image"
	"image/color"
	"sort"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-autopan/common"
	"github.com/nvr-ai/go-autopan/images"
)

// Raster runs the motion steps through OpenCV. Rasters cross the boundary as
// single-channel 8-bit Mats; when OpenCV rejects an input the step falls back
// to the pure-Go implementation so results stay defined.
type Raster struct {
	soft *images.Software
}

// NewRaster creates an OpenCV raster backend.
//
// @example
// d, err := motion.New(motion.DefaultConfig(), opencv.NewRaster())
func NewRaster() *Raster {
	return &Raster{soft: images.NewSoftware()}
}

// Luminance converts a frame with cv::cvtColor (BGR to gray, BT.601).
func (r *Raster) Luminance(img image.Image) *images.Gray {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return r.soft.Luminance(img)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(src, &gray, gocv.ColorBGRToGray); err != nil {
		return r.soft.Luminance(img)
	}
	return fromMat(gray)
}

// Blur applies cv::GaussianBlur with sigma derived from the kernel size.
func (r *Raster) Blur(g *images.Gray, kernel int) *images.Gray {
	if kernel <= 1 {
		return g.Clone()
	}
	src, err := toMat(g)
	if err != nil {
		return r.soft.Blur(g, kernel)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	if err := gocv.GaussianBlur(src, &dst, image.Pt(kernel, kernel), 0, 0, gocv.BorderDefault); err != nil {
		return r.soft.Blur(g, kernel)
	}
	return fromMat(dst)
}

// AbsDiff computes |a - b| with cv::absdiff.
func (r *Raster) AbsDiff(a, b *images.Gray) (*images.Gray, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return r.soft.AbsDiff(a, b)
	}
	ma, err := toMat(a)
	if err != nil {
		return r.soft.AbsDiff(a, b)
	}
	defer ma.Close()
	mb, err := toMat(b)
	if err != nil {
		return r.soft.AbsDiff(a, b)
	}
	defer mb.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	if err := gocv.AbsDiff(ma, mb, &dst); err != nil {
		return r.soft.AbsDiff(a, b)
	}
	return fromMat(dst), nil
}

// Threshold binarizes with cv::threshold (THRESH_BINARY, strictly above t).
func (r *Raster) Threshold(g *images.Gray, t uint8) *images.Gray {
	src, err := toMat(g)
	if err != nil {
		return r.soft.Threshold(g, t)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Threshold(src, &dst, float32(t), 255, gocv.ThresholdBinary)
	return fromMat(dst)
}

// Dilate grows the mask with a rectangular structuring element. Pixels
// outside the mask count as background.
func (r *Raster) Dilate(mask *images.Gray, kernel, iterations int) *images.Gray {
	if kernel <= 1 || iterations <= 0 {
		return mask.Clone()
	}
	src, err := toMat(mask)
	if err != nil {
		return r.soft.Dilate(mask, kernel, iterations)
	}
	defer src.Close()

	element := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(kernel, kernel))
	defer element.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	err = gocv.DilateWithParams(src, &dst, element, image.Pt(-1, -1), iterations, gocv.BorderConstant, color.RGBA{})
	if err != nil {
		return r.soft.Dilate(mask, kernel, iterations)
	}
	return fromMat(dst)
}

// ConnectedComponents extracts external contours with cv::findContours.
// Components are returned in raster-scan order of their top-left-most pixel.
// Area counts the foreground pixels enclosed by the outer contour.
func (r *Raster) ConnectedComponents(mask *images.Gray) []images.Component {
	src, err := toMat(mask)
	if err != nil {
		return r.soft.ConnectedComponents(mask)
	}
	defer src.Close()

	contours := gocv.FindContours(src, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	type found struct {
		first     image.Point
		component images.Component
	}
	all := make([]found, 0, contours.Size())

	filled := gocv.NewMatWithSize(mask.Height, mask.Width, gocv.MatTypeCV8U)
	defer filled.Close()

	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		rect := gocv.BoundingRect(contour)

		// Rasterize this contour alone and intersect with the mask.
		filled.SetTo(gocv.NewScalar(0, 0, 0, 0))
		gocv.DrawContours(&filled, contours, i, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
		gocv.BitwiseAnd(filled, src, &filled)
		region := filled.Region(rect)
		area := gocv.CountNonZero(region)
		region.Close()

		all = append(all, found{
			first:     topLeft(contour.ToPoints()),
			component: images.Component{Box: common.BoxFromRect(rect), Area: area},
		})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].first.Y != all[j].first.Y {
			return all[i].first.Y < all[j].first.Y
		}
		return all[i].first.X < all[j].first.X
	})

	components := make([]images.Component, len(all))
	for i, f := range all {
		components[i] = f.component
	}
	return components
}

func topLeft(points []image.Point) image.Point {
	best := points[0]
	for _, p := range points[1:] {
		if p.Y < best.Y || (p.Y == best.Y && p.X < best.X) {
			best = p
		}
	}
	return best
}

func toMat(g *images.Gray) (gocv.Mat, error) {
	return gocv.NewMatFromBytes(g.Height, g.Width, gocv.MatTypeCV8U, g.Pix)
}

// fromMat copies a continuous CV_8U Mat into a Gray.
func fromMat(m gocv.Mat) *images.Gray {
	g := images.NewGray(m.Cols(), m.Rows())
	copy(g.Pix, m.ToBytes())
	return g
}
