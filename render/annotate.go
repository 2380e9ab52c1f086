package render

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/nfnt/resize"

	"github.com/nvr-ai/go-autopan/common"
)

// Annotate draws the motion boxes, the viewport rectangle and a
// "Frame i/N" label onto a copy of frame. index is zero-based; the label is
// one-based.
//
// Arguments:
//   - frame: The source frame. It is not modified.
//   - boxes: Motion regions, outlined in green.
//   - pos: Viewport center, outlined in blue with edges clipped to the frame.
//   - vp: Viewport size.
//   - index, total: Position of the frame in the clip.
//
// Returns:
//   - *image.RGBA: The annotated copy.
//
// @example
// vis := render.Annotate(frames[i], results[i], positions[i], vp, i, len(frames))
func Annotate(frame image.Image, boxes []common.BoundingBox, pos common.Point, vp common.Size, index, total int) *image.RGBA {
	dst := toRGBA(frame)

	for _, b := range boxes {
		drawRect(dst, image.Pt(b.X, b.Y), image.Pt(b.X+b.W, b.Y+b.H), BoxColor, boxThickness)
	}

	r := ViewportBounds(pos, vp, common.SizeOf(frame))
	drawRect(dst, r.Min, r.Max, ViewportColor, viewportThickness)

	drawLabel(dst, fmt.Sprintf("Frame %d/%d", index+1, total), LabelOrigin)
	return dst
}

// ViewportBounds returns the viewport rectangle around pos, clipped to the frame.
func ViewportBounds(pos common.Point, vp common.Size, frame common.Size) image.Rectangle {
	r := image.Rect(pos.X-vp.W/2, pos.Y-vp.H/2, pos.X+vp.W/2, pos.Y+vp.H/2)
	return r.Intersect(image.Rect(0, 0, frame.W, frame.H))
}

// Crop extracts the viewport from frame and labels it "Frame i". The result
// is always exactly vp in size: a crop clipped by the frame edge is scaled up.
//
// @example
// crop := render.Crop(frames[i], positions[i], vp, i)
func Crop(frame image.Image, pos common.Point, vp common.Size, index int) *image.RGBA {
	b := frame.Bounds()
	r := ViewportBounds(pos, vp, common.SizeOf(frame)).Add(b.Min)

	crop := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(crop, crop.Bounds(), frame, r.Min, draw.Src)

	var out *image.RGBA
	switch {
	case r.Dx() == vp.W && r.Dy() == vp.H:
		out = crop
	case r.Empty():
		out = image.NewRGBA(image.Rect(0, 0, vp.W, vp.H))
	default:
		out = toRGBA(resize.Resize(uint(vp.W), uint(vp.H), crop, resize.Bilinear))
	}

	drawLabel(out, fmt.Sprintf("Frame %d", index+1), LabelOrigin)
	return out
}
