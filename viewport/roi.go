// Package viewport - Virtual camera tracking over per-frame motion results.
//
// Tracking is a strict left fold: each position depends on the previous
// clamped position. The carry is an explicit State value, so a fold can be
// stepped by hand, checkpointed and resumed.
package viewport

import (
	"github.com/nvr-ai/go-autopan/common"
)

// ROI is the motion region of interest of one frame.
type ROI struct {
	// CenterX and CenterY are the area-weighted centroid of the motion boxes.
	CenterX int `json:"center_x"`
	CenterY int `json:"center_y"`
	// RefW and RefH are the size of the largest box, or zero without motion.
	RefW int `json:"ref_w"`
	RefH int `json:"ref_h"`
}

// Center returns the ROI center as a point.
func (r ROI) Center() common.Point {
	return common.Point{X: r.CenterX, Y: r.CenterY}
}

// RegionOfInterest summarizes a frame's motion boxes.
//
// Each box is weighted by its area; the center is the weighted mean of the
// box centers, truncated per axis. The reference size is that of the first
// box with the largest area. Without boxes, or when every box is empty, the
// ROI is the frame center with a zero reference size.
//
// Arguments:
//   - boxes: The motion boxes of the frame.
//   - frame: The frame dimensions.
//
// Returns:
//   - ROI: The region of interest.
//
// @example
// roi := RegionOfInterest([]common.BoundingBox{common.Box(300, 200, 40, 40)}, common.Size{W: 640, H: 480})
// // roi == ROI{CenterX: 320, CenterY: 220, RefW: 40, RefH: 40}
func RegionOfInterest(boxes []common.BoundingBox, frame common.Size) ROI {
	fallback := ROI{CenterX: frame.W / 2, CenterY: frame.H / 2}
	if len(boxes) == 0 {
		return fallback
	}

	var sumX, sumY, total int64
	largest := -1
	for i, b := range boxes {
		area := int64(b.Area())
		c := b.Center()
		sumX += int64(c.X) * area
		sumY += int64(c.Y) * area
		total += area
		if largest < 0 || area > int64(boxes[largest].Area()) {
			largest = i
		}
	}

	if total == 0 {
		return fallback
	}

	return ROI{
		CenterX: int(sumX / total),
		CenterY: int(sumY / total),
		RefW:    boxes[largest].W,
		RefH:    boxes[largest].H,
	}
}
