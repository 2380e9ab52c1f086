package images

import (
	"github.com/nvr-ai/go-autopan/common"
)

// Component is one external connected region of a binary mask.
type Component struct {
	// Box is the axis-aligned bounding rectangle of the region.
	Box common.BoundingBox
	// Area is the number of foreground pixels in the region.
	Area int
}

// ConnectedComponents extracts the external connected regions of a mask.
//
// Foreground (non-zero) pixels are grouped with 8-connectivity. Only external
// regions are reported: a region lying inside a hole of another region (its
// surrounding background cannot reach the raster border through 4-connected
// background pixels) is skipped, which matches contour retrieval in "external"
// mode.
//
// Regions are returned in discovery order: the raster scan order
// (top-to-bottom, then left-to-right) of each region's first pixel. The order
// is stable across runs and backends that follow the same rule.
//
// Arguments:
// - mask: The binary mask to label.
//
// Returns:
// - The external components, in scan order of their first pixel.
//
// @example
// for _, c := range ConnectedComponents(mask) {
//     fmt.Println(c.Box, c.Area)
// }
func ConnectedComponents(mask *Gray) []Component {
	width, height := mask.Width, mask.Height
	if width == 0 || height == 0 {
		return nil
	}

	outer := outerBackground(mask)
	labels := make([]int32, width*height)
	stack := make([]int, 0, 64)

	var (
		components []Component
		label      int32
	)
	for start, v := range mask.Pix {
		if v == 0 || labels[start] != 0 {
			continue
		}

		label++
		labels[start] = label
		stack = append(stack[:0], start)

		minX, minY := width, height
		maxX, maxY := -1, -1
		area := 0
		external := false

		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := idx%width, idx/width

			area++
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			if !external && touchesOuter(outer, width, height, x, y) {
				external = true
			}

			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= height {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= width || (dx == 0 && dy == 0) {
						continue
					}
					n := ny*width + nx
					if mask.Pix[n] != 0 && labels[n] == 0 {
						labels[n] = label
						stack = append(stack, n)
					}
				}
			}
		}

		if external {
			components = append(components, Component{
				Box:  common.Box(minX, minY, maxX-minX+1, maxY-minY+1),
				Area: area,
			})
		}
	}

	return components
}

// outerBackground marks background pixels reachable from the raster border
// through 4-connected background.
func outerBackground(mask *Gray) []bool {
	width, height := mask.Width, mask.Height
	outer := make([]bool, width*height)
	stack := make([]int, 0, 2*(width+height))

	push := func(idx int) {
		if mask.Pix[idx] == 0 && !outer[idx] {
			outer[idx] = true
			stack = append(stack, idx)
		}
	}

	for x := 0; x < width; x++ {
		push(x)
		push((height-1)*width + x)
	}
	for y := 0; y < height; y++ {
		push(y * width)
		push(y*width + width - 1)
	}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := idx%width, idx/width
		if x > 0 {
			push(idx - 1)
		}
		if x < width-1 {
			push(idx + 1)
		}
		if y > 0 {
			push(idx - width)
		}
		if y < height-1 {
			push(idx + width)
		}
	}
	return outer
}

// touchesOuter reports whether a foreground pixel lies on the raster border or
// has a 4-neighbour in the outer background.
func touchesOuter(outer []bool, width, height, x, y int) bool {
	if x == 0 || y == 0 || x == width-1 || y == height-1 {
		return true
	}
	idx := y*width + x
	return outer[idx-1] || outer[idx+1] || outer[idx-width] || outer[idx+width]
}
