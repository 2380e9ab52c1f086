package render

import (
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/nvr-ai/go-autopan/common"
)

// TrajectoryFile is the chart file name written next to the frames.
const TrajectoryFile = "trajectory.png"

// PlotTrajectory charts the viewport center over the frame index and saves
// it to path. The format follows the extension (png, svg, pdf...).
//
// Arguments:
//   - positions: The viewport centers, one per frame.
//   - frame: The frame size, drawn as the axis limits.
//   - path: Destination file.
//
// Returns:
//   - error: If the chart cannot be built or written.
//
// @example
// err := render.PlotTrajectory(positions, common.Size{W: 1280, H: 720}, "output/trajectory.png")
func PlotTrajectory(positions []common.Point, frame common.Size, path string) error {
	p := plot.New()
	p.Title.Text = "Viewport trajectory"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Center (px)"
	p.Y.Min = 0
	p.Y.Max = float64(max(frame.W, frame.H))

	xs := make(plotter.XYs, 0, len(positions))
	ys := make(plotter.XYs, 0, len(positions))
	for i, pos := range positions {
		xs = append(xs, plotter.XY{X: float64(i + 1), Y: float64(pos.X)})
		ys = append(ys, plotter.XY{X: float64(i + 1), Y: float64(pos.Y)})
	}

	for _, series := range []struct {
		label string
		pts   plotter.XYs
		color color.Color
	}{
		{"x", xs, color.RGBA{R: 31, G: 119, B: 180, A: 255}},
		{"y", ys, color.RGBA{R: 214, G: 39, B: 40, A: 255}},
	} {
		if len(series.pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(series.pts)
		if err != nil {
			return errors.Wrapf(err, "trajectory %s", series.label)
		}
		line.Color = series.color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(series.label, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save trajectory %s", path)
	}
	return nil
}
