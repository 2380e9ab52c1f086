package viewport

import (
	"math"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-autopan/common"
)

var (
	// ErrLengthMismatch is returned when frames and motion results differ in length.
	ErrLengthMismatch = errors.New("frames and motion results differ in length")
	// ErrInvalidSmoothing is returned for a smoothing factor outside (0, 1].
	ErrInvalidSmoothing = errors.New("smoothing factor must be in (0, 1]")
	// ErrSizeMismatch matches the error returned when the viewport exceeds a frame.
	ErrSizeMismatch = common.ErrSizeMismatch
)

// DefaultSmoothing is the smoothing factor the tracker was tuned with.
const DefaultSmoothing = 0.3

// State is the carry of the tracking fold.
//
// Index is the number of frames consumed so far; Prev is the last clamped
// position and is meaningless while Index is 0.
type State struct {
	Index int          `json:"index"`
	Prev  common.Point `json:"prev"`
}

// NewState returns the state before the first frame.
func NewState() State {
	return State{}
}

// Step consumes one frame.
//
// The first frame seeds the position with its ROI center. Every later frame
// moves the position toward its ROI center:
//
//	pos = clamp(round(prev*(1-alpha) + raw*alpha))
//
// Rounding is half away from zero. Clamping keeps the viewport inside the
// frame and the clamped value is what the next step sees as prev.
//
// Arguments:
//   - state: The carry from the previous step (NewState() for the first frame).
//   - frame: The frame dimensions.
//   - boxes: The motion boxes of the frame.
//   - vp: The viewport size.
//   - alpha: The smoothing factor in (0, 1]. 1 follows the ROI exactly.
//
// Returns:
//   - State: The carry for the next step.
//   - common.Point: The viewport center for this frame.
//   - error: ErrInvalidSmoothing, or *common.SizeMismatchError when vp does not fit the frame.
//
// @example
// state := viewport.NewState()
// for i := range frames {
//     var pos common.Point
//     state, pos, err = viewport.Step(state, frames[i], results[i], vp, 0.3)
// }
func Step(state State, frame common.Size, boxes []common.BoundingBox, vp common.Size, alpha float64) (State, common.Point, error) {
	if err := checkSmoothing(alpha); err != nil {
		return state, common.Point{}, err
	}
	if err := checkViewport(state.Index, frame, vp); err != nil {
		return state, common.Point{}, err
	}

	raw := RegionOfInterest(boxes, frame).Center()
	pos := raw
	if state.Index > 0 {
		pos = common.Point{
			X: smooth(state.Prev.X, raw.X, alpha),
			Y: smooth(state.Prev.Y, raw.Y, alpha),
		}
	}
	pos = Clamp(pos, frame, vp)

	return State{Index: state.Index + 1, Prev: pos}, pos, nil
}

// Track computes one viewport center per frame.
//
// Arguments:
//   - frames: The frame dimensions, one per frame.
//   - results: The motion boxes, index-aligned with frames.
//   - vp: The viewport size. Must fit inside every frame.
//   - alpha: The smoothing factor in (0, 1].
//
// Returns:
//   - []common.Point: One position per frame; empty when frames is empty.
//   - error: ErrLengthMismatch, ErrInvalidSmoothing or *common.SizeMismatchError.
//
// @example
// positions, err := viewport.Track(sizes, results, common.Size{W: 640, H: 360}, viewport.DefaultSmoothing)
func Track(frames []common.Size, results [][]common.BoundingBox, vp common.Size, alpha float64) ([]common.Point, error) {
	positions, _, err := Resume(NewState(), frames, results, vp, alpha)
	return positions, err
}

// Resume continues a fold from a checkpoint. frames and results hold the
// frames from state.Index onward. The returned State can be stored and
// passed to a later Resume.
func Resume(state State, frames []common.Size, results [][]common.BoundingBox, vp common.Size, alpha float64) ([]common.Point, State, error) {
	if len(frames) == 0 {
		return []common.Point{}, state, nil
	}
	if len(results) != len(frames) {
		return nil, state, errors.Wrapf(ErrLengthMismatch, "%d frames, %d results", len(frames), len(results))
	}
	if err := checkSmoothing(alpha); err != nil {
		return nil, state, err
	}

	positions := make([]common.Point, 0, len(frames))
	for i, frame := range frames {
		next, pos, err := Step(state, frame, results[i], vp, alpha)
		if err != nil {
			return nil, state, err
		}
		state = next
		positions = append(positions, pos)
	}
	return positions, state, nil
}

// Clamp moves p so that a vp-sized rectangle centered on it lies inside the
// frame: X in [vp.W/2, frame.W-vp.W/2], Y in [vp.H/2, frame.H-vp.H/2].
func Clamp(p common.Point, frame, vp common.Size) common.Point {
	return common.Point{
		X: clampInt(p.X, vp.W/2, frame.W-vp.W/2),
		Y: clampInt(p.Y, vp.H/2, frame.H-vp.H/2),
	}
}

// Rect returns the viewport rectangle centered on p.
func Rect(p common.Point, vp common.Size) common.BoundingBox {
	return common.Box(p.X-vp.W/2, p.Y-vp.H/2, vp.W, vp.H)
}

func smooth(prev, raw int, alpha float64) int {
	return int(math.Round(float64(prev)*(1-alpha) + float64(raw)*alpha))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func checkSmoothing(alpha float64) error {
	if !(alpha > 0 && alpha <= 1) {
		return errors.Wrapf(ErrInvalidSmoothing, "got %v", alpha)
	}
	return nil
}

func checkViewport(index int, frame, vp common.Size) error {
	if vp.W < 0 || vp.H < 0 || vp.W > frame.W || vp.H > frame.H {
		return &common.SizeMismatchError{Index: index, Param: "viewport_size", Want: frame, Got: vp}
	}
	return nil
}
