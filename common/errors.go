package common

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrSizeMismatch is matched by every SizeMismatchError.
var ErrSizeMismatch = errors.New("size mismatch")

// SizeMismatchError reports incompatible dimensions at a given frame.
//
// Param names what did not fit: "frame" when two consecutive frames differ,
// "viewport_size" when the viewport exceeds the frame.
type SizeMismatchError struct {
	Index int
	Param string
	Want  Size
	Got   Size
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch at frame %d: %s is %v, want %v", e.Index, e.Param, e.Got, e.Want)
}

// Is makes errors.Is(err, ErrSizeMismatch) true.
func (e *SizeMismatchError) Is(target error) bool {
	return target == ErrSizeMismatch
}
