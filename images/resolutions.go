package images

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-autopan/common"
)

// AspectRatio represents an aspect ratio by name (e.g., "16:9").
type AspectRatio string

// Standard aspect ratios for sampled frames.
const (
	AspectRatio169 AspectRatio = "16:9"
	AspectRatio43  AspectRatio = "4:3"
)

// ResolutionType is the short name of a resolution preset.
type ResolutionType string

// Presets accepted by the frame source resize option.
const (
	ResolutionTypeNHD      ResolutionType = "360p"
	ResolutionTypeFWVGA    ResolutionType = "480p"
	ResolutionTypeQHD540   ResolutionType = "540p"
	ResolutionTypeHD720p   ResolutionType = "720p"
	ResolutionTypeFHD1080p ResolutionType = "1080p"
	ResolutionTypeQHD1440p ResolutionType = "1440p"
	ResolutionType4KUHD    ResolutionType = "2160p"
	ResolutionTypeVGA      ResolutionType = "vga"
	ResolutionTypeSVGA     ResolutionType = "svga"
)

// Resolution describes a resolution preset.
type Resolution struct {
	Name        ResolutionType `json:"name"`
	AspectRatio AspectRatio    `json:"aspectRatio"`
	Size        common.Size    `json:"size"`
}

// MegaPixels returns the pixel count in megapixels rounded to two decimals.
func (r Resolution) MegaPixels() float64 {
	if r.Size.Empty() {
		return 0
	}
	mp := float64(r.Size.W*r.Size.H) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns a human-readable summary of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%s (%v, %.2fMP)", r.Name, r.Size, r.MegaPixels())
}

var resolutions = map[ResolutionType]Resolution{
	ResolutionTypeNHD:      {Name: ResolutionTypeNHD, AspectRatio: AspectRatio169, Size: common.Size{W: 640, H: 360}},
	ResolutionTypeFWVGA:    {Name: ResolutionTypeFWVGA, AspectRatio: AspectRatio169, Size: common.Size{W: 854, H: 480}},
	ResolutionTypeQHD540:   {Name: ResolutionTypeQHD540, AspectRatio: AspectRatio169, Size: common.Size{W: 960, H: 540}},
	ResolutionTypeHD720p:   {Name: ResolutionTypeHD720p, AspectRatio: AspectRatio169, Size: common.Size{W: 1280, H: 720}},
	ResolutionTypeFHD1080p: {Name: ResolutionTypeFHD1080p, AspectRatio: AspectRatio169, Size: common.Size{W: 1920, H: 1080}},
	ResolutionTypeQHD1440p: {Name: ResolutionTypeQHD1440p, AspectRatio: AspectRatio169, Size: common.Size{W: 2560, H: 1440}},
	ResolutionType4KUHD:    {Name: ResolutionType4KUHD, AspectRatio: AspectRatio169, Size: common.Size{W: 3840, H: 2160}},
	ResolutionTypeVGA:      {Name: ResolutionTypeVGA, AspectRatio: AspectRatio43, Size: common.Size{W: 640, H: 480}},
	ResolutionTypeSVGA:     {Name: ResolutionTypeSVGA, AspectRatio: AspectRatio43, Size: common.Size{W: 800, H: 600}},
}

// Resolutions returns every preset ordered by pixel count.
func Resolutions() []Resolution {
	all := make([]Resolution, 0, len(resolutions))
	for _, res := range resolutions {
		all = append(all, res)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Size.W*all[i].Size.H < all[j].Size.W*all[j].Size.H
	})
	return all
}

// ResolutionByName looks up a preset by its short name (case-insensitive).
func ResolutionByName(name string) (Resolution, bool) {
	res, ok := resolutions[ResolutionType(strings.ToLower(strings.TrimSpace(name)))]
	return res, ok
}

// ParseSize parses either a preset name ("720p") or an explicit "WxH" size.
//
// Arguments:
//   - s: The preset name or size string.
//
// Returns:
//   - common.Size: The parsed size.
//   - error: If the string is neither a known preset nor a positive WxH pair.
//
// @example
// size, err := ParseSize("1280x720")
func ParseSize(s string) (common.Size, error) {
	if res, ok := ResolutionByName(s); ok {
		return res.Size, nil
	}

	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return common.Size{}, errors.Errorf("invalid size %q: want WxH or a preset name", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return common.Size{}, errors.Wrapf(err, "invalid width in %q", s)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return common.Size{}, errors.Wrapf(err, "invalid height in %q", s)
	}
	if w <= 0 || h <= 0 {
		return common.Size{}, errors.Errorf("invalid size %q: dimensions must be positive", s)
	}
	return common.Size{W: w, H: h}, nil
}
