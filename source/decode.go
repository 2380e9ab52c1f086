package source

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-autopan/common"
)

// ImageFormat represents supported frame encodings.
type ImageFormat int

const (
	FormatUnknown ImageFormat = iota
	FormatJPEG
	FormatWebP
	FormatPNG
)

// String returns the lower-case format name.
func (f ImageFormat) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatWebP:
		return "webp"
	case FormatPNG:
		return "png"
	default:
		return "unknown"
	}
}

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) ImageFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".webp":
		return FormatWebP
	case ".png":
		return FormatPNG
	default:
		return FormatUnknown
	}
}

// Decode decodes an encoded frame.
//
// Arguments:
//   - data: The encoded bytes.
//   - format: The encoding of data.
//
// Returns:
//   - image.Image: The decoded frame.
//   - error: If data is empty, the format is unsupported or decoding fails.
func Decode(data []byte, format ImageFormat) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}

	var (
		img image.Image
		err error
	)
	switch format {
	case FormatJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	case FormatWebP:
		img, err = webp.Decode(bytes.NewReader(data))
	case FormatPNG:
		img, err = png.Decode(bytes.NewReader(data))
	default:
		return nil, errors.Errorf("unsupported image format: %v", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %v", format)
	}
	return img, nil
}

// Resize scales a frame to size with Lanczos3 resampling. A zero size or a
// frame already at size is returned unchanged.
//
// @example
// frame = Resize(frame, common.Size{W: 1280, H: 720})
func Resize(img image.Image, size common.Size) image.Image {
	if size.Empty() || common.SizeOf(img) == size {
		return img
	}
	return resize.Resize(uint(size.W), uint(size.H), img, resize.Lanczos3)
}

// DecodeResized decodes a frame and scales it to size.
//
// @example
// frame, err := DecodeResized(data, FormatJPEG, common.Size{W: 1280, H: 720})
func DecodeResized(data []byte, format ImageFormat, size common.Size) (image.Image, error) {
	img, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return Resize(img, size), nil
}
