package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-autopan/common"
)

func TestResolutionMegaPixels(t *testing.T) {
	res, ok := ResolutionByName("1080p")
	require.True(t, ok)
	assert.Equal(t, 2.07, res.MegaPixels())
	assert.Equal(t, 0.0, Resolution{Size: common.Size{W: 0, H: 1080}}.MegaPixels())
}

func TestResolutionsOrdered(t *testing.T) {
	all := Resolutions()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Size.W*all[i-1].Size.H, all[i].Size.W*all[i].Size.H)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in       string
		expected common.Size
		wantErr  bool
	}{
		{in: "720p", expected: common.Size{W: 1280, H: 720}},
		{in: " VGA ", expected: common.Size{W: 640, H: 480}},
		{in: "640x360", expected: common.Size{W: 640, H: 360}},
		{in: "1280X720", expected: common.Size{W: 1280, H: 720}},
		{in: "640", wantErr: true},
		{in: "ax360", wantErr: true},
		{in: "640xb", wantErr: true},
		{in: "0x360", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
