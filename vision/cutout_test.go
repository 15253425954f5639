package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCutoutOrCheckerboard(t *testing.T) {
	halfClear := solidImage(200, 200, red)
	clearRect(halfClear, image.Rect(0, 0, 100, 200))

	smallClear := solidImage(100, 100, red)
	clearRect(smallClear, image.Rect(0, 0, 15, 100))

	tests := []struct {
		name        string
		img         image.Image
		wantCutout  bool
		wantChecker bool
	}{
		{"opaque checkerboard", gridImage(384, 384, 16, white, checkGray), false, true},
		{"solid color", solidImage(300, 200, red), false, false},
		{"fully transparent", image.NewRGBA(image.Rect(0, 0, 64, 64)), true, false},
		{"half transparent", halfClear, true, false},
		{"transparent strip under threshold", smallClear, false, false},
		{"white only", solidImage(100, 100, white), false, false},
		{"small image is upscaled", gridImage(40, 20, 4, white, checkGray), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cutout, checker := DetectCutoutOrCheckerboard(tt.img)
			assert.Equal(t, tt.wantCutout, cutout, "cutout")
			assert.Equal(t, tt.wantChecker, checker, "checker")
		})
	}
}

func TestDetectCutoutOrCheckerboard_Degenerate(t *testing.T) {
	cutout, checker := DetectCutoutOrCheckerboard(nil)
	assert.False(t, cutout)
	assert.False(t, checker)

	cutout, checker = DetectCutoutOrCheckerboard(image.NewRGBA(image.Rect(0, 0, 0, 4)))
	assert.False(t, cutout)
	assert.False(t, checker)
}
