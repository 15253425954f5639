package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/promptlens/types"
)

func TestDecode_PNG(t *testing.T) {
	data := encodePNG(t, solidImage(120, 80, red))

	dec, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "image/png", dec.MimeType)
	assert.Equal(t, 120, dec.Image.Bounds().Dx())
	assert.Equal(t, 80, dec.Image.Bounds().Dy())
	assert.Equal(t, data, dec.Data)
}

func TestDecode_JPEGWithoutExif(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solidImage(64, 32, red), nil))

	dec, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", dec.MimeType)
	assert.Equal(t, image.Rect(0, 0, 64, 32), dec.Image.Bounds())
}

func TestDecode_Invalid(t *testing.T) {
	png := encodePNG(t, solidImage(16, 16, red))

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("definitely not an image")},
		{"truncated png", png[:24]},
		{"pdf", []byte("%PDF-1.4\n%âãÏÓ\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			require.Error(t, err)
			assert.True(t, types.IsCode(err, types.ErrInvalidImageData))
		})
	}
}

func TestCorrectOrientation(t *testing.T) {
	// 3×2 图片，左上角为标记像素
	src := solidImage(3, 2, white)
	marker := color.RGBA{R: 255, A: 255}
	src.SetRGBA(0, 0, marker)

	tests := []struct {
		orientation int
		wantSize    image.Point
		wantMarker  image.Point
	}{
		{1, image.Pt(3, 2), image.Pt(0, 0)},
		{2, image.Pt(3, 2), image.Pt(2, 0)},
		{3, image.Pt(3, 2), image.Pt(2, 1)},
		{4, image.Pt(3, 2), image.Pt(0, 1)},
		{5, image.Pt(2, 3), image.Pt(0, 0)},
		{6, image.Pt(2, 3), image.Pt(1, 0)},
		{7, image.Pt(2, 3), image.Pt(1, 2)},
		{8, image.Pt(2, 3), image.Pt(0, 2)},
		{9, image.Pt(3, 2), image.Pt(0, 0)},
	}

	for _, tt := range tests {
		out := toRGBA(correctOrientation(src, tt.orientation))
		assert.Equal(t, tt.wantSize, out.Bounds().Size(), "orientation %d", tt.orientation)
		assert.Equal(t, marker, out.RGBAAt(tt.wantMarker.X, tt.wantMarker.Y), "orientation %d", tt.orientation)
	}
}

func TestHasTransparency(t *testing.T) {
	assert.False(t, hasTransparency(solidImage(4, 4, red)))

	img := solidImage(4, 4, red)
	img.SetRGBA(1, 1, color.RGBA{})
	assert.True(t, hasTransparency(img))
}

func TestResample(t *testing.T) {
	out := resample(solidImage(100, 50, red), 20, 10)
	assert.Equal(t, image.Rect(0, 0, 20, 10), out.Bounds())
	assert.Equal(t, red, out.RGBAAt(10, 5))

	sub := solidImage(10, 10, red).SubImage(image.Rect(2, 2, 6, 6))
	assert.Equal(t, image.Rect(0, 0, 4, 4), resample(sub, 4, 4).Bounds())
}
