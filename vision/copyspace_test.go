package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BaSui01/promptlens/types"
)

func TestDetectCopySpace_TransparentBands(t *testing.T) {
	tests := []struct {
		name  string
		clear image.Rectangle
		want  types.Side
	}{
		{"left", image.Rect(0, 0, 80, 200), types.SideLeft},
		{"right", image.Rect(120, 0, 200, 200), types.SideRight},
		{"top", image.Rect(0, 0, 200, 80), types.SideTop},
		{"bottom", image.Rect(0, 120, 200, 200), types.SideBottom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := gridImage(200, 200, 2, darkGray, lightGray)
			clearRect(img, tt.clear)

			cs := DetectCopySpace(img)
			assert.True(t, cs.Present)
			assert.Equal(t, tt.want, cs.Side)
			assert.Greater(t, cs.Score, 0.6)
			assert.Less(t, cs.Score, 1.0)
		})
	}
}

func TestDetectCopySpace_TieBreakOrder(t *testing.T) {
	// 左右两侧同样平坦时，按 left → right 的顺序取 left
	img := gridImage(200, 200, 2, darkGray, lightGray)
	clearRect(img, image.Rect(0, 0, 80, 200))
	clearRect(img, image.Rect(120, 0, 200, 200))

	cs := DetectCopySpace(img)
	assert.True(t, cs.Present)
	assert.Equal(t, types.SideLeft, cs.Side)
}

func TestDetectCopySpace_UniformTexture(t *testing.T) {
	cs := DetectCopySpace(gridImage(200, 200, 2, darkGray, lightGray))
	assert.False(t, cs.Present)
	assert.Equal(t, types.SideNone, cs.Side)
	assert.Zero(t, cs.Score)
}

func TestDetectCopySpace_FlatImage(t *testing.T) {
	// 中心均值为 0 时没有信号
	cs := DetectCopySpace(solidImage(120, 90, red))
	assert.Equal(t, types.CopySpace{}, cs)
}

func TestDetectCopySpace_Degenerate(t *testing.T) {
	assert.Equal(t, types.CopySpace{}, DetectCopySpace(nil))
	assert.Equal(t, types.CopySpace{}, DetectCopySpace(image.NewRGBA(image.Rect(0, 0, 0, 0))))
}

func TestDetectCopySpace_LargeImageIsDownsampled(t *testing.T) {
	img := gridImage(1024, 512, 16, darkGray, lightGray)
	clearRect(img, image.Rect(0, 0, 1024, 200))

	cs := DetectCopySpace(img)
	assert.True(t, cs.Present)
	assert.Equal(t, types.SideTop, cs.Side)
}

func TestFitLongSide(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{1024, 512, 256, 128},
		{100, 200, 100, 200},
		{20, 10, 48, 24},
		{300, 1, 256, 1},
	}
	for _, tt := range tests {
		w, h := fitLongSide(tt.w, tt.h, copySpaceMaxSide, copySpaceMinSide)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}
