package vision

import (
	"image"
	"math"
)

const (
	cutoutWidth     = 192
	cutoutMinHeight = 96
	sampleStep      = 2

	transparentAlpha = 10   // alpha 低于该值视为透明
	cutoutRatio      = 0.25 // 透明像素占比阈值
	checkerWhiteLum  = 245
	checkerGrayLow   = 200
	checkerGrayHigh  = 220
	checkerToneRatio = 0.10 // 白 / 灰两种色调各自的最低占比
)

// DetectCutoutOrCheckerboard 判断图片是否为透明抠图，或是否带有"假透明"的棋盘格背景
func DetectCutoutOrCheckerboard(img image.Image) (cutout, checker bool) {
	if img == nil {
		return false, false
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return false, false
	}

	h := max(cutoutMinHeight, int(math.Round(float64(cutoutWidth)*float64(b.Dy())/float64(b.Dx()))))
	rgba := resample(img, cutoutWidth, h)

	var total, transparent, white, gray int
	for y := 0; y < h; y += sampleStep {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < cutoutWidth; x += sampleStep {
			p := row[x*4 : x*4+4]
			total++
			if p[3] < transparentAlpha {
				transparent++
				continue
			}
			if p[3] != 0xff {
				continue
			}
			switch l := luminance(p[0], p[1], p[2]); {
			case l > checkerWhiteLum:
				white++
			case l >= checkerGrayLow && l <= checkerGrayHigh:
				gray++
			}
		}
	}
	if total == 0 {
		return false, false
	}

	cutout = float64(transparent)/float64(total) > cutoutRatio
	checker = float64(white)/float64(total) > checkerToneRatio &&
		float64(gray)/float64(total) > checkerToneRatio
	return cutout, checker
}
