package vision

import (
	"image"
	"math"

	"github.com/BaSui01/promptlens/types"
)

const (
	copySpaceMaxSide = 256
	copySpaceMinSide = 48

	bandRatio        = 0.35 // 每条边带占宽/高的比例
	centerLow        = 0.30
	centerHigh       = 0.70
	lowActivityRatio = 0.4 // 边带均值低于中心均值的该比例视为低纹理

	maxCopySpaceScore = 0.999
)

type region struct {
	side           types.Side
	x0, y0, x1, y1 int
}

// DetectCopySpace 通过梯度能量寻找低纹理边带
// 候选边的评估顺序固定为 left → right → top → bottom，均值相同取先出现者
func DetectCopySpace(img image.Image) types.CopySpace {
	if img == nil {
		return types.CopySpace{}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return types.CopySpace{}
	}

	w, h := fitLongSide(b.Dx(), b.Dy(), copySpaceMaxSide, copySpaceMinSide)
	grad := gradientMagnitude(luminanceMap(resample(img, w, h)), w, h)

	bandW := max(1, int(math.Round(bandRatio*float64(w))))
	bandH := max(1, int(math.Round(bandRatio*float64(h))))
	cx0, cx1 := span(w)
	cy0, cy1 := span(h)

	center := meanOver(grad, w, region{x0: cx0, y0: cy0, x1: cx1, y1: cy1})
	if center <= 0 {
		return types.CopySpace{}
	}

	bands := []region{
		{side: types.SideLeft, x0: 0, y0: 0, x1: bandW, y1: h},
		{side: types.SideRight, x0: w - bandW, y0: 0, x1: w, y1: h},
		{side: types.SideTop, x0: 0, y0: 0, x1: w, y1: bandH},
		{side: types.SideBottom, x0: 0, y0: h - bandH, x1: w, y1: h},
	}

	chosen := types.SideNone
	chosenMean := math.Inf(1)
	for _, r := range bands {
		m := meanOver(grad, w, r)
		if m < lowActivityRatio*center && m < chosenMean {
			chosen, chosenMean = r.side, m
		}
	}
	if chosen == types.SideNone {
		return types.CopySpace{}
	}

	score := (center - chosenMean) / center
	return types.CopySpace{
		Present: true,
		Side:    chosen,
		Score:   math.Max(0, math.Min(score, maxCopySpaceScore)),
	}
}

// fitLongSide 将长边限制在 [minSide, maxSide]，保持宽高比
func fitLongSide(w, h, maxSide, minSide int) (int, int) {
	long := max(w, h)
	target := min(max(long, minSide), maxSide)
	if target == long {
		return w, h
	}
	scale := float64(target) / float64(long)
	return max(1, int(math.Round(float64(w)*scale))), max(1, int(math.Round(float64(h)*scale)))
}

// span 中心框在一个轴上的 [30%, 70%) 区间，至少包含一个像素
func span(n int) (int, int) {
	lo := int(centerLow * float64(n))
	hi := int(math.Ceil(centerHigh * float64(n)))
	if hi <= lo {
		hi = min(n, lo+1)
	}
	return lo, hi
}

// luminanceMap 按 ITU-R BT.601 权重计算灰度
func luminanceMap(img *image.RGBA) []float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	lum := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4]
			lum[y*w+x] = luminance(p[0], p[1], p[2])
		}
	}
	return lum
}

func luminance(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// gradientMagnitude 使用上下左右四邻域的中心差分，边缘像素取自身
func gradientMagnitude(lum []float64, w, h int) []float64 {
	grad := make([]float64, w*h)
	for y := 0; y < h; y++ {
		up, down := max(y-1, 0), min(y+1, h-1)
		for x := 0; x < w; x++ {
			left, right := max(x-1, 0), min(x+1, w-1)
			gx := lum[y*w+right] - lum[y*w+left]
			gy := lum[down*w+x] - lum[up*w+x]
			grad[y*w+x] = math.Hypot(gx, gy)
		}
	}
	return grad
}

func meanOver(grad []float64, w int, r region) float64 {
	var sum float64
	n := 0
	for y := r.y0; y < r.y1; y++ {
		for x := r.x0; x < r.x1; x++ {
			sum += grad[y*w+x]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
