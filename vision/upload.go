package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/BaSui01/promptlens/types"
)

const (
	DefaultMaxUploadDimension = 1024
	DefaultJPEGQuality        = 85
)

// 上游可以直接接收的格式
var uploadMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// Upload 发送给模型的图片负载
type Upload struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// PrepareUpload 将解码后的图片压缩为上传负载
// 尺寸与格式都合格时直接复用原始字节；带透明度的图片编码为 PNG 以保留 alpha，其余编码为 JPEG
func PrepareUpload(dec *Decoded, maxDim, quality int) (*Upload, error) {
	if dec == nil || dec.Image == nil {
		return nil, types.NewError(types.ErrInvalidImageData, "no decoded image")
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxUploadDimension
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	b := dec.Image.Bounds()
	w, h := b.Dx(), b.Dy()
	// JPEG 总是重新编码，使 EXIF 方向纠正对模型同样生效
	if w <= maxDim && h <= maxDim && uploadMimeTypes[dec.MimeType] && dec.MimeType != "image/jpeg" {
		return &Upload{Data: dec.Data, MimeType: dec.MimeType, Width: w, Height: h}, nil
	}

	img := dec.Image
	if w > maxDim || h > maxDim {
		scale := math.Min(float64(maxDim)/float64(w), float64(maxDim)/float64(h))
		w = max(1, min(maxDim, int(float64(w)*scale)))
		h = max(1, min(maxDim, int(float64(h)*scale)))
		img = resample(img, w, h)
	}

	var buf bytes.Buffer
	mime := "image/jpeg"
	if hasTransparency(img) {
		mime = "image/png"
		if err := png.Encode(&buf, img); err != nil {
			return nil, types.NewError(types.ErrInvalidImageData, "failed to encode png").WithCause(err)
		}
	} else if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: quality}); err != nil {
		return nil, types.NewError(types.ErrInvalidImageData, fmt.Sprintf("failed to encode jpeg (quality %d)", quality)).WithCause(err)
	}

	return &Upload{Data: buf.Bytes(), MimeType: mime, Width: w, Height: h}, nil
}

// flatten 保证 JPEG 编码输入以 (0,0) 为原点
func flatten(img image.Image) image.Image {
	if img.Bounds().Min == (image.Point{}) {
		return img
	}
	return toRGBA(img)
}
