package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/BaSui01/promptlens/types"
)

var supportedMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// Decoded 解码后的图片及其原始字节
type Decoded struct {
	Image    image.Image
	MimeType string
	Data     []byte
}

// Decode 解码图片字节，失败时返回 INVALID_IMAGE_DATA
func Decode(data []byte) (*Decoded, error) {
	if len(data) == 0 {
		return nil, types.NewError(types.ErrInvalidImageData, "image data is empty")
	}

	mime := mimetype.Detect(data).String()
	if !supportedMimeTypes[mime] {
		return nil, types.NewError(types.ErrInvalidImageData, fmt.Sprintf("unsupported image type %q", mime))
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, types.NewError(types.ErrInvalidImageData, "failed to decode image").WithCause(err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, types.NewError(types.ErrInvalidImageData, "image has no pixels")
	}

	if mime == "image/jpeg" {
		if orientation := imageOrientation(data); orientation != 1 {
			img = correctOrientation(img, orientation)
		}
	}

	return &Decoded{Image: img, MimeType: mime, Data: data}, nil
}

// imageOrientation 读取 JPEG 的 EXIF 方向，缺失时返回 1
func imageOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

// correctOrientation 按 EXIF 方向（2-8）旋转 / 翻转图片
func correctOrientation(img image.Image, orientation int) image.Image {
	if orientation < 2 || orientation > 8 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	src := toRGBA(img)

	dw, dh := w, h
	if orientation >= 5 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var nx, ny int
			switch orientation {
			case 2: // 水平翻转
				nx, ny = w-1-x, y
			case 3: // 旋转 180
				nx, ny = w-1-x, h-1-y
			case 4: // 垂直翻转
				nx, ny = x, h-1-y
			case 5: // 转置
				nx, ny = y, x
			case 6: // 顺时针 90
				nx, ny = h-1-y, x
			case 7: // 反转置
				nx, ny = h-1-y, w-1-x
			case 8: // 逆时针 90
				nx, ny = y, w-1-x
			}
			dst.SetRGBA(nx, ny, src.RGBAAt(x, y))
		}
	}
	return dst
}

// toRGBA 将任意图片转换为以 (0,0) 为原点的 RGBA
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// resample 缩放到 w×h，保留 alpha 通道
func resample(img image.Image, w, h int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return toRGBA(img)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// hasTransparency 是否存在非完全不透明的像素
func hasTransparency(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}
