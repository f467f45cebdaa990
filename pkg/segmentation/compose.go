package segmentation

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ApplyAlpha 按遮罩改写 alpha：人物 255，背景 0
func ApplyAlpha(frame image.Image, mask *Mask) (*image.NRGBA, error) {
	b := frame.Bounds()
	if mask.W != b.Dx() || mask.H != b.Dy() {
		return nil, fmt.Errorf("mask %dx%d does not match frame %dx%d", mask.W, mask.H, b.Dx(), b.Dy())
	}

	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), frame, b.Min, draw.Src)
	for i, v := range mask.Data {
		if v != 0 {
			out.Pix[i*4+3] = 255
		} else {
			out.Pix[i*4+3] = 0
		}
	}
	return out, nil
}

// MirrorImage 返回水平翻转后的图片
func MirrorImage(img image.Image) *image.NRGBA {
	b := img.Bounds()
	src := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)

	out := image.NewNRGBA(src.Bounds())
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < w; x++ {
			copy(out.Pix[out.PixOffset(x, y):out.PixOffset(x, y)+4], src.Pix[src.PixOffset(w-1-x, y):src.PixOffset(w-1-x, y)+4])
		}
	}
	return out
}
