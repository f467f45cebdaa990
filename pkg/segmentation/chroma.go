package segmentation

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/decker502/silhouette-stack/pkg/config"
)

// rgbToHSV 8 位 RGB 转 HSV（色相单位为度，饱和度与明度为 0~1）
func rgbToHSV(r, g, b uint8) (h, s, v float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	maxC := math.Max(rf, math.Max(gf, bf))
	minC := math.Min(rf, math.Min(gf, bf))
	d := maxC - minC

	if d != 0 {
		switch maxC {
		case rf:
			h = math.Mod((gf-bf)/d, 6)
		case gf:
			h = (bf-rf)/d + 2
		default:
			h = (rf-gf)/d + 4
		}
		h *= 60
		if h < 0 {
			h += 360
		}
	}
	if maxC != 0 {
		s = d / maxC
	}
	return h, s, maxC
}

// IsGreen 判断颜色是否落在绿幕范围内
func IsGreen(c color.Color, key config.GreenKeyConfig) bool {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	h, s, v := rgbToHSV(n.R, n.G, n.B)
	return h >= key.HMin && h <= key.HMax && s >= key.SMin && v >= key.VMin
}

// RefineGreen 从人物遮罩中去掉画面上呈绿幕颜色的像素
// mask 必须与 frame 同尺寸
func RefineGreen(mask *Mask, frame image.Image, key config.GreenKeyConfig) (*Mask, error) {
	b := frame.Bounds()
	if mask.W != b.Dx() || mask.H != b.Dy() {
		return nil, fmt.Errorf("mask %dx%d does not match frame %dx%d", mask.W, mask.H, b.Dx(), b.Dy())
	}

	out := NewMask(mask.W, mask.H)
	for y := 0; y < mask.H; y++ {
		for x := 0; x < mask.W; x++ {
			i := y*mask.W + x
			if mask.Data[i] != 0 && !IsGreen(frame.At(b.Min.X+x, b.Min.Y+y), key) {
				out.Data[i] = 1
			}
		}
	}
	return out, nil
}
