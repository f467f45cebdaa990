package contour

import (
	"image"
)

// alphaPlane 提取 alpha 通道为 8 位平面
func alphaPlane(img image.Image) []uint8 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := make([]uint8, w*h)

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < w; x++ {
				plane[y*w+x] = row[x*4+3]
			}
		}
	case *image.Alpha:
		for y := 0; y < h; y++ {
			copy(plane[y*w:(y+1)*w], src.Pix[y*src.Stride:y*src.Stride+w])
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				plane[y*w+x] = uint8(a >> 8)
			}
		}
	}
	return plane
}

// boxBlur 可分离盒式模糊，边缘按钳位处理
func boxBlur(plane []uint8, w, h, radius int) []uint8 {
	tmp := make([]uint8, len(plane))
	out := make([]uint8, len(plane))
	size := 2*radius + 1

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for k := -radius; k <= radius; k++ {
				sum += int(plane[y*w+clamp(x+k, 0, w-1)])
			}
			tmp[y*w+x] = uint8(sum / size)
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for k := -radius; k <= radius; k++ {
				sum += int(tmp[clamp(y+k, 0, h-1)*w+x])
			}
			out[y*w+x] = uint8(sum / size)
		}
	}
	return out
}

// otsuThreshold 基于直方图的 Otsu 自动阈值
// 平面只有一种取值时返回 0（任何非零 alpha 视为不透明）
func otsuThreshold(plane []uint8) uint8 {
	var hist [256]int
	for _, v := range plane {
		hist[v]++
	}

	total := len(plane)
	sumAll := 0.0
	for i, c := range hist {
		sumAll += float64(i * c)
	}

	var (
		sumB     float64
		weightB  int
		best     float64
		thresh   uint8
		distinct int
	)
	for _, c := range hist {
		if c > 0 {
			distinct++
		}
	}
	if distinct < 2 {
		return 0
	}

	for t := 0; t < 256; t++ {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		meanB := sumB / float64(weightB)
		meanF := (sumAll - sumB) / float64(weightF)
		between := float64(weightB) * float64(weightF) * (meanB - meanF) * (meanB - meanF)
		if between > best {
			best = between
			thresh = uint8(t)
		}
	}
	return thresh
}

// binarize 大于阈值的像素为前景
func binarize(plane []uint8, thresh uint8) []bool {
	mask := make([]bool, len(plane))
	for i, v := range plane {
		mask[i] = v > thresh
	}
	return mask
}

// erode 3x3 腐蚀，图像外视为背景
func erode(mask []bool, w, h int) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			keep := true
			for dy := -1; dy <= 1 && keep; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h || !mask[ny*w+nx] {
						keep = false
						break
					}
				}
			}
			out[y*w+x] = keep
		}
	}
	return out
}

// dilate 3x3 膨胀
func dilate(mask []bool, w, h int) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx >= 0 && ny >= 0 && nx < w && ny < h {
						out[ny*w+nx] = true
					}
				}
			}
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
