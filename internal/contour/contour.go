// Package contour 从带 alpha 通道的剪影图像中提取最大连通区域的外轮廓
//
// 流水线：alpha 平面 → 盒式模糊 → Otsu 自动阈值 → 形态学开运算 →
// 8 连通区域标记（同时累计图像矩）→ 选出面积最大的区域 →
// Moore 邻域外边界追踪 → Douglas-Peucker 简化。
//
// 质心使用简化前区域的图像矩计算，因此与简化强度无关。
// 全透明或退化输入返回 Points 为空的 Result，不返回错误。
package contour

import (
	"image"
	"log"

	"github.com/decker502/silhouette-stack/internal/geom"
)

// Options 轮廓提取参数
type Options struct {
	// BlurRadius 盒式模糊半径（1 表示 3x3），0 表示不模糊
	BlurRadius int
	// EpsilonFraction 简化容差占轮廓周长的比例（建议 0.002 ~ 0.01）
	EpsilonFraction float64
	// Opening 是否执行 3x3 形态学开运算以去除孤立噪点
	Opening bool
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		BlurRadius:      1,
		EpsilonFraction: 0.005,
		Opening:         true,
	}
}

// Result 轮廓提取结果
type Result struct {
	Points       []geom.Point // 简化后的闭合外轮廓（图像像素坐标）
	BoundingRect geom.Rect    // 所选区域的包围盒
	ImageSize    geom.Size    // 原图尺寸
	Centroid     geom.Point   // 所选区域的面积加权质心（简化前）
	Area         int          // 所选区域的像素数
}

// Empty 结果是否不包含可用轮廓
func (r Result) Empty() bool {
	return len(r.Points) < 3
}

// Trace 提取 img 中最大不透明区域的外轮廓
func Trace(img image.Image, opts Options) Result {
	if img == nil {
		return Result{}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	res := Result{ImageSize: geom.Size{W: w, H: h}}
	if w == 0 || h == 0 {
		return res
	}

	plane := alphaPlane(img)
	if opts.BlurRadius > 0 {
		plane = boxBlur(plane, w, h, opts.BlurRadius)
	}
	mask := binarize(plane, otsuThreshold(plane))
	if opts.Opening {
		mask = dilate(erode(mask, w, h), w, h)
	}

	labels, comps := labelComponents(mask, w, h)
	best := -1
	for i, c := range comps {
		if best < 0 || c.area > comps[best].area {
			best = i
		}
	}
	if best < 0 {
		return res
	}
	comp := comps[best]

	ring := traceBoundary(labels, w, h, comp.label, comp.start)
	if len(ring) < 3 {
		log.Printf("[Contour] Largest region (%d px) has degenerate boundary (%d points)", comp.area, len(ring))
		return res
	}

	epsilon := opts.EpsilonFraction * geom.Perimeter(ring)
	simplified := simplifyClosed(ring, epsilon)
	if len(simplified) < 3 {
		return res
	}

	res.Points = simplified
	res.BoundingRect = geom.Rect{
		X: comp.minX,
		Y: comp.minY,
		W: comp.maxX - comp.minX + 1,
		H: comp.maxY - comp.minY + 1,
	}
	res.Centroid = geom.Point{
		X: comp.m10 / float64(comp.area),
		Y: comp.m01 / float64(comp.area),
	}
	res.Area = comp.area
	return res
}
