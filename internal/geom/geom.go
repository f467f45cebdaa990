// Package geom 提供轮廓提取、凸分解和刚体构建共用的二维几何基础类型
//
// 坐标约定：所有多边形都在屏幕/图像坐标系中（Y 轴向下）。
// "逆时针(CCW)" 在本模块中统一定义为鞋带公式求得的有符号面积为正，
// 分解器和刚体构建器都使用同一定义，保证绕序一致。
package geom

import "math"

// convexEpsilon 凸性判断时叉积的容差，吸收分解产生的浮点误差
const convexEpsilon = 1e-6

// Point 二维点
type Point struct {
	X, Y float64
}

// Add 返回 p + q
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub 返回 p - q
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul 返回 p * s
func (p Point) Mul(s float64) Point { return Point{p.X * s, p.Y * s} }

// Polygon 有序顶点序列，首尾隐式闭合
type Polygon = []Point

// Rect 图像空间中的整数矩形（左上角 + 宽高）
type Rect struct {
	X, Y, W, H int
}

// Empty 矩形是否为空
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Size 图像尺寸
type Size struct {
	W, H int
}

// Cross 返回 (b-a) × (c-a) 的 z 分量
func Cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}

// SignedArea 鞋带公式有符号面积，正值表示本模块定义的 CCW
func SignedArea(poly []Point) float64 {
	n := len(poly)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return sum / 2
}

// Area 多边形面积（绝对值）
func Area(poly []Point) float64 {
	return math.Abs(SignedArea(poly))
}

// Centroid 面积加权质心
// 面积为零时退化为顶点均值
func Centroid(poly []Point) Point {
	n := len(poly)
	if n == 0 {
		return Point{}
	}
	a := SignedArea(poly)
	if math.Abs(a) < 1e-12 {
		var c Point
		for _, p := range poly {
			c = c.Add(p)
		}
		return c.Mul(1 / float64(n))
	}
	var cx, cy float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		f := poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
		cx += (poly[i].X + poly[j].X) * f
		cy += (poly[i].Y + poly[j].Y) * f
	}
	return Point{cx / (6 * a), cy / (6 * a)}
}

// IsConvex 判断多边形是否为凸（允许共线顶点）
func IsConvex(poly []Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	sign := 0
	for i := 0; i < n; i++ {
		c := Cross(poly[i], poly[(i+1)%n], poly[(i+2)%n])
		switch {
		case c > convexEpsilon:
			if sign < 0 {
				return false
			}
			sign = 1
		case c < -convexEpsilon:
			if sign > 0 {
				return false
			}
			sign = -1
		}
	}
	return sign != 0
}

// Reverse 原地反转顶点顺序
func Reverse(poly []Point) {
	for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
		poly[i], poly[j] = poly[j], poly[i]
	}
}

// Translate 返回平移后的新多边形
func Translate(poly []Point, d Point) []Point {
	out := make([]Point, len(poly))
	for i, p := range poly {
		out[i] = p.Add(d)
	}
	return out
}

// Scale 返回缩放后的新多边形（以原点为中心）
func Scale(poly []Point, s float64) []Point {
	out := make([]Point, len(poly))
	for i, p := range poly {
		out[i] = p.Mul(s)
	}
	return out
}

// Bounds 返回包围盒 (minX, minY, maxX, maxY)
func Bounds(poly []Point) (minX, minY, maxX, maxY float64) {
	if len(poly) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = poly[0].X, poly[0].Y
	maxX, maxY = minX, minY
	for _, p := range poly[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}

// Perimeter 闭合多边形周长
func Perimeter(poly []Point) float64 {
	n := len(poly)
	if n < 2 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += math.Hypot(poly[j].X-poly[i].X, poly[j].Y-poly[i].Y)
	}
	return sum
}

// SegmentsIntersect 判断线段 p1p2 与 q1q2 是否相交（含端点接触与共线重叠）
func SegmentsIntersect(p1, p2, q1, q2 Point) bool {
	d1 := Cross(q1, q2, p1)
	d2 := Cross(q1, q2, p2)
	d3 := Cross(p1, p2, q1)
	d4 := Cross(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}

func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// IsFinite 所有坐标都是有限数
func IsFinite(poly []Point) bool {
	for _, p := range poly {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}
