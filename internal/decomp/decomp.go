// Package decomp 将简单多边形分解为凸多边形，供物理引擎构建碰撞形状
//
// 算法为 Bayazit 快速分解：对每个反射顶点寻找一条对角线（或 Steiner 点）
// 把多边形切成两半，递归直到所有子多边形都是凸多边形。
//
// 与原始做法不同，Decompose 在分解前会校验输入是简单多边形，
// 自相交的轮廓会直接返回 GeometryError，而不是静默地产生错误形状。
package decomp

import (
	"fmt"
	"math"

	"github.com/decker502/silhouette-stack/internal/geom"
)

const (
	// maxLevel 递归深度上限
	maxLevel = 100

	// DefaultCollinearAngle 移除共线点时的默认角度阈值（弧度）
	DefaultCollinearAngle = 0.01

	// areaTolerance 分解前后面积允许的相对误差，只容纳浮点舍入
	areaTolerance = 1e-6

	// minPartArea 小于此面积的子多边形视为退化并被丢弃
	minPartArea = 1e-6
)

// GeometryError 几何错误：输入多边形退化或分解失败
// 调用方应将其视为"无可生成刚体"，而不是致命错误
type GeometryError struct {
	Reason string
}

func (e *GeometryError) Error() string {
	return "geometry: " + e.Reason
}

func geometryErrorf(format string, args ...any) *GeometryError {
	return &GeometryError{Reason: fmt.Sprintf(format, args...)}
}

// Decompose 校验并分解多边形
//
// 步骤：
//  1. 校验至少 3 个有限顶点、面积非零、多边形简单（无自相交）
//  2. 统一为 CCW 绕序
//  3. 移除重复点和近共线点
//  4. 快速分解（未完成即失败），丢弃退化子多边形并校验每块都是凸的
//  5. 校验分解后的总面积与输入一致
//
// 返回的每个子多边形都是 CCW 的凸多边形，坐标与输入同一空间。
func Decompose(poly []geom.Point) ([]geom.Polygon, error) {
	if len(poly) < 3 {
		return nil, geometryErrorf("polygon has %d points, need at least 3", len(poly))
	}
	if !geom.IsFinite(poly) {
		return nil, geometryErrorf("polygon has non-finite coordinates")
	}

	work := RemoveCollinear(poly, DefaultCollinearAngle)
	if len(work) < 3 {
		return nil, geometryErrorf("polygon collapsed to %d points after collinear removal", len(work))
	}
	if geom.Area(work) < minPartArea {
		return nil, geometryErrorf("polygon has zero area")
	}
	if !IsSimple(work) {
		return nil, geometryErrorf("polygon is self-intersecting")
	}
	MakeCCW(work)

	if geom.IsConvex(work) {
		return []geom.Polygon{work}, nil
	}

	raw, ok := QuickDecomp(work)
	if !ok {
		return nil, geometryErrorf("convex decomposition of %d-gon did not complete", len(work))
	}
	parts := make([]geom.Polygon, 0, len(raw))
	total, dropped := 0.0, 0
	for _, p := range raw {
		p = RemoveCollinear(p, 0)
		a := geom.Area(p)
		if len(p) < 3 || a < minPartArea {
			dropped++
			continue
		}
		MakeCCW(p)
		if !geom.IsConvex(p) {
			return nil, geometryErrorf("decomposition produced a concave part")
		}
		parts = append(parts, p)
		total += a
	}
	if len(parts) == 0 {
		return nil, geometryErrorf("decomposition produced no convex parts")
	}

	want := geom.Area(work)
	if math.Abs(total-want) > want*areaTolerance+float64(dropped)*minPartArea {
		return nil, geometryErrorf("decomposition area %.2f differs from polygon area %.2f", total, want)
	}
	return parts, nil
}

// IsSimple 判断多边形是否简单（任意两条不相邻的边都不相交）
func IsSimple(poly []geom.Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := poly[i], poly[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// 相邻边共享端点，跳过
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if geom.SegmentsIntersect(a1, a2, poly[j], poly[(j+1)%n]) {
				return false
			}
		}
	}
	return true
}

// MakeCCW 若多边形为顺时针则原地反转，返回是否发生了反转
func MakeCCW(poly []geom.Point) bool {
	if geom.SignedArea(poly) < 0 {
		geom.Reverse(poly)
		return true
	}
	return false
}

// RemoveCollinear 返回去掉重复点和近共线点后的新多边形
// thresholdAngle 为 0 时只移除严格共线的点
func RemoveCollinear(poly []geom.Point, thresholdAngle float64) []geom.Point {
	out := make([]geom.Point, 0, len(poly))
	for _, p := range poly {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}

	for changed := true; changed && len(out) > 3; {
		changed = false
		for i := 0; i < len(out) && len(out) > 3; i++ {
			if collinear(at(out, i-1), out[i], at(out, i+1), thresholdAngle) {
				out = append(out[:i], out[i+1:]...)
				changed = true
				i--
			}
		}
	}
	return out
}

func collinear(a, b, c geom.Point, thresholdAngle float64) bool {
	if thresholdAngle == 0 {
		return geom.Cross(a, b, c) == 0
	}
	ab := b.Sub(a)
	bc := c.Sub(b)
	magA := math.Hypot(ab.X, ab.Y)
	magB := math.Hypot(bc.X, bc.Y)
	if magA == 0 || magB == 0 {
		return true
	}
	cos := (ab.X*bc.X + ab.Y*bc.Y) / (magA * magB)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) < thresholdAngle
}
