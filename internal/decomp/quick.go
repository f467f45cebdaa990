package decomp

import (
	"log"
	"math"

	"github.com/decker502/silhouette-stack/internal/geom"
)

// reflexEpsilon 叉积在 [-reflexEpsilon, 0) 内的拐角视为共线（浮点舍入）
const reflexEpsilon = 1e-9

// QuickDecomp Bayazit 快速凸分解
//
// 输入必须是 CCW 的简单多边形（由 Decompose 保证）。
// 对反射顶点 i：沿 (i-1,i) 和 (i+1,i) 两条射线分别找到最近的
// 边交点，若两交点之间存在可见顶点，则连接到最近的可见顶点；
// 否则在两交点中点插入 Steiner 点。切分结果不合法时退回到
// 从 i 出发的最近内部对角线。两半递归处理，较小的一半优先。
//
// 第二个返回值为 false 表示分解未完成（达到递归上限或找不到合法切分），
// 此时已得到的子多边形不覆盖整个输入，调用方必须丢弃。
func QuickDecomp(poly []geom.Point) ([][]geom.Point, bool) {
	var result [][]geom.Point
	ok := quickDecomp(poly, &result, 0)
	return result, ok
}

func quickDecomp(poly []geom.Point, result *[][]geom.Point, level int) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	level++
	if level > maxLevel {
		log.Printf("[Decomp] Warning: max recursion level (%d) reached", maxLevel)
		return false
	}

	reflex := false
	for i := 0; i < n; i++ {
		if !isReflex(poly, i) {
			continue
		}
		reflex = true

		lower, upper, ok := bayazitSplit(poly, i)
		if !ok {
			lower, upper, ok = diagonalSplit(poly, i)
		}
		if !ok {
			continue
		}

		// 先处理较小的一半
		if len(upper) < len(lower) {
			lower, upper = upper, lower
		}
		return quickDecomp(lower, result, level) && quickDecomp(upper, result, level)
	}

	if reflex {
		log.Printf("[Decomp] Warning: no valid split for %d-gon", n)
		return false
	}
	*result = append(*result, poly)
	return true
}

// bayazitSplit 按 Bayazit 规则在反射顶点 i 处切分
func bayazitSplit(poly []geom.Point, i int) (lower, upper []geom.Point, ok bool) {
	n := len(poly)

	var lowerInt, upperInt geom.Point
	lowerDist, upperDist := math.MaxFloat64, math.MaxFloat64
	lowerIndex, upperIndex := -1, -1

	for j := 0; j < n; j++ {
		// 射线 (i-1 -> i) 与边 (j-1, j) 的交点
		if isLeft(at(poly, i-1), at(poly, i), at(poly, j)) &&
			isRightOn(at(poly, i-1), at(poly, i), at(poly, j-1)) {
			p := lineIntersection(at(poly, i-1), at(poly, i), at(poly, j), at(poly, j-1))
			if isRight(at(poly, i+1), at(poly, i), p) {
				if d := sqDist(poly[i], p); d < lowerDist {
					lowerDist, lowerInt, lowerIndex = d, p, j
				}
			}
		}
		// 射线 (i+1 -> i) 与边 (j, j+1) 的交点
		if isLeft(at(poly, i+1), at(poly, i), at(poly, j+1)) &&
			isRightOn(at(poly, i+1), at(poly, i), at(poly, j)) {
			p := lineIntersection(at(poly, i+1), at(poly, i), at(poly, j), at(poly, j+1))
			if isLeft(at(poly, i-1), at(poly, i), p) {
				if d := sqDist(poly[i], p); d < upperDist {
					upperDist, upperInt, upperIndex = d, p, j
				}
			}
		}
	}
	if lowerIndex < 0 || upperIndex < 0 {
		return nil, nil, false
	}

	if lowerIndex == (upperIndex+1)%n {
		// 两交点落在同一条边上，中间没有顶点，插入 Steiner 点
		p := geom.Point{X: (lowerInt.X + upperInt.X) / 2, Y: (lowerInt.Y + upperInt.Y) / 2}
		if i < upperIndex {
			lower = append(lower, poly[i:upperIndex+1]...)
			lower = append(lower, p)
			upper = append(upper, p)
			if lowerIndex != 0 {
				upper = append(upper, poly[lowerIndex:]...)
			}
			upper = append(upper, poly[:i+1]...)
		} else {
			lower = append(lower, poly[i:]...)
			lower = append(lower, poly[:upperIndex+1]...)
			lower = append(lower, p)
			upper = append(upper, p)
			upper = append(upper, poly[lowerIndex:i+1]...)
		}
		return lower, upper, validSplit(n, lower, upper)
	}

	// 连接到两交点之间最近的可见顶点
	if lowerIndex > upperIndex {
		upperIndex += n
	}
	closestDist := math.MaxFloat64
	closestIndex := -1
	for j := lowerIndex; j <= upperIndex; j++ {
		jj := j % n
		if !isLeftOn(at(poly, i-1), at(poly, i), poly[jj]) ||
			!isRightOn(at(poly, i+1), at(poly, i), poly[jj]) {
			continue
		}
		if d := sqDist(poly[i], poly[jj]); d < closestDist && isDiagonal(poly, i, jj) {
			closestDist = d
			closestIndex = jj
		}
	}
	if closestIndex < 0 {
		return nil, nil, false
	}
	lower, upper = splitAt(poly, i, closestIndex)
	return lower, upper, validSplit(n, lower, upper)
}

// diagonalSplit 沿 i 出发的最近内部对角线切分
// 简单多边形的反射顶点总存在这样的对角线，两半的顶点数都严格减少
func diagonalSplit(poly []geom.Point, i int) (lower, upper []geom.Point, ok bool) {
	best := -1
	bestDist := math.MaxFloat64
	for j := range poly {
		if d := sqDist(poly[i], poly[j]); d < bestDist && isDiagonal(poly, i, j) {
			best, bestDist = j, d
		}
	}
	if best < 0 {
		return nil, nil, false
	}
	lower, upper = splitAt(poly, i, best)
	return lower, upper, validSplit(len(poly), lower, upper)
}

// splitAt 沿对角线 (i, j) 切成两个多边形，两者都包含 i 和 j
func splitAt(poly []geom.Point, i, j int) (lower, upper []geom.Point) {
	if i < j {
		lower = append(lower, poly[i:j+1]...)
		upper = append(upper, poly[j:]...)
		upper = append(upper, poly[:i+1]...)
		return lower, upper
	}
	lower = append(lower, poly[i:]...)
	lower = append(lower, poly[:j+1]...)
	upper = append(upper, poly[j:i+1]...)
	return lower, upper
}

// validSplit 两半都是有面积的 CCW 简单多边形，且都比原多边形小
func validSplit(n int, lower, upper []geom.Point) bool {
	for _, part := range [][]geom.Point{lower, upper} {
		if len(part) < 3 || len(part) > n {
			return false
		}
		if geom.SignedArea(part) < minPartArea || !IsSimple(part) {
			return false
		}
	}
	return true
}

// at 循环取点，支持负索引
func at(poly []geom.Point, i int) geom.Point {
	n := len(poly)
	return poly[((i%n)+n)%n]
}

func isLeft(a, b, c geom.Point) bool    { return geom.Cross(a, b, c) > 0 }
func isLeftOn(a, b, c geom.Point) bool  { return geom.Cross(a, b, c) >= 0 }
func isRight(a, b, c geom.Point) bool   { return geom.Cross(a, b, c) < 0 }
func isRightOn(a, b, c geom.Point) bool { return geom.Cross(a, b, c) <= 0 }

// isReflex 内角大于 180°；舍入误差范围内的共线拐角不算
func isReflex(poly []geom.Point, i int) bool {
	return geom.Cross(at(poly, i-1), at(poly, i), at(poly, i+1)) < -reflexEpsilon
}

func sqDist(a, b geom.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	return dx*dx + dy*dy
}

// lineIntersection 两条直线（非线段）的交点，平行时返回零点
func lineIntersection(p1, p2, q1, q2 geom.Point) geom.Point {
	a1 := p2.Y - p1.Y
	b1 := p1.X - p2.X
	c1 := a1*p1.X + b1*p1.Y
	a2 := q2.Y - q1.Y
	b2 := q1.X - q2.X
	c2 := a2*q1.X + b2*q1.Y
	det := a1*b2 - a2*b1
	if det == 0 {
		return geom.Point{}
	}
	return geom.Point{X: (b2*c1 - b1*c2) / det, Y: (a1*c2 - a2*c1) / det}
}

// inCone 从顶点 a 指向 b 的方向是否落在 a 的内角之内
func inCone(poly []geom.Point, a, b int) bool {
	prev, cur, next := at(poly, a-1), poly[a], at(poly, a+1)
	pb := poly[b]
	if isLeftOn(prev, cur, next) {
		return isLeft(cur, pb, prev) && isLeft(pb, cur, next)
	}
	return !(isLeftOn(cur, pb, next) && isLeftOn(pb, cur, prev))
}

// isDiagonal a-b 是否为多边形的内部对角线：
// 两端都在内角之内，且不与任何不相邻的边接触
func isDiagonal(poly []geom.Point, a, b int) bool {
	n := len(poly)
	if a == b || (a+1)%n == b || (b+1)%n == a || poly[a] == poly[b] {
		return false
	}
	if !inCone(poly, a, b) || !inCone(poly, b, a) {
		return false
	}
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		if i == a || i == b || next == a || next == b {
			continue
		}
		if geom.SegmentsIntersect(poly[a], poly[b], poly[i], poly[next]) {
			return false
		}
	}
	return true
}
