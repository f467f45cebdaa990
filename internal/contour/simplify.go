package contour

import (
	"math"

	"github.com/decker502/silhouette-stack/internal/geom"
)

// simplifyClosed 对闭合环执行 Douglas-Peucker 简化
//
// 先以第 0 点和距它最远的点把环切成两条折线，分别简化后再拼接，
// 这样结果不依赖于起点恰好落在哪条边上。
func simplifyClosed(ring []geom.Point, epsilon float64) []geom.Point {
	n := len(ring)
	if n < 4 || epsilon <= 0 {
		return append([]geom.Point(nil), ring...)
	}

	far, farDist := 0, -1.0
	for i := 1; i < n; i++ {
		if d := sqDist(ring[0], ring[i]); d > farDist {
			far, farDist = i, d
		}
	}

	first := douglasPeucker(ring[:far+1], epsilon)
	second := douglasPeucker(append(append([]geom.Point(nil), ring[far:]...), ring[0]), epsilon)

	// 拼接：去掉重复的分割点与闭合点
	out := make([]geom.Point, 0, len(first)+len(second))
	out = append(out, first[:len(first)-1]...)
	out = append(out, second[:len(second)-1]...)
	return out
}

// douglasPeucker 折线简化，保留首尾点
func douglasPeucker(line []geom.Point, epsilon float64) []geom.Point {
	if len(line) < 3 {
		return append([]geom.Point(nil), line...)
	}

	keep := make([]bool, len(line))
	keep[0], keep[len(line)-1] = true, true

	type span struct{ lo, hi int }
	stack := []span{{0, len(line) - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx, maxDist := -1, 0.0
		for i := s.lo + 1; i < s.hi; i++ {
			if d := perpendicularDistance(line[i], line[s.lo], line[s.hi]); d > maxDist {
				idx, maxDist = i, d
			}
		}
		if idx >= 0 && maxDist > epsilon {
			keep[idx] = true
			stack = append(stack, span{s.lo, idx}, span{idx, s.hi})
		}
	}

	out := make([]geom.Point, 0, len(line))
	for i, p := range line {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

func perpendicularDistance(p, a, b geom.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	return math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / length
}

func sqDist(a, b geom.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	return dx*dx + dy*dy
}
