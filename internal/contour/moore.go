package contour

import (
	"image"

	"github.com/decker502/silhouette-stack/internal/geom"
)

// mooreDirs 屏幕坐标下顺时针排列的 8 邻域，从正西开始
var mooreDirs = [8]image.Point{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

func dirIndex(d image.Point) int {
	for i, v := range mooreDirs {
		if v == d {
			return i
		}
	}
	return 0
}

// traceBoundary Moore 邻域追踪外边界
//
// start 必须是区域在光栅顺序中的第一个像素（其西侧必为背景）。
// 停止条件：以初始回溯方向回到起点（Jacob 准则），或从起点出发的下一步
// 与第一步完全相同（处理单像素宽的区域）。
func traceBoundary(labels []int32, w, h int, label int32, start image.Point) []geom.Point {
	inside := func(p image.Point) bool {
		return p.X >= 0 && p.Y >= 0 && p.X < w && p.Y < h && labels[p.Y*w+p.X] == label
	}

	// step 从 cur 出发，按顺时针从回溯方向的下一个邻居开始寻找前景像素
	step := func(cur image.Point, back int) (image.Point, int, bool) {
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			n := cur.Add(mooreDirs[d])
			if inside(n) {
				prev := cur.Add(mooreDirs[(d+7)%8])
				return n, dirIndex(prev.Sub(n)), true
			}
		}
		return cur, back, false
	}

	toPoint := func(p image.Point) geom.Point {
		return geom.Point{X: float64(p.X), Y: float64(p.Y)}
	}

	const startBack = 0 // 回溯点位于起点正西
	pts := []geom.Point{toPoint(start)}

	second, secondBack, ok := step(start, startBack)
	if !ok {
		// 孤立像素
		return pts
	}

	cur, back := second, secondBack
	maxSteps := 4*w*h + 8
	for steps := 0; steps < maxSteps; steps++ {
		if cur == start && back == startBack {
			break
		}
		if cur == start {
			if n, nb, _ := step(cur, back); n == second && nb == secondBack {
				break
			}
		}
		pts = append(pts, toPoint(cur))
		cur, back, _ = step(cur, back)
	}

	if n := len(pts); n >= 2 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	return pts
}
