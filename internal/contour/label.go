package contour

import "image"

// component 连通区域统计信息（含零阶、一阶图像矩）
type component struct {
	label                  int32
	area                   int
	m10, m01               float64
	minX, minY, maxX, maxY int
	start                  image.Point // 光栅顺序中的第一个像素，必在外边界上
}

// labelComponents 两遍扫描 + 并查集的 8 连通区域标记
//
// 返回每个像素的最终标签（0 为背景）以及按首次出现顺序排列的区域列表。
func labelComponents(mask []bool, w, h int) ([]int32, []component) {
	labels := make([]int32, w*h)
	parent := []int32{0}

	find := func(x int32) int32 {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int32) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}

	next := int32(1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			var cur int32
			// 已访问的邻居：W, NW, N, NE
			for _, d := range [4][2]int{{-1, 0}, {-1, -1}, {0, -1}, {1, -1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= w {
					continue
				}
				l := labels[ny*w+nx]
				if l == 0 {
					continue
				}
				if cur == 0 {
					cur = l
				} else if l != cur {
					union(cur, l)
				}
			}
			if cur == 0 {
				cur = next
				parent = append(parent, next)
				next++
			}
			labels[y*w+x] = cur
		}
	}

	// 第二遍：归并标签并累计统计
	index := make(map[int32]int)
	var comps []component
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if labels[i] == 0 {
				continue
			}
			root := find(labels[i])
			labels[i] = root

			ci, ok := index[root]
			if !ok {
				ci = len(comps)
				index[root] = ci
				comps = append(comps, component{
					label: root,
					minX:  x, minY: y, maxX: x, maxY: y,
					start: image.Pt(x, y),
				})
			}
			c := &comps[ci]
			c.area++
			c.m10 += float64(x)
			c.m01 += float64(y)
			if x < c.minX {
				c.minX = x
			}
			if x > c.maxX {
				c.maxX = x
			}
			if y > c.maxY {
				c.maxY = y
			}
		}
	}
	return labels, comps
}
