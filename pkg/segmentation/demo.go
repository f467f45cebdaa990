package segmentation

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"
)

// Figure 合成剪影的形状
type Figure int

const (
	FigureCircle Figure = iota
	FigurePerson
	FigureArmsUp
	FigureLeaning
	figureCount
)

// Contains 判断归一化坐标 (u, v)（0~1）是否落在形状内
func (f Figure) Contains(u, v float64) bool {
	switch f {
	case FigureCircle:
		return inEllipse(u, v, 0.5, 0.5, 0.3, 0.3)
	case FigurePerson:
		return inEllipse(u, v, 0.5, 0.22, 0.09, 0.1) || // 头
			inRect(u, v, 0.38, 0.32, 0.62, 0.68) || // 躯干
			inRect(u, v, 0.26, 0.34, 0.38, 0.58) || // 左臂
			inRect(u, v, 0.62, 0.34, 0.74, 0.58) || // 右臂
			inRect(u, v, 0.40, 0.68, 0.48, 0.92) || // 左腿
			inRect(u, v, 0.52, 0.68, 0.60, 0.92) // 右腿
	case FigureArmsUp:
		return inEllipse(u, v, 0.5, 0.3, 0.08, 0.09) ||
			inRect(u, v, 0.40, 0.39, 0.60, 0.72) ||
			inRect(u, v, 0.28, 0.10, 0.36, 0.45) ||
			inRect(u, v, 0.64, 0.10, 0.72, 0.45) ||
			inRect(u, v, 0.28, 0.39, 0.72, 0.45) ||
			inRect(u, v, 0.42, 0.72, 0.58, 0.92)
	case FigureLeaning:
		// 倾斜的身体 + 一侧伸出的手臂
		sheared := u - (0.7-v)*0.35
		return inEllipse(u, v, 0.62, 0.2, 0.08, 0.09) ||
			inRect(sheared, v, 0.42, 0.28, 0.6, 0.9) ||
			inRect(u, v, 0.2, 0.4, 0.55, 0.47)
	}
	return false
}

func inEllipse(u, v, cx, cy, rx, ry float64) bool {
	du, dv := (u-cx)/rx, (v-cy)/ry
	return du*du+dv*dv <= 1
}

func inRect(u, v, x0, y0, x1, y1 float64) bool {
	return u >= x0 && u <= x1 && v >= y0 && v <= y1
}

var (
	demoBackground = color.NRGBA{R: 40, G: 190, B: 70, A: 255} // 绿幕
	demoClothes    = color.NRGBA{R: 210, G: 90, B: 60, A: 255}
)

// DemoSource 生成绿幕前站着一个合成人物的画面，无需摄像头
//
// 每次 Frame 轮换到下一个形状；分割结果由 DemoSegmenter 按同一形状给出。
type DemoSource struct {
	W, H int

	mu      sync.Mutex
	figures []Figure
	next    int
	current Figure
}

// NewDemoSource 创建演示画面源；figures 为空时轮换全部形状
func NewDemoSource(w, h int, figures ...Figure) *DemoSource {
	if len(figures) == 0 {
		for f := Figure(0); f < figureCount; f++ {
			figures = append(figures, f)
		}
	}
	return &DemoSource{W: w, H: h, figures: figures}
}

// Ready 始终就绪
func (d *DemoSource) Ready() bool { return true }

// Current 最近一帧使用的形状
func (d *DemoSource) Current() Figure {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Frame 生成下一帧
func (d *DemoSource) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	fig := d.figures[d.next%len(d.figures)]
	d.next++
	d.current = fig
	d.mu.Unlock()

	img := image.NewNRGBA(image.Rect(0, 0, d.W, d.H))
	for y := 0; y < d.H; y++ {
		for x := 0; x < d.W; x++ {
			c := demoBackground
			if fig.Contains(float64(x)/float64(d.W), float64(y)/float64(d.H)) {
				// 左右渐变，便于确认镜像方向
				shade := uint8(math.Round(float64(x) / float64(d.W) * 80))
				c = color.NRGBA{R: demoClothes.R - shade/2, G: demoClothes.G, B: demoClothes.B + shade, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img, nil
}

// DemoSegmenter 按 DemoSource 当前形状输出低分辨率遮罩
//
// 遮罩比形状略大一圈，残留的绿幕边缘由 RefineGreen 去除。
type DemoSegmenter struct {
	Source *DemoSource
	// Downscale 遮罩相对画面的缩小倍数
	Downscale int
}

// Ready 始终就绪
func (s *DemoSegmenter) Ready() bool { return true }

// Segment 生成遮罩
func (s *DemoSegmenter) Segment(ctx context.Context, frame image.Image) (*Mask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := max(s.Downscale, 1)
	b := frame.Bounds()
	w, h := max(b.Dx()/k, 1), max(b.Dy()/k, 1)

	fig := s.Source.Current()
	grow := 1.5 / float64(w)
	m := NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			u, v := (float64(x)+0.5)/float64(w), (float64(y)+0.5)/float64(h)
			if fig.Contains(u, v) || fig.Contains(u-grow, v) || fig.Contains(u+grow, v) ||
				fig.Contains(u, v-grow) || fig.Contains(u, v+grow) {
				m.Data[y*w+x] = 1
			}
		}
	}
	return m, nil
}
