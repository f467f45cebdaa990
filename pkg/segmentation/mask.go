// Package segmentation 处理人物分割模型的输出
//
// 分割模型本身是外部协作者；本包只负责把它给出的 0/1 遮罩
// 与预览画面对齐（镜像、缩放）、去掉绿幕残留，并生成带 alpha 的剪影图片。
package segmentation

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Mask 逐像素人物遮罩，1 表示人物，0 表示背景
type Mask struct {
	W, H int
	Data []uint8
}

// NewMask 创建全 0 遮罩
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Data: make([]uint8, w*h)}
}

// Validate 检查尺寸与数据长度一致
func (m *Mask) Validate() error {
	if m == nil {
		return fmt.Errorf("mask is nil")
	}
	if m.W <= 0 || m.H <= 0 {
		return fmt.Errorf("invalid mask size %dx%d", m.W, m.H)
	}
	if len(m.Data) != m.W*m.H {
		return fmt.Errorf("mask data length %d does not match %dx%d", len(m.Data), m.W, m.H)
	}
	return nil
}

// At 返回 (x, y) 处是否为人物；越界返回 false
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.Data[y*m.W+x] != 0
}

// Set 设置 (x, y) 处的值
func (m *Mask) Set(x, y int, person bool) {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return
	}
	var v uint8
	if person {
		v = 1
	}
	m.Data[y*m.W+x] = v
}

// Count 人物像素数
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v != 0 {
			n++
		}
	}
	return n
}

// Mirror 返回水平翻转后的新遮罩
// 预览画面是镜像显示时，遮罩也要翻转才能与画面对齐
func (m *Mask) Mirror() *Mask {
	out := NewMask(m.W, m.H)
	for y := 0; y < m.H; y++ {
		row := y * m.W
		for x := 0; x < m.W; x++ {
			out.Data[row+x] = m.Data[row+m.W-1-x]
		}
	}
	return out
}

// Resize 以最近邻插值缩放到 w×h
// 分割模型的输出分辨率通常低于画面，需要放大后才能逐像素对应
func (m *Mask) Resize(w, h int) *Mask {
	if w == m.W && h == m.H {
		out := NewMask(w, h)
		copy(out.Data, m.Data)
		return out
	}

	src := m.gray()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	out := NewMask(w, h)
	for i, v := range dst.Pix[:w*h] {
		if v >= 128 {
			out.Data[i] = 1
		}
	}
	return out
}

// gray 转成灰度图（人物 255）
func (m *Mask) gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.W, m.H))
	for i, v := range m.Data {
		if v != 0 {
			img.Pix[i] = 255
		}
	}
	return img
}

// FromAlpha 由图片的 alpha 通道生成遮罩（alpha > 0 视为人物）
func FromAlpha(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA).A > 0 {
				m.Data[y*m.W+x] = 1
			}
		}
	}
	return m
}
