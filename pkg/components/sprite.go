package components

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/silhouette-stack/internal/geom"
)

// SpriteComponent 存储方块的贴图及其与物理形状的对齐参数
//
// 绘制时以刚体位置为锚点，按 Scale 缩放原图，
// 并把原图中 OffsetFraction 所指的点（剪影质心，按图片宽高的比例表示）对齐到锚点。
type SpriteComponent struct {
	// Source 解码后的原始图片（带 alpha）
	Source image.Image
	// Image 首次绘制时由 Source 创建，之后复用
	Image *ebiten.Image

	Scale          float64
	OffsetFraction geom.Point
	ImageSize      geom.Size
}

// Anchor 返回原图中与刚体原点对齐的像素坐标
func (s *SpriteComponent) Anchor() geom.Point {
	return geom.Point{
		X: s.OffsetFraction.X * float64(s.ImageSize.W),
		Y: s.OffsetFraction.Y * float64(s.ImageSize.H),
	}
}
