package systems

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"

	"github.com/decker502/silhouette-stack/pkg/components"
	"github.com/decker502/silhouette-stack/pkg/config"
	"github.com/decker502/silhouette-stack/pkg/ecs"
)

var (
	platformColor  = color.RGBA{R: 90, G: 70, B: 50, A: 255}
	clearLineColor = color.RGBA{R: 80, G: 200, B: 120, A: 200}
	outlineColor   = color.RGBA{R: 255, G: 220, B: 60, A: 255}
	fallbackColor  = color.RGBA{R: 180, G: 180, B: 200, A: 255}
)

// RenderSystem 绘制关卡平台、通关线和全部可下落方块
//
// 方块贴图以刚体原点为锚点：先把原图中的剪影质心移到原点，
// 再按 SpriteComponent.Scale 缩放、按刚体角度旋转，最后平移到刚体位置。
type RenderSystem struct {
	em *ecs.EntityManager
	// DebugShapes 额外绘制碰撞形状轮廓
	DebugShapes bool
}

// NewRenderSystem 创建渲染系统
func NewRenderSystem(em *ecs.EntityManager) *RenderSystem {
	return &RenderSystem{em: em}
}

// DrawStage 绘制静态平台
func (rs *RenderSystem) DrawStage(screen *ebiten.Image) {
	for _, id := range ecs.GetEntitiesWith2[*components.PlatformComponent, *components.PhysicsBodyComponent](rs.em) {
		plat, _ := ecs.GetComponent[*components.PlatformComponent](rs.em, id)
		pb, _ := ecs.GetComponent[*components.PhysicsBodyComponent](rs.em, id)
		p := pb.Body.Position()
		vector.DrawFilledRect(screen,
			float32(p.X-plat.Width/2), float32(p.Y-plat.Height/2),
			float32(plat.Width), float32(plat.Height),
			platformColor, true)
	}
}

// DrawClearLine 绘制虚线形式的通关线
func (rs *RenderSystem) DrawClearLine(screen *ebiten.Image, y float64) {
	const dash, gap = 12, 8
	for x := 0; x < config.ScreenWidth; x += dash + gap {
		vector.StrokeLine(screen, float32(x), float32(y), float32(x+dash), float32(y), 2, clearLineColor, true)
	}
}

// DrawBodies 绘制全部可下落方块
func (rs *RenderSystem) DrawBodies(screen *ebiten.Image) {
	for _, id := range ecs.GetEntitiesWith3[*components.FallableComponent, *components.PhysicsBodyComponent, *components.SpriteComponent](rs.em) {
		fall, _ := ecs.GetComponent[*components.FallableComponent](rs.em, id)
		if fall.Escaped {
			continue
		}
		pb, _ := ecs.GetComponent[*components.PhysicsBodyComponent](rs.em, id)
		sprite, _ := ecs.GetComponent[*components.SpriteComponent](rs.em, id)

		if img := rs.spriteImage(sprite); img != nil {
			screen.DrawImage(img, spriteOptions(sprite, pb.Body))
		} else {
			drawShapes(screen, pb.Body, pb.Shapes, fallbackColor)
		}
		if rs.DebugShapes {
			drawShapes(screen, pb.Body, pb.Shapes, outlineColor)
		}
	}
}

// spriteImage 首次绘制时把解码后的图片上传为 ebiten.Image
func (rs *RenderSystem) spriteImage(s *components.SpriteComponent) *ebiten.Image {
	if s.Image == nil && s.Source != nil {
		s.Image = ebiten.NewImageFromImage(s.Source)
	}
	return s.Image
}

// spriteOptions 计算贴图的变换矩阵
func spriteOptions(s *components.SpriteComponent, body *cp.Body) *ebiten.DrawImageOptions {
	anchor := s.Anchor()
	pos := body.Position()

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-anchor.X, -anchor.Y)
	op.GeoM.Scale(s.Scale, s.Scale)
	op.GeoM.Rotate(body.Angle())
	op.GeoM.Translate(pos.X, pos.Y)
	op.Filter = ebiten.FilterLinear
	return op
}

// drawShapes 以线框绘制刚体的每个凸多边形
func drawShapes(screen *ebiten.Image, body *cp.Body, shapes []*cp.Shape, clr color.Color) {
	for _, shape := range shapes {
		poly, ok := shape.Class.(*cp.PolyShape)
		if !ok {
			continue
		}
		n := poly.Count()
		for i := 0; i < n; i++ {
			a := body.LocalToWorld(poly.Vert(i))
			b := body.LocalToWorld(poly.Vert((i + 1) % n))
			vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1.5, clr, true)
		}
	}
}
