package entities

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/decker502/silhouette-stack/internal/geom"
	"github.com/decker502/silhouette-stack/pkg/components"
	"github.com/decker502/silhouette-stack/pkg/config"
	"github.com/decker502/silhouette-stack/pkg/ecs"
	"github.com/decker502/silhouette-stack/pkg/game"
)

// minPartArea 单个凸块的最小面积（像素²），更小的块会让 cp 的质量/惯量计算退化
const minPartArea = 0.01

// ErrNoParts 凸块列表为空，不创建任何刚体
var ErrNoParts = errors.New("no convex parts to build")

// PhysicsConstructionError 顶点数据无法构成合法的物理形状
type PhysicsConstructionError struct {
	Part   int // 出错的凸块下标，-1 表示与具体凸块无关
	Reason string
}

func (e *PhysicsConstructionError) Error() string {
	if e.Part < 0 {
		return "physics construction: " + e.Reason
	}
	return fmt.Sprintf("physics construction: part %d: %s", e.Part, e.Reason)
}

// FallableSpec 构建可下落方块所需的全部输入
type FallableSpec struct {
	// Parts 凸多边形列表，已缩放到世界尺寸，坐标相对剪影质心
	Parts [][]geom.Point
	// Position 刚体原点（剪影质心）在世界中的初始位置
	Position geom.Point

	SourceImageID int64
	Source        image.Image
	ImageSize     geom.Size
	// Centroid 剪影质心（原图像素坐标）
	Centroid geom.Point
	// Scale 原图到世界的缩放比例
	Scale float64

	Material config.Material
}

// NewFallableEntity 把凸块组装成一个复合刚体并加入物理世界
//
// 所有形状都构建成功后才把刚体加入世界，失败时世界保持不变。
// 返回:
//   - ErrNoParts: 凸块列表为空
//   - *PhysicsConstructionError: 顶点校验失败或 cp 构建失败
func NewFallableEntity(em *ecs.EntityManager, world *game.World, spec FallableSpec) (ecs.EntityID, error) {
	if len(spec.Parts) == 0 {
		return 0, ErrNoParts
	}
	if err := validateSpec(spec); err != nil {
		return 0, err
	}

	body, shapes, err := buildCompound(spec)
	if err != nil {
		return 0, err
	}

	id := em.CreateEntity()
	body.UserData = id
	world.AddCompound(body, shapes, spec.Material.Density)

	ecs.AddComponent(em, id, &components.FallableComponent{
		Kind:          components.BodyKindFallable,
		SourceImageID: spec.SourceImageID,
	})
	ecs.AddComponent(em, id, &components.PhysicsBodyComponent{
		Body:   body,
		Shapes: shapes,
		Epoch:  world.Epoch(),
	})
	ecs.AddComponent(em, id, &components.SpriteComponent{
		Source: spec.Source,
		Scale:  spec.Scale,
		OffsetFraction: geom.Point{
			X: spec.Centroid.X / float64(spec.ImageSize.W),
			Y: spec.Centroid.Y / float64(spec.ImageSize.H),
		},
		ImageSize: spec.ImageSize,
	})

	log.Printf("[Entities] Fallable %d built: image=%d parts=%d at (%.0f, %.0f)",
		id, spec.SourceImageID, len(shapes), spec.Position.X, spec.Position.Y)
	return id, nil
}

func validateSpec(spec FallableSpec) error {
	if !(spec.Scale > 0) || math.IsInf(spec.Scale, 0) {
		return &PhysicsConstructionError{Part: -1, Reason: fmt.Sprintf("invalid scale %v", spec.Scale)}
	}
	if spec.ImageSize.W <= 0 || spec.ImageSize.H <= 0 {
		return &PhysicsConstructionError{Part: -1, Reason: fmt.Sprintf("invalid image size %dx%d", spec.ImageSize.W, spec.ImageSize.H)}
	}
	if !geom.IsFinite([]geom.Point{spec.Position}) {
		return &PhysicsConstructionError{Part: -1, Reason: "non-finite spawn position"}
	}
	if !(spec.Material.Density > 0) {
		return &PhysicsConstructionError{Part: -1, Reason: "density must be positive"}
	}
	for i, part := range spec.Parts {
		if err := validatePart(part); err != nil {
			return &PhysicsConstructionError{Part: i, Reason: err.Error()}
		}
	}
	return nil
}

// validatePart 检查一个凸块能否安全交给 cp
func validatePart(part []geom.Point) error {
	switch {
	case len(part) < 3:
		return fmt.Errorf("needs at least 3 vertices, got %d", len(part))
	case !geom.IsFinite(part):
		return errors.New("non-finite vertex")
	case geom.Area(part) <= minPartArea:
		return fmt.Errorf("area %.4f too small", geom.Area(part))
	case !geom.IsConvex(part):
		return errors.New("not convex")
	}
	return nil
}

// buildCompound 为每个凸块创建一个多边形形状，全部挂在同一个刚体上
func buildCompound(spec FallableSpec) (body *cp.Body, shapes []*cp.Shape, err error) {
	defer func() {
		if r := recover(); r != nil {
			body, shapes = nil, nil
			err = &PhysicsConstructionError{Part: -1, Reason: fmt.Sprint(r)}
		}
	}()

	// 质量和转动惯量由形状密度累计
	body = cp.NewBody(0, 0)
	body.SetPosition(cp.Vector{X: spec.Position.X, Y: spec.Position.Y})

	shapes = make([]*cp.Shape, 0, len(spec.Parts))
	for _, part := range spec.Parts {
		// 顶点改为相对凸块自身质心，再由变换平移回原位
		c := geom.Centroid(part)
		verts := make([]cp.Vector, len(part))
		for i, p := range part {
			verts[i] = cp.Vector{X: p.X - c.X, Y: p.Y - c.Y}
		}

		shape := cp.NewPolyShape(body, len(verts), verts, cp.NewTransformTranslate(cp.Vector{X: c.X, Y: c.Y}), 0)
		shape.SetFriction(spec.Material.ContactFriction())
		shape.SetElasticity(spec.Material.Restitution)
		shapes = append(shapes, shape)
	}
	return body, shapes, nil
}

// RemoveFallable 把方块移出物理世界并标记实体删除
// 方块已移除或属于旧世界时返回 false
func RemoveFallable(em *ecs.EntityManager, world *game.World, id ecs.EntityID) bool {
	fall, ok := ecs.GetComponent[*components.FallableComponent](em, id)
	if !ok || fall.Escaped {
		return false
	}
	pb, ok := ecs.GetComponent[*components.PhysicsBodyComponent](em, id)
	if !ok {
		return false
	}
	fall.Escaped = true
	world.Remove(pb.Body, pb.Shapes, pb.Epoch)
	em.DestroyEntity(id)
	return true
}
