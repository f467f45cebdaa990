package entities

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/decker502/silhouette-stack/pkg/components"
	"github.com/decker502/silhouette-stack/pkg/config"
	"github.com/decker502/silhouette-stack/pkg/ecs"
	"github.com/decker502/silhouette-stack/pkg/game"
)

// NewPlatformEntity 创建一个静态矩形平台
// 平台坐标为矩形中心点
func NewPlatformEntity(em *ecs.EntityManager, world *game.World, p config.PlatformConfig) (ecs.EntityID, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return 0, &PhysicsConstructionError{Part: -1, Reason: fmt.Sprintf("platform size %.1fx%.1f", p.Width, p.Height)}
	}

	body := cp.NewStaticBody()
	body.SetPosition(cp.Vector{X: p.X, Y: p.Y})
	shape := cp.NewBox(body, p.Width, p.Height, 0)
	shape.SetFriction(p.Friction)
	shape.SetElasticity(0)

	id := em.CreateEntity()
	body.UserData = id
	shapes := []*cp.Shape{shape}
	world.AddCompound(body, shapes, 0)

	ecs.AddComponent(em, id, &components.PlatformComponent{Width: p.Width, Height: p.Height})
	ecs.AddComponent(em, id, &components.PhysicsBodyComponent{
		Body:   body,
		Shapes: shapes,
		Epoch:  world.Epoch(),
	})
	return id, nil
}

// BuildStage 按关卡配置创建全部平台
func BuildStage(em *ecs.EntityManager, world *game.World, stage *config.StageConfig) ([]ecs.EntityID, error) {
	ids := make([]ecs.EntityID, 0, len(stage.Platforms))
	for i, p := range stage.Platforms {
		id, err := NewPlatformEntity(em, world, p)
		if err != nil {
			return ids, fmt.Errorf("stage %s platform %d: %w", stage.ID, i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
