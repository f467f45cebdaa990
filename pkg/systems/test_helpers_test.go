package systems

import (
	"testing"

	"github.com/jakecoffman/cp"

	"github.com/decker502/silhouette-stack/internal/geom"
	"github.com/decker502/silhouette-stack/pkg/components"
	"github.com/decker502/silhouette-stack/pkg/config"
	"github.com/decker502/silhouette-stack/pkg/ecs"
	"github.com/decker502/silhouette-stack/pkg/entities"
	"github.com/decker502/silhouette-stack/pkg/game"
)

// spawnBox 在 (x, y) 生成一个 2*half 边长的方块
func spawnBox(t *testing.T, em *ecs.EntityManager, world *game.World, x, y, half float64) ecs.EntityID {
	t.Helper()
	id, err := entities.NewFallableEntity(em, world, entities.FallableSpec{
		Parts: [][]geom.Point{{
			{X: -half, Y: -half}, {X: -half, Y: half}, {X: half, Y: half}, {X: half, Y: -half},
		}},
		Position:      geom.Point{X: x, Y: y},
		SourceImageID: 1,
		ImageSize:     geom.Size{W: 100, H: 100},
		Centroid:      geom.Point{X: 50, Y: 50},
		Scale:         1,
		Material:      config.DefaultGameConfig().Material,
	})
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}
	return id
}

func bodyOf(em *ecs.EntityManager, id ecs.EntityID) *cp.Body {
	pb, _ := ecs.GetComponent[*components.PhysicsBodyComponent](em, id)
	return pb.Body
}
