package entities

import (
	"testing"

	"github.com/decker502/silhouette-stack/pkg/components"
	"github.com/decker502/silhouette-stack/pkg/config"
	"github.com/decker502/silhouette-stack/pkg/ecs"
)

func TestBuildStage(t *testing.T) {
	em, world := newTestWorld()
	stage := &config.StageConfig{
		ID: "2",
		Platforms: []config.PlatformConfig{
			{X: 250, Y: 740, Width: 100, Height: 20, Friction: 1},
			{X: 370, Y: 670, Width: 50, Height: 20, Friction: 1},
			{X: 370, Y: 470, Width: 50, Height: 20, Friction: 1},
		},
	}

	ids, err := BuildStage(em, world, stage)
	if err != nil {
		t.Fatalf("BuildStage failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("got %d platforms, want 3", len(ids))
	}
	if world.BodyCount() != 0 {
		t.Errorf("platforms must be static, got %d dynamic bodies", world.BodyCount())
	}

	plat, ok := ecs.GetComponent[*components.PlatformComponent](em, ids[1])
	if !ok || plat.Width != 50 || plat.Height != 20 {
		t.Errorf("platform component mismatch: %+v", plat)
	}
	pb, _ := ecs.GetComponent[*components.PhysicsBodyComponent](em, ids[2])
	if p := pb.Body.Position(); p.X != 370 || p.Y != 470 {
		t.Errorf("platform position = %+v", p)
	}
	if n := len(ecs.GetEntitiesWith1[*components.FallableComponent](em)); n != 0 {
		t.Errorf("platforms must not be tagged fallable, found %d", n)
	}
}

func TestNewPlatformEntityInvalid(t *testing.T) {
	em, world := newTestWorld()
	if _, err := NewPlatformEntity(em, world, config.PlatformConfig{Width: 0, Height: 10}); err == nil {
		t.Error("zero width platform should fail")
	}
}
