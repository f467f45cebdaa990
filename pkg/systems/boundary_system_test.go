package systems

import (
	"testing"

	"github.com/jakecoffman/cp"

	"github.com/decker502/silhouette-stack/pkg/components"
	"github.com/decker502/silhouette-stack/pkg/config"
	"github.com/decker502/silhouette-stack/pkg/ecs"
	"github.com/decker502/silhouette-stack/pkg/game"
)

func TestBoundarySystemGameOverExactlyOnce(t *testing.T) {
	em := ecs.NewEntityManager()
	world := game.NewWorld(config.DefaultGameConfig())
	session := game.NewSessionState()
	bs := NewBoundarySystem(em, world, session, 3)

	keep := spawnBox(t, em, world, 250, 300, 10)
	lost := spawnBox(t, em, world, 250, 300, 10)

	if n := bs.Update(); n != 0 || session.IsGameOver {
		t.Fatalf("nothing escaped yet: removed=%d gameOver=%v", n, session.IsGameOver)
	}

	bodyOf(em, lost).SetPosition(cp.Vector{X: 250, Y: config.ScreenHeight + 60})
	if n := bs.Update(); n != 1 {
		t.Fatalf("removed = %d, want 1", n)
	}
	if !session.IsGameOver || session.RestartCountdown == nil || *session.RestartCountdown != 3 {
		t.Fatalf("game over not set: %+v", session)
	}
	if world.BodyCount() != 1 {
		t.Errorf("escaped body still in world, count = %d", world.BodyCount())
	}

	// 后续帧不再重复移除或重复触发
	bodyOf(em, keep).SetPosition(cp.Vector{X: -200, Y: 300})
	for i := 0; i < 5; i++ {
		if n := bs.Update(); n != 0 {
			t.Fatalf("frame %d removed %d bodies after game over", i, n)
		}
	}
	if world.BodyCount() != 1 {
		t.Error("scan must be skipped once game over is set")
	}

	em.RemoveMarkedEntities()
	if n := len(ecs.GetEntitiesWith1[*components.FallableComponent](em)); n != 1 {
		t.Errorf("fallable entities = %d, want 1", n)
	}
}

func TestBoundarySystemSides(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		lost bool
	}{
		{"left edge inside margin", -40, 300, false},
		{"past left", -60, 300, true},
		{"past right", config.ScreenWidth + 60, 300, true},
		{"above screen", 250, -300, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			em := ecs.NewEntityManager()
			world := game.NewWorld(config.DefaultGameConfig())
			session := game.NewSessionState()
			bs := NewBoundarySystem(em, world, session, 3)

			id := spawnBox(t, em, world, 250, 300, 10)
			bodyOf(em, id).SetPosition(cp.Vector{X: tt.x, Y: tt.y})
			bs.Update()
			if session.IsGameOver != tt.lost {
				t.Errorf("IsGameOver = %v, want %v", session.IsGameOver, tt.lost)
			}
		})
	}
}
