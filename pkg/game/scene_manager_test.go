package game

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/silhouette-stack/pkg/config"
)

// MockScene records calls made by the SceneManager.
type MockScene struct {
	id           string
	updateCalled bool
	drawCalled   bool
	deltaTime    float64
}

func (m *MockScene) Update(deltaTime float64) {
	m.updateCalled = true
	m.deltaTime = deltaTime
}

func (m *MockScene) Draw(screen *ebiten.Image) {
	m.drawCalled = true
}

func TestSceneManagerDelegates(t *testing.T) {
	sm := NewSceneManager()
	if sm.GetCurrentScene() != nil {
		t.Fatal("Expected no scene initially")
	}

	// 无场景时不应 panic
	sm.Update(1.0 / 60)
	sm.Draw(ebiten.NewImage(config.ScreenWidth, config.ScreenHeight))

	scene := &MockScene{}
	sm.SwitchTo(scene)
	sm.Update(1.0 / 60)
	sm.Draw(ebiten.NewImage(config.ScreenWidth, config.ScreenHeight))

	if !scene.updateCalled || !scene.drawCalled {
		t.Errorf("scene not driven: update=%v draw=%v", scene.updateCalled, scene.drawCalled)
	}
	if scene.deltaTime != 1.0/60 {
		t.Errorf("deltaTime = %f, want 1/60", scene.deltaTime)
	}
}

// savingScene 记录 SaveOnExit 调用次数
type savingScene struct {
	MockScene
	saves int
}

func (s *savingScene) SaveOnExit() bool {
	s.saves++
	return true
}

func TestSceneManagerLoadStage(t *testing.T) {
	sm := NewSceneManager()

	first := &savingScene{MockScene: MockScene{id: "first"}}
	sm.SwitchTo(first)
	if err := sm.LoadStage("2"); !errors.Is(err, ErrNoSceneFactory) {
		t.Fatalf("LoadStage without factory: err = %v, want ErrNoSceneFactory", err)
	}
	if sm.GetCurrentScene() != first {
		t.Fatal("LoadStage without factory must keep the current scene")
	}

	sm.SetSceneFactory(func(id string) (Scene, error) {
		if id == "missing" {
			return nil, errors.New("unknown stage")
		}
		return &MockScene{id: id}, nil
	})

	if err := sm.LoadStage("2"); err != nil {
		t.Fatalf("LoadStage(2) failed: %v", err)
	}
	got, ok := sm.GetCurrentScene().(*MockScene)
	if !ok || got.id != "2" {
		t.Fatalf("expected scene for stage 2, got %+v", sm.GetCurrentScene())
	}
	if first.saves != 1 {
		t.Errorf("replaced scene saved %d times, want 1", first.saves)
	}

	if err := sm.LoadStage("missing"); err == nil {
		t.Error("LoadStage(missing) should fail")
	}
	if sm.GetCurrentScene() != got {
		t.Error("failed load must keep the current scene")
	}
}
