package scenes

import (
	"context"
	"image"
	"image/color"
	"math/rand/v2"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/decker502/silhouette-stack/internal/geom"
	"github.com/decker502/silhouette-stack/pkg/capture"
	"github.com/decker502/silhouette-stack/pkg/components"
	"github.com/decker502/silhouette-stack/pkg/config"
	"github.com/decker502/silhouette-stack/pkg/ecs"
	"github.com/decker502/silhouette-stack/pkg/embedded"
	"github.com/decker502/silhouette-stack/pkg/entities"
	"github.com/decker502/silhouette-stack/pkg/game"
	"github.com/decker502/silhouette-stack/pkg/imagestore"
	"github.com/decker502/silhouette-stack/pkg/segmentation"
	"github.com/decker502/silhouette-stack/pkg/utils"
)

const frame = 1.0 / 60

// newTestServices 使用演示相机（圆形剪影）和内存图片库搭建服务
func newTestServices(t *testing.T) (*Services, *utils.ScriptedInput) {
	t.Helper()
	svc, in, _ := newTestServicesWithStore(t)
	return svc, in
}

// newTestServicesWithStore 同 newTestServices，并订阅返回的图片库
func newTestServicesWithStore(t *testing.T) (*Services, *utils.ScriptedInput, *imagestore.MemoryStore) {
	t.Helper()
	embedded.Init(os.DirFS("../.."))
	stages, err := config.LoadStages()
	if err != nil {
		t.Fatalf("LoadStages failed: %v", err)
	}

	cfg := config.DefaultGameConfig()
	store := imagestore.NewMemoryStore()
	src := segmentation.NewDemoSource(160, 120, segmentation.FigureCircle)
	cam := segmentation.NewCamera(src, &segmentation.DemoSegmenter{Source: src, Downscale: 2}, cfg.Segmentation)
	pipe := capture.NewPipeline(store, capture.ContourOptions(cfg.Contour), cfg.Block.DefaultSize)
	orch := capture.NewOrchestrator(cam, store, pipe, capture.Options{
		Interval:      cfg.Capture.IntervalSeconds,
		ErrorRecovery: cfg.Capture.ErrorRecoverySeconds,
	})
	watchCtx, watchCancel := context.WithCancel(context.Background())
	if err := orch.Watch(watchCtx, store, 0); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	t.Cleanup(func() {
		watchCancel()
		orch.Close()
		store.Close()
	})

	settings, err := game.NewSettingsManager(nil)
	if err != nil {
		t.Fatal(err)
	}
	settings.SetAutoCapture(false)

	in := utils.NewScriptedInput()
	svc := &Services{
		Config:       cfg,
		Stages:       stages,
		Orchestrator: orch,
		Pipeline:     pipe,
		Scores:       game.NewScoreManager(nil, cfg.Session.TopScores),
		Settings:     settings,
		Input:        in,
		Rand:         rand.New(rand.NewPCG(1, 2)),
	}
	return svc, in, store
}

func newTestScene(t *testing.T, stageID string) (*GameScene, *Services, *utils.ScriptedInput) {
	t.Helper()
	svc, in := newTestServices(t)
	s, err := NewGameScene(svc, nil, stageID)
	if err != nil {
		t.Fatalf("NewGameScene failed: %v", err)
	}
	return s, svc, in
}

func fallables(s *GameScene) []ecs.EntityID {
	return ecs.GetEntitiesWith1[*components.FallableComponent](s.entityManager)
}

// spawnBox 直接在场景中放置一个 w*h 的方块（不经过拍摄流程）
func spawnBox(t *testing.T, s *GameScene, x, y, w, h float64) ecs.EntityID {
	t.Helper()
	id, err := entities.NewFallableEntity(s.entityManager, s.world, entities.FallableSpec{
		Parts: [][]geom.Point{{
			{X: -w / 2, Y: -h / 2}, {X: -w / 2, Y: h / 2}, {X: w / 2, Y: h / 2}, {X: w / 2, Y: -h / 2},
		}},
		Position:      geom.Point{X: x, Y: y},
		SourceImageID: 1,
		ImageSize:     geom.Size{W: int(w), H: int(h)},
		Centroid:      geom.Point{X: w / 2, Y: h / 2},
		Scale:         1,
		Material:      s.svc.Config.Material,
	})
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}
	s.session.IncrementBlocks()
	return id
}

func runFrames(s *GameScene, n int) {
	for i := 0; i < n; i++ {
		s.Update(frame)
	}
}

func TestNewGameSceneUnknownStage(t *testing.T) {
	svc, _ := newTestServices(t)
	if _, err := NewGameScene(svc, nil, "nope"); err == nil {
		t.Fatal("expected error for unknown stage")
	}
}

func TestNewGameSceneBuildsStage(t *testing.T) {
	s, svc, _ := newTestScene(t, "2")

	platforms := ecs.GetEntitiesWith1[*components.PlatformComponent](s.entityManager)
	if len(platforms) != 3 {
		t.Errorf("platforms = %d, want 3", len(platforms))
	}
	if len(fallables(s)) != 0 {
		t.Error("new scene should have no fallables")
	}
	if !svc.Orchestrator.Snapshot().Running {
		t.Error("capture cycle not started")
	}
	if got := svc.Settings.GetSettings().Stage; got != "2" {
		t.Errorf("settings stage = %q, want 2", got)
	}
}

func TestManualCaptureSpawnsOneBody(t *testing.T) {
	s, _, in := newTestScene(t, "1")

	in.Press(utils.ActionCapture)
	deadline := time.Now().Add(10 * time.Second)
	for s.Session().BlockCount == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for capture to spawn a body")
		}
		s.Update(frame)
		time.Sleep(2 * time.Millisecond)
	}

	ids := fallables(s)
	if len(ids) != 1 {
		t.Fatalf("fallables = %d, want 1", len(ids))
	}
	if got := s.Session().BlockCount; got != 1 {
		t.Errorf("BlockCount = %d, want 1", got)
	}
	pb, _ := ecs.GetComponent[*components.PhysicsBodyComponent](s.entityManager, ids[0])
	if len(pb.Shapes) < 1 {
		t.Error("body has no shapes")
	}
	p := pb.Body.Position()
	if !s.Stage().Spawn.Contains(p.X, p.Y, 5) {
		t.Errorf("body at (%.1f, %.1f), outside spawn area %+v", p.X, p.Y, s.Stage().Spawn)
	}
	fall, _ := ecs.GetComponent[*components.FallableComponent](s.entityManager, ids[0])
	if fall.SourceImageID != 1 {
		t.Errorf("SourceImageID = %d, want 1", fall.SourceImageID)
	}
}

// TestExternalImageSpawnsWithAutoCaptureOff 其他写入方存入的图片不受自动拍摄开关影响
func TestExternalImageSpawnsWithAutoCaptureOff(t *testing.T) {
	svc, _, store := newTestServicesWithStore(t)
	s, err := NewGameScene(svc, nil, "1")
	if err != nil {
		t.Fatalf("NewGameScene failed: %v", err)
	}
	if s.autoCapture {
		t.Fatal("test services should start with auto capture off")
	}

	img := image.NewNRGBA(image.Rect(0, 0, 120, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 120; x++ {
			if dx, dy := x-60, y-60; dx*dx+dy*dy <= 40*40 {
				img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 90, B: 60, A: 255})
			}
		}
	}
	data, err := imagestore.EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	id, err := store.Put(context.Background(), data)
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for s.Session().BlockCount == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the stored image to spawn a body")
		}
		s.Update(frame)
		time.Sleep(time.Millisecond)
	}

	ids := fallables(s)
	if len(ids) != 1 {
		t.Fatalf("fallables = %d, want 1", len(ids))
	}
	fall, _ := ecs.GetComponent[*components.FallableComponent](s.entityManager, ids[0])
	if fall.SourceImageID != int64(id) {
		t.Errorf("SourceImageID = %d, want %d", fall.SourceImageID, id)
	}
	if latest, _, _ := store.LatestID(context.Background()); latest != id {
		t.Errorf("LatestID = %d, want %d (camera must not capture with auto off)", latest, id)
	}
}

func TestBottomExitEndsGameAndRestarts(t *testing.T) {
	s, svc, _ := newTestScene(t, "1")

	spawnBox(t, s, 250, config.ScreenHeight+200, 40, 40)
	s.Update(frame)

	snap := s.Session()
	if !snap.IsGameOver || !snap.Counting || snap.RestartCountdown != 3 {
		t.Fatalf("after exit: %+v, want game over with countdown 3", snap)
	}
	if len(fallables(s)) != 0 {
		t.Error("escaped body not removed")
	}
	if svc.Orchestrator.Snapshot().Running {
		t.Error("capture cycle still running after game over")
	}
	if top := svc.Scores.Top(); len(top) != 1 || top[0].Score != 1 || top[0].Stage != "1" {
		t.Errorf("scores = %+v, want one entry of 1 on stage 1", top)
	}

	// 2 秒后仍在倒计时
	runFrames(s, 2*60)
	if snap := s.Session(); !snap.IsGameOver {
		t.Fatalf("restarted too early: %+v", snap)
	}

	runFrames(s, 60+5)
	snap = s.Session()
	if snap.IsGameOver || snap.Counting || snap.BlockCount != 0 {
		t.Errorf("after countdown: %+v, want fresh session", snap)
	}
	if len(fallables(s)) != 0 {
		t.Errorf("fallables after restart = %d, want 0", len(fallables(s)))
	}
	if n := len(ecs.GetEntitiesWith1[*components.PlatformComponent](s.entityManager)); n != 1 {
		t.Errorf("platforms after restart = %d, want 1", n)
	}
	if !svc.Orchestrator.Snapshot().Running {
		t.Error("capture cycle not restarted")
	}
	if len(svc.Scores.Top()) != 1 {
		t.Error("score recorded more than once")
	}
}

// TestGameOverMidSecondCountsFullSeconds 终局发生在一秒中间时，重开仍要等满 3 秒
func TestGameOverMidSecondCountsFullSeconds(t *testing.T) {
	s, _, _ := newTestScene(t, "1")

	runFrames(s, 30)
	spawnBox(t, s, 250, config.ScreenHeight+200, 40, 40)
	s.Update(frame)
	if snap := s.Session(); !snap.IsGameOver || snap.RestartCountdown != 3 {
		t.Fatalf("after exit: %+v, want game over with countdown 3", snap)
	}

	runFrames(s, 179)
	if snap := s.Session(); !snap.IsGameOver {
		t.Fatalf("restarted before 3 full seconds: %+v", snap)
	}

	runFrames(s, 2)
	if snap := s.Session(); snap.IsGameOver || snap.Counting {
		t.Errorf("after 181 frames: %+v, want fresh session", snap)
	}
}

func TestTallStackClearsStage(t *testing.T) {
	s, svc, _ := newTestScene(t, "1")

	// 地面顶边 y=570，方块顶边 570-340=230，高于通关线 250
	spawnBox(t, s, 250, 400, 100, 340)
	runFrames(s, 30)
	if s.Session().IsCleared {
		t.Fatal("cleared before hold time elapsed")
	}
	if !s.Session().Holding {
		t.Fatal("clear hold did not start")
	}

	runFrames(s, 3*60)
	snap := s.Session()
	if !snap.IsCleared || snap.IsGameOver {
		t.Fatalf("after hold: %+v, want cleared", snap)
	}
	if svc.Orchestrator.Snapshot().Running {
		t.Error("capture cycle still running after clear")
	}
	if svc.Scores.Best() != 1 {
		t.Errorf("Best = %d, want 1", svc.Scores.Best())
	}
}

func TestRestartKey(t *testing.T) {
	s, _, in := newTestScene(t, "1")
	spawnBox(t, s, 250, 300, 40, 40)
	runFrames(s, 5)

	in.Press(utils.ActionRestart)
	s.Update(frame)
	if got := s.Session().BlockCount; got != 0 {
		t.Errorf("BlockCount after restart = %d, want 0", got)
	}
	if len(fallables(s)) != 0 {
		t.Error("fallables survived restart")
	}
}

func TestBlockSizeLockedWhileAutoCapture(t *testing.T) {
	s, svc, in := newTestScene(t, "1")
	size := svc.Pipeline.BlockSize()

	in.Press(utils.ActionGrow)
	s.Update(frame)
	if got := svc.Pipeline.BlockSize(); got != size+svc.Config.Block.Step {
		t.Fatalf("block size = %d, want %d", got, size+svc.Config.Block.Step)
	}

	in.Press(utils.ActionToggleAuto)
	s.Update(frame)
	if !svc.Settings.GetSettings().AutoCapture {
		t.Fatal("auto capture not enabled")
	}
	in.Press(utils.ActionShrink)
	s.Update(frame)
	if got := svc.Pipeline.BlockSize(); got != size+svc.Config.Block.Step {
		t.Errorf("block size changed while locked: %d", got)
	}

	in.Press(utils.ActionToggleAuto)
	for i := 0; i < 20; i++ {
		in.Press(utils.ActionGrow)
	}
	for i := 0; i < 21; i++ {
		s.Update(frame)
	}
	if got := svc.Pipeline.BlockSize(); got != svc.Config.Block.MaxSize {
		t.Errorf("block size = %d, want clamped to %d", got, svc.Config.Block.MaxSize)
	}
}

func TestStageSwitchThroughSceneManager(t *testing.T) {
	svc, in := newTestServices(t)
	sm := game.NewSceneManager()
	sm.SetSceneFactory(func(id string) (game.Scene, error) {
		s, err := NewGameScene(svc, sm, id)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	if err := sm.LoadStage("1"); err != nil {
		t.Fatalf("LoadStage failed: %v", err)
	}
	first, ok := sm.GetCurrentScene().(*GameScene)
	if !ok || first.Stage().ID != "1" {
		t.Fatalf("initial scene = %T", sm.GetCurrentScene())
	}

	in.Press(utils.ActionStage2)
	sm.Update(frame)

	second, ok := sm.GetCurrentScene().(*GameScene)
	if !ok || second == first {
		t.Fatal("scene not replaced on stage switch")
	}
	if second.Stage().ID != "2" {
		t.Errorf("stage = %q, want 2", second.Stage().ID)
	}
	if second.world.Epoch() == first.world.Epoch() {
		t.Error("new stage shares world epoch with the old one")
	}

	// 已在该关卡时按键无效
	in.Press(utils.ActionStage2)
	sm.Update(frame)
	if sm.GetCurrentScene() != Scene(second) {
		t.Error("switching to the current stage rebuilt the scene")
	}
}

func TestStatusLines(t *testing.T) {
	stage := &config.StageConfig{ID: "1", Name: "Ground"}
	tests := []struct {
		name string
		cs   capture.CycleState
		auto bool
		want string
	}{
		{"stopped", capture.CycleState{}, true, "Capture: stopped"},
		{"busy", capture.CycleState{Running: true, Busy: true, State: capture.StateSaving}, true, "Capture: saving"},
		{"error", capture.CycleState{Running: true, State: capture.StateError, LastError: "boom"}, true, "Capture error: boom"},
		{"countdown", capture.CycleState{Running: true, Countdown: 4, Status: "ready"}, true, "Next capture in 4s (ready)"},
		{"manual", capture.CycleState{Running: true, Status: "ready"}, false, "Auto capture off (ready)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := statusLines(game.SessionSnapshot{BlockCount: 3}, tt.cs, 200, tt.auto, stage)
			joined := strings.Join(lines, "\n")
			if !strings.Contains(joined, tt.want) {
				t.Errorf("lines %q missing %q", joined, tt.want)
			}
			if !strings.Contains(joined, "Score: 3") {
				t.Errorf("lines %q missing score", joined)
			}
		})
	}
}

func TestResultText(t *testing.T) {
	if _, _, ok := resultText(game.SessionSnapshot{}); ok {
		t.Error("running session should have no result text")
	}
	if title, _, ok := resultText(game.SessionSnapshot{IsCleared: true}); !ok || title != "STAGE CLEAR!" {
		t.Errorf("cleared title = %q", title)
	}
	if title, _, ok := resultText(game.SessionSnapshot{IsGameOver: true}); !ok || title != "GAME OVER" {
		t.Errorf("game over title = %q", title)
	}
}

func TestTopScoreLines(t *testing.T) {
	if got := topScoreLines(nil); len(got) != 1 || got[0] != "No scores yet" {
		t.Errorf("empty = %q", got)
	}
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	got := topScoreLines([]game.ScoreEntry{{Score: 12, Stage: "2", RecordedAt: at}})
	if len(got) != 2 || !strings.Contains(got[1], "12") || !strings.Contains(got[1], "stage 2") {
		t.Errorf("lines = %q", got)
	}
}
