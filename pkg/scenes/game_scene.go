package scenes

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/silhouette-stack/internal/geom"
	"github.com/decker502/silhouette-stack/pkg/capture"
	"github.com/decker502/silhouette-stack/pkg/config"
	"github.com/decker502/silhouette-stack/pkg/ecs"
	"github.com/decker502/silhouette-stack/pkg/entities"
	"github.com/decker502/silhouette-stack/pkg/game"
	"github.com/decker502/silhouette-stack/pkg/systems"
	"github.com/decker502/silhouette-stack/pkg/utils"
)

// Services 跨关卡共享的服务，由 app 包创建
type Services struct {
	Config       *config.GameConfig
	Stages       *config.StageSet
	Orchestrator *capture.Orchestrator
	Pipeline     *capture.Pipeline
	Scores       *game.ScoreManager
	Settings     *game.SettingsManager
	Input        utils.Input
	// Rand 出生位置的随机源，为 nil 时使用全局随机源
	Rand *rand.Rand
}

// GameScene 一局剪影堆叠游戏
//
// 每帧的执行顺序：
//  1. 处理已完成的拍摄循环（生成方块，得分 +1）
//  2. 处理玩家输入
//  3. 固定步长推进物理（终局后冻结）
//  4. 出界检测（失败）
//  5. 通关线检测（通关）
//  6. 每满一秒：推进拍摄倒计时或重开倒计时
type GameScene struct {
	svc          *Services
	sceneManager *game.SceneManager
	stage        *config.StageConfig

	// ECS Framework and Systems
	world          *game.World
	entityManager  *ecs.EntityManager
	session        *game.SessionState
	physicsSystem  *systems.PhysicsSystem
	boundarySystem *systems.BoundarySystem
	clearSystem    *systems.ClearSystem
	renderSystem   *systems.RenderSystem

	autoCapture   bool
	secondTimer   float64
	scoreRecorded bool
	// lastRecordKept 上一局得分是否进入了最高分列表
	lastRecordKept bool

	hud *hud
}

// NewGameScene 创建指定关卡的游戏场景并启动拍摄循环
func NewGameScene(svc *Services, sm *game.SceneManager, stageID string) (*GameScene, error) {
	stage, ok := svc.Stages.Get(stageID)
	if !ok {
		return nil, fmt.Errorf("unknown stage %q", stageID)
	}
	cfg := svc.Config
	settings := svc.Settings.GetSettings()

	s := &GameScene{
		svc:           svc,
		sceneManager:  sm,
		stage:         stage,
		world:         game.NewWorld(cfg),
		entityManager: ecs.NewEntityManager(),
		session:       game.NewSessionState(),
		autoCapture:   settings.AutoCapture,
	}
	countdown := cfg.Session.RestartCountdownSeconds
	s.physicsSystem = systems.NewPhysicsSystem(s.world, cfg.FixedStep())
	s.boundarySystem = systems.NewBoundarySystem(s.entityManager, s.world, s.session, countdown)
	s.clearSystem = systems.NewClearSystem(s.entityManager, s.session, stage.ClearLineY, cfg.ClearHold(), countdown)
	s.renderSystem = systems.NewRenderSystem(s.entityManager)
	s.hud = newHUD()

	if _, err := entities.BuildStage(s.entityManager, s.world, stage); err != nil {
		return nil, fmt.Errorf("build stage %s: %w", stage.ID, err)
	}

	svc.Pipeline.SetBlockSize(settings.BlockSize)
	svc.Settings.SetStage(stage.ID)

	// 旧场景可能还有循环在运行；新世界的代数不同，旧结果会被丢弃
	svc.Orchestrator.Stop()
	svc.Orchestrator.Start(s.world.Epoch())

	log.Printf("[GameScene] Stage %s (%s) ready: clearLineY=%.0f, %d platforms",
		stage.ID, stage.Name, stage.ClearLineY, len(stage.Platforms))
	return s, nil
}

// Update 推进一帧
func (s *GameScene) Update(deltaTime float64) {
	s.svc.Orchestrator.Pump(s.spawn)
	if s.handleInput() {
		// 场景已被替换
		return
	}

	if !s.session.IsTerminal() {
		s.physicsSystem.Update(deltaTime)
	}
	s.session.Advance(time.Duration(deltaTime * float64(time.Second)))
	s.boundarySystem.Update()
	s.clearSystem.Update()

	if s.session.IsTerminal() && !s.scoreRecorded {
		s.onTerminal()
		return
	}

	s.secondTimer += deltaTime
	for s.secondTimer >= 1 {
		s.secondTimer--
		if s.onSecond() {
			// 已重开，本帧剩余的秒数不再计入新的一局
			s.secondTimer = 0
			break
		}
	}
}

// onSecond 每秒调用一次；发生重开时返回 true
func (s *GameScene) onSecond() bool {
	if !s.session.IsTerminal() {
		s.svc.Orchestrator.Tick(s.autoCapture)
		return false
	}
	if s.session.TickCountdown() {
		s.restart()
		return true
	}
	return false
}

// onTerminal 进入终局：停止拍摄并记录得分
// 重开倒计时从这一帧开始按整秒计，之前累计的不足一秒部分作废
func (s *GameScene) onTerminal() {
	s.scoreRecorded = true
	s.secondTimer = 0
	s.svc.Orchestrator.Stop()

	kept, err := s.svc.Scores.Record(s.session.BlockCount, s.stage.ID)
	if err != nil {
		log.Printf("[GameScene] Warning: failed to save score: %v", err)
	}
	s.lastRecordKept = kept
}

// spawn 在出生区域随机位置生成一个剪影方块
func (s *GameScene) spawn(rec *capture.Recognition) error {
	if s.session.IsTerminal() {
		return nil
	}
	pos := geom.Point{X: s.spawnX(), Y: s.stage.Spawn.Y}
	id, err := entities.NewFallableEntity(s.entityManager, s.world, entities.FallableSpec{
		Parts:         rec.Parts,
		Position:      pos,
		SourceImageID: int64(rec.ImageID),
		Source:        rec.Image,
		ImageSize:     rec.ImageSize,
		Centroid:      rec.Centroid,
		Scale:         rec.Scale,
		Material:      s.svc.Config.Material,
	})
	if err != nil {
		return err
	}
	s.session.IncrementBlocks()
	log.Printf("[GameScene] Spawned fallable %d from image %d at (%.0f, %.0f), %d parts, score=%d",
		id, rec.ImageID, pos.X, pos.Y, len(rec.Parts), s.session.BlockCount)
	return nil
}

func (s *GameScene) spawnX() float64 {
	area := s.stage.Spawn
	var f float64
	if s.svc.Rand != nil {
		f = s.svc.Rand.Float64()
	} else {
		f = rand.Float64()
	}
	return area.MinX + f*(area.MaxX-area.MinX)
}

// restart 清空世界并开始新的一局（同一关卡）
func (s *GameScene) restart() {
	s.svc.Orchestrator.Stop()

	s.world.Reset()
	s.entityManager.Clear()
	s.session.Reset()
	s.physicsSystem.Reset()
	s.secondTimer = 0
	s.scoreRecorded = false

	if _, err := entities.BuildStage(s.entityManager, s.world, s.stage); err != nil {
		// 关卡配置在加载时已校验过，这里失败说明物理引擎状态异常
		log.Printf("[GameScene] Error: failed to rebuild stage %s: %v", s.stage.ID, err)
	}

	s.svc.Orchestrator.Start(s.world.Epoch())
	log.Printf("[GameScene] Restarted stage %s, epoch=%d", s.stage.ID, s.world.Epoch())
}

// handleInput 处理玩家输入；切换了关卡时返回 true
func (s *GameScene) handleInput() bool {
	in := s.svc.Input
	if in == nil {
		return false
	}

	if in.JustPressed(utils.ActionRestart) {
		s.restart()
	}
	if in.JustPressed(utils.ActionCapture) && !s.session.IsTerminal() {
		if err := s.svc.Orchestrator.TryStart(); err != nil && !errors.Is(err, capture.ErrBusy) {
			log.Printf("[GameScene] Manual capture not started: %v", err)
		}
	}
	if in.JustPressed(utils.ActionToggleAuto) {
		s.autoCapture = !s.autoCapture
		s.svc.Settings.SetAutoCapture(s.autoCapture)
		log.Printf("[GameScene] Auto capture: %v", s.autoCapture)
	}
	// 自动拍摄时锁定方块尺寸
	if in.JustPressed(utils.ActionGrow) && !s.autoCapture {
		s.resizeBlock(+1)
	}
	if in.JustPressed(utils.ActionShrink) && !s.autoCapture {
		s.resizeBlock(-1)
	}
	if in.JustPressed(utils.ActionToggleDebug) {
		s.renderSystem.DebugShapes = !s.renderSystem.DebugShapes
	}

	ids := s.svc.Stages.IDs()
	for i, action := range []utils.Action{utils.ActionStage1, utils.ActionStage2} {
		if in.JustPressed(action) && i < len(ids) && ids[i] != s.stage.ID {
			return s.switchStage(ids[i])
		}
	}
	return false
}

func (s *GameScene) resizeBlock(dir int) {
	b := s.svc.Config.Block
	size := s.svc.Settings.SetBlockSize(s.svc.Pipeline.BlockSize()+dir*b.Step, b.MinSize, b.MaxSize, b.Step)
	s.svc.Pipeline.SetBlockSize(size)
	log.Printf("[GameScene] Block size: %d", size)
}

// switchStage 切换关卡：通过场景管理器整体重建场景
func (s *GameScene) switchStage(id string) bool {
	if s.sceneManager == nil {
		return false
	}
	log.Printf("[GameScene] Switching stage %s -> %s", s.stage.ID, id)
	if err := s.sceneManager.LoadStage(id); err != nil {
		log.Printf("[GameScene] Error: %v", err)
		return false
	}
	return true
}

// Draw 绘制关卡、方块和 HUD
func (s *GameScene) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	s.renderSystem.DrawClearLine(screen, s.stage.ClearLineY)
	s.renderSystem.DrawStage(screen)
	s.renderSystem.DrawBodies(screen)
	s.drawHUD(screen)
	s.drawResultOverlay(screen)
}

// SaveOnExit 退出时保存设置
func (s *GameScene) SaveOnExit() bool {
	if err := s.svc.Settings.Save(); err != nil {
		log.Printf("[GameScene] Warning: failed to save settings: %v", err)
		return false
	}
	return true
}

// Session 返回本局状态的快照
func (s *GameScene) Session() game.SessionSnapshot {
	return s.session.Snapshot()
}

// Stage 当前关卡
func (s *GameScene) Stage() *config.StageConfig {
	return s.stage
}
