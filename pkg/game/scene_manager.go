package game

import (
	"errors"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrNoSceneFactory 未设置场景工厂
var ErrNoSceneFactory = errors.New("scene factory not set")

// SceneFactory 按关卡ID创建场景，避免 game 包依赖 scenes 包
type SceneFactory func(stageID string) (Scene, error)

// SceneManager 持有当前场景，每帧只驱动这一个场景
type SceneManager struct {
	current Scene
	factory SceneFactory
}

// NewSceneManager 创建没有活动场景的管理器
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SetSceneFactory 设置场景工厂
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.factory = factory
}

// SwitchTo 替换当前场景；旧场景实现了 Saveable 时先保存
func (sm *SceneManager) SwitchTo(scene Scene) {
	if old, ok := sm.current.(Saveable); ok && sm.current != scene {
		if !old.SaveOnExit() {
			log.Printf("[SceneManager] Warning: previous scene failed to save")
		}
	}
	sm.current = scene
}

// GetCurrentScene 当前场景，没有时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.current
}

// LoadStage 用工厂创建关卡场景并切换过去
//
// 创建失败时保持当前场景不变。
func (sm *SceneManager) LoadStage(stageID string) error {
	if sm.factory == nil {
		return ErrNoSceneFactory
	}
	scene, err := sm.factory(stageID)
	if err != nil {
		return fmt.Errorf("load stage %s: %w", stageID, err)
	}
	if scene == nil {
		return fmt.Errorf("load stage %s: factory returned no scene", stageID)
	}
	sm.SwitchTo(scene)
	log.Printf("[SceneManager] Switched to stage %s", stageID)
	return nil
}

// Update 驱动当前场景
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.current != nil {
		sm.current.Update(deltaTime)
	}
}

// Draw 绘制当前场景
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.current != nil {
		sm.current.Draw(screen)
	}
}
