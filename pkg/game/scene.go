package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene 由 SceneManager 驱动的场景
type Scene interface {
	// Update 推进一帧，deltaTime 单位为秒
	Update(deltaTime float64)
	// Draw 绘制到 screen
	Draw(screen *ebiten.Image)
}

// Saveable 场景在被替换或程序退出时保存状态
type Saveable interface {
	// SaveOnExit 返回 false 表示保存失败，调用方只记录日志
	SaveOnExit() bool
}
