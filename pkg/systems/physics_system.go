package systems

import (
	"github.com/decker502/silhouette-stack/pkg/game"
)

// maxStepsPerUpdate 单帧最多补偿的物理步数，防止卡顿后的"死亡螺旋"
const maxStepsPerUpdate = 4

// PhysicsSystem 以固定步长推进物理世界
type PhysicsSystem struct {
	world       *game.World
	step        float64
	accumulator float64
}

// NewPhysicsSystem 创建物理系统
//
// 参数:
//   - world: 物理世界
//   - fixedStep: 固定步长（秒），通常为 1/TPS
func NewPhysicsSystem(world *game.World, fixedStep float64) *PhysicsSystem {
	return &PhysicsSystem{world: world, step: fixedStep}
}

// Update 累加帧时间并执行整数个固定步长，返回本帧执行的步数
func (ps *PhysicsSystem) Update(dt float64) int {
	ps.accumulator += dt
	steps := 0
	// 留一点余量吸收浮点误差，避免 1/60 累加后差一丝而少走一步
	for ps.accumulator >= ps.step-1e-9 && steps < maxStepsPerUpdate {
		ps.world.Step(ps.step)
		ps.accumulator -= ps.step
		steps++
	}
	if steps == maxStepsPerUpdate {
		// 丢弃追不上的时间
		ps.accumulator = 0
	}
	return steps
}

// Reset 清空累加器（世界重置时调用）
func (ps *PhysicsSystem) Reset() {
	ps.accumulator = 0
}
