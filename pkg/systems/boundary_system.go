package systems

import (
	"log"

	"github.com/decker502/silhouette-stack/pkg/components"
	"github.com/decker502/silhouette-stack/pkg/ecs"
	"github.com/decker502/silhouette-stack/pkg/entities"
	"github.com/decker502/silhouette-stack/pkg/game"
)

// BoundarySystem 检测离开游戏区域的方块
//
// 越界方块立即移出物理世界，并使本局进入失败状态。
// 进入失败状态后不再扫描，因此每个越界方块只会被处理一次。
type BoundarySystem struct {
	em        *ecs.EntityManager
	world     *game.World
	session   *game.SessionState
	countdown int
}

// NewBoundarySystem 创建边界检测系统
// countdown 为失败后的重开倒计时秒数
func NewBoundarySystem(em *ecs.EntityManager, world *game.World, session *game.SessionState, countdown int) *BoundarySystem {
	return &BoundarySystem{em: em, world: world, session: session, countdown: countdown}
}

// Update 扫描全部可下落方块，返回本帧移除的数量
func (bs *BoundarySystem) Update() int {
	if bs.session.IsGameOver {
		return 0
	}

	removed := 0
	for _, id := range ecs.GetEntitiesWith2[*components.FallableComponent, *components.PhysicsBodyComponent](bs.em) {
		pb, _ := ecs.GetComponent[*components.PhysicsBodyComponent](bs.em, id)
		if !bs.world.OutOfBounds(pb.Body) {
			continue
		}
		p := pb.Body.Position()
		if entities.RemoveFallable(bs.em, bs.world, id) {
			removed++
			log.Printf("[BoundarySystem] Fallable %d left play area at (%.0f, %.0f)", id, p.X, p.Y)
		}
	}

	if removed > 0 {
		bs.session.MarkGameOver(bs.countdown)
	}
	return removed
}
