package systems

import (
	"math"
	"time"

	"github.com/decker502/silhouette-stack/pkg/components"
	"github.com/decker502/silhouette-stack/pkg/ecs"
	"github.com/decker502/silhouette-stack/pkg/game"
)

// ClearSystem 判定通关
//
// 条件：所有可下落方块中最高的顶边越过通关线（Y 小于 ClearLineY）。
// 条件必须连续保持 hold 时长；中途任何一帧不满足都会让计时从零开始。
type ClearSystem struct {
	em         *ecs.EntityManager
	session    *game.SessionState
	clearLineY float64
	hold       time.Duration
	countdown  int
}

// NewClearSystem 创建通关判定系统
func NewClearSystem(em *ecs.EntityManager, session *game.SessionState, clearLineY float64, hold time.Duration, countdown int) *ClearSystem {
	return &ClearSystem{
		em:         em,
		session:    session,
		clearLineY: clearLineY,
		hold:       hold,
		countdown:  countdown,
	}
}

// TopY 返回所有可下落方块的最高顶边；没有方块时为 +Inf
func (cs *ClearSystem) TopY() float64 {
	top := math.Inf(1)
	for _, id := range ecs.GetEntitiesWith2[*components.FallableComponent, *components.PhysicsBodyComponent](cs.em) {
		fall, _ := ecs.GetComponent[*components.FallableComponent](cs.em, id)
		if fall.Escaped {
			continue
		}
		pb, _ := ecs.GetComponent[*components.PhysicsBodyComponent](cs.em, id)
		top = math.Min(top, game.TopY(pb.Shapes))
	}
	return top
}

// Update 在 session.Elapsed 推进之后调用；返回本帧是否刚刚通关
func (cs *ClearSystem) Update() bool {
	if cs.session.IsTerminal() {
		return false
	}

	if cs.TopY() >= cs.clearLineY {
		cs.session.CancelClearHold()
		return false
	}

	cs.session.BeginClearHold()
	if cs.session.ClearHeldFor() >= cs.hold {
		return cs.session.MarkCleared(cs.countdown)
	}
	return false
}
