package game

import (
	"log"
	"math"
	"sync/atomic"

	"github.com/jakecoffman/cp"

	"github.com/decker502/silhouette-stack/pkg/config"
)

// epochSeq 进程内全局递增，切换关卡新建的世界也不会与旧世界重号
var epochSeq atomic.Uint64

// World 物理世界的窄接口封装
//
// 只在游戏主循环中访问。每次 Reset 都会换一个新的 cp.Space 并递增 Epoch，
// 异步流水线据此判断自己的结果是否已经过期。
type World struct {
	space   *cp.Space
	epoch   uint64
	physics config.PhysicsConfig
	damping float64
}

// NewWorld 根据配置创建物理世界
func NewWorld(cfg *config.GameConfig) *World {
	w := &World{
		physics: cfg.Physics,
		// 每步按 frictionAir 比例衰减速度，换算成 cp 的"每秒保留比例"
		damping: math.Pow(1-cfg.Material.FrictionAir, float64(cfg.Physics.TPS)),
		epoch:   epochSeq.Add(1),
	}
	w.space = w.newSpace()
	return w
}

func (w *World) newSpace() *cp.Space {
	space := cp.NewSpace()
	// 屏幕坐标系 Y 轴向下，重力取正值
	space.SetGravity(cp.Vector{X: 0, Y: w.physics.Gravity})
	space.SetDamping(w.damping)
	return space
}

// Space 返回当前的 cp.Space（仅供实体工厂构建刚体）
func (w *World) Space() *cp.Space {
	return w.space
}

// Epoch 返回世界代数
func (w *World) Epoch() uint64 {
	return w.epoch
}

// Reset 丢弃全部刚体，换新的空间并递增代数
func (w *World) Reset() {
	w.space = w.newSpace()
	w.epoch = epochSeq.Add(1)
	log.Printf("[World] Reset, epoch=%d", w.epoch)
}

// Step 推进一个固定步长
func (w *World) Step(dt float64) {
	w.space.Step(dt)
}

// AddCompound 把已构建好的刚体和全部形状一次性加入世界
//
// density > 0 时，形状加入后按密度累计质量（cp 只在形状挂上空间后才会累计）。
func (w *World) AddCompound(body *cp.Body, shapes []*cp.Shape, density float64) {
	w.space.AddBody(body)
	for _, s := range shapes {
		w.space.AddShape(s)
		if density > 0 {
			s.SetDensity(density)
		}
	}
}

// Remove 从世界移除刚体及其形状
// 刚体属于旧代数（世界已重置）时什么也不做
func (w *World) Remove(body *cp.Body, shapes []*cp.Shape, epoch uint64) bool {
	if epoch != w.epoch || body == nil {
		return false
	}
	for _, s := range shapes {
		w.space.RemoveShape(s)
	}
	w.space.RemoveBody(body)
	return true
}

// BodyCount 返回世界中的动态刚体数量
func (w *World) BodyCount() int {
	n := 0
	w.space.EachBody(func(b *cp.Body) {
		if b.GetType() == cp.BODY_DYNAMIC {
			n++
		}
	})
	return n
}

// OutOfBounds 判断刚体位置是否离开游戏区域
// 从底边落下，或超出左右边界，均视为出界（margin 为容差）
func (w *World) OutOfBounds(body *cp.Body) bool {
	p := body.Position()
	m := w.physics.LossMargin
	return p.Y > config.ScreenHeight+m || p.X < -m || p.X > config.ScreenWidth+m
}

// TopY 返回一组形状在世界坐标中的最高点（Y 最小值）
func TopY(shapes []*cp.Shape) float64 {
	top := math.Inf(1)
	for _, s := range shapes {
		// CacheBB 按刚体当前变换重新计算包围盒
		bb := s.CacheBB()
		if bb.B < top {
			top = bb.B
		}
	}
	return top
}
