package components

import "github.com/jakecoffman/cp"

// PhysicsBodyComponent 持有实体在物理世界中的刚体及其全部碰撞形状
//
// 一个复合刚体 = 一个 cp.Body + 多个凸多边形 cp.Shape。
// 刚体的位置、角度、速度只由物理引擎修改。
type PhysicsBodyComponent struct {
	Body   *cp.Body
	Shapes []*cp.Shape
	// Epoch 创建时物理世界的代数，世界重置后旧实体即失效
	Epoch uint64
}
