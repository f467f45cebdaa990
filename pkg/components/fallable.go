package components

// BodyKind 刚体种类标签，区分玩家产生的方块与关卡静态几何体
type BodyKind int

const (
	// BodyKindFallable 由剪影生成、会下落的方块
	BodyKindFallable BodyKind = iota + 1
	// BodyKindPlatform 关卡静态平台
	BodyKindPlatform
)

// String 返回标签名
func (k BodyKind) String() string {
	switch k {
	case BodyKindFallable:
		return "fallable"
	case BodyKindPlatform:
		return "platform"
	default:
		return "unknown"
	}
}

// FallableComponent 标记一个由剪影生成的可下落方块
//
// 每个可下落实体必须同时拥有 PhysicsBodyComponent（至少一个形状）
// 和 SpriteComponent。
type FallableComponent struct {
	Kind BodyKind
	// SourceImageID 生成该方块的图片在图片库中的 ID
	SourceImageID int64
	// Escaped 已越界并被移出物理世界（等待实体清理）
	Escaped bool
}
