package components

// PlatformComponent 关卡静态平台（矩形）
type PlatformComponent struct {
	Width  float64
	Height float64
}
