package config

// 布局配置常量
// 所有坐标使用逻辑屏幕坐标（左上角为原点，Y 轴向下）

const (
	// ScreenWidth 逻辑屏幕宽度（竖屏，与关卡几何对齐）
	ScreenWidth = 500

	// ScreenHeight 逻辑屏幕高度
	ScreenHeight = 800

	// GameWindowWidth 窗口初始宽度
	GameWindowWidth = ScreenWidth

	// GameWindowHeight 窗口初始高度
	GameWindowHeight = ScreenHeight

	// HUDMarginX HUD 文本左边距
	HUDMarginX = 10

	// HUDMarginY HUD 文本上边距
	HUDMarginY = 10

	// HUDLineHeight HUD 行高（DebugPrint 字体高度 + 间距）
	HUDLineHeight = 16
)
