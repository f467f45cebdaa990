// Package utils 提供通用工具函数
package utils

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action 玩家操作
type Action int

const (
	// ActionRestart 立即重开本局
	ActionRestart Action = iota
	// ActionCapture 手动拍摄一次
	ActionCapture
	// ActionGrow 增大方块尺寸
	ActionGrow
	// ActionShrink 减小方块尺寸
	ActionShrink
	// ActionToggleAuto 开关自动拍摄
	ActionToggleAuto
	// ActionStage1 切换到第一个关卡
	ActionStage1
	// ActionStage2 切换到第二个关卡
	ActionStage2
	// ActionToggleDebug 显示/隐藏碰撞形状
	ActionToggleDebug

	actionCount
)

func (a Action) String() string {
	switch a {
	case ActionRestart:
		return "restart"
	case ActionCapture:
		return "capture"
	case ActionGrow:
		return "grow"
	case ActionShrink:
		return "shrink"
	case ActionToggleAuto:
		return "toggle-auto"
	case ActionStage1:
		return "stage-1"
	case ActionStage2:
		return "stage-2"
	case ActionToggleDebug:
		return "toggle-debug"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Input 每帧的输入来源
type Input interface {
	// JustPressed 本帧是否刚触发该操作
	JustPressed(a Action) bool
}

// DefaultBindings 默认键位
func DefaultBindings() map[Action][]ebiten.Key {
	return map[Action][]ebiten.Key{
		ActionRestart:     {ebiten.KeyR},
		ActionCapture:     {ebiten.KeySpace},
		ActionGrow:        {ebiten.KeyEqual, ebiten.KeyNumpadAdd},
		ActionShrink:      {ebiten.KeyMinus, ebiten.KeyNumpadSubtract},
		ActionToggleAuto:  {ebiten.KeyA},
		ActionStage1:      {ebiten.Key1, ebiten.KeyNumpad1},
		ActionStage2:      {ebiten.Key2, ebiten.KeyNumpad2},
		ActionToggleDebug: {ebiten.KeyF3},
	}
}

// KeyboardInput 键盘输入；触摸或鼠标点击等同于手动拍摄
type KeyboardInput struct {
	bindings map[Action][]ebiten.Key
}

// NewKeyboardInput 使用默认键位创建输入
func NewKeyboardInput() *KeyboardInput {
	return &KeyboardInput{bindings: DefaultBindings()}
}

// JustPressed 实现 Input
func (k *KeyboardInput) JustPressed(a Action) bool {
	for _, key := range k.bindings[a] {
		if inpututil.IsKeyJustPressed(key) {
			return true
		}
	}
	if a == ActionCapture {
		pressed, _, _ := IsJustTouchedOrClicked()
		return pressed
	}
	return false
}

// IsJustTouchedOrClicked 检查是否刚刚发生点击或触摸
// 返回是否点击以及点击位置
func IsJustTouchedOrClicked() (bool, int, int) {
	// 检查触摸
	touchIDs := inpututil.AppendJustPressedTouchIDs(nil)
	if len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		return true, x, y
	}

	// 检查鼠标
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		return true, x, y
	}

	return false, 0, 0
}

// ScriptedInput 按帧预设的输入，用于测试和回放
type ScriptedInput struct {
	pending map[Action]int
}

// NewScriptedInput 创建空的预设输入
func NewScriptedInput() *ScriptedInput {
	return &ScriptedInput{pending: make(map[Action]int)}
}

// Press 让下一次查询该操作时返回 true（可叠加多次）
func (s *ScriptedInput) Press(a Action) {
	s.pending[a]++
}

// JustPressed 实现 Input；每次 Press 只消费一次
func (s *ScriptedInput) JustPressed(a Action) bool {
	if s.pending[a] == 0 {
		return false
	}
	s.pending[a]--
	return true
}
