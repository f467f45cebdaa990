package game

import (
	"log"
	"time"
)

// SessionState 一局游戏的权威状态容器
//
// 只由游戏主循环和重开逻辑修改；渲染层通过 Snapshot 读取值拷贝。
type SessionState struct {
	// BlockCount 已生成的方块数（即得分）
	BlockCount int
	// IsGameOver 有方块掉出游戏区域
	IsGameOver bool
	// IsCleared 通关条件已持续满足
	IsCleared bool

	// ClearHoldStartedAt 通关条件开始连续满足的时刻（以 Elapsed 计），未满足时为 nil
	ClearHoldStartedAt *time.Duration
	// RestartCountdown 终局后的重开倒计时（整秒），非终局时为 nil
	RestartCountdown *int

	// Elapsed 本局累计的模拟时间
	Elapsed time.Duration
}

// NewSessionState 创建初始状态
func NewSessionState() *SessionState {
	return &SessionState{}
}

// IsTerminal 是否处于终局（失败或通关）
func (s *SessionState) IsTerminal() bool {
	return s.IsGameOver || s.IsCleared
}

// Advance 累加模拟时间
func (s *SessionState) Advance(dt time.Duration) {
	s.Elapsed += dt
}

// IncrementBlocks 方块数 +1
func (s *SessionState) IncrementBlocks() {
	s.BlockCount++
}

// MarkGameOver 进入失败状态并开始倒计时
// 已处于终局时返回 false，保证只触发一次
func (s *SessionState) MarkGameOver(countdown int) bool {
	if s.IsTerminal() {
		return false
	}
	s.IsGameOver = true
	s.ClearHoldStartedAt = nil
	s.startCountdown(countdown)
	log.Printf("[Session] Game over with %d blocks", s.BlockCount)
	return true
}

// MarkCleared 进入通关状态并开始倒计时
func (s *SessionState) MarkCleared(countdown int) bool {
	if s.IsTerminal() {
		return false
	}
	s.IsCleared = true
	s.ClearHoldStartedAt = nil
	s.startCountdown(countdown)
	log.Printf("[Session] Stage cleared with %d blocks", s.BlockCount)
	return true
}

func (s *SessionState) startCountdown(seconds int) {
	c := seconds
	s.RestartCountdown = &c
}

// BeginClearHold 通关条件首次满足时记录起始时刻；已在计时时不变
func (s *SessionState) BeginClearHold() {
	if s.ClearHoldStartedAt == nil {
		at := s.Elapsed
		s.ClearHoldStartedAt = &at
	}
}

// CancelClearHold 通关条件被打断，计时清零
func (s *SessionState) CancelClearHold() {
	s.ClearHoldStartedAt = nil
}

// ClearHeldFor 通关条件已连续满足的时长；未在计时返回 0
func (s *SessionState) ClearHeldFor() time.Duration {
	if s.ClearHoldStartedAt == nil {
		return 0
	}
	return s.Elapsed - *s.ClearHoldStartedAt
}

// TickCountdown 每秒调用一次；倒计时归零时返回 true
func (s *SessionState) TickCountdown() bool {
	if s.RestartCountdown == nil {
		return false
	}
	if *s.RestartCountdown > 0 {
		*s.RestartCountdown--
	}
	return *s.RestartCountdown <= 0
}

// Reset 恢复初始状态
func (s *SessionState) Reset() {
	*s = SessionState{}
}

// SessionSnapshot 供渲染使用的只读快照
type SessionSnapshot struct {
	BlockCount       int
	IsGameOver       bool
	IsCleared        bool
	ClearHeld        time.Duration
	Holding          bool
	RestartCountdown int
	Counting         bool
}

// Snapshot 返回当前状态的值拷贝
func (s *SessionState) Snapshot() SessionSnapshot {
	snap := SessionSnapshot{
		BlockCount: s.BlockCount,
		IsGameOver: s.IsGameOver,
		IsCleared:  s.IsCleared,
		ClearHeld:  s.ClearHeldFor(),
		Holding:    s.ClearHoldStartedAt != nil,
	}
	if s.RestartCountdown != nil {
		snap.RestartCountdown = *s.RestartCountdown
		snap.Counting = true
	}
	return snap
}
