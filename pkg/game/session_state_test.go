package game

import (
	"testing"
	"time"
)

func TestSessionTerminalOnlyOnce(t *testing.T) {
	s := NewSessionState()
	s.IncrementBlocks()

	if !s.MarkGameOver(3) {
		t.Fatal("first MarkGameOver should succeed")
	}
	if s.MarkGameOver(3) || s.MarkCleared(3) {
		t.Error("terminal transitions must fire only once")
	}
	if !s.IsTerminal() || s.RestartCountdown == nil || *s.RestartCountdown != 3 {
		t.Errorf("unexpected state after game over: %+v", s)
	}
}

func TestSessionCountdown(t *testing.T) {
	s := NewSessionState()
	if s.TickCountdown() {
		t.Error("no countdown running, tick should report false")
	}

	s.MarkCleared(3)
	for i := 0; i < 2; i++ {
		if s.TickCountdown() {
			t.Fatalf("countdown expired early at tick %d", i+1)
		}
	}
	if !s.TickCountdown() {
		t.Error("countdown should expire on the third tick")
	}
}

func TestSessionClearHold(t *testing.T) {
	s := NewSessionState()
	s.Advance(time.Second)
	s.BeginClearHold()
	s.Advance(500 * time.Millisecond)
	s.BeginClearHold() // 已在计时，不重置
	if got := s.ClearHeldFor(); got != 500*time.Millisecond {
		t.Errorf("ClearHeldFor = %v, want 500ms", got)
	}

	s.CancelClearHold()
	if s.ClearHeldFor() != 0 || s.Snapshot().Holding {
		t.Error("cancel should drop the hold timer")
	}
}

func TestSessionResetAndSnapshot(t *testing.T) {
	s := NewSessionState()
	s.IncrementBlocks()
	s.IncrementBlocks()
	s.MarkGameOver(3)

	snap := s.Snapshot()
	if snap.BlockCount != 2 || !snap.IsGameOver || !snap.Counting || snap.RestartCountdown != 3 {
		t.Errorf("snapshot mismatch: %+v", snap)
	}

	// 快照是值拷贝
	s.TickCountdown()
	if snap.RestartCountdown != 3 {
		t.Error("snapshot should not alias live state")
	}

	s.Reset()
	if s.BlockCount != 0 || s.IsTerminal() || s.RestartCountdown != nil || s.Elapsed != 0 {
		t.Errorf("Reset left state behind: %+v", s)
	}
}
