package game

import (
	"testing"

	"github.com/quasilyte/gdata/v2"
)

// newTestGdata 在临时目录中创建 gdata manager
func newTestGdata(t *testing.T, app string) *gdata.Manager {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)

	m, err := gdata.Open(gdata.Config{AppName: app})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return m
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.BlockSize != 200 || !s.AutoCapture || s.Stage != "1" || s.Fullscreen {
		t.Errorf("unexpected defaults: %+v", s)
	}
}

func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm, err := NewSettingsManager(nil)
	if err != nil {
		t.Fatalf("NewSettingsManager(nil) error: %v", err)
	}
	sm.SetAutoCapture(false)
	if err := sm.Save(); err != nil {
		t.Errorf("Save in degraded mode should not fail: %v", err)
	}
	if sm.GetSettings().AutoCapture {
		t.Error("in-memory setting should still change")
	}
}

func TestSettingsLoadSave(t *testing.T) {
	gm := newTestGdata(t, "test_settings")

	sm, err := NewSettingsManager(gm)
	if err != nil {
		t.Fatalf("NewSettingsManager() error: %v", err)
	}
	sm.SetBlockSize(260, 80, 400, 20)
	sm.SetAutoCapture(false)
	sm.SetStage("2")
	if err := sm.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded, err := NewSettingsManager(gm)
	if err != nil {
		t.Fatalf("NewSettingsManager() error: %v", err)
	}
	got := reloaded.GetSettings()
	if got.BlockSize != 260 || got.AutoCapture || got.Stage != "2" {
		t.Errorf("reloaded settings mismatch: %+v", got)
	}
}

func TestSetBlockSizeClamp(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{200, 200},
		{210, 200},
		{79, 80},
		{20, 80},
		{400, 400},
		{420, 400},
		{1000, 400},
	}
	sm, _ := NewSettingsManager(nil)
	for _, tt := range tests {
		if got := sm.SetBlockSize(tt.in, 80, 400, 20); got != tt.want {
			t.Errorf("SetBlockSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
