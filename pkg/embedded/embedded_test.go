package embedded

import (
	"errors"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"data/game.yaml":     {Data: []byte("physics:\n  tps: 60\n")},
		"data/stages/1.yaml": {Data: []byte("id: \"1\"\n")},
		"data/stages/2.yaml": {Data: []byte("id: \"2\"\n")},
		"data/stages/readme": {Data: []byte("notes")},
		"assets/ignored.png": {Data: []byte{0x89}},
	}
}

func TestNotInitialized(t *testing.T) {
	reset()
	t.Cleanup(reset)

	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}
	if _, err := ReadFile("data/game.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ReadFile before Init: got %v, want ErrNotInitialized", err)
	}
	if _, err := Glob("data/*.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Glob before Init: got %v, want ErrNotInitialized", err)
	}
}

func TestReadFile(t *testing.T) {
	Init(testFS())
	t.Cleanup(reset)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"plain", "data/game.yaml", false},
		{"dot prefix", "./data/game.yaml", false},
		{"missing", "data/none.yaml", true},
		{"outside data", "assets/ignored.png", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ReadFile(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestGlobAndExists(t *testing.T) {
	Init(testFS())
	t.Cleanup(reset)

	files, err := Glob("data/stages/*.yaml")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Glob returned %v, want 2 stage files", files)
	}

	if !Exists("data/stages/readme") {
		t.Error("Exists should report data/stages/readme")
	}
	if Exists("data/stages/3.yaml") {
		t.Error("Exists should not report a missing file")
	}

	entries, err := ReadDir("data/stages")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("ReadDir returned %d entries, want 3", len(entries))
	}
}
