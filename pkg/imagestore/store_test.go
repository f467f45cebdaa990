package imagestore

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "images.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStorePutGetLatest(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.LatestID(ctx); err != nil || ok {
				t.Fatalf("empty store LatestID: ok=%v err=%v", ok, err)
			}

			var ids []ID
			for i := 0; i < 3; i++ {
				id, err := s.Put(ctx, []byte{byte(i), 0xAA})
				if err != nil {
					t.Fatalf("Put failed: %v", err)
				}
				ids = append(ids, id)
			}
			if diff := cmp.Diff([]ID{1, 2, 3}, ids); diff != "" {
				t.Errorf("ids not monotonic (-want +got):\n%s", diff)
			}

			latest, ok, err := s.LatestID(ctx)
			if err != nil || !ok || latest != 3 {
				t.Errorf("LatestID = %d,%v,%v want 3", latest, ok, err)
			}

			data, ok, err := s.Get(ctx, 2)
			if err != nil || !ok {
				t.Fatalf("Get(2) ok=%v err=%v", ok, err)
			}
			if diff := cmp.Diff([]byte{1, 0xAA}, data); diff != "" {
				t.Errorf("Get(2) mismatch (-want +got):\n%s", diff)
			}

			for _, bad := range []ID{0, -1, 99} {
				if data, ok, err := s.Get(ctx, bad); err != nil || ok || data != nil {
					t.Errorf("Get(%d) = %v,%v,%v want nil,false,nil", bad, data, ok, err)
				}
			}
		})
	}
}

func TestStoreSubscribe(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ch, cancel := s.Subscribe()

			s.Put(ctx, []byte{1})
			s.Put(ctx, []byte{2})

			// 只保留最新通知
			if got := <-ch; got != 2 {
				t.Errorf("notification = %d, want 2", got)
			}

			cancel()
			cancel()
			if _, open := <-ch; open {
				t.Error("channel should be closed after cancel")
			}
			if _, err := s.Put(ctx, []byte{3}); err != nil {
				t.Errorf("Put after cancel failed: %v", err)
			}
		})
	}
}

func TestSQLiteReopenKeepsSequence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "images.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	s.Put(ctx, []byte{1})
	s.Put(ctx, []byte{2})
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	id, err := s.Put(ctx, []byte{3})
	if err != nil || id != 3 {
		t.Errorf("Put after reopen = %d, %v; want 3", id, err)
	}
	if _, err := s.Put(ctx, nil); err == nil {
		t.Error("empty blob should be rejected")
	}
}

func TestOpenSQLiteEmptyPath(t *testing.T) {
	if _, err := OpenSQLite("  "); err == nil {
		t.Error("blank path should fail")
	}
}

func TestPNGRoundTripKeepsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(1, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	got, err := DecodePNG(data)
	if err != nil {
		t.Fatalf("DecodePNG failed: %v", err)
	}
	if _, _, _, a := got.At(0, 0).RGBA(); a != 0 {
		t.Errorf("background alpha = %d, want 0", a)
	}
	if _, _, _, a := got.At(1, 2).RGBA(); a != 0xffff {
		t.Errorf("person alpha = %d, want opaque", a)
	}
	if _, err := DecodePNG([]byte("not a png")); err == nil {
		t.Error("garbage should fail to decode")
	}
}
