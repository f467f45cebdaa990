package contour

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/decker502/silhouette-stack/internal/geom"
)

// drawDisc 在 img 上画一个不透明实心圆
func drawDisc(img *image.NRGBA, cx, cy, r int) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r && image.Pt(x, y).In(img.Bounds()) {
				img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 120, B: 90, A: 255})
			}
		}
	}
}

func TestTraceFullyTransparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))

	res := Trace(img, DefaultOptions())

	if !res.Empty() {
		t.Fatalf("expected empty result, got %d points", len(res.Points))
	}
	if res.ImageSize != (geom.Size{W: 64, H: 48}) {
		t.Errorf("ImageSize = %+v, want 64x48", res.ImageSize)
	}
}

func TestTraceNilAndZeroSize(t *testing.T) {
	if res := Trace(nil, DefaultOptions()); !res.Empty() {
		t.Error("nil image should produce empty result")
	}
	if res := Trace(image.NewNRGBA(image.Rect(0, 0, 0, 0)), DefaultOptions()); !res.Empty() {
		t.Error("zero-size image should produce empty result")
	}
}

func TestTraceDisc(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 160))
	drawDisc(img, 90, 80, 50)

	res := Trace(img, DefaultOptions())
	if res.Empty() {
		t.Fatal("expected a contour for a filled disc")
	}

	if math.Abs(res.Centroid.X-90) > 1 || math.Abs(res.Centroid.Y-80) > 1 {
		t.Errorf("Centroid = %+v, want ~(90,80)", res.Centroid)
	}
	if res.BoundingRect.W < 98 || res.BoundingRect.W > 103 {
		t.Errorf("BoundingRect.W = %d, want ~101", res.BoundingRect.W)
	}

	want := math.Pi * 50 * 50
	if got := geom.Area(res.Points); math.Abs(got-want)/want > 0.06 {
		t.Errorf("contour area = %.0f, want within 6%% of %.0f", got, want)
	}
	if len(res.Points) > 80 {
		t.Errorf("simplified contour has %d points, expected simplification to bound it", len(res.Points))
	}
}

func TestTracePicksLargestRegion(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 240, 120))
	drawDisc(img, 40, 60, 20)
	drawDisc(img, 160, 60, 45)

	res := Trace(img, DefaultOptions())
	if res.Empty() {
		t.Fatal("expected a contour")
	}
	if math.Abs(res.Centroid.X-160) > 1.5 {
		t.Errorf("Centroid.X = %.1f, want ~160 (the larger disc)", res.Centroid.X)
	}
}

func TestTraceOpeningRemovesSpeckles(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	// 只有孤立噪点
	for _, p := range []image.Point{{10, 10}, {50, 70}, {80, 20}} {
		img.SetNRGBA(p.X, p.Y, color.NRGBA{A: 255})
	}

	opts := DefaultOptions()
	opts.BlurRadius = 0
	if res := Trace(img, opts); !res.Empty() {
		t.Errorf("speckles should be removed by opening, got %d points", len(res.Points))
	}
}

func TestTraceEpsilonControlsVertexCount(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 200))
	drawDisc(img, 100, 100, 80)

	fine := DefaultOptions()
	fine.EpsilonFraction = 0.002
	coarse := DefaultOptions()
	coarse.EpsilonFraction = 0.01

	fr := Trace(img, fine)
	cr := Trace(img, coarse)
	if len(cr.Points) >= len(fr.Points) {
		t.Errorf("coarse epsilon should give fewer points: coarse=%d fine=%d", len(cr.Points), len(fr.Points))
	}
	// 质心与简化强度无关
	if fr.Centroid != cr.Centroid {
		t.Errorf("centroid should not depend on epsilon: %+v vs %+v", fr.Centroid, cr.Centroid)
	}
}

func TestTraceGenericImageType(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 60))
	for y := 10; y < 50; y++ {
		for x := 15; x < 45; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	res := Trace(img, DefaultOptions())
	if res.Empty() {
		t.Fatal("expected a contour for *image.RGBA input")
	}
	if got := geom.Area(res.Points); math.Abs(got-29*39) > 40 {
		t.Errorf("rectangle contour area = %.0f, want ~%d", got, 29*39)
	}
}

func TestOpeningRemovesIsolatedPixel(t *testing.T) {
	w, h := 5, 5
	mask := make([]bool, w*h)
	mask[2*w+2] = true

	opened := dilate(erode(mask, w, h), w, h)
	for i, v := range opened {
		if v {
			t.Fatalf("pixel %d survived opening", i)
		}
	}
}

func TestOtsuThreshold(t *testing.T) {
	plane := make([]uint8, 100)
	for i := 50; i < 100; i++ {
		plane[i] = 255
	}
	th := otsuThreshold(plane)
	if th >= 255 {
		t.Errorf("threshold %d should separate 0 and 255", th)
	}
	if got := otsuThreshold(make([]uint8, 10)); got != 0 {
		t.Errorf("constant plane threshold = %d, want 0", got)
	}
}

func TestTraceBoundaryThinLine(t *testing.T) {
	w, h := 5, 1
	labels := []int32{1, 1, 1, 0, 0}

	pts := traceBoundary(labels, w, h, 1, image.Pt(0, 0))
	if len(pts) != 4 {
		t.Errorf("thin line boundary should visit 4 points, got %d: %v", len(pts), pts)
	}
}
