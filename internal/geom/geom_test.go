package geom

import (
	"math"
	"testing"
)

func square(size float64) []Point {
	return []Point{{0, 0}, {size, 0}, {size, size}, {0, size}}
}

func TestSignedAreaOrientation(t *testing.T) {
	sq := square(10)
	if got := SignedArea(sq); got != 100 {
		t.Errorf("SignedArea(square) = %v, want 100", got)
	}

	rev := append([]Point(nil), sq...)
	Reverse(rev)
	if got := SignedArea(rev); got != -100 {
		t.Errorf("SignedArea(reversed) = %v, want -100", got)
	}
	if got := Area(rev); got != 100 {
		t.Errorf("Area(reversed) = %v, want 100", got)
	}
}

func TestCentroid(t *testing.T) {
	tests := []struct {
		name string
		poly []Point
		want Point
	}{
		{"square", square(10), Point{5, 5}},
		{"offset triangle", []Point{{0, 0}, {6, 0}, {0, 6}}, Point{2, 2}},
		{"degenerate line", []Point{{0, 0}, {2, 0}, {4, 0}}, Point{2, 0}},
		{"empty", nil, Point{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Centroid(tt.poly)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("Centroid() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIsConvex(t *testing.T) {
	if !IsConvex(square(4)) {
		t.Error("square should be convex")
	}
	arrow := []Point{{0, 0}, {4, 0}, {2, 1}, {4, 4}, {0, 4}}
	if IsConvex(arrow) {
		t.Error("arrow should not be convex")
	}
	if IsConvex([]Point{{0, 0}, {1, 1}}) {
		t.Error("two points cannot be convex")
	}
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name           string
		p1, p2, q1, q2 Point
		want           bool
	}{
		{"cross", Point{0, 0}, Point{4, 4}, Point{0, 4}, Point{4, 0}, true},
		{"parallel", Point{0, 0}, Point{4, 0}, Point{0, 1}, Point{4, 1}, false},
		{"touching end", Point{0, 0}, Point{2, 0}, Point{2, 0}, Point{2, 3}, true},
		{"disjoint collinear", Point{0, 0}, Point{1, 0}, Point{2, 0}, Point{3, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentsIntersect(tt.p1, tt.p2, tt.q1, tt.q2); got != tt.want {
				t.Errorf("SegmentsIntersect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(square(1)) {
		t.Error("square should be finite")
	}
	if IsFinite([]Point{{math.NaN(), 0}}) {
		t.Error("NaN should not be finite")
	}
}
