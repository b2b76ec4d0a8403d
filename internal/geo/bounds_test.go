package geo

import (
	"math"
	"testing"
)

func TestBounds_NoPointsFallsBack(t *testing.T) {
	v := Bounds(nil)
	if v.Center != FallbackCenter {
		t.Errorf("center = %+v, want fallback %+v", v.Center, FallbackCenter)
	}
	if v.Zoom != 13 {
		t.Errorf("zoom = %d, want 13", v.Zoom)
	}
}

func TestBounds_SinglePoint(t *testing.T) {
	p := Point{Lat: 50.45, Lon: 30.52}
	v := Bounds([]Point{p})
	if v.Center != p {
		t.Errorf("center = %+v, want %+v", v.Center, p)
	}
	if v.Zoom != 15 {
		t.Errorf("zoom = %d, want 15", v.Zoom)
	}
}

func TestBounds_TwoPointsMidpoint(t *testing.T) {
	a := Point{Lat: 49.80, Lon: 24.00}
	b := Point{Lat: 49.90, Lon: 24.10}
	v := Bounds([]Point{a, b})

	if math.Abs(v.Center.Lat-49.85) > 1e-9 {
		t.Errorf("center lat = %f, want 49.85", v.Center.Lat)
	}
	if math.Abs(v.Center.Lon-24.05) > 1e-9 {
		t.Errorf("center lon = %f, want 24.05", v.Center.Lon)
	}
	// 0.1 deg lat span is ~11.1 km → zoom 10, widened by one → 9.
	if v.Zoom != 9 {
		t.Errorf("zoom = %d, want 9", v.Zoom)
	}
}

func TestBounds_SmallSpanZoom(t *testing.T) {
	// ~1.1 km lat span → zoomForSpan 13, widened → 12.
	a := Point{Lat: 49.840, Lon: 24.030}
	b := Point{Lat: 49.850, Lon: 24.030}
	v := Bounds([]Point{a, b})
	if v.Zoom != 12 {
		t.Errorf("zoom = %d, want 12", v.Zoom)
	}
}

func TestBounds_WideSpanFloorsAtMinZoom(t *testing.T) {
	a := Point{Lat: 44.0, Lon: 22.0}
	b := Point{Lat: 52.0, Lon: 40.0}
	v := Bounds([]Point{a, b})
	if v.Zoom != 7 {
		t.Errorf("zoom = %d, want floor 7", v.Zoom)
	}
}

func TestBounds_OrderIndependent(t *testing.T) {
	pts := []Point{
		{Lat: 49.80, Lon: 24.00},
		{Lat: 49.95, Lon: 24.20},
		{Lat: 49.85, Lon: 24.10},
	}
	rev := []Point{pts[2], pts[0], pts[1]}

	if Bounds(pts) != Bounds(rev) {
		t.Errorf("Bounds depends on input order: %+v vs %+v", Bounds(pts), Bounds(rev))
	}
}

func TestBounds_Deterministic(t *testing.T) {
	pts := []Point{
		{Lat: 49.80, Lon: 24.00},
		{Lat: 49.90, Lon: 24.10},
	}
	first := Bounds(pts)
	for i := 0; i < 10; i++ {
		if got := Bounds(pts); got != first {
			t.Fatalf("run %d: got %+v, want %+v", i, got, first)
		}
	}
}

func TestZoomForSpan_Table(t *testing.T) {
	tests := []struct {
		spanKm float64
		want   int
	}{
		{150, 7},
		{80, 8},
		{30, 9},
		{15, 10},
		{7, 11},
		{3, 12},
		{1.5, 13},
		{0.7, 14},
		{0.2, 15},
	}
	for _, tc := range tests {
		if got := zoomForSpan(tc.spanKm); got != tc.want {
			t.Errorf("zoomForSpan(%v) = %d, want %d", tc.spanKm, got, tc.want)
		}
	}
}

func TestSpanKm_InverseOfZoomTable(t *testing.T) {
	if got := SpanKm(7); got != 200 {
		t.Errorf("SpanKm(7) = %v, want 200", got)
	}
	if got := SpanKm(8); got != 100 {
		t.Errorf("SpanKm(8) = %v, want 100", got)
	}
	// Out-of-range zooms clamp.
	if SpanKm(3) != SpanKm(7) {
		t.Errorf("SpanKm should clamp low zooms to 7")
	}
	if SpanKm(20) != SpanKm(15) {
		t.Errorf("SpanKm should clamp high zooms to 15")
	}
}
