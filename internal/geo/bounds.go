// Package geo holds the pure coordinate math shared by the map view and the
// nearby-search workflow: viewport framing for a set of tracked positions and
// great-circle distance.
package geo

import "math"

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// View is a map viewport: a center point and a tile-style zoom level.
type View struct {
	Center Point
	Zoom   int
}

// FallbackCenter is the viewport center used when no tracked position is
// available (Lviv).
var FallbackCenter = Point{Lat: 49.841817, Lon: 24.031695}

const (
	fallbackZoom    = 13
	singlePointZoom = 15
	minZoom         = 7

	// kmPerDegreeLat approximates one degree of latitude; longitude is
	// scaled by the cosine of the center latitude.
	kmPerDegreeLat = 111.32
)

// Bounds computes the viewport that frames the given positions.
//
// No points: fallback center, zoom 13. One point: that point, zoom 15.
// Otherwise the center is the midpoint of the bounding box and the zoom is
// picked from the span of the box in kilometres, then widened by one level
// (floored at 7) so the extreme markers are not flush with the edge.
// Deterministic and independent of input order.
func Bounds(points []Point) View {
	if len(points) == 0 {
		return View{Center: FallbackCenter, Zoom: fallbackZoom}
	}
	if len(points) == 1 {
		return View{Center: points[0], Zoom: singlePointZoom}
	}

	minLat, maxLat := 90.0, -90.0
	minLon, maxLon := 180.0, -180.0
	for _, p := range points {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
	}

	center := Point{
		Lat: (minLat + maxLat) / 2,
		Lon: (minLon + maxLon) / 2,
	}

	latSpanKm := (maxLat - minLat) * kmPerDegreeLat
	lonSpanKm := (maxLon - minLon) * kmPerDegreeLat * math.Cos(center.Lat*math.Pi/180)
	spanKm := math.Max(latSpanKm, lonSpanKm)

	zoom := zoomForSpan(spanKm) - 1
	if zoom < minZoom {
		zoom = minZoom
	}
	return View{Center: center, Zoom: zoom}
}

// zoomForSpan maps a bounding-box span in kilometres to a zoom level.
func zoomForSpan(spanKm float64) int {
	switch {
	case spanKm > 100:
		return 7
	case spanKm > 50:
		return 8
	case spanKm > 20:
		return 9
	case spanKm > 10:
		return 10
	case spanKm > 5:
		return 11
	case spanKm > 2:
		return 12
	case spanKm > 1:
		return 13
	case spanKm > 0.5:
		return 14
	default:
		return 15
	}
}

// SpanKm returns the width and height in kilometres of the area a viewport
// covers at the given zoom level. Zoom 7 frames roughly a 200 km span,
// halving with each level (the inverse of the zoomForSpan table).
func SpanKm(zoom int) float64 {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > singlePointZoom {
		zoom = singlePointZoom
	}
	// zoom 7 → 200 km, zoom 8 → 100 km, ... zoom 15 → ~0.78 km.
	return 200 / math.Pow(2, float64(zoom-minZoom))
}
