package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkm/casewatch/internal/geo"
	"github.com/dkm/casewatch/internal/model"
)

func testGrid() MapGridModel {
	m := NewMapGrid()
	m.View = geo.View{Center: geo.Point{Lat: 49.84, Lon: 24.03}, Zoom: 13}
	return m
}

func TestMapGrid_ProjectCenter(t *testing.T) {
	m := testGrid()

	col, row, ok := m.project(m.View.Center)
	require.True(t, ok)
	// Center lands in the middle of the grid.
	assert.InDelta(t, m.width/2, col, 1)
	assert.InDelta(t, m.height/2, row, 1)
}

func TestMapGrid_ProjectOutsideViewport(t *testing.T) {
	m := testGrid()

	// Kyiv is far outside a zoom-13 viewport on Lviv.
	_, _, ok := m.project(geo.Point{Lat: 50.45, Lon: 30.52})
	assert.False(t, ok)
}

func TestMapGrid_ProjectNorthIsUp(t *testing.T) {
	m := testGrid()
	span := geo.SpanKm(m.View.Zoom)
	latOffset := span / kmPerDegLat / 4

	_, northRow, ok := m.project(geo.Point{Lat: m.View.Center.Lat + latOffset, Lon: m.View.Center.Lon})
	require.True(t, ok)
	_, southRow, ok := m.project(geo.Point{Lat: m.View.Center.Lat - latOffset, Lon: m.View.Center.Lon})
	require.True(t, ok)

	assert.Less(t, northRow, southRow)
}

func TestRowMarker(t *testing.T) {
	tests := []struct {
		row  model.SoldierRow
		want rune
	}{
		{model.SoldierRow{Priority: 1}, markerCritical},
		{model.SoldierRow{Priority: 2}, markerWarning},
		{model.SoldierRow{Priority: 4}, markerNormal},
		{model.SoldierRow{Priority: 1, EvacStatus: "IN_PROGRESS"}, markerEvac},
		{model.SoldierRow{Priority: 1, IssueType: "SENSOR_ERROR"}, markerSensor},
	}
	for _, tc := range tests {
		ch, _ := rowMarker(tc.row)
		assert.Equal(t, string(tc.want), string(ch), "row %+v", tc.row)
	}
}

func TestMapGrid_RenderContainsMarkers(t *testing.T) {
	m := testGrid()
	rows := []model.SoldierRow{
		{DevEUI: "dev-1", Priority: 1, HasPos: true, Lat: 49.84, Lon: 24.03},
		{DevEUI: "dev-2", Priority: 4, HasPos: true, Lat: 49.842, Lon: 24.032},
		{DevEUI: "dev-3", Priority: 4, HasPos: false},
	}

	out := stripANSI(m.Render(rows, ""))
	assert.Contains(t, out, string(markerCritical))
	assert.Contains(t, out, string(markerNormal))
	assert.Contains(t, out, "2 positioned")
}

func TestMapGrid_RenderSearchOverlay(t *testing.T) {
	m := testGrid()
	p := geo.Point{Lat: 49.84, Lon: 24.03}
	m.SearchPoint = &p
	m.RadiusKm = 1.5

	out := stripANSI(m.Render(nil, ""))
	assert.Contains(t, out, string(markerSearch))
	assert.Contains(t, out, "radius 1.5 km")
}

func TestMapGrid_RenderLineCount(t *testing.T) {
	m := testGrid()
	out := m.Render(nil, "")
	// Caption line plus height grid rows.
	assert.Equal(t, m.height+1, len(strings.Split(out, "\n")))
}

func TestMapGrid_FocusUsesSinglePointRule(t *testing.T) {
	m := testGrid()
	m.Focus(geo.Point{Lat: 50.0, Lon: 25.0})
	assert.Equal(t, 15, m.View.Zoom)
	assert.Equal(t, 50.0, m.View.Center.Lat)
}

func TestMapGrid_RecenterFallsBack(t *testing.T) {
	m := testGrid()
	m.Recenter(nil)
	assert.Equal(t, geo.FallbackCenter, m.View.Center)
	assert.Equal(t, 13, m.View.Zoom)
}
