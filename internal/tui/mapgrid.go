package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dkm/casewatch/internal/geo"
	"github.com/dkm/casewatch/internal/model"
)

// Map markers.
const (
	markerCritical = '◆'
	markerWarning  = '▲'
	markerEvac     = '✚'
	markerNormal   = '●'
	markerSensor   = '◌'
	markerSearch   = '⊕'
	markerCursor   = '+'
)

const kmPerDegLat = 111.32

// mapCell is one plotted marker on the grid.
type mapCell struct {
	ch       rune
	style    lipgloss.Style
	selected bool
}

// MapGridModel renders tracked positions as a character grid projected
// around the current viewport. The viewport survives refreshes untouched;
// it only moves on selection changes or an explicit recenter.
type MapGridModel struct {
	View   geo.View
	width  int
	height int

	// Overlay for the nearby-search workflow.
	SearchPoint  *geo.Point
	SearchCursor *geo.Point
	RadiusKm     float64
}

// NewMapGrid returns a MapGridModel with a default grid size.
func NewMapGrid() MapGridModel {
	return MapGridModel{
		View:   geo.View{Center: geo.FallbackCenter, Zoom: 13},
		width:  60,
		height: 14,
	}
}

// SetSize adjusts the grid dimensions to the available terminal area.
func (m *MapGridModel) SetSize(width, height int) {
	if width > 20 {
		m.width = width
	}
	if height > 6 {
		m.height = height
	}
}

// Recenter frames the viewport around the given positions.
func (m *MapGridModel) Recenter(points []geo.Point) {
	m.View = geo.Bounds(points)
}

// Focus moves the viewport to a single position without touching zoom
// beyond the single-point rule.
func (m *MapGridModel) Focus(p geo.Point) {
	m.View = geo.Bounds([]geo.Point{p})
}

// project converts a coordinate to grid column/row. ok is false when the
// point falls outside the viewport.
func (m *MapGridModel) project(p geo.Point) (col, row int, ok bool) {
	spanKm := geo.SpanKm(m.View.Zoom)
	latSpan := spanKm / kmPerDegLat
	lonSpan := spanKm / (kmPerDegLat * math.Cos(m.View.Center.Lat*math.Pi/180))

	// Normalised offsets in [-0.5, 0.5] relative to the viewport.
	dx := (p.Lon - m.View.Center.Lon) / lonSpan
	dy := (m.View.Center.Lat - p.Lat) / latSpan

	if dx < -0.5 || dx > 0.5 || dy < -0.5 || dy > 0.5 {
		return 0, 0, false
	}

	col = int((dx + 0.5) * float64(m.width-1))
	row = int((dy + 0.5) * float64(m.height-1))
	if col < 0 {
		col = 0
	}
	if col >= m.width {
		col = m.width - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= m.height {
		row = m.height - 1
	}
	return col, row, true
}

// rowMarker picks the marker rune and style for a casualty row.
func rowMarker(r model.SoldierRow) (rune, lipgloss.Style) {
	switch {
	case r.IssueType == "SENSOR_ERROR":
		return markerSensor, StyleDim
	case r.EvacStatus == "IN_PROGRESS":
		return markerEvac, StyleBlue
	case r.Priority == 1:
		return markerCritical, StyleRed
	case r.Priority == 2:
		return markerWarning, StyleOrange
	default:
		return markerNormal, StyleGreen
	}
}

// Render draws the grid with all positioned rows, the active selection
// highlighted, and the search overlay when present.
func (m *MapGridModel) Render(rows []model.SoldierRow, activeID string) string {
	grid := make(map[[2]int]mapCell)

	for _, r := range rows {
		if !r.HasPos {
			continue
		}
		col, row, ok := m.project(geo.Point{Lat: r.Lat, Lon: r.Lon})
		if !ok {
			continue
		}
		ch, style := rowMarker(r)
		cell := mapCell{ch: ch, style: style, selected: r.DevEUI == activeID && activeID != ""}
		// Selected and critical markers win cell conflicts.
		if prev, exists := grid[[2]int{row, col}]; exists {
			if prev.selected || (prev.ch == markerCritical && !cell.selected) {
				continue
			}
		}
		grid[[2]int{row, col}] = cell
	}

	if m.SearchPoint != nil {
		if col, row, ok := m.project(*m.SearchPoint); ok {
			grid[[2]int{row, col}] = mapCell{ch: markerSearch, style: StyleCyan}
		}
	}
	if m.SearchCursor != nil {
		if col, row, ok := m.project(*m.SearchCursor); ok {
			grid[[2]int{row, col}] = mapCell{ch: markerCursor, style: StyleCyan.Bold(true)}
		}
	}

	var sb strings.Builder
	for row := 0; row < m.height; row++ {
		for col := 0; col < m.width; col++ {
			cell, ok := grid[[2]int{row, col}]
			if !ok {
				sb.WriteRune('·')
				continue
			}
			st := cell.style
			if cell.selected {
				st = st.Background(colorSelectedBg).Bold(true)
			}
			sb.WriteString(st.Render(string(cell.ch)))
		}
		if row < m.height-1 {
			sb.WriteByte('\n')
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderCaption(rows), sb.String())
}

// renderCaption is the one-line legend above the grid.
func (m *MapGridModel) renderCaption(rows []model.SoldierRow) string {
	plotted := 0
	for _, r := range rows {
		if r.HasPos {
			plotted++
		}
	}
	caption := fmt.Sprintf("Map  z%d  %s  %d positioned",
		m.View.Zoom, formatCenter(m.View.Center), plotted)
	if m.RadiusKm > 0 {
		caption += fmt.Sprintf("  radius %.1f km", m.RadiusKm)
	}
	legend := "◆ critical  ▲ warning  ✚ evac  ● ok  ◌ no signal"
	return StyleDim.Render(caption + "   " + legend)
}

// formatCenter renders the viewport center as short coordinates.
func formatCenter(p geo.Point) string {
	return fmt.Sprintf("%.4f,%.4f", p.Lat, p.Lon)
}
