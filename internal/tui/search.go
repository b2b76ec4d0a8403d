package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkm/casewatch/internal/client"
	"github.com/dkm/casewatch/internal/format"
	"github.com/dkm/casewatch/internal/geo"
)

// searchPhase is the state of the nearby-search workflow.
type searchPhase int

const (
	searchIdle searchPhase = iota
	searchPickingPoint
	searchPickingRadius
	searchQuerying
	searchResultsShown
)

// Radius bounds in kilometres.
const (
	radiusDefault = 1.0
	radiusMin     = 0.5
	radiusMax     = 5.0
	radiusStep    = 0.5
)

// searchModel drives the find-casualties-near-a-point workflow: pick a point
// on the map, pick a radius, query, show results. Each query carries a nonce
// so a response landing after the workflow moved on is discarded.
type searchModel struct {
	phase    searchPhase
	cursor   geo.Point
	point    geo.Point
	hasPoint bool
	radiusKm float64
	zoom     int

	nonce   int
	results []client.NearbyResult
	err     error
}

func newSearchModel() searchModel {
	return searchModel{radiusKm: radiusDefault}
}

// active reports whether the workflow currently owns map keys.
func (s *searchModel) active() bool {
	return s.phase != searchIdle
}

// begin starts point picking from the current viewport center.
func (s *searchModel) begin(center geo.Point, zoom int) {
	s.phase = searchPickingPoint
	s.cursor = center
	s.zoom = zoom
	s.err = nil
	s.results = nil
}

// cancel aborts the whole workflow and resets the radius to the default.
func (s *searchModel) cancel() {
	*s = newSearchModel()
}

// stepDeg returns how far one arrow press moves the crosshair, scaled to the
// viewport span so movement feels uniform at any zoom.
func (s *searchModel) stepDeg() (latStep, lonStep float64) {
	stepKm := geo.SpanKm(s.zoom) / 20
	latStep = stepKm / kmPerDegLat
	lonStep = stepKm / (kmPerDegLat * math.Cos(s.cursor.Lat*math.Pi/180))
	return latStep, lonStep
}

// Update handles one key press. startQuery is true when the workflow wants
// the App to dispatch a nearby query for Query().
func (s searchModel) Update(msg tea.KeyMsg) (searchModel, bool) {
	switch s.phase {
	case searchPickingPoint:
		latStep, lonStep := s.stepDeg()
		switch {
		case key.Matches(msg, keys.Up):
			s.cursor.Lat += latStep
		case key.Matches(msg, keys.Down):
			s.cursor.Lat -= latStep
		case key.Matches(msg, keys.PrevPage):
			s.cursor.Lon -= lonStep
		case key.Matches(msg, keys.NextPage):
			s.cursor.Lon += lonStep
		case key.Matches(msg, keys.Enter):
			s.point = s.cursor
			s.hasPoint = true
			s.phase = searchPickingRadius
		case key.Matches(msg, keys.Escape):
			s.cancel()
		}

	case searchPickingRadius:
		switch {
		case key.Matches(msg, keys.RadiusUp):
			s.radiusKm = math.Min(radiusMax, s.radiusKm+radiusStep)
		case key.Matches(msg, keys.RadiusDn):
			s.radiusKm = math.Max(radiusMin, s.radiusKm-radiusStep)
		case key.Matches(msg, keys.Enter):
			s.phase = searchQuerying
			s.nonce++
			s.err = nil
			return s, true
		case key.Matches(msg, keys.Escape):
			s.phase = searchPickingPoint
			s.hasPoint = false
		}

	case searchQuerying:
		if key.Matches(msg, keys.Escape) {
			// Abandon the in-flight query; its nonce is now stale.
			s.phase = searchPickingRadius
		}

	case searchResultsShown:
		switch {
		case key.Matches(msg, keys.Escape):
			s.phase = searchPickingRadius
			s.results = nil
		case key.Matches(msg, keys.Enter):
			s.cancel()
		}
	}
	return s, false
}

// Query returns the parameters and nonce for the pending query.
func (s *searchModel) Query() (point geo.Point, radiusKm float64, nonce int) {
	return s.point, s.radiusKm, s.nonce
}

// applyResult folds a query response into the workflow. Stale nonces are
// ignored; failures return to radius picking with the point kept.
func (s searchModel) applyResult(msg NearbyResultMsg) searchModel {
	if msg.Nonce != s.nonce || s.phase != searchQuerying {
		return s
	}
	if msg.Err != nil {
		s.err = msg.Err
		s.phase = searchPickingRadius
		return s
	}
	s.results = msg.Results
	s.phase = searchResultsShown
	return s
}

// overlayPoint returns the confirmed point for the map overlay, nil before
// one is picked.
func (s *searchModel) overlayPoint() *geo.Point {
	if !s.hasPoint {
		return nil
	}
	p := s.point
	return &p
}

// overlayCursor returns the moving crosshair, nil outside point picking.
func (s *searchModel) overlayCursor() *geo.Point {
	if s.phase != searchPickingPoint {
		return nil
	}
	p := s.cursor
	return &p
}

// render draws the workflow panel under the map.
func (s *searchModel) render() string {
	switch s.phase {
	case searchPickingPoint:
		return StyleCyan.Render("Nearby search: ") +
			StyleDim.Render(fmt.Sprintf("move + with arrows (%s), enter: set point, esc: cancel",
				formatCenter(s.cursor)))

	case searchPickingRadius:
		line := StyleCyan.Render("Nearby search: ") +
			StyleDim.Render(fmt.Sprintf("point %s  radius ", formatCenter(s.point))) +
			StyleYellow.Render(fmt.Sprintf("%.1f km", s.radiusKm)) +
			StyleDim.Render("  +/-: adjust, enter: search, esc: back")
		if s.err != nil {
			line = lipgloss.JoinVertical(lipgloss.Left, line,
				StyleError.Render("search failed: "+s.err.Error()))
		}
		return line

	case searchQuerying:
		return StyleCyan.Render("Nearby search: ") +
			StyleDim.Render(fmt.Sprintf("querying %.1f km around %s ...", s.radiusKm, formatCenter(s.point)))

	case searchResultsShown:
		return s.renderResults()
	}
	return ""
}

// renderResults lists the matches sorted by distance (server order).
func (s *searchModel) renderResults() string {
	title := StyleCyan.Render(fmt.Sprintf("Nearby search: %d found within %.1f km of %s",
		len(s.results), s.radiusKm, formatCenter(s.point)))

	if len(s.results) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			StyleDim.Render("  no casualties in range  (esc: back, enter: done)"))
	}

	var sb strings.Builder
	for i, r := range s.results {
		if i >= 10 {
			sb.WriteString(StyleDim.Render(fmt.Sprintf("  ... and %d more", len(s.results)-10)))
			break
		}
		vitals := "no data"
		if !r.MedicalData.Timestamp.IsZero() {
			vitals = fmt.Sprintf("SpO2 %s  HR %s",
				format.FormatSpO2(r.MedicalData.SpO2), format.FormatVital(r.MedicalData.HeartRate))
		}
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n",
			StyleTableRow.Render(truncateName(r.Soldier.FullName(), 24)),
			StyleOrange.Render(format.FormatDistance(r.Distance)),
			StyleDim.Render(vitals)))
	}
	body := strings.TrimRight(sb.String(), "\n")
	hint := StyleDim.Render("  esc: back  enter: done")
	return lipgloss.JoinVertical(lipgloss.Left, title, body, hint)
}
