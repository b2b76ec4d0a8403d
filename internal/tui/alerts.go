package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkm/casewatch/internal/client"
)

// alertsModel is the unread-alerts panel with a cursor and mark-read actions.
type alertsModel struct {
	visible bool
	cursor  int
	alerts  []client.Alert
	pending bool
	err     error
}

// SetData replaces the alert list, keeping the cursor in bounds.
func (a *alertsModel) SetData(alerts []client.Alert) {
	a.alerts = alerts
	if a.cursor >= len(alerts) {
		a.cursor = len(alerts) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// Update handles panel keys. markID is the alert to mark read, -1 for all,
// 0 when no action is requested.
func (a alertsModel) Update(msg tea.KeyMsg) (alertsModel, int64) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, keys.Down):
		if a.cursor < len(a.alerts)-1 {
			a.cursor++
		}
	case key.Matches(msg, keys.MarkRead):
		if !a.pending && a.cursor < len(a.alerts) {
			a.pending = true
			return a, a.alerts[a.cursor].ID
		}
	case msg.String() == "M":
		if !a.pending && len(a.alerts) > 0 {
			a.pending = true
			return a, -1
		}
	case key.Matches(msg, keys.Escape):
		a.visible = false
	}
	return a, 0
}

// applyResult folds the mark-read outcome in. The alert list itself is
// refreshed by the next poll.
func (a alertsModel) applyResult(msg AlertReadMsg) alertsModel {
	a.pending = false
	a.err = msg.Err
	return a
}

// alertTypeStyle maps an alert type to its display style.
func alertTypeStyle(alertType string) lipgloss.Style {
	switch alertType {
	case client.AlertCriticalState, client.AlertCriticalDuration:
		return StyleRed
	case client.AlertNewCasualty:
		return StyleYellow
	default:
		return StyleDim
	}
}

// render draws the alerts panel.
func (a *alertsModel) render() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorPurple).
		Render(fmt.Sprintf("Alerts (%d unread)", len(a.alerts)))

	lines := []string{title}
	if len(a.alerts) == 0 {
		lines = append(lines, StyleDim.Render("  no unread alerts"))
	}
	for i, al := range a.alerts {
		if i >= 15 {
			lines = append(lines, StyleDim.Render(fmt.Sprintf("  ... and %d more", len(a.alerts)-15)))
			break
		}
		marker := "  "
		style := StyleTableRow
		if i == a.cursor {
			marker = "> "
			style = style.Background(colorSelectedBg)
		}
		lines = append(lines, marker+
			StyleDim.Render(al.CreatedAt.Format("15:04"))+" "+
			alertTypeStyle(al.AlertType).Render(al.AlertType)+" "+
			style.Render(sanitize(al.SoldierName+": "+al.Message)))
	}

	if a.pending {
		lines = append(lines, StyleYellow.Render("  marking..."))
	}
	if a.err != nil {
		lines = append(lines, StyleError.Render("  mark failed: "+a.err.Error()))
	}
	lines = append(lines, StyleDim.Render("  m: mark read  M: mark all  esc: back"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
