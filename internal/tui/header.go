package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dkm/casewatch/internal/ws"
)

// renderHeader renders the top bar: title, backend URL, push-channel state,
// and the age of the last successful poll.
func renderHeader(baseURL string, pushState ws.State, pushFailed bool, attempts int, fetchedAt time.Time, fetching bool, width int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Render("casewatch")

	var link string
	switch {
	case pushFailed:
		link = StyleRed.Render("push: failed (polling only)")
	case pushState == ws.StateOpen:
		link = StyleGreen.Render("push: live")
	case pushState == ws.StateConnecting:
		if attempts > 0 {
			link = StyleYellow.Render(fmt.Sprintf("push: reconnecting (%d/5)", attempts))
		} else {
			link = StyleYellow.Render("push: connecting")
		}
	default:
		link = StyleDim.Render("push: off")
	}

	var freshness string
	switch {
	case fetching:
		freshness = StyleYellow.Render("refreshing...")
	case fetchedAt.IsZero():
		freshness = StyleDim.Render("no data yet")
	default:
		freshness = StyleDim.Render("updated " + fetchedAt.Format("15:04:05"))
	}

	line := fmt.Sprintf("%s  %s  %s  %s", title, StyleDim.Render(baseURL), link, freshness)
	return StyleHeader.Width(max(width, lipgloss.Width(line))).Render(line)
}
