package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/dkm/casewatch/internal/model"
)

// renderOverview renders the summary cards plus the trend sparklines for
// tracked and critical counts over the last snapshots.
func renderOverview(sum model.SummaryCounts, trend *model.TrendHistory) string {
	cards := []string{
		overviewCard("Tracked", fmt.Sprintf("%d", sum.Total), colorWhite),
		overviewCard("Critical", fmt.Sprintf("%d", sum.Critical), colorRed),
		overviewCard("Warning", fmt.Sprintf("%d", sum.Warning), colorOrange),
		overviewCard("No signal", fmt.Sprintf("%d", sum.SensorErrors), colorGray),
		overviewCard("Evac req", fmt.Sprintf("%d", sum.EvacNeeded), colorYellow),
		overviewCard("Evac active", fmt.Sprintf("%d", sum.EvacActive), colorBlue),
		overviewCard("Alerts", fmt.Sprintf("%d", sum.UnreadAlerts), colorPurple),
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)

	if trend == nil || trend.Len() < 2 {
		return row
	}

	const sparkWidth = 30
	criticalLine := StyleDim.Render("critical ") +
		RenderSparkline(trend.Values("critical"), sparkWidth, colorRed)
	trackedLine := StyleDim.Render("tracked  ") +
		RenderSparkline(trend.Values("tracked"), sparkWidth, colorCyan)

	return lipgloss.JoinVertical(lipgloss.Left, row, criticalLine, trackedLine)
}

// overviewCard renders a single labeled value card.
func overviewCard(label, value string, valueColor lipgloss.Color) string {
	content := StyleDim.Render(label) + " " +
		lipgloss.NewStyle().Bold(true).Foreground(valueColor).Render(value)
	return StyleOverviewCard.Render(content)
}
