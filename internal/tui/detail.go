package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dkm/casewatch/internal/client"
	"github.com/dkm/casewatch/internal/format"
	"github.com/dkm/casewatch/internal/model"
)

// PushControl is the subset of the push client the detail view needs to
// manage its per-soldier subscription. Tests inject a fake.
type PushControl interface {
	SubscribeSoldier(soldierID string)
	UnsubscribeSoldier(soldierID string)
}

// detailModel is the per-soldier drill-down: vitals history sparklines and
// aggregate stats, fed by a medical-history request keyed with a nonce so a
// late response for a previously viewed soldier is dropped.
type detailModel struct {
	visible bool
	devEUI  string
	name    string

	nonce   int
	loading bool
	history *client.MedicalHistory
	err     error
}

// open switches the detail view to a soldier and bumps the nonce for the
// history request the App is about to send. Subscribes to push updates.
func (d *detailModel) open(devEUI, name string, push PushControl) int {
	if d.visible && d.devEUI != "" && d.devEUI != devEUI && push != nil {
		push.UnsubscribeSoldier(d.devEUI)
	}
	d.visible = true
	d.devEUI = devEUI
	d.name = name
	d.loading = true
	d.history = nil
	d.err = nil
	d.nonce++
	if push != nil {
		push.SubscribeSoldier(devEUI)
	}
	return d.nonce
}

// close hides the view and drops the subscription.
func (d *detailModel) close(push PushControl) {
	if d.devEUI != "" && push != nil {
		push.UnsubscribeSoldier(d.devEUI)
	}
	*d = detailModel{nonce: d.nonce}
}

// applyHistory folds a history response in, discarding stale nonces.
func (d detailModel) applyHistory(msg HistoryLoadedMsg) detailModel {
	if msg.Nonce != d.nonce || !d.visible || msg.DevEUI != d.devEUI {
		return d
	}
	d.loading = false
	d.history = msg.History
	d.err = msg.Err
	return d
}

// render draws the detail panel for the currently selected soldier, with the
// live row alongside the loaded history.
func (d *detailModel) render(row *model.SoldierRow) string {
	if !d.visible {
		return ""
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).
		Render("Detail: " + d.name)

	var lines []string
	lines = append(lines, title)

	if row != nil {
		lines = append(lines, fmt.Sprintf("  %s  %s  %s",
			StyleDim.Render(row.DevEUI),
			PriorityStyle(row.Priority).Render(priorityLabel(row.Priority)),
			EvacStyle(row.EvacStatus).Render(evacLabel(row.EvacStatus))))
		lines = append(lines, fmt.Sprintf("  SpO2 %s  HR %s  age %s",
			StyleCyan.Render(format.FormatSpO2(row.SpO2)),
			StylePurple.Render(format.FormatVital(row.HeartRate)),
			StyleDim.Render(format.FormatAge(row.DataAge))))
	}

	switch {
	case d.loading:
		lines = append(lines, StyleDim.Render("  loading history..."))
	case d.err != nil:
		lines = append(lines, StyleError.Render("  history failed: "+d.err.Error()))
	case d.history != nil:
		lines = append(lines, d.renderHistory()...)
	}

	lines = append(lines, StyleDim.Render("  esc: back"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderHistory draws the sparkline and stats block from the loaded history.
func (d *detailModel) renderHistory() []string {
	const sparkWidth = 40

	// Records arrive newest first; sparklines read left-to-right in time.
	recs := d.history.Records
	spo2 := make([]float64, 0, len(recs))
	hr := make([]float64, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		if recs[i].IssueType == client.IssueSensorError {
			continue
		}
		spo2 = append(spo2, float64(recs[i].SpO2))
		hr = append(hr, float64(recs[i].HeartRate))
	}

	lines := []string{
		"  " + StyleDim.Render("SpO2 ") + RenderVitalSparkline(spo2, sparkWidth, spo2BandFloor, spo2BandCeil, colorCyan),
		"  " + StyleDim.Render("HR   ") + RenderVitalSparkline(hr, sparkWidth, hrBandFloor, hrBandCeil, colorPurple),
	}

	if st := d.history.Stats; st != nil {
		lines = append(lines, StyleDim.Render(fmt.Sprintf(
			"  %d records  avg SpO2 %.1f  avg HR %.1f  critical: spo2 %d, hr %d, both %d  sensor errors %d",
			st.RecordsCount, st.AvgSpO2, st.AvgHeartRate,
			st.CriticalStats.CriticalSpO2Count,
			st.CriticalStats.CriticalHRCount,
			st.CriticalStats.CriticalBothCount,
			st.CriticalStats.SensorErrors)))
	}

	if len(recs) > 0 {
		lines = append(lines, StyleDim.Render("  last reading "+recs[0].Timestamp.Format(time.RFC3339)))
	}
	return lines
}
