package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkm/casewatch/internal/client"
)

// Evacuation actions dispatched to the backend.
const (
	evacActionStart    = "start"
	evacActionComplete = "complete"
	evacActionCancel   = "cancel"
)

// evacModel is the confirm dialog for evacuation state changes. Opened on a
// table row; the available action follows the row's current status.
type evacModel struct {
	visible bool
	devEUI  string
	name    string
	status  string
	pending bool
	err     error
}

// open prepares the dialog for the given row.
func (e *evacModel) open(devEUI, name, status string) {
	e.visible = true
	e.devEUI = devEUI
	e.name = name
	e.status = status
	e.pending = false
	e.err = nil
}

// close dismisses the dialog.
func (e *evacModel) close() {
	*e = evacModel{}
}

// primaryAction maps the row's evacuation status to the action "y" confirms.
func (e *evacModel) primaryAction() string {
	if e.status == client.EvacInProgress {
		return evacActionComplete
	}
	return evacActionStart
}

// Update handles dialog keys. The returned action is non-empty when the App
// should dispatch the corresponding request.
func (e evacModel) Update(msg tea.KeyMsg) (evacModel, string) {
	if e.pending {
		return e, ""
	}
	switch msg.String() {
	case "y", "Y":
		if e.status == client.EvacEvacuated {
			return e, ""
		}
		e.pending = true
		return e, e.primaryAction()
	case "c", "C":
		if e.status == client.EvacInProgress || e.status == client.EvacNeeded {
			e.pending = true
			return e, evacActionCancel
		}
	case "n", "N", "esc":
		e.close()
	}
	return e, ""
}

// applyResult folds the backend response in. Success closes the dialog;
// failure keeps it open with the error shown.
func (e evacModel) applyResult(msg EvacResultMsg) evacModel {
	if !e.visible || msg.DevEUI != e.devEUI {
		return e
	}
	if msg.Err != nil {
		e.pending = false
		e.err = msg.Err
		return e
	}
	e.close()
	return e
}

// render draws the dialog box.
func (e *evacModel) render() string {
	if !e.visible {
		return ""
	}

	var prompt string
	switch e.status {
	case client.EvacInProgress:
		prompt = "Evacuation in progress for " + e.name + ".\ny: mark evacuated  c: cancel evacuation  n: close"
	case client.EvacNeeded:
		prompt = "Evacuation requested for " + e.name + ".\ny: start evacuation  c: cancel request  n: close"
	case client.EvacEvacuated:
		prompt = e.name + " is already evacuated.\nn: close"
	default:
		prompt = "Request evacuation for " + e.name + "?\ny: start  n: close"
	}

	if e.pending {
		prompt += "\n" + StyleYellow.Render("sending...")
	}
	if e.err != nil {
		prompt += "\n" + StyleError.Render("failed: "+e.err.Error())
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorYellow).
		Padding(0, 2)
	title := lipgloss.NewStyle().Bold(true).Foreground(colorYellow).Render("Evacuation")
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, title, prompt))
}
