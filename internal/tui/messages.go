package tui

import (
	"time"

	"github.com/dkm/casewatch/internal/client"
	"github.com/dkm/casewatch/internal/engine"
	"github.com/dkm/casewatch/internal/model"
	"github.com/dkm/casewatch/internal/ws"
)

// SnapshotMsg delivers successful poll results to the TUI.
type SnapshotMsg struct {
	Snapshot *model.Snapshot
}

// FetchErrorMsg signals a poll failure.
type FetchErrorMsg struct{ Err error }

// TickMsg triggers the next scheduled poll.
type TickMsg time.Time

// PushMedicalMsg carries a medical_data push event.
type PushMedicalMsg struct{ Data client.MedicalData }

// PushEvacuationMsg carries an evacuation_update push event.
type PushEvacuationMsg struct{ Event engine.EvacuationEvent }

// PushAlertMsg carries an alert push event.
type PushAlertMsg struct{ Alert client.Alert }

// PushStateMsg reports a push-channel lifecycle change. Failed is set once
// the reconnect cap is exhausted.
type PushStateMsg struct {
	State  ws.State
	Failed bool
}

// NearbyResultMsg delivers the outcome of a nearby-radius query.
// Nonce identifies the query so stale responses are discarded.
type NearbyResultMsg struct {
	Results []client.NearbyResult
	Err     error
	Nonce   int
}

// HistoryLoadedMsg delivers a soldier's medical history for the detail view.
type HistoryLoadedMsg struct {
	DevEUI  string
	History *client.MedicalHistory
	Err     error
	Nonce   int
}

// EvacResultMsg delivers the outcome of an evacuation action.
type EvacResultMsg struct {
	DevEUI string
	Action string
	Err    error
}

// AlertReadMsg delivers the outcome of a mark-as-read action.
// ID is -1 for mark-all.
type AlertReadMsg struct {
	ID  int64
	Err error
}
