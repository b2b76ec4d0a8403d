package engine

import (
	"encoding/json"
	"fmt"

	"github.com/dkm/casewatch/internal/client"
	"github.com/dkm/casewatch/internal/model"
)

// EvacuationEvent is the payload of an evacuation_update push frame.
type EvacuationEvent struct {
	SoldierID  string            `json:"soldier_id"`
	Evacuation client.Evacuation `json:"evacuation"`
}

// DecodeMedicalEvent parses a medical_data push payload.
func DecodeMedicalEvent(data json.RawMessage) (client.MedicalData, error) {
	var m client.MedicalData
	if err := json.Unmarshal(data, &m); err != nil {
		return client.MedicalData{}, fmt.Errorf("decode medical_data: %w", err)
	}
	return m, nil
}

// DecodeEvacuationEvent parses an evacuation_update push payload.
func DecodeEvacuationEvent(data json.RawMessage) (EvacuationEvent, error) {
	var e EvacuationEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return EvacuationEvent{}, fmt.Errorf("decode evacuation_update: %w", err)
	}
	if e.SoldierID == "" {
		e.SoldierID = e.Evacuation.Soldier
	}
	return e, nil
}

// DecodeAlertEvent parses an alert push payload.
func DecodeAlertEvent(data json.RawMessage) (client.Alert, error) {
	var a client.Alert
	if err := json.Unmarshal(data, &a); err != nil {
		return client.Alert{}, fmt.Errorf("decode alert: %w", err)
	}
	return a, nil
}

// MergeMedical applies a pushed reading to the snapshot, last-write-wins by
// timestamp: an event older than the reading currently held for that soldier
// is discarded (push frames are unordered with respect to poll snapshots).
// Returns true when the snapshot changed. Events for unknown soldiers are
// dropped; the next poll will bring the full record.
func MergeMedical(snap *model.Snapshot, m client.MedicalData) bool {
	if snap == nil {
		return false
	}
	s := snap.Find(m.Device)
	if s == nil {
		return false
	}
	if s.LatestData != nil && m.Timestamp.Before(s.LatestData.Timestamp) {
		return false
	}
	data := m
	s.LatestData = &data
	s.Priority = 0 // stale backend priority; recompute from the new reading
	s.Priority = Priority(*s)
	return true
}

// MergeEvacuation replaces a soldier's evacuation sub-record from a push
// event. Returns true when the snapshot changed.
func MergeEvacuation(snap *model.Snapshot, ev EvacuationEvent) bool {
	if snap == nil {
		return false
	}
	s := snap.Find(ev.SoldierID)
	if s == nil {
		return false
	}
	rec := ev.Evacuation
	s.Evacuation = &rec
	return true
}

// MergeAlert prepends a pushed alert unless an alert with the same id is
// already present. Returns true when the snapshot changed.
func MergeAlert(snap *model.Snapshot, a client.Alert) bool {
	if snap == nil {
		return false
	}
	for _, existing := range snap.Alerts {
		if existing.ID == a.ID {
			return false
		}
	}
	snap.Alerts = append([]client.Alert{a}, snap.Alerts...)
	return true
}
