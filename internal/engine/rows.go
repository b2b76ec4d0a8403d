package engine

import (
	"time"

	"github.com/dkm/casewatch/internal/client"
	"github.com/dkm/casewatch/internal/geo"
	"github.com/dkm/casewatch/internal/model"
)

// Priority derives the triage priority for a soldier when the backend did
// not supply one: 1=critical, 2=high, 3=sensor warning, 4=normal, 5=no data.
func Priority(s client.Soldier) int {
	if s.Priority > 0 {
		return s.Priority
	}
	if s.LatestData == nil {
		return 5
	}
	switch s.LatestData.IssueType {
	case client.IssueBoth:
		return 1
	case client.IssueSpO2, client.IssueHR:
		return 2
	case client.IssueSensorError:
		return 3
	default:
		return 4
	}
}

// CalcSoldierRows converts a snapshot into display rows. When the active
// selection has a position, each positioned row is annotated with its
// distance from the selected soldier; otherwise DistanceKm is -1.
func CalcSoldierRows(snap *model.Snapshot, activeID string, now time.Time) []model.SoldierRow {
	if snap == nil {
		return nil
	}

	var origin *geo.Point
	if active := snap.Find(activeID); active != nil && active.HasPosition() {
		origin = &geo.Point{Lat: active.LatestData.Latitude, Lon: active.LatestData.Longitude}
	}

	rows := make([]model.SoldierRow, 0, len(snap.Soldiers))
	for _, s := range snap.Soldiers {
		row := model.SoldierRow{
			DevEUI:     s.DevEUI,
			Name:       s.FullName(),
			Unit:       s.Unit,
			Priority:   Priority(s),
			SpO2:       -1,
			HeartRate:  -1,
			IssueType:  client.IssueNormal,
			EvacStatus: client.EvacNotNeeded,
			DataAge:    -1,
			DistanceKm: -1,
		}
		if s.LatestData != nil {
			row.SpO2 = s.LatestData.SpO2
			row.HeartRate = s.LatestData.HeartRate
			row.IssueType = s.LatestData.IssueType
			row.DataAge = now.Sub(s.LatestData.Timestamp)
		}
		if s.Evacuation != nil {
			row.EvacStatus = s.Evacuation.Status
		}
		if s.HasPosition() {
			row.HasPos = true
			row.Lat = s.LatestData.Latitude
			row.Lon = s.LatestData.Longitude
			if origin != nil {
				row.DistanceKm = geo.Distance(*origin, geo.Point{Lat: row.Lat, Lon: row.Lon})
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// CalcSummary computes the overview totals for a snapshot.
func CalcSummary(snap *model.Snapshot) model.SummaryCounts {
	var sum model.SummaryCounts
	if snap == nil {
		return sum
	}
	sum.Total = len(snap.Soldiers)
	for _, s := range snap.Soldiers {
		switch Priority(s) {
		case 1:
			sum.Critical++
		case 2:
			sum.Warning++
		case 3:
			sum.SensorErrors++
		}
		if s.Evacuation != nil {
			switch s.Evacuation.Status {
			case client.EvacNeeded:
				sum.EvacNeeded++
			case client.EvacInProgress:
				sum.EvacActive++
			}
		}
	}
	for _, a := range snap.Alerts {
		if !a.IsRead {
			sum.UnreadAlerts++
		}
	}
	return sum
}

// ValidPositions returns the coordinates of every soldier in the snapshot
// with a usable position, in list order.
func ValidPositions(soldiers []client.Soldier) []geo.Point {
	var pts []geo.Point
	for _, s := range soldiers {
		if s.HasPosition() {
			pts = append(pts, geo.Point{Lat: s.LatestData.Latitude, Lon: s.LatestData.Longitude})
		}
	}
	return pts
}
