package tui

import (
	"sort"
	"strings"

	"github.com/dkm/casewatch/internal/model"
)

// sortSoldierRows returns a sorted copy of rows.
// Column mapping:
//
//	0=Name, 1=Unit, 2=Priority, 3=SpO2, 4=HeartRate, 5=EvacStatus,
//	6=DataAge, 7=DistanceKm
//
// col -1 means no sort (preserve the backend's priority order).
// Ties are broken by Name ascending.
func sortSoldierRows(rows []model.SoldierRow, col int, desc bool) []model.SoldierRow {
	out := make([]model.SoldierRow, len(rows))
	copy(out, rows)

	if col < 0 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var less bool
		switch col {
		case 0:
			less = strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case 1:
			if a.Unit != b.Unit {
				less = strings.ToLower(a.Unit) < strings.ToLower(b.Unit)
			} else {
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		case 2:
			if a.Priority != b.Priority {
				less = a.Priority < b.Priority
			} else {
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		case 3:
			if a.SpO2 != b.SpO2 {
				less = a.SpO2 < b.SpO2
			} else {
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		case 4:
			if a.HeartRate != b.HeartRate {
				less = a.HeartRate < b.HeartRate
			} else {
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		case 5:
			if a.EvacStatus != b.EvacStatus {
				less = a.EvacStatus < b.EvacStatus
			} else {
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		case 6:
			if a.DataAge != b.DataAge {
				less = a.DataAge < b.DataAge
			} else {
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		case 7:
			if a.DistanceKm != b.DistanceKm {
				less = a.DistanceKm < b.DistanceKm
			} else {
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		default:
			less = strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
		if desc {
			return !less
		}
		return less
	})
	return out
}

// filterSoldierRows returns rows whose Name, Unit, or DevEUI contains search
// (case-insensitive). Returns all rows when search is empty.
func filterSoldierRows(rows []model.SoldierRow, search string) []model.SoldierRow {
	if search == "" {
		return rows
	}
	lower := strings.ToLower(search)
	out := rows[:0:0]
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Name), lower) ||
			strings.Contains(strings.ToLower(r.Unit), lower) ||
			strings.Contains(strings.ToLower(r.DevEUI), lower) {
			out = append(out, r)
		}
	}
	return out
}
