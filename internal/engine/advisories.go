package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dkm/casewatch/internal/client"
	"github.com/dkm/casewatch/internal/model"
)

const (
	// staleSensorAge is how old a reading may be before the sensor is
	// presumed silent.
	staleSensorAge = 15 * time.Minute
	// criticalDurationThreshold flags casualties stuck in a critical state
	// long enough that evacuation should already be moving.
	criticalDurationThreshold = 30 * time.Minute
)

// CalcAdvisories derives triage notes from the snapshot: casualties in
// critical state, critical states that have lasted too long without an
// evacuation underway, silent sensors, and pending evacuations. Sorted
// critical-first, then by title for a stable display order.
func CalcAdvisories(snap *model.Snapshot, now time.Time) []model.Advisory {
	if snap == nil {
		return nil
	}
	var out []model.Advisory

	var critical, overdue, silent, pending []string
	for _, s := range snap.Soldiers {
		evacMoving := s.Evacuation != nil &&
			(s.Evacuation.Status == client.EvacInProgress || s.Evacuation.Status == client.EvacEvacuated)

		if s.LatestData == nil {
			continue
		}
		age := now.Sub(s.LatestData.Timestamp)

		if s.LatestData.Critical() {
			critical = append(critical, s.FullName())
			if age >= criticalDurationThreshold && !evacMoving {
				overdue = append(overdue, s.FullName())
			}
		}
		if age >= staleSensorAge {
			silent = append(silent, s.FullName())
		}
		if s.Evacuation != nil && s.Evacuation.Status == client.EvacNeeded {
			pending = append(pending, s.FullName())
		}
	}

	if len(overdue) > 0 {
		out = append(out, model.Advisory{
			Severity: model.SeverityCritical,
			Category: model.CategoryEvacuation,
			Title:    fmt.Sprintf("%d casualty(ies) critical for over %d min without evacuation", len(overdue), int(criticalDurationThreshold.Minutes())),
			Detail:   nameList(overdue),
		})
	}
	if len(critical) > 0 {
		out = append(out, model.Advisory{
			Severity: model.SeverityCritical,
			Category: model.CategoryVitals,
			Title:    fmt.Sprintf("%d casualty(ies) with critical vitals", len(critical)),
			Detail:   nameList(critical),
		})
	}
	if len(pending) > 0 {
		out = append(out, model.Advisory{
			Severity: model.SeverityWarning,
			Category: model.CategoryEvacuation,
			Title:    fmt.Sprintf("%d evacuation(s) requested but not started", len(pending)),
			Detail:   nameList(pending),
		})
	}
	if len(silent) > 0 {
		out = append(out, model.Advisory{
			Severity: model.SeverityWarning,
			Category: model.CategorySensors,
			Title:    fmt.Sprintf("%d sensor(s) silent for over %d min", len(silent), int(staleSensorAge.Minutes())),
			Detail:   nameList(silent),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity > out[j].Severity
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// nameList joins names for an advisory detail line, capping at 5 with an
// overflow count.
func nameList(names []string) string {
	const maxNames = 5
	if len(names) <= maxNames {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(names[:maxNames], ", "), len(names)-maxNames)
}
