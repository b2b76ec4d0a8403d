package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkm/casewatch/internal/client"
	"github.com/dkm/casewatch/internal/model"
)

func TestCalcAdvisories_CriticalVitals(t *testing.T) {
	now := time.Now()
	s := soldierWithReading("dev-1", client.IssueBoth, now)
	snap := &model.Snapshot{Soldiers: []client.Soldier{s}}

	advs := CalcAdvisories(snap, now)
	require.Len(t, advs, 1)
	assert.Equal(t, model.SeverityCritical, advs[0].Severity)
	assert.Equal(t, model.CategoryVitals, advs[0].Category)
	assert.Contains(t, advs[0].Detail, "First dev-1")
}

func TestCalcAdvisories_OverdueCriticalWithoutEvac(t *testing.T) {
	now := time.Now()
	s := soldierWithReading("dev-1", client.IssueSpO2, now.Add(-45*time.Minute))
	snap := &model.Snapshot{Soldiers: []client.Soldier{s}}

	advs := CalcAdvisories(snap, now)

	var found bool
	for _, a := range advs {
		if a.Category == model.CategoryEvacuation && a.Severity == model.SeverityCritical {
			found = true
		}
	}
	assert.True(t, found, "expected an overdue-evacuation advisory")
}

func TestCalcAdvisories_EvacUnderwaySuppressesOverdue(t *testing.T) {
	now := time.Now()
	s := soldierWithReading("dev-1", client.IssueSpO2, now.Add(-45*time.Minute))
	s.Evacuation = &client.Evacuation{Status: client.EvacInProgress}
	snap := &model.Snapshot{Soldiers: []client.Soldier{s}}

	advs := CalcAdvisories(snap, now)
	for _, a := range advs {
		if a.Category == model.CategoryEvacuation {
			assert.NotEqual(t, model.SeverityCritical, a.Severity)
		}
	}
}

func TestCalcAdvisories_SilentSensor(t *testing.T) {
	now := time.Now()
	s := soldierWithReading("dev-1", client.IssueNormal, now.Add(-20*time.Minute))
	snap := &model.Snapshot{Soldiers: []client.Soldier{s}}

	advs := CalcAdvisories(snap, now)
	require.Len(t, advs, 1)
	assert.Equal(t, model.CategorySensors, advs[0].Category)
	assert.Equal(t, model.SeverityWarning, advs[0].Severity)
}

func TestCalcAdvisories_PendingEvacuation(t *testing.T) {
	now := time.Now()
	s := soldierWithReading("dev-1", client.IssueNormal, now)
	s.Evacuation = &client.Evacuation{Status: client.EvacNeeded}
	snap := &model.Snapshot{Soldiers: []client.Soldier{s}}

	advs := CalcAdvisories(snap, now)
	require.Len(t, advs, 1)
	assert.Equal(t, model.CategoryEvacuation, advs[0].Category)
	assert.Equal(t, model.SeverityWarning, advs[0].Severity)
}

func TestCalcAdvisories_SortedCriticalFirst(t *testing.T) {
	now := time.Now()
	critical := soldierWithReading("dev-1", client.IssueBoth, now)
	pending := soldierWithReading("dev-2", client.IssueNormal, now)
	pending.Evacuation = &client.Evacuation{Status: client.EvacNeeded}
	snap := &model.Snapshot{Soldiers: []client.Soldier{critical, pending}}

	advs := CalcAdvisories(snap, now)
	require.NotEmpty(t, advs)
	for i := 1; i < len(advs); i++ {
		assert.GreaterOrEqual(t, advs[i-1].Severity, advs[i].Severity)
	}
	assert.Equal(t, model.SeverityCritical, advs[0].Severity)
}

func TestCalcAdvisories_EmptyAndNil(t *testing.T) {
	assert.Nil(t, CalcAdvisories(nil, time.Now()))
	assert.Empty(t, CalcAdvisories(&model.Snapshot{}, time.Now()))
}

func TestNameList_Overflow(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "g"}
	got := nameList(names)
	assert.Contains(t, got, "and 2 more")
	assert.Equal(t, "a, b", nameList([]string{"a", "b"}))
}
