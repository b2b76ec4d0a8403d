package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkm/casewatch/internal/client"
	"github.com/dkm/casewatch/internal/engine"
	"github.com/dkm/casewatch/internal/geo"
	"github.com/dkm/casewatch/internal/model"
	"github.com/dkm/casewatch/internal/ws"
)

// mockAPI implements client.APIClient for dashboard tests.
type mockAPI struct {
	PrioritizedFn func(ctx context.Context) ([]client.Soldier, error)
	NearbyFn      func(ctx context.Context, lat, lon, radiusKm float64) ([]client.NearbyResult, error)
	StartEvacFn   func(ctx context.Context, devEUI string) error
}

func (m *mockAPI) Login(ctx context.Context, u, p string) (*client.LoginResult, error) {
	return &client.LoginResult{Success: true, Username: u}, nil
}
func (m *mockAPI) Logout(ctx context.Context) error { return nil }
func (m *mockAPI) GetProfile(ctx context.Context) (*client.Profile, error) {
	return &client.Profile{}, nil
}
func (m *mockAPI) GetPrioritizedSoldiers(ctx context.Context) ([]client.Soldier, error) {
	if m.PrioritizedFn != nil {
		return m.PrioritizedFn(ctx)
	}
	return nil, nil
}
func (m *mockAPI) GetSoldier(ctx context.Context, devEUI string) (*client.Soldier, error) {
	return &client.Soldier{DevEUI: devEUI}, nil
}
func (m *mockAPI) GetMedicalHistory(ctx context.Context, devEUI string, days int) (*client.MedicalHistory, error) {
	return &client.MedicalHistory{}, nil
}
func (m *mockAPI) GetNearbySoldiers(ctx context.Context, lat, lon, radiusKm float64) ([]client.NearbyResult, error) {
	if m.NearbyFn != nil {
		return m.NearbyFn(ctx, lat, lon, radiusKm)
	}
	return nil, nil
}
func (m *mockAPI) GetCriticalVitals(ctx context.Context) ([]client.NearbyResult, error) {
	return nil, nil
}
func (m *mockAPI) StartEvacuation(ctx context.Context, devEUI string) error {
	if m.StartEvacFn != nil {
		return m.StartEvacFn(ctx, devEUI)
	}
	return nil
}
func (m *mockAPI) CompleteEvacuation(ctx context.Context, devEUI string) error { return nil }
func (m *mockAPI) CancelEvacuation(ctx context.Context, devEUI string) error   { return nil }
func (m *mockAPI) GetUnreadAlerts(ctx context.Context) ([]client.Alert, error) { return nil, nil }
func (m *mockAPI) MarkAlertRead(ctx context.Context, alertID int64) error      { return nil }
func (m *mockAPI) MarkAllAlertsRead(ctx context.Context) error                 { return nil }
func (m *mockAPI) BaseURL() string                                             { return "http://mock:8000" }

// fakePush records subscription calls.
type fakePush struct {
	mu          sync.Mutex
	subscribed  []string
	unsubcribed []string
}

func (f *fakePush) SubscribeSoldier(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, id)
}
func (f *fakePush) UnsubscribeSoldier(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubcribed = append(f.unsubcribed, id)
}
func (f *fakePush) State() ws.State        { return ws.StateOpen }
func (f *fakePush) ReconnectAttempts() int { return 0 }

func makeSoldier(devEUI string, lat, lon float64, issueType string, ts time.Time) client.Soldier {
	return client.Soldier{
		DevEUI:    devEUI,
		FirstName: "Name",
		LastName:  devEUI,
		LatestData: &client.MedicalData{
			Device:    devEUI,
			SpO2:      96,
			HeartRate: 78,
			Latitude:  lat,
			Longitude: lon,
			IssueType: issueType,
			Timestamp: ts,
		},
	}
}

func makeSnapshot(soldiers ...client.Soldier) *model.Snapshot {
	return &model.Snapshot{Soldiers: soldiers, FetchedAt: time.Now()}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestApp_SnapshotMsgUpdatesState(t *testing.T) {
	app := NewApp(&mockAPI{}, nil, 30*time.Second, nil)
	app.fetching = true

	snap := makeSnapshot(
		makeSoldier("dev-1", 49.84, 24.03, client.IssueBoth, time.Now()),
		makeSoldier("dev-2", 49.85, 24.04, client.IssueNormal, time.Now()),
	)
	newModel, _ := app.Update(SnapshotMsg{Snapshot: snap})
	app = newModel.(*App)

	assert.False(t, app.fetching)
	assert.Nil(t, app.fetchErr)
	assert.Equal(t, snap, app.snapshot)
	require.Len(t, app.rows, 2)
	assert.Equal(t, 1, app.summary.Critical)
	assert.Equal(t, 1, app.trend.Len())
	assert.True(t, app.framed)
}

func TestApp_ViewportSurvivesRefresh(t *testing.T) {
	app := NewApp(&mockAPI{}, nil, 30*time.Second, nil)

	newModel, _ := app.Update(SnapshotMsg{Snapshot: makeSnapshot(
		makeSoldier("dev-1", 49.84, 24.03, client.IssueNormal, time.Now()),
	)})
	app = newModel.(*App)
	framedView := app.mapgrid.View

	// Operator pans somewhere else; the next poll must not move the viewport.
	custom := geo.View{Center: geo.Point{Lat: 50.45, Lon: 30.52}, Zoom: 11}
	app.mapgrid.View = custom

	newModel, _ = app.Update(SnapshotMsg{Snapshot: makeSnapshot(
		makeSoldier("dev-1", 40.0, 20.0, client.IssueNormal, time.Now()),
		makeSoldier("dev-2", 41.0, 21.0, client.IssueNormal, time.Now()),
	)})
	app = newModel.(*App)

	assert.Equal(t, custom, app.mapgrid.View)
	assert.NotEqual(t, framedView, app.mapgrid.View)
}

func TestApp_MissingSelectionCleared(t *testing.T) {
	push := &fakePush{}
	app := NewApp(&mockAPI{}, push, 30*time.Second, nil)

	newModel, _ := app.Update(SnapshotMsg{Snapshot: makeSnapshot(
		makeSoldier("dev-1", 49.84, 24.03, client.IssueNormal, time.Now()),
	)})
	app = newModel.(*App)

	app.selectRow(&app.rows[0])
	require.Equal(t, "dev-1", app.activeID)
	app.mode = modeDetail
	app.detail.open("dev-1", "Name dev-1", push)

	// dev-1 is gone from the next poll.
	newModel, _ = app.Update(SnapshotMsg{Snapshot: makeSnapshot(
		makeSoldier("dev-2", 49.85, 24.04, client.IssueNormal, time.Now()),
	)})
	app = newModel.(*App)

	assert.Empty(t, app.activeID)
	assert.Equal(t, modeMain, app.mode)
	assert.False(t, app.detail.visible)
	assert.Contains(t, push.unsubcribed, "dev-1")
}

func TestApp_SelectionSurvivesWhenStillPresent(t *testing.T) {
	app := NewApp(&mockAPI{}, nil, 30*time.Second, nil)

	newModel, _ := app.Update(SnapshotMsg{Snapshot: makeSnapshot(
		makeSoldier("dev-1", 49.84, 24.03, client.IssueNormal, time.Now()),
	)})
	app = newModel.(*App)
	app.selectRow(&app.rows[0])

	newModel, _ = app.Update(SnapshotMsg{Snapshot: makeSnapshot(
		makeSoldier("dev-1", 49.84, 24.03, client.IssueNormal, time.Now()),
		makeSoldier("dev-2", 49.85, 24.04, client.IssueNormal, time.Now()),
	)})
	app = newModel.(*App)

	assert.Equal(t, "dev-1", app.activeID)
}

func TestApp_UnauthorizedIsFatal(t *testing.T) {
	app := NewApp(&mockAPI{}, nil, 30*time.Second, nil)
	app.fetching = true

	err := fmt.Errorf("GetPrioritizedSoldiers: %w", client.ErrUnauthorized)
	newModel, cmd := app.Update(FetchErrorMsg{Err: err})
	app = newModel.(*App)

	require.NotNil(t, app.FatalErr())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_TransientFetchErrorKeepsRunning(t *testing.T) {
	app := NewApp(&mockAPI{}, nil, 30*time.Second, nil)
	app.fetching = true

	newModel, cmd := app.Update(FetchErrorMsg{Err: fmt.Errorf("connection refused")})
	app = newModel.(*App)

	assert.Nil(t, cmd)
	assert.Nil(t, app.FatalErr())
	assert.Error(t, app.fetchErr)
	assert.False(t, app.fetching)
}

func TestApp_TickSkipsWhileFetching(t *testing.T) {
	app := NewApp(&mockAPI{}, nil, 30*time.Second, nil)

	app.fetching = true
	newModel, cmd := app.Update(TickMsg(time.Now()))
	app = newModel.(*App)

	// Still reschedules the ticker but must not start a second fetch.
	require.NotNil(t, cmd)
	assert.True(t, app.fetching)
}

func TestApp_PushMedicalMergeRecomputesRows(t *testing.T) {
	app := NewApp(&mockAPI{}, nil, 30*time.Second, nil)
	base := time.Now()

	newModel, _ := app.Update(SnapshotMsg{Snapshot: makeSnapshot(
		makeSoldier("dev-1", 49.84, 24.03, client.IssueNormal, base),
	)})
	app = newModel.(*App)
	require.Equal(t, 0, app.summary.Critical)

	newModel, _ = app.Update(PushMedicalMsg{Data: client.MedicalData{
		Device:    "dev-1",
		SpO2:      82,
		HeartRate: 135,
		IssueType: client.IssueBoth,
		Timestamp: base.Add(time.Second),
	}})
	app = newModel.(*App)

	assert.Equal(t, 1, app.summary.Critical)
	require.Len(t, app.rows, 1)
	assert.Equal(t, 82, app.rows[0].SpO2)
	assert.Equal(t, 1, app.rows[0].Priority)
}

func TestApp_StalePushEventIgnored(t *testing.T) {
	app := NewApp(&mockAPI{}, nil, 30*time.Second, nil)
	base := time.Now()

	newModel, _ := app.Update(SnapshotMsg{Snapshot: makeSnapshot(
		makeSoldier("dev-1", 49.84, 24.03, client.IssueNormal, base),
	)})
	app = newModel.(*App)

	newModel, _ = app.Update(PushMedicalMsg{Data: client.MedicalData{
		Device:    "dev-1",
		SpO2:      50,
		Timestamp: base.Add(-time.Minute),
	}})
	app = newModel.(*App)

	assert.Equal(t, 96, app.rows[0].SpO2)
}

func TestApp_PushEvacuationAndAlertMerge(t *testing.T) {
	app := NewApp(&mockAPI{}, nil, 30*time.Second, nil)

	newModel, _ := app.Update(SnapshotMsg{Snapshot: makeSnapshot(
		makeSoldier("dev-1", 49.84, 24.03, client.IssueNormal, time.Now()),
	)})
	app = newModel.(*App)

	newModel, _ = app.Update(PushEvacuationMsg{Event: engine.EvacuationEvent{
		SoldierID:  "dev-1",
		Evacuation: client.Evacuation{Status: client.EvacInProgress},
	}})
	app = newModel.(*App)
	assert.Equal(t, client.EvacInProgress, app.rows[0].EvacStatus)
	assert.Equal(t, 1, app.summary.EvacActive)

	newModel, _ = app.Update(PushAlertMsg{Alert: client.Alert{ID: 9, Message: "hit"}})
	app = newModel.(*App)
	assert.Equal(t, 1, app.summary.UnreadAlerts)
}

func TestApp_EvacSuccessTriggersImmediateRefresh(t *testing.T) {
	app := NewApp(&mockAPI{}, nil, 30*time.Second, nil)
	app.evac.open("dev-1", "Name dev-1", client.EvacNeeded)
	app.evac.pending = true

	newModel, cmd := app.Update(EvacResultMsg{DevEUI: "dev-1", Action: evacActionStart})
	app = newModel.(*App)

	require.NotNil(t, cmd)
	assert.True(t, app.fetching)
	assert.False(t, app.evac.visible)
}

func TestApp_PushStateTracked(t *testing.T) {
	app := NewApp(&mockAPI{}, &fakePush{}, 30*time.Second, nil)

	newModel, _ := app.Update(PushStateMsg{State: ws.StateOpen})
	app = newModel.(*App)
	assert.Equal(t, ws.StateOpen, app.pushState)
	assert.False(t, app.pushFailed)

	newModel, _ = app.Update(PushStateMsg{State: ws.StateDisconnected, Failed: true})
	app = newModel.(*App)
	assert.True(t, app.pushFailed)
}

func TestApp_DetailKeyOpensAndSubscribes(t *testing.T) {
	push := &fakePush{}
	app := NewApp(&mockAPI{}, push, 30*time.Second, nil)

	newModel, _ := app.Update(SnapshotMsg{Snapshot: makeSnapshot(
		makeSoldier("dev-1", 49.84, 24.03, client.IssueNormal, time.Now()),
	)})
	app = newModel.(*App)

	newModel, cmd := app.Update(keyMsg("d"))
	app = newModel.(*App)

	require.NotNil(t, cmd)
	assert.Equal(t, modeDetail, app.mode)
	assert.True(t, app.detail.visible)
	assert.Contains(t, push.subscribed, "dev-1")

	// Escape closes and unsubscribes.
	newModel, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app = newModel.(*App)
	assert.Equal(t, modeMain, app.mode)
	assert.Contains(t, push.unsubcribed, "dev-1")
}

func TestApp_StaleHistoryResponseDiscarded(t *testing.T) {
	push := &fakePush{}
	app := NewApp(&mockAPI{}, push, 30*time.Second, nil)

	nonce1 := app.detail.open("dev-1", "A", push)
	nonce2 := app.detail.open("dev-2", "B", push)
	require.NotEqual(t, nonce1, nonce2)

	hist := &client.MedicalHistory{Records: []client.MedicalData{{Device: "dev-1"}}}
	newModel, _ := app.Update(HistoryLoadedMsg{DevEUI: "dev-1", History: hist, Nonce: nonce1})
	app = newModel.(*App)

	// The response for the first soldier arrived after switching away.
	assert.True(t, app.detail.loading)
	assert.Nil(t, app.detail.history)

	newModel, _ = app.Update(HistoryLoadedMsg{
		DevEUI:  "dev-2",
		History: &client.MedicalHistory{},
		Nonce:   nonce2,
	})
	app = newModel.(*App)
	assert.False(t, app.detail.loading)
}

func TestApp_ViewRendersWithoutData(t *testing.T) {
	app := NewApp(&mockAPI{}, nil, 30*time.Second, nil)
	out := app.View()
	assert.Contains(t, out, "casewatch")
	assert.Contains(t, out, "no data yet")
}
