// Package tui implements the terminal dashboard: a polled casualty table,
// an ASCII position map, per-soldier drill-down, evacuation actions, alerts,
// and the nearby-search workflow, reconciled with push events between polls.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/dkm/casewatch/internal/client"
	"github.com/dkm/casewatch/internal/engine"
	"github.com/dkm/casewatch/internal/geo"
	"github.com/dkm/casewatch/internal/model"
	"github.com/dkm/casewatch/internal/ws"
)

// PushLink is the surface of the push client the dashboard uses directly.
// Nil when running in polling-only mode.
type PushLink interface {
	PushControl
	State() ws.State
	ReconnectAttempts() int
}

// viewMode selects which panel owns the keyboard below the table.
type viewMode int

const (
	modeMain viewMode = iota
	modeDetail
	modeAlerts
)

const requestTimeout = 10 * time.Second

// App is the root model. All mutable dashboard state lives here; push events
// and poll results are reconciled into one snapshot and every derived view
// (rows, summary, advisories, map markers) is recomputed from it.
type App struct {
	api      client.APIClient
	push     PushLink
	interval time.Duration
	log      *zap.Logger

	snapshot   *model.Snapshot
	rows       []model.SoldierRow
	summary    model.SummaryCounts
	advisories []model.Advisory
	trend      *model.TrendHistory

	table       SoldierTableModel
	mapgrid     MapGridModel
	search      searchModel
	detail      detailModel
	evac        evacModel
	alertsPanel alertsModel

	activeID string
	// framed is set after the first snapshot centers the map. Later polls
	// leave the viewport alone so the operator's framing survives refreshes.
	framed bool

	mode           viewMode
	showHelp       bool
	showAdvisories bool

	fetching bool
	fetchErr error
	fatalErr error

	pushState    ws.State
	pushFailed   bool
	pushAttempts int

	width  int
	height int
}

// NewApp builds the dashboard. push may be nil for polling-only operation.
func NewApp(api client.APIClient, push PushLink, interval time.Duration, log *zap.Logger) *App {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		api:      api,
		push:     push,
		interval: interval,
		log:      log,
		trend:    model.NewTrendHistory(0),
		table:    NewSoldierTable(),
		mapgrid:  NewMapGrid(),
		search:   newSearchModel(),
	}
}

// FatalErr returns the error that terminated the dashboard, if any.
func (a *App) FatalErr() error { return a.fatalErr }

// Init starts the first poll and the poll ticker.
func (a *App) Init() tea.Cmd {
	a.fetching = true
	return tea.Batch(a.fetchCmd(), a.tickCmd())
}

// tickCmd schedules the next poll at the fixed interval.
func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(a.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// fetchCmd fetches a snapshot in the background.
func (a *App) fetchCmd() tea.Cmd {
	api := a.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		snap, err := engine.FetchSnapshot(ctx, api)
		if err != nil {
			return FetchErrorMsg{Err: err}
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

// nearbyCmd runs a nearby-radius query tagged with the workflow nonce.
func (a *App) nearbyCmd(p geo.Point, radiusKm float64, nonce int) tea.Cmd {
	api := a.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		results, err := api.GetNearbySoldiers(ctx, p.Lat, p.Lon, radiusKm)
		return NearbyResultMsg{Results: results, Err: err, Nonce: nonce}
	}
}

// historyCmd loads a soldier's medical history for the detail view.
func (a *App) historyCmd(devEUI string, nonce int) tea.Cmd {
	api := a.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		hist, err := api.GetMedicalHistory(ctx, devEUI, 1)
		return HistoryLoadedMsg{DevEUI: devEUI, History: hist, Err: err, Nonce: nonce}
	}
}

// evacCmd dispatches an evacuation action.
func (a *App) evacCmd(devEUI, action string) tea.Cmd {
	api := a.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var err error
		switch action {
		case evacActionStart:
			err = api.StartEvacuation(ctx, devEUI)
		case evacActionComplete:
			err = api.CompleteEvacuation(ctx, devEUI)
		case evacActionCancel:
			err = api.CancelEvacuation(ctx, devEUI)
		}
		return EvacResultMsg{DevEUI: devEUI, Action: action, Err: err}
	}
}

// markReadCmd marks one alert (or all, id -1) as read.
func (a *App) markReadCmd(id int64) tea.Cmd {
	api := a.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var err error
		if id < 0 {
			err = api.MarkAllAlertsRead(ctx)
		} else {
			err = api.MarkAlertRead(ctx, id)
		}
		return AlertReadMsg{ID: id, Err: err}
	}
}

// refreshDerived recomputes every view derived from the snapshot. Called
// after a poll lands and after each push merge.
func (a *App) refreshDerived() {
	now := time.Now()
	a.rows = engine.CalcSoldierRows(a.snapshot, a.activeID, now)
	a.summary = engine.CalcSummary(a.snapshot)
	a.advisories = engine.CalcAdvisories(a.snapshot, now)
	a.table.SetData(a.rows)

	var unread []client.Alert
	if a.snapshot != nil {
		for _, al := range a.snapshot.Alerts {
			if !al.IsRead {
				unread = append(unread, al)
			}
		}
	}
	a.alertsPanel.SetData(unread)
}

// applySnapshot reconciles a fresh poll: clear a selection that vanished,
// recompute derived state, record the trend sample, and frame the map once.
func (a *App) applySnapshot(snap *model.Snapshot) {
	a.snapshot = snap

	if a.activeID != "" && snap.Find(a.activeID) == nil {
		a.log.Info("selected casualty left the snapshot", zap.String("devEui", a.activeID))
		a.clearSelection()
	}

	a.refreshDerived()
	a.trend.Push(model.TrendPoint{
		Timestamp: snap.FetchedAt,
		Critical:  float64(a.summary.Critical),
		Tracked:   float64(a.summary.Total),
	})

	if !a.framed {
		a.mapgrid.Recenter(engine.ValidPositions(snap.Soldiers))
		a.framed = true
	}
}

// clearSelection unsets the active soldier and closes the detail view.
func (a *App) clearSelection() {
	a.activeID = ""
	if a.mode == modeDetail {
		a.mode = modeMain
	}
	a.detail.close(a.push)
}

// selectRow makes the row the active selection and focuses the map on it.
func (a *App) selectRow(r *model.SoldierRow) {
	a.activeID = r.DevEUI
	if r.HasPos {
		a.mapgrid.Focus(geo.Point{Lat: r.Lat, Lon: r.Lon})
	}
	a.refreshDerived()
}

// Update is the bubbletea reducer.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mapgrid.SetSize(msg.Width-4, msg.Height/3)
		return a, nil

	case TickMsg:
		cmds := []tea.Cmd{a.tickCmd()}
		if !a.fetching {
			a.fetching = true
			cmds = append(cmds, a.fetchCmd())
		}
		return a, tea.Batch(cmds...)

	case SnapshotMsg:
		a.fetching = false
		a.fetchErr = nil
		a.applySnapshot(msg.Snapshot)
		return a, nil

	case FetchErrorMsg:
		a.fetching = false
		if errors.Is(msg.Err, client.ErrUnauthorized) {
			a.fatalErr = msg.Err
			return a, tea.Quit
		}
		a.log.Warn("poll failed", zap.Error(msg.Err))
		a.fetchErr = msg.Err
		return a, nil

	case PushMedicalMsg:
		if engine.MergeMedical(a.snapshot, msg.Data) {
			a.refreshDerived()
		}
		return a, nil

	case PushEvacuationMsg:
		if engine.MergeEvacuation(a.snapshot, msg.Event) {
			a.refreshDerived()
		}
		return a, nil

	case PushAlertMsg:
		if engine.MergeAlert(a.snapshot, msg.Alert) {
			a.refreshDerived()
		}
		return a, nil

	case PushStateMsg:
		a.pushState = msg.State
		if msg.Failed {
			a.pushFailed = true
		}
		if a.push != nil {
			a.pushAttempts = a.push.ReconnectAttempts()
		}
		return a, nil

	case NearbyResultMsg:
		a.search = a.search.applyResult(msg)
		a.syncSearchOverlay()
		return a, nil

	case HistoryLoadedMsg:
		a.detail = a.detail.applyHistory(msg)
		return a, nil

	case EvacResultMsg:
		a.evac = a.evac.applyResult(msg)
		if msg.Err == nil && !a.fetching {
			// Refresh immediately so the table reflects the new status.
			a.fetching = true
			return a, a.fetchCmd()
		}
		return a, nil

	case AlertReadMsg:
		a.alertsPanel = a.alertsPanel.applyResult(msg)
		if msg.Err == nil && !a.fetching {
			a.fetching = true
			return a, a.fetchCmd()
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

// handleKey routes keyboard input to whichever panel owns it.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The filter input swallows everything except its own terminators.
	if a.table.searching && a.mode == modeMain && !a.evac.visible && !a.search.active() {
		var cmd tea.Cmd
		a.table, cmd = a.table.Update(msg)
		return a, cmd
	}

	if key.Matches(msg, keys.Quit) {
		return a, tea.Quit
	}

	if a.evac.visible {
		var action string
		a.evac, action = a.evac.Update(msg)
		if action != "" {
			return a, a.evacCmd(a.evac.devEUI, action)
		}
		return a, nil
	}

	if a.search.active() {
		var start bool
		a.search, start = a.search.Update(msg)
		a.syncSearchOverlay()
		if start {
			p, radius, nonce := a.search.Query()
			return a, a.nearbyCmd(p, radius, nonce)
		}
		return a, nil
	}

	switch a.mode {
	case modeDetail:
		if key.Matches(msg, keys.Escape) {
			a.mode = modeMain
			a.detail.close(a.push)
			return a, nil
		}
		return a, nil

	case modeAlerts:
		if key.Matches(msg, keys.Escape) {
			a.mode = modeMain
			return a, nil
		}
		var markID int64
		a.alertsPanel, markID = a.alertsPanel.Update(msg)
		if markID != 0 {
			return a, a.markReadCmd(markID)
		}
		return a, nil
	}

	// Main mode.
	switch {
	case key.Matches(msg, keys.Refresh):
		if !a.fetching {
			a.fetching = true
			return a, a.fetchCmd()
		}
		return a, nil

	case key.Matches(msg, keys.Help):
		a.showHelp = !a.showHelp
		return a, nil

	case key.Matches(msg, keys.Advisory):
		a.showAdvisories = !a.showAdvisories
		return a, nil

	case key.Matches(msg, keys.Nearby):
		a.search.begin(a.mapgrid.View.Center, a.mapgrid.View.Zoom)
		a.syncSearchOverlay()
		return a, nil

	case key.Matches(msg, keys.Enter):
		if r := a.table.CursorRow(); r != nil {
			a.selectRow(r)
		}
		return a, nil

	case key.Matches(msg, keys.Escape):
		if a.activeID != "" {
			a.clearSelection()
			a.refreshDerived()
			if a.snapshot != nil {
				a.mapgrid.Recenter(engine.ValidPositions(a.snapshot.Soldiers))
			}
		}
		return a, nil

	case key.Matches(msg, keys.Detail):
		if r := a.table.CursorRow(); r != nil {
			a.selectRow(r)
			a.mode = modeDetail
			nonce := a.detail.open(r.DevEUI, r.Name, a.push)
			return a, a.historyCmd(r.DevEUI, nonce)
		}
		return a, nil

	case key.Matches(msg, keys.Evacuate):
		if r := a.table.CursorRow(); r != nil {
			a.evac.open(r.DevEUI, r.Name, r.EvacStatus)
		}
		return a, nil

	case key.Matches(msg, keys.Alerts):
		a.mode = modeAlerts
		return a, nil
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

// syncSearchOverlay copies the workflow's point and crosshair onto the map.
func (a *App) syncSearchOverlay() {
	a.mapgrid.SearchPoint = a.search.overlayPoint()
	a.mapgrid.SearchCursor = a.search.overlayCursor()
	if a.search.active() {
		a.mapgrid.RadiusKm = a.search.radiusKm
	} else {
		a.mapgrid.RadiusKm = 0
	}
}

// renderAdvisories draws the triage advisory list.
func (a *App) renderAdvisories() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorYellow).Render("Advisories")
	lines := []string{title}
	if len(a.advisories) == 0 {
		lines = append(lines, StyleDim.Render("  all clear"))
	}
	for _, adv := range a.advisories {
		style := StyleYellow
		if adv.Severity == model.SeverityCritical {
			style = StyleRed
		}
		lines = append(lines, "  "+style.Render(adv.Title))
		if adv.Detail != "" {
			lines = append(lines, "    "+StyleDim.Render(adv.Detail))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// View renders the whole dashboard.
func (a *App) View() string {
	var fetchedAt time.Time
	if a.snapshot != nil {
		fetchedAt = a.snapshot.FetchedAt
	}
	baseURL := ""
	if a.api != nil {
		baseURL = a.api.BaseURL()
	}

	sections := []string{
		renderHeader(baseURL, a.pushState, a.pushFailed, a.pushAttempts, fetchedAt, a.fetching, a.width),
		renderOverview(a.summary, a.trend),
	}

	switch a.mode {
	case modeDetail:
		var row *model.SoldierRow
		for i := range a.rows {
			if a.rows[i].DevEUI == a.detail.devEUI {
				row = &a.rows[i]
				break
			}
		}
		sections = append(sections, a.detail.render(row))

	case modeAlerts:
		sections = append(sections, a.alertsPanel.render())

	default:
		sections = append(sections, a.mapgrid.Render(a.rows, a.activeID))
		if a.search.active() {
			sections = append(sections, a.search.render())
		}
		if a.showAdvisories {
			sections = append(sections, a.renderAdvisories())
		}
		sections = append(sections, a.table.renderTable(a))
	}

	if a.evac.visible {
		sections = append(sections, a.evac.render())
	}

	sections = append(sections, renderFooter(a.fetchErr, a.showHelp))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
