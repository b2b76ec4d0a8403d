package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/dkm/casewatch/internal/format"
	"github.com/dkm/casewatch/internal/model"
)

// SoldierTableModel is a sortable, paginated, searchable table of casualty rows.
type SoldierTableModel struct {
	tableModel
	allRows     []model.SoldierRow // unfiltered source data
	displayRows []model.SoldierRow // after filter + sort applied
}

// NewSoldierTable returns a SoldierTableModel with the 8-column layout.
// Default sort is unset: the backend already orders by triage priority.
func NewSoldierTable() SoldierTableModel {
	cols := []columnDef{
		{Title: "Name", Width: 22, SortDesc: false},
		{Title: "Unit", Width: 14, SortDesc: false},
		{Title: "Pri", Width: 5, SortDesc: false},
		{Title: "SpO2", Width: 6, SortDesc: false},
		{Title: "HR", Width: 6, SortDesc: true},
		{Title: "Evac", Width: 12, SortDesc: false},
		{Title: "Age", Width: 7, SortDesc: true},
		{Title: "Dist", Width: 9, SortDesc: false},
	}
	m := SoldierTableModel{
		tableModel: newTableModel(cols),
	}
	m.focused = true
	return m
}

// SetData applies the current search filter and sort to rows, storing the
// result as displayRows ready for rendering.
func (m *SoldierTableModel) SetData(rows []model.SoldierRow) {
	m.allRows = rows
	filtered := filterSoldierRows(m.allRows, m.search)
	m.displayRows = sortSoldierRows(filtered, m.sortCol, m.sortDesc)
	m.clampPage(len(m.displayRows))
	m.clampCursor(m.currentPageRowCount(len(m.displayRows)))
}

// Update handles keyboard events for sorting, pagination, cursor, and
// search, re-applying filter/sort when they change.
func (m SoldierTableModel) Update(msg tea.Msg) (SoldierTableModel, tea.Cmd) {
	prevSort := m.sortCol
	prevDesc := m.sortDesc
	prevSearch := m.search

	base, cmd := m.tableModel.Update(msg)
	m.tableModel = base

	if m.sortCol != prevSort || m.sortDesc != prevDesc || m.search != prevSearch {
		filtered := filterSoldierRows(m.allRows, m.search)
		m.displayRows = sortSoldierRows(filtered, m.sortCol, m.sortDesc)
	}
	m.clampPage(len(m.displayRows))
	m.clampCursor(m.currentPageRowCount(len(m.displayRows)))
	return m, cmd
}

// CursorRow returns the row under the cursor, or nil when the table is empty.
func (m *SoldierTableModel) CursorRow() *model.SoldierRow {
	allIdx := make([]int, len(m.displayRows))
	for i := range m.displayRows {
		allIdx[i] = i
	}
	pageIdx := currentPageIndices(allIdx, m.page, m.pageSize)
	if len(pageIdx) == 0 || m.cursor < 0 || m.cursor >= len(pageIdx) {
		return nil
	}
	return &m.displayRows[pageIdx[m.cursor]]
}

// renderTable renders the "Casualties" section: a title bar with hints
// followed by the table body for the current page.
func (m *SoldierTableModel) renderTable(app *App) string {
	pc := pageCount(len(m.displayRows), m.pageSize)
	hdr := m.renderTitle("Casualties", m.page+1, pc)

	headers := make([]string, len(m.columns))
	for i, c := range m.columns {
		if i == m.sortCol {
			arrow := "↓"
			if !m.sortDesc {
				arrow = "↑"
			}
			headers[i] = c.Title + arrow
		} else {
			headers[i] = c.Title
		}
	}

	allIdx := make([]int, len(m.displayRows))
	for i := range m.displayRows {
		allIdx[i] = i
	}
	pageIdx := currentPageIndices(allIdx, m.page, m.pageSize)

	if len(pageIdx) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, hdr, StyleDim.Render("  (no casualties tracked)"))
	}

	sortCol := m.sortCol
	focused := m.focused
	cursor := m.cursor
	activeID := ""
	if app != nil {
		activeID = app.activeID
	}
	rowIDs := make([]string, 0, len(pageIdx))
	for _, idx := range pageIdx {
		rowIDs = append(rowIDs, m.displayRows[idx].DevEUI)
	}
	priorities := make([]int, 0, len(pageIdx))
	for _, idx := range pageIdx {
		priorities = append(priorities, m.displayRows[idx].Priority)
	}

	t := ltable.New().
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				if col == sortCol {
					return lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
				}
				return lipgloss.NewStyle().Bold(true).Foreground(colorGray)
			}
			base := lipgloss.NewStyle()
			if focused && row == cursor {
				base = base.Background(colorSelectedBg)
			} else if row >= 0 && row < len(rowIDs) && rowIDs[row] == activeID && activeID != "" {
				base = base.Background(colorAlt)
			}
			switch col {
			case 2:
				if row >= 0 && row < len(priorities) {
					return base.Foreground(priorityColor(priorities[row]))
				}
				return base.Foreground(colorWhite)
			case 3:
				return base.Foreground(colorCyan)
			case 4:
				return base.Foreground(colorPurple)
			case 5:
				return base.Foreground(colorBlue)
			case 6:
				return base.Foreground(colorGray)
			case 7:
				return base.Foreground(colorOrange)
			default:
				return base.Foreground(colorWhite)
			}
		}).
		BorderStyle(lipgloss.NewStyle().Foreground(colorGray)).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderColumn(false)

	if app != nil && app.width > 0 {
		t = t.Width(app.width)
	}

	for _, idx := range pageIdx {
		r := m.displayRows[idx]
		cells := make([]string, len(m.columns))
		for col := range m.columns {
			cells[col] = soldierCellValue(r, col)
		}
		cells[0] = truncateName(cells[0], m.columns[0].Width)
		t = t.Row(cells...)
	}

	// Detail line: full name, device id, and coordinates of the cursor row.
	var detailLine string
	if m.focused && m.cursor >= 0 && m.cursor < len(pageIdx) {
		r := m.displayRows[pageIdx[m.cursor]]
		pos := "no fix"
		if r.HasPos {
			pos = format.FormatCoord(r.Lat, r.Lon)
		}
		detailLine = StyleDim.Render("  " + sanitize(r.Name) + "  " + sanitize(r.DevEUI) + "  " + pos)
	}
	if detailLine != "" {
		return lipgloss.JoinVertical(lipgloss.Left, hdr, t.String(), detailLine)
	}
	return lipgloss.JoinVertical(lipgloss.Left, hdr, t.String())
}

// renderTitle renders the section title bar with search/sort/page hints.
func (m *SoldierTableModel) renderTitle(title string, page, pageCount int) string {
	pageInfo := fmt.Sprintf("Page %d/%d", page, pageCount)

	var right string
	switch {
	case m.searching:
		right = "Filter: " + m.input.View()
	case m.search != "":
		right = fmt.Sprintf("filter=%q  %s", m.search, pageInfo)
	default:
		right = fmt.Sprintf("[/: filter]  [1-8: sort]  [←→: page]  %s", pageInfo)
	}

	return StyleDim.Render(title + "  " + right)
}

// soldierCellValue formats a SoldierRow field for a given column index.
func soldierCellValue(r model.SoldierRow, col int) string {
	switch col {
	case 0:
		return sanitize(r.Name)
	case 1:
		return sanitize(r.Unit)
	case 2:
		return priorityLabel(r.Priority)
	case 3:
		return format.FormatSpO2(r.SpO2)
	case 4:
		return format.FormatVital(r.HeartRate)
	case 5:
		return evacLabel(r.EvacStatus)
	case 6:
		return format.FormatAge(r.DataAge)
	case 7:
		return format.FormatDistance(r.DistanceKm)
	default:
		return ""
	}
}

// priorityLabel maps a triage priority to its display label.
func priorityLabel(p int) string {
	switch p {
	case 1:
		return "P1"
	case 2:
		return "P2"
	case 3:
		return "P3"
	case 4:
		return "P4"
	default:
		return "---"
	}
}

// priorityColor maps a triage priority to its cell color.
func priorityColor(p int) lipgloss.Color {
	switch p {
	case 1:
		return colorRed
	case 2:
		return colorOrange
	case 3:
		return colorYellow
	case 4:
		return colorGreen
	default:
		return colorGray
	}
}

// evacLabel maps an evacuation status to a short display label.
func evacLabel(status string) string {
	switch status {
	case "NEEDED":
		return "needed"
	case "IN_PROGRESS":
		return "en route"
	case "EVACUATED":
		return "done"
	default:
		return "-"
	}
}

// sanitize strips control characters that would corrupt terminal output.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// truncateName truncates s to width runes, appending "…" when cut.
func truncateName(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
