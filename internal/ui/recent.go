package ui

import (
	"fmt"
	"strings"
	"time"

	"grubmap/internal/db"
	"grubmap/internal/geo"
	"grubmap/internal/model"
	"grubmap/internal/util"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const recentLimit = 50

// RecentModel lists restaurants the user has opened, newest first.
type RecentModel struct {
	columnSet

	deps   Deps
	keys   KeyMap
	rows   []model.RecentView
	cursor int
	offset int
}

// NewRecentModel creates the recently viewed screen.
func NewRecentModel(deps Deps, prefs TablePrefs) *RecentModel {
	m := &RecentModel{
		columnSet: columnSet{columns: []tableColumn{
			{key: "name", label: "name", width: 24},
			{key: "cuisine", label: "cuisine", width: 10},
			{key: "price", label: "price", width: 6},
			{key: "distance", label: "distance", width: 16},
			{key: "viewed", label: "viewed", width: 14},
		}},
		deps: deps,
		keys: DefaultKeyMap(),
	}
	m.applyPrefs(prefs)
	return m
}

// SetRows replaces the list, keeping the cursor in range.
func (m *RecentModel) SetRows(rows []model.RecentView) {
	m.rows = rows
	if m.cursor >= len(rows) {
		m.cursor = max(0, len(rows)-1)
	}
}

// Update handles recent screen keys.
func (m *RecentModel) Update(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Select):
		if m.cursor < len(m.rows) {
			return openDetailCmd(m.rows[m.cursor].RestaurantID, model.ScreenRecent)
		}
	case key.Matches(msg, m.keys.ClearRecent):
		if len(m.rows) == 0 {
			return nil
		}
		return clearRecentCmd(m.deps)
	}
	return nil
}

func loadRecentCmd(deps Deps) tea.Cmd {
	if deps.DB == nil {
		return nil
	}
	return func() tea.Msg {
		views, err := db.ListRecentViews(deps.DB, recentLimit)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.RecentViewsLoadedMsg{Views: views}
	}
}

// recordViewCmd remembers r as viewed now and reloads the list.
func recordViewCmd(deps Deps, r model.Restaurant) tea.Cmd {
	return func() tea.Msg {
		if err := db.RecordView(deps.DB, r, time.Now()); err != nil {
			deps.logger().Warn("record view", "id", r.ID, "err", err)
			return nil
		}
		views, err := db.ListRecentViews(deps.DB, recentLimit)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.RecentViewsLoadedMsg{Views: views}
	}
}

func clearRecentCmd(deps Deps) tea.Cmd {
	if deps.DB == nil {
		return nil
	}
	return func() tea.Msg {
		if err := db.ClearRecentViews(deps.DB); err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.RecentViewsLoadedMsg{}
	}
}

func (m *RecentModel) cell(v model.RecentView, col tableColumn, now time.Time) string {
	switch col.key {
	case "name":
		return util.TruncateString(v.Name, col.width)
	case "cuisine":
		return string(v.Cuisine)
	case "price":
		return string(v.PriceRange)
	case "distance":
		st := m.deps.location()
		if st.Coords == nil {
			return "—"
		}
		return util.FormatDistance(geo.Distance(st.Coords.Latitude, st.Coords.Longitude, v.Latitude, v.Longitude))
	case "viewed":
		return util.FormatDateHuman(v.ViewedAt, now)
	}
	return ""
}

// View renders the recently viewed list.
func (m *RecentModel) View(width, height int) string {
	if m.deps.DB == nil {
		return EmptyStateStyle.Width(width).Height(height).Render("History is unavailable without a local database.")
	}
	if len(m.rows) == 0 {
		return EmptyStateStyle.Width(width).Height(height).Render(`    Nothing viewed yet.
    Open a restaurant from Explore and it will show up here.`)
	}

	visible, headers, widths := m.layout(width)
	header := renderTableRow(headers, widths, TableHeaderStyle.Bold(true))
	divider := renderTableDivider(widths)

	visibleHeight := max(1, height-3)
	m.offset = scrollWindow(m.cursor, m.offset, visibleHeight, len(m.rows))

	now := time.Now()
	var rows []string
	for i := m.offset; i < len(m.rows) && i < m.offset+visibleHeight; i++ {
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}
		cells := make([]string, 0, len(visible))
		for _, idx := range visible {
			cells = append(cells, m.cell(m.rows[i], m.columns[idx], now))
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, header, divider, strings.Join(rows, "\n"))
	status := StatusBarStyle.Render(fmt.Sprintf("%d viewed  ·  row %d/%d", len(m.rows), m.cursor+1, len(m.rows)))
	spacer := lipgloss.NewStyle().Height(max(0, height-lipgloss.Height(content)-1)).Render("")
	return lipgloss.JoinVertical(lipgloss.Left, content, spacer, status)
}
