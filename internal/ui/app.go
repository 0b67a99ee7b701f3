package ui

import (
	"context"
	"fmt"
	"strings"

	"grubmap/internal/model"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the root Bubble Tea model.
type Model struct {
	deps   Deps
	screen model.Screen
	mode   model.Mode

	width  int
	height int

	error       string
	info        string
	showingHelp bool

	// Screen models
	explore          *ExploreModel
	recent           *RecentModel
	restaurantDetail *RestaurantDetailModel
	restaurantForm   *RestaurantFormModel
	formReturn       model.Screen

	keys      KeyMap
	prefsPath string
	prefs     UIPreferences
}

// New creates a new root model.
func New(deps Deps) Model {
	prefsPath := resolvePrefsPath(deps.PrefsPath)
	prefs := loadUIPreferences(prefsPath)
	return Model{
		deps:      deps,
		screen:    model.ScreenExplore,
		mode:      model.ModeNav,
		explore:   NewExploreModel(deps, prefs.Explore),
		recent:    NewRecentModel(deps, prefs.Recent),
		keys:      DefaultKeyMap(),
		prefsPath: prefsPath,
		prefs:     prefs,
	}
}

// Init loads the first page, starts locating the user and loads history.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.explore.Init(),
		acquireLocationCmd(m.deps),
		loadRecentCmd(m.deps),
	)
}

// acquireLocationCmd issues the one shared location request.
func acquireLocationCmd(deps Deps) tea.Cmd {
	if deps.Location == nil {
		return nil
	}
	src := deps.Location
	log := deps.logger()
	return func() tea.Msg {
		st := src.Acquire(context.Background())
		if st.Err != "" {
			log.Info("location unavailable", "reason", st.Err)
		}
		return model.LocationSettledMsg{}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.screen == model.ScreenRestaurantForm && m.restaurantForm != nil {
			form, cmd := m.restaurantForm.Update(msg)
			m.restaurantForm = &form
			return m, cmd
		}
		return m, nil

	case model.ErrorMsg:
		m.error = msg.Err.Error()
		return m, nil

	case model.RecentViewsLoadedMsg:
		m.recent.SetRows(msg.Views)
		return m, nil

	case openDetailMsg:
		m.restaurantDetail = NewRestaurantDetailModel(m.deps, msg.id, msg.from)
		m.screen = model.ScreenRestaurantDetail
		m.error = ""
		return m, m.restaurantDetail.Init()

	case model.RestaurantSavedMsg:
		m.info = fmt.Sprintf("Added %s", msg.Restaurant.Name)
		m.error = ""
		return m, m.explore.Refresh()

	case model.FormCancelledMsg:
		m.mode = model.ModeNav
		m.restaurantForm = nil
		m.screen = m.formReturn
		return m, nil
	}

	return m.forward(msg)
}

// forward hands a message to every live screen. Each ignores what it does
// not own.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	explore, cmd := m.explore.Update(msg)
	m.explore = &explore
	cmds = append(cmds, cmd)

	if m.restaurantDetail != nil {
		detail, cmd := m.restaurantDetail.Update(msg)
		m.restaurantDetail = &detail
		cmds = append(cmds, cmd)
	}
	if m.restaurantForm != nil {
		form, cmd := m.restaurantForm.Update(msg)
		m.restaurantForm = &form
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) isTab() bool {
	return m.screen == model.ScreenExplore || m.screen == model.ScreenRecent
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// The form and the search box own the keyboard while focused.
	if m.screen == model.ScreenRestaurantForm && m.restaurantForm != nil {
		form, cmd := m.restaurantForm.Update(msg)
		m.restaurantForm = &form
		return m, cmd
	}
	if m.screen == model.ScreenExplore && m.explore.Editing() {
		explore, cmd := m.explore.Update(msg)
		m.explore = &explore
		return m, cmd
	}

	if key.Matches(msg, m.keys.Help) {
		m.showingHelp = !m.showingHelp
		return m, nil
	}
	if m.showingHelp {
		if msg.String() == "esc" {
			m.showingHelp = false
		}
		return m, nil
	}

	if m.isTab() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Explore):
			m.switchTab(model.ScreenExplore)
			return m, nil
		case key.Matches(msg, m.keys.Recent):
			m.switchTab(model.ScreenRecent)
			return m, nil
		case key.Matches(msg, m.keys.NextTab), key.Matches(msg, m.keys.PrevTab):
			if m.screen == model.ScreenExplore {
				m.switchTab(model.ScreenRecent)
			} else {
				m.switchTab(model.ScreenExplore)
			}
			return m, nil
		case key.Matches(msg, m.keys.Add):
			m.openForm()
			return m, nil
		}
	}

	if t := m.currentTable(); t != nil {
		switch {
		case key.Matches(msg, m.keys.NextColumn):
			t.NextColumn()
			m.persistCurrentTablePrefs()
			return m, nil
		case key.Matches(msg, m.keys.PrevColumn):
			t.PrevColumn()
			m.persistCurrentTablePrefs()
			return m, nil
		case key.Matches(msg, m.keys.HideColumn):
			if t.HideActiveColumn() {
				m.info = "Column hidden"
				m.persistCurrentTablePrefs()
			} else {
				m.info = "Cannot hide last visible column"
			}
			return m, nil
		case key.Matches(msg, m.keys.ShowColumns):
			t.ShowAllColumns()
			m.info = "All columns shown"
			m.persistCurrentTablePrefs()
			return m, nil
		}
	}

	switch m.screen {
	case model.ScreenExplore:
		explore, cmd := m.explore.Update(msg)
		m.explore = &explore
		return m, cmd
	case model.ScreenRecent:
		return m, m.recent.Update(msg)
	case model.ScreenRestaurantDetail:
		return m.handleRestaurantDetailNav(msg)
	}
	return m, nil
}

func (m Model) handleRestaurantDetailNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.restaurantDetail == nil {
		m.screen = model.ScreenExplore
		return m, nil
	}
	if key.Matches(msg, m.keys.Back) {
		m.screen = m.restaurantDetail.From()
		m.restaurantDetail = nil
		return m, nil
	}
	detail, cmd := m.restaurantDetail.Update(msg)
	m.restaurantDetail = &detail
	return m, cmd
}

func (m *Model) switchTab(screen model.Screen) {
	m.screen = screen
	m.info = ""
	m.error = ""
}

func (m *Model) openForm() {
	m.restaurantForm = NewRestaurantFormModel(m.deps)
	m.formReturn = m.screen
	m.screen = model.ScreenRestaurantForm
	m.mode = model.ModeInsert
	m.info = ""
}

func (m *Model) currentTable() tableController {
	switch m.screen {
	case model.ScreenExplore:
		return m.explore
	case model.ScreenRecent:
		return m.recent
	}
	return nil
}

func (m *Model) persistCurrentTablePrefs() {
	switch m.screen {
	case model.ScreenExplore:
		m.prefs.Explore = m.explore.Prefs()
	case model.ScreenRecent:
		m.prefs.Recent = m.recent.Prefs()
	}
	if err := saveUIPreferences(m.prefsPath, m.prefs); err != nil {
		m.deps.logger().Warn("save ui preferences", "err", err)
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	// The map picker draws full screen so its grid sits at a fixed offset.
	if m.screen == model.ScreenRestaurantForm && m.restaurantForm != nil && m.restaurantForm.PickerOpen() {
		return m.restaurantForm.View(m.width, m.height)
	}

	showTabs := m.isTab()

	contentHeight := m.height - 4
	if showTabs {
		contentHeight -= 2
	}
	if m.error != "" {
		contentHeight--
	}
	if m.info != "" {
		contentHeight--
	}

	var content string
	var breadcrumbParts []string
	switch m.screen {
	case model.ScreenExplore:
		breadcrumbParts = []string{"Explore"}
		content = m.explore.View(m.width, contentHeight)
	case model.ScreenRecent:
		breadcrumbParts = []string{"Recent"}
		content = m.recent.View(m.width, contentHeight)
	case model.ScreenRestaurantDetail:
		if m.restaurantDetail != nil {
			breadcrumbParts = []string{tabName(m.restaurantDetail.From()), m.restaurantDetail.Title()}
			content = m.restaurantDetail.View(m.width, contentHeight)
		}
	case model.ScreenRestaurantForm:
		breadcrumbParts = []string{tabName(m.formReturn), "Add Restaurant"}
		if m.restaurantForm != nil {
			content = m.restaurantForm.View(m.width, contentHeight)
		}
	}

	header := renderHeader(breadcrumbParts, m.locationLabel(), m.width)
	footer := RenderHelp(m.screen, m.mode, m.width)
	if m.screen == model.ScreenExplore && m.explore.Editing() {
		footer = renderSearchHelp(m.width)
	}

	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	parts := []string{header}
	if showTabs {
		parts = append(parts, renderTabs(m.screen, m.width))
	}
	if m.error != "" {
		parts = append(parts, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		parts = append(parts, SuccessStyle.Width(m.width).Render(m.info))
	}
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) locationLabel() string {
	st := m.deps.location()
	switch {
	case st.Coords != nil:
		return fmt.Sprintf("near %.3f, %.3f", st.Coords.Latitude, st.Coords.Longitude)
	case st.Loading:
		return "locating..."
	default:
		return "location off"
	}
}

func tabName(screen model.Screen) string {
	if screen == model.ScreenRecent {
		return "Recent"
	}
	return "Explore"
}

func renderTabs(screen model.Screen, width int) string {
	tabs := []struct {
		name   string
		screen model.Screen
	}{
		{"Explore", model.ScreenExplore},
		{"Recent", model.ScreenRecent},
	}

	var tabStrings []string
	for _, tab := range tabs {
		tabStyle := lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorMuted)

		if screen == tab.screen {
			tabStyle = tabStyle.
				Foreground(ColorText).
				Bold(true).
				Underline(true)
		}

		tabStrings = append(tabStrings, tabStyle.Render(tab.name))
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Left, tabStrings...)
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		Render(tabBar)
}

func renderHeader(breadcrumbParts []string, status string, width int) string {
	title := HeaderStyle.Render("grubmap")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb
	right := BreadcrumbStyle.Render(status) + "  "

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	headerContent := left + strings.Repeat(" ", padding) + right
	return TitleStyle.Width(width).Render(headerContent)
}
