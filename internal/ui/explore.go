package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"grubmap/internal/geo"
	"grubmap/internal/model"
	"grubmap/internal/util"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	exploreDebounce = 300 * time.Millisecond

	msgExploreFailed = "Failed to load restaurants. Please try again later."
)

type fetchStatus int

const (
	statusIdle fetchStatus = iota
	statusLoading
	statusSuccess
	statusError
)

// exploreDebounceMsg fires when a filter change has been quiet long enough.
type exploreDebounceMsg struct {
	seq int
}

// ExploreModel is the paginated, filterable restaurant list.
type ExploreModel struct {
	columnSet

	deps Deps
	keys KeyMap

	search  textinput.Model
	editing bool
	cuisine int // index into model.Cuisines, offset by one; 0 is any
	price   int
	page    int

	// seq identifies the latest filter state. Debounce ticks and responses
	// carrying an older value are ignored.
	seq    int
	status fetchStatus
	err    string

	rows   []model.Restaurant
	meta   model.PageMeta
	cursor int
	offset int

	paginator paginator.Model
	spinner   spinner.Model
}

// NewExploreModel creates the explore screen. The first fetch is issued by Init.
func NewExploreModel(deps Deps, prefs TablePrefs) *ExploreModel {
	ti := textinput.New()
	ti.Placeholder = "Search by name..."
	ti.CharLimit = 100
	ti.Width = 30
	ti.Prompt = "/ "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	p := paginator.New()
	p.Type = paginator.Dots
	p.PerPage = model.PageSize
	p.ActiveDot = lipgloss.NewStyle().Foreground(ColorAccent).Render("•")
	p.InactiveDot = lipgloss.NewStyle().Foreground(ColorMuted).Render("•")

	m := &ExploreModel{
		columnSet: columnSet{columns: []tableColumn{
			{key: "name", label: "name", width: 24},
			{key: "cuisine", label: "cuisine", width: 10},
			{key: "price", label: "price", width: 6},
			{key: "rating", label: "rating", width: 8},
			{key: "distance", label: "distance", width: 16},
			{key: "address", label: "address", width: 24},
		}},
		deps:      deps,
		keys:      DefaultKeyMap(),
		search:    ti,
		page:      1,
		seq:       1,
		status:    statusLoading,
		paginator: p,
		spinner:   sp,
	}
	m.applyPrefs(prefs)
	return m
}

// Init fetches the first page immediately.
func (m ExploreModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd(m.seq))
}

// Editing reports whether the search box has focus.
func (m ExploreModel) Editing() bool { return m.editing }

// Filters returns the filter state the next fetch will use.
func (m ExploreModel) Filters() model.Filters {
	f := model.Filters{
		Page:   m.page,
		Limit:  model.PageSize,
		Search: strings.TrimSpace(m.search.Value()),
	}
	if m.cuisine > 0 {
		f.Cuisine = model.Cuisines[m.cuisine-1]
	}
	if m.price > 0 {
		f.PriceRange = model.PriceRanges[m.price-1]
	}
	return f
}

func (m ExploreModel) hasFilters() bool {
	return m.search.Value() != "" || m.cuisine != 0 || m.price != 0
}

func (m ExploreModel) canPrev() bool { return m.page > 1 }

func (m ExploreModel) canNext() bool { return m.page < m.meta.TotalPages }

// Update handles explore messages. Messages owned by other screens are ignored.
func (m ExploreModel) Update(msg tea.Msg) (ExploreModel, tea.Cmd) {
	switch msg := msg.(type) {
	case exploreDebounceMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m, m.fetchCmd(msg.seq)

	case model.RestaurantsLoadedMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		if msg.Err != nil {
			m.status = statusError
			m.err = msgExploreFailed
			m.rows = nil
			m.cursor, m.offset = 0, 0
			return m, nil
		}
		m.meta = msg.Page.Meta
		if total := m.meta.TotalPages; total > 0 && m.page > total {
			// The result set shrank under us; load the last real page.
			m.page = total
			m.syncPaginator()
			cmd := m.Refresh()
			return m, cmd
		}
		m.status = statusSuccess
		m.err = ""
		m.rows = msg.Page.Data
		m.cursor, m.offset = 0, 0
		m.syncPaginator()
		return m, nil

	case spinner.TickMsg:
		if m.status != statusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.editing {
			return m.updateSearch(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m ExploreModel) updateSearch(msg tea.KeyMsg) (ExploreModel, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.editing = false
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}
	m.page = 1
	sched := m.schedule()
	return m, tea.Batch(cmd, sched)
}

func (m ExploreModel) handleKey(msg tea.KeyMsg) (ExploreModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.editing = true
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Cuisine):
		m.cuisine = (m.cuisine + 1) % (len(model.Cuisines) + 1)
		m.page = 1
		cmd := m.schedule()
		return m, cmd

	case key.Matches(msg, m.keys.Price):
		m.price = (m.price + 1) % (len(model.PriceRanges) + 1)
		m.page = 1
		cmd := m.schedule()
		return m, cmd

	case key.Matches(msg, m.keys.ClearFilter):
		if !m.hasFilters() && m.page == 1 {
			return m, nil
		}
		m.search.SetValue("")
		m.cuisine, m.price = 0, 0
		m.page = 1
		cmd := m.schedule()
		return m, cmd

	case key.Matches(msg, m.keys.Retry):
		if m.status != statusError {
			return m, nil
		}
		m.seq++
		m.status = statusLoading
		return m, tea.Batch(m.spinner.Tick, m.fetchCmd(m.seq))

	case key.Matches(msg, m.keys.NextPage):
		if !m.canNext() {
			return m, nil
		}
		m.page++
		cmd := m.schedule()
		return m, cmd

	case key.Matches(msg, m.keys.PrevPage):
		if !m.canPrev() {
			return m, nil
		}
		m.page--
		cmd := m.schedule()
		return m, cmd

	case key.Matches(msg, m.keys.Down):
		m.MoveDown()
	case key.Matches(msg, m.keys.Up):
		m.MoveUp()

	case key.Matches(msg, m.keys.Select):
		if r, ok := m.Selected(); ok {
			return m, openDetailCmd(r.ID, model.ScreenExplore)
		}
	}
	return m, nil
}

// schedule starts a new debounce window for the current filter state.
func (m *ExploreModel) schedule() tea.Cmd {
	m.seq++
	seq := m.seq
	m.status = statusLoading
	return tea.Batch(m.spinner.Tick, tea.Tick(exploreDebounce, func(time.Time) tea.Msg {
		return exploreDebounceMsg{seq: seq}
	}))
}

func (m ExploreModel) fetchCmd(seq int) tea.Cmd {
	f := m.Filters()
	svc := m.deps.Restaurants
	log := m.deps.logger()
	return func() tea.Msg {
		page, err := svc.List(context.Background(), f)
		if err != nil {
			log.Debug("explore fetch failed", "seq", seq, "page", f.Page, "err", err)
		}
		return model.RestaurantsLoadedMsg{Seq: seq, Page: page, Err: err}
	}
}

// Refresh refetches the current page immediately.
func (m *ExploreModel) Refresh() tea.Cmd {
	m.seq++
	m.status = statusLoading
	return tea.Batch(m.spinner.Tick, m.fetchCmd(m.seq))
}

func (m *ExploreModel) syncPaginator() {
	total := max(1, m.meta.TotalPages)
	m.paginator.TotalPages = total
	m.paginator.Page = min(max(0, m.page-1), total-1)
	if total > 10 {
		m.paginator.Type = paginator.Arabic
	} else {
		m.paginator.Type = paginator.Dots
	}
}

// Selected returns the restaurant under the cursor.
func (m ExploreModel) Selected() (model.Restaurant, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return model.Restaurant{}, false
	}
	return m.rows[m.cursor], true
}

// MoveDown moves the cursor down.
func (m *ExploreModel) MoveDown() {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
	}
}

// MoveUp moves the cursor up.
func (m *ExploreModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

func (m ExploreModel) distanceTo(r model.Restaurant) string {
	st := m.deps.location()
	switch {
	case st.Coords != nil:
		km := geo.Distance(st.Coords.Latitude, st.Coords.Longitude, r.Location.Latitude(), r.Location.Longitude())
		return util.FormatDistance(km)
	case st.Loading:
		return "…"
	default:
		return "—"
	}
}

func (m ExploreModel) cell(r model.Restaurant, col tableColumn) string {
	switch col.key {
	case "name":
		return util.TruncateString(r.Name, col.width)
	case "cuisine":
		return string(r.Cuisine)
	case "price":
		return string(r.PriceRange)
	case "rating":
		return RatingStyle.Render(util.FormatRating(r.AverageRating))
	case "distance":
		return m.distanceTo(r)
	case "address":
		return util.TruncateString(r.Address, col.width)
	default:
		return ""
	}
}

func (m ExploreModel) renderFilterBar(width int) string {
	searchView := m.search.View()
	if !m.editing && m.search.Value() == "" {
		searchView = HelpDescStyle.Render("/ search")
	}

	cuisine, price := "any cuisine", "any price"
	cuisineStyle, priceStyle := FilterChipStyle, FilterChipStyle
	if m.cuisine > 0 {
		cuisine = string(model.Cuisines[m.cuisine-1])
		cuisineStyle = ActiveFilterChipStyle
	}
	if m.price > 0 {
		price = string(model.PriceRanges[m.price-1])
		priceStyle = ActiveFilterChipStyle
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center,
		searchView, "  ",
		cuisineStyle.Render("c "+cuisine), " ",
		priceStyle.Render("p "+price),
	)
	return lipgloss.NewStyle().Width(width).Padding(0, 1).Render(bar)
}

func (m ExploreModel) renderPager() string {
	prev, next := HelpKeyStyle.Render("[ prev"), HelpKeyStyle.Render("next ]")
	if !m.canPrev() {
		prev = DisabledStyle.Render("[ prev")
	}
	if !m.canNext() {
		next = DisabledStyle.Render("next ]")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, prev, "  ", m.paginator.View(), "  ", next)
}

// View renders the explore screen.
func (m *ExploreModel) View(width, height int) string {
	filterBar := m.renderFilterBar(width)
	bodyHeight := max(1, height-lipgloss.Height(filterBar)-2)

	var body string
	switch {
	case m.status == statusError:
		body = lipgloss.JoinVertical(lipgloss.Left,
			ErrorStyle.Render(m.err),
			HelpDescStyle.Padding(0, 1).Render("Press r to retry."),
		)
		body = lipgloss.NewStyle().Width(width).Height(bodyHeight).Render(body)
	case m.status == statusLoading && len(m.rows) == 0:
		body = lipgloss.NewStyle().Width(width).Height(bodyHeight).Padding(1, 2).
			Render(m.spinner.View() + " Loading restaurants...")
	case m.status == statusSuccess && len(m.rows) == 0:
		msg := "    No restaurants found."
		if m.hasFilters() {
			msg += "\n    Press  x  to clear filters."
		}
		body = EmptyStateStyle.Width(width).Height(bodyHeight).Render(msg)
	default:
		body = m.renderTable(width, bodyHeight)
	}

	status := fmt.Sprintf("%d restaurants", m.meta.Total)
	if m.meta.TotalPages > 0 {
		status += fmt.Sprintf("  ·  page %d/%d", m.page, m.meta.TotalPages)
	}
	if len(m.rows) > 0 {
		status += fmt.Sprintf("  ·  row %d/%d", m.cursor+1, len(m.rows))
	}
	if m.status == statusLoading {
		status += "  ·  " + m.spinner.View()
	}
	footer := lipgloss.JoinHorizontal(lipgloss.Center, m.renderPager(), StatusBarStyle.Render(status))

	return lipgloss.JoinVertical(lipgloss.Left, filterBar, body, footer)
}

func (m *ExploreModel) renderTable(width, height int) string {
	visible, headers, widths := m.layout(width)
	header := renderTableRow(headers, widths, TableHeaderStyle.Bold(true))
	divider := renderTableDivider(widths)

	visibleHeight := max(1, height-2)
	m.offset = scrollWindow(m.cursor, m.offset, visibleHeight, len(m.rows))

	var rows []string
	for i := m.offset; i < len(m.rows) && i < m.offset+visibleHeight; i++ {
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}
		cells := make([]string, 0, len(visible))
		for _, idx := range visible {
			cells = append(cells, m.cell(m.rows[i], m.columns[idx]))
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, header, divider, strings.Join(rows, "\n"))
	return lipgloss.NewStyle().Height(height).Render(content)
}
