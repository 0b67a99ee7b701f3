package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"grubmap/internal/db"
	"grubmap/internal/model"
	"grubmap/internal/upload"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Used when the location settles without coordinates.
const (
	defaultLatitude  = 51.509865
	defaultLongitude = -0.118092
)

const (
	fieldName = iota
	fieldAddress
	fieldDescription
	fieldLatitude
	fieldLongitude
	fieldCuisine
	fieldPrice
	fieldImagePath
	fieldImageURL
	fieldCount
)

type formStage int

const (
	stageIdle formStage = iota
	stageUploading
	stageSubmitting
)

type noticeKind int

const (
	noticeInfo noticeKind = iota
	noticeError
	noticeSuccess
)

const (
	msgLocationFilled  = "Location pre-filled from your current position."
	msgLocationLoading = "Location is still loading. Please wait."
	msgSubmitSuccess   = "✅ Success! Restaurant added."
)

type imageUploadedMsg struct {
	url string
	err error
}

type restaurantCreatedMsg struct {
	restaurant model.Restaurant
	err        error
}

// RestaurantFormModel is the add-restaurant form. A submission runs through
// validation, an optional image upload and the create request; only one
// submission is in flight at a time.
type RestaurantFormModel struct {
	deps Deps
	keys FormKeyMap

	focusedField int
	inputs       [fieldCount]textinput.Model
	description  textarea.Model
	cuisine      int // 0 is unselected, otherwise model.Cuisines[cuisine-1]
	price        int

	stage   formStage
	pending model.NewRestaurant
	spinner spinner.Model

	notice     string
	noticeKind noticeKind

	// pendingPrefill is set while the location source was still loading
	// when the form opened.
	pendingPrefill bool

	picker *LocationPickerModel
}

// NewRestaurantFormModel creates the add form, restoring a saved draft or
// pre-filling the location.
func NewRestaurantFormModel(deps Deps) *RestaurantFormModel {
	newInput := func(placeholder string, limit int) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = limit
		ti.Width = 50
		return ti
	}

	var inputs [fieldCount]textinput.Model
	inputs[fieldName] = newInput("Restaurant name", 100)
	inputs[fieldAddress] = newInput("Street, city, postcode", 200)
	inputs[fieldLatitude] = newInput("51.509865", 24)
	inputs[fieldLongitude] = newInput("-0.118092", 24)
	inputs[fieldImagePath] = newInput("/path/to/photo.jpg (optional)", 500)
	inputs[fieldImageURL] = newInput("https://... (optional)", 500)

	ta := textarea.New()
	ta.Placeholder = "What makes this place worth a visit?"
	ta.ShowLineNumbers = false
	ta.CharLimit = 1000
	ta.SetWidth(52)
	ta.SetHeight(4)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &RestaurantFormModel{
		deps:        deps,
		keys:        DefaultFormKeyMap(),
		inputs:      inputs,
		description: ta,
		spinner:     sp,
	}
	m.focus(fieldName)

	if deps.DB != nil {
		d, ok, err := db.LoadDraft(deps.DB)
		if err != nil {
			deps.logger().Warn("load draft", "err", err)
		}
		if ok {
			m.setDraft(d)
			m.setNotice(noticeInfo, "Restored your unsaved draft.")
			return m
		}
	}
	m.prefillLocation()
	return m
}

// Draft returns the form contents.
func (m RestaurantFormModel) Draft() model.Draft {
	d := model.Draft{
		Name:        m.inputs[fieldName].Value(),
		Address:     m.inputs[fieldAddress].Value(),
		Description: m.description.Value(),
		Latitude:    model.ParseCoord(m.inputs[fieldLatitude].Value()),
		Longitude:   model.ParseCoord(m.inputs[fieldLongitude].Value()),
		ImagePath:   m.inputs[fieldImagePath].Value(),
		ImageURL:    m.inputs[fieldImageURL].Value(),
	}
	if m.cuisine > 0 {
		d.Cuisine = model.Cuisines[m.cuisine-1]
	}
	if m.price > 0 {
		d.PriceRange = model.PriceRanges[m.price-1]
	}
	return d
}

func (m *RestaurantFormModel) setDraft(d model.Draft) {
	m.inputs[fieldName].SetValue(d.Name)
	m.inputs[fieldAddress].SetValue(d.Address)
	m.description.SetValue(d.Description)
	m.inputs[fieldLatitude].SetValue(d.Latitude.String())
	m.inputs[fieldLongitude].SetValue(d.Longitude.String())
	m.inputs[fieldImagePath].SetValue(d.ImagePath)
	m.inputs[fieldImageURL].SetValue(d.ImageURL)
	m.cuisine = optionIndex(model.Cuisines, d.Cuisine)
	m.price = optionIndex(model.PriceRanges, d.PriceRange)
}

func optionIndex[T comparable](options []T, v T) int {
	for i, o := range options {
		if o == v {
			return i + 1
		}
	}
	return 0
}

func (m *RestaurantFormModel) setCoords(lat, lon float64) {
	m.inputs[fieldLatitude].SetValue(strconv.FormatFloat(lat, 'f', 6, 64))
	m.inputs[fieldLongitude].SetValue(strconv.FormatFloat(lon, 'f', 6, 64))
}

func (m *RestaurantFormModel) coordsEmpty() bool {
	return strings.TrimSpace(m.inputs[fieldLatitude].Value()) == "" &&
		strings.TrimSpace(m.inputs[fieldLongitude].Value()) == ""
}

// prefillLocation fills the coordinates from the location source, falling
// back to the default position once the source has settled without one.
func (m *RestaurantFormModel) prefillLocation() {
	st := m.deps.location()
	switch {
	case st.Coords != nil:
		m.setCoords(st.Coords.Latitude, st.Coords.Longitude)
	case st.Loading:
		m.pendingPrefill = true
	default:
		m.setCoords(defaultLatitude, defaultLongitude)
	}
}

// Busy reports whether a submission is in flight.
func (m RestaurantFormModel) Busy() bool { return m.stage != stageIdle }

// PickerOpen reports whether the map picker has taken over the screen.
func (m RestaurantFormModel) PickerOpen() bool { return m.picker != nil }

func (m *RestaurantFormModel) setNotice(kind noticeKind, text string) {
	m.noticeKind = kind
	m.notice = text
}

func (m *RestaurantFormModel) focus(field int) {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.description.Blur()
	m.focusedField = field
	switch field {
	case fieldDescription:
		m.description.Focus()
	case fieldCuisine, fieldPrice:
	default:
		m.inputs[field].Focus()
	}
}

func (m *RestaurantFormModel) nextField() {
	m.focus((m.focusedField + 1) % fieldCount)
}

func (m *RestaurantFormModel) prevField() {
	m.focus((m.focusedField + fieldCount - 1) % fieldCount)
}

// Update handles all form messages.
func (m RestaurantFormModel) Update(msg tea.Msg) (RestaurantFormModel, tea.Cmd) {
	if m.picker != nil {
		switch msg.(type) {
		case tea.KeyMsg, tea.MouseMsg, pickerTileMsg:
			p, cmd := m.picker.Update(msg)
			m.picker = &p
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case model.LocationSettledMsg:
		if !m.pendingPrefill {
			return m, nil
		}
		m.pendingPrefill = false
		if m.coordsEmpty() {
			m.prefillLocation()
		}
		return m, nil

	case pickerDoneMsg:
		m.picker = nil
		if msg.confirmed {
			m.setCoords(msg.lat, msg.lon)
			m.setNotice(noticeInfo, "Location set from the map.")
		}
		return m, nil

	case imageUploadedMsg:
		if m.stage != stageUploading {
			return m, nil
		}
		if msg.err != nil {
			m.stage = stageIdle
			m.setNotice(noticeError, "Image upload failed: "+msg.err.Error())
			m.saveDraft()
			return m, nil
		}
		m.pending.ImageURL = msg.url
		m.stage = stageSubmitting
		m.setNotice(noticeInfo, "Submitting...")
		return m, m.createCmd(m.pending)

	case restaurantCreatedMsg:
		if m.stage != stageSubmitting {
			return m, nil
		}
		m.stage = stageIdle
		if msg.err != nil {
			m.setNotice(noticeError, "❌ Submission failed: "+msg.err.Error())
			m.saveDraft()
			return m, nil
		}
		m.reset()
		m.clearDraft()
		m.setNotice(noticeSuccess, msgSubmitSuccess)
		saved := msg.restaurant
		return m, func() tea.Msg { return model.RestaurantSavedMsg{Restaurant: saved} }

	case spinner.TickMsg:
		if m.stage == stageIdle {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m RestaurantFormModel) handleKey(msg tea.KeyMsg) (RestaurantFormModel, tea.Cmd) {
	// Input is locked while a submission is in flight.
	if m.Busy() {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Save):
		return m.submit()

	case key.Matches(msg, m.keys.Cancel):
		m.saveDraft()
		return m, func() tea.Msg { return model.FormCancelledMsg{} }

	case key.Matches(msg, m.keys.UseLocation):
		m.useCurrentLocation()
		return m, nil

	case key.Matches(msg, m.keys.PickOnMap):
		lat, lon := m.pickerStart()
		m.picker = NewLocationPickerModel(m.deps, lat, lon)
		cmd := m.picker.Init()
		return m, cmd

	case key.Matches(msg, m.keys.NextField):
		m.nextField()
		return m, nil

	case key.Matches(msg, m.keys.PrevField):
		m.prevField()
		return m, nil
	}

	switch m.focusedField {
	case fieldCuisine:
		m.cuisine = cycleOption(msg, m.keys, m.cuisine, len(model.Cuisines))
		return m, nil
	case fieldPrice:
		m.price = cycleOption(msg, m.keys, m.price, len(model.PriceRanges))
		return m, nil
	case fieldDescription:
		var cmd tea.Cmd
		m.description, cmd = m.description.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
	return m, cmd
}

func cycleOption(msg tea.KeyMsg, keys FormKeyMap, current, n int) int {
	switch {
	case key.Matches(msg, keys.NextOption):
		return current%n + 1
	case key.Matches(msg, keys.PrevOption):
		if current <= 1 {
			return n
		}
		return current - 1
	}
	return current
}

func (m *RestaurantFormModel) useCurrentLocation() {
	st := m.deps.location()
	switch {
	case st.Coords != nil:
		m.setCoords(st.Coords.Latitude, st.Coords.Longitude)
		m.setNotice(noticeInfo, msgLocationFilled)
	case st.Loading:
		m.setNotice(noticeInfo, msgLocationLoading)
	default:
		m.setNotice(noticeError, "Error locating user: "+st.Err)
	}
}

// pickerStart chooses where the map picker opens: the typed coordinates,
// then the user's position, then the default.
func (m RestaurantFormModel) pickerStart() (float64, float64) {
	d := m.Draft()
	lat, latOK := d.Latitude.Value()
	lon, lonOK := d.Longitude.Value()
	if latOK && lonOK && lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180 {
		return lat, lon
	}
	if st := m.deps.location(); st.Coords != nil {
		return st.Coords.Latitude, st.Coords.Longitude
	}
	return defaultLatitude, defaultLongitude
}

func (m RestaurantFormModel) submit() (RestaurantFormModel, tea.Cmd) {
	if m.Busy() {
		return m, nil
	}
	d := m.Draft()
	nr, err := model.ValidateDraft(d)
	if err != nil {
		m.setNotice(noticeError, err.Error())
		return m, nil
	}
	m.pending = nr

	if path := strings.TrimSpace(d.ImagePath); path != "" {
		m.stage = stageUploading
		m.setNotice(noticeInfo, "Uploading image...")
		return m, tea.Batch(m.spinner.Tick, m.uploadCmd(path))
	}
	m.stage = stageSubmitting
	m.setNotice(noticeInfo, "Submitting...")
	return m, tea.Batch(m.spinner.Tick, m.createCmd(nr))
}

func (m RestaurantFormModel) uploadCmd(path string) tea.Cmd {
	uploader := m.deps.Uploader
	log := m.deps.logger()
	return func() tea.Msg {
		if uploader == nil {
			return imageUploadedMsg{err: upload.ErrNotConfigured}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		url, err := uploader.Upload(ctx, path)
		if err != nil {
			log.Warn("image upload", "path", path, "err", err)
		}
		return imageUploadedMsg{url: url, err: err}
	}
}

func (m RestaurantFormModel) createCmd(nr model.NewRestaurant) tea.Cmd {
	svc := m.deps.Restaurants
	return func() tea.Msg {
		r, err := svc.Create(context.Background(), nr)
		return restaurantCreatedMsg{restaurant: r, err: err}
	}
}

func (m *RestaurantFormModel) reset() {
	m.setDraft(model.Draft{})
	m.pending = model.NewRestaurant{}
	m.focus(fieldName)
}

func (m RestaurantFormModel) saveDraft() {
	if m.deps.DB == nil {
		return
	}
	d := m.Draft()
	var err error
	if d.IsEmpty() {
		err = db.ClearDraft(m.deps.DB)
	} else {
		err = db.SaveDraft(m.deps.DB, d)
	}
	if err != nil {
		m.deps.logger().Warn("save draft", "err", err)
	}
}

func (m RestaurantFormModel) clearDraft() {
	if m.deps.DB == nil {
		return
	}
	if err := db.ClearDraft(m.deps.DB); err != nil {
		m.deps.logger().Warn("clear draft", "err", err)
	}
}

// View renders the form.
func (m *RestaurantFormModel) View(width, height int) string {
	if m.picker != nil {
		return m.picker.View(width, height)
	}

	var fields []string
	fields = append(fields, renderFormField("Name *", m.inputs[fieldName], m.focusedField == fieldName))
	fields = append(fields, renderFormField("Address *", m.inputs[fieldAddress], m.focusedField == fieldAddress))
	fields = append(fields, renderTextAreaField("Description *", m.description, m.focusedField == fieldDescription))
	fields = append(fields, lipgloss.JoinHorizontal(lipgloss.Top,
		renderFormField("Latitude *", m.inputs[fieldLatitude], m.focusedField == fieldLatitude),
		" ",
		renderFormField("Longitude *", m.inputs[fieldLongitude], m.focusedField == fieldLongitude),
	))
	fields = append(fields, lipgloss.JoinHorizontal(lipgloss.Top,
		renderSelectField("Cuisine *", cuisineLabels(), m.cuisine, m.focusedField == fieldCuisine),
		" ",
		renderSelectField("Price *", priceLabels(), m.price, m.focusedField == fieldPrice),
	))
	fields = append(fields, renderFormField("Image file", m.inputs[fieldImagePath], m.focusedField == fieldImagePath))
	fields = append(fields, renderFormField("Image URL", m.inputs[fieldImageURL], m.focusedField == fieldImageURL))

	submit := HelpKeyStyle.Render("ctrl+s") + " " + HelpDescStyle.Render("submit")
	if m.Busy() {
		submit = DisabledStyle.Render("ctrl+s submit") + "  " + m.spinner.View()
	}
	fields = append(fields, submit)

	if m.notice != "" {
		style := StatusBarStyle
		switch m.noticeKind {
		case noticeError:
			style = ErrorStyle
		case noticeSuccess:
			style = SuccessStyle
		}
		fields = append(fields, style.Render(m.notice))
	}

	return lipgloss.NewStyle().
		Width(width - 4).
		MaxHeight(height).
		Padding(0, 1).
		Render(strings.Join(fields, "\n"))
}

func cuisineLabels() []string {
	labels := make([]string, len(model.Cuisines))
	for i, c := range model.Cuisines {
		labels[i] = string(c)
	}
	return labels
}

func priceLabels() []string {
	labels := make([]string, len(model.PriceRanges))
	for i, p := range model.PriceRanges {
		labels[i] = string(p)
	}
	return labels
}

func renderFormField(label string, input textinput.Model, focused bool) string {
	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}

	field := lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(label),
		input.View(),
	)

	return style.Padding(0, 1).Render(field)
}

func renderTextAreaField(label string, input textarea.Model, focused bool) string {
	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}
	return style.Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, LabelStyle.Render(label), input.View()))
}

func renderSelectField(label string, options []string, selected int, focused bool) string {
	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}
	value := HelpDescStyle.Render("Select...")
	if selected > 0 {
		value = NormalRowStyle.Render(options[selected-1])
	}
	value = fmt.Sprintf("‹ %s ›", value)
	return style.Padding(0, 1).Width(24).Render(lipgloss.JoinVertical(lipgloss.Left, LabelStyle.Render(label), value))
}
