package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Settings are the values captured by first-run setup.
type Settings struct {
	Completed              bool   `json:"completed"`
	APIURL                 string `json:"api_url,omitempty"`
	CloudinaryCloudName    string `json:"cloudinary_cloud_name,omitempty"`
	CloudinaryUploadPreset string `json:"cloudinary_upload_preset,omitempty"`
}

// applyTo fills config values that neither the environment nor flags set.
func (s Settings) applyTo(c *Config) {
	if c.APIURL == "" {
		c.APIURL = strings.TrimRight(s.APIURL, "/")
	}
	if c.Cloudinary.CloudName == "" {
		c.Cloudinary.CloudName = s.CloudinaryCloudName
	}
	if c.Cloudinary.UploadPreset == "" {
		c.Cloudinary.UploadPreset = s.CloudinaryUploadPreset
	}
}

func settingsPath(configDir string) string {
	return filepath.Join(configDir, "settings.json")
}

func loadSettings(configDir string) (Settings, error) {
	data, err := os.ReadFile(settingsPath(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return Settings{}, err
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func saveSettings(configDir string, settings Settings) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(settingsPath(configDir), data, 0600)
}

func shouldRunOnboarding(settings Settings, config *Config) bool {
	if settings.Completed || config.APIURL != "" {
		return false
	}
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

type onboardingStep int

const (
	stepAPI onboardingStep = iota
	stepCloudName
	stepPreset
	stepDone
)

var stepTitles = []string{"API", "Cloudinary", "Upload preset"}

type onboardingModel struct {
	step     onboardingStep
	inputs   [stepDone]textinput.Model
	settings Settings
	status   string
	invalid  string
	width    int
	height   int
}

var (
	obColorMuted  = lipgloss.Color("#7E8C80")
	obColorText   = lipgloss.Color("#D6E0D3")
	obColorAccent = lipgloss.Color("#8FA082")
	obColorDanger = lipgloss.Color("#f38ba8")

	obTitleStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obHeaderStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obTabsStyle = lipgloss.NewStyle().
			Padding(0, 2).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obTabInactive = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 2)

	obTabActive = lipgloss.NewStyle().
			Foreground(obColorText).
			Bold(true).
			Underline(true).
			Padding(0, 2)

	obPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorMuted).
			Padding(1, 2)

	obInputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorAccent).
			Padding(0, 1)

	obLabelStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obMutedStyle = lipgloss.NewStyle().
			Foreground(obColorMuted)

	obWarnStyle = lipgloss.NewStyle().
			Foreground(obColorDanger)

	obFooterStyle = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(obColorMuted)
)

func newOnboardingModel(existing Settings) onboardingModel {
	newInput := func(placeholder, prompt, value string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 300
		in.Prompt = prompt
		in.TextStyle = lipgloss.NewStyle().Foreground(obColorText)
		in.PlaceholderStyle = lipgloss.NewStyle().Foreground(obColorMuted)
		in.Cursor.Style = lipgloss.NewStyle().Foreground(obColorText).Background(obColorAccent)
		in.SetValue(value)
		return in
	}

	m := onboardingModel{settings: existing}
	m.inputs[stepAPI] = newInput("https://restaurants.example.com/api", "url> ", existing.APIURL)
	m.inputs[stepCloudName] = newInput("cloud name (optional)", "cloud> ", existing.CloudinaryCloudName)
	m.inputs[stepPreset] = newInput("unsigned upload preset (optional)", "preset> ", existing.CloudinaryUploadPreset)
	m.inputs[stepAPI].Focus()
	return m
}

func (m onboardingModel) Init() tea.Cmd { return textinput.Blink }

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.step == stepDone {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			return m.commit()
		case "esc":
			if m.step == stepAPI {
				m.invalid = "The API URL is required to browse restaurants."
				return m, nil
			}
			// Skipping uploads leaves both Cloudinary values empty.
			m.settings.CloudinaryCloudName = ""
			m.settings.CloudinaryUploadPreset = ""
			return m.finish("Image uploads disabled. Settings saved.")
		case "ctrl+c":
			m.status = "Setup canceled."
			m.settings.Completed = false
			m.step = stepDone
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.inputs[m.step], cmd = m.inputs[m.step].Update(msg)
		m.invalid = ""
		return m, cmd
	}
	return m, nil
}

// commit stores the current input and advances.
func (m onboardingModel) commit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.inputs[m.step].Value())
	switch m.step {
	case stepAPI:
		if err := validateAPIURL(value); err != nil {
			m.invalid = err.Error()
			return m, nil
		}
		m.settings.APIURL = strings.TrimRight(value, "/")
	case stepCloudName:
		m.settings.CloudinaryCloudName = value
		if value == "" {
			m.settings.CloudinaryUploadPreset = ""
			return m.finish("No cloud name entered. Image uploads disabled.")
		}
	case stepPreset:
		m.settings.CloudinaryUploadPreset = value
		if value == "" {
			return m.finish("No upload preset entered. Image uploads disabled.")
		}
		return m.finish("Settings saved.")
	}

	m.inputs[m.step].Blur()
	m.step++
	cmd := m.inputs[m.step].Focus()
	return m, cmd
}

func (m onboardingModel) finish(status string) (tea.Model, tea.Cmd) {
	m.settings.Completed = true
	m.status = status
	m.step = stepDone
	return m, tea.Quit
}

func validateAPIURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("enter the restaurant API URL")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%q is not an http(s) URL", raw)
	}
	return nil
}

func (m onboardingModel) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 28
	}

	header := m.renderHeader(width)
	tabs := m.renderTabs(width)
	footer := m.renderFooter(width)

	contentHeight := max(8, height-6)
	content := m.renderContent(width, contentHeight)
	ui := lipgloss.JoinVertical(lipgloss.Left, header, tabs, content, footer)

	return lipgloss.NewStyle().
		Foreground(obColorText).
		Width(width).
		Height(height).
		Render(ui)
}

func (m onboardingModel) renderHeader(width int) string {
	left := "  " + obTitleStyle.Render("grubmap") + " " + obMutedStyle.Render("› Setup")
	right := obMutedStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return obHeaderStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m onboardingModel) renderTabs(width int) string {
	tabs := []string{"  "}
	for i, title := range stepTitles {
		if onboardingStep(i) == m.step {
			tabs = append(tabs, obTabActive.Render(title))
		} else {
			tabs = append(tabs, obTabInactive.Render(title))
		}
	}
	return obTabsStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Left, tabs...))
}

func (m onboardingModel) renderFooter(width int) string {
	switch m.step {
	case stepAPI:
		return obFooterStyle.Width(width).Render("enter next  ctrl+c cancel")
	case stepCloudName, stepPreset:
		return obFooterStyle.Width(width).Render("enter next  esc skip uploads  ctrl+c cancel")
	default:
		return obFooterStyle.Width(width).Render("Setup complete")
	}
}

func (m onboardingModel) renderContent(width, height int) string {
	cardWidth := min(92, width-6)
	if cardWidth < 40 {
		cardWidth = width - 2
	}
	inputWidth := max(30, cardWidth-14)

	var body string
	switch m.step {
	case stepAPI:
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			obLabelStyle.Render("Where is the restaurant API?"),
			"",
			obMutedStyle.Render("The base URL serving /restaurants, for example"),
			obMutedStyle.Render("https://restaurants.example.com/api"),
			"",
			obInputStyle.Width(inputWidth).Render(m.inputs[stepAPI].View()),
		)
	case stepCloudName, stepPreset:
		label := "Cloudinary cloud name"
		if m.step == stepPreset {
			label = "Cloudinary unsigned upload preset"
		}
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			obLabelStyle.Render("Image uploads (optional)"),
			"",
			obMutedStyle.Render("Photos picked in the add form are uploaded to Cloudinary."),
			obMutedStyle.Render("Leave empty or press Esc to skip; image URLs can still be typed."),
			"",
			obLabelStyle.Render(label),
			obInputStyle.Width(inputWidth).Render(m.inputs[m.step].View()),
		)
	default:
		msg := obMutedStyle.Render(m.status)
		if strings.Contains(strings.ToLower(m.status), "disabled") || strings.Contains(m.status, "canceled") {
			msg = obWarnStyle.Render(m.status)
		}
		body = lipgloss.JoinVertical(lipgloss.Left,
			obLabelStyle.Render("Onboarding Complete"),
			"",
			msg,
			obMutedStyle.Render("You can change this later in ~/.grubmap/settings.json"),
		)
	}
	if m.invalid != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", obWarnStyle.Render(m.invalid))
	}

	card := obPanelStyle.Width(cardWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
}

func runOnboarding(configDir string, existing Settings) (Settings, error) {
	model := newOnboardingModel(existing)
	prog := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return Settings{}, fmt.Errorf("onboarding tui failed: %w", err)
	}
	m, ok := finalModel.(onboardingModel)
	if !ok {
		return Settings{}, fmt.Errorf("unexpected onboarding model type")
	}
	if !m.settings.Completed {
		return existing, nil
	}
	if err := saveSettings(configDir, m.settings); err != nil {
		return Settings{}, err
	}
	return m.settings, nil
}
