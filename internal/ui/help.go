package ui

import (
	"strings"

	"grubmap/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, width int) string {
	if mode == model.ModeInsert {
		return renderFormHelp(width)
	}

	switch screen {
	case model.ScreenExplore:
		return renderExploreHelp(width)
	case model.ScreenRecent:
		return renderRecentHelp(width)
	case model.ScreenRestaurantDetail:
		return renderRestaurantDetailHelp(width)
	default:
		return renderDefaultHelp(width)
	}
}

func renderExploreHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("/", "search"),
		helpKey("c/p", "cuisine/price"),
		helpKey("[/]", "page"),
		helpKey("x", "clear"),
		helpKey("a", "add restaurant"),
		helpKey("enter", "details"),
		helpKey("?", "help"),
	}
	return renderHelpLine(keys, width)
}

func renderSearchHelp(width int) string {
	keys := []string{
		helpKey("type", "filter by name"),
		helpKey("enter/esc", "done"),
	}
	return renderHelpLine(keys, width)
}

func renderRecentHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("tab", "next col"),
		helpKey("h/H", "hide/show col"),
		helpKey("enter", "details"),
		helpKey("X", "clear history"),
	}
	return renderHelpLine(keys, width)
}

func renderRestaurantDetailHelp(width int) string {
	keys := []string{
		helpKey("b/esc", "back"),
		helpKey("r", "reload"),
	}
	return renderHelpLine(keys, width)
}

func renderFormHelp(width int) string {
	keys := []string{
		helpKey("tab", "next field"),
		helpKey("←/→", "option"),
		helpKey("ctrl+g", "my location"),
		helpKey("ctrl+p", "pick on map"),
		helpKey("ctrl+s", "submit"),
		helpKey("esc", "cancel"),
	}
	return renderHelpLine(keys, width)
}

func renderPickerHelp(width int) string {
	keys := []string{
		helpKey("hjkl/click", "move marker"),
		helpKey("+/-", "zoom"),
		helpKey("enter", "use location"),
		helpKey("esc", "cancel"),
	}
	return renderHelpLine(keys, width)
}

func renderDefaultHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("enter", "select"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Navigation"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"enter / l", "Open restaurant"},
			{"b / esc", "Go back"},
			{"1 / 2, ← / →", "Switch tab"},
			{"tab / shift+tab", "Cycle active column"},
			{"h / H", "Hide active column / show all"},
			{"q", "Quit (from a tab)"},
			{"?", "Toggle help"},
		}),
		titleSection("Explore"),
		helpSection([]helpItem{
			{"/", "Search by name"},
			{"c", "Cycle cuisine filter"},
			{"p", "Cycle price filter"},
			{"x", "Clear filters"},
			{"] / [", "Next / previous page"},
			{"r", "Retry after an error"},
			{"a", "Add restaurant"},
		}),
		titleSection("Recent"),
		helpSection([]helpItem{
			{"X", "Clear viewing history"},
		}),
		titleSection("Add Restaurant"),
		helpSection([]helpItem{
			{"tab / shift+tab", "Next / previous field"},
			{"← / →", "Change cuisine or price"},
			{"ctrl+g", "Fill in your current location"},
			{"ctrl+p", "Pick the location on a map"},
			{"ctrl+s", "Submit"},
			{"esc", "Cancel (keeps a draft)"},
		}),
		titleSection("Map Picker"),
		helpSection([]helpItem{
			{"hjkl / arrows", "Move the marker"},
			{"click", "Place the marker"},
			{"+ / -", "Zoom in / out"},
			{"enter", "Use this location"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
