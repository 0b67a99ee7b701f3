package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for nav mode.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Select      key.Binding
	Back        key.Binding
	Quit        key.Binding
	Help        key.Binding
	Add         key.Binding
	Explore     key.Binding
	Recent      key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	NextColumn  key.Binding
	PrevColumn  key.Binding
	HideColumn  key.Binding
	ShowColumns key.Binding
	Search      key.Binding
	Cuisine     key.Binding
	Price       key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	ClearFilter key.Binding
	Retry       key.Binding
	ClearRecent key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", "l"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("b", "esc", "backspace"),
			key.WithHelp("b/esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add restaurant"),
		),
		Explore: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "explore"),
		),
		Recent: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "recent"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "prev tab"),
		),
		NextColumn: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next col"),
		),
		PrevColumn: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev col"),
		),
		HideColumn: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "hide col"),
		),
		ShowColumns: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "show cols"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Cuisine: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cuisine"),
		),
		Price: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "price"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "pgdown"),
			key.WithHelp("]", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "pgup"),
			key.WithHelp("[", "prev page"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filters"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		ClearRecent: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear history"),
		),
	}
}

// FormKeyMap defines keybindings for insert/edit mode.
type FormKeyMap struct {
	NextField   key.Binding
	PrevField   key.Binding
	NextOption  key.Binding
	PrevOption  key.Binding
	Save        key.Binding
	Cancel      key.Binding
	UseLocation key.Binding
	PickOnMap   key.Binding
}

// DefaultFormKeyMap returns the default form keybindings.
func DefaultFormKeyMap() FormKeyMap {
	return FormKeyMap{
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		NextOption: key.NewBinding(
			key.WithKeys("right", "l", " "),
			key.WithHelp("→", "next option"),
		),
		PrevOption: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "prev option"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		UseLocation: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "use my location"),
		),
		PickOnMap: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "pick on map"),
		),
	}
}

// PickerKeyMap defines keybindings for the map picker.
type PickerKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultPickerKeyMap returns the default map picker keybindings.
func DefaultPickerKeyMap() PickerKeyMap {
	return PickerKeyMap{
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "north")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "south")),
		Left:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "west")),
		Right:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "east")),
		ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "use location")),
		Cancel:  key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "cancel")),
	}
}
