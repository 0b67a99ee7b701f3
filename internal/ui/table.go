package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type tableController interface {
	NextColumn()
	PrevColumn()
	HideActiveColumn() bool
	ShowAllColumns()
	Prefs() TablePrefs
}

type tableColumn struct {
	key    string
	label  string
	width  int
	hidden bool
}

// columnSet tracks column visibility and the active column of a table.
type columnSet struct {
	columns      []tableColumn
	activeColumn int
}

func (c *columnSet) applyPrefs(prefs TablePrefs) {
	hidden := make(map[string]bool, len(prefs.HiddenColumns))
	for _, k := range prefs.HiddenColumns {
		hidden[k] = true
	}
	for i := range c.columns {
		c.columns[i].hidden = hidden[c.columns[i].key]
	}
	if prefs.ActiveColumn != "" {
		for i, col := range c.columns {
			if col.key == prefs.ActiveColumn {
				c.activeColumn = i
				break
			}
		}
	}
	c.ensureVisibleActiveColumn()
}

func (c *columnSet) Prefs() TablePrefs {
	var hidden []string
	for _, col := range c.columns {
		if col.hidden {
			hidden = append(hidden, col.key)
		}
	}
	return TablePrefs{
		HiddenColumns: hidden,
		ActiveColumn:  c.columns[c.activeColumn].key,
	}
}

func (c *columnSet) visibleColumnIndexes() []int {
	var idxs []int
	for i, col := range c.columns {
		if !col.hidden {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func (c *columnSet) ensureVisibleActiveColumn() {
	if !c.columns[c.activeColumn].hidden {
		return
	}
	for i := range c.columns {
		if !c.columns[i].hidden {
			c.activeColumn = i
			return
		}
	}
	c.columns[0].hidden = false
	c.activeColumn = 0
}

func (c *columnSet) NextColumn() {
	start := c.activeColumn
	for {
		c.activeColumn = (c.activeColumn + 1) % len(c.columns)
		if !c.columns[c.activeColumn].hidden || c.activeColumn == start {
			return
		}
	}
}

func (c *columnSet) PrevColumn() {
	start := c.activeColumn
	for {
		c.activeColumn--
		if c.activeColumn < 0 {
			c.activeColumn = len(c.columns) - 1
		}
		if !c.columns[c.activeColumn].hidden || c.activeColumn == start {
			return
		}
	}
}

func (c *columnSet) HideActiveColumn() bool {
	if len(c.visibleColumnIndexes()) <= 1 {
		return false
	}
	c.columns[c.activeColumn].hidden = true
	c.ensureVisibleActiveColumn()
	return true
}

func (c *columnSet) ShowAllColumns() {
	for i := range c.columns {
		c.columns[i].hidden = false
	}
}

// layout returns the header labels and cell widths of the visible columns,
// stretching the last one to fill width.
func (c *columnSet) layout(width int) (visible []int, headers []string, widths []int) {
	visible = c.visibleColumnIndexes()
	total := 0
	for _, idx := range visible {
		col := c.columns[idx]
		label := formatHeaderLabel(col.label)
		if idx == c.activeColumn {
			label = renderActiveHeaderLabel(label)
		}
		cellWidth := max(col.width+2, lipgloss.Width(label)+4)
		total += cellWidth
		widths = append(widths, cellWidth)
		headers = append(headers, label)
	}
	if len(widths) > 0 {
		sepTotal := (len(widths) - 1) * tableSeparatorWidth()
		if extra := width - total - sepTotal - 2; extra > 0 {
			widths[len(widths)-1] += extra
		}
	}
	return visible, headers, widths
}

func formatHeaderLabel(label string) string {
	return strings.ToUpper(label)
}

func renderActiveHeaderLabel(label string) string {
	return "[" + label + "]"
}

func tableSeparatorWidth() int {
	return 0
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		parts = append(parts, style.Width(widths[i]).MaxHeight(1).Render(cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}

func renderTableDivider(widths []int) string {
	total := 0
	for _, w := range widths {
		total += w
	}
	total += max(0, len(widths)-1) * tableSeparatorWidth()
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Repeat("─", total))
}

// scrollWindow keeps cursor inside a viewport of height rows starting at offset.
func scrollWindow(cursor, offset, height, n int) int {
	if height <= 0 || n == 0 {
		return 0
	}
	if cursor < offset {
		offset = cursor
	}
	if cursor >= offset+height {
		offset = cursor - height + 1
	}
	return max(0, min(offset, n-1))
}

func renderField(label, value string) string {
	if value == "" {
		value = "—"
	}
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(value)
}
