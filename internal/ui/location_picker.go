package ui

import (
	"context"
	"fmt"
	"image"
	"time"

	"grubmap/internal/geo"
	"grubmap/internal/util"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// The picker grid is a fixed-size rendering of one map tile. Its top-left
// cell sits at (pickerOriginX, pickerOriginY) on screen.
const (
	pickerCols    = 48
	pickerRows    = 20
	pickerOriginX = 2
	pickerOriginY = 3

	pickerDefaultZoom = 13
	pickerMinZoom     = 2
	pickerMaxZoom     = 18
)

type pickerTileMsg struct {
	z, x, y int
	img     image.Image
	err     error
}

// pickerDoneMsg closes the picker. Coordinates are only meaningful when
// confirmed is true.
type pickerDoneMsg struct {
	lat, lon  float64
	confirmed bool
}

// LocationPickerModel lets the user place a marker on a map tile.
type LocationPickerModel struct {
	deps Deps
	keys PickerKeyMap

	lat, lon float64
	zoom     int

	tileX, tileY int
	tile         image.Image
	tileZoom     int
	loading      bool
	err          string
}

// NewLocationPickerModel opens the picker with the marker at lat, lon.
func NewLocationPickerModel(deps Deps, lat, lon float64) *LocationPickerModel {
	m := &LocationPickerModel{
		deps: deps,
		keys: DefaultPickerKeyMap(),
		lat:  lat,
		lon:  lon,
		zoom: pickerDefaultZoom,
	}
	m.tileX, m.tileY = geo.Tile(lat, lon, m.zoom)
	m.tileZoom = m.zoom
	return m
}

// Init fetches the tile under the marker.
func (m *LocationPickerModel) Init() tea.Cmd {
	return m.fetchTile()
}

// position returns the marker coordinates.
func (m LocationPickerModel) position() (float64, float64) {
	return m.lat, m.lon
}

func (m *LocationPickerModel) fetchTile() tea.Cmd {
	if m.deps.Imagery == nil {
		return nil
	}
	m.loading = true
	z, x, y := m.zoom, m.tileX, m.tileY
	fetcher := m.deps.Imagery
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		img, err := fetcher.Tile(ctx, z, x, y)
		return pickerTileMsg{z: z, x: x, y: y, img: img, err: err}
	}
}

// cellSize is the number of world pixels covered by one grid cell.
func cellSize() (float64, float64) {
	return float64(geo.TileSize) / pickerCols, float64(geo.TileSize) / pickerRows
}

// markerCell returns the grid cell holding the marker.
func (m LocationPickerModel) markerCell() (int, int) {
	return markerCell(m.lat, m.lon, m.zoom, pickerCols, pickerRows)
}

// placeAt moves the marker to the centre of cell (cx, cy) relative to the
// current tile. Cells outside the grid spill into the neighbouring tile.
func (m *LocationPickerModel) placeAt(cx, cy int) tea.Cmd {
	cw, ch := cellSize()
	px := float64(m.tileX*geo.TileSize) + (float64(cx)+0.5)*cw
	py := float64(m.tileY*geo.TileSize) + (float64(cy)+0.5)*ch

	world := float64(geo.TileSize) * float64(int(1)<<m.zoom)
	py = min(max(py, 0), world-1)

	m.lat, m.lon = geo.Unproject(px, py, m.zoom)
	return m.syncTile()
}

func (m *LocationPickerModel) syncTile() tea.Cmd {
	tx, ty := geo.Tile(m.lat, m.lon, m.zoom)
	if tx == m.tileX && ty == m.tileY && m.zoom == m.tileZoom {
		return nil
	}
	m.tileX, m.tileY, m.tileZoom = tx, ty, m.zoom
	m.tile = nil
	m.err = ""
	return m.fetchTile()
}

func (m *LocationPickerModel) nudge(dx, dy int) tea.Cmd {
	cx, cy := m.markerCell()
	return m.placeAt(cx+dx, cy+dy)
}

func (m *LocationPickerModel) setZoom(z int) tea.Cmd {
	z = min(pickerMaxZoom, max(pickerMinZoom, z))
	if z == m.zoom {
		return nil
	}
	m.zoom = z
	return m.syncTile()
}

// Update handles picker input.
func (m LocationPickerModel) Update(msg tea.Msg) (LocationPickerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case pickerTileMsg:
		if msg.z != m.zoom || msg.x != m.tileX || msg.y != m.tileY {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.deps.logger().Warn("map tile", "z", msg.z, "x", msg.x, "y", msg.y, "err", msg.err)
			m.err = "Map tile unavailable"
			return m, nil
		}
		m.tile = msg.img
		return m, nil

	case tea.MouseMsg:
		if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionPress {
			return m, nil
		}
		cx, cy := msg.X-pickerOriginX, msg.Y-pickerOriginY
		if cx < 0 || cx >= pickerCols || cy < 0 || cy >= pickerRows {
			return m, nil
		}
		cmd := m.placeAt(cx, cy)
		return m, cmd

	case tea.KeyMsg:
		var cmd tea.Cmd
		switch {
		case key.Matches(msg, m.keys.Confirm):
			lat, lon := m.lat, m.lon
			return m, func() tea.Msg { return pickerDoneMsg{lat: lat, lon: lon, confirmed: true} }
		case key.Matches(msg, m.keys.Cancel):
			return m, func() tea.Msg { return pickerDoneMsg{} }
		case key.Matches(msg, m.keys.Up):
			cmd = m.nudge(0, -1)
		case key.Matches(msg, m.keys.Down):
			cmd = m.nudge(0, 1)
		case key.Matches(msg, m.keys.Left):
			cmd = m.nudge(-1, 0)
		case key.Matches(msg, m.keys.Right):
			cmd = m.nudge(1, 0)
		case key.Matches(msg, m.keys.ZoomIn):
			cmd = m.setZoom(m.zoom + 1)
		case key.Matches(msg, m.keys.ZoomOut):
			cmd = m.setZoom(m.zoom - 1)
		}
		return m, cmd
	}
	return m, nil
}

// View renders the picker full screen. The grid position must match
// pickerOriginX and pickerOriginY for mouse clicks to land correctly.
func (m LocationPickerModel) View(width, height int) string {
	title := TitleStyle.Width(width).Render("Pick location")

	status := fmt.Sprintf("%s  ·  zoom %d", util.FormatCoords(m.lat, m.lon), m.zoom)
	switch {
	case m.loading:
		status += "  ·  loading map..."
	case m.err != "":
		status += "  ·  " + m.err
	}
	info := StatusBarStyle.Render(status)

	cx, cy := m.markerCell()
	grid := renderMapASCII(m.tile, pickerCols, pickerRows, cx, cy, m.deps.Terminal.Color)
	grid = lipgloss.NewStyle().MarginLeft(pickerOriginX).Render(grid)

	body := lipgloss.JoinVertical(lipgloss.Left, title, info, grid)
	spacer := max(0, height-lipgloss.Height(body)-2)
	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		lipgloss.NewStyle().Height(spacer).Render(""),
		renderPickerHelp(width),
	)
}
