package ui

import (
	"errors"
	"image"
	"testing"

	"grubmap/internal/geo"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestPicker(deps Deps) LocationPickerModel {
	return *NewLocationPickerModel(deps, 51.5123, -0.1245)
}

func TestPickerClickPlacesMarker(t *testing.T) {
	m := newTestPicker(testDeps(&fakeService{}))

	click := tea.MouseMsg{X: pickerOriginX + 10, Y: pickerOriginY + 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
	m, _ = m.Update(click)

	if cx, cy := m.markerCell(); cx != 10 || cy != 5 {
		t.Errorf("marker cell = (%d,%d), want (10,5)", cx, cy)
	}
	lat, lon := m.position()
	if tx, ty := geo.Tile(lat, lon, m.zoom); tx != m.tileX || ty != m.tileY {
		t.Errorf("click moved marker off the tile: %d,%d vs %d,%d", tx, ty, m.tileX, m.tileY)
	}
}

func TestPickerIgnoresClicksOutsideGrid(t *testing.T) {
	m := newTestPicker(testDeps(&fakeService{}))
	lat, lon := m.position()

	for _, msg := range []tea.MouseMsg{
		{X: 0, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress},
		{X: pickerOriginX + pickerCols, Y: pickerOriginY, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress},
		{X: pickerOriginX + 3, Y: pickerOriginY + 3, Button: tea.MouseButtonRight, Action: tea.MouseActionPress},
		{X: pickerOriginX + 3, Y: pickerOriginY + 3, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease},
	} {
		m, _ = m.Update(msg)
	}
	if gotLat, gotLon := m.position(); gotLat != lat || gotLon != lon {
		t.Errorf("position moved to %v,%v", gotLat, gotLon)
	}
}

func TestPickerNudge(t *testing.T) {
	m := newTestPicker(testDeps(&fakeService{}))
	cx, cy := m.markerCell()
	lat, lon := m.position()

	m, _ = m.Update(runes("l"))
	if nx, _ := m.markerCell(); nx != cx+1 && cx < pickerCols-1 {
		t.Errorf("after l marker x = %d, want %d", nx, cx+1)
	}
	if _, gotLon := m.position(); gotLon <= lon {
		t.Errorf("longitude %v did not increase from %v", gotLon, lon)
	}

	m, _ = m.Update(runes("k"))
	if _, ny := m.markerCell(); ny != cy-1 && cy > 0 {
		t.Errorf("after k marker y = %d, want %d", ny, cy-1)
	}
	if gotLat, _ := m.position(); gotLat <= lat {
		t.Errorf("latitude %v did not increase from %v", gotLat, lat)
	}
}

func TestPickerZoomClamps(t *testing.T) {
	m := newTestPicker(testDeps(&fakeService{}))

	for i := 0; i < 10; i++ {
		m, _ = m.Update(runes("+"))
	}
	if m.zoom != pickerMaxZoom {
		t.Errorf("zoom = %d, want %d", m.zoom, pickerMaxZoom)
	}
	for i := 0; i < 30; i++ {
		m, _ = m.Update(runes("-"))
	}
	if m.zoom != pickerMinZoom {
		t.Errorf("zoom = %d, want %d", m.zoom, pickerMinZoom)
	}
	if tx, ty := geo.Tile(m.lat, m.lon, m.zoom); tx != m.tileX || ty != m.tileY || m.tileZoom != m.zoom {
		t.Errorf("tile not synced after zoom: %d/%d,%d", m.tileZoom, m.tileX, m.tileY)
	}
}

func TestPickerTiles(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, geo.TileSize, geo.TileSize))
	deps := testDeps(&fakeService{})
	deps.Imagery = fakeImagery{img: img}

	m := newTestPicker(deps)
	tile, ok := findMsg[pickerTileMsg](collect(t, m.Init()))
	if !ok {
		t.Fatal("Init did not fetch a tile")
	}

	// A tile for a previous zoom level is ignored.
	m, _ = m.Update(pickerTileMsg{z: m.zoom - 1, x: tile.x, y: tile.y, img: img})
	if m.tile != nil {
		t.Error("stale tile applied")
	}
	m, _ = m.Update(tile)
	if m.tile == nil || m.loading {
		t.Errorf("tile not applied: loading %v", m.loading)
	}

	m, _ = m.Update(pickerTileMsg{z: tile.z, x: tile.x, y: tile.y, err: errors.New("404")})
	if m.err != "Map tile unavailable" {
		t.Errorf("err = %q", m.err)
	}
}

func TestPickerConfirmAndCancel(t *testing.T) {
	m := newTestPicker(testDeps(&fakeService{}))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	done, ok := findMsg[pickerDoneMsg](collect(t, cmd))
	if !ok || !done.confirmed || done.lat != 51.5123 || done.lon != -0.1245 {
		t.Errorf("confirm = %+v, %v", done, ok)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	done, ok = findMsg[pickerDoneMsg](collect(t, cmd))
	if !ok || done.confirmed {
		t.Errorf("cancel = %+v, %v", done, ok)
	}
}
