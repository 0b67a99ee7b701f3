package ui

import (
	"context"
	"database/sql"
	"image"
	"io"
	"log/slog"

	"grubmap/internal/geolocate"
	"grubmap/internal/model"
	"grubmap/internal/upload"

	tea "github.com/charmbracelet/bubbletea"
)

// RestaurantService is the remote restaurant directory.
type RestaurantService interface {
	List(ctx context.Context, f model.Filters) (model.Page, error)
	Get(ctx context.Context, id string) (model.Restaurant, error)
	Create(ctx context.Context, r model.NewRestaurant) (model.Restaurant, error)
}

// ImageFetcher downloads restaurant photos and map tiles.
type ImageFetcher interface {
	Image(ctx context.Context, url string) (image.Image, error)
	Tile(ctx context.Context, z, x, y int) (image.Image, error)
}

// Deps are the collaborators shared by every screen. Only Restaurants and
// Location are required.
type Deps struct {
	Restaurants RestaurantService
	Uploader    upload.Uploader
	Location    *geolocate.Source
	Imagery     ImageFetcher
	DB          *sql.DB
	Logger      *slog.Logger
	Terminal    TerminalCapabilities
	// PrefsPath overrides where UI preferences are stored. Empty means
	// ~/.grubmap/ui_prefs.json; "-" disables persistence.
	PrefsPath string
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d.Logger
}

func (d Deps) location() geolocate.State {
	if d.Location == nil {
		return geolocate.NewSource(nil, geolocate.Options{}).State()
	}
	return d.Location.State()
}

// openDetailMsg asks the root model to open a restaurant's detail screen.
type openDetailMsg struct {
	id   string
	from model.Screen
}

func openDetailCmd(id string, from model.Screen) tea.Cmd {
	return func() tea.Msg { return openDetailMsg{id: id, from: from} }
}
