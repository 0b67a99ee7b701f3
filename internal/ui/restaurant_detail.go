package ui

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"grubmap/internal/geo"
	"grubmap/internal/model"
	"grubmap/internal/util"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
)

const (
	detailMapZoom = 15

	msgDetailFailed = "Could not load restaurant details."
)

// detailArtworkMsg carries the header photo and map tile for a restaurant.
// Either image may be nil when its download failed.
type detailArtworkMsg struct {
	id    string
	photo image.Image
	tile  image.Image
}

// RestaurantDetailModel represents the restaurant detail screen.
type RestaurantDetailModel struct {
	deps Deps
	keys KeyMap

	id   string
	from model.Screen

	status     fetchStatus
	restaurant model.Restaurant
	spinner    spinner.Model

	artLoading bool
	photo      image.Image
	tile       image.Image

	// rendered artwork, keyed by the width it was rendered for
	artWidth int
	photoArt string
	mapArt   string
}

// NewRestaurantDetailModel creates a detail screen for id. from is the screen
// to return to.
func NewRestaurantDetailModel(deps Deps, id string, from model.Screen) *RestaurantDetailModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &RestaurantDetailModel{
		deps:    deps,
		keys:    DefaultKeyMap(),
		id:      id,
		from:    from,
		status:  statusLoading,
		spinner: sp,
	}
}

// Init starts loading the restaurant.
func (m RestaurantDetailModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

// From returns the screen the detail was opened from.
func (m RestaurantDetailModel) From() model.Screen { return m.from }

// Title returns the breadcrumb label.
func (m RestaurantDetailModel) Title() string {
	if m.status == statusSuccess {
		return m.restaurant.Name
	}
	return "Detail"
}

func (m RestaurantDetailModel) loadCmd() tea.Cmd {
	id := m.id
	svc := m.deps.Restaurants
	return func() tea.Msg {
		r, err := svc.Get(context.Background(), id)
		return model.RestaurantDetailLoadedMsg{ID: id, Restaurant: r, Err: err}
	}
}

// Update handles detail messages.
func (m RestaurantDetailModel) Update(msg tea.Msg) (RestaurantDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case model.RestaurantDetailLoadedMsg:
		if msg.ID != m.id || m.status != statusLoading {
			return m, nil
		}
		if msg.Err != nil {
			m.deps.logger().Warn("restaurant detail failed", "id", m.id, "err", msg.Err)
			m.status = statusError
			return m, nil
		}
		m.status = statusSuccess
		m.restaurant = msg.Restaurant
		var cmds []tea.Cmd
		if m.deps.DB != nil {
			cmds = append(cmds, recordViewCmd(m.deps, msg.Restaurant))
		}
		if m.deps.Imagery != nil {
			m.artLoading = true
			cmds = append(cmds, m.artworkCmd())
		}
		return m, tea.Batch(cmds...)

	case detailArtworkMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.artLoading = false
		m.photo, m.tile = msg.photo, msg.tile
		m.artWidth = 0
		return m, nil

	case spinner.TickMsg:
		if m.status != statusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Retry) && m.status == statusError {
			m.status = statusLoading
			return m, tea.Batch(m.spinner.Tick, m.loadCmd())
		}
	}
	return m, nil
}

// artworkCmd downloads the header photo and the map tile concurrently. A
// failed download leaves its image nil.
func (m RestaurantDetailModel) artworkCmd() tea.Cmd {
	r := m.restaurant
	fetcher := m.deps.Imagery
	log := m.deps.logger()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		out := detailArtworkMsg{id: r.ID}
		var g errgroup.Group
		if r.ImageURL != "" {
			g.Go(func() error {
				img, err := fetcher.Image(ctx, r.ImageURL)
				if err != nil {
					return fmt.Errorf("photo: %w", err)
				}
				out.photo = img
				return nil
			})
		}
		g.Go(func() error {
			tx, ty := geo.Tile(r.Location.Latitude(), r.Location.Longitude(), detailMapZoom)
			img, err := fetcher.Tile(ctx, detailMapZoom, tx, ty)
			if err != nil {
				return fmt.Errorf("map tile: %w", err)
			}
			out.tile = img
			return nil
		})
		if err := g.Wait(); err != nil {
			log.Warn("restaurant artwork", "id", r.ID, "err", err)
		}
		return out
	}
}

// markerCell returns where the restaurant falls on a width x height rendering
// of its map tile.
func markerCell(lat, lon float64, zoom, width, height int) (int, int) {
	px, py := geo.Project(lat, lon, zoom)
	tx, ty := geo.Tile(lat, lon, zoom)
	fx := (px - float64(tx*geo.TileSize)) / geo.TileSize
	fy := (py - float64(ty*geo.TileSize)) / geo.TileSize
	cx := min(width-1, max(0, int(fx*float64(width))))
	cy := min(height-1, max(0, int(fy*float64(height))))
	return cx, cy
}

func (m RestaurantDetailModel) distanceText() string {
	st := m.deps.location()
	switch {
	case st.Coords != nil:
		r := m.restaurant
		km := geo.Distance(st.Coords.Latitude, st.Coords.Longitude, r.Location.Latitude(), r.Location.Longitude())
		return util.FormatDistance(km)
	case st.Loading:
		return "Locating..."
	default:
		return st.Err
	}
}

func (m *RestaurantDetailModel) renderArtwork(width int) (string, string) {
	if m.artWidth == width {
		return m.photoArt, m.mapArt
	}
	colored := m.deps.Terminal.Color
	height := max(4, width/4)

	if m.photo != nil {
		m.photoArt = renderImageASCII(m.photo, width, height, colored)
	} else {
		m.photoArt = lipgloss.NewStyle().Width(width).Height(height).
			Foreground(ColorMuted).Align(lipgloss.Center, lipgloss.Center).
			Render("no photo")
	}

	r := m.restaurant
	cx, cy := markerCell(r.Location.Latitude(), r.Location.Longitude(), detailMapZoom, width, height)
	m.mapArt = renderMapASCII(m.tile, width, height, cx, cy, colored)
	m.artWidth = width
	return m.photoArt, m.mapArt
}

// View renders the restaurant detail.
func (m *RestaurantDetailModel) View(width, height int) string {
	switch m.status {
	case statusLoading:
		return lipgloss.NewStyle().Width(width).Height(height).Padding(1, 2).
			Render(m.spinner.View() + " Loading restaurant...")
	case statusError:
		return lipgloss.JoinVertical(lipgloss.Left,
			ErrorStyle.Render(msgDetailFailed),
			HelpDescStyle.Padding(0, 1).Render("r retry  b back"),
		)
	}

	r := m.restaurant
	lat, lon := r.Location.Latitude(), r.Location.Longitude()

	var fields []string
	fields = append(fields, HeaderStyle.Padding(0).Render(r.Name))
	fields = append(fields, renderField("Cuisine", string(r.Cuisine)))
	fields = append(fields, renderField("Price", string(r.PriceRange)))
	fields = append(fields, LabelStyle.Render("Rating:")+" "+RatingStyle.Render(util.FormatRatingStars(r.AverageRating))+" "+NormalRowStyle.Render(util.FormatRating(r.AverageRating)))
	fields = append(fields, renderField("Address", r.Address))
	fields = append(fields, renderField("Distance", m.distanceText()))
	fields = append(fields, renderField("Coordinates", util.FormatCoords(lat, lon)))
	fields = append(fields, renderField("Directions", util.DirectionsURL(lat, lon)))
	if !r.CreatedAt.IsZero() {
		fields = append(fields, renderField("Added", util.FormatDateHuman(r.CreatedAt, time.Now())))
	}

	infoWidth := width - 4
	artWidth := 0
	if width >= 100 {
		artWidth = min(48, width/3)
		infoWidth = width - artWidth - 8
	}

	desc := lipgloss.NewStyle().Width(max(10, infoWidth-6)).Foreground(ColorText).Render(r.Description)
	info := PanelStyle.Width(infoWidth).
		Render(strings.Join(fields, "\n") + "\n\n" + desc)

	if artWidth == 0 {
		return info
	}

	var art string
	if m.artLoading {
		art = HelpDescStyle.Render("Loading artwork...")
	} else {
		photo, mapArt := m.renderArtwork(artWidth)
		art = lipgloss.JoinVertical(lipgloss.Left, photo, "", mapArt)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, info, "  ", art)
}
