package ui

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"grubmap/internal/geolocate"
	"grubmap/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeService struct {
	mu sync.Mutex

	page      model.Page
	listErr   error
	listCalls []model.Filters

	restaurant model.Restaurant
	getErr     error

	created   model.Restaurant
	createErr error
	creates   []model.NewRestaurant
}

func (f *fakeService) List(_ context.Context, filters model.Filters) (model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, filters)
	return f.page, f.listErr
}

func (f *fakeService) Get(_ context.Context, id string) (model.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return model.Restaurant{}, f.getErr
	}
	r := f.restaurant
	r.ID = id
	return r, nil
}

func (f *fakeService) Create(_ context.Context, r model.NewRestaurant) (model.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, r)
	return f.created, f.createErr
}

func (f *fakeService) lastList() model.Filters {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.listCalls) == 0 {
		return model.Filters{}
	}
	return f.listCalls[len(f.listCalls)-1]
}

func (f *fakeService) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates)
}

type fakeUploader struct {
	mu    sync.Mutex
	calls []string
	url   string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	return f.url, f.err
}

func (f *fakeUploader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeImagery struct {
	img image.Image
	err error
}

func (f fakeImagery) Image(context.Context, string) (image.Image, error) { return f.img, f.err }

func (f fakeImagery) Tile(context.Context, int, int, int) (image.Image, error) { return f.img, f.err }

// settledSource returns a location source that has already resolved.
func settledSource(t *testing.T, loc geolocate.Locator) *geolocate.Source {
	t.Helper()
	src := geolocate.NewSource(loc, geolocate.Options{})
	src.Acquire(context.Background())
	return src
}

func testDeps(svc *fakeService) Deps {
	return Deps{
		Restaurants: svc,
		Location:    geolocate.NewSource(nil, geolocate.Options{}),
		PrefsPath:   "-",
	}
}

// collect runs cmd and returns the messages it produces, flattening batches.
// Commands that do not return promptly (ticks, cursor blinks) are dropped.
func collect(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var out []tea.Msg
	var walk func(tea.Cmd)
	walk = func(c tea.Cmd) {
		if c == nil {
			return
		}
		ch := make(chan tea.Msg, 1)
		go func() { ch <- c() }()
		select {
		case msg := <-ch:
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, c := range batch {
					walk(c)
				}
				return
			}
			if msg != nil {
				out = append(out, msg)
			}
		case <-time.After(50 * time.Millisecond):
		}
	}
	walk(cmd)
	return out
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if m, ok := msg.(T); ok {
			return m, true
		}
	}
	var zero T
	return zero, false
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
