package ui

import (
	"strings"
	"testing"

	"grubmap/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	root, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return root, cmd
}

func TestAppDetailReturnsToOrigin(t *testing.T) {
	svc := &fakeService{restaurant: model.Restaurant{Name: "Dishoom"}}
	m := New(testDeps(svc))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m, _ = update(t, m, runes("2"))
	if m.screen != model.ScreenRecent {
		t.Fatalf("screen = %v, want recent", m.screen)
	}

	m, cmd := update(t, m, openDetailMsg{id: "r1", from: model.ScreenRecent})
	if m.screen != model.ScreenRestaurantDetail {
		t.Fatalf("screen = %v, want detail", m.screen)
	}
	for _, msg := range collect(t, cmd) {
		m, _ = update(t, m, msg)
	}
	if m.restaurantDetail.Title() != "Dishoom" {
		t.Errorf("title = %q", m.restaurantDetail.Title())
	}
	if view := m.View(); !strings.Contains(view, "Dishoom") {
		t.Errorf("view missing restaurant name:\n%s", view)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != model.ScreenRecent || m.restaurantDetail != nil {
		t.Errorf("back went to %v", m.screen)
	}
}

func TestAppFormOpenAndCancel(t *testing.T) {
	m := New(testDeps(&fakeService{}))

	m, _ = update(t, m, runes("a"))
	if m.screen != model.ScreenRestaurantForm || m.mode != model.ModeInsert {
		t.Fatalf("screen %v mode %v", m.screen, m.mode)
	}

	// Keys go to the form, not the tab bar.
	m, _ = update(t, m, runes("q"))
	if got := m.restaurantForm.Draft().Name; got != "q" {
		t.Errorf("name = %q, want q", got)
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	cancelled, ok := findMsg[model.FormCancelledMsg](collect(t, cmd))
	if !ok {
		t.Fatal("esc did not cancel")
	}
	m, _ = update(t, m, cancelled)
	if m.screen != model.ScreenExplore || m.restaurantForm != nil || m.mode != model.ModeNav {
		t.Errorf("after cancel: screen %v form %v", m.screen, m.restaurantForm != nil)
	}
}

func TestAppSavedRefreshesExplore(t *testing.T) {
	svc := &fakeService{}
	m := New(testDeps(svc))
	before := m.explore.seq

	m, cmd := update(t, m, model.RestaurantSavedMsg{Restaurant: model.Restaurant{Name: "Padella"}})
	if m.info != "Added Padella" {
		t.Errorf("info = %q", m.info)
	}
	if m.explore.seq == before {
		t.Error("explore not refreshed")
	}
	if _, ok := findMsg[model.RestaurantsLoadedMsg](collect(t, cmd)); !ok {
		t.Error("refresh did not fetch")
	}
}

func TestAppHidingColumns(t *testing.T) {
	m := New(testDeps(&fakeService{}))

	m, _ = update(t, m, runes("h"))
	if m.info != "Column hidden" {
		t.Errorf("info = %q", m.info)
	}
	if got := m.prefs.Explore.HiddenColumns; len(got) != 1 || got[0] != "name" {
		t.Errorf("hidden = %v", got)
	}
	m, _ = update(t, m, runes("H"))
	if got := m.prefs.Explore.HiddenColumns; len(got) != 0 {
		t.Errorf("hidden after show all = %v", got)
	}
}
