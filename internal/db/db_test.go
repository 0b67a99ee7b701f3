package db

import (
	"database/sql"
	"testing"
	"time"

	"grubmap/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDraftRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if _, ok, err := LoadDraft(db); err != nil || ok {
		t.Fatalf("LoadDraft on empty db = ok %v, err %v", ok, err)
	}

	want := model.Draft{
		Name:        "Trattoria Roma",
		Address:     "12 Long Acre, London",
		Description: "Family-run pasta kitchen.",
		Latitude:    model.CoordOf(51.509865),
		Longitude:   model.ParseCoord("west"),
		Cuisine:     model.CuisineItalian,
		PriceRange:  model.PriceModerate,
		ImagePath:   "/tmp/dish.png",
	}
	if err := SaveDraft(db, want); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	got, ok, err := LoadDraft(db)
	if err != nil || !ok {
		t.Fatalf("LoadDraft = ok %v, err %v", ok, err)
	}
	if got != want {
		t.Errorf("draft = %+v\nwant    %+v", got, want)
	}

	// A second save replaces the first.
	want.Name = "Roma"
	want.Latitude = model.Coord{}
	if err := SaveDraft(db, want); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	got, _, _ = LoadDraft(db)
	if got.Name != "Roma" || got.Latitude.IsSet() {
		t.Errorf("draft after resave = %+v", got)
	}

	if err := ClearDraft(db); err != nil {
		t.Fatalf("ClearDraft: %v", err)
	}
	if _, ok, _ := LoadDraft(db); ok {
		t.Error("draft still present after ClearDraft")
	}
}

func restaurant(id, name string) model.Restaurant {
	return model.Restaurant{
		ID:         id,
		Name:       name,
		Address:    "1 Test Street",
		Cuisine:    model.CuisineJapanese,
		PriceRange: model.PriceBudget,
		Location:   model.NewGeoPoint(51.5, -0.12),
	}
}

func TestRecentViewsNewestFirstAndDeduplicated(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	steps := []struct {
		r  model.Restaurant
		at time.Time
	}{
		{restaurant("a", "Alpha"), base},
		{restaurant("b", "Bravo"), base.Add(time.Minute)},
		{restaurant("c", "Charlie"), base.Add(2 * time.Minute)},
		{restaurant("a", "Alpha Renamed"), base.Add(3 * time.Minute)},
	}
	for _, s := range steps {
		if err := RecordView(db, s.r, s.at); err != nil {
			t.Fatalf("RecordView: %v", err)
		}
	}

	views, err := ListRecentViews(db, 10)
	if err != nil {
		t.Fatalf("ListRecentViews: %v", err)
	}
	var ids []string
	for _, v := range views {
		ids = append(ids, v.RestaurantID)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "c" || ids[2] != "b" {
		t.Fatalf("order = %v, want [a c b]", ids)
	}

	first := views[0]
	if first.Name != "Alpha Renamed" {
		t.Errorf("name = %q", first.Name)
	}
	if first.Latitude != 51.5 || first.Longitude != -0.12 {
		t.Errorf("coords = %v,%v", first.Latitude, first.Longitude)
	}
	if !first.ViewedAt.Equal(base.Add(3 * time.Minute)) {
		t.Errorf("viewedAt = %v", first.ViewedAt)
	}

	limited, err := ListRecentViews(db, 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("limit 2 = %d views, err %v", len(limited), err)
	}

	if err := ClearRecentViews(db); err != nil {
		t.Fatalf("ClearRecentViews: %v", err)
	}
	if views, _ := ListRecentViews(db, 10); len(views) != 0 {
		t.Errorf("views after clear = %d", len(views))
	}
}
