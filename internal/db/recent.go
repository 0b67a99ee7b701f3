package db

import (
	"database/sql"
	"fmt"
	"time"

	"grubmap/internal/model"
)

// RecordView remembers that a restaurant was opened at the given time.
// Viewing the same restaurant again moves it to the top.
func RecordView(db *sql.DB, r model.Restaurant, at time.Time) error {
	query := `
		INSERT INTO recent_views (restaurant_id, name, address, cuisine, price_range, latitude, longitude, viewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(restaurant_id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			cuisine = excluded.cuisine,
			price_range = excluded.price_range,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			viewed_at = excluded.viewed_at
	`

	var address, cuisine, priceRange interface{}
	if r.Address != "" {
		address = r.Address
	}
	if r.Cuisine != "" {
		cuisine = string(r.Cuisine)
	}
	if r.PriceRange != "" {
		priceRange = string(r.PriceRange)
	}

	_, err := db.Exec(query,
		r.ID, r.Name, address, cuisine, priceRange,
		r.Location.Latitude(), r.Location.Longitude(),
		at.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}
	return nil
}

// ListRecentViews returns up to limit viewed restaurants, newest first.
func ListRecentViews(db *sql.DB, limit int) ([]model.RecentView, error) {
	query := `
		SELECT restaurant_id, name, address, cuisine, price_range, latitude, longitude, viewed_at
		FROM recent_views
		ORDER BY viewed_at DESC
		LIMIT ?
	`

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent views: %w", err)
	}
	defer rows.Close()

	var results []model.RecentView
	for rows.Next() {
		var v model.RecentView
		var address, cuisine, priceRange sql.NullString
		var latitude, longitude sql.NullFloat64
		var viewedAt string
		if err := rows.Scan(&v.RestaurantID, &v.Name, &address, &cuisine, &priceRange, &latitude, &longitude, &viewedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recent view: %w", err)
		}

		v.Address = address.String
		v.Cuisine = model.Cuisine(cuisine.String)
		v.PriceRange = model.PriceRange(priceRange.String)
		v.Latitude = latitude.Float64
		v.Longitude = longitude.Float64
		if t, err := time.Parse(timeLayout, viewedAt); err == nil {
			v.ViewedAt = t
		}

		results = append(results, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent views: %w", err)
	}

	return results, nil
}

// ClearRecentViews forgets every viewed restaurant.
func ClearRecentViews(db *sql.DB) error {
	if _, err := db.Exec("DELETE FROM recent_views"); err != nil {
		return fmt.Errorf("failed to clear recent views: %w", err)
	}
	return nil
}
