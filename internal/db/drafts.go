package db

import (
	"database/sql"
	"errors"
	"fmt"

	"grubmap/internal/model"
)

// SaveDraft stores the add form's in-progress draft, replacing any previous one.
func SaveDraft(db *sql.DB, d model.Draft) error {
	query := `
		INSERT INTO drafts (id, name, address, description, latitude, longitude, cuisine, price_range, image_path, image_url, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			description = excluded.description,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			cuisine = excluded.cuisine,
			price_range = excluded.price_range,
			image_path = excluded.image_path,
			image_url = excluded.image_url,
			updated_at = excluded.updated_at
	`

	_, err := db.Exec(query,
		d.Name, d.Address, d.Description,
		d.Latitude.String(), d.Longitude.String(),
		string(d.Cuisine), string(d.PriceRange),
		d.ImagePath, d.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// LoadDraft returns the saved draft. ok is false when there is none.
func LoadDraft(db *sql.DB) (d model.Draft, ok bool, err error) {
	query := `
		SELECT name, address, description, latitude, longitude, cuisine, price_range, image_path, image_url
		FROM drafts
		WHERE id = 1
	`

	var lat, lon, cuisine, priceRange string
	err = db.QueryRow(query).Scan(
		&d.Name, &d.Address, &d.Description, &lat, &lon, &cuisine, &priceRange, &d.ImagePath, &d.ImageURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Draft{}, false, nil
	}
	if err != nil {
		return model.Draft{}, false, fmt.Errorf("failed to load draft: %w", err)
	}

	d.Latitude = model.ParseCoord(lat)
	d.Longitude = model.ParseCoord(lon)
	d.Cuisine = model.Cuisine(cuisine)
	d.PriceRange = model.PriceRange(priceRange)
	return d, true, nil
}

// ClearDraft deletes the saved draft.
func ClearDraft(db *sql.DB) error {
	if _, err := db.Exec("DELETE FROM drafts WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}
