package model

import (
	"math"
	"time"
)

// PageSize is the number of restaurants shown per explore page.
const PageSize = 9

// Cuisine is one of the fixed cuisine categories.
type Cuisine string

const (
	CuisineItalian  Cuisine = "Italian"
	CuisineMexican  Cuisine = "Mexican"
	CuisineIndian   Cuisine = "Indian"
	CuisineJapanese Cuisine = "Japanese"
	CuisineOther    Cuisine = "Other"
)

// Cuisines lists every cuisine in display order.
var Cuisines = []Cuisine{CuisineItalian, CuisineMexican, CuisineIndian, CuisineJapanese, CuisineOther}

// PriceRange is a coarse cost indicator (£ to ££££).
type PriceRange string

const (
	PriceBudget    PriceRange = "£"
	PriceModerate  PriceRange = "££"
	PriceExpensive PriceRange = "£££"
	PriceLuxury    PriceRange = "££££"
)

// PriceRanges lists every price tier from cheapest to most expensive.
var PriceRanges = []PriceRange{PriceBudget, PriceModerate, PriceExpensive, PriceLuxury}

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewGeoPoint builds a point from latitude and longitude.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

// Latitude returns the point's latitude.
func (p GeoPoint) Latitude() float64 { return p.Coordinates[1] }

// Longitude returns the point's longitude.
func (p GeoPoint) Longitude() float64 { return p.Coordinates[0] }

// Restaurant is a listing owned by the backend.
type Restaurant struct {
	ID            string     `json:"_id"`
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	Description   string     `json:"description"`
	Cuisine       Cuisine    `json:"cuisine"`
	PriceRange    PriceRange `json:"priceRange"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	AverageRating float64    `json:"averageRating"`
	Location      GeoPoint   `json:"location"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// NewRestaurant is a validated submission for the create endpoint.
type NewRestaurant struct {
	Name        string     `json:"name" validate:"required,min=3"`
	Address     string     `json:"address" validate:"required,min=10"`
	Description string     `json:"description" validate:"required,min=20"`
	Latitude    float64    `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64    `json:"longitude" validate:"gte=-180,lte=180"`
	Cuisine     Cuisine    `json:"cuisine" validate:"oneof=Italian Mexican Indian Japanese Other"`
	PriceRange  PriceRange `json:"priceRange" validate:"oneof=£ ££ £££ ££££"`
	ImageURL    string     `json:"imageUrl" validate:"omitempty,url"`
}

// Filters selects one page of the restaurant list.
type Filters struct {
	Page       int
	Limit      int
	Search     string
	Cuisine    Cuisine
	PriceRange PriceRange
}

// PageMeta describes the position of a page within the full result set.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of restaurants.
type Page struct {
	Data []Restaurant
	Meta PageMeta
}

// TotalPages returns ceil(total/limit), or 0 when limit is not positive.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// RecentView is a locally remembered restaurant the user opened.
type RecentView struct {
	RestaurantID string
	Name         string
	Address      string
	Cuisine      Cuisine
	PriceRange   PriceRange
	Latitude     float64
	Longitude    float64
	ViewedAt     time.Time
}
