package model

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// RestaurantsLoadedMsg is sent when an explore fetch settles. Seq is the
// debounce sequence the fetch was issued for.
type RestaurantsLoadedMsg struct {
	Seq  int
	Page Page
	Err  error
}

// RestaurantDetailLoadedMsg is sent when a restaurant detail fetch settles.
type RestaurantDetailLoadedMsg struct {
	ID         string
	Restaurant Restaurant
	Err        error
}

// RestaurantSavedMsg is sent when the add form has created a restaurant.
type RestaurantSavedMsg struct {
	Restaurant Restaurant
}

// RecentViewsLoadedMsg is sent when the recently viewed list is loaded.
type RecentViewsLoadedMsg struct {
	Views []RecentView
}

// LocationSettledMsg is sent once the shared geolocation request settles.
type LocationSettledMsg struct{}

// FormCancelledMsg is sent when a form is cancelled.
type FormCancelledMsg struct{}

// Screen represents different app screens.
type Screen int

const (
	ScreenExplore Screen = iota
	ScreenRecent
	ScreenRestaurantDetail
	ScreenRestaurantForm
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
