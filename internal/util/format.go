package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const kmToMiles = 0.621371

// FormatDistance formats a distance in kilometres for display.
// Nearby places are shown in miles with one decimal, far ones in whole km.
func FormatDistance(km float64) string {
	if km < 100 {
		return fmt.Sprintf("%.1f miles away", km*kmToMiles)
	}
	return fmt.Sprintf("%.0f km away", km)
}

// FormatDateHuman formats a timestamp relative to now.
// "Today", "Yesterday", "3d ago", "Jan 15", "Jan 15 '24"
func FormatDateHuman(t, now time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	t = t.In(now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dateDay := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())

	days := int(math.Round(today.Sub(dateDay).Hours() / 24))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days > 1 && days < 7:
		return fmt.Sprintf("%dd ago", days)
	case t.Year() == now.Year():
		return t.Format("Jan 02")
	default:
		return t.Format("Jan 02 '06")
	}
}

// FormatRating formats an average rating as "4.5 ★", or "New" when the
// restaurant has no ratings yet.
func FormatRating(avg float64) string {
	if avg <= 0 {
		return "New"
	}
	return formatRatingNumber(avg) + " ★"
}

// FormatRatingStars formats a 0-5 rating as stars (e.g., "★★★★☆").
func FormatRatingStars(avg float64) string {
	stars := int(math.Round(avg))
	if stars < 0 {
		stars = 0
	}
	if stars > 5 {
		stars = 5
	}
	return strings.Repeat("★", stars) + strings.Repeat("☆", 5-stars)
}

// FormatCoords formats a latitude/longitude pair with six decimals.
func FormatCoords(lat, lon float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lon)
}

// DirectionsURL returns a Google Maps directions link to the given point.
func DirectionsURL(lat, lon float64) string {
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%s,%s",
		strconv.FormatFloat(lat, 'f', -1, 64), strconv.FormatFloat(lon, 'f', -1, 64))
}

func formatRatingNumber(v float64) string {
	// Keep one decimal at most, but avoid trailing .0 for whole values.
	s := strconv.FormatFloat(v, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
