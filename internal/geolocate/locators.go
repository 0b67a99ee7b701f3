package geolocate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultGeoIPURL is an ip-api compatible lookup endpoint.
const DefaultGeoIPURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

// IPLocator approximates the user's position from their public IP address.
// HighAccuracy has no effect.
type IPLocator struct {
	url        string
	httpClient *http.Client
}

// NewIPLocator creates an IP lookup locator.
func NewIPLocator(url string, httpClient *http.Client) *IPLocator {
	if url == "" {
		url = DefaultGeoIPURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &IPLocator{url: url, httpClient: httpClient}
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Locate performs the lookup.
func (l *IPLocator) Locate(ctx context.Context, _ Options) (Coords, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return Coords{}, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Coords{}, &PositionError{Code: Timeout, Err: err}
		}
		return Coords{}, &PositionError{Code: PositionUnavailable, Err: fmt.Errorf("network error: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Coords{}, &PositionError{Code: PositionUnavailable, Err: fmt.Errorf("lookup error: status %d", resp.StatusCode)}
	}

	var result ipLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Coords{}, &PositionError{Code: PositionUnavailable, Err: fmt.Errorf("JSON decode error: %w", err)}
	}
	if result.Status != "success" {
		return Coords{}, &PositionError{Code: PositionUnavailable, Err: fmt.Errorf("lookup failed: %s", result.Message)}
	}

	return Coords{Latitude: result.Lat, Longitude: result.Lon}, nil
}

// StaticLocator always reports the same position.
type StaticLocator struct {
	Coords Coords
}

// Locate returns the configured position.
func (l StaticLocator) Locate(context.Context, Options) (Coords, error) {
	return l.Coords, nil
}

// DeniedLocator stands in for a user who has refused location access.
type DeniedLocator struct{}

// Locate always fails with PermissionDenied.
func (DeniedLocator) Locate(context.Context, Options) (Coords, error) {
	return Coords{}, &PositionError{Code: PermissionDenied}
}

// FromSetting builds a locator from a config value: "auto" (IP lookup), "off"
// (denied), "none" (no capability, nil locator) or "<lat>,<lon>".
func FromSetting(setting, geoIPURL string, httpClient *http.Client) (Locator, error) {
	switch s := strings.ToLower(strings.TrimSpace(setting)); s {
	case "", "auto":
		return NewIPLocator(geoIPURL, httpClient), nil
	case "off", "deny", "denied":
		return DeniedLocator{}, nil
	case "none":
		return nil, nil
	default:
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid location %q: want auto, off, none or <lat>,<lon>", setting)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil || lat < -90 || lat > 90 {
			return nil, fmt.Errorf("invalid latitude in location %q", setting)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || lon < -180 || lon > 180 {
			return nil, fmt.Errorf("invalid longitude in location %q", setting)
		}
		return StaticLocator{Coords: Coords{Latitude: lat, Longitude: lon}}, nil
	}
}
