// Package imagery downloads remote raster images: restaurant photos and map
// tiles.
package imagery

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultTileURL is the public OpenStreetMap tile server.
const DefaultTileURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

// maxImageBytes caps a single download.
const maxImageBytes = 10 << 20

// Fetcher retrieves and decodes images over HTTP.
type Fetcher struct {
	tileURL    string
	userAgent  string
	httpClient *http.Client
}

// NewFetcher creates a fetcher. tileURL is a template with {z}, {x} and {y}.
func NewFetcher(tileURL, userAgent string, httpClient *http.Client) *Fetcher {
	if tileURL == "" {
		tileURL = DefaultTileURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Fetcher{tileURL: tileURL, userAgent: userAgent, httpClient: httpClient}
}

// TileURL expands the tile template.
func (f *Fetcher) TileURL(z, x, y int) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	).Replace(f.tileURL)
}

// Tile downloads one map tile.
func (f *Fetcher) Tile(ctx context.Context, z, x, y int) (image.Image, error) {
	return f.Image(ctx, f.TileURL(z, x, y))
}

// Image downloads and decodes the image at url.
func (f *Fetcher) Image(ctx context.Context, url string) (image.Image, error) {
	if url == "" {
		return nil, fmt.Errorf("no image URL")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	// Tile servers reject requests without an identifying agent.
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image error: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
