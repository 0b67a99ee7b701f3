package api

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"grubmap/internal/model"
)

var (
	// ErrFetchRestaurants is returned by List for every failure.
	ErrFetchRestaurants = errors.New("failed to fetch restaurants")
	// ErrLoadDetails is returned by Get for every failure.
	ErrLoadDetails = errors.New("could not load restaurant details")
	// ErrNoResponse means a create request was sent but nothing came back.
	ErrNoResponse = errors.New("no response received from the server")
)

// APIError is a non-2xx create response. Its message is shown to the user as is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Client talks to the restaurant REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a restaurant API client rooted at baseURL.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With("component", "api"),
	}
}

type listResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    []model.Restaurant `json:"data"`
	Meta    model.PageMeta     `json:"meta"`
}

type createResponse struct {
	Message    string           `json:"message"`
	Restaurant model.Restaurant `json:"restaurant"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// List fetches one page of restaurants. Empty optional filters are not sent.
func (c *Client) List(ctx context.Context, f model.Filters) (model.Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(f.Page))
	params.Set("limit", strconv.Itoa(f.Limit))
	if s := strings.TrimSpace(f.Search); s != "" {
		params.Set("search", s)
	}
	if f.Cuisine != "" {
		params.Set("cuisine", string(f.Cuisine))
	}
	if f.PriceRange != "" {
		params.Set("priceRange", string(f.PriceRange))
	}

	var result listResponse
	if err := c.getJSON(ctx, c.baseURL+"?"+params.Encode(), &result); err != nil {
		c.logger.Error("list restaurants", "page", f.Page, "err", err)
		return model.Page{}, ErrFetchRestaurants
	}

	meta := result.Meta
	meta.Limit = cmp.Or(meta.Limit, f.Limit)
	if want := model.TotalPages(meta.Total, meta.Limit); meta.TotalPages != want {
		c.logger.Warn("inconsistent page count", "total", meta.Total, "limit", meta.Limit,
			"totalPages", meta.TotalPages, "computed", want)
		meta.TotalPages = want
	}
	if result.Data == nil {
		result.Data = []model.Restaurant{}
	}
	return model.Page{Data: result.Data, Meta: meta}, nil
}

// Get fetches a single restaurant by id.
func (c *Client) Get(ctx context.Context, id string) (model.Restaurant, error) {
	if strings.TrimSpace(id) == "" {
		return model.Restaurant{}, ErrLoadDetails
	}

	var raw json.RawMessage
	if err := c.getJSON(ctx, c.baseURL+"/"+url.PathEscape(id), &raw); err != nil {
		c.logger.Error("get restaurant", "id", id, "err", err)
		return model.Restaurant{}, ErrLoadDetails
	}

	r, err := decodeRestaurant(raw)
	if err != nil {
		c.logger.Error("get restaurant", "id", id, "err", err)
		return model.Restaurant{}, ErrLoadDetails
	}
	return r, nil
}

// decodeRestaurant accepts a bare restaurant or one wrapped in {"data": ...}.
func decodeRestaurant(raw json.RawMessage) (model.Restaurant, error) {
	var wrapped struct {
		Data *model.Restaurant `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Data != nil {
		return *wrapped.Data, nil
	}
	var r model.Restaurant
	if err := json.Unmarshal(raw, &r); err != nil {
		return model.Restaurant{}, fmt.Errorf("JSON decode error: %w", err)
	}
	if r.ID == "" {
		return model.Restaurant{}, errors.New("response has no restaurant")
	}
	return r, nil
}

// Create submits a new restaurant. It makes exactly one attempt.
func (c *Client) Create(ctx context.Context, r model.NewRestaurant) (model.Restaurant, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return model.Restaurant{}, fmt.Errorf("encode restaurant: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return model.Restaurant{}, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("create restaurant", "err", err)
		return model.Restaurant{}, ErrNoResponse
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		// A body that is not JSON falls through to the status message.
		_ = json.NewDecoder(resp.Body).Decode(&e)
		msg := e.Message
		if msg == "" {
			msg = fmt.Sprintf("Failed with status %d.", resp.StatusCode)
		}
		c.logger.Warn("create rejected", "status", resp.StatusCode, "message", msg)
		return model.Restaurant{}, &APIError{Status: resp.StatusCode, Message: msg}
	}

	var result createResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.Restaurant{}, fmt.Errorf("JSON decode error: %w", err)
	}
	c.logger.Info("restaurant created", "id", result.Restaurant.ID)
	return result.Restaurant, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("JSON decode error: %w", err)
	}
	return nil
}
