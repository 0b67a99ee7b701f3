package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultCloudinaryBase is the Cloudinary upload API root.
const DefaultCloudinaryBase = "https://api.cloudinary.com/v1_1"

var (
	errUploadFailed     = errors.New("image upload failed")
	errMissingSecureURL = errors.New("upload response missing secure URL")
)

// Cloudinary performs unsigned uploads with an upload preset.
type Cloudinary struct {
	baseURL    string
	cloudName  string
	preset     string
	httpClient *http.Client
}

// NewCloudinary creates an unsigned Cloudinary uploader. baseURL may be empty.
func NewCloudinary(baseURL, cloudName, preset string, httpClient *http.Client) *Cloudinary {
	if baseURL == "" {
		baseURL = DefaultCloudinaryBase
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Cloudinary{
		baseURL:    strings.TrimRight(baseURL, "/"),
		cloudName:  strings.TrimSpace(cloudName),
		preset:     strings.TrimSpace(preset),
		httpClient: httpClient,
	}
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends the file at path and returns its secure URL.
func (c *Cloudinary) Upload(ctx context.Context, path string) (string, error) {
	if c.cloudName == "" || c.preset == "" {
		return "", fmt.Errorf("%w: set CLOUDINARY_CLOUD_NAME and CLOUDINARY_UPLOAD_PRESET", ErrNotConfigured)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := mw.WriteField("upload_preset", c.preset); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s/image/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &buf)
	if err != nil {
		return "", fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	var result cloudinaryResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && result.Error != nil && result.Error.Message != "" {
			return "", errors.New(result.Error.Message)
		}
		return "", errUploadFailed
	}
	if decodeErr != nil || result.SecureURL == "" {
		return "", errMissingSecureURL
	}
	return result.SecureURL, nil
}
