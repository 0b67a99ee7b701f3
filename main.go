package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"grubmap/cmd"
	"grubmap/internal/api"
	"grubmap/internal/db"
	"grubmap/internal/geolocate"
	"grubmap/internal/imagery"
	"grubmap/internal/ui"
	"grubmap/internal/upload"

	tea "github.com/charmbracelet/bubbletea"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	// Parse CLI flags
	config, err := cmd.ParseFlags(version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if config.ShowVersion {
		fmt.Println("grubmap", version)
		return
	}

	// The terminal belongs to the TUI, so logs go to a file.
	logFile, err := os.OpenFile(config.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: config.LogLevel}))
	logger.Info("starting", "version", version, "api", config.APIURL)

	httpClient := &http.Client{Timeout: config.HTTPTimeout}

	// Image uploads
	var uploader upload.Uploader
	switch strings.ToLower(config.UploadBackend) {
	case "s3":
		uploader = upload.NewS3(upload.S3Config{
			Endpoint:        config.S3.Endpoint,
			Bucket:          config.S3.Bucket,
			AccessKeyID:     config.S3.AccessKeyID,
			SecretAccessKey: config.S3.SecretAccessKey,
			PublicURL:       config.S3.PublicURL,
			Region:          config.S3.Region,
		})
	default:
		if config.Cloudinary.CloudName == "" || config.Cloudinary.UploadPreset == "" {
			fmt.Fprintln(os.Stderr, "ℹ  No Cloudinary settings — image file uploads disabled")
		}
		uploader = upload.NewCloudinary("", config.Cloudinary.CloudName, config.Cloudinary.UploadPreset, nil)
	}

	// Location
	locator, err := geolocate.FromSetting(config.Location, config.GeoIPURL, httpClient)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	location := geolocate.NewSource(locator, geolocate.Options{Timeout: 5 * time.Second})

	// Open database
	database, err := db.Open(config.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	deps := ui.Deps{
		Restaurants: api.NewClient(config.APIURL, httpClient, logger),
		Uploader:    uploader,
		Location:    location,
		Imagery:     imagery.NewFetcher(config.TileURL, "grubmap/"+version, httpClient),
		DB:          database,
		Logger:      logger,
		Terminal:    ui.DetectTerminalCapabilities(),
	}

	// Create and run Bubble Tea app
	p := tea.NewProgram(ui.New(deps), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		logger.Error("program exited", "err", err)
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}
