package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"grubmap/internal/geolocate"
	"grubmap/internal/imagery"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNoAPIURL is returned when no API base URL is configured anywhere.
var ErrNoAPIURL = errors.New("no API URL configured: set API_URL or pass -api")

// CloudinaryConfig holds unsigned upload settings.
type CloudinaryConfig struct {
	CloudName    string `env:"CLOUD_NAME"`
	UploadPreset string `env:"UPLOAD_PRESET"`
}

// S3Config holds settings for an S3-compatible upload bucket.
type S3Config struct {
	Endpoint        string `env:"ENDPOINT"`
	Bucket          string `env:"BUCKET"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	PublicURL       string `env:"PUBLIC_URL"`
	Region          string `env:"REGION" envDefault:"auto"`
}

// Config holds CLI configuration.
type Config struct {
	APIURL        string           `env:"API_URL"`
	DBPath        string           `env:"GRUBMAP_DB"`
	LogLevel      slog.Level       `env:"GRUBMAP_LOG_LEVEL" envDefault:"INFO"`
	HTTPTimeout   time.Duration    `env:"GRUBMAP_HTTP_TIMEOUT" envDefault:"10s"`
	Location      string           `env:"GRUBMAP_LOCATION" envDefault:"auto"`
	GeoIPURL      string           `env:"GRUBMAP_GEOIP_URL"`
	TileURL       string           `env:"GRUBMAP_TILE_URL"`
	UploadBackend string           `env:"GRUBMAP_UPLOAD_BACKEND" envDefault:"cloudinary"`
	Cloudinary    CloudinaryConfig `envPrefix:"CLOUDINARY_"`
	S3            S3Config         `envPrefix:"GRUBMAP_S3_"`

	// ConfigDir holds settings.json, the log file and, by default, the
	// database.
	ConfigDir   string `env:"-"`
	ShowVersion bool   `env:"-"`
}

// LogPath returns where the JSON log is written.
func (c *Config) LogPath() string {
	return filepath.Join(c.ConfigDir, "grubmap.log")
}

// ParseFlags loads .env files and the environment, applies command-line flags
// and merges stored settings, running first-time setup when needed.
func ParseFlags(version string) (*Config, error) {
	// Load .env files first so env-based defaults work with flag parsing.
	// Variables already set in the environment are not overridden.
	for _, path := range []string{".env", ".env.local"} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "ℹ  Ignoring %s: %v\n", path, err)
		}
	}

	config, err := parseConfig(os.Args[1:], version, os.Stderr)
	if err != nil {
		return nil, err
	}
	if config.ShowVersion {
		return config, nil
	}

	if config.ConfigDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		config.ConfigDir = filepath.Join(home, ".grubmap")
	}
	if err := os.MkdirAll(config.ConfigDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	if config.DBPath == "" {
		config.DBPath = filepath.Join(config.ConfigDir, "grubmap.db")
	}

	settings, err := loadSettings(config.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if shouldRunOnboarding(settings, config) {
		settings, err = runOnboarding(config.ConfigDir, settings)
		if err != nil {
			return nil, fmt.Errorf("failed to run onboarding: %w", err)
		}
	}
	settings.applyTo(config)

	if config.APIURL == "" {
		return nil, ErrNoAPIURL
	}
	return config, nil
}

// parseConfig reads the environment into a Config and applies flags from args.
func parseConfig(args []string, version string, output io.Writer) (*Config, error) {
	config, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if config.GeoIPURL == "" {
		config.GeoIPURL = geolocate.DefaultGeoIPURL
	}
	if config.TileURL == "" {
		config.TileURL = imagery.DefaultTileURL
	}

	fs := flag.NewFlagSet("grubmap", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "grubmap %s\n\nUsage: grubmap [flags]\n\n", version)
		fs.PrintDefaults()
	}
	fs.StringVar(&config.APIURL, "api", config.APIURL, "Restaurant API base URL (or set API_URL)")
	fs.StringVar(&config.DBPath, "db", config.DBPath, "Path to SQLite database file (default: ~/.grubmap/grubmap.db)")
	fs.StringVar(&config.Location, "location", config.Location, `Location source: "auto", "off", "none" or "<lat>,<lon>"`)
	fs.BoolVar(&config.ShowVersion, "version", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	config.APIURL = strings.TrimRight(strings.TrimSpace(config.APIURL), "/")
	if config.DBPath != "" {
		config.ConfigDir = filepath.Dir(config.DBPath)
	}
	return &config, nil
}
