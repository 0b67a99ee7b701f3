package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TablePrefs stores per-table UI preferences.
type TablePrefs struct {
	HiddenColumns []string `json:"hidden_columns"`
	ActiveColumn  string   `json:"active_column"`
}

// UIPreferences stores persisted app preferences.
type UIPreferences struct {
	Explore TablePrefs `json:"explore"`
	Recent  TablePrefs `json:"recent"`
}

func defaultPrefsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".grubmap", "ui_prefs.json"), nil
}

func resolvePrefsPath(override string) string {
	if override != "" {
		return override
	}
	path, err := defaultPrefsPath()
	if err != nil {
		return "-"
	}
	return path
}

func loadUIPreferences(path string) UIPreferences {
	if path == "-" {
		return UIPreferences{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return UIPreferences{}
	}

	var prefs UIPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return UIPreferences{}
	}
	return prefs
}

func saveUIPreferences(path string, prefs UIPreferences) error {
	if path == "-" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create prefs dir: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	return nil
}
