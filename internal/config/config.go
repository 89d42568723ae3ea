package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

var (
	ErrNoConfig            = errors.New("config file not found")
	ErrNoBaseURL           = errors.New("base_url not set in config")
	ErrInvalidJSON         = errors.New("invalid config JSON")
	ErrInvalidExportFormat = errors.New("export_format must be \"json\", \"markdown\", or \"yaml\"")
)

// Config holds the global ragchat configuration.
type Config struct {
	BaseURL               string `json:"base_url"`
	DropDir               string `json:"drop_dir"`                // Watched drop directory; empty disables the watcher
	DropSettleMS          *int   `json:"drop_settle_ms"`          // Burst window grouping dropped files into one gesture (default: 500)
	ExportFormat          string `json:"export_format"`           // Default transcript format for /save (default: "markdown")
	RequestTimeoutSeconds *int   `json:"request_timeout_seconds"` // Timeout for non-streaming calls (default: 30)
}

// Load reads the config from ~/.config/ragchat/config.json.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(homeDir, ".config", "ragchat", "config.json")
	return LoadFrom(configPath)
}

// LoadFrom reads the config from a specific path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoConfig
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, ErrInvalidJSON
	}

	if cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}

	// Set defaults
	if cfg.DropSettleMS == nil {
		ms := 500
		cfg.DropSettleMS = &ms
	}
	if cfg.ExportFormat == "" {
		cfg.ExportFormat = "markdown"
	}
	if cfg.RequestTimeoutSeconds == nil {
		s := 30
		cfg.RequestTimeoutSeconds = &s
	}
	switch cfg.ExportFormat {
	case "json", "markdown", "md", "yaml":
		// valid
	default:
		return nil, ErrInvalidExportFormat
	}

	return &cfg, nil
}
