package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/user/bus-explorer-tui/pkg/models"
)

// Config represents application configuration
type Config struct {
	CatalogPath    string `json:"catalogPath,omitempty"`
	LogPath        string `json:"logPath,omitempty"`
	FiltersPath    string `json:"filtersPath,omitempty"`
	MaxCacheSize   int    `json:"maxCacheSize"`
	MaxRenderLines int    `json:"maxRenderLines"`
	PollIntervalMs int    `json:"pollIntervalMs"`
	IdleWindowSec  int    `json:"idleWindowSeconds"`
	VimMode        bool   `json:"vimMode"`
	LogOutput      string `json:"logOutput,omitempty"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		MaxCacheSize:   models.DefaultMaxCacheSize,
		MaxRenderLines: models.DefaultMaxRenderLines,
		PollIntervalMs: int(models.DefaultPollInterval / time.Millisecond),
		IdleWindowSec:  int(models.DefaultIdleWindow / time.Second),
		VimMode:        true,
	}
}

// PollInterval returns the tail poll interval with a 1s floor.
func (c Config) PollInterval() time.Duration {
	d := time.Duration(c.PollIntervalMs) * time.Millisecond
	if d < time.Second {
		return time.Second
	}
	return d
}

// IdleWindow returns the inactivity window after which tailing pauses.
func (c Config) IdleWindow() time.Duration {
	if c.IdleWindowSec <= 0 {
		return models.DefaultIdleWindow
	}
	return time.Duration(c.IdleWindowSec) * time.Second
}

// GetConfigDir returns the XDG config directory for bus-explorer-tui
func GetConfigDir() (string, error) {
	var configDir string

	// Try XDG_CONFIG_HOME first
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		configDir = filepath.Join(xdgHome, "bus-explorer-tui")
	} else {
		// Fall back to ~/.config
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", "bus-explorer-tui")
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}

	return configDir, nil
}

// LoadConfig loads configuration from disk, returns default if file doesn't exist
func LoadConfig() (Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return DefaultConfig(), err
	}

	configPath := filepath.Join(configDir, "config.json")

	// If file doesn't exist, return defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return DefaultConfig(), err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}

	return cfg, nil
}

// SaveConfig saves configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// State represents persistent application state
type State struct {
	LastCatalogPath string    `json:"lastCatalogPath,omitempty"`
	LastLogPath     string    `json:"lastLogPath,omitempty"`
	TimeFilterStart string    `json:"timeFilterStart,omitempty"`
	TimeFilterEnd   string    `json:"timeFilterEnd,omitempty"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// LoadState loads state from disk
func LoadState() (State, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return State{}, err
	}

	statePath := filepath.Join(configDir, "state.json")

	// If file doesn't exist, return empty state
	if _, err := os.Stat(statePath); os.IsNotExist(err) {
		return State{LastUpdated: time.Now()}, nil
	}

	data, err := os.ReadFile(statePath)
	if err != nil {
		return State{}, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, err
	}

	return state, nil
}

// SaveState saves state to disk
func SaveState(state State) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	state.LastUpdated = time.Now()
	statePath := filepath.Join(configDir, "state.json")

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(statePath, data, 0600)
}
