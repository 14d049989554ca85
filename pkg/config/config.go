// Package config handles loading and saving dashboard configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/titanic/config.yaml
//   - State:   ~/.local/state/titanic/ (debug log)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const appName = "titanic"

// DataConfig selects the dataset.
type DataConfig struct {
	Path        string `yaml:"path,omitempty"`         // CSV, TSV or SQLite file
	SQLiteTable string `yaml:"sqlite_table,omitempty"` // Table read from SQLite sources
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	PreviewRows int     `yaml:"preview_rows,omitempty"` // Rows in the filtered preview
	ShowRaw     bool    `yaml:"show_raw,omitempty"`     // Start with the raw table visible
	FareStep    float64 `yaml:"fare_step,omitempty"`    // Fare slider increment
}

// ChartsConfig tunes chart computation.
type ChartsConfig struct {
	AgeBins int `yaml:"age_bins,omitempty"` // 0 picks bins automatically
}

// ExportConfig sets the defaults for the export key and --export.
type ExportConfig struct {
	Path   string `yaml:"path,omitempty"`
	Format string `yaml:"format,omitempty"` // svg or png; empty infers from Path
}

// Config is the top-level configuration.
type Config struct {
	Data   DataConfig   `yaml:"data,omitempty"`
	UI     UIConfig     `yaml:"ui,omitempty"`
	Charts ChartsConfig `yaml:"charts,omitempty"`
	Export ExportConfig `yaml:"export,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Data: DataConfig{
			SQLiteTable: "passengers",
		},
		UI: UIConfig{
			PreviewRows: 5,
			FareStep:    1.0,
		},
		Export: ExportConfig{
			Path: "titanic_charts.svg",
		},
	}
}

// ConfigDir returns the XDG config directory.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback, appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist. On a parse error the
// defaults are returned alongside the error.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}

	cfg.Data.Path = expandHome(cfg.Data.Path)
	cfg.Export.Path = expandHome(cfg.Export.Path)
	cfg.Export.Format = strings.ToLower(strings.TrimSpace(cfg.Export.Format))
	cfg.normalize()

	return cfg, nil
}

// normalize replaces unusable values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.UI.PreviewRows <= 0 {
		c.UI.PreviewRows = def.UI.PreviewRows
	}
	if c.UI.FareStep <= 0 {
		c.UI.FareStep = def.UI.FareStep
	}
	if c.Charts.AgeBins < 0 {
		c.Charts.AgeBins = 0
	}
	if strings.TrimSpace(c.Data.SQLiteTable) == "" {
		c.Data.SQLiteTable = def.Data.SQLiteTable
	}
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
