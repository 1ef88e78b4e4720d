// Package config handles loading and saving pv configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/pv/config.yaml
//   - State:   ~/.local/state/pv/ (debug logs, last session)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/planetarium/pkg/model"
	"github.com/vanderheijden86/planetarium/pkg/store"
)

// VisualConfig mirrors model.VisualSettings with optional fields so a
// config file can override only some of them. Unset fields fall back to
// the built-in defaults.
type VisualConfig struct {
	ShowLabels        *bool    `yaml:"show_labels,omitempty"`
	ConnectionOpacity *float64 `yaml:"connection_opacity,omitempty"`
	PlanetSize        *float64 `yaml:"planet_size,omitempty"`
	GlowIntensity     *float64 `yaml:"glow_intensity,omitempty"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	FPS        int    `yaml:"fps,omitempty"`         // Render ticks per second (default 30)
	MouseMode  string `yaml:"mouse_mode,omitempty"`  // "cell" or "all" motion tracking
	ThemeName  string `yaml:"theme,omitempty"`       // Reserved for future palettes
	PickRadius int    `yaml:"pick_radius,omitempty"` // Hit-test radius in cells (default 2)
}

// CrewConfig points at the optional crew optimization service.
type CrewConfig struct {
	URL     string `yaml:"url,omitempty"`
	Timeout string `yaml:"timeout,omitempty"` // Go duration string, default 10s
}

// Config is the top-level configuration for pv.
type Config struct {
	Visual VisualConfig `yaml:"visual,omitempty"`
	UI     UIConfig     `yaml:"ui,omitempty"`
	Crew   CrewConfig   `yaml:"crew,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			FPS:        30,
			MouseMode:  "cell",
			PickRadius: 2,
		},
	}
}

// ConfigDir returns the XDG config directory for pv.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pv")
}

// StateDir returns the XDG state directory for pv.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "pv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "pv")
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
// Returns DefaultConfig if the file doesn't exist.
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
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.UI.FPS <= 0 {
		cfg.UI.FPS = 30
	}
	if cfg.UI.PickRadius <= 0 {
		cfg.UI.PickRadius = 2
	}
	if cfg.UI.MouseMode == "" {
		cfg.UI.MouseMode = "cell"
	}

	return cfg, nil
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
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
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

// VisualPatch converts the visual section into a store patch. Only fields
// present in the file are included, so applying the patch preserves the
// store's all-or-nothing validation without clobbering runtime tweaks.
func (c Config) VisualPatch() store.VisualSettingsPatch {
	return store.VisualSettingsPatch{
		ShowLabels:        c.Visual.ShowLabels,
		ConnectionOpacity: c.Visual.ConnectionOpacity,
		PlanetSize:        c.Visual.PlanetSize,
		GlowIntensity:     c.Visual.GlowIntensity,
	}
}

// ResolvedVisualSettings returns the built-in defaults overlaid with the
// config file's visual section, without validation. Used for display only;
// the store remains the validating owner.
func (c Config) ResolvedVisualSettings() model.VisualSettings {
	vs := model.DefaultVisualSettings()
	if c.Visual.ShowLabels != nil {
		vs.ShowLabels = *c.Visual.ShowLabels
	}
	if c.Visual.ConnectionOpacity != nil {
		vs.ConnectionOpacity = *c.Visual.ConnectionOpacity
	}
	if c.Visual.PlanetSize != nil {
		vs.PlanetSize = *c.Visual.PlanetSize
	}
	if c.Visual.GlowIntensity != nil {
		vs.GlowIntensity = *c.Visual.GlowIntensity
	}
	return vs
}

// MouseMotionAll reports whether full motion tracking is configured
// (hover tooltips between clicks) as opposed to cell-press tracking only.
func (c Config) MouseMotionAll() bool {
	return strings.EqualFold(c.UI.MouseMode, "all")
}
