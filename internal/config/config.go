package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"brushlink/internal/domain"
	"brushlink/internal/eventbus"
)

// Config represents the session configuration
type Config struct {
	Version   int               `toml:"version"`
	Selection SelectionSettings `toml:"selection"`
	Palette   PaletteSettings   `toml:"palette"`
	Bridge    BridgeSettings    `toml:"bridge"`
}

// SelectionSettings controls the default selection policy
type SelectionSettings struct {
	// DefaultMode is the mode groups start in: transient, persistent
	// or dynamic.
	DefaultMode string `toml:"default_mode"`
	// ClearOn lists the event kinds acting as the "off" trigger.
	ClearOn []string `toml:"clear_on"`
	// SlowRenderWarnMs logs renders slower than this; 0 disables.
	SlowRenderWarnMs int `toml:"slow_render_warn_ms"`
	// QueueSize is the per-group event queue depth.
	QueueSize int `toml:"queue_size"`
}

// PaletteSettings controls layer color assignment
type PaletteSettings struct {
	Colors []string `toml:"colors"`
}

// BridgeSettings configures the websocket bridge for remote renderers
type BridgeSettings struct {
	// Listen is the address the bridge serves on; empty disables it.
	Listen string `toml:"listen"`
}

// Service handles configuration management
type Service interface {
	Load() (*Config, error)
	Save(cfg *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(cfg *Config, path string) error
}

// service is the concrete implementation
type service struct {
	filePath string
}

// NewService creates a config service with the default config path.
func NewService() Service {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	dir := filepath.Join(configDir, "brushlink")
	os.MkdirAll(dir, 0755)

	return &service{
		filePath: filepath.Join(dir, "config.toml"),
	}
}

// NewServiceWithPath creates a config service reading a fixed path.
func NewServiceWithPath(path string) Service {
	return &service{filePath: path}
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Selection: SelectionSettings{
			DefaultMode:      string(domain.ModeTransient),
			ClearOn:          []string{string(domain.KindUnhover), string(domain.KindRelayout)},
			SlowRenderWarnMs: 200,
			QueueSize:        256,
		},
	}
}

// Load loads the configuration from the service path.
func (s *service) Load() (*Config, error) {
	return s.LoadFromPath(s.filePath)
}

// LoadFromPath loads the configuration from an explicit path. A
// missing file yields the defaults.
func (s *service) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the service path.
func (s *service) Save(cfg *Config) error {
	return s.SaveToPath(cfg, s.filePath)
}

// SaveToPath writes the configuration to an explicit path.
func (s *service) SaveToPath(cfg *Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the mode and clear-trigger strings.
func (c *Config) Validate() error {
	if _, err := domain.ParseMode(c.Selection.DefaultMode); err != nil {
		return err
	}
	for _, k := range c.Selection.ClearOn {
		switch domain.EventKind(k) {
		case domain.KindHover, domain.KindUnhover, domain.KindClick,
			domain.KindDragSelect, domain.KindRelayout, domain.KindKeys:
		default:
			return fmt.Errorf("unknown clear trigger %q", k)
		}
	}
	return nil
}

// Mode returns the configured default mode.
func (c *Config) Mode() domain.Mode {
	m, err := domain.ParseMode(c.Selection.DefaultMode)
	if err != nil {
		return domain.ModeTransient
	}
	return m
}

// BusConfig converts the settings into an event bus configuration.
func (c *Config) BusConfig() eventbus.Config {
	clearOn := make([]domain.EventKind, 0, len(c.Selection.ClearOn))
	for _, k := range c.Selection.ClearOn {
		clearOn = append(clearOn, domain.EventKind(k))
	}
	return eventbus.Config{
		QueueSize:      c.Selection.QueueSize,
		ClearOn:        clearOn,
		PaletteColors:  c.Palette.Colors,
		SlowRenderWarn: time.Duration(c.Selection.SlowRenderWarnMs) * time.Millisecond,
	}
}
