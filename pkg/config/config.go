// Package config handles loading and saving packzoom configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/packzoom/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/packzoom/pkg/viewport"

	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvSource    = "PZ_SOURCE"
	EnvSecretKey = "PZ_SECRET_KEY"
)

// SecretKeyHeader is the request header that carries PZ_SECRET_KEY.
const SecretKeyHeader = "secret-key"

// SourceConfig says where a dataset is read from.
type SourceConfig struct {
	URL     string            `yaml:"url,omitempty"`
	Path    string            `yaml:"path,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// IsZero reports whether no location is configured.
func (s SourceConfig) IsZero() bool { return s.URL == "" && s.Path == "" }

// Dataset is a named source that can be picked with --source <name>.
type Dataset struct {
	Name   string       `yaml:"name"`
	Source SourceConfig `yaml:",inline"`
}

// LayoutConfig holds canvas geometry.
type LayoutConfig struct {
	Diameter float64 `yaml:"diameter,omitempty"` // view-box side (default 960)
	Margin   float64 `yaml:"margin,omitempty"`   // canvas is diameter - margin
	Padding  float64 `yaml:"padding,omitempty"`  // gap between circles
}

// ZoomConfig holds transition and manual zoom settings.
type ZoomConfig struct {
	Duration time.Duration        `yaml:"duration,omitempty"`
	Extent   viewport.ScaleExtent `yaml:"extent,omitempty"`
	Step     float64              `yaml:"wheel_step,omitempty"` // zoom factor per wheel notch
}

// UIConfig holds terminal explorer preferences.
type UIConfig struct {
	Labels    bool `yaml:"labels"`               // draw leaf labels
	FrameRate int  `yaml:"frame_rate,omitempty"` // animation frames per second
}

// Config is the top-level configuration for pz.
type Config struct {
	Source    SourceConfig   `yaml:"source,omitempty"`
	Datasets  []Dataset      `yaml:"datasets,omitempty"`
	Bookmarks map[int]string `yaml:"bookmarks,omitempty"` // Number key (1-9) -> focus path
	Layout    LayoutConfig   `yaml:"layout,omitempty"`
	Zoom      ZoomConfig     `yaml:"zoom,omitempty"`
	UI        UIConfig       `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Bookmarks: make(map[int]string),
		Layout: LayoutConfig{
			Diameter: 960,
			Margin:   20,
			Padding:  15,
		},
		Zoom: ZoomConfig{
			Duration: viewport.DefaultDuration,
			Extent:   viewport.DefaultScaleExtent,
			Step:     1.25,
		},
		UI: UIConfig{
			Labels:    true,
			FrameRate: 60,
		},
	}
}

// ConfigDir returns the XDG config directory for pz.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "packzoom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "packzoom")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory and applies
// environment overrides. Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		cfg.ApplyEnv()
		return cfg, nil
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	return cfg, nil
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

	if cfg.Bookmarks == nil {
		cfg.Bookmarks = make(map[int]string)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	cfg.Source.Path = expandHome(cfg.Source.Path)
	for i := range cfg.Datasets {
		cfg.Datasets[i].Source.Path = expandHome(cfg.Datasets[i].Source.Path)
	}

	return cfg, nil
}

// Validate rejects settings the layout or zoom cannot work with.
func (c Config) Validate() error {
	if c.Layout.Diameter <= 0 {
		return fmt.Errorf("layout.diameter must be positive, got %v", c.Layout.Diameter)
	}
	if c.Layout.Margin < 0 || c.Layout.Margin >= c.Layout.Diameter {
		return fmt.Errorf("layout.margin must be in [0, diameter), got %v", c.Layout.Margin)
	}
	if c.Layout.Padding < 0 {
		return fmt.Errorf("layout.padding must not be negative, got %v", c.Layout.Padding)
	}
	if c.Zoom.Duration < 0 {
		return fmt.Errorf("zoom.duration must not be negative, got %v", c.Zoom.Duration)
	}
	if c.Zoom.Extent.Min <= 0 || c.Zoom.Extent.Max < c.Zoom.Extent.Min {
		return fmt.Errorf("zoom.extent must satisfy 0 < min <= max, got [%v, %v]", c.Zoom.Extent.Min, c.Zoom.Extent.Max)
	}
	return nil
}

// ApplyEnv overlays PZ_SOURCE and PZ_SECRET_KEY onto c.
func (c *Config) ApplyEnv() {
	if src := os.Getenv(EnvSource); src != "" {
		c.SetSource(src)
	}
	if key := os.Getenv(EnvSecretKey); key != "" {
		if c.Source.Headers == nil {
			c.Source.Headers = make(map[string]string)
		}
		c.Source.Headers[SecretKeyHeader] = key
	}
}

// SetSource points c at location: a configured dataset name, a URL, or a
// file path. Headers already configured for the source are kept.
func (c *Config) SetSource(location string) {
	if d := c.FindDataset(location); d != nil {
		headers := c.Source.Headers
		c.Source = d.Source
		if len(c.Source.Headers) == 0 {
			c.Source.Headers = headers
		}
		return
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		c.Source.URL, c.Source.Path = location, ""
		return
	}
	c.Source.URL, c.Source.Path = "", expandHome(location)
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

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// FindDataset returns the dataset with the given name, or nil.
func (c Config) FindDataset(name string) *Dataset {
	for i := range c.Datasets {
		if strings.EqualFold(c.Datasets[i].Name, name) {
			return &c.Datasets[i]
		}
	}
	return nil
}

// Bookmark returns the focus path assigned to number key n (1-9).
func (c Config) Bookmark(n int) (string, bool) {
	p, ok := c.Bookmarks[n]
	return p, ok
}

// SetBookmark assigns a focus path to a number key (1-9). An empty path
// clears the key.
func (c *Config) SetBookmark(n int, path string) {
	if c.Bookmarks == nil {
		c.Bookmarks = make(map[int]string)
	}
	if path == "" {
		delete(c.Bookmarks, n)
	} else {
		c.Bookmarks[n] = path
	}
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
