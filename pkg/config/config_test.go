package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Layout.Diameter != 960 || cfg.Layout.Margin != 20 || cfg.Layout.Padding != 15 {
		t.Errorf("unexpected layout defaults: %+v", cfg.Layout)
	}
	if cfg.Zoom.Duration != 750*time.Millisecond {
		t.Errorf("expected 750ms duration, got %v", cfg.Zoom.Duration)
	}
	if cfg.Zoom.Extent.Min != 1 || cfg.Zoom.Extent.Max != 100 {
		t.Errorf("expected extent [1, 100], got %+v", cfg.Zoom.Extent)
	}
	if cfg.Bookmarks == nil {
		t.Error("expected bookmarks map to be initialized")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Layout.Diameter != 960 {
		t.Errorf("expected default config, got diameter %v", cfg.Layout.Diameter)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
source:
  url: https://example.com/tree.json
  headers:
    secret-key: abc

datasets:
  - name: local
    path: ~/data/tree.json
  - name: remote
    url: https://example.com/other.json

bookmarks:
  1: A/a2
  2: B

layout:
  padding: 5

zoom:
  duration: 300ms
  extent:
    min: 1
    max: 20
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Source.URL != "https://example.com/tree.json" || cfg.Source.Headers["secret-key"] != "abc" {
		t.Errorf("unexpected source: %+v", cfg.Source)
	}
	if len(cfg.Datasets) != 2 {
		t.Fatalf("expected 2 datasets, got %d", len(cfg.Datasets))
	}
	// Path should have ~ expanded
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "data/tree.json"); cfg.Datasets[0].Source.Path != want {
		t.Errorf("expected expanded path %q, got %q", want, cfg.Datasets[0].Source.Path)
	}
	if cfg.Datasets[1].Source.URL != "https://example.com/other.json" {
		t.Errorf("inline source not decoded: %+v", cfg.Datasets[1])
	}
	if cfg.Bookmarks[1] != "A/a2" || cfg.Bookmarks[2] != "B" {
		t.Errorf("unexpected bookmarks: %v", cfg.Bookmarks)
	}

	// Unset fields keep their defaults.
	if cfg.Layout.Padding != 5 || cfg.Layout.Diameter != 960 {
		t.Errorf("unexpected layout: %+v", cfg.Layout)
	}
	if cfg.Zoom.Duration != 300*time.Millisecond || cfg.Zoom.Extent.Max != 20 {
		t.Errorf("unexpected zoom: %+v", cfg.Zoom)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFrom_RejectsBadValues(t *testing.T) {
	bad := []string{
		"layout:\n  diameter: -1\n",
		"layout:\n  padding: -3\n",
		"layout:\n  margin: 2000\n",
		"zoom:\n  extent:\n    min: 0\n    max: 10\n",
		"zoom:\n  extent:\n    min: 5\n    max: 2\n",
	}
	for _, content := range bad {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFrom(path); err == nil {
			t.Errorf("expected validation error for %q", content)
		}
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Source = SourceConfig{Path: "/data/tree.json"}
	cfg.Datasets = []Dataset{{Name: "d1", Source: SourceConfig{URL: "https://x/y"}}}
	cfg.SetBookmark(3, "A")
	cfg.Zoom.Duration = time.Second

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}

	if loaded.Source.Path != "/data/tree.json" {
		t.Errorf("expected source path, got %+v", loaded.Source)
	}
	if len(loaded.Datasets) != 1 || loaded.Datasets[0].Source.URL != "https://x/y" {
		t.Errorf("unexpected datasets: %+v", loaded.Datasets)
	}
	if loaded.Bookmarks[3] != "A" {
		t.Errorf("expected bookmark 3 = 'A', got %q", loaded.Bookmarks[3])
	}
	if loaded.Zoom.Duration != time.Second {
		t.Errorf("expected 1s duration, got %v", loaded.Zoom.Duration)
	}
}

func TestSetSource(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Datasets = []Dataset{{Name: "Local", Source: SourceConfig{Path: "/d/local.json"}}}
	cfg.Source.Headers = map[string]string{SecretKeyHeader: "k"}

	cfg.SetSource("https://example.com/a.json")
	if cfg.Source.URL != "https://example.com/a.json" || cfg.Source.Path != "" {
		t.Errorf("URL not set: %+v", cfg.Source)
	}
	if cfg.Source.Headers[SecretKeyHeader] != "k" {
		t.Error("headers should survive a location change")
	}

	cfg.SetSource("./tree.json")
	if cfg.Source.Path != "./tree.json" || cfg.Source.URL != "" {
		t.Errorf("path not set: %+v", cfg.Source)
	}

	// Dataset names match case-insensitively.
	cfg.SetSource("local")
	if cfg.Source.Path != "/d/local.json" {
		t.Errorf("dataset not selected: %+v", cfg.Source)
	}
	if cfg.Source.Headers[SecretKeyHeader] != "k" {
		t.Error("dataset without headers should keep configured headers")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvSource, "https://example.com/env.json")
	t.Setenv(EnvSecretKey, "from-env")

	cfg := DefaultConfig()
	cfg.Source.Path = "/ignored.json"
	cfg.ApplyEnv()

	if cfg.Source.URL != "https://example.com/env.json" || cfg.Source.Path != "" {
		t.Errorf("PZ_SOURCE not applied: %+v", cfg.Source)
	}
	if cfg.Source.Headers[SecretKeyHeader] != "from-env" {
		t.Errorf("PZ_SECRET_KEY not applied: %+v", cfg.Source.Headers)
	}
}

func TestLoad_UsesXDGAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvSource, "")
	t.Setenv(EnvSecretKey, "")

	cfg := DefaultConfig()
	cfg.Source.Path = "/from/file.json"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "packzoom", "config.yaml")); err != nil {
		t.Fatalf("config not written under XDG dir: %v", err)
	}

	t.Setenv(EnvSecretKey, "xyz")
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Source.Path != "/from/file.json" || loaded.Source.Headers[SecretKeyHeader] != "xyz" {
		t.Errorf("unexpected source: %+v", loaded.Source)
	}
}

func TestBookmarks(t *testing.T) {
	cfg := Config{}
	cfg.SetBookmark(1, "A/a1")
	if p, ok := cfg.Bookmark(1); !ok || p != "A/a1" {
		t.Errorf("Bookmark(1) = %q,%v", p, ok)
	}
	cfg.SetBookmark(1, "")
	if _, ok := cfg.Bookmark(1); ok {
		t.Error("expected bookmark 1 to be cleared")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		input, want string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"~", home},
		{"/absolute", "/absolute"},
		{"relative", "relative"},
	}
	for _, tt := range tests {
		if got := expandHome(tt.input); got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestConfigDir_XDGOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got := ConfigDir(); got != "/custom/config/packzoom" {
		t.Errorf("expected /custom/config/packzoom, got %q", got)
	}
}
