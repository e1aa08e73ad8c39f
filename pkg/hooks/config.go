// Package hooks runs user commands around pz exports. Hooks live in
// .pz/hooks.yaml:
//
//	hooks:
//	  pre-export:
//	    - name: lint
//	      command: ./check.sh
//	      timeout: 5s
//	  post-export:
//	    - command: rsync -a $PZ_EXPORT_PATH host:/srv/
//	      env:
//	        RSYNC_RSH: ${HOME}/bin/ssh-wrap
//
// A failing pre-export hook cancels the export. Post-export hooks all run;
// their failures are reported afterwards.
package hooks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Phase names the point of the export a hook is attached to.
type Phase string

const (
	PreExport  Phase = "pre-export"
	PostExport Phase = "post-export"
)

// Policy decides whether a failed hook is an error.
type Policy string

const (
	Fail     Policy = "fail"
	Continue Policy = "continue"
)

// DefaultTimeout applies to hooks without an explicit timeout.
const DefaultTimeout = 30 * time.Second

// Duration decodes "5s" style durations as well as bare seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = 0
		return nil
	}
	if v, err := time.ParseDuration(raw); err == nil {
		*d = Duration(v)
		return nil
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid timeout %q", raw)
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// Hook is one configured command.
type Hook struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	OnError Policy            `yaml:"on_error,omitempty"`
}

// Config lists the hooks per phase, in run order.
type Config struct {
	PreExport  []Hook `yaml:"pre-export,omitempty"`
	PostExport []Hook `yaml:"post-export,omitempty"`
}

// For returns the hooks attached to p.
func (c *Config) For(p Phase) []Hook {
	if c == nil {
		return nil
	}
	switch p {
	case PreExport:
		return c.PreExport
	case PostExport:
		return c.PostExport
	}
	return nil
}

// Empty reports whether no hook is configured.
func (c *Config) Empty() bool {
	return c == nil || len(c.PreExport)+len(c.PostExport) == 0
}

// ConfigPath returns the hooks file for a project directory.
func ConfigPath(projectDir string) string {
	return filepath.Join(projectDir, ".pz", "hooks.yaml")
}

// Load reads the hooks file of projectDir. A missing file yields an empty
// Config. Hooks with a blank command are dropped and reported as warnings.
func Load(projectDir string) (*Config, []string, error) {
	path := ConfigPath(projectDir)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading hooks config: %w", err)
	}

	var doc struct {
		Hooks Config `yaml:"hooks"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var warnings []string
	cfg := &doc.Hooks
	cfg.PreExport = normalize(cfg.PreExport, PreExport, Fail, &warnings)
	cfg.PostExport = normalize(cfg.PostExport, PostExport, Continue, &warnings)
	return cfg, warnings, nil
}

func normalize(in []Hook, phase Phase, policy Policy, warnings *[]string) []Hook {
	out := in[:0]
	for i, h := range in {
		if strings.TrimSpace(h.Command) == "" {
			*warnings = append(*warnings, fmt.Sprintf("%s hook %d has empty command; skipping", phase, i+1))
			continue
		}
		if h.Name == "" {
			h.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		if h.Timeout <= 0 {
			h.Timeout = Duration(DefaultTimeout)
		}
		if h.OnError == "" {
			h.OnError = policy
		}
		out = append(out, h)
	}
	return out
}

// ExportContext describes the export the hooks run around. It reaches the
// commands as PZ_* environment variables.
type ExportContext struct {
	ExportPaths []string
	Formats     []string
	NodeCount   int
	Focus       string
	Timestamp   time.Time
}

// ToEnv renders the context as KEY=value pairs.
func (c ExportContext) ToEnv() []string {
	return []string{
		"PZ_EXPORT_PATH=" + strings.Join(c.ExportPaths, ","),
		"PZ_EXPORT_FORMAT=" + strings.Join(c.Formats, ","),
		"PZ_NODE_COUNT=" + strconv.Itoa(c.NodeCount),
		"PZ_FOCUS=" + c.Focus,
		"PZ_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}
