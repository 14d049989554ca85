// Package hooks runs user commands around chart exports. Hooks live in
// .titanic/hooks.yaml under the working directory and run before the image is
// written (pre-export) or after it (post-export).
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Phase is the point in an export at which a hook runs.
type Phase string

const (
	// PreExport runs before the snapshot is written. A failure cancels the export.
	PreExport Phase = "pre-export"
	// PostExport runs after the snapshot is written. A failure is reported only.
	PostExport Phase = "post-export"
)

// On-error policies.
const (
	OnErrorFail     = "fail"
	OnErrorContinue = "continue"
)

// DefaultTimeout bounds a hook without an explicit timeout.
const DefaultTimeout = 30 * time.Second

// Dir and File locate the hooks file relative to the project directory.
const (
	Dir  = ".titanic"
	File = "hooks.yaml"
)

// Hook is one configured command.
type Hook struct {
	Name    string            `yaml:"name" json:"name"`
	Command string            `yaml:"command" json:"command"` // run with sh -c
	Timeout time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"` // values are expanded against the environment
	OnError string            `yaml:"on_error,omitempty" json:"on_error,omitempty"`
}

// Config is the parsed hooks file.
type Config struct {
	Hooks ByPhase `yaml:"hooks" json:"hooks"`
}

// ByPhase groups hooks by the phase they run in.
type ByPhase struct {
	PreExport  []Hook `yaml:"pre-export,omitempty" json:"pre-export,omitempty"`
	PostExport []Hook `yaml:"post-export,omitempty" json:"post-export,omitempty"`
}

// For returns the hooks of phase, or nil for an unknown phase.
func (c *Config) For(phase Phase) []Hook {
	if c == nil {
		return nil
	}
	switch phase {
	case PreExport:
		return c.Hooks.PreExport
	case PostExport:
		return c.Hooks.PostExport
	}
	return nil
}

// Empty reports whether no hook is configured.
func (c *Config) Empty() bool {
	return c == nil || len(c.Hooks.PreExport)+len(c.Hooks.PostExport) == 0
}

// ExportContext describes the export; hooks see it as TITANIC_* variables.
type ExportContext struct {
	Path      string
	Format    string
	Matched   int
	Total     int
	Filters   string
	Timestamp time.Time
}

// Env returns the context as environment assignments.
func (c ExportContext) Env() []string {
	return []string{
		"TITANIC_EXPORT_PATH=" + c.Path,
		"TITANIC_EXPORT_FORMAT=" + c.Format,
		"TITANIC_MATCHED=" + strconv.Itoa(c.Matched),
		"TITANIC_TOTAL=" + strconv.Itoa(c.Total),
		"TITANIC_FILTERS=" + c.Filters,
		"TITANIC_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}

// Path returns the hooks file for projectDir.
func Path(projectDir string) string {
	return filepath.Join(projectDir, Dir, File)
}

// Load reads the hooks file for projectDir. A missing file yields an empty
// config. Hooks without a command are dropped and reported in warnings.
func Load(projectDir string) (cfg *Config, warnings []string, err error) {
	path := Path(projectDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil, nil
		}
		return nil, nil, fmt.Errorf("reading hooks: %w", err)
	}

	cfg = &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Hooks.PreExport, warnings = normalize(cfg.Hooks.PreExport, PreExport, warnings)
	cfg.Hooks.PostExport, warnings = normalize(cfg.Hooks.PostExport, PostExport, warnings)
	return cfg, warnings, nil
}

func normalize(hooks []Hook, phase Phase, warnings []string) ([]Hook, []string) {
	var out []Hook
	for i, h := range hooks {
		if strings.TrimSpace(h.Command) == "" {
			warnings = append(warnings, fmt.Sprintf("%s hook %d has no command; skipping", phase, i+1))
			continue
		}
		if h.Timeout <= 0 {
			h.Timeout = DefaultTimeout
		}
		if h.OnError == "" {
			h.OnError = OnErrorContinue
			if phase == PreExport {
				h.OnError = OnErrorFail
			}
		}
		if h.Name == "" {
			h.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		out = append(out, h)
	}
	return out, warnings
}

// UnmarshalYAML accepts timeouts as Go durations ("5s") or bare seconds.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	type raw struct {
		Name    string            `yaml:"name"`
		Command string            `yaml:"command"`
		Timeout string            `yaml:"timeout,omitempty"`
		Env     map[string]string `yaml:"env,omitempty"`
		OnError string            `yaml:"on_error,omitempty"`
	}
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	*h = Hook{Name: r.Name, Command: r.Command, Env: r.Env, OnError: r.OnError}

	if r.Timeout == "" {
		return nil
	}
	if d, err := time.ParseDuration(r.Timeout); err == nil {
		h.Timeout = d
		return nil
	}
	secs, err := strconv.ParseFloat(r.Timeout, 64)
	if err != nil {
		return fmt.Errorf("invalid timeout %q", r.Timeout)
	}
	h.Timeout = time.Duration(secs * float64(time.Second))
	return nil
}
