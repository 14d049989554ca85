package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mehaktrehan/titanic/pkg/debug"
)

// maxSummaryStderr caps the stderr excerpt per failed hook in Summary.
const maxSummaryStderr = 200

// Result records one hook run.
type Result struct {
	Hook     Hook
	Phase    Phase
	Success  bool
	Stdout   string
	Stderr   string
	Err      error
	Duration time.Duration
}

// Executor runs the hooks of a config for one export.
type Executor struct {
	config  *Config
	export  ExportContext
	results []Result
}

// NewExecutor binds cfg to one export.
func NewExecutor(cfg *Config, export ExportContext) *Executor {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Executor{config: cfg, export: export}
}

// Prepare loads the hooks for projectDir and returns an executor, or nil when
// disabled is set or nothing is configured.
func Prepare(projectDir string, export ExportContext, disabled bool) (*Executor, error) {
	if disabled {
		return nil, nil
	}
	cfg, warnings, err := Load(projectDir)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		debug.Log("hooks: %s", w)
	}
	if cfg.Empty() {
		return nil, nil
	}
	return NewExecutor(cfg, export), nil
}

// RunPreExport runs pre-export hooks in order and stops at the first failure
// whose policy is fail.
func (e *Executor) RunPreExport(ctx context.Context) error {
	for _, h := range e.config.For(PreExport) {
		r := e.run(ctx, PreExport, h)
		if !r.Success && h.OnError == OnErrorFail {
			return fmt.Errorf("pre-export hook %q failed: %w", h.Name, r.Err)
		}
	}
	return nil
}

// RunPostExport runs every post-export hook and returns the first failure
// whose policy is fail.
func (e *Executor) RunPostExport(ctx context.Context) error {
	var first error
	for _, h := range e.config.For(PostExport) {
		r := e.run(ctx, PostExport, h)
		if !r.Success && h.OnError == OnErrorFail && first == nil {
			first = fmt.Errorf("post-export hook %q failed: %w", h.Name, r.Err)
		}
	}
	return first
}

// Results returns the runs so far, in order.
func (e *Executor) Results() []Result {
	return e.results
}

func (e *Executor) run(ctx context.Context, phase Phase, h Hook) Result {
	ctx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", h.Command)
	cmd.Env = append(os.Environ(), e.export.Env()...)
	for k, v := range h.Env {
		cmd.Env = append(cmd.Env, k+"="+os.ExpandEnv(v))
	}
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r := Result{
		Hook:     h,
		Phase:    phase,
		Success:  err == nil,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Err:      err,
		Duration: time.Since(start),
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		r.Success = false
		r.Err = fmt.Errorf("timed out after %v", h.Timeout)
	}
	debug.Log("hook %s/%s: success=%v in %v", phase, h.Name, r.Success, r.Duration)

	e.results = append(e.results, r)
	return r
}

// Summary describes the runs for display; empty when nothing ran.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}
	var ok, failed int
	var sb strings.Builder
	for _, r := range e.results {
		if r.Success {
			ok++
			continue
		}
		failed++
		fmt.Fprintf(&sb, "\n  %s %s: %v", r.Phase, r.Hook.Name, r.Err)
		if r.Stderr != "" {
			fmt.Fprintf(&sb, "\n    stderr: %s", truncate(r.Stderr, maxSummaryStderr))
		}
	}
	return fmt.Sprintf("Hooks: %d succeeded, %d failed", ok, failed) + sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
