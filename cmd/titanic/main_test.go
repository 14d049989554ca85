package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mehaktrehan/titanic/pkg/model"
	"github.com/mehaktrehan/titanic/pkg/testutil"
)

// runCLI runs the command against the scenario dataset with an isolated
// config path and returns exit code, stdout and stderr.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	dir := t.TempDir()
	data := testutil.WriteCSV(t, dir, "titanic.csv", testutil.ScenarioTable().Passengers)
	full := append([]string{"--data", data, "--config", filepath.Join(dir, "missing.yaml"), "--no-watch"}, args...)

	var stdout, stderr bytes.Buffer
	code := run(full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "titanic v") {
		t.Errorf("unexpected version output %q", stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--help"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit = %d", code)
	}
	for _, want := range []string{"Usage: titanic", "-robot-render", "-export"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--bogus"}, &stdout, &stderr); code != 2 {
		t.Errorf("exit = %d, want 2", code)
	}
}

func TestRun_RobotRender(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		matched int
		empty   bool
	}{
		{"no filters", nil, 2, false},
		{"sex", []string{"--sex", "female"}, 1, false},
		{"class all", []string{"--class", "All"}, 2, false},
		{"class and port mismatch", []string{"--class", "1", "--embarked", "Q"}, 0, true},
		{"age lower bound only", []string{"--age-min", "25"}, 1, false},
		{"fare upper bound only", []string{"--fare-max", "50"}, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, append([]string{"--robot-render"}, tt.args...)...)
			if code != 0 {
				t.Fatalf("exit = %d, stderr = %s", code, errOut)
			}
			var got struct {
				Matched int  `json:"matched"`
				Total   int  `json:"total"`
				Empty   bool `json:"empty"`
				Charts  any  `json:"charts"`
			}
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("invalid JSON: %v\n%s", err, out)
			}
			if got.Matched != tt.matched || got.Total != 2 || got.Empty != tt.empty {
				t.Errorf("got matched=%d total=%d empty=%v, want matched=%d total=2 empty=%v",
					got.Matched, got.Total, got.Empty, tt.matched, tt.empty)
			}
			if tt.empty != (got.Charts == nil) {
				t.Errorf("charts present = %v with empty = %v", got.Charts != nil, tt.empty)
			}
		})
	}
}

func TestRun_RobotDomain(t *testing.T) {
	code, out, errOut := runCLI(t, "--robot-domain")
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, errOut)
	}
	var got struct {
		Rows    int      `json:"rows"`
		Sexes   []string `json:"sexes"`
		Classes []string `json:"classes"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Rows != 2 {
		t.Errorf("rows = %d, want 2", got.Rows)
	}
	if strings.Join(got.Sexes, ",") != "female,male" {
		t.Errorf("sexes = %v", got.Sexes)
	}
	if strings.Join(got.Classes, ",") != "1,3" {
		t.Errorf("classes = %v", got.Classes)
	}
}

func TestRun_InvalidRanges(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"not a number", []string{"--age-min", "abc"}, "--age-min"},
		{"nan", []string{"--fare-max", "NaN"}, "--fare-max"},
		{"inverted", []string{"--age-min", "40", "--age-max", "10"}, "greater than"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, append([]string{"--robot-render"}, tt.args...)...)
			if code != 2 {
				t.Fatalf("exit = %d, want 2", code)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr %q does not mention %q", errOut, tt.want)
			}
		})
	}
}

func TestRun_MissingDataset(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := run([]string{"--data", filepath.Join(dir, "nope.csv"), "--config", filepath.Join(dir, "c.yaml"), "--robot-render"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "dataset not found") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("nothing should be written to stdout, got %q", stdout.String())
	}
}

func TestRun_BadConfigIsWarning(t *testing.T) {
	dir := t.TempDir()
	data := testutil.WriteCSV(t, dir, "titanic.csv", testutil.ScenarioTable().Passengers)
	cfg := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfg, []byte("ui: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"--data", data, "--config", cfg, "--robot-domain"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "Warning") {
		t.Errorf("expected a config warning, got %q", stderr.String())
	}
}

func TestRun_ExportSnapshot(t *testing.T) {
	out := filepath.Join(t.TempDir(), "charts")
	code, stdout, errOut := runCLI(t, "--export", out, "--sex", "female")
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, errOut)
	}
	want := out + ".svg"
	if strings.TrimSpace(stdout) != want {
		t.Errorf("printed path %q, want %q", stdout, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	if !bytes.Contains(data, []byte("Sex=female")) {
		t.Error("snapshot subtitle should name the active filter")
	}
}

func TestRun_ExportPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "charts.png")
	if code, _, errOut := runCLI(t, "--export", out); code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, errOut)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("expected PNG signature")
	}
}

func TestRun_ExportDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "panels")
	code, stdout, errOut := runCLI(t, "--export-dir", dir)
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, errOut)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 paths, got %q", stdout)
	}
	for _, p := range lines {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("panel %s not written: %v", p, err)
		}
	}
}

func TestRun_ExportEmptyRefused(t *testing.T) {
	out := filepath.Join(t.TempDir(), "charts.svg")
	code, _, errOut := runCLI(t, "--export", out, "--class", "1", "--embarked", "Q")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(errOut, "No data matches") {
		t.Errorf("stderr = %q", errOut)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no file should be written for an empty selection")
	}
}

func TestParseRange(t *testing.T) {
	b := model.Bounds{Min: 0.42, Max: 80, Valid: true}

	r, err := parseRange("age", "", "", b)
	if err != nil || r != nil {
		t.Fatalf("no flags should give nil range, got %v, %v", r, err)
	}

	r, err = parseRange("age", "10", "", b)
	if err != nil {
		t.Fatal(err)
	}
	if r.Low != 10 || r.High != 80 {
		t.Errorf("got %v, want 10–80", r)
	}

	r, err = parseRange("age", "", "30", model.Bounds{})
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(r.Low, -1) || r.High != 30 {
		t.Errorf("missing domain should leave the open side unbounded, got %v", r)
	}
}

func TestRun_ExportHooks(t *testing.T) {
	project := t.TempDir()
	t.Chdir(project)
	if err := os.MkdirAll(filepath.Join(project, ".titanic"), 0o755); err != nil {
		t.Fatal(err)
	}
	marker := filepath.Join(project, "hook.out")
	hooksYAML := "hooks:\n  post-export:\n    - name: record\n      command: echo \"$TITANIC_MATCHED $TITANIC_EXPORT_FORMAT\" > " + marker + "\n"
	if err := os.WriteFile(filepath.Join(project, ".titanic", "hooks.yaml"), []byte(hooksYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(project, "charts.png")
	if code, _, errOut := runCLI(t, "--export", out, "--sex", "male"); code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, errOut)
	}
	got, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("post-export hook did not run: %v", err)
	}
	if strings.TrimSpace(string(got)) != "1 png" {
		t.Errorf("hook saw %q", got)
	}

	os.Remove(marker)
	if code, _, _ := runCLI(t, "--export", out, "--no-hooks"); code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("--no-hooks should skip hooks")
	}
}

func TestRun_PreExportHookCancels(t *testing.T) {
	project := t.TempDir()
	t.Chdir(project)
	if err := os.MkdirAll(filepath.Join(project, ".titanic"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(project, ".titanic", "hooks.yaml"),
		[]byte("hooks:\n  pre-export:\n    - name: gate\n      command: exit 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(project, "charts.svg")
	code, _, errOut := runCLI(t, "--export", out)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(errOut, "Export cancelled") || !strings.Contains(errOut, "0 succeeded, 1 failed") {
		t.Errorf("stderr = %q", errOut)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("snapshot written despite failing pre-export hook")
	}
}

func TestRun_NonFiniteDatasetFailsAtStartup(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "titanic.csv")
	content := "Sex,Pclass,Embarked,Age,Fare,Survived\nfemale,1,S,29,Infinity,1\nmale,3,Q,22,8,0\n"
	if err := os.WriteFile(data, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"--data", data, "--config", filepath.Join(dir, "c.yaml"), "--robot-render"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), `"Fare"`) {
		t.Errorf("stderr should name the column, got %q", stderr.String())
	}
}
