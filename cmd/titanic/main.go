package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"

	"github.com/mehaktrehan/titanic/internal/datasource"
	"github.com/mehaktrehan/titanic/pkg/charts"
	"github.com/mehaktrehan/titanic/pkg/config"
	"github.com/mehaktrehan/titanic/pkg/dashboard"
	"github.com/mehaktrehan/titanic/pkg/debug"
	"github.com/mehaktrehan/titanic/pkg/export"
	"github.com/mehaktrehan/titanic/pkg/filter"
	"github.com/mehaktrehan/titanic/pkg/hooks"
	"github.com/mehaktrehan/titanic/pkg/loader"
	"github.com/mehaktrehan/titanic/pkg/metrics"
	"github.com/mehaktrehan/titanic/pkg/model"
	"github.com/mehaktrehan/titanic/pkg/ui"
	"github.com/mehaktrehan/titanic/pkg/version"
	"github.com/mehaktrehan/titanic/pkg/watcher"
)

// AutoCloseEnvVar quits the TUI after the given number of milliseconds.
const AutoCloseEnvVar = "TITANIC_TUI_AUTOCLOSE_MS"

// options is the parsed command line.
type options struct {
	dataPath    string
	configPath  string
	sqliteTable string

	sex      string
	class    string
	embarked string
	ageMin   string
	ageMax   string
	fareMin  string
	fareMax  string
	ageBins  int

	robotRender bool
	robotDomain bool

	exportPath   string
	exportDir    string
	exportFormat string
	exportTitle  string
	exportWizard bool

	noWatch    bool
	noHooks    bool
	cpuProfile string
	help       bool
	version    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var o options
	fs := flag.NewFlagSet("titanic", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.dataPath, "data", "", "Dataset path (.csv, .tsv or SQLite); defaults to $"+loader.DataPathEnvVar+", the config, then "+loader.DefaultDataFile)
	fs.StringVar(&o.configPath, "config", "", "Config file (default: "+config.ConfigPath()+")")
	fs.StringVar(&o.sqliteTable, "sqlite-table", "", "Table to read from a SQLite dataset")

	fs.StringVar(&o.sex, "sex", "", "Sex filter (All, or an observed value)")
	fs.StringVar(&o.class, "class", "", "Passenger class filter (All, 1, 2, 3)")
	fs.StringVar(&o.embarked, "embarked", "", "Port filter (All, S, C, Q, NaN)")
	fs.StringVar(&o.ageMin, "age-min", "", "Lower Age bound")
	fs.StringVar(&o.ageMax, "age-max", "", "Upper Age bound")
	fs.StringVar(&o.fareMin, "fare-min", "", "Lower Fare bound")
	fs.StringVar(&o.fareMax, "fare-max", "", "Upper Fare bound")
	fs.IntVar(&o.ageBins, "age-bins", 0, "Fixed number of age histogram bins (0 = automatic)")

	fs.BoolVar(&o.robotRender, "robot-render", false, "Print the rendered dashboard as JSON and exit")
	fs.BoolVar(&o.robotDomain, "robot-domain", false, "Print the filter domain as JSON and exit")

	fs.StringVar(&o.exportPath, "export", "", "Write a chart snapshot (svg or png) and exit")
	fs.StringVar(&o.exportDir, "export-dir", "", "Write one image per chart into a directory and exit")
	fs.StringVar(&o.exportFormat, "export-format", "", "Export format: svg or png (default: from the path)")
	fs.StringVar(&o.exportTitle, "export-title", export.DefaultTitle, "Title of the exported snapshot")
	fs.BoolVar(&o.exportWizard, "export-wizard", false, "Choose export options interactively")

	fs.BoolVar(&o.noHooks, "no-hooks", false, "Skip export hooks from "+filepath.Join(hooks.Dir, hooks.File))
	fs.BoolVar(&o.noWatch, "no-watch", false, "Do not watch the dataset for changes")
	fs.StringVar(&o.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	fs.BoolVar(&o.help, "help", false, "Show help")
	fs.BoolVar(&o.version, "version", false, "Show version")

	err := fs.Parse(args)
	return o, fs, err
}

func run(args []string, stdout, stderr io.Writer) int {
	o, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	if o.help {
		fmt.Fprintln(stdout, "Usage: titanic [options]")
		fmt.Fprintln(stdout, "\nAn interactive dashboard for the Titanic passenger dataset.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return 0
	}
	if o.version {
		fmt.Fprintf(stdout, "titanic %s\n", version.Version)
		return 0
	}

	defer dumpMetrics()

	cfg, cfgErr := loadConfig(o.configPath)
	if cfgErr != nil {
		fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", cfgErr)
	}
	if o.ageBins > 0 {
		cfg.Charts.AgeBins = o.ageBins
	}
	debug.Dump("config", cfg)

	dataPath := loader.ResolveDataPath(o.dataPath, cfg.Data.Path)
	table, err := datasource.Load(dataPath, datasource.LoadOptions{SQLiteTable: firstNonEmpty(o.sqliteTable, cfg.Data.SQLiteTable)})
	if err != nil {
		fmt.Fprintf(stderr, "Error loading dataset: %v\n", err)
		return 1
	}

	domain := model.ObservedDomain(table)
	sel, err := buildSelection(o, domain)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	renderOpts := dashboard.Options{
		PreviewRows: cfg.UI.PreviewRows,
		Charts:      charts.Options{AgeBins: cfg.Charts.AgeBins},
	}

	switch {
	case o.robotDomain:
		return writeJSON(stdout, stderr, dashboard.DescribeDomain(table))

	case o.robotRender:
		res := dashboard.Render(table, sel, renderOpts)
		data, err := res.JSON()
		if err != nil {
			fmt.Fprintf(stderr, "Error encoding result: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, string(data))
		return 0

	case o.exportWizard:
		w := export.NewWizard(export.WizardConfig{Path: cfg.Export.Path, Format: cfg.Export.Format, Title: o.exportTitle})
		choice, err := w.Run()
		if err != nil {
			fmt.Fprintf(stderr, "Export wizard cancelled: %v\n", err)
			return 1
		}
		o.exportFormat, o.exportTitle = choice.Format, choice.Title
		if choice.PerPanel {
			o.exportDir = choice.Path
		} else {
			o.exportPath = choice.Path
		}
		fallthrough

	case o.exportPath != "" || o.exportDir != "":
		res := dashboard.Render(table, sel, renderOpts)
		return runExport(o, res, stdout, stderr)
	}

	m := ui.NewModel(table, cfg).WithSelection(sel)
	if !o.noWatch {
		if w, err := startWatcher(dataPath); err != nil {
			debug.Log("watcher disabled: %v", err)
		} else {
			m = m.WithWatcher(w)
		}
	}
	defer m.Stop()

	if closeLog := redirectDebugLog(); closeLog != nil {
		defer closeLog()
	}
	if err := runTUIProgram(m); err != nil {
		fmt.Fprintf(stderr, "Error running dashboard: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// buildSelection turns the filter flags into a normalised selection. A range
// with only one bound set takes the other from the observed domain.
func buildSelection(o options, d model.Domain) (filter.Selection, error) {
	sel := filter.Selection{Sex: o.sex, Class: o.class, Embarked: o.embarked}

	age, err := parseRange("age", o.ageMin, o.ageMax, d.AgeBounds)
	if err != nil {
		return sel, err
	}
	fare, err := parseRange("fare", o.fareMin, o.fareMax, d.FareBounds)
	if err != nil {
		return sel, err
	}
	sel.Age, sel.Fare = age, fare
	return sel.Normalize(d), nil
}

func parseRange(name, lowS, highS string, b model.Bounds) (*filter.Range, error) {
	if lowS == "" && highS == "" {
		return nil, nil
	}
	r := filter.Range{Low: math.Inf(-1), High: math.Inf(1)}
	if b.Valid {
		r = filter.Range{Low: b.Min, High: b.Max}
	}
	var err error
	if lowS != "" {
		if r.Low, err = parseBound(name+"-min", lowS); err != nil {
			return nil, err
		}
	}
	if highS != "" {
		if r.High, err = parseBound(name+"-max", highS); err != nil {
			return nil, err
		}
	}
	if r.Low > r.High {
		return nil, fmt.Errorf("--%s-min (%v) is greater than --%s-max (%v)", name, r.Low, name, r.High)
	}
	return &r, nil
}

func parseBound(flagName, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("--%s: %q is not a number", flagName, s)
	}
	return v, nil
}

func writeJSON(stdout, stderr io.Writer, v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "Error encoding JSON: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, string(data))
	return 0
}

func runExport(o options, res dashboard.Result, stdout, stderr io.Writer) int {
	if res.Empty {
		fmt.Fprintln(stderr, res.Notice)
		return 1
	}
	defer debug.LogEnterExit("export")()
	ctx := context.Background()

	target, format := o.exportDir, firstNonEmpty(o.exportFormat, export.FormatSVG)
	if o.exportDir == "" {
		var err error
		if target, format, err = export.ResolveFormat(o.exportPath, o.exportFormat); err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return 1
		}
	}

	cwd, _ := os.Getwd()
	hookRun, err := hooks.Prepare(cwd, hooks.ExportContext{
		Path:      target,
		Format:    format,
		Matched:   res.Matched,
		Total:     res.Total,
		Filters:   res.Selection.String(),
		Timestamp: time.Now(),
	}, o.noHooks)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v (hooks skipped)\n", err)
	}
	if hookRun != nil {
		defer func() {
			if s := hookRun.Summary(); s != "" {
				fmt.Fprintln(stderr, s)
			}
		}()
		if err := hookRun.RunPreExport(ctx); err != nil {
			fmt.Fprintf(stderr, "Export cancelled: %v\n", err)
			return 1
		}
	}

	if o.exportDir != "" {
		paths, err := export.SavePanels(ctx, o.exportDir, format, res.Charts)
		if err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return 1
		}
		for _, p := range paths {
			fmt.Fprintln(stdout, p)
		}
	} else {
		err := export.SaveChartSnapshot(export.SnapshotOptions{
			Path:     target,
			Format:   format,
			Title:    o.exportTitle,
			Subtitle: export.Subtitle(res.Matched, res.Total, res.Selection.String()),
			Charts:   res.Charts,
		})
		if err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, target)
	}

	if hookRun != nil {
		if err := hookRun.RunPostExport(ctx); err != nil {
			fmt.Fprintf(stderr, "Warning: %v\n", err)
		}
	}
	return 0
}

func startWatcher(path string) (*watcher.Watcher, error) {
	w, err := watcher.New(path, watcher.WithOnError(func(err error) {
		debug.Log("watcher: %v", err)
	}))
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}

// redirectDebugLog sends debug output to the state directory so it does not
// draw over the alternate screen.
func redirectDebugLog() func() {
	if !debug.Enabled() {
		return nil
	}
	dir := config.StateDir()
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil
	}
	debug.SetOutput(f)
	return func() {
		debug.SetOutput(os.Stderr)
		f.Close()
	}
}

func dumpMetrics() {
	if !debug.Enabled() || !metrics.Enabled() {
		return
	}
	for _, s := range metrics.AllTimingStats() {
		if s.Count == 0 {
			continue
		}
		debug.Log("metric %-14s n=%-5d avg=%.2fms max=%.2fms total=%.2fms", s.Name, s.Count, s.AvgMs, s.MaxMs, s.TotalMs)
	}
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	if v := os.Getenv(AutoCloseEnvVar); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
