package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// DefaultTitle is the snapshot heading when none is given.
const DefaultTitle = "Titanic Survival Dashboard"

// WizardConfig holds the answers collected by the export wizard.
type WizardConfig struct {
	Format string `json:"format"`
	Path   string `json:"path"`
	Title  string `json:"title"`
	// PerPanel writes one file per chart into Path instead of one combined image.
	PerPanel bool `json:"per_panel"`
}

// Wizard asks where and how to export the current charts.
type Wizard struct {
	config *WizardConfig
	out    io.Writer
}

// NewWizard creates a wizard prefilled with defaults, typically the export
// section of the user config.
func NewWizard(defaults WizardConfig) *Wizard {
	cfg := defaults
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.Format == "" {
		cfg.Format = FormatSVG
	}
	return &Wizard{config: &cfg, out: os.Stdout}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run executes the form and returns the validated answers.
func (w *Wizard) Run() (*WizardConfig, error) {
	fmt.Fprintln(w.out, "Export charts")
	fmt.Fprintln(w.out, "─────────────")

	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Image format").
				Options(
					huh.NewOption("SVG (scalable, small)", FormatSVG),
					huh.NewOption("PNG (bitmap)", FormatPNG),
				).
				Value(&w.config.Format),
			huh.NewConfirm().
				Title("One file per chart?").
				Description("Writes three images into a directory").
				Value(&w.config.PerPanel),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Output path").
				Description("File for a combined image, directory for one file per chart").
				Value(&w.config.Path).
				Validate(validatePath),
			huh.NewInput().
				Title("Title").
				Value(&w.config.Title).
				Placeholder(DefaultTitle),
		),
	)
	if err := form.Run(); err != nil {
		return nil, err
	}

	w.finish()
	return w.config, nil
}

// finish fills blanks and makes a combined export's extension match its
// format.
func (w *Wizard) finish() {
	c := w.config
	c.Path = strings.TrimSpace(c.Path)
	if strings.TrimSpace(c.Title) == "" {
		c.Title = DefaultTitle
	}
	if c.PerPanel {
		return
	}
	ext := filepath.Ext(c.Path)
	if !strings.EqualFold(ext, "."+c.Format) {
		c.Path = strings.TrimSuffix(c.Path, ext) + "." + c.Format
	}
}

// Config returns the collected configuration.
func (w *Wizard) Config() *WizardConfig {
	return w.config
}

func validatePath(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}
