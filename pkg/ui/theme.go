package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/mehaktrehan/titanic/pkg/model"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so low-color terminals keep their own
// background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and ANSI white
// for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor

	// Series colors chart bars in legend order.
	Series []lipgloss.AdaptiveColor

	Base         lipgloss.Style
	Header       lipgloss.Style
	Title        lipgloss.Style
	SectionTitle lipgloss.Style
	Label        lipgloss.Style
	FocusedLabel lipgloss.Style
	Value        lipgloss.Style
	MutedText    lipgloss.Style
	Notice       lipgloss.Style
	Panel        lipgloss.Style
	FocusedPanel lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   ColorPrimary,
		Secondary: ColorSecondary,
		Subtext:   ColorSubtext,
		Border:    ColorBgHighlight,
		Highlight: ColorBgHighlight,
		Muted:     ColorMuted,
		Warning:   ColorWarning,
		Danger:    ColorDanger,
		Success:   ColorSuccess,

		Series: []lipgloss.AdaptiveColor{ColorSeriesBlue, ColorSeriesOrange, ColorSeriesGreen, ColorSeriesRed},
	}

	t.Base = r.NewStyle().Foreground(ColorText)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.Title = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.SectionTitle = r.NewStyle().Foreground(ColorInfo).Bold(true).MarginBottom(1)
	t.Label = r.NewStyle().Foreground(t.Subtext)
	t.FocusedLabel = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.Value = r.NewStyle().Foreground(ColorText).Bold(true)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.Notice = r.NewStyle().
		Foreground(t.Warning).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Warning).
		Padding(0, 1)

	t.Panel = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	t.FocusedPanel = t.Panel.BorderForeground(t.Primary)

	return t
}

// SeriesColor returns the color of the i-th chart series.
func (t Theme) SeriesColor(i int) lipgloss.AdaptiveColor {
	return t.Series[i%len(t.Series)]
}

// SurvivalColor colors a survival label consistently across views.
func (t Theme) SurvivalColor(label string) lipgloss.AdaptiveColor {
	if label == model.LabelSurvived {
		return t.Success
	}
	return t.Danger
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
