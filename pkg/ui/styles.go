package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Layout constants (in terminal cells).
const (
	SidebarWidth    = 34
	MinPanelWidth   = 28
	RawViewHeight   = 10
	StackedBreakout = 3*MinPanelWidth + 6
)

// Adaptive colors for light and dark terminals.
var (
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}

	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}
	ColorInfo      = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger    = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	ColorSuccessBg = lipgloss.AdaptiveColor{Light: "#D4EDDA", Dark: "#1A3D2A"}
	ColorDangerBg  = lipgloss.AdaptiveColor{Light: "#F8D7DA", Dark: "#3D1A1A"}

	// Chart series, matching the exported images.
	ColorSeriesBlue   = lipgloss.AdaptiveColor{Light: "#4C72B0", Dark: "#6C92D0"}
	ColorSeriesOrange = lipgloss.AdaptiveColor{Light: "#DD8452", Dark: "#FDA472"}
	ColorSeriesGreen  = lipgloss.AdaptiveColor{Light: "#55A868", Dark: "#75C888"}
	ColorSeriesRed    = lipgloss.AdaptiveColor{Light: "#C44E52", Dark: "#E46E72"}
)

// statusStyle styles the one-line status message in the footer.
func statusStyle(isError bool) lipgloss.Style {
	if isError {
		return lipgloss.NewStyle().
			Background(ColorDangerBg).
			Foreground(ColorDanger).
			Bold(true).
			Padding(0, 2)
	}
	return lipgloss.NewStyle().
		Background(ColorSuccessBg).
		Foreground(ColorSuccess).
		Bold(true).
		Padding(0, 2)
}
