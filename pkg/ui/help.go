package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
)

// keyMap holds every binding the dashboard understands.
type keyMap struct {
	NextControl key.Binding
	PrevControl key.Binding
	Decrease    key.Binding
	Increase    key.Binding
	DecreaseBig key.Binding
	IncreaseBig key.Binding
	LowHandle   key.Binding
	HighHandle  key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	Clear       key.Binding
	Raw         key.Binding
	Export      key.Binding
	Copy        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextControl: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next control")),
		PrevControl: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev control")),
		Decrease:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "change")),
		Increase:    key.NewBinding(key.WithKeys("right", "l")),
		DecreaseBig: key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("shift+←/→", "×10")),
		IncreaseBig: key.NewBinding(key.WithKeys("shift+right", "L")),
		LowHandle:   key.NewBinding(key.WithKeys("["), key.WithHelp("[/]", "low/high handle")),
		HighHandle:  key.NewBinding(key.WithKeys("]")),
		ScrollUp:    key.NewBinding(key.WithKeys("up", "k", "pgup"), key.WithHelp("↑/↓", "scroll raw data")),
		ScrollDown:  key.NewBinding(key.WithKeys("down", "j", "pgdown")),
		Clear:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
		Raw:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "raw data")),
		Export:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Copy:        key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy preview")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextControl, k.Decrease, k.LowHandle, k.Clear, k.Raw, k.Export, k.Copy, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextControl, k.PrevControl, k.Decrease, k.DecreaseBig, k.LowHandle},
		{k.Clear, k.Raw, k.ScrollUp, k.Export, k.Copy, k.Help, k.Quit},
	}
}

const helpMarkdown = `# Titanic Data Analytics Dashboard

Explore who survived the Titanic. Every change to a filter redraws the
preview and the three charts from the full dataset.

## Filters

| Key | Action |
|-----|--------|
| tab / shift+tab | Move between controls |
| ← / → | Change the selected value or move a range handle |
| shift+← / shift+→ | Move a range handle ten steps |
| [ / ] | Pick the low or high handle of Age or Fare |
| x | Clear all filters |

A range left at its full extent does not filter. Passengers without a
recorded age are only excluded once the Age range is narrowed.

## View

| Key | Action |
|-----|--------|
| r | Show or hide the raw data table |
| ↑ / ↓ | Scroll the raw data table |
| e | Export the charts to an image |
| c | Copy the filtered preview as TSV |
| ? | Toggle this help |
| q | Quit |

If the dataset file changes while the dashboard is open, the status line
says so. Restart to load the new data.
`

// renderHelp renders the help text as terminal markdown, falling back to the
// plain source if glamour fails.
func renderHelp(width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-4, 40)),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n")
}
