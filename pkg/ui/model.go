// Package ui implements the interactive terminal dashboard.
package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mehaktrehan/titanic/pkg/charts"
	"github.com/mehaktrehan/titanic/pkg/config"
	"github.com/mehaktrehan/titanic/pkg/dashboard"
	"github.com/mehaktrehan/titanic/pkg/debug"
	"github.com/mehaktrehan/titanic/pkg/export"
	"github.com/mehaktrehan/titanic/pkg/filter"
	"github.com/mehaktrehan/titanic/pkg/metrics"
	"github.com/mehaktrehan/titanic/pkg/model"
	"github.com/mehaktrehan/titanic/pkg/watcher"
)

// AppTitle heads the screen.
const AppTitle = "Titanic Data Analytics Dashboard"

// Default dimensions until the first WindowSizeMsg arrives.
const (
	defaultWidth  = 120
	defaultHeight = 40
)

// DatasetChangedMsg is sent when the dataset file changes on disk.
type DatasetChangedMsg struct{}

// ExportDoneMsg reports the outcome of an export started with the e key.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// WatchDatasetCmd waits for the next change reported by w.
func WatchDatasetCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return DatasetChangedMsg{}
	}
}

// Model is the dashboard screen. The table is loaded once and never
// modified; every control change re-runs dashboard.Render over it.
type Model struct {
	table  model.Table
	domain model.Domain
	cfg    config.Config
	opts   dashboard.Options

	ctrls  controls
	result dashboard.Result

	theme Theme
	keys  keyMap
	help  help.Model

	width  int
	height int
	ready  bool

	showRaw bool
	raw     viewport.Model

	showHelp bool
	helpText string

	statusMsg      string
	statusIsError  bool
	datasetChanged bool

	watcher *watcher.Watcher
	copyFn  func(string) error
}

// NewModel builds the dashboard for table with every filter at its default.
func NewModel(table model.Table, cfg config.Config) Model {
	domain := model.ObservedDomain(table)
	m := Model{
		table:  table,
		domain: domain,
		cfg:    cfg,
		opts: dashboard.Options{
			PreviewRows: cfg.UI.PreviewRows,
			Charts:      charts.Options{AgeBins: cfg.Charts.AgeBins},
		},
		ctrls:   newControls(domain, cfg.UI.FareStep),
		theme:   DefaultTheme(lipgloss.DefaultRenderer()),
		keys:    defaultKeyMap(),
		help:    help.New(),
		width:   defaultWidth,
		height:  defaultHeight,
		ready:   true,
		showRaw: cfg.UI.ShowRaw,
		copyFn:  clipboard.WriteAll,
	}
	m.resize()
	m.refresh()
	return m
}

// WithWatcher attaches a dataset watcher whose changes raise a notice.
func (m Model) WithWatcher(w *watcher.Watcher) Model {
	m.watcher = w
	return m
}

// WithSelection pre-seeds the controls. Values the controls do not offer
// are ignored with a status warning.
func (m Model) WithSelection(sel filter.Selection) Model {
	var unknown []string
	if !m.ctrls.sex.choose(sel.Sex) {
		unknown = append(unknown, fmt.Sprintf("Sex=%s", sel.Sex))
	}
	if !m.ctrls.class.choose(sel.Class) {
		unknown = append(unknown, fmt.Sprintf("Pclass=%s", sel.Class))
	}
	if !m.ctrls.embarked.choose(sel.Embarked) {
		unknown = append(unknown, fmt.Sprintf("Embarked=%s", sel.Embarked))
	}
	if sel.Age != nil {
		m.ctrls.age.set(sel.Age.Low, sel.Age.High)
	}
	if sel.Fare != nil {
		m.ctrls.fare.set(sel.Fare.Low, sel.Fare.High)
	}
	if len(unknown) > 0 {
		m.setStatus(true, "Ignored unknown filter values: %s", strings.Join(unknown, ", "))
	}
	m.refresh()
	return m
}

// Selection returns the normalised selection currently applied.
func (m Model) Selection() filter.Selection { return m.result.Selection }

// Result returns the latest render.
func (m Model) Result() dashboard.Result { return m.result }

// Stop releases the watcher.
func (m Model) Stop() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchDatasetCmd(m.watcher)
	}
	return nil
}

func (m *Model) refresh() {
	sel := m.ctrls.selection().Normalize(m.domain)
	m.result = dashboard.Render(m.table, sel, m.opts)
	debug.Log("ui: %s -> %d/%d rows", sel, m.result.Matched, m.result.Total)
}

func (m *Model) setStatus(isError bool, format string, args ...any) {
	m.statusMsg = fmt.Sprintf(format, args...)
	m.statusIsError = isError
}

func (m Model) mainWidth() int {
	return max(m.width-SidebarWidth-1, MinPanelWidth)
}

func (m *Model) resize() {
	m.raw = viewport.New(m.mainWidth(), RawViewHeight)
	header, rows := rawRows(m.table)
	m.raw.SetContent(renderTable(header, rows, m.mainWidth(), m.theme))
	m.help.Width = m.width
	if m.showHelp {
		m.helpText = renderHelp(m.width)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case DatasetChangedMsg:
		m.datasetChanged = true
		m.setStatus(false, "Dataset file changed on disk; restart to load the new data")
		if m.watcher != nil {
			return m, WatchDatasetCmd(m.watcher)
		}
		return m, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			m.setStatus(true, "Export failed: %v", msg.Err)
		} else {
			m.setStatus(false, "Exported charts to %s", msg.Path)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help), msg.String() == "esc", msg.String() == "q":
			m.showHelp = false
		}
		return m, nil
	}

	m.statusMsg = ""
	changed := false

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.helpText = renderHelp(m.width)

	case key.Matches(msg, m.keys.NextControl):
		m.ctrls.cycleFocus(1)
	case key.Matches(msg, m.keys.PrevControl):
		m.ctrls.cycleFocus(-1)

	case key.Matches(msg, m.keys.Decrease):
		changed = m.ctrls.adjust(-1)
	case key.Matches(msg, m.keys.Increase):
		changed = m.ctrls.adjust(1)
	case key.Matches(msg, m.keys.DecreaseBig):
		changed = m.ctrls.adjust(-10)
	case key.Matches(msg, m.keys.IncreaseBig):
		changed = m.ctrls.adjust(10)

	case key.Matches(msg, m.keys.LowHandle):
		m.ctrls.pickHandle(handleLow)
	case key.Matches(msg, m.keys.HighHandle):
		m.ctrls.pickHandle(handleHigh)

	case key.Matches(msg, m.keys.Clear):
		m.ctrls.reset()
		changed = true
		m.setStatus(false, "Filters cleared")

	case key.Matches(msg, m.keys.Raw):
		m.showRaw = !m.showRaw

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		if m.showRaw {
			var cmd tea.Cmd
			m.raw, cmd = m.raw.Update(msg)
			return m, cmd
		}

	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd()

	case key.Matches(msg, m.keys.Copy):
		m.copyPreview()
	}

	if changed {
		m.refresh()
	}
	return m, nil
}

// exportCmd writes the current charts to the configured path in the
// background.
func (m *Model) exportCmd() tea.Cmd {
	if m.result.Charts == nil {
		m.setStatus(true, "Nothing to export: no rows match the filters")
		return nil
	}
	path, format, err := export.ResolveFormat(m.cfg.Export.Path, m.cfg.Export.Format)
	if err != nil {
		m.setStatus(true, "Export failed: %v", err)
		return nil
	}
	opts := export.SnapshotOptions{
		Path:     path,
		Format:   format,
		Title:    export.DefaultTitle,
		Subtitle: export.Subtitle(m.result.Matched, m.result.Total, m.result.Selection.String()),
		Charts:   m.result.Charts,
	}
	m.setStatus(false, "Exporting to %s…", path)
	return func() tea.Msg {
		return ExportDoneMsg{Path: path, Err: export.SaveChartSnapshot(opts)}
	}
}

func (m *Model) copyPreview() {
	if len(m.result.Preview) == 0 {
		m.setStatus(true, "Nothing to copy: no rows match the filters")
		return
	}
	if err := m.copyFn(previewTSV(m.result.Preview)); err != nil {
		m.setStatus(true, "Clipboard error: %v", err)
		return
	}
	m.setStatus(false, "Copied %d preview rows to clipboard", len(m.result.Preview))
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	defer metrics.Timer(metrics.UIRender)()

	finalStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		MaxHeight(m.height)

	footer := m.renderFooter()
	if m.showHelp {
		return finalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.helpText, footer))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), " ", m.renderMain())
	return finalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, footer))
}

func (m Model) renderHeader() string {
	t := m.theme
	info := fmt.Sprintf(" %s · %d rows · %d matching", m.table.Source, m.result.Total, m.result.Matched)
	line := t.Header.Render(AppTitle) + t.MutedText.Render(info)
	if m.datasetChanged {
		line += "  " + t.Renderer.NewStyle().Foreground(t.Warning).Bold(true).Render("⚠ dataset changed, restart to reload")
	}
	return line
}

func (m Model) renderSidebar() string {
	t := m.theme
	inner := SidebarWidth - 4

	parts := []string{t.SectionTitle.Render("Filter Options")}
	for id := controlID(0); id < numControls; id++ {
		parts = append(parts, m.renderControl(id, inner))
	}
	return t.Panel.Width(SidebarWidth - 2).Render(strings.Join(parts, "\n"))
}

func (m Model) renderControl(id controlID, width int) string {
	t := m.theme
	focused := m.ctrls.focus == id
	labelStyle, marker := t.Label, "  "
	if focused {
		labelStyle, marker = t.FocusedLabel, "▸ "
	}

	var label, value string
	switch id {
	case ctrlSex, ctrlClass, ctrlEmbarked:
		s := m.ctrls.sex
		if id == ctrlClass {
			s = m.ctrls.class
		} else if id == ctrlEmbarked {
			s = m.ctrls.embarked
		}
		label = s.label
		value = "‹ " + t.Value.Render(truncate(s.value(), width-6)) + " ›"
	case ctrlAge, ctrlFare:
		r := m.ctrls.age
		if id == ctrlFare {
			r = m.ctrls.fare
		}
		label = r.label
		if focused && !r.disabled {
			label += t.MutedText.Render([...]string{"  [low]", "  [high]"}[r.active])
		}
		value = m.renderRange(r, width-2, focused)
	}
	return marker + labelStyle.Render(label) + "\n  " + value + "\n"
}

// renderRange draws a slider track with both handles and their values.
func (m Model) renderRange(r rangeControl, width int, focused bool) string {
	t := m.theme
	if r.disabled {
		return t.MutedText.Render("no values")
	}
	width = max(width, 4)
	pos := func(v float64) int {
		if r.max <= r.min {
			return 0
		}
		return int((v - r.min) / (r.max - r.min) * float64(width-1))
	}
	lo, hi := pos(r.low), pos(r.high)
	track := []rune(strings.Repeat("─", width))
	for i := lo; i <= hi; i++ {
		track[i] = '━'
	}
	track[lo], track[hi] = '●', '●'

	handle := t.Renderer.NewStyle().Foreground(t.Primary)
	if !focused {
		handle = t.MutedText
	}
	values := fmt.Sprintf("%s – %s", formatNumber(r.low), formatNumber(r.high))
	if r.atExtremes() {
		values += t.MutedText.Render(" (all)")
	}
	return handle.Render(string(track)) + "\n  " + values
}

func (m Model) renderMain() string {
	t := m.theme
	width := m.mainWidth()
	var sections []string

	if m.showRaw {
		sections = append(sections,
			t.SectionTitle.Render("Raw Data"),
			m.raw.View(),
			"",
		)
	}

	header, rows := previewRows(m.result.Preview)
	sections = append(sections,
		t.SectionTitle.Render("Filtered Data Preview"),
		t.MutedText.Render(fmt.Sprintf("First %d of %d matching rows · %s", len(rows), m.result.Matched, m.result.Selection)),
		renderTable(header, rows, width, t),
		"",
	)

	if m.result.Empty {
		sections = append(sections, t.Notice.Render(dashboard.EmptyNotice))
	} else {
		sections = append(sections,
			t.SectionTitle.Render("Visual Analysis"),
			renderChartPanels(m.result.Charts, width, t),
		)
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(sections, "\n"))
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		prefix := "✓ "
		if m.statusIsError {
			prefix = "✗ "
		}
		return statusStyle(m.statusIsError).Render(truncate(prefix+m.statusMsg, max(m.width-4, 1)))
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}
