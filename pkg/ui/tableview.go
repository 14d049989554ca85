package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mehaktrehan/titanic/pkg/model"
)

// maxCellWidth caps a column so one long name cannot push the rest off screen.
const maxCellWidth = 24

// previewColumns are the columns the filtered preview shows.
var previewColumns = []string{
	model.ColSex, model.ColPclass, model.ColEmbarked, model.ColAge, model.ColFare, model.ColSurvived,
}

// labelColumn is the derived survival label column of the preview.
const labelColumn = "Survival"

// renderTable lays rows out as fixed-width columns, each as wide as its
// widest cell up to maxCellWidth, then cuts lines to width.
func renderTable(header []string, rows [][]string, width int, t Theme) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], maxCellWidth)
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = fit(c, widths[i])
		}
		return truncate(strings.TrimRight(strings.Join(parts, "  "), " "), width)
	}

	var b strings.Builder
	b.WriteString(t.Label.Bold(true).Render(line(header)))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(line(r))
	}
	return b.String()
}

// previewRows converts labelled rows to cells in previewColumns order plus
// the survival label.
func previewRows(rows []model.LabeledPassenger) ([]string, [][]string) {
	header := append(append([]string(nil), previewColumns...), labelColumn)
	out := make([][]string, len(rows))
	for i, r := range rows {
		cells := make([]string, 0, len(header))
		for _, c := range previewColumns {
			cells = append(cells, r.Value(c))
		}
		out[i] = append(cells, r.SurvivalLabel)
	}
	return header, out
}

// rawRows converts the whole table to cells in source column order.
func rawRows(table model.Table) ([]string, [][]string) {
	out := make([][]string, len(table.Passengers))
	for i, p := range table.Passengers {
		cells := make([]string, len(table.Columns))
		for j, c := range table.Columns {
			cells[j] = p.Value(c)
		}
		out[i] = cells
	}
	return table.Columns, out
}

// previewTSV renders the preview as tab-separated text with a header line.
func previewTSV(rows []model.LabeledPassenger) string {
	header, cells := previewRows(rows)
	var b strings.Builder
	b.WriteString(strings.Join(header, "\t"))
	for _, r := range cells {
		b.WriteString("\n")
		b.WriteString(strings.Join(r, "\t"))
	}
	b.WriteString("\n")
	return b.String()
}
