// Package dashboard turns the full table and the current control state into
// everything one screen shows. Render is pure and is called again on every
// interaction.
package dashboard

import (
	"errors"

	json "github.com/goccy/go-json"

	"github.com/mehaktrehan/titanic/pkg/charts"
	"github.com/mehaktrehan/titanic/pkg/debug"
	"github.com/mehaktrehan/titanic/pkg/filter"
	"github.com/mehaktrehan/titanic/pkg/metrics"
	"github.com/mehaktrehan/titanic/pkg/model"
)

// EmptyNotice is shown instead of the charts when no row matches.
const EmptyNotice = "No data matches the selected filters. Please try different options."

// DefaultPreviewRows is the size of the filtered data preview.
const DefaultPreviewRows = 5

// Options tunes Render.
type Options struct {
	PreviewRows int // <= 0 means DefaultPreviewRows
	Charts      charts.Options
}

// Result is one rendered screen.
type Result struct {
	Selection filter.Selection         `json:"selection"`
	Active    []filter.Constraint      `json:"active_filters"`
	Preview   []model.LabeledPassenger `json:"preview"`
	Matched   int                      `json:"matched"`
	Total     int                      `json:"total"`
	Empty     bool                     `json:"empty"`
	Notice    string                   `json:"notice,omitempty"`
	Charts    *charts.Set              `json:"charts,omitempty"`

	// Filtered holds every matching row; the preview is its head.
	Filtered model.FilteredTable `json:"-"`
}

// Render filters table by sel and computes the preview and charts. When
// nothing matches, Charts is nil and Notice carries the warning.
func Render(table model.Table, sel filter.Selection, opts Options) Result {
	defer metrics.Timer(metrics.Render)()

	n := opts.PreviewRows
	if n <= 0 {
		n = DefaultPreviewRows
	}

	ft := filter.Apply(table, sel)
	res := Result{
		Selection: sel,
		Active:    sel.Active(),
		Preview:   ft.Head(n),
		Matched:   ft.Len(),
		Total:     table.Len(),
		Filtered:  ft,
	}

	set, err := charts.Compute(ft, opts.Charts)
	switch {
	case errors.Is(err, charts.ErrNoData):
		res.Empty = true
		res.Notice = EmptyNotice
	case err != nil:
		// Compute has no other failure today; treat one as empty.
		debug.Log("render: chart computation failed: %v", err)
		res.Empty = true
		res.Notice = EmptyNotice
	default:
		res.Charts = &set
	}
	return res
}

// JSON encodes the result for robot output.
func (r Result) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Domain is the robot view of the control domain.
type Domain struct {
	Source  string       `json:"source"`
	Rows    int          `json:"rows"`
	Columns []string     `json:"columns"`
	Sexes   []string     `json:"sexes"`
	Classes []string     `json:"classes"`
	Ports   []string     `json:"ports"`
	Age     model.Bounds `json:"age"`
	Fare    model.Bounds `json:"fare"`
}

// DescribeDomain summarises the values each control offers. Missing ports
// appear under their display name.
func DescribeDomain(table model.Table) Domain {
	d := model.ObservedDomain(table)
	ports := make([]string, len(d.Ports))
	for i, p := range d.Ports {
		ports[i] = model.DisplayEmbarked(p)
	}
	return Domain{
		Source:  table.Source,
		Rows:    table.Len(),
		Columns: table.Columns,
		Sexes:   d.Sexes,
		Classes: d.Classes,
		Ports:   ports,
		Age:     d.AgeBounds,
		Fare:    d.FareBounds,
	}
}
