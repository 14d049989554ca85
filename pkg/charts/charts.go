// Package charts computes the data behind the three dashboard charts.
//
// Each chart is computed independently from the filtered table and knows
// nothing about how it is drawn: pkg/ui draws them as terminal panels and
// pkg/export as SVG or PNG images.
package charts

import (
	"errors"

	"github.com/mehaktrehan/titanic/pkg/debug"
	"github.com/mehaktrehan/titanic/pkg/metrics"
	"github.com/mehaktrehan/titanic/pkg/model"
)

// ErrNoData is returned by Compute for an empty filtered table.
var ErrNoData = errors.New("no rows to chart")

// Options tunes chart computation.
type Options struct {
	// AgeBins fixes the number of age histogram bins. Zero picks the count
	// from the data.
	AgeBins int
}

// Meta holds the labels a chart is drawn with.
type Meta struct {
	Title  string `json:"title"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`
}

// Set is the three charts, always in display order.
type Set struct {
	Gender GenderSurvival `json:"gender"`
	Age    AgeHistogram   `json:"age"`
	Fare   FareBoxPlot    `json:"fare"`
}

// Compute builds all three charts from ft.
func Compute(ft model.FilteredTable, opts Options) (Set, error) {
	if ft.Empty() {
		return Set{}, ErrNoData
	}
	defer metrics.Timer(metrics.ChartCompute)()

	set := Set{
		Gender: Gender(ft),
		Age:    Age(ft, opts.AgeBins),
		Fare:   Fare(ft),
	}
	debug.Log("charts: %d gender bars, %d age bins, %d fare boxes",
		len(set.Gender.Categories)*len(set.Gender.Series), len(set.Age.Bins), len(set.Fare.Boxes))
	return set, nil
}

// firstSeen returns the distinct values of key over rows, in order of first
// appearance.
func firstSeen(rows []model.LabeledPassenger, key func(model.LabeledPassenger) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		k := key(r)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

func indexOf(values []string) map[string]int {
	idx := make(map[string]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}

func survivalLabel(r model.LabeledPassenger) string { return r.SurvivalLabel }
func sex(r model.LabeledPassenger) string           { return r.Sex }
