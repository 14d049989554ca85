package charts

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/mehaktrehan/titanic/pkg/model"
)

// maxBins caps the automatic bin count for data with a tiny spread around a
// wide range.
const maxBins = 500

// AgeHistogram is an age histogram with bars stacked by survival label.
type AgeHistogram struct {
	Meta
	// Labels is the stacking order, bottom first.
	Labels []string `json:"labels"`
	// Edges has len(Bins)+1 entries. Every bin is half-open except the last,
	// which also holds values equal to its upper edge.
	Edges []float64 `json:"edges"`
	Bins  []Bin     `json:"bins"`
	// Missing counts rows left out for having no Age.
	Missing int `json:"missing"`
}

// Bin is one histogram bar.
type Bin struct {
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Counts []int   `json:"counts"` // per label, in Labels order
}

// Total returns the stacked height of the bar.
func (b Bin) Total() int {
	n := 0
	for _, c := range b.Counts {
		n += c
	}
	return n
}

// Empty reports whether no row had an Age.
func (h AgeHistogram) Empty() bool { return len(h.Bins) == 0 }

// MaxTotal returns the tallest stacked bar.
func (h AgeHistogram) MaxTotal() int {
	m := 0
	for _, b := range h.Bins {
		m = max(m, b.Total())
	}
	return m
}

// Age builds the stacked age histogram. bins <= 0 picks the bin count from
// the data with BinEdges.
func Age(ft model.FilteredTable, bins int) AgeHistogram {
	h := AgeHistogram{
		Meta:   Meta{Title: "Age Distribution by Survival", XLabel: "Age", YLabel: "Count"},
		Labels: firstSeen(ft.Rows, survivalLabel),
	}

	byLabel := make([][]float64, len(h.Labels))
	label := indexOf(h.Labels)
	var all []float64
	for _, r := range ft.Rows {
		if !r.HasAge() {
			h.Missing++
			continue
		}
		all = append(all, *r.Age)
		i := label[r.SurvivalLabel]
		byLabel[i] = append(byLabel[i], *r.Age)
	}
	if len(all) == 0 {
		return h
	}

	sort.Float64s(all)
	if bins > 0 {
		h.Edges = FixedEdges(all, bins)
	} else {
		h.Edges = BinEdges(all)
	}

	// stat.Histogram wants every value strictly below the last divider.
	dividers := append([]float64(nil), h.Edges...)
	last := len(dividers) - 1
	dividers[last] = math.Nextafter(dividers[last], math.Inf(1))

	n := len(h.Edges) - 1
	h.Bins = make([]Bin, n)
	for i := range h.Bins {
		h.Bins[i] = Bin{Low: h.Edges[i], High: h.Edges[i+1], Counts: make([]int, len(h.Labels))}
	}
	for li, ages := range byLabel {
		if len(ages) == 0 {
			continue
		}
		sort.Float64s(ages)
		counts := stat.Histogram(nil, dividers, ages, nil)
		for bi, c := range counts {
			h.Bins[bi].Counts[li] = int(c)
		}
	}
	return h
}

// BinEdges picks histogram edges for sorted, finite x: the narrower of the
// Freedman-Diaconis and Sturges bin widths, or Sturges alone when the
// interquartile range is zero. Data with a single distinct value gets one
// bin of width 1 centred on it.
func BinEdges(x []float64) []float64 {
	lo, hi := span(x)
	n := float64(len(x))

	width := (x[len(x)-1] - x[0]) / (math.Log2(n) + 1)
	iqr := Quantile(x, 0.75) - Quantile(x, 0.25)
	if fd := 2 * iqr * math.Pow(n, -1.0/3); fd > 0 {
		width = math.Min(fd, width)
	}

	// Non-finite input leaves width or the count NaN or Inf; fall back to one bin.
	bins := 1
	if n := math.Ceil((hi - lo) / width); width > 0 && n >= 1 && !math.IsInf(n, 0) {
		bins = int(math.Min(n, maxBins))
	}
	return edges(lo, hi, bins)
}

// FixedEdges splits the range of sorted x into bins equal-width bins.
func FixedEdges(x []float64, bins int) []float64 {
	lo, hi := span(x)
	return edges(lo, hi, bins)
}

func edges(lo, hi float64, bins int) []float64 {
	if bins <= 1 {
		return []float64{lo, hi}
	}
	e := floats.Span(make([]float64, bins+1), lo, hi)
	e[bins] = hi
	return e
}

func span(x []float64) (lo, hi float64) {
	lo, hi = x[0], x[len(x)-1]
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	return lo, hi
}
