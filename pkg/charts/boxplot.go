package charts

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/mehaktrehan/titanic/pkg/model"
)

// Whisker reach in multiples of the interquartile range.
const whiskerIQR = 1.5

// FareBoxPlot summarises fares per passenger class.
type FareBoxPlot struct {
	Meta
	Boxes []Box `json:"boxes"` // ascending class
}

// Box is the five-number summary of one class plus its outliers.
type Box struct {
	Class     string    `json:"class"`
	N         int       `json:"n"`
	Q1        float64   `json:"q1"`
	Median    float64   `json:"median"`
	Q3        float64   `json:"q3"`
	Mean      float64   `json:"mean"`
	LowWhisk  float64   `json:"low_whisker"`
	HighWhisk float64   `json:"high_whisker"`
	Outliers  []float64 `json:"outliers,omitempty"`
}

// IQR returns Q3 - Q1.
func (b Box) IQR() float64 { return b.Q3 - b.Q1 }

// Range returns the lowest and highest value drawn for any box, outliers
// included.
func (f FareBoxPlot) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, b := range f.Boxes {
		lo = math.Min(lo, b.LowWhisk)
		hi = math.Max(hi, b.HighWhisk)
		for _, o := range b.Outliers {
			lo = math.Min(lo, o)
			hi = math.Max(hi, o)
		}
	}
	return lo, hi
}

// Fare builds the per-class fare box plot.
func Fare(ft model.FilteredTable) FareBoxPlot {
	byClass := make(map[int][]float64)
	for _, r := range ft.Rows {
		byClass[r.Pclass] = append(byClass[r.Pclass], r.Fare)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	f := FareBoxPlot{Meta: Meta{Title: "Fare Distribution by Class", XLabel: "Passenger Class", YLabel: "Fare"}}
	for _, c := range classes {
		f.Boxes = append(f.Boxes, Summarize(strconv.Itoa(c), byClass[c]))
	}
	return f
}

// Summarize computes a Box for values. values is sorted in place.
func Summarize(class string, values []float64) Box {
	sort.Float64s(values)
	b := Box{
		Class:  class,
		N:      len(values),
		Q1:     Quantile(values, 0.25),
		Median: Quantile(values, 0.5),
		Q3:     Quantile(values, 0.75),
		Mean:   stat.Mean(values, nil),
	}

	lowFence := b.Q1 - whiskerIQR*b.IQR()
	highFence := b.Q3 + whiskerIQR*b.IQR()

	// Whiskers reach the furthest values inside the fences but never retreat
	// inside the box.
	b.LowWhisk, b.HighWhisk = b.Q1, b.Q3
	for _, v := range values {
		if v >= lowFence {
			b.LowWhisk = math.Min(v, b.Q1)
			break
		}
	}
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] <= highFence {
			b.HighWhisk = math.Max(values[i], b.Q3)
			break
		}
	}

	for _, v := range values {
		if v < b.LowWhisk || v > b.HighWhisk {
			b.Outliers = append(b.Outliers, v)
		}
	}
	return b
}

// Quantile returns the p-quantile of sorted x, interpolating linearly
// between the closest ranks: h = (n-1)p, q = x[floor h] + frac(h) * gap.
func Quantile(x []float64, p float64) float64 {
	switch len(x) {
	case 0:
		return math.NaN()
	case 1:
		return x[0]
	}
	h := float64(len(x)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(x)-1 {
		return x[len(x)-1]
	}
	return x[lo] + (h-float64(lo))*(x[lo+1]-x[lo])
}
