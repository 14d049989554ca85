package charts

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/mehaktrehan/titanic/pkg/filter"
	"github.com/mehaktrehan/titanic/pkg/model"
	"github.com/mehaktrehan/titanic/pkg/testutil"
)

const (
	dns = model.LabelDidNotSurvive
	srv = model.LabelSurvived
)

func row(sex string, class int, age *float64, fare float64, survived int) model.Passenger {
	return model.Passenger{Sex: sex, Pclass: class, Embarked: "S", Age: age, Fare: fare, Survived: survived}
}

func labeled(ps ...model.Passenger) model.FilteredTable {
	for i := range ps {
		ps[i].Row = i
	}
	return filter.Label(ps)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// =============================================================================
// Compute
// =============================================================================

func TestCompute_Empty(t *testing.T) {
	_, err := Compute(model.FilteredTable{}, Options{})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestCompute_Titles(t *testing.T) {
	set, err := Compute(filter.Apply(testutil.ScenarioTable(), filter.Selection{}), Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if set.Gender.Title != "Survival Count by Gender" || set.Gender.XLabel != "Survival" || set.Gender.YLabel != "Count" {
		t.Errorf("gender meta = %+v", set.Gender.Meta)
	}
	if set.Age.Title != "Age Distribution by Survival" || set.Age.XLabel != "Age" {
		t.Errorf("age meta = %+v", set.Age.Meta)
	}
	if set.Fare.Title != "Fare Distribution by Class" || set.Fare.XLabel != "Passenger Class" || set.Fare.YLabel != "Fare" {
		t.Errorf("fare meta = %+v", set.Fare.Meta)
	}
}

// =============================================================================
// Gender
// =============================================================================

func TestGender_Counts(t *testing.T) {
	ft := labeled(
		row("male", 3, nil, 7, 0),
		row("female", 1, nil, 70, 1),
		row("female", 2, nil, 20, 1),
		row("male", 1, nil, 50, 1),
		row("male", 3, nil, 8, 0),
	)
	g := Gender(ft)

	if !reflect.DeepEqual(g.Categories, []string{dns, srv}) {
		t.Errorf("categories = %v", g.Categories)
	}
	if !reflect.DeepEqual(g.Series, []string{"male", "female"}) {
		t.Errorf("series = %v", g.Series)
	}
	want := [][]int{{2, 0}, {1, 2}}
	if !reflect.DeepEqual(g.Counts, want) {
		t.Errorf("counts = %v, want %v", g.Counts, want)
	}
	if g.Count(srv, "female") != 2 || g.Count(dns, "female") != 0 || g.Count("other", "male") != 0 {
		t.Error("unexpected Count lookup")
	}
	if g.Max() != 2 {
		t.Errorf("Max = %d", g.Max())
	}
}

func TestGender_FirstAppearanceOrder(t *testing.T) {
	g := Gender(labeled(row("female", 1, nil, 70, 1), row("male", 3, nil, 7, 0)))
	if !reflect.DeepEqual(g.Categories, []string{srv, dns}) || !reflect.DeepEqual(g.Series, []string{"female", "male"}) {
		t.Errorf("order = %v / %v", g.Categories, g.Series)
	}
}

// =============================================================================
// Age histogram
// =============================================================================

func TestAge_StackedFixedBins(t *testing.T) {
	ft := labeled(
		row("male", 3, model.Float(10), 7, 0),
		row("female", 1, model.Float(30), 70, 1),
		row("male", 3, model.Float(20), 7, 0),
		row("female", 1, nil, 70, 1),
		row("male", 2, model.Float(40), 13, 0),
		row("female", 2, model.Float(40), 26, 1),
	)
	h := Age(ft, 2)

	if !reflect.DeepEqual(h.Labels, []string{dns, srv}) {
		t.Fatalf("labels = %v", h.Labels)
	}
	if !reflect.DeepEqual(h.Edges, []float64{10, 25, 40}) {
		t.Fatalf("edges = %v", h.Edges)
	}
	if h.Missing != 1 {
		t.Errorf("missing = %d", h.Missing)
	}
	if !reflect.DeepEqual(h.Bins[0].Counts, []int{2, 0}) || !reflect.DeepEqual(h.Bins[1].Counts, []int{1, 2}) {
		t.Errorf("bins = %+v", h.Bins)
	}
	if h.MaxTotal() != 3 {
		t.Errorf("MaxTotal = %d", h.MaxTotal())
	}
}

func TestAge_NoAges(t *testing.T) {
	h := Age(labeled(row("male", 3, nil, 7, 0), row("female", 1, nil, 70, 1)), 0)
	if !h.Empty() || h.Edges != nil {
		t.Fatalf("expected empty histogram, got %+v", h)
	}
	if h.Missing != 2 {
		t.Errorf("missing = %d", h.Missing)
	}
}

func TestAge_SingleValue(t *testing.T) {
	h := Age(labeled(row("male", 3, model.Float(30), 7, 0), row("male", 3, model.Float(30), 8, 1)), 0)
	if !reflect.DeepEqual(h.Edges, []float64{29.5, 30.5}) {
		t.Fatalf("edges = %v", h.Edges)
	}
	if h.Bins[0].Total() != 2 {
		t.Errorf("bin total = %d", h.Bins[0].Total())
	}
}

func TestBinEdges(t *testing.T) {
	tests := []struct {
		name  string
		x     []float64
		bins  int
		first float64
		last  float64
	}{
		// Sturges is narrower than Freedman-Diaconis here.
		{"uniform", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 5, 1, 10},
		// Zero IQR falls back to Sturges.
		{"zero iqr", []float64{5, 5, 5, 5, 5, 5, 5, 5, 9}, 5, 5, 9},
		{"single", []float64{7}, 1, 6.5, 7.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := BinEdges(tt.x)
			if len(e) != tt.bins+1 {
				t.Fatalf("got %d bins (%v), want %d", len(e)-1, e, tt.bins)
			}
			if e[0] != tt.first || e[len(e)-1] != tt.last {
				t.Errorf("edges span %v..%v, want %v..%v", e[0], e[len(e)-1], tt.first, tt.last)
			}
		})
	}
}

func TestBinEdges_NonFiniteFallsBackToOneBin(t *testing.T) {
	for _, x := range [][]float64{
		{1, 2, math.Inf(1)},
		{math.Inf(-1), 3, 4},
		{math.Inf(-1), math.Inf(1)},
	} {
		e := BinEdges(x)
		if len(e) != 2 {
			t.Errorf("BinEdges(%v) = %v, want a single bin", x, e)
		}
	}
}

func TestBinEdges_FreedmanDiaconisWins(t *testing.T) {
	// Tight core with a far tail: FD width is much narrower than Sturges.
	x := make([]float64, 0, 101)
	for i := 0; i < 100; i++ {
		x = append(x, 20+float64(i)/100)
	}
	x = append(x, 80)

	e := BinEdges(x)
	sturges := int(math.Ceil(60 / ((80 - 20) / (math.Log2(101) + 1))))
	if len(e)-1 <= sturges {
		t.Errorf("expected more than %d bins, got %d", sturges, len(e)-1)
	}
}

func TestAge_Property_CountsEveryAge(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 60).Draw(rt, "n")
		ps := make([]model.Passenger, n)
		withAge := 0
		for i := range ps {
			ps[i] = row("male", 1, nil, 10, rapid.IntRange(0, 1).Draw(rt, "survived"))
			if rapid.Bool().Draw(rt, "hasAge") {
				ps[i].Age = model.Float(float64(rapid.IntRange(0, 320).Draw(rt, "quarterYears")) / 4)
				withAge++
			}
		}
		bins := rapid.SampledFrom([]int{0, 0, 1, 3, 10}).Draw(rt, "bins")
		h := Age(labeled(ps...), bins)

		total := 0
		for i, b := range h.Bins {
			total += b.Total()
			if b.Low != h.Edges[i] || b.High != h.Edges[i+1] || b.Low > b.High {
				rt.Fatalf("bin %d [%v, %v] inconsistent with edges %v", i, b.Low, b.High, h.Edges)
			}
		}
		if total != withAge || h.Missing != n-withAge {
			rt.Fatalf("binned %d and missed %d of %d rows (%d with age)", total, h.Missing, n, withAge)
		}
	})
}

// =============================================================================
// Fare box plot
// =============================================================================

func TestSummarize(t *testing.T) {
	b := Summarize("1", []float64{100, 3, 1, 4, 2})
	if b.N != 5 || b.Q1 != 2 || b.Median != 3 || b.Q3 != 4 || b.Mean != 22 {
		t.Errorf("summary = %+v", b)
	}
	if b.LowWhisk != 1 || b.HighWhisk != 4 {
		t.Errorf("whiskers = %v..%v", b.LowWhisk, b.HighWhisk)
	}
	if !reflect.DeepEqual(b.Outliers, []float64{100}) {
		t.Errorf("outliers = %v", b.Outliers)
	}
}

func TestSummarize_SingleValue(t *testing.T) {
	b := Summarize("2", []float64{13})
	if b.Q1 != 13 || b.Median != 13 || b.Q3 != 13 || b.LowWhisk != 13 || b.HighWhisk != 13 || len(b.Outliers) != 0 {
		t.Errorf("summary = %+v", b)
	}
}

func TestFare_ClassOrder(t *testing.T) {
	f := Fare(labeled(
		row("male", 3, nil, 7, 0),
		row("female", 1, nil, 70, 1),
		row("male", 3, nil, 8, 0),
	))
	if len(f.Boxes) != 2 || f.Boxes[0].Class != "1" || f.Boxes[1].Class != "3" {
		t.Fatalf("boxes = %+v", f.Boxes)
	}
	if f.Boxes[1].Median != 7.5 {
		t.Errorf("class 3 median = %v", f.Boxes[1].Median)
	}
	lo, hi := f.Range()
	if lo != 7 || hi != 70 {
		t.Errorf("Range = %v..%v", lo, hi)
	}
}

func TestQuantile(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	tests := []struct {
		p, want float64
	}{
		{0, 1},
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{1, 4},
	}
	for _, tt := range tests {
		if got := Quantile(x, tt.p); !approx(got, tt.want) {
			t.Errorf("Quantile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if !math.IsNaN(Quantile(nil, 0.5)) {
		t.Error("Quantile of nothing should be NaN")
	}
}
