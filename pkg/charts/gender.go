package charts

import "github.com/mehaktrehan/titanic/pkg/model"

// GenderSurvival counts passengers per survival label, split by sex.
type GenderSurvival struct {
	Meta
	// Categories are the survival labels along the x axis.
	Categories []string `json:"categories"`
	// Series are the sexes, one bar per category each.
	Series []string `json:"series"`
	// Counts[i][j] is the count for Categories[i] and Series[j].
	Counts [][]int `json:"counts"`
}

// Gender builds the survival-by-gender count chart. Categories and series
// keep the order in which values first appear in ft.
func Gender(ft model.FilteredTable) GenderSurvival {
	g := GenderSurvival{
		Meta:       Meta{Title: "Survival Count by Gender", XLabel: "Survival", YLabel: "Count"},
		Categories: firstSeen(ft.Rows, survivalLabel),
		Series:     firstSeen(ft.Rows, sex),
	}

	cat := indexOf(g.Categories)
	ser := indexOf(g.Series)
	g.Counts = make([][]int, len(g.Categories))
	for i := range g.Counts {
		g.Counts[i] = make([]int, len(g.Series))
	}
	for _, r := range ft.Rows {
		g.Counts[cat[r.SurvivalLabel]][ser[r.Sex]]++
	}
	return g
}

// Count returns the bar height for a label and sex, zero if absent.
func (g GenderSurvival) Count(label, sex string) int {
	for i, c := range g.Categories {
		if c != label {
			continue
		}
		for j, s := range g.Series {
			if s == sex {
				return g.Counts[i][j]
			}
		}
	}
	return 0
}

// Max returns the tallest bar.
func (g GenderSurvival) Max() int {
	m := 0
	for _, row := range g.Counts {
		for _, c := range row {
			m = max(m, c)
		}
	}
	return m
}
