package model

import (
	"math"
	"sort"
	"strconv"
)

// Table is the full dataset as loaded at startup. It is never mutated after
// load; filtering produces new slices.
type Table struct {
	Source     string      `json:"source"`
	Columns    []string    `json:"columns"`
	Passengers []Passenger `json:"passengers"`
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Passengers)
}

// LabeledPassenger is a passenger row plus the derived survival label.
type LabeledPassenger struct {
	Passenger
	SurvivalLabel string `json:"survived_label"`
}

// FilteredTable is the subset of a Table that satisfies a selection.
type FilteredTable struct {
	Rows []LabeledPassenger `json:"rows"`
}

// Len returns the number of matching rows.
func (f FilteredTable) Len() int {
	return len(f.Rows)
}

// Empty reports whether no row matched.
func (f FilteredTable) Empty() bool {
	return len(f.Rows) == 0
}

// Head returns at most n leading rows.
func (f FilteredTable) Head(n int) []LabeledPassenger {
	if n < 0 || n >= len(f.Rows) {
		return f.Rows
	}
	return f.Rows[:n]
}

// Bounds is an observed [Min, Max] interval. Valid is false when the column
// has no usable values.
type Bounds struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Valid bool    `json:"valid"`
}

// Domain holds the observed values used to populate the filter controls.
type Domain struct {
	Sexes      []string `json:"sexes"`
	Classes    []string `json:"classes"`
	Ports      []string `json:"ports"`
	AgeBounds  Bounds   `json:"age_bounds"`
	FareBounds Bounds   `json:"fare_bounds"`
}

// ObservedDomain scans the table once. Sex and Embarked keep first-appearance
// order; classes are sorted as strings.
func ObservedDomain(t Table) Domain {
	var d Domain
	seenSex := make(map[string]bool)
	seenPort := make(map[string]bool)
	seenClass := make(map[int]bool)
	age := Bounds{Min: math.Inf(1), Max: math.Inf(-1)}
	fare := Bounds{Min: math.Inf(1), Max: math.Inf(-1)}

	for _, p := range t.Passengers {
		if !seenSex[p.Sex] {
			seenSex[p.Sex] = true
			d.Sexes = append(d.Sexes, p.Sex)
		}
		if !seenPort[p.Embarked] {
			seenPort[p.Embarked] = true
			d.Ports = append(d.Ports, p.Embarked)
		}
		if !seenClass[p.Pclass] {
			seenClass[p.Pclass] = true
			d.Classes = append(d.Classes, strconv.Itoa(p.Pclass))
		}
		if p.HasAge() {
			age.Min = math.Min(age.Min, *p.Age)
			age.Max = math.Max(age.Max, *p.Age)
			age.Valid = true
		}
		fare.Min = math.Min(fare.Min, p.Fare)
		fare.Max = math.Max(fare.Max, p.Fare)
		fare.Valid = true
	}
	sort.Strings(d.Classes)

	if !age.Valid {
		age = Bounds{}
	}
	if !fare.Valid {
		fare = Bounds{}
	}
	d.AgeBounds = age
	d.FareBounds = fare
	return d
}
