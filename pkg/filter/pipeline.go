package filter

import (
	"github.com/mehaktrehan/titanic/pkg/debug"
	"github.com/mehaktrehan/titanic/pkg/metrics"
	"github.com/mehaktrehan/titanic/pkg/model"
)

// Step is one stage of the pipeline. It must not modify its input.
type Step func([]model.Passenger) []model.Passenger

// Where builds a step keeping the rows for which keep returns true.
func Where(keep func(model.Passenger) bool) Step {
	return func(rows []model.Passenger) []model.Passenger {
		out := make([]model.Passenger, 0, len(rows))
		for _, p := range rows {
			if keep(p) {
				out = append(out, p)
			}
		}
		return out
	}
}

func none([]model.Passenger) []model.Passenger {
	return []model.Passenger{}
}

// BySex keeps rows whose Sex equals v.
func BySex(v string) Step {
	return Where(func(p model.Passenger) bool { return p.Sex == v })
}

// ByClass keeps rows whose Pclass equals the parsed value of v. A value that
// does not parse matches nothing.
func ByClass(v string) Step {
	class, ok := ParseClass(v)
	if !ok {
		return none
	}
	return Where(func(p model.Passenger) bool { return p.Pclass == class })
}

// ByEmbarked keeps rows whose port, as shown in the selector, equals v.
func ByEmbarked(v string) Step {
	return Where(func(p model.Passenger) bool { return model.DisplayEmbarked(p.Embarked) == v })
}

// ByAgeRange keeps rows with a recorded Age inside r. Rows with a missing Age
// are dropped.
func ByAgeRange(r Range) Step {
	if !r.Valid() {
		return none
	}
	return Where(func(p model.Passenger) bool { return p.HasAge() && r.Contains(*p.Age) })
}

// ByFareRange keeps rows with Fare inside r.
func ByFareRange(r Range) Step {
	if !r.Valid() {
		return none
	}
	return Where(func(p model.Passenger) bool { return r.Contains(p.Fare) })
}

// Steps returns one step per active constraint, in control order.
func (s Selection) Steps() []Step {
	var steps []Step
	if !isAll(s.Sex) {
		steps = append(steps, BySex(s.Sex))
	}
	if !isAll(s.Class) {
		steps = append(steps, ByClass(s.Class))
	}
	if !isAll(s.Embarked) {
		steps = append(steps, ByEmbarked(s.Embarked))
	}
	if s.Age != nil {
		steps = append(steps, ByAgeRange(*s.Age))
	}
	if s.Fare != nil {
		steps = append(steps, ByFareRange(*s.Fare))
	}
	return steps
}

// Run threads rows through steps in order.
func Run(rows []model.Passenger, steps ...Step) []model.Passenger {
	for _, step := range steps {
		rows = step(rows)
	}
	return rows
}

// Apply returns the rows of t matching every active constraint of sel, in
// table order, each with its survival label.
func Apply(t model.Table, sel Selection) model.FilteredTable {
	defer metrics.Timer(metrics.FilterApply)()

	rows := Run(t.Passengers, sel.Steps()...)
	debug.Log("filter %s: %d/%d rows", sel, len(rows), t.Len())
	return Label(rows)
}

// Label attaches the derived survival label to each row.
func Label(rows []model.Passenger) model.FilteredTable {
	out := make([]model.LabeledPassenger, len(rows))
	for i, p := range rows {
		label, _ := model.SurvivalLabel(p.Survived)
		out[i] = model.LabeledPassenger{Passenger: p, SurvivalLabel: label}
	}
	return model.FilteredTable{Rows: out}
}
