// Package filter narrows the passenger table to the rows matching the
// current control selections.
//
// Filtering is an immutable pipeline: every Step takes a row slice and
// returns a new one, so the loaded table is never modified and the order in
// which steps run does not change the result.
package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mehaktrehan/titanic/pkg/model"
)

// All is the selector value meaning "no restriction".
const All = "All"

// Range is an inclusive numeric interval.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Valid reports whether the range can match anything: both bounds are numbers
// and Low <= High.
func (r Range) Valid() bool {
	return !math.IsNaN(r.Low) && !math.IsNaN(r.High) && r.Low <= r.High
}

// Contains reports whether v lies within [Low, High]. NaN is never contained.
func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// Covers reports whether the range spans all of b.
func (r Range) Covers(b model.Bounds) bool {
	return b.Valid && r.Low <= b.Min && r.High >= b.Max
}

func (r Range) String() string {
	return fmt.Sprintf("%s–%s", formatBound(r.Low), formatBound(r.High))
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Selection is the state of the five filter controls. Categorical fields hold
// the selector's display value; empty or All means unconstrained. A nil range
// means unconstrained.
type Selection struct {
	Sex      string `json:"sex,omitempty"`
	Class    string `json:"class,omitempty"`
	Embarked string `json:"embarked,omitempty"`
	Age      *Range `json:"age,omitempty"`
	Fare     *Range `json:"fare,omitempty"`
}

// Constraint is one active restriction, for display.
type Constraint struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func isAll(v string) bool {
	return v == "" || strings.EqualFold(v, All)
}

// Normalize returns a copy with whitespace trimmed, All folded to empty, and
// ranges that span the observed bounds of d dropped. A control left at its
// extremes therefore restricts nothing, and rows with a missing Age stay in.
func (s Selection) Normalize(d model.Domain) Selection {
	out := Selection{
		Sex:      strings.TrimSpace(s.Sex),
		Class:    strings.TrimSpace(s.Class),
		Embarked: strings.TrimSpace(s.Embarked),
	}
	if isAll(out.Sex) {
		out.Sex = ""
	}
	if isAll(out.Class) {
		out.Class = ""
	}
	if isAll(out.Embarked) {
		out.Embarked = ""
	}
	if s.Age != nil && !s.Age.Covers(d.AgeBounds) {
		r := *s.Age
		out.Age = &r
	}
	if s.Fare != nil && !s.Fare.Covers(d.FareBounds) {
		r := *s.Fare
		out.Fare = &r
	}
	return out
}

// IsZero reports whether the selection restricts nothing.
func (s Selection) IsZero() bool {
	return len(s.Active()) == 0
}

// Active lists the constraints that restrict rows, in control order.
func (s Selection) Active() []Constraint {
	var out []Constraint
	if !isAll(s.Sex) {
		out = append(out, Constraint{Name: model.ColSex, Value: s.Sex})
	}
	if !isAll(s.Class) {
		out = append(out, Constraint{Name: model.ColPclass, Value: s.Class})
	}
	if !isAll(s.Embarked) {
		out = append(out, Constraint{Name: model.ColEmbarked, Value: s.Embarked})
	}
	if s.Age != nil {
		out = append(out, Constraint{Name: model.ColAge, Value: s.Age.String()})
	}
	if s.Fare != nil {
		out = append(out, Constraint{Name: model.ColFare, Value: s.Fare.String()})
	}
	return out
}

func (s Selection) String() string {
	active := s.Active()
	if len(active) == 0 {
		return "no filters"
	}
	parts := make([]string, len(active))
	for i, c := range active {
		parts[i] = c.Name + "=" + c.Value
	}
	return strings.Join(parts, " ")
}

// ParseClass parses a passenger class selector value.
func ParseClass(v string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}
