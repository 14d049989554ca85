// Package model defines the passenger table the dashboard explores.
package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Column names consumed by the dashboard. The source file may carry more.
const (
	ColSex      = "Sex"
	ColPclass   = "Pclass"
	ColEmbarked = "Embarked"
	ColAge      = "Age"
	ColFare     = "Fare"
	ColSurvived = "Survived"
)

// RequiredColumns lists the columns every data source must provide, in the
// order they are reported when missing.
var RequiredColumns = []string{ColSex, ColPclass, ColEmbarked, ColAge, ColFare, ColSurvived}

// Survival display labels.
const (
	LabelDidNotSurvive = "Did Not Survive"
	LabelSurvived      = "Survived"
)

// EmbarkedMissing is the Embarked value of a passenger with no recorded port.
const EmbarkedMissing = ""

// MissingDisplay is how a missing value is shown.
const MissingDisplay = "NaN"

// EmbarkedMissingDisplay is how a missing port is shown in selectors.
const EmbarkedMissingDisplay = MissingDisplay

// Field is a column value the dashboard does not interpret.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Passenger is one row of the source table.
type Passenger struct {
	Row      int      `json:"row"`
	Sex      string   `json:"sex"`
	Pclass   int      `json:"pclass"`
	Embarked string   `json:"embarked"`
	Age      *float64 `json:"age"` // nil when missing
	Fare     float64  `json:"fare"`
	Survived int      `json:"survived"`
	Extra    []Field  `json:"extra,omitempty"`
}

// HasAge reports whether the passenger's age is recorded.
func (p Passenger) HasAge() bool {
	return p.Age != nil && !math.IsNaN(*p.Age)
}

// AgeValue returns the age, or NaN when missing.
func (p Passenger) AgeValue() float64 {
	if !p.HasAge() {
		return math.NaN()
	}
	return *p.Age
}

// Validate checks the invariants a loaded passenger must satisfy.
func (p Passenger) Validate() error {
	if p.Sex == "" {
		return errors.New("sex cannot be empty")
	}
	if p.Pclass <= 0 {
		return fmt.Errorf("pclass must be positive, got %d", p.Pclass)
	}
	if p.Survived != 0 && p.Survived != 1 {
		return fmt.Errorf("survived must be 0 or 1, got %d", p.Survived)
	}
	if math.IsNaN(p.Fare) || math.IsInf(p.Fare, 0) || p.Fare < 0 {
		return fmt.Errorf("fare must be a finite non-negative number, got %v", p.Fare)
	}
	if p.HasAge() && (math.IsInf(*p.Age, 0) || *p.Age < 0) {
		return fmt.Errorf("age must be a finite non-negative number, got %v", *p.Age)
	}
	return nil
}

// SurvivalLabel maps the binary survival flag to its display label.
// The second return is false for values other than 0 and 1.
func SurvivalLabel(survived int) (string, bool) {
	switch survived {
	case 0:
		return LabelDidNotSurvive, true
	case 1:
		return LabelSurvived, true
	default:
		return "", false
	}
}

// DisplayEmbarked returns the selector text for a port value.
func DisplayEmbarked(v string) string {
	if v == EmbarkedMissing {
		return EmbarkedMissingDisplay
	}
	return v
}

// Float returns a pointer to v, for building passengers with a recorded age.
func Float(v float64) *float64 {
	return &v
}

// Value returns the text of the named column for display. Missing values are
// shown as NaN; an unknown column yields "".
func (p Passenger) Value(column string) string {
	switch column {
	case ColSex:
		return p.Sex
	case ColPclass:
		return strconv.Itoa(p.Pclass)
	case ColEmbarked:
		return DisplayEmbarked(p.Embarked)
	case ColAge:
		if !p.HasAge() {
			return MissingDisplay
		}
		return strconv.FormatFloat(*p.Age, 'f', -1, 64)
	case ColFare:
		return strconv.FormatFloat(p.Fare, 'f', -1, 64)
	case ColSurvived:
		return strconv.Itoa(p.Survived)
	}
	for _, f := range p.Extra {
		if f.Name == column {
			return f.Value
		}
	}
	return ""
}
