package ui

import (
	"math"
	"strings"

	"github.com/mehaktrehan/titanic/pkg/filter"
	"github.com/mehaktrehan/titanic/pkg/model"
)

// selector is a single-choice control. Option 0 is always filter.All.
type selector struct {
	label   string
	options []string
	idx     int
}

func newSelector(label string, observed []string) selector {
	opts := make([]string, 0, len(observed)+1)
	opts = append(opts, filter.All)
	opts = append(opts, observed...)
	return selector{label: label, options: opts}
}

func (s *selector) move(delta int) bool {
	next := min(max(s.idx+delta, 0), len(s.options)-1)
	if next == s.idx {
		return false
	}
	s.idx = next
	return true
}

func (s selector) value() string { return s.options[s.idx] }

// choose selects the option equal to v, ignoring case. It reports false when
// v is not an option.
func (s *selector) choose(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		s.idx = 0
		return true
	}
	for i, o := range s.options {
		if strings.EqualFold(o, v) {
			s.idx = i
			return true
		}
	}
	return false
}

func (s *selector) reset() { s.idx = 0 }

// handle identifies one end of a range control.
type handle int

const (
	handleLow handle = iota
	handleHigh
)

// rangeControl is a two-handle slider over [min, max]. The handles never
// cross: moving one stops at the other.
type rangeControl struct {
	label    string
	min, max float64
	low      float64
	high     float64
	step     float64
	integer  bool
	active   handle
	disabled bool
}

// newRangeControl spans b. Integer controls widen the bounds to whole
// numbers so the extremes still cover every observed value.
func newRangeControl(label string, b model.Bounds, step float64, integer bool) rangeControl {
	r := rangeControl{label: label, step: step, integer: integer}
	if !b.Valid {
		r.disabled = true
		return r
	}
	r.min, r.max = b.Min, b.Max
	if integer {
		r.min, r.max = math.Floor(b.Min), math.Ceil(b.Max)
	}
	if r.step <= 0 {
		r.step = 1
	}
	r.reset()
	return r
}

func (r *rangeControl) reset() {
	r.low, r.high = r.min, r.max
	r.active = handleLow
}

// move shifts the active handle by steps steps and reports whether it moved.
func (r *rangeControl) move(steps float64) bool {
	if r.disabled {
		return false
	}
	delta := steps * r.step
	switch r.active {
	case handleLow:
		next := clamp(r.low+delta, r.min, r.high)
		if next == r.low {
			return false
		}
		r.low = next
	case handleHigh:
		next := clamp(r.high+delta, r.low, r.max)
		if next == r.high {
			return false
		}
		r.high = next
	}
	return true
}

// set places both handles, clamping into the bounds and keeping low <= high.
func (r *rangeControl) set(low, high float64) {
	if r.disabled {
		return
	}
	if r.integer {
		low, high = math.Floor(low), math.Ceil(high)
	}
	r.low = clamp(low, r.min, r.max)
	r.high = clamp(high, r.low, r.max)
}

// selection returns the control's range, or nil when disabled.
func (r rangeControl) selection() *filter.Range {
	if r.disabled {
		return nil
	}
	return &filter.Range{Low: r.low, High: r.high}
}

func (r rangeControl) atExtremes() bool {
	return r.disabled || (r.low == r.min && r.high == r.max)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// controlID names a sidebar control; the order is the focus order.
type controlID int

const (
	ctrlSex controlID = iota
	ctrlClass
	ctrlEmbarked
	ctrlAge
	ctrlFare
	numControls
)

// controls is the sidebar state.
type controls struct {
	sex      selector
	class    selector
	embarked selector
	age      rangeControl
	fare     rangeControl
	focus    controlID
}

func newControls(d model.Domain, fareStep float64) controls {
	ports := make([]string, len(d.Ports))
	for i, p := range d.Ports {
		ports[i] = model.DisplayEmbarked(p)
	}
	return controls{
		sex:      newSelector("Sex", d.Sexes),
		class:    newSelector("Passenger Class", d.Classes),
		embarked: newSelector("Embarked", ports),
		age:      newRangeControl("Age", d.AgeBounds, 1, true),
		fare:     newRangeControl("Fare", d.FareBounds, fareStep, false),
	}
}

func (c *controls) cycleFocus(delta int) {
	c.focus = controlID((int(c.focus) + delta + int(numControls)) % int(numControls))
}

func (c *controls) focusedSelector() *selector {
	switch c.focus {
	case ctrlSex:
		return &c.sex
	case ctrlClass:
		return &c.class
	case ctrlEmbarked:
		return &c.embarked
	}
	return nil
}

func (c *controls) focusedRange() *rangeControl {
	switch c.focus {
	case ctrlAge:
		return &c.age
	case ctrlFare:
		return &c.fare
	}
	return nil
}

// adjust moves the focused control by delta (a selector option or a range
// step) and reports whether the selection changed.
func (c *controls) adjust(delta float64) bool {
	if s := c.focusedSelector(); s != nil {
		return s.move(int(math.Copysign(1, delta)))
	}
	if r := c.focusedRange(); r != nil {
		return r.move(delta)
	}
	return false
}

// pickHandle makes h the active handle of the focused range control.
func (c *controls) pickHandle(h handle) bool {
	if r := c.focusedRange(); r != nil && !r.disabled {
		r.active = h
		return true
	}
	return false
}

func (c *controls) reset() {
	c.sex.reset()
	c.class.reset()
	c.embarked.reset()
	c.age.reset()
	c.fare.reset()
}

// selection reads the raw control state.
func (c controls) selection() filter.Selection {
	return filter.Selection{
		Sex:      c.sex.value(),
		Class:    c.class.value(),
		Embarked: c.embarked.value(),
		Age:      c.age.selection(),
		Fare:     c.fare.selection(),
	}
}
