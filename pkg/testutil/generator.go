// Package testutil provides passenger table fixtures for tests.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/mehaktrehan/titanic/pkg/model"
)

// GeneratorConfig controls passenger generation.
type GeneratorConfig struct {
	Seed        int64    // Random seed (0 = 42)
	Sexes       []string // Sex values to draw from
	Ports       []string // Embarked values; model.EmbarkedMissing may be included
	MissingAge  float64  // Probability a row has no Age
	MaxAge      float64  // Ages are drawn from [0, MaxAge]
	MaxFare     float64  // Fares are drawn from [0, MaxFare]
	SurviveRate float64  // Probability Survived = 1
}

// DefaultConfig returns a config shaped like the real dataset.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:        42,
		Sexes:       []string{"male", "female"},
		Ports:       []string{"S", "C", "Q", model.EmbarkedMissing},
		MissingAge:  0.2,
		MaxAge:      80,
		MaxFare:     512.3292,
		SurviveRate: 0.38,
	}
}

// Generator creates passenger tables.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	if len(cfg.Sexes) == 0 {
		cfg.Sexes = def.Sexes
	}
	if len(cfg.Ports) == 0 {
		cfg.Ports = def.Ports
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = def.MaxAge
	}
	if cfg.MaxFare <= 0 {
		cfg.MaxFare = def.MaxFare
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Passengers generates n valid passengers. Ages and fares are rounded to two
// decimals so they survive a CSV round trip unchanged.
func (g *Generator) Passengers(n int) []model.Passenger {
	out := make([]model.Passenger, n)
	for i := range out {
		p := model.Passenger{
			Row:      i,
			Sex:      g.cfg.Sexes[g.rng.Intn(len(g.cfg.Sexes))],
			Pclass:   1 + g.rng.Intn(3),
			Embarked: g.cfg.Ports[g.rng.Intn(len(g.cfg.Ports))],
			Fare:     round2(g.rng.Float64() * g.cfg.MaxFare),
		}
		if g.rng.Float64() >= g.cfg.MissingAge {
			p.Age = model.Float(round2(g.rng.Float64() * g.cfg.MaxAge))
		}
		if g.rng.Float64() < g.cfg.SurviveRate {
			p.Survived = 1
		}
		out[i] = p
	}
	return out
}

// Table wraps n generated passengers in a table with the required columns.
func (g *Generator) Table(n int) model.Table {
	return model.Table{
		Source:     "generated",
		Columns:    append([]string(nil), model.RequiredColumns...),
		Passengers: g.Passengers(n),
	}
}

func round2(v float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return f
}

// ScenarioTable is the two-row table used by the concrete filtering scenario:
// a surviving first-class woman and a third-class man who did not survive.
func ScenarioTable() model.Table {
	return model.Table{
		Source:  "scenario",
		Columns: append([]string(nil), model.RequiredColumns...),
		Passengers: []model.Passenger{
			{Row: 0, Sex: "female", Pclass: 1, Embarked: "S", Age: model.Float(29), Fare: 100, Survived: 1},
			{Row: 1, Sex: "male", Pclass: 3, Embarked: "Q", Age: model.Float(22), Fare: 8, Survived: 0},
		},
	}
}

// ToCSV renders passengers as CSV with the required columns in canonical
// order. Missing values are written as empty cells.
func ToCSV(passengers []model.Passenger) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(model.RequiredColumns, ","))
	sb.WriteByte('\n')
	for _, p := range passengers {
		age := ""
		if p.HasAge() {
			age = strconv.FormatFloat(*p.Age, 'f', -1, 64)
		}
		fmt.Fprintf(&sb, "%s,%d,%s,%s,%s,%d\n",
			p.Sex, p.Pclass, p.Embarked, age,
			strconv.FormatFloat(p.Fare, 'f', -1, 64), p.Survived)
	}
	return sb.String()
}

// QuickTable generates a default table of n passengers.
func QuickTable(n int) model.Table {
	return NewDefault().Table(n)
}
