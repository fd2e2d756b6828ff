// Package aggregation defines the reduction functions applied at the cup,
// bucket and bin levels. Each function combines weighted children into one
// weighted value and declares whether it may be applied repeatedly up a
// hierarchy or must run once over raw points.
package aggregation

import (
	"strings"

	"github.com/montanaflynn/stats"

	"climate-platform/internal/models"
)

// Weighted is a value together with the number of periods it covers
type Weighted struct {
	Value  float64
	Weight float64
}

// Function reduces a set of weighted children to a single weighted value
type Function interface {
	Name() string

	// Combine returns false when children is empty. The result weight is
	// the sum of the children's weights.
	Combine(children []Weighted) (Weighted, bool)

	// Associative reports whether reducing sub-groups and then reducing
	// their results equals a single reduction over every raw point.
	Associative() bool
}

var (
	Mean   Function = mean{}
	Sum    Function = sum{}
	Min    Function = minimum{}
	Max    Function = maximum{}
	Median Function = median{}
)

var byName = map[string]Function{
	"mean":   Mean,
	"sum":    Sum,
	"min":    Min,
	"max":    Max,
	"median": Median,
}

// Parse looks a function up by name, case-insensitively
func Parse(name string) (Function, error) {
	fn, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, models.NewConfigurationError("aggregation", "unknown aggregation function %q", name)
	}
	return fn, nil
}

func values(children []Weighted) stats.Float64Data {
	data := make(stats.Float64Data, len(children))
	for i, c := range children {
		data[i] = c.Value
	}
	return data
}

func totalWeight(children []Weighted) float64 {
	var w float64
	for _, c := range children {
		w += c.Weight
	}
	return w
}

// mean is weighted by each child's share of the total periods covered
type mean struct{}

func (mean) Name() string      { return "Mean" }
func (mean) Associative() bool { return true }

func (mean) Combine(children []Weighted) (Weighted, bool) {
	if len(children) == 0 {
		return Weighted{}, false
	}

	w := totalWeight(children)
	if w == 0 {
		m, _ := stats.Mean(values(children))
		return Weighted{Value: m}, true
	}

	var acc float64
	for _, c := range children {
		acc += c.Value * (c.Weight / w)
	}
	return Weighted{Value: acc, Weight: w}, true
}

type sum struct{}

func (sum) Name() string      { return "Sum" }
func (sum) Associative() bool { return true }

func (sum) Combine(children []Weighted) (Weighted, bool) {
	if len(children) == 0 {
		return Weighted{}, false
	}
	s, _ := stats.Sum(values(children))
	return Weighted{Value: s, Weight: totalWeight(children)}, true
}

type minimum struct{}

func (minimum) Name() string      { return "Min" }
func (minimum) Associative() bool { return true }

func (minimum) Combine(children []Weighted) (Weighted, bool) {
	if len(children) == 0 {
		return Weighted{}, false
	}
	m, _ := stats.Min(values(children))
	return Weighted{Value: m, Weight: totalWeight(children)}, true
}

type maximum struct{}

func (maximum) Name() string      { return "Max" }
func (maximum) Associative() bool { return true }

func (maximum) Combine(children []Weighted) (Weighted, bool) {
	if len(children) == 0 {
		return Weighted{}, false
	}
	m, _ := stats.Max(values(children))
	return Weighted{Value: m, Weight: totalWeight(children)}, true
}

// median ignores weights and must see every raw point at once
type median struct{}

func (median) Name() string      { return "Median" }
func (median) Associative() bool { return false }

func (median) Combine(children []Weighted) (Weighted, bool) {
	if len(children) == 0 {
		return Weighted{}, false
	}
	m, _ := stats.Median(values(children))
	return Weighted{Value: m, Weight: totalWeight(children)}, true
}
