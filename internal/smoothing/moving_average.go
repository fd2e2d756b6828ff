// Package smoothing operates on already-aggregated series of nullable
// values: trailing and centred moving averages and year-over-year change.
package smoothing

import (
	"climate-platform/internal/models"
)

// DefaultDataThreshold is the share of a trailing window that must hold
// values before an average is reported
const DefaultDataThreshold = 0.25

func validate(windowSize int, dataThreshold float64) error {
	if windowSize < 1 {
		return models.NewConfigurationError("smoothing", "window size must be at least 1, got %d", windowSize)
	}
	if dataThreshold < 0 || dataThreshold > 1 {
		return models.NewConfigurationError("smoothing", "data threshold %v is outside [0,1]", dataThreshold)
	}
	return nil
}

func enough(count, windowSize int, dataThreshold float64) bool {
	return count > 0 && float64(count) >= float64(windowSize)*dataThreshold
}

// MovingAverageCalculator keeps a running sum and count over the last
// windowSize samples so each step costs O(1)
type MovingAverageCalculator struct {
	windowSize    int
	dataThreshold float64

	ring  []*float64
	next  int
	sum   float64
	count int
}

// NewMovingAverageCalculator creates a streaming trailing average
func NewMovingAverageCalculator(windowSize int, dataThreshold float64) (*MovingAverageCalculator, error) {
	if err := validate(windowSize, dataThreshold); err != nil {
		return nil, err
	}
	return &MovingAverageCalculator{
		windowSize:    windowSize,
		dataThreshold: dataThreshold,
		ring:          make([]*float64, windowSize),
	}, nil
}

// Add pushes a sample and returns the average of the current window, or nil
// when too few samples in it carry a value
func (c *MovingAverageCalculator) Add(v *float64) *float64 {
	if old := c.ring[c.next]; old != nil {
		c.sum -= *old
		c.count--
	}
	c.ring[c.next] = v
	if v != nil {
		c.sum += *v
		c.count++
	}
	c.next = (c.next + 1) % c.windowSize

	if !enough(c.count, c.windowSize, c.dataThreshold) {
		return nil
	}
	avg := c.sum / float64(c.count)
	return &avg
}

// SimpleMovingAverage computes the trailing average by rescanning each window
func SimpleMovingAverage(values []*float64, windowSize int, dataThreshold float64) ([]*float64, error) {
	if err := validate(windowSize, dataThreshold); err != nil {
		return nil, err
	}

	out := make([]*float64, len(values))
	for i := range values {
		start := i - windowSize + 1
		if start < 0 {
			start = 0
		}
		out[i] = averageOf(values[start:i+1], windowSize, dataThreshold)
	}
	return out, nil
}

// OptimizedMovingAverage gives the same output as SimpleMovingAverage using
// a MovingAverageCalculator
func OptimizedMovingAverage(values []*float64, windowSize int, dataThreshold float64) ([]*float64, error) {
	calc, err := NewMovingAverageCalculator(windowSize, dataThreshold)
	if err != nil {
		return nil, err
	}

	out := make([]*float64, len(values))
	for i, v := range values {
		out[i] = calc.Add(v)
	}
	return out, nil
}

// CentredMovingAverage averages a window of windowSize centred on each index.
// Indexes whose window would run past either end of values are always nil.
// For an even windowSize the window extends one further to the left.
func CentredMovingAverage(values []*float64, windowSize int, dataThreshold float64) ([]*float64, error) {
	if err := validate(windowSize, dataThreshold); err != nil {
		return nil, err
	}

	half := windowSize / 2
	out := make([]*float64, len(values))
	for i := range values {
		if i < half || i > len(values)-1-half {
			continue
		}
		start := i - half
		out[i] = averageOf(values[start:start+windowSize], windowSize, dataThreshold)
	}
	return out, nil
}

func averageOf(window []*float64, windowSize int, dataThreshold float64) *float64 {
	var sum float64
	count := 0
	for _, v := range window {
		if v != nil {
			sum += *v
			count++
		}
	}
	if !enough(count, windowSize, dataThreshold) {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}
