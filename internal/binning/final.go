package binning

import (
	"github.com/montanaflynn/stats"
)

// CalculateFinalValues returns a copy of bins. With anomaly set, the mean of
// every non-nil value is subtracted from each value.
func CalculateFinalValues(bins []AggregatedBin, anomaly bool) []AggregatedBin {
	out := make([]AggregatedBin, len(bins))
	for i, b := range bins {
		out[i] = AggregatedBin{
			Identifier:            b.Identifier,
			MeetsDataRequirements: b.MeetsDataRequirements,
			Aggregate:             copyFloat(b.Aggregate),
			Value:                 copyFloat(b.Value),
		}
	}

	if !anomaly {
		return out
	}

	var present stats.Float64Data
	for _, b := range out {
		if b.Value != nil {
			present = append(present, *b.Value)
		}
	}
	if len(present) == 0 {
		return out
	}

	m, _ := stats.Mean(present)
	for i := range out {
		if out[i].Value != nil {
			*out[i].Value -= m
		}
	}
	return out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
