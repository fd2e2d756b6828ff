package smoothing

// YearOverYearDifference returns values[i] - values[earlier[i]] where both
// are present. earlier[i] is the index of the same period one year before
// i, or -1 when there is none.
func YearOverYearDifference(values []*float64, earlier []int) []*float64 {
	out := make([]*float64, len(values))
	for i, j := range earlier {
		if j < 0 || values[i] == nil || values[j] == nil {
			continue
		}
		d := *values[i] - *values[j]
		out[i] = &d
	}
	return out
}
