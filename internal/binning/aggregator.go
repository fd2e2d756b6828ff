package binning

import (
	"climate-platform/internal/aggregation"
	"climate-platform/internal/models"
)

// Functions are the reductions applied at each level of the hierarchy
type Functions struct {
	Bin    aggregation.Function
	Bucket aggregation.Function
	Cup    aggregation.Function
}

// Validate rejects missing functions and any mix of a single-pass function
// (Median) with an associative one across levels.
func (f Functions) Validate() error {
	if f.Bin == nil || f.Bucket == nil || f.Cup == nil {
		return models.NewConfigurationError("bin aggregator", "bin, bucket and cup aggregation functions are all required")
	}

	single := 0
	for _, fn := range []aggregation.Function{f.Bin, f.Bucket, f.Cup} {
		if !fn.Associative() {
			single++
		}
	}
	if single == 0 {
		return nil
	}
	if single != 3 || f.Bucket.Name() != f.Bin.Name() || f.Cup.Name() != f.Bin.Name() {
		return models.NewConfigurationError("bin aggregator",
			"%s cannot be combined with other functions (bin=%s, bucket=%s, cup=%s)",
			firstSinglePass(f).Name(), f.Bin.Name(), f.Bucket.Name(), f.Cup.Name())
	}
	return nil
}

func firstSinglePass(f Functions) aggregation.Function {
	for _, fn := range []aggregation.Function{f.Bin, f.Bucket, f.Cup} {
		if !fn.Associative() {
			return fn
		}
	}
	return f.Bin
}

// Options alter how raw points enter the reduction
type Options struct {
	// ExcludeZerosFromMin drops zero values wherever Min is applied. Set when
	// points carry a day-of-year where 0 means "no frost", not a day.
	ExcludeZerosFromMin bool
}

// AggregatedBin is the per-bin result. Aggregate is always computed when the
// data allows; Value is nil when the bin failed its data requirements.
type AggregatedBin struct {
	Identifier            Identifier
	MeetsDataRequirements bool
	Aggregate             *float64
	Value                 *float64
}

// AggregateBins reduces each bin to one value. Associative functions are
// applied cup by cup, then bucket by bucket, weighting each child by the
// periods it covers. A single-pass function is applied once over every
// populated point in the bin.
func AggregateBins(bins []FlaggedBin, fns Functions, opts Options) ([]AggregatedBin, error) {
	if err := fns.Validate(); err != nil {
		return nil, err
	}

	out := make([]AggregatedBin, len(bins))
	for i, bin := range bins {
		var agg *float64
		if fns.Bin.Associative() {
			agg = reduceRepeatedly(bin.RawBin, fns, opts)
		} else {
			agg = reduceOnce(bin.RawBin, fns.Bin, opts)
		}

		out[i] = AggregatedBin{
			Identifier:            bin.Identifier,
			MeetsDataRequirements: bin.MeetsDataRequirements,
			Aggregate:             agg,
		}
		if bin.MeetsDataRequirements && agg != nil {
			v := *agg
			out[i].Value = &v
		}
	}

	return out, nil
}

func include(fn aggregation.Function, v float64, opts Options) bool {
	return !(opts.ExcludeZerosFromMin && fn == aggregation.Min && v == 0)
}

func filterChildren(fn aggregation.Function, children []aggregation.Weighted, opts Options) []aggregation.Weighted {
	if !opts.ExcludeZerosFromMin || fn != aggregation.Min {
		return children
	}
	kept := children[:0:0]
	for _, c := range children {
		if include(fn, c.Value, opts) {
			kept = append(kept, c)
		}
	}
	return kept
}

func cupPoints(c Cup, fn aggregation.Function, opts Options) []aggregation.Weighted {
	pts := make([]aggregation.Weighted, 0, len(c.DataPoints))
	for _, p := range c.DataPoints {
		if p.Value == nil || !include(fn, *p.Value, opts) {
			continue
		}
		pts = append(pts, aggregation.Weighted{Value: *p.Value, Weight: 1})
	}
	return pts
}

func reduceRepeatedly(bin RawBin, fns Functions, opts Options) *float64 {
	bucketAggs := make([]aggregation.Weighted, 0, len(bin.Buckets))
	for _, b := range bin.Buckets {
		cupAggs := make([]aggregation.Weighted, 0, len(b.Cups))
		for _, c := range b.Cups {
			w, ok := fns.Cup.Combine(cupPoints(c, fns.Cup, opts))
			if !ok {
				continue
			}
			w.Weight = float64(c.ExpectedPointCount)
			cupAggs = append(cupAggs, w)
		}

		if w, ok := fns.Bucket.Combine(filterChildren(fns.Bucket, cupAggs, opts)); ok {
			bucketAggs = append(bucketAggs, w)
		}
	}

	w, ok := fns.Bin.Combine(filterChildren(fns.Bin, bucketAggs, opts))
	if !ok {
		return nil
	}
	return &w.Value
}

func reduceOnce(bin RawBin, fn aggregation.Function, opts Options) *float64 {
	var all []aggregation.Weighted
	for _, b := range bin.Buckets {
		for _, c := range b.Cups {
			all = append(all, cupPoints(c, fn, opts)...)
		}
	}

	w, ok := fn.Combine(all)
	if !ok {
		return nil
	}
	return &w.Value
}
