package binning

import (
	"climate-platform/internal/models"
)

// Thresholds are the minimum proportions of data required at each level
type Thresholds struct {
	Cup    float64 `json:"requiredCupDataProportion"`
	Bucket float64 `json:"requiredBucketDataProportion"`
	Bin    float64 `json:"requiredBinDataProportion"`
}

// Validate checks every proportion lies in [0,1]
func (t Thresholds) Validate() error {
	levels := []struct {
		name string
		v    float64
	}{{"cup", t.Cup}, {"bucket", t.Bucket}, {"bin", t.Bin}}

	for _, l := range levels {
		if l.v < 0 || l.v > 1 {
			return models.NewConfigurationError("bin rejector", "required %s data proportion %v is outside [0,1]", l.name, l.v)
		}
	}
	return nil
}

// FlaggedBin is a raw bin annotated with its adequacy verdict
type FlaggedBin struct {
	RawBin
	MeetsDataRequirements bool
}

// RejectBins marks each bin by the cascade: a cup is full enough when its
// populated share of expected points reaches t.Cup, a bucket when its share
// of full cups reaches t.Bucket, and a bin when its share of full buckets
// reaches t.Bin. Bins are never dropped.
func RejectBins(bins []RawBin, t Thresholds) []FlaggedBin {
	out := make([]FlaggedBin, len(bins))
	for i, bin := range bins {
		out[i] = FlaggedBin{RawBin: bin, MeetsDataRequirements: binMeetsRequirements(bin, t)}
	}
	return out
}

func proportion(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of)
}

func cupFullEnough(c Cup, t Thresholds) bool {
	return proportion(c.PopulatedCount(), c.ExpectedPointCount) >= t.Cup
}

func bucketFullEnough(b Bucket, t Thresholds) bool {
	full := 0
	for _, c := range b.Cups {
		if cupFullEnough(c, t) {
			full++
		}
	}
	return proportion(full, len(b.Cups)) >= t.Bucket
}

func binMeetsRequirements(bin RawBin, t Thresholds) bool {
	full := 0
	for _, b := range bin.Buckets {
		if bucketFullEnough(b, t) {
			full++
		}
	}
	return proportion(full, len(bin.Buckets)) >= t.Bin
}
