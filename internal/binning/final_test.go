package binning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-platform/internal/binning"
	"climate-platform/internal/models"
)

func aggregated(values ...*float64) []binning.AggregatedBin {
	out := make([]binning.AggregatedBin, len(values))
	for i, v := range values {
		out[i] = binning.AggregatedBin{
			Identifier:            binning.YearID(2000 + i),
			MeetsDataRequirements: v != nil,
			Aggregate:             v,
			Value:                 v,
		}
	}
	return out
}

func TestCalculateFinalValues_PassThrough(t *testing.T) {
	in := aggregated(models.Float(1), nil, models.Float(3))
	out := binning.CalculateFinalValues(in, false)

	require.Len(t, out, 3)
	assert.Equal(t, in, out)

	*out[0].Value = 100
	assert.Equal(t, 1.0, *in[0].Value, "output must not share state with the input")
}

func TestCalculateFinalValues_Anomaly(t *testing.T) {
	in := aggregated(models.Float(10), models.Float(12), nil, models.Float(17))
	out := binning.CalculateFinalValues(in, true)

	require.Len(t, out, 4)
	assert.Nil(t, out[2].Value)
	assert.InDelta(t, -3.0, *out[0].Value, 1e-9)
	assert.InDelta(t, -1.0, *out[1].Value, 1e-9)
	assert.InDelta(t, 4.0, *out[3].Value, 1e-9)

	var sum float64
	for _, b := range out {
		if b.Value != nil {
			sum += *b.Value
		}
	}
	assert.InDelta(t, 0, sum/3, 1e-9, "anomalies average to zero")
	assert.Equal(t, 10.0, *in[0].Value, "input is not modified")
}

func TestCalculateFinalValues_AllMissing(t *testing.T) {
	out := binning.CalculateFinalValues(aggregated(nil, nil), true)
	assert.Nil(t, out[0].Value)
	assert.Nil(t, out[1].Value)
}
