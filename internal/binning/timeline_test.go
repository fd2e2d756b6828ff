package binning_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-platform/internal/binning"
)

func f(v float64) *float64 { return &v }

func TestLinear_YearEarlier(t *testing.T) {
	tests := []struct {
		name string
		id   binning.Identifier
		want string
		ok   bool
	}{
		{"year", binning.YearID(2003), "y2002", true},
		{"month", binning.YearMonthID(2003, time.March), "y2002m03", true},
		{"week", binning.YearWeekID(2021, 10), "y2020w10", true},
		{"week 53 into a 52 week year", binning.YearWeekID(2021, 53), "", false},
		{"day", binning.YearDayID(2021, time.March, 1), "y2020m03d01", true},
		{"leap day", binning.YearDayID(2020, time.February, 29), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := tt.id.AsLinear()
			prev, ok := l.YearEarlier()
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, prev.ID())
			}
		})
	}
}

func TestNewTimeline_FillsGaps(t *testing.T) {
	ids := []binning.Identifier{binning.YearID(2003), binning.YearID(2000), binning.YearID(2001)}
	tl, err := binning.NewTimeline(ids, []*float64{f(16), f(10), f(11)})
	require.NoError(t, err)

	require.Len(t, tl.Bins, 4)
	assert.Equal(t, "y2000", tl.Bins[0].ID())
	assert.Equal(t, "y2003", tl.Bins[3].ID())
	assert.Equal(t, 10.0, *tl.Values[0])
	assert.Equal(t, 11.0, *tl.Values[1])
	assert.Nil(t, tl.Values[2], "2002 was never produced")
	assert.Equal(t, 16.0, *tl.Values[3])

	pos, ok := tl.Position(binning.YearID(2003))
	assert.True(t, ok)
	assert.Equal(t, 3, pos)

	assert.Equal(t, []int{-1, 0, 1, 2}, tl.YearEarlierPositions())
}

func TestNewTimeline_MonthlyYearEarlier(t *testing.T) {
	ids := []binning.Identifier{
		binning.YearMonthID(2000, time.November),
		binning.YearMonthID(2001, time.November),
	}
	tl, err := binning.NewTimeline(ids, []*float64{f(1), f(2)})
	require.NoError(t, err)

	require.Len(t, tl.Bins, 13)
	earlier := tl.YearEarlierPositions()
	assert.Equal(t, 0, earlier[12])
	assert.Equal(t, -1, earlier[11])
}

func TestNewTimeline_Errors(t *testing.T) {
	_, err := binning.NewTimeline([]binning.Identifier{binning.MonthOnlyID(time.March)}, []*float64{f(1)})
	assert.Error(t, err, "modular bins have no timeline")

	_, err = binning.NewTimeline(
		[]binning.Identifier{binning.YearID(2000), binning.YearMonthID(2000, time.June), binning.YearID(2001)},
		[]*float64{f(1), f(2), f(3)})
	assert.Error(t, err, "mixed granularities")

	tl, err := binning.NewTimeline(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, tl.Bins)
}
