package binning_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-platform/internal/binning"
	"climate-platform/internal/calendar"
)

func TestIdentifier_IDLabelAndParse(t *testing.T) {
	tests := []struct {
		id     binning.Identifier
		wantID string
		label  string
		linear bool
	}{
		{binning.YearID(2020), "y2020", "2020", true},
		{binning.YearMonthID(2020, time.March), "y2020m03", "Mar 2020", true},
		{binning.YearWeekID(2020, 5), "y2020w05", "2020 week 5", true},
		{binning.YearDayID(2020, time.March, 15), "y2020m03d15", "15 Mar 2020", true},
		{binning.MonthOnlyID(time.November), "m11", "Nov", false},
		{binning.TemperateSeasonID(calendar.Winter), "s2", "Winter", false},
		{binning.TropicalSeasonID(calendar.Wet), "t0", "Wet", false},
	}

	for _, tt := range tests {
		t.Run(tt.wantID, func(t *testing.T) {
			assert.Equal(t, tt.wantID, tt.id.ID())
			assert.Equal(t, tt.label, tt.id.Label())
			assert.Equal(t, tt.linear, tt.id.IsLinear())

			parsed, err := binning.ParseIdentifier(tt.wantID)
			require.NoError(t, err)
			assert.Equal(t, tt.id, parsed)
		})
	}
}

func TestParseIdentifier_Invalid(t *testing.T) {
	for _, id := range []string{"", "x2020", "y2020m13", "y2021m02d29", "y2021w53", "m00", "s4", "t2"} {
		_, err := binning.ParseIdentifier(id)
		assert.Error(t, err, "ParseIdentifier(%q)", id)
	}
}

func TestLinear_Span(t *testing.T) {
	l, ok := binning.YearMonthID(2000, time.February).AsLinear()
	require.True(t, ok)
	assert.Equal(t, calendar.Date(2000, time.February, 1), l.FirstDay())
	assert.Equal(t, calendar.Date(2000, time.February, 29), l.LastDay())

	w, _ := binning.YearWeekID(2020, 1).AsLinear()
	assert.Equal(t, calendar.Date(2019, time.December, 30), w.FirstDay())
	assert.Equal(t, calendar.Date(2020, time.January, 5), w.LastDay())

	_, ok = binning.MonthOnlyID(time.March).AsLinear()
	assert.False(t, ok, "modular identifiers have no ordering capability")
}

func TestRange(t *testing.T) {
	from, _ := binning.YearMonthID(2019, time.November).AsLinear()
	to, _ := binning.YearMonthID(2020, time.February).AsLinear()

	got, err := binning.Range(from, to)
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, l := range got {
		ids[i] = l.ID()
	}
	assert.Equal(t, []string{"y2019m11", "y2019m12", "y2020m01", "y2020m02"}, ids)

	weekFrom, _ := binning.YearWeekID(2020, 52).AsLinear()
	weekTo, _ := binning.YearWeekID(2021, 2).AsLinear()
	weeks, err := binning.Range(weekFrom, weekTo)
	require.NoError(t, err)
	assert.Len(t, weeks, 4, "2020 has 53 ISO weeks")

	_, err = binning.Range(to, from)
	assert.Error(t, err)

	year, _ := binning.YearID(2020).AsLinear()
	_, err = binning.Range(year, to)
	assert.Error(t, err)
}

func TestIdentifierFor(t *testing.T) {
	date := calendar.Date(2012, time.December, 31)

	tests := []struct {
		rule binning.BinningRule
		want string
	}{
		{binning.ByYear, "y2012"},
		{binning.ByYearAndMonth, "y2012m12"},
		{binning.ByYearAndWeek, "y2013w01"},
		{binning.ByYearAndDay, "y2012m12d31"},
		{binning.ByMonthOnly, "m12"},
		{binning.BySouthernHemisphereTemperateSeasonOnly, "s0"},
		{binning.BySouthernHemisphereTropicalSeasonOnly, "t0"},
	}

	for _, tt := range tests {
		id, err := binning.IdentifierFor(tt.rule, date)
		require.NoError(t, err)
		assert.Equal(t, tt.want, id.ID(), string(tt.rule))
	}

	_, err := binning.IdentifierFor(binning.BinningRule("ByDecade"), date)
	assert.Error(t, err)
}

func TestParseBinningRule(t *testing.T) {
	r, err := binning.ParseBinningRule("byyearandmonth")
	require.NoError(t, err)
	assert.Equal(t, binning.ByYearAndMonth, r)
	assert.True(t, r.Linear())
	assert.False(t, binning.ByMonthOnly.Linear())

	_, err = binning.ParseBinningRule("ByDecade")
	assert.Error(t, err)
}
