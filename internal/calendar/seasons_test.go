package calendar

import (
	"testing"
	"time"
)

func TestTemperateSeasonOf(t *testing.T) {
	want := map[time.Month]TemperateSeason{
		time.December: Summer, time.January: Summer, time.February: Summer,
		time.March: Autumn, time.April: Autumn, time.May: Autumn,
		time.June: Winter, time.July: Winter, time.August: Winter,
		time.September: Spring, time.October: Spring, time.November: Spring,
	}
	for month, season := range want {
		if got := TemperateSeasonOf(month); got != season {
			t.Errorf("TemperateSeasonOf(%v) = %v, want %v", month, got, season)
		}
	}
}

func TestTemperateSeasonYear(t *testing.T) {
	if got := TemperateSeasonYear(2012, time.December); got != 2013 {
		t.Errorf("December 2012 attributed to %d, want 2013", got)
	}
	if got := TemperateSeasonYear(2013, time.January); got != 2013 {
		t.Errorf("January 2013 attributed to %d, want 2013", got)
	}
	if got := TemperateSeasonYear(2013, time.November); got != 2013 {
		t.Errorf("November 2013 attributed to %d, want 2013", got)
	}
}

func TestTemperateSeasonSpan(t *testing.T) {
	summer := Summer.Span(2012)
	if !summer.Start.Equal(Date(2011, time.December, 1)) {
		t.Errorf("summer 2012 starts %v", summer.Start)
	}
	if !summer.End.Equal(Date(2012, time.February, 29)) {
		t.Errorf("summer 2012 ends %v", summer.End)
	}
	if summer.Days() != 91 {
		t.Errorf("summer 2012 has %d days, want 91", summer.Days())
	}

	winter := Winter.Span(2013)
	if winter.Days() != 92 {
		t.Errorf("winter 2013 has %d days, want 92", winter.Days())
	}
}

func TestTropicalSeasons(t *testing.T) {
	if TropicalSeasonOf(time.October) != Wet || TropicalSeasonOf(time.April) != Wet {
		t.Error("October and April should be in the wet season")
	}
	if TropicalSeasonOf(time.May) != Dry || TropicalSeasonOf(time.September) != Dry {
		t.Error("May and September should be in the dry season")
	}
	if got := TropicalSeasonYear(2012, time.October); got != 2013 {
		t.Errorf("October 2012 attributed to %d, want 2013", got)
	}
	if got := TropicalSeasonYear(2013, time.April); got != 2013 {
		t.Errorf("April 2013 attributed to %d, want 2013", got)
	}

	wet := Wet.Span(2013)
	if !wet.Start.Equal(Date(2012, time.October, 1)) || !wet.End.Equal(Date(2013, time.April, 30)) {
		t.Errorf("wet 2013 = %v..%v", wet.Start, wet.End)
	}
	if got := len(Wet.Months()); got != 7 {
		t.Errorf("wet season has %d months, want 7", got)
	}
}

func TestParseSeasons(t *testing.T) {
	s, err := ParseTemperateSeason(" winter ")
	if err != nil || s != Winter {
		t.Errorf("ParseTemperateSeason(winter) = %v, %v", s, err)
	}
	if _, err := ParseTemperateSeason("monsoon"); err == nil {
		t.Error("expected error for unknown season")
	}
	ts, err := ParseTropicalSeason("DRY")
	if err != nil || ts != Dry {
		t.Errorf("ParseTropicalSeason(DRY) = %v, %v", ts, err)
	}
}
