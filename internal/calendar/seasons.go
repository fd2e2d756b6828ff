package calendar

import (
	"fmt"
	"strings"
	"time"
)

// TemperateSeason is a southern-hemisphere temperate season
type TemperateSeason int8

const (
	Summer TemperateSeason = iota
	Autumn
	Winter
	Spring
)

var temperateSeasonNames = [...]string{"Summer", "Autumn", "Winter", "Spring"}

func (s TemperateSeason) String() string {
	if s < Summer || s > Spring {
		return fmt.Sprintf("TemperateSeason(%d)", int8(s))
	}
	return temperateSeasonNames[s]
}

// Valid reports whether s is one of the four seasons
func (s TemperateSeason) Valid() bool {
	return s >= Summer && s <= Spring
}

// Months returns the calendar months of the season in chronological order
func (s TemperateSeason) Months() []time.Month {
	switch s {
	case Summer:
		return []time.Month{time.December, time.January, time.February}
	case Autumn:
		return []time.Month{time.March, time.April, time.May}
	case Winter:
		return []time.Month{time.June, time.July, time.August}
	default:
		return []time.Month{time.September, time.October, time.November}
	}
}

// Span returns the dates of the season occurrence attributed to year.
// Summer of year Y runs from 1 December Y-1 to the end of February Y.
func (s TemperateSeason) Span(year int) DateSpan {
	months := s.Months()
	first, last := months[0], months[len(months)-1]
	startYear := year
	if s == Summer {
		startYear = year - 1
	}
	return DateSpan{
		Start: Date(startYear, first, 1),
		End:   Date(year, last, DaysInMonth(year, last)),
	}
}

// TemperateSeasonOf returns the season a month belongs to
func TemperateSeasonOf(month time.Month) TemperateSeason {
	switch month {
	case time.December, time.January, time.February:
		return Summer
	case time.March, time.April, time.May:
		return Autumn
	case time.June, time.July, time.August:
		return Winter
	default:
		return Spring
	}
}

// TemperateSeasonYear returns the year whose season occurrence a month is
// attributed to. December belongs to the following year's summer.
func TemperateSeasonYear(year int, month time.Month) int {
	if month == time.December {
		return year + 1
	}
	return year
}

// ParseTemperateSeason accepts a season name in any case
func ParseTemperateSeason(name string) (TemperateSeason, error) {
	for i, n := range temperateSeasonNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return TemperateSeason(i), nil
		}
	}
	return 0, fmt.Errorf("unknown temperate season %q", name)
}

// TropicalSeason is a northern-Australian tropical season
type TropicalSeason int8

const (
	Wet TropicalSeason = iota
	Dry
)

var tropicalSeasonNames = [...]string{"Wet", "Dry"}

func (s TropicalSeason) String() string {
	if s < Wet || s > Dry {
		return fmt.Sprintf("TropicalSeason(%d)", int8(s))
	}
	return tropicalSeasonNames[s]
}

// Valid reports whether s is wet or dry
func (s TropicalSeason) Valid() bool {
	return s == Wet || s == Dry
}

// Months returns the calendar months of the season in chronological order
func (s TropicalSeason) Months() []time.Month {
	if s == Wet {
		return []time.Month{
			time.October, time.November, time.December,
			time.January, time.February, time.March, time.April,
		}
	}
	return []time.Month{time.May, time.June, time.July, time.August, time.September}
}

// Span returns the dates of the season occurrence attributed to year.
// The wet season of year Y runs from 1 October Y-1 to 30 April Y.
func (s TropicalSeason) Span(year int) DateSpan {
	if s == Wet {
		return DateSpan{Start: Date(year-1, time.October, 1), End: Date(year, time.April, 30)}
	}
	return DateSpan{Start: Date(year, time.May, 1), End: Date(year, time.September, 30)}
}

// TropicalSeasonOf returns the season a month belongs to
func TropicalSeasonOf(month time.Month) TropicalSeason {
	if month >= time.May && month <= time.September {
		return Dry
	}
	return Wet
}

// TropicalSeasonYear returns the year whose season occurrence a month is
// attributed to. October to December belong to the following year's wet season.
func TropicalSeasonYear(year int, month time.Month) int {
	if month >= time.October {
		return year + 1
	}
	return year
}

// ParseTropicalSeason accepts a season name in any case
func ParseTropicalSeason(name string) (TropicalSeason, error) {
	for i, n := range tropicalSeasonNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return TropicalSeason(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tropical season %q", name)
}
