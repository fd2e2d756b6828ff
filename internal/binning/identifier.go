// Package binning partitions a series into bins, buckets and cups, flags
// bins that lack adequate data, and reduces each bin to a single value.
package binning

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"climate-platform/internal/calendar"
	"climate-platform/internal/models"
)

// BinningRule selects the granularity of the output bins
type BinningRule string

const (
	ByYear                                  BinningRule = "ByYear"
	ByYearAndMonth                          BinningRule = "ByYearAndMonth"
	ByYearAndWeek                           BinningRule = "ByYearAndWeek"
	ByYearAndDay                            BinningRule = "ByYearAndDay"
	ByMonthOnly                             BinningRule = "ByMonthOnly"
	BySouthernHemisphereTemperateSeasonOnly BinningRule = "BySouthernHemisphereTemperateSeasonOnly"
	BySouthernHemisphereTropicalSeasonOnly  BinningRule = "BySouthernHemisphereTropicalSeasonOnly"
)

var binningRules = []BinningRule{
	ByYear, ByYearAndMonth, ByYearAndWeek, ByYearAndDay,
	ByMonthOnly, BySouthernHemisphereTemperateSeasonOnly, BySouthernHemisphereTropicalSeasonOnly,
}

// ParseBinningRule accepts a rule name in any case
func ParseBinningRule(s string) (BinningRule, error) {
	for _, r := range binningRules {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", models.NewConfigurationError("binning rule", "unknown binning rule %q", s)
}

// Linear reports whether the rule produces chronologically ordered bins
func (r BinningRule) Linear() bool {
	switch r {
	case ByYear, ByYearAndMonth, ByYearAndWeek, ByYearAndDay:
		return true
	}
	return false
}

// Kind tags the variant an Identifier holds
type Kind int8

const (
	KindYear Kind = iota
	KindYearMonth
	KindYearWeek
	KindYearDay
	KindMonthOnly
	KindTemperateSeason
	KindTropicalSeason
)

// Linear reports whether identifiers of this kind are totally ordered
func (k Kind) Linear() bool {
	return k <= KindYearDay
}

// Identifier names one bin. It is a comparable value: two identifiers are
// equal exactly when their IDs are equal.
type Identifier struct {
	kind      Kind
	year      int
	month     time.Month
	week      int
	day       int
	temperate calendar.TemperateSeason
	tropical  calendar.TropicalSeason
}

func YearID(year int) Identifier {
	return Identifier{kind: KindYear, year: year}
}

func YearMonthID(year int, month time.Month) Identifier {
	return Identifier{kind: KindYearMonth, year: year, month: month}
}

// YearWeekID takes an ISO week-numbering year and week
func YearWeekID(isoYear, week int) Identifier {
	return Identifier{kind: KindYearWeek, year: isoYear, week: week}
}

func YearDayID(year int, month time.Month, day int) Identifier {
	return Identifier{kind: KindYearDay, year: year, month: month, day: day}
}

func MonthOnlyID(month time.Month) Identifier {
	return Identifier{kind: KindMonthOnly, month: month}
}

func TemperateSeasonID(s calendar.TemperateSeason) Identifier {
	return Identifier{kind: KindTemperateSeason, temperate: s}
}

func TropicalSeasonID(s calendar.TropicalSeason) Identifier {
	return Identifier{kind: KindTropicalSeason, tropical: s}
}

func (b Identifier) Kind() Kind { return b.kind }

// ID is a stable, parseable key such as y2020m03
func (b Identifier) ID() string {
	switch b.kind {
	case KindYear:
		return fmt.Sprintf("y%d", b.year)
	case KindYearMonth:
		return fmt.Sprintf("y%dm%02d", b.year, int(b.month))
	case KindYearWeek:
		return fmt.Sprintf("y%dw%02d", b.year, b.week)
	case KindYearDay:
		return fmt.Sprintf("y%dm%02dd%02d", b.year, int(b.month), b.day)
	case KindMonthOnly:
		return fmt.Sprintf("m%02d", int(b.month))
	case KindTemperateSeason:
		return fmt.Sprintf("s%d", int(b.temperate))
	default:
		return fmt.Sprintf("t%d", int(b.tropical))
	}
}

// Label is the human readable name used on chart axes
func (b Identifier) Label() string {
	switch b.kind {
	case KindYear:
		return strconv.Itoa(b.year)
	case KindYearMonth:
		return fmt.Sprintf("%s %d", b.month.String()[:3], b.year)
	case KindYearWeek:
		return fmt.Sprintf("%d week %d", b.year, b.week)
	case KindYearDay:
		return fmt.Sprintf("%d %s %d", b.day, b.month.String()[:3], b.year)
	case KindMonthOnly:
		return b.month.String()[:3]
	case KindTemperateSeason:
		return b.temperate.String()
	default:
		return b.tropical.String()
	}
}

func (b Identifier) String() string { return b.ID() }

// IsLinear reports whether the identifier supports ordering and ranges
func (b Identifier) IsLinear() bool { return b.kind.Linear() }

// AsLinear exposes the ordering capability of linear identifiers
func (b Identifier) AsLinear() (Linear, bool) {
	if !b.IsLinear() {
		return Linear{}, false
	}
	return Linear{b}, true
}

// ordinal orders modular identifiers within their kind
func (b Identifier) ordinal() int {
	switch b.kind {
	case KindMonthOnly:
		return int(b.month)
	case KindTemperateSeason:
		return int(b.temperate)
	case KindTropicalSeason:
		return int(b.tropical)
	}
	return 0
}

// less orders linear identifiers chronologically and modular identifiers by
// their position in the year
func less(a, b Identifier) bool {
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	if la, ok := a.AsLinear(); ok {
		lb, _ := b.AsLinear()
		return la.Compare(lb) < 0
	}
	return a.ordinal() < b.ordinal()
}

// Linear is an identifier of a gapless granularity
type Linear struct {
	Identifier
}

// FirstDay is the first calendar day in the bin
func (l Linear) FirstDay() time.Time {
	switch l.kind {
	case KindYear:
		return calendar.Date(l.year, time.January, 1)
	case KindYearMonth:
		return calendar.Date(l.year, l.month, 1)
	case KindYearWeek:
		return calendar.FirstDayOfISOWeek(l.year, l.week)
	default:
		return calendar.Date(l.year, l.month, l.day)
	}
}

// LastDay is the last calendar day in the bin
func (l Linear) LastDay() time.Time {
	switch l.kind {
	case KindYear:
		return calendar.Date(l.year, time.December, 31)
	case KindYearMonth:
		return calendar.Date(l.year, l.month, calendar.DaysInMonth(l.year, l.month))
	case KindYearWeek:
		return calendar.AddDays(l.FirstDay(), 6)
	default:
		return l.FirstDay()
	}
}

// Span is the bin's inclusive date range
func (l Linear) Span() calendar.DateSpan {
	return calendar.NewDateSpan(l.FirstDay(), l.LastDay())
}

// Next returns the following bin of the same kind
func (l Linear) Next() Linear {
	next, _ := linearFor(l.kind, calendar.AddDays(l.LastDay(), 1))
	return next
}

// Compare returns -1, 0 or +1 by first day
func (l Linear) Compare(other Linear) int {
	a, b := l.FirstDay(), other.FirstDay()
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// Range enumerates every bin from first to last inclusive
func Range(first, last Linear) ([]Linear, error) {
	if first.kind != last.kind {
		return nil, models.NewConfigurationError("bin identifier", "cannot range from %s to %s: different granularities", first.ID(), last.ID())
	}
	if first.Compare(last) > 0 {
		return nil, models.NewConfigurationError("bin identifier", "range start %s is after end %s", first.ID(), last.ID())
	}

	var out []Linear
	for cur := first; cur.Compare(last) <= 0; cur = cur.Next() {
		out = append(out, cur)
	}
	return out, nil
}

// linearFor returns the linear bin of the given kind containing date
func linearFor(kind Kind, date time.Time) (Linear, bool) {
	switch kind {
	case KindYear:
		return Linear{YearID(date.Year())}, true
	case KindYearMonth:
		return Linear{YearMonthID(date.Year(), date.Month())}, true
	case KindYearWeek:
		y, w := calendar.ISOWeek(date)
		return Linear{YearWeekID(y, w)}, true
	case KindYearDay:
		return Linear{YearDayID(date.Year(), date.Month(), date.Day())}, true
	}
	return Linear{}, false
}

var (
	linearPattern  = regexp.MustCompile(`^y(-?\d+)(?:m(\d{2})(?:d(\d{2}))?|w(\d{2}))?$`)
	modularPattern = regexp.MustCompile(`^([mst])(\d{1,2})$`)
)

// ParseIdentifier reverses ID
func ParseIdentifier(id string) (Identifier, error) {
	if m := linearPattern.FindStringSubmatch(id); m != nil {
		year, _ := strconv.Atoi(m[1])
		switch {
		case m[4] != "":
			week, _ := strconv.Atoi(m[4])
			if week < 1 || week > calendar.WeeksInISOYear(year) {
				break
			}
			return YearWeekID(year, week), nil
		case m[3] != "":
			month, _ := strconv.Atoi(m[2])
			day, _ := strconv.Atoi(m[3])
			if month < 1 || month > 12 || day < 1 || day > calendar.DaysInMonth(year, time.Month(month)) {
				break
			}
			return YearDayID(year, time.Month(month), day), nil
		case m[2] != "":
			month, _ := strconv.Atoi(m[2])
			if month < 1 || month > 12 {
				break
			}
			return YearMonthID(year, time.Month(month)), nil
		default:
			return YearID(year), nil
		}
		return Identifier{}, fmt.Errorf("bin identifier %q is out of range", id)
	}

	if m := modularPattern.FindStringSubmatch(id); m != nil {
		n, _ := strconv.Atoi(m[2])
		switch m[1] {
		case "m":
			if n >= 1 && n <= 12 {
				return MonthOnlyID(time.Month(n)), nil
			}
		case "s":
			if s := calendar.TemperateSeason(n); s.Valid() {
				return TemperateSeasonID(s), nil
			}
		case "t":
			if s := calendar.TropicalSeason(n); s.Valid() {
				return TropicalSeasonID(s), nil
			}
		}
		return Identifier{}, fmt.Errorf("bin identifier %q is out of range", id)
	}

	return Identifier{}, fmt.Errorf("unrecognised bin identifier %q", id)
}

// IdentifierFor returns the bin a date falls into under rule
func IdentifierFor(rule BinningRule, date time.Time) (Identifier, error) {
	switch rule {
	case ByYear:
		return YearID(date.Year()), nil
	case ByYearAndMonth:
		return YearMonthID(date.Year(), date.Month()), nil
	case ByYearAndWeek:
		y, w := calendar.ISOWeek(date)
		return YearWeekID(y, w), nil
	case ByYearAndDay:
		return YearDayID(date.Year(), date.Month(), date.Day()), nil
	case ByMonthOnly:
		return MonthOnlyID(date.Month()), nil
	case BySouthernHemisphereTemperateSeasonOnly:
		return TemperateSeasonID(calendar.TemperateSeasonOf(date.Month())), nil
	case BySouthernHemisphereTropicalSeasonOnly:
		return TropicalSeasonID(calendar.TropicalSeasonOf(date.Month())), nil
	}
	return Identifier{}, models.NewConfigurationError("binner", "unsupported binning rule %q", rule)
}
