package binning

import (
	"sort"
	"time"

	"climate-platform/internal/calendar"
	"climate-platform/internal/models"
)

// Cup is the smallest aggregation unit: a short contiguous span of days
type Cup struct {
	FirstDay time.Time
	LastDay  time.Time

	// ExpectedPointCount is the number of observations a complete cup holds:
	// its length in days for daily data, 1 for monthly or yearly data.
	ExpectedPointCount int

	DataPoints []models.DataRecord
}

// PopulatedCount returns the number of distinct dates carrying a value
func (c Cup) PopulatedCount() int {
	seen := make(map[string]struct{}, len(c.DataPoints))
	for _, p := range c.DataPoints {
		if p.HasValue() {
			seen[p.Key()] = struct{}{}
		}
	}
	return len(seen)
}

// Bucket is one occurrence of the bin's period, e.g. March 2013 in the
// March bin. Its cups are contiguous and do not overlap.
type Bucket struct {
	FirstDay time.Time
	LastDay  time.Time
	Cups     []Cup
}

// RawBin is a bin before adequacy checks and aggregation
type RawBin struct {
	Identifier Identifier
	Buckets    []Bucket
}

// Binner splits records into the bin, bucket and cup hierarchy
type Binner struct {
	Rule        BinningRule
	CupSizeDays int
	Resolution  models.DataResolution
}

// supported lists the rules each source resolution can be binned by
var supported = map[models.DataResolution]map[BinningRule]bool{
	models.Daily: {
		ByYear: true, ByYearAndMonth: true, ByYearAndWeek: true, ByYearAndDay: true,
		ByMonthOnly: true, BySouthernHemisphereTemperateSeasonOnly: true, BySouthernHemisphereTropicalSeasonOnly: true,
	},
	models.Monthly: {
		ByYear: true, ByYearAndMonth: true,
		ByMonthOnly: true, BySouthernHemisphereTemperateSeasonOnly: true, BySouthernHemisphereTropicalSeasonOnly: true,
	},
	models.Yearly: {
		ByYear: true,
	},
}

// Validate rejects rule and resolution combinations the binner cannot build
func (b Binner) Validate() error {
	rules, ok := supported[b.Resolution]
	if !ok {
		return models.NewConfigurationError("binner", "unsupported data resolution %q", b.Resolution)
	}
	if !rules[b.Rule] {
		return models.NewConfigurationError("binner", "cannot bin %s data %s", b.Resolution, b.Rule)
	}
	if b.Resolution == models.Daily && b.CupSizeDays < 1 {
		return models.NewConfigurationError("binner", "cup size must be at least one day, got %d", b.CupSizeDays)
	}
	return nil
}

// Bin partitions points into bins ordered chronologically (linear rules) or
// by position in the year (modular rules). The input is not modified.
func (b Binner) Bin(points []models.DataRecord) ([]RawBin, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	type bucketGroup struct {
		span   calendar.DateSpan
		points []models.DataRecord
	}
	type binGroup struct {
		id      Identifier
		buckets map[int64]*bucketGroup
	}

	groups := make(map[Identifier]*binGroup)
	for _, p := range points {
		date := p.Date()
		id, err := IdentifierFor(b.Rule, date)
		if err != nil {
			return nil, err
		}
		span := b.occurrenceSpan(id, date)

		g, ok := groups[id]
		if !ok {
			g = &binGroup{id: id, buckets: make(map[int64]*bucketGroup)}
			groups[id] = g
		}
		key := span.Start.Unix()
		bg, ok := g.buckets[key]
		if !ok {
			bg = &bucketGroup{span: span}
			g.buckets[key] = bg
		}
		bg.points = append(bg.points, p)
	}

	bins := make([]RawBin, 0, len(groups))
	for _, g := range groups {
		bucketGroups := make([]*bucketGroup, 0, len(g.buckets))
		for _, bg := range g.buckets {
			bucketGroups = append(bucketGroups, bg)
		}
		sort.Slice(bucketGroups, func(i, j int) bool {
			return bucketGroups[i].span.Start.Before(bucketGroups[j].span.Start)
		})

		bin := RawBin{Identifier: g.id, Buckets: make([]Bucket, 0, len(bucketGroups))}
		for _, bg := range bucketGroups {
			bin.Buckets = append(bin.Buckets, b.buildBucket(bg.span, bg.points))
		}
		bins = append(bins, bin)
	}

	sort.Slice(bins, func(i, j int) bool {
		return less(bins[i].Identifier, bins[j].Identifier)
	})

	return bins, nil
}

// occurrenceSpan returns the dates of the bucket a point falls into. Linear
// bins have a single bucket covering the whole bin.
func (b Binner) occurrenceSpan(id Identifier, date time.Time) calendar.DateSpan {
	if l, ok := id.AsLinear(); ok {
		return l.Span()
	}

	switch id.Kind() {
	case KindMonthOnly:
		return calendar.NewDateSpan(
			calendar.Date(date.Year(), date.Month(), 1),
			calendar.Date(date.Year(), date.Month(), calendar.DaysInMonth(date.Year(), date.Month())),
		)
	case KindTemperateSeason:
		return id.temperate.Span(calendar.TemperateSeasonYear(date.Year(), date.Month()))
	default:
		return id.tropical.Span(calendar.TropicalSeasonYear(date.Year(), date.Month()))
	}
}

// cupSpans divides a bucket into cups according to the source resolution
func (b Binner) cupSpans(span calendar.DateSpan) []calendar.DateSpan {
	switch b.Resolution {
	case models.Daily:
		return calendar.DivideSpan(span, b.CupSizeDays)
	case models.Monthly:
		return calendar.MonthSpans(span)
	default:
		return []calendar.DateSpan{span}
	}
}

func (b Binner) buildBucket(span calendar.DateSpan, points []models.DataRecord) Bucket {
	spans := b.cupSpans(span)
	cups := make([]Cup, len(spans))
	for i, s := range spans {
		expected := 1
		if b.Resolution == models.Daily {
			expected = s.Days()
		}
		cups[i] = Cup{FirstDay: s.Start, LastDay: s.End, ExpectedPointCount: expected}
	}

	for _, p := range dedupe(points) {
		date := p.Date()
		i := sort.Search(len(cups), func(i int) bool {
			return !cups[i].LastDay.Before(date)
		})
		if i < len(cups) && !date.Before(cups[i].FirstDay) {
			cups[i].DataPoints = append(cups[i].DataPoints, p)
		}
	}

	return Bucket{FirstDay: span.Start, LastDay: span.End, Cups: cups}
}

// dedupe keeps one record per date: the first one carrying a value, or the
// first one when none do
func dedupe(points []models.DataRecord) []models.DataRecord {
	index := make(map[string]int, len(points))
	out := make([]models.DataRecord, 0, len(points))
	for _, p := range points {
		i, ok := index[p.Key()]
		switch {
		case !ok:
			index[p.Key()] = len(out)
			out = append(out, p)
		case !out[i].HasValue() && p.HasValue():
			out[i] = p
		}
	}
	return out
}
