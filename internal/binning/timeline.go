package binning

import (
	"climate-platform/internal/calendar"
	"climate-platform/internal/models"
)

// YearEarlier returns the same period one year before. It reports false
// when that period does not exist, e.g. 29 Feb or ISO week 53.
func (l Linear) YearEarlier() (Linear, bool) {
	switch l.kind {
	case KindYear:
		return Linear{YearID(l.year - 1)}, true
	case KindYearMonth:
		return Linear{YearMonthID(l.year-1, l.month)}, true
	case KindYearWeek:
		if l.week > calendar.WeeksInISOYear(l.year-1) {
			return Linear{}, false
		}
		return Linear{YearWeekID(l.year-1, l.week)}, true
	default:
		if l.day > calendar.DaysInMonth(l.year-1, l.month) {
			return Linear{}, false
		}
		return Linear{YearDayID(l.year-1, l.month, l.day)}, true
	}
}

// Timeline lays a sparse series of linear bins over every bin from the
// first to the last, with nil values where no bin was produced
type Timeline struct {
	Bins   []Linear
	Values []*float64
	index  map[Identifier]int
}

// NewTimeline builds a timeline from bins and their values. All bins must be
// linear and of one granularity.
func NewTimeline(ids []Identifier, values []*float64) (*Timeline, error) {
	t := &Timeline{index: make(map[Identifier]int)}
	if len(ids) == 0 {
		return t, nil
	}

	var first, last Linear
	for i, id := range ids {
		l, ok := id.AsLinear()
		if !ok {
			return nil, models.NewConfigurationError("bin identifier", "bin %s has no chronological order", id.ID())
		}
		if id.kind != ids[0].kind {
			return nil, models.NewConfigurationError("bin identifier", "bins %s and %s have different granularities", ids[0].ID(), id.ID())
		}
		if i == 0 || l.Compare(first) < 0 {
			first = l
		}
		if i == 0 || l.Compare(last) > 0 {
			last = l
		}
	}

	bins, err := Range(first, last)
	if err != nil {
		return nil, err
	}
	t.Bins = bins
	t.Values = make([]*float64, len(bins))
	for i, b := range bins {
		t.index[b.Identifier] = i
	}
	for i, id := range ids {
		t.Values[t.index[id]] = values[i]
	}
	return t, nil
}

// Position returns the index of id in the timeline
func (t *Timeline) Position(id Identifier) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}

// YearEarlierPositions gives, for each bin, the index of the same period a
// year before, or -1 when it lies outside the timeline or does not exist
func (t *Timeline) YearEarlierPositions() []int {
	out := make([]int, len(t.Bins))
	for i, b := range t.Bins {
		out[i] = -1
		if prev, ok := b.YearEarlier(); ok {
			if j, ok := t.index[prev.Identifier]; ok {
				out[i] = j
			}
		}
	}
	return out
}
