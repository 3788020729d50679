// Package timerange полуоткрытые интервалы времени [Start, End).
//
// Интервалы, которые только касаются границей (a.End == b.Start), не пересекаются.
package timerange

import "time"

// Range полуоткрытый интервал [Start, End)
type Range struct {
	Start time.Time
	End   time.Time
}

// New создает интервал
func New(start, end time.Time) Range {
	return Range{Start: start, End: end}
}

// FromDuration создает интервал [start, start+d)
func FromDuration(start time.Time, d time.Duration) Range {
	return Range{Start: start, End: start.Add(d)}
}

// Day возвращает сутки [00:00 UTC, 00:00 UTC следующего дня) для даты
func Day(date time.Time) Range {
	y, m, d := date.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Range{Start: start, End: start.AddDate(0, 0, 1)}
}

// Valid true, если Start строго раньше End
func (r Range) Valid() bool {
	return r.Start.Before(r.End)
}

// Duration длительность интервала
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps проверяет пересечение: a.Start < b.End && b.Start < a.End
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains проверяет, что other целиком лежит внутри r
func (r Range) Contains(other Range) bool {
	return !other.Start.Before(r.Start) && !other.End.After(r.End)
}

// Intersect возвращает пересечение интервалов. ok=false, если пересечение пустое.
func (r Range) Intersect(other Range) (Range, bool) {
	start := r.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := r.End
	if other.End.Before(end) {
		end = other.End
	}

	clipped := Range{Start: start, End: end}
	if !clipped.Valid() {
		return Range{}, false
	}
	return clipped, true
}
