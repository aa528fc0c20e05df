package model

import (
	"iter"
	"time"
)

// DefaultHorizonDays bounds how far ahead projected occurrences are listed.
const DefaultHorizonDays = 90

// OccursOn reports whether the task lands on the given YYYY-MM-DD date.
//
// Repeating tasks match dates before their CreatedAt anchor as well as after
// it; there is no lower or upper bound.
func (t Task) OccursOn(date string) bool {
	switch t.Repeat {
	case RepeatDaily:
		return true
	case RepeatWeekly:
		anchor, target, ok := parsePair(t.CreatedAt, date)
		return ok && anchor.Weekday() == target.Weekday()
	case RepeatMonthly:
		anchor, target, ok := parsePair(t.CreatedAt, date)
		return ok && anchor.Day() == target.Day()
	default:
		return t.CreatedAt == date
	}
}

// Occurrences yields the dates in [from, from+horizonDays) on which the task
// occurs. The values are computed on demand and never stored.
func (t Task) Occurrences(from string, horizonDays int) iter.Seq[string] {
	return func(yield func(string) bool) {
		start, err := ParseDate(from)
		if err != nil || horizonDays <= 0 {
			return
		}
		if t.Repeat == RepeatNone || t.Repeat == "" {
			if anchor, err := ParseDate(t.CreatedAt); err == nil &&
				!anchor.Before(start) && anchor.Before(start.AddDate(0, 0, horizonDays)) {
				yield(t.CreatedAt)
			}
			return
		}
		for i := 0; i < horizonDays; i++ {
			day := start.AddDate(0, 0, i).Format(DateLayout)
			if !t.OccursOn(day) {
				continue
			}
			if !yield(day) {
				return
			}
		}
	}
}

// NextOccurrences collects up to count dates strictly after from, within the
// horizon.
func (t Task) NextOccurrences(from string, horizonDays, count int) []string {
	if count <= 0 {
		return []string{}
	}
	next, err := AddDays(from, 1)
	if err != nil {
		return []string{}
	}
	out := make([]string, 0, count)
	for day := range t.Occurrences(next, horizonDays) {
		out = append(out, day)
		if len(out) == count {
			break
		}
	}
	return out
}

func parsePair(a, b string) (time.Time, time.Time, bool) {
	x, err := ParseDate(a)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	y, err := ParseDate(b)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return x, y, true
}
