package timeline

import "github.com/sandeepkv93/dayplan/internal/model"

// Summary condenses an analyzed day for the status panel.
type Summary struct {
	Tasks            int
	ScheduledMinutes int
	FreeMinutes      int
	Overlaps         int
	Closing          string
}

// Summarize totals the items produced by Analyze.
func Summarize(items []Item) Summary {
	var s Summary
	lastEnd := -1
	for _, it := range items {
		switch it.Kind {
		case ItemTask:
			s.Tasks++
			if d, err := it.Task.Duration(); err == nil {
				s.ScheduledMinutes += d
			}
			if e, err := model.ParseClock(it.Task.EndTime); err == nil {
				lastEnd = e
			}
		case ItemGap:
			s.FreeMinutes += it.Minutes
		case ItemOverlap:
			s.Overlaps++
		}
	}
	if lastEnd >= 0 {
		s.Closing = closingLine(lastEnd)
	}
	return s
}

func closingLine(lastEnd int) string {
	switch {
	case lastEnd < 20*60:
		return "rest of the day is clear."
	case lastEnd < 22*60:
		return "Hope you wind down and sleep well"
	default:
		return "Good night, sleep tight"
	}
}
