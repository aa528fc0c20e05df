package timeline

import (
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

// Conflicts returns the tasks on date whose interval intersects candidate's.
// Intervals ending at or before their start are extended past midnight. The
// candidate itself (same id) is skipped so edits do not clash with their
// stored version.
func Conflicts(tasks []model.Task, candidate model.Task, date string) ([]model.Task, error) {
	cs, ce, err := bounds(candidate)
	if err != nil {
		return nil, err
	}
	out := make([]model.Task, 0)
	for _, t := range ProjectDay(tasks, date) {
		if t.ID == candidate.ID {
			continue
		}
		ts, te, err := bounds(t)
		if err != nil {
			return nil, err
		}
		if cs < te && ce > ts {
			out = append(out, t)
		}
	}
	return out, nil
}

func bounds(t model.Task) (int, int, error) {
	s, err := model.ParseClock(t.StartTime)
	if err != nil {
		return 0, 0, err
	}
	e, err := model.ParseClock(t.EndTime)
	if err != nil {
		return 0, 0, err
	}
	if e <= s {
		e += model.MinutesPerDay
	}
	return s, e, nil
}

// DefaultSlotMinutes is the length of the slot offered for a new task.
const DefaultSlotMinutes = 30

// SuggestSlot proposes start and end times for a new task on date: right
// after the latest-ending task created for that date, or now rounded down to
// five minutes when the date has none.
func SuggestSlot(tasks []model.Task, date string, now time.Time) (string, string) {
	latest := -1
	for _, t := range tasks {
		if t.CreatedAt != date {
			continue
		}
		if e, err := model.ParseClock(t.EndTime); err == nil && e > latest {
			latest = e
		}
	}
	start := latest
	if start < 0 {
		start = model.MinuteOfDay(now) / 5 * 5
	}
	return model.FormatClock(start), model.FormatClock(start + DefaultSlotMinutes)
}
