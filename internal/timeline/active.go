package timeline

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

// ResolveActive returns the id of the first task in dayTasks whose interval
// contains now. Only the day containing now can have an active task; any
// other selectedDate yields ok == false.
func ResolveActive(dayTasks []model.Task, now time.Time, selectedDate string) (string, bool, error) {
	if selectedDate != model.DateString(now) {
		return "", false, nil
	}
	current := model.MinuteOfDay(now)
	for _, t := range dayTasks {
		in, err := contains(t, current)
		if err != nil {
			return "", false, err
		}
		if in {
			return t.ID, true, nil
		}
	}
	return "", false, nil
}

// Progress reports the elapsed fraction of t at now, in [0, 1]. Intervals that
// cross midnight are measured across the day boundary.
func Progress(t model.Task, now time.Time) float64 {
	start, err := model.ParseClock(t.StartTime)
	if err != nil {
		return 0
	}
	total, err := t.Duration()
	if err != nil || total == 0 {
		return 0
	}
	elapsed := (model.MinuteOfDay(now) - start + model.MinutesPerDay) % model.MinutesPerDay
	if elapsed > total {
		return 1
	}
	return float64(elapsed) / float64(total)
}

func contains(t model.Task, minute int) (bool, error) {
	start, err := model.ParseClock(t.StartTime)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", t.ID, err)
	}
	end, err := model.ParseClock(t.EndTime)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", t.ID, err)
	}
	if end > start {
		return minute >= start && minute < end, nil
	}
	return minute >= start || minute < end, nil
}
