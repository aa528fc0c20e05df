// Package timeline derives the per-day view of the routine set: which tasks
// land on a date, how they sit relative to each other, and which one is
// running now. Every function here is pure and recomputed from a snapshot.
package timeline

import (
	"sort"

	"github.com/sandeepkv93/dayplan/internal/model"
)

// ProjectDay selects the tasks occurring on date, ordered by start time and
// then end time. The input slice is left untouched.
func ProjectDay(tasks []model.Task, date string) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.OccursOn(date) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].EndTime < out[j].EndTime
	})
	return out
}
