package timeline

import (
	"fmt"

	"github.com/sandeepkv93/dayplan/internal/model"
)

type ItemKind string

const (
	ItemTask    ItemKind = "task"
	ItemGap     ItemKind = "gap"
	ItemOverlap ItemKind = "overlap"
)

// Item is one row of the analyzed day: a task, or the free time or conflict
// between two neighbouring tasks.
type Item struct {
	Kind    ItemKind
	Task    model.Task
	Start   string
	End     string
	Minutes int
}

// Analyze walks an already sorted day and inserts a gap or overlap item
// between each adjacent pair. Back-to-back tasks get neither. The comparison
// uses same-day minute offsets without wrapping.
func Analyze(dayTasks []model.Task) ([]Item, error) {
	items := make([]Item, 0, len(dayTasks)*2)
	for i, current := range dayTasks {
		items = append(items, Item{Kind: ItemTask, Task: current, Start: current.StartTime, End: current.EndTime})
		if i == len(dayTasks)-1 {
			break
		}
		next := dayTasks[i+1]
		end, err := model.ParseClock(current.EndTime)
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", current.ID, err)
		}
		start, err := model.ParseClock(next.StartTime)
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", next.ID, err)
		}
		switch {
		case end < start:
			items = append(items, Item{Kind: ItemGap, Start: current.EndTime, End: next.StartTime, Minutes: start - end})
		case end > start:
			items = append(items, Item{Kind: ItemOverlap, Start: next.StartTime, End: current.EndTime, Minutes: end - start})
		}
	}
	return items, nil
}

// FilterGaps drops gap items shorter than minGap minutes. It is a display
// policy; task and overlap items always pass.
func FilterGaps(items []Item, minGap int) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Kind == ItemGap && it.Minutes < minGap {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Count returns how many items of the given kind are present.
func Count(items []Item, kind ItemKind) int {
	n := 0
	for _, it := range items {
		if it.Kind == kind {
			n++
		}
	}
	return n
}
