package update

import "github.com/sandeepkv93/dayplan/internal/model"

const occurrencePreviewCount = 5

// upcoming lists the next dates the selected task lands on after the selected
// day. They are computed for display only.
func (m Model) upcoming() (model.Task, []string) {
	task, ok := m.selectedTask()
	if !ok {
		return model.Task{}, nil
	}
	horizon := m.cfg.HorizonDays
	if horizon <= 0 {
		horizon = model.DefaultHorizonDays
	}
	return task, task.NextOccurrences(m.SelectedDate, horizon, occurrencePreviewCount)
}
