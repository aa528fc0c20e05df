package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayplan/internal/commands"
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/timeline"
)

func (m Model) handleTimelineKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.DayTasks)-1 {
			m.Cursor++
		}
	case "g", "home":
		m.Cursor = 0
	case "G", "end":
		if len(m.DayTasks) > 0 {
			m.Cursor = len(m.DayTasks) - 1
		}
	}
	m.syncNotes()
	return m
}

// reload re-reads every task from the store and recomputes the day.
func (m *Model) reload() {
	if m.store == nil {
		m.recompute()
		return
	}
	tasks, err := m.store.Tasks(context.Background())
	if err != nil {
		m.fail(fmt.Errorf("load tasks: %w", err))
		return
	}
	m.Tasks = tasks
	m.recompute()
}

// recompute projects the selected day from the cached tasks. Projection,
// analysis and the active task are derived on every call, never stored.
func (m *Model) recompute() {
	m.DayTasks = timeline.ProjectDay(m.Tasks, m.SelectedDate)
	items, err := timeline.Analyze(m.DayTasks)
	if err != nil {
		m.fail(err)
		items = nil
	}
	m.Summary = timeline.Summarize(items)
	switch m.ShowMode {
	case commands.ShowGaps:
		gaps := make([]timeline.Item, 0, len(items))
		for _, it := range items {
			if it.Kind == timeline.ItemGap {
				gaps = append(gaps, it)
			}
		}
		m.Items = gaps
	default:
		m.Items = timeline.FilterGaps(items, m.cfg.MinGapMinutes)
	}

	m.ActiveID = ""
	if id, ok, err := timeline.ResolveActive(m.DayTasks, m.Now, m.SelectedDate); err == nil && ok {
		m.ActiveID = id
	}

	if m.Cursor >= len(m.DayTasks) {
		m.Cursor = len(m.DayTasks) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.syncNotes()
}

func (m Model) selectedTask() (model.Task, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.DayTasks) {
		return model.Task{}, false
	}
	return m.DayTasks[m.Cursor], true
}

func (m Model) findTask(id string) (model.Task, bool) {
	for _, t := range m.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (m *Model) toggleSubtask() {
	task, ok := m.selectedTask()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return
	}
	if len(task.Subtasks) == 0 {
		m.Status = StatusBar{Text: fmt.Sprintf("%s has no subtasks", task.Name)}
		return
	}
	target := task.Subtasks[len(task.Subtasks)-1]
	for _, s := range task.Subtasks {
		if !s.Completed {
			target = s
			break
		}
	}
	if err := m.store.ToggleSubtask(context.Background(), task.ID, target.ID); err != nil {
		m.fail(fmt.Errorf("toggle subtask: %w", err))
		return
	}
	m.reload()
	if updated, ok := m.findTask(task.ID); ok {
		done, total := updated.SubtaskProgress()
		m.Status = StatusBar{Text: fmt.Sprintf("%s: %d/%d subtasks done", task.Name, done, total)}
	}
}
