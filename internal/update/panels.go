package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/timeline"
	"github.com/sandeepkv93/dayplan/internal/views"
)

func (m Model) renderCommandPalette() string {
	if !m.Palette.Active {
		return ""
	}
	return m.commandInput.View()
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Body)
}

func (m Model) renderDateStrip() string {
	dates := m.stripDates(9)
	cells := make([]views.DayCell, 0, len(dates))
	for _, d := range dates {
		day, err := model.ParseDate(d)
		if err != nil {
			continue
		}
		cells = append(cells, views.DayCell{
			Date:     d,
			Weekday:  day.Weekday().String()[:3],
			Day:      day.Day(),
			Selected: d == m.SelectedDate,
			Today:    d == m.Today,
		})
	}
	return views.RenderDateStrip(cells)
}

func (m Model) renderTimelineView() string {
	selected, _ := m.selectedTask()
	rows := make([]views.TimelineRow, 0, len(m.Items))
	for _, it := range m.Items {
		row := views.TimelineRow{
			Kind:     string(it.Kind),
			Start:    it.Start,
			End:      it.End,
			Duration: model.FormatSpan(it.Minutes),
		}
		if it.Kind == timeline.ItemTask {
			t := it.Task
			row.TaskID = t.ID
			row.Title = t.Name
			row.Repeat = string(t.Repeat)
			row.Cursor = t.ID == selected.ID
			row.Active = t.ID == m.ActiveID
			if t.AlarmEnabled {
				row.Alarm, _ = t.TriggerTime()
			}
			if done, total := t.SubtaskProgress(); total > 0 {
				row.Subtasks = fmt.Sprintf("%d/%d", done, total)
			}
		}
		rows = append(rows, row)
	}
	progress := ""
	if active, ok := m.findTask(m.ActiveID); ok {
		progress = m.activeBar.ViewAs(timeline.Progress(active, m.Now))
	}
	return views.RenderTimelinePanel(views.TimelinePanelData{
		Date:     m.SelectedDate,
		Mode:     string(m.ShowMode),
		Rows:     rows,
		Progress: progress,
	})
}

func (m Model) renderDetailPane() string {
	task, ok := m.selectedTask()
	if !ok {
		return views.RenderTaskDetail(views.TaskDetailData{})
	}
	duration := "Duration not set"
	if d, err := task.Duration(); err == nil {
		duration = model.FormatSpan(d)
	}
	alarm := "off"
	if task.AlarmEnabled {
		trigger, _ := task.TriggerTime()
		alarm = fmt.Sprintf("%s (%d min before start)", trigger, task.AlarmLeadMinutes)
		if !m.AlarmsEnabled {
			alarm += ", all alarms paused"
		}
	}
	subs := make([]views.SubtaskLine, 0, len(task.Subtasks))
	for _, s := range task.Subtasks {
		subs = append(subs, views.SubtaskLine{Text: s.Text, Completed: s.Completed})
	}
	return views.RenderTaskDetail(views.TaskDetailData{
		ID:       task.ID,
		Name:     task.Name,
		Span:     task.StartTime + "-" + task.EndTime,
		Duration: duration,
		Repeat:   string(task.Repeat),
		Anchor:   task.CreatedAt,
		Alarm:    alarm,
		Notes:    strings.TrimSpace(m.notesViewport.View()),
		Subtasks: subs,
	})
}

func (m Model) renderSummaryView() string {
	return views.RenderSummaryPanel(views.SummaryData{
		Tasks:     m.Summary.Tasks,
		Scheduled: model.FormatSpan(m.Summary.ScheduledMinutes),
		Free:      model.FormatSpan(m.Summary.FreeMinutes),
		Overlaps:  m.Summary.Overlaps,
		Closing:   m.Summary.Closing,
	})
}

func (m Model) renderOccurrencesIfVisible() string {
	if !m.ShowNext {
		return ""
	}
	task, dates := m.upcoming()
	return views.RenderOccurrencesPanel(views.OccurrencesData{TaskName: task.Name, Dates: dates})
}

func (m Model) renderAlarmOverlay() string {
	if !m.Alarm.IsRinging() {
		return ""
	}
	task, ok := m.findTask(m.Alarm.Ringing)
	if !ok {
		task = model.Task{Name: m.Alarm.Ringing}
	}
	trigger, _ := task.TriggerTime()
	snoozed := false
	if n := len(m.AlarmLog); n > 0 {
		snoozed = m.AlarmLog[n-1].Snoozed
	}
	return views.RenderAlarmOverlay(views.AlarmOverlayData{
		Name:        task.Name,
		Span:        task.StartTime + "-" + task.EndTime,
		Trigger:     trigger,
		Snoozed:     snoozed,
		SnoozeLabel: fmt.Sprintf("Snooze %d mins", m.cfg.SnoozeMinutes),
	})
}

// syncNotes renders the selected task's notes into the notes viewport.
func (m *Model) syncNotes() {
	task, ok := m.selectedTask()
	if !ok {
		m.notesViewport.SetContent("")
		return
	}
	m.notesViewport.SetContent(views.RenderMarkdown(task.Notes, m.notesViewport.Width))
	m.notesViewport.GotoTop()
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now().UTC(),
	})
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
}
