package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/views"
)

// TickMsg refreshes the wall clock so the active task and day rollover stay
// current.
type TickMsg struct {
	At time.Time
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// ReloadMsg asks the model to re-read tasks from the store, e.g. after an
// external edit.
type ReloadMsg struct{}

func (m Model) tickCmd() tea.Cmd {
	every := m.cfg.PollInterval
	if every <= 0 {
		every = 15 * time.Second
	}
	clock := m.clock
	return tea.Tick(every, func(time.Time) tea.Msg { return TickMsg{At: clock()} })
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tickCmd()}
	if m.Scheduler != nil {
		cmds = append(cmds, waitForAlarmCmd(m.Scheduler.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == "ctrl+c" {
				m.Quitting = true
				return m, tea.Quit
			}
			return m.handlePaletteKey(typed), nil
		}
		if m.Alarm.IsRinging() {
			if next, handled := m.handleAlarmKey(typed); handled {
				return next, nil
			}
		}

		switch typed.String() {
		case "/":
			return m.openPalette(""), nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case m.Keys.PrevDay, "left":
			m.shiftDate(-1)
			return m, nil
		case m.Keys.NextDay, "right":
			m.shiftDate(1)
			return m, nil
		case m.Keys.Today:
			m.selectDate(m.Today)
			return m, nil
		case m.Keys.NewTask:
			return m.suggestNewTask(), nil
		case m.Keys.Alarm:
			m.toggleTaskAlarm()
			return m, nil
		case m.Keys.AlarmSwitch:
			m.toggleAlarmSwitch()
			return m, nil
		case m.Keys.Subtask:
			m.toggleSubtask()
			return m, nil
		case m.Keys.Occurrences:
			m.ShowNext = !m.ShowNext
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		return m.handleTimelineKey(typed), nil
	case tea.WindowSizeMsg:
		m.resize(typed.Width, typed.Height)
		return m, nil
	case TickMsg:
		m.advanceClock(typed.At)
		return m, m.tickCmd()
	case AlarmMsg:
		m.applyAlarmEvent(typed.Event)
		if m.Scheduler != nil {
			return m, waitForAlarmCmd(m.Scheduler.C())
		}
		return m, nil
	case alarmStoppedMsg:
		m.Alarm.Ringing = ""
		m.Status = StatusBar{Text: "alarm engine stopped", IsError: true}
		return m, nil
	case ReloadMsg:
		m.reload()
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.fail(typed.Err)
		return m, nil
	}
	return m, nil
}

func (m Model) handleAlarmKey(msg tea.KeyMsg) (Model, bool) {
	switch msg.String() {
	case m.Keys.Dismiss, "enter", "esc":
		if err := m.dismissAlarm(); err != nil {
			m.fail(err)
		} else {
			m.Status = StatusBar{Text: "dismissing alarm"}
		}
		return m, true
	case m.Keys.Snooze:
		if d, err := m.snoozeAlarm(0); err != nil {
			m.fail(err)
		} else {
			m.Status = StatusBar{Text: fmt.Sprintf("snoozed for %s", d)}
		}
		return m, true
	}
	return m, false
}

// advanceClock moves the model to now. When the calendar day rolls over
// while today is selected, the selection follows.
func (m *Model) advanceClock(now time.Time) {
	prevToday := m.Today
	m.Now = now
	m.Today = model.DateString(now)
	if m.Today != prevToday && m.SelectedDate == prevToday {
		m.SelectedDate = m.Today
		m.Cursor = 0
	}
	if m.Scheduler != nil {
		m.Alarm = m.Scheduler.State()
	}
	m.recompute()
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		status = "status: " + m.Status.Text
	}
	alarms := "on"
	if !m.AlarmsEnabled {
		alarms = "off"
	}
	right := m.renderDetailPane() + m.renderSummaryView() + m.renderOccurrencesIfVisible() + m.renderHelpIfVisible()
	left := m.renderTimelineView()
	if palette := m.renderCommandPalette(); palette != "" {
		left += "\n\n" + palette
	}
	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("dayplan | %s | now %s | alarms %s", m.SelectedDate, model.ClockString(m.Now), alarms),
		DateStrip:    m.renderDateStrip(),
		LeftPane:     left,
		RightPane:    right,
		Overlay:      m.renderAlarmOverlay(),
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: m.renderNotificationsView(),
		Footer:       fmt.Sprintf("keys: %s/%s day | %s today | n new | a alarm | / cmd | %s help | %s quit", m.Keys.PrevDay, m.Keys.NextDay, m.Keys.Today, m.Keys.Help, m.Keys.Quit),
		Width:        m.width,
	})
}

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}
