package update

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
	"github.com/sandeepkv93/dayplan/internal/storage"
)

var errNoEngine = errors.New("alarm engine is not running")

const alarmLogLimit = 20

type AlarmMsg struct {
	Event scheduler.Event
}

// alarmStoppedMsg is delivered once when the engine closes its channel.
type alarmStoppedMsg struct{}

func waitForAlarmCmd(ch <-chan scheduler.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return alarmStoppedMsg{}
		}
		return AlarmMsg{Event: ev}
	}
}

func (m *Model) applyAlarmEvent(ev scheduler.Event) {
	m.AlarmLog = append(m.AlarmLog, ev)
	if len(m.AlarmLog) > alarmLogLimit {
		m.AlarmLog = m.AlarmLog[len(m.AlarmLog)-alarmLogLimit:]
	}
	name := ev.TaskID
	if t, ok := m.findTask(ev.TaskID); ok {
		name = t.Name
	}
	switch ev.Kind {
	case scheduler.EventFired:
		m.Alarm.Ringing = ev.TaskID
		label := "alarm"
		if ev.Snoozed {
			label = "snoozed alarm"
		}
		m.Status = StatusBar{Text: fmt.Sprintf("%s: %s (%s)", label, name, ev.Trigger), IsError: true}
		m.notify("Alarm", m.Status.Text, "alarm")
	case scheduler.EventCleared:
		if m.Alarm.Ringing == ev.TaskID {
			m.Alarm.Ringing = ""
		}
		m.Status = StatusBar{Text: fmt.Sprintf("alarm cleared: %s", name)}
	}
}

func (m *Model) dismissAlarm() error {
	if m.Scheduler == nil {
		return errNoEngine
	}
	if !m.Alarm.IsRinging() {
		return errors.New("no alarm is ringing")
	}
	return m.Scheduler.Dismiss()
}

func (m *Model) snoozeAlarm(minutes int) (time.Duration, error) {
	if m.Scheduler == nil {
		return 0, errNoEngine
	}
	if !m.Alarm.IsRinging() {
		return 0, errors.New("no alarm is ringing")
	}
	d := m.cfg.SnoozeDuration()
	if minutes > 0 {
		d = time.Duration(minutes) * time.Minute
	}
	if d <= 0 {
		d = 5 * time.Minute
	}
	return d, m.Scheduler.Snooze(d)
}

// toggleTaskAlarm flips the selected task's alarm, keeping its lead time.
func (m *Model) toggleTaskAlarm() {
	task, ok := m.selectedTask()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return
	}
	if err := m.setTaskAlarm(task, !task.AlarmEnabled, task.AlarmLeadMinutes); err != nil {
		m.fail(err)
	}
}

func (m *Model) setTaskAlarm(task model.Task, enabled bool, lead int) error {
	if err := m.store.SetAlarm(context.Background(), task.ID, enabled, lead); err != nil {
		return fmt.Errorf("set alarm: %w", err)
	}
	m.reload()
	m.pokeScheduler()
	state := "off"
	if enabled {
		trigger, _ := model.SubtractMinutes(task.StartTime, lead)
		state = "on at " + trigger
	}
	m.Status = StatusBar{Text: fmt.Sprintf("alarm %s: %s", state, task.Name)}
	return nil
}

func (m *Model) toggleAlarmSwitch() {
	enabled := !m.AlarmsEnabled
	if err := storage.SetAlarmsEnabled(context.Background(), m.store, enabled); err != nil {
		m.fail(fmt.Errorf("save alarm switch: %w", err))
		return
	}
	m.AlarmsEnabled = enabled
	if m.Scheduler != nil {
		if err := m.Scheduler.SetEnabled(enabled); err != nil {
			m.fail(err)
			return
		}
	}
	if enabled {
		m.Status = StatusBar{Text: "alarms enabled"}
	} else {
		m.Status = StatusBar{Text: "alarms disabled"}
	}
}

func (m *Model) pokeScheduler() {
	if m.Scheduler == nil {
		return
	}
	if err := m.Scheduler.Poke(); err != nil {
		m.log.Warn("alarm poke failed", "error", err)
	}
}
