package scheduler

import (
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

type EventKind string

const (
	EventFired   EventKind = "alarm-fired"
	EventCleared EventKind = "alarm-cleared"
)

// Event is emitted when an alarm starts or stops ringing.
type Event struct {
	Kind    EventKind
	TaskID  string
	Trigger string
	Date    string
	At      time.Time
	Snoozed bool
}

// Marker identifies one (task, trigger minute, calendar day) firing.
type Marker struct {
	TaskID  string
	Trigger string
	Date    string
}

func (m Marker) Key() string {
	if m.TaskID == "" {
		return ""
	}
	return m.TaskID + "_" + m.Trigger + "_" + m.Date
}

// Snooze is a pending deferred re-trigger.
type Snooze struct {
	TaskID string
	Until  time.Time
}

// State is the alarm state carried between ticks. The zero value is idle with
// nothing fired yet.
type State struct {
	Ringing string
	Last    Marker
	Pending *Snooze
}

func (s State) IsRinging() bool { return s.Ringing != "" }

type Options struct {
	Enabled bool
}

// Evaluate applies one polling tick at now. A task fires when it occurs
// today, has its alarm enabled, its trigger minute equals now's minute, the
// marker differs from the last one fired and nothing is ringing. Only one
// alarm rings at a time; a second trigger is dropped, not queued.
func Evaluate(tasks []model.Task, now time.Time, st State, opts Options) (State, []Event) {
	if !opts.Enabled {
		return st, nil
	}
	today := model.DateString(now)
	clock := model.ClockString(now)

	if st.Pending != nil && !st.IsRinging() && !now.Before(st.Pending.Until) {
		id := st.Pending.TaskID
		st.Pending = nil
		if armed(tasks, id) {
			st.Ringing = id
			return st, []Event{{Kind: EventFired, TaskID: id, Trigger: clock, Date: today, At: now, Snoozed: true}}
		}
	}

	var events []Event
	for _, t := range tasks {
		if !t.AlarmEnabled {
			continue
		}
		trigger, err := t.TriggerTime()
		if err != nil || trigger != clock || !t.OccursOn(today) {
			continue
		}
		mark := Marker{TaskID: t.ID, Trigger: trigger, Date: today}
		if mark.Key() == st.Last.Key() || st.IsRinging() {
			continue
		}
		st.Last = mark
		st.Ringing = t.ID
		events = append(events, Event{Kind: EventFired, TaskID: t.ID, Trigger: trigger, Date: today, At: now})
	}
	return st, events
}

// Dismiss stops the ringing alarm. It is a no-op when idle.
func Dismiss(st State, now time.Time) (State, []Event) {
	if !st.IsRinging() {
		return st, nil
	}
	ev := Event{Kind: EventCleared, TaskID: st.Ringing, Date: model.DateString(now), At: now}
	st.Ringing = ""
	return st, []Event{ev}
}

// SnoozeFor stops the ringing alarm and re-arms it to fire again once d has
// elapsed. The de-duplication marker is kept, so the original trigger minute
// cannot fire a second time.
func SnoozeFor(st State, now time.Time, d time.Duration) (State, []Event) {
	if !st.IsRinging() {
		return st, nil
	}
	id := st.Ringing
	st, events := Dismiss(st, now)
	st.Pending = &Snooze{TaskID: id, Until: now.Add(d)}
	return st, events
}

func armed(tasks []model.Task, id string) bool {
	for _, t := range tasks {
		if t.ID == id {
			return t.AlarmEnabled
		}
	}
	return false
}
