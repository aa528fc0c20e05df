package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRepeat = errors.New("model: invalid repeat rule")
	ErrInvalidLead   = errors.New("model: invalid alarm lead")
)

type Repeat string

const (
	RepeatNone    Repeat = "None"
	RepeatDaily   Repeat = "Daily"
	RepeatWeekly  Repeat = "Weekly"
	RepeatMonthly Repeat = "Monthly"
)

func (r Repeat) IsValid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	default:
		return false
	}
}

// ParseRepeat accepts the repeat names case-insensitively. Empty means None.
func ParseRepeat(raw string) (Repeat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none", "once":
		return RepeatNone, nil
	case "daily":
		return RepeatDaily, nil
	case "weekly":
		return RepeatWeekly, nil
	case "monthly":
		return RepeatMonthly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRepeat, raw)
	}
}

type Subtask struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Task is a routine block on the day timeline. StartTime and EndTime are
// "HH:mm"; an EndTime before StartTime crosses midnight. CreatedAt is the
// YYYY-MM-DD anchor date for recurrence.
type Task struct {
	ID               string    `json:"id" yaml:"id"`
	Name             string    `json:"name" yaml:"name"`
	StartTime        string    `json:"startTime" yaml:"startTime"`
	EndTime          string    `json:"endTime" yaml:"endTime"`
	Repeat           Repeat    `json:"repeat" yaml:"repeat"`
	CreatedAt        string    `json:"createdAt" yaml:"createdAt"`
	AlarmEnabled     bool      `json:"alarmEnabled" yaml:"alarmEnabled"`
	AlarmLeadMinutes int       `json:"alarmLeadMinutes,omitempty" yaml:"alarmLeadMinutes,omitempty"`
	Notes            string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	Icon             string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	Color            string    `json:"color,omitempty" yaml:"color,omitempty"`
	Subtasks         []Subtask `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("model: task name is required")
	}
	if err := canonicalClock(t.StartTime); err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	if err := canonicalClock(t.EndTime); err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if !t.Repeat.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRepeat, t.Repeat)
	}
	if _, err := ParseDate(t.CreatedAt); err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	if t.AlarmLeadMinutes < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLead, t.AlarmLeadMinutes)
	}
	for _, s := range t.Subtasks {
		if strings.TrimSpace(s.ID) == "" {
			return errors.New("model: subtask id is required")
		}
	}
	return nil
}

// NormalizeClocks zero-pads StartTime and EndTime. Values that do not parse
// are left for Validate to reject.
func (t *Task) NormalizeClocks() {
	if v, err := NormalizeClock(t.StartTime); err == nil {
		t.StartTime = v
	}
	if v, err := NormalizeClock(t.EndTime); err == nil {
		t.EndTime = v
	}
}

// canonicalClock accepts only zero-padded "HH:mm"; projection sorts clocks
// as strings.
func canonicalClock(value string) error {
	norm, err := NormalizeClock(value)
	if err != nil {
		return err
	}
	if norm != value {
		return fmt.Errorf("%w: %q is not zero-padded HH:mm", ErrInvalidClock, value)
	}
	return nil
}

// CrossesMidnight reports whether the interval wraps into the next day.
func (t Task) CrossesMidnight() bool {
	s, errS := ParseClock(t.StartTime)
	e, errE := ParseClock(t.EndTime)
	return errS == nil && errE == nil && e <= s
}

// Duration returns the task length in minutes.
func (t Task) Duration() (int, error) {
	return SpanMinutes(t.StartTime, t.EndTime)
}

// TriggerTime is the wall-clock minute at which the alarm fires.
func (t Task) TriggerTime() (string, error) {
	return SubtractMinutes(t.StartTime, t.AlarmLeadMinutes)
}

func (t Task) SubtaskProgress() (done, total int) {
	for _, s := range t.Subtasks {
		if s.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}

// ToggleSubtask flips completion of the given subtask and reports whether it
// was found. The receiver's slice is copied so snapshots stay untouched.
func (t *Task) ToggleSubtask(id string) bool {
	out := make([]Subtask, len(t.Subtasks))
	copy(out, t.Subtasks)
	for i := range out {
		if out[i].ID == id {
			out[i].Completed = !out[i].Completed
			t.Subtasks = out
			return true
		}
	}
	return false
}

var durationPresets = map[string]int{
	"15m":  15,
	"30m":  30,
	"45m":  45,
	"1h":   60,
	"1.5h": 90,
}

// DurationPresets lists the quick durations offered by the task editor.
func DurationPresets() []string {
	return []string{"15m", "30m", "45m", "1h", "1.5h"}
}

// ApplyPreset returns the end time reached by adding a preset duration to
// start, wrapping past midnight.
func ApplyPreset(start, preset string) (string, error) {
	mins, ok := durationPresets[preset]
	if !ok {
		return "", fmt.Errorf("model: unknown duration preset %q", preset)
	}
	s, err := ParseClock(start)
	if err != nil {
		return "", err
	}
	return FormatClock(s + mins), nil
}
