package update

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayplan/internal/commands"
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
	"github.com/sandeepkv93/dayplan/internal/storage"
	"github.com/sandeepkv93/dayplan/internal/timeline"
)

// 2026-02-09 is a Monday.
var testNow = time.Date(2026, 2, 9, 12, 30, 0, 0, time.Local)

func openStore(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "dayplan-test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newTestModel(t *testing.T, tasks ...model.Task) (Model, *storage.SQLiteRepository) {
	t.Helper()
	repo := openStore(t)
	for _, task := range tasks {
		if err := repo.CreateTask(context.Background(), task); err != nil {
			t.Fatalf("seed %s: %v", task.ID, err)
		}
	}
	return NewModel(repo, DefaultRuntimeConfig(), WithClock(func() time.Time { return testNow })), repo
}

func routine(id, name, start, end string, repeat model.Repeat) model.Task {
	return model.Task{ID: id, Name: name, StartTime: start, EndTime: end, Repeat: repeat, CreatedAt: "2026-02-09"}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func runPalette(t *testing.T, m Model, input string) Model {
	t.Helper()
	m = press(t, m, "/")
	if !m.Palette.Active {
		t.Fatal("expected palette to open")
	}
	return press(t, m, input, "enter")
}

func TestNewModelProjectsToday(t *testing.T) {
	m, _ := newTestModel(t,
		routine("gym", "Gym Session", "12:00", "13:00", model.RepeatDaily),
		routine("morning", "Morning Routine", "06:00", "08:00", model.RepeatDaily),
		routine("deep", "Deep Work", "09:00", "12:00", model.RepeatWeekly),
	)
	if m.SelectedDate != "2026-02-09" || m.Today != "2026-02-09" {
		t.Fatalf("unexpected dates: %s / %s", m.SelectedDate, m.Today)
	}
	if len(m.DayTasks) != 3 || m.DayTasks[0].ID != "morning" || m.DayTasks[2].ID != "gym" {
		t.Fatalf("unexpected projection: %#v", m.DayTasks)
	}
	if m.ActiveID != "gym" {
		t.Fatalf("expected gym active at 12:30, got %q", m.ActiveID)
	}
	if m.Summary.Tasks != 3 || m.Summary.FreeMinutes != 60 || m.Summary.Closing != "rest of the day is clear." {
		t.Fatalf("unexpected summary: %+v", m.Summary)
	}
	if view := m.View(); !strings.Contains(view, "Morning Routine") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestDateNavigationStaysInStrip(t *testing.T) {
	m, _ := newTestModel(t, routine("deep", "Deep Work", "09:00", "12:00", model.RepeatWeekly))

	m = press(t, m, "l")
	if m.SelectedDate != "2026-02-10" || len(m.DayTasks) != 0 || m.ActiveID != "" {
		t.Fatalf("unexpected next day state: %s %#v", m.SelectedDate, m.DayTasks)
	}

	for i := 0; i < 10; i++ {
		m = press(t, m, "h")
	}
	if m.SelectedDate != "2026-02-02" {
		t.Fatalf("expected clamp at seven days back, got %s", m.SelectedDate)
	}
	if len(m.DayTasks) != 1 {
		t.Fatal("weekly task must occur one week before its anchor")
	}

	m = press(t, m, "t")
	if m.SelectedDate != m.Today {
		t.Fatalf("expected jump to today, got %s", m.SelectedDate)
	}
}

func TestPaletteAddRemoveAndGoto(t *testing.T) {
	m, repo := newTestModel(t, routine("gym", "Gym Session", "12:00", "13:00", model.RepeatDaily))

	m = runPalette(t, m, "add Lunch 12:45-13:15 daily lead:5")
	if m.Status.IsError || !strings.Contains(m.Status.Text, "overlaps Gym Session") {
		t.Fatalf("unexpected add status: %+v", m.Status)
	}
	if len(m.DayTasks) != 2 || m.DayTasks[1].Name != "Lunch" || !m.DayTasks[1].AlarmEnabled {
		t.Fatalf("unexpected tasks after add: %#v", m.DayTasks)
	}
	if m.Summary.Overlaps != 1 {
		t.Fatalf("expected one overlap, got %+v", m.Summary)
	}

	lunch := m.DayTasks[1]
	m = runPalette(t, m, "rm "+lunch.ID[:8])
	if m.Status.IsError {
		t.Fatalf("rm failed: %+v", m.Status)
	}
	if _, err := repo.GetTask(context.Background(), lunch.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected task deleted, got %v", err)
	}

	m = runPalette(t, m, "rm nothing-here")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "no task matches") {
		t.Fatalf("expected lookup error, got %+v", m.Status)
	}

	m = runPalette(t, m, "goto 2026-04-01")
	if m.SelectedDate != "2026-04-01" {
		t.Fatalf("goto date failed: %s", m.SelectedDate)
	}
	m = runPalette(t, m, "goto -1")
	if m.SelectedDate != "2026-03-31" {
		t.Fatalf("goto offset failed: %s", m.SelectedDate)
	}
}

func TestPaletteShowModes(t *testing.T) {
	m, _ := newTestModel(t,
		routine("a", "A", "08:00", "09:00", model.RepeatDaily),
		routine("b", "B", "09:10", "10:00", model.RepeatDaily),
		routine("c", "C", "11:00", "12:00", model.RepeatDaily),
	)
	if got := countKind(m, timeline.ItemGap); got != 1 {
		t.Fatalf("expected short gap hidden by default, got %d gaps", got)
	}

	m = runPalette(t, m, "show gaps")
	if m.ShowMode != commands.ShowGaps || len(m.Items) != 2 || countKind(m, timeline.ItemGap) != 2 {
		t.Fatalf("expected every gap listed, got %#v", m.Items)
	}

	m = runPalette(t, m, "show next")
	if !m.ShowNext || !strings.Contains(m.View(), "next for") {
		t.Fatal("expected occurrences panel")
	}
}

func countKind(m Model, kind timeline.ItemKind) int {
	n := 0
	for _, it := range m.Items {
		if it.Kind == kind {
			n++
		}
	}
	return n
}

func TestAlarmToggleAndGlobalSwitch(t *testing.T) {
	m, repo := newTestModel(t, routine("gym", "Gym Session", "12:00", "13:00", model.RepeatDaily))

	m = press(t, m, "a")
	got, _ := repo.GetTask(context.Background(), "gym")
	if !got.AlarmEnabled || !strings.Contains(m.Status.Text, "alarm on at 12:00") {
		t.Fatalf("expected alarm on, got %#v status=%+v", got, m.Status)
	}

	m = runPalette(t, m, "alarm gym lead 15")
	got, _ = repo.GetTask(context.Background(), "gym")
	if got.AlarmLeadMinutes != 15 || !strings.Contains(m.Status.Text, "11:45") {
		t.Fatalf("expected lead 15, got %#v status=%+v", got, m.Status)
	}

	m = press(t, m, "A")
	if m.AlarmsEnabled {
		t.Fatal("expected alarms switched off")
	}
	if enabled, _ := storage.AlarmsEnabled(context.Background(), repo); enabled {
		t.Fatal("expected switch persisted")
	}
}

func TestAlarmEventsDriveOverlay(t *testing.T) {
	m, _ := newTestModel(t, routine("gym", "Gym Session", "12:00", "13:00", model.RepeatDaily))

	updated, _ := m.Update(AlarmMsg{Event: scheduler.Event{Kind: scheduler.EventFired, TaskID: "gym", Trigger: "12:00", Date: "2026-02-09"}})
	m = updated.(Model)
	if m.Alarm.Ringing != "gym" || !strings.Contains(m.View(), "Snooze 5 mins") {
		t.Fatalf("expected ringing overlay, got %+v", m.Alarm)
	}

	m = press(t, m, "d")
	if !m.Status.IsError || !errors.Is(m.LastError, errNoEngine) {
		t.Fatalf("expected engine error without scheduler, got %+v", m.Status)
	}

	updated, _ = m.Update(AlarmMsg{Event: scheduler.Event{Kind: scheduler.EventCleared, TaskID: "gym"}})
	m = updated.(Model)
	if m.Alarm.IsRinging() || strings.Contains(m.View(), "Snooze 5 mins") {
		t.Fatal("expected overlay cleared")
	}
	if len(m.AlarmLog) != 2 {
		t.Fatalf("expected alarm log entries, got %d", len(m.AlarmLog))
	}
}

func TestSchedulerIntegrationDismiss(t *testing.T) {
	repo := openStore(t)
	task := routine("gym", "Gym Session", "12:30", "13:00", model.RepeatDaily)
	task.AlarmEnabled = true
	if err := repo.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("create: %v", err)
	}
	engine := scheduler.NewEngine(repo, scheduler.Config{
		Interval: 10 * time.Millisecond,
		Buffer:   4,
		Enabled:  true,
		Now:      func() time.Time { return testNow },
	})
	engine.Start(context.Background())
	defer engine.Stop()

	m := NewModel(repo, DefaultRuntimeConfig(), WithClock(func() time.Time { return testNow }), WithScheduler(engine))
	msg := waitForAlarmCmd(engine.C())()
	updated, next := m.Update(msg)
	m = updated.(Model)
	if m.Alarm.Ringing != "gym" || next == nil {
		t.Fatalf("expected ringing with follow-up wait, got %+v", m.Alarm)
	}

	m = press(t, m, "d")
	cleared := waitForAlarmCmd(engine.C())()
	am, ok := cleared.(AlarmMsg)
	if !ok || am.Event.Kind != scheduler.EventCleared {
		t.Fatalf("expected cleared event, got %#v", cleared)
	}
	updated, _ = m.Update(am)
	if updated.(Model).Alarm.IsRinging() {
		t.Fatal("expected idle after dismiss")
	}
}

func TestTickRollsSelectionToNewDay(t *testing.T) {
	m, _ := newTestModel(t, routine("late", "Wind down", "23:00", "01:00", model.RepeatDaily))
	if m.ActiveID != "" {
		t.Fatalf("nothing active at 12:30, got %q", m.ActiveID)
	}

	updated, cmd := m.Update(TickMsg{At: time.Date(2026, 2, 10, 0, 30, 0, 0, time.Local)})
	m = updated.(Model)
	if m.SelectedDate != "2026-02-10" || m.Today != "2026-02-10" || cmd == nil {
		t.Fatalf("expected rollover to next day, got %s", m.SelectedDate)
	}
	if m.ActiveID != "late" {
		t.Fatalf("expected midnight-crossing task active, got %q", m.ActiveID)
	}
}

func TestSubtaskToggleAndNewTaskPrefill(t *testing.T) {
	task := routine("gym", "Gym Session", "12:00", "13:00", model.RepeatNone)
	task.Subtasks = []model.Subtask{{ID: "warm", Text: "Warm up"}, {ID: "lift", Text: "Lift"}}
	m, repo := newTestModel(t, task)

	m = press(t, m, "x")
	got, _ := repo.GetTask(context.Background(), "gym")
	if !got.Subtasks[0].Completed || got.Subtasks[1].Completed {
		t.Fatalf("expected first subtask done, got %#v", got.Subtasks)
	}
	if !strings.Contains(m.Status.Text, "1/2") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}

	m = press(t, m, "n")
	if !m.Palette.Active || m.Palette.Input != "add New task 13:00-13:30" {
		t.Fatalf("unexpected prefill: %+v", m.Palette)
	}
	m = press(t, m, "esc")
	if m.Palette.Active {
		t.Fatal("expected palette closed")
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(SetStatusMsg{Text: "ready", IsError: false})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || next.LastError.Error() != "boom" || !next.Status.IsError {
		t.Fatalf("unexpected error state: %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" || next.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", next.Status)
	}
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !updated.(Model).Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
}
