package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sandeepkv93/dayplan/internal/model"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "dayplan-test.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func sampleTask(id, name, start, end string) model.Task {
	return model.Task{
		ID:        id,
		Name:      name,
		StartTime: start,
		EndTime:   end,
		Repeat:    model.RepeatDaily,
		CreatedAt: "2026-02-09",
	}
}

func TestTaskCRUDAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	task := sampleTask("task-1", "Morning Routine", "06:00", "08:00")
	task.AlarmEnabled = true
	task.AlarmLeadMinutes = 10
	task.Notes = "Coffee"
	task.Subtasks = []model.Subtask{{ID: "s1", Text: "stretch"}, {ID: "s2", Text: "read"}}
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Name != task.Name || !got.AlarmEnabled || got.AlarmLeadMinutes != 10 || got.Repeat != model.RepeatDaily {
		t.Fatalf("unexpected task get result: %#v", got)
	}
	if len(got.Subtasks) != 2 || got.Subtasks[0].ID != "s1" || got.Subtasks[1].Text != "read" {
		t.Fatalf("unexpected subtasks: %#v", got.Subtasks)
	}

	task.Name = "Slow Morning"
	task.Repeat = model.RepeatWeekly
	task.Subtasks = []model.Subtask{{ID: "s3", Text: "walk", Completed: true}}
	if err := repo.UpdateTask(ctx, task); err != nil {
		t.Fatalf("update task: %v", err)
	}

	weekly, err := repo.ListTasks(ctx, TaskListFilter{Repeat: model.RepeatWeekly})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(weekly) != 1 || weekly[0].Name != "Slow Morning" || len(weekly[0].Subtasks) != 1 || !weekly[0].Subtasks[0].Completed {
		t.Fatalf("unexpected weekly list: %#v", weekly)
	}

	if err := repo.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	_, err = repo.GetTask(ctx, task.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	if err := repo.DeleteTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got: %v", err)
	}
}

func TestCreateTaskRejectsInvalid(t *testing.T) {
	repo := setupRepo(t)
	bad := sampleTask("bad", "Broken", "25:00", "08:00")
	if err := repo.CreateTask(context.Background(), bad); !errors.Is(err, model.ErrInvalidClock) {
		t.Fatalf("expected ErrInvalidClock, got %v", err)
	}
}

func TestListTasksKeepsInsertionOrder(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	for _, task := range []model.Task{
		sampleTask("c", "Late", "20:00", "21:00"),
		sampleTask("a", "Early", "06:00", "07:00"),
		sampleTask("b", "Noon", "12:00", "13:00"),
	} {
		if err := repo.CreateTask(ctx, task); err != nil {
			t.Fatalf("create %s: %v", task.ID, err)
		}
	}

	all, err := repo.Tasks(ctx)
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[1].ID != "a" || all[2].ID != "b" {
		t.Fatalf("unexpected order: %#v", all)
	}

	page, err := repo.ListTasks(ctx, TaskListFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("paged list: %v", err)
	}
	if len(page) != 1 || page[0].ID != "a" {
		t.Fatalf("unexpected page: %#v", page)
	}

	on := false
	quiet, err := repo.ListTasks(ctx, TaskListFilter{AlarmEnabled: &on})
	if err != nil {
		t.Fatalf("alarm filter: %v", err)
	}
	if len(quiet) != 3 {
		t.Fatalf("expected all tasks without alarms, got %d", len(quiet))
	}
}

func TestFindTaskByPrefix(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	for _, id := range []string{"abc123", "abd456", "xyz789"} {
		if err := repo.CreateTask(ctx, sampleTask(id, id, "09:00", "10:00")); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	tests := []struct {
		prefix string
		want   string
		err    error
	}{
		{prefix: "abc", want: "abc123"},
		{prefix: "xyz789", want: "xyz789"},
		{prefix: "ab", err: ErrAmbiguous},
		{prefix: "nope", err: ErrNotFound},
		{prefix: "  ", err: ErrNotFound},
	}
	for _, tc := range tests {
		got, err := repo.FindTask(ctx, tc.prefix)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("prefix %q: expected %v, got %v", tc.prefix, tc.err, err)
			}
			continue
		}
		if err != nil || got.ID != tc.want {
			t.Fatalf("prefix %q: got %q err=%v", tc.prefix, got.ID, err)
		}
	}
}

func TestToggleSubtaskAndSetAlarm(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	task := sampleTask("t1", "Gym", "12:00", "13:00")
	task.Subtasks = []model.Subtask{{ID: "warmup", Text: "Warm up"}}
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.ToggleSubtask(ctx, "t1", "warmup"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	got, _ := repo.GetTask(ctx, "t1")
	if !got.Subtasks[0].Completed {
		t.Fatal("expected subtask completed")
	}
	if err := repo.ToggleSubtask(ctx, "t1", "warmup"); err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	got, _ = repo.GetTask(ctx, "t1")
	if got.Subtasks[0].Completed {
		t.Fatal("expected subtask reopened")
	}
	if err := repo.ToggleSubtask(ctx, "t1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.SetAlarm(ctx, "t1", true, 15); err != nil {
		t.Fatalf("set alarm: %v", err)
	}
	got, _ = repo.GetTask(ctx, "t1")
	if !got.AlarmEnabled || got.AlarmLeadMinutes != 15 {
		t.Fatalf("unexpected alarm fields: %#v", got)
	}
	if err := repo.SetAlarm(ctx, "t1", true, -1); !errors.Is(err, model.ErrInvalidLead) {
		t.Fatalf("expected ErrInvalidLead, got %v", err)
	}
	if err := repo.SetAlarm(ctx, "ghost", true, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSettingsAndDeleteAll(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	enabled, err := AlarmsEnabled(ctx, repo)
	if err != nil || !enabled {
		t.Fatalf("expected alarms on by default, got %v err=%v", enabled, err)
	}
	if err := SetAlarmsEnabled(ctx, repo, false); err != nil {
		t.Fatalf("set alarms: %v", err)
	}
	if enabled, _ := AlarmsEnabled(ctx, repo); enabled {
		t.Fatal("expected alarms off")
	}
	if err := SetAlarmsEnabled(ctx, repo, true); err != nil {
		t.Fatalf("overwrite setting: %v", err)
	}
	s, err := repo.GetSetting(ctx, SettingAlarmsEnabled)
	if err != nil || s.Value != "true" || s.UpdatedAt.IsZero() {
		t.Fatalf("unexpected setting: %#v err=%v", s, err)
	}

	if err := repo.CreateTask(ctx, sampleTask("t1", "Gym", "12:00", "13:00")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	all, _ := repo.Tasks(ctx)
	if len(all) != 0 {
		t.Fatalf("expected empty table, got %d", len(all))
	}
	if _, err := repo.GetSetting(ctx, SettingAlarmsEnabled); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected settings cleared, got %v", err)
	}
}

func TestSeedDefaultsOnce(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	seeded, err := SeedDefaults(ctx, repo, "2026-02-09")
	if err != nil || !seeded {
		t.Fatalf("expected first seed, got %v err=%v", seeded, err)
	}
	all, _ := repo.Tasks(ctx)
	if len(all) != 3 || all[0].Name != "Morning Routine" || all[1].Repeat != model.RepeatWeekly {
		t.Fatalf("unexpected seed: %#v", all)
	}

	for _, task := range all {
		if err := repo.DeleteTask(ctx, task.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
	}
	seeded, err = SeedDefaults(ctx, repo, "2026-02-10")
	if err != nil || seeded {
		t.Fatalf("expected no reseed, got %v err=%v", seeded, err)
	}
}
