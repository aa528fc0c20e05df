package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sandeepkv93/dayplan/internal/model"
)

// DefaultTasks returns the starter routines anchored on today.
func DefaultTasks(today string) []model.Task {
	return []model.Task{
		{
			ID:           NewID(),
			Name:         "Morning Routine",
			StartTime:    "06:00",
			EndTime:      "08:00",
			Repeat:       model.RepeatDaily,
			CreatedAt:    today,
			AlarmEnabled: true,
			Notes:        "Coffee, stretch, and light reading.",
			Icon:         "sun",
			Color:        "#2547f4",
		},
		{
			ID:        NewID(),
			Name:      "Deep Work",
			StartTime: "09:00",
			EndTime:   "12:00",
			Repeat:    model.RepeatWeekly,
			CreatedAt: today,
			Notes:     "Focus on core development tasks.",
			Icon:      "terminal",
			Color:     "#909acb",
		},
		{
			ID:           NewID(),
			Name:         "Gym Session",
			StartTime:    "12:00",
			EndTime:      "13:00",
			Repeat:       model.RepeatDaily,
			CreatedAt:    today,
			AlarmEnabled: true,
			Notes:        "Push day routine.",
			Icon:         "dumbbell",
			Color:        "#909acb",
		},
	}
}

// SeedDefaults inserts DefaultTasks once per database. It reports whether
// anything was written; a database that was seeded and later emptied by the
// user stays empty.
func SeedDefaults(ctx context.Context, repo Repository, today string) (bool, error) {
	if _, err := repo.GetSetting(ctx, SettingSeeded); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	existing, err := repo.ListTasks(ctx, TaskListFilter{Limit: 1})
	if err != nil {
		return false, err
	}
	seeded := len(existing) == 0
	if seeded {
		for _, task := range DefaultTasks(today) {
			if err := repo.CreateTask(ctx, task); err != nil {
				return false, fmt.Errorf("seed %q: %w", task.Name, err)
			}
		}
	}
	if err := repo.PutSetting(ctx, SettingSeeded, "true"); err != nil {
		return false, err
	}
	return seeded, nil
}

// AlarmsEnabled reads the global alarm switch. An unset switch is on.
func AlarmsEnabled(ctx context.Context, repo Repository) (bool, error) {
	s, err := repo.GetSetting(ctx, SettingAlarmsEnabled)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	v, err := strconv.ParseBool(s.Value)
	if err != nil {
		return false, fmt.Errorf("setting %s: %w", SettingAlarmsEnabled, err)
	}
	return v, nil
}

func SetAlarmsEnabled(ctx context.Context, repo Repository, enabled bool) error {
	return repo.PutSetting(ctx, SettingAlarmsEnabled, strconv.FormatBool(enabled))
}
