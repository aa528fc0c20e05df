package storage

import (
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

// Setting keys persisted in the settings table.
const (
	SettingAlarmsEnabled = "alarms_enabled"
	SettingSeeded        = "seeded"
)

type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

type TaskListFilter struct {
	Repeat       model.Repeat
	AlarmEnabled *bool
	Limit        int
	Offset       int
}
