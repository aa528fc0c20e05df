package storage

import (
	"context"
	"errors"

	"github.com/sandeepkv93/dayplan/internal/model"
)

var (
	ErrNotFound  = errors.New("storage: not found")
	ErrAmbiguous = errors.New("storage: ambiguous id prefix")
)

type Repository interface {
	CreateTask(ctx context.Context, in model.Task) error
	GetTask(ctx context.Context, id string) (model.Task, error)
	UpdateTask(ctx context.Context, in model.Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error)
	FindTask(ctx context.Context, idPrefix string) (model.Task, error)

	ToggleSubtask(ctx context.Context, taskID, subtaskID string) error
	SetAlarm(ctx context.Context, taskID string, enabled bool, leadMinutes int) error

	GetSetting(ctx context.Context, key string) (Setting, error)
	PutSetting(ctx context.Context, key, value string) error

	DeleteAll(ctx context.Context) error
}
