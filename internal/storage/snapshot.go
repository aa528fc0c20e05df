package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/dayplan/internal/model"
)

const SnapshotVersion = 1

var ErrUnknownFormat = errors.New("storage: unknown snapshot format")

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// FormatFromPath picks the snapshot format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Snapshot is the portable form of a whole planner database.
type Snapshot struct {
	Version       int          `json:"version" yaml:"version"`
	ExportedAt    time.Time    `json:"exportedAt" yaml:"exportedAt"`
	AlarmsEnabled *bool        `json:"alarmsEnabled,omitempty" yaml:"alarmsEnabled,omitempty"`
	Tasks         []model.Task `json:"tasks" yaml:"tasks"`
}

func Export(ctx context.Context, repo Repository, w io.Writer, format Format, now time.Time) error {
	tasks, err := repo.ListTasks(ctx, TaskListFilter{})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	alarms, err := AlarmsEnabled(ctx, repo)
	if err != nil {
		return err
	}
	snap := Snapshot{Version: SnapshotVersion, ExportedAt: now.UTC(), AlarmsEnabled: &alarms, Tasks: tasks}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func Decode(r io.Reader, format Format) (Snapshot, error) {
	var snap Snapshot
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&snap); err != nil {
			return Snapshot{}, fmt.Errorf("decode json snapshot: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
			return Snapshot{}, fmt.Errorf("decode yaml snapshot: %w", err)
		}
	default:
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if snap.Version > SnapshotVersion {
		return Snapshot{}, fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, SnapshotVersion)
	}
	return snap, nil
}

// Import validates every task before writing any of them, then upserts by
// id. It returns the number of tasks written.
func Import(ctx context.Context, repo Repository, r io.Reader, format Format) (int, error) {
	snap, err := Decode(r, format)
	if err != nil {
		return 0, err
	}
	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		if t.ID == "" {
			t.ID = NewID()
		}
		if t.Repeat == "" {
			t.Repeat = model.RepeatNone
		}
		t.NormalizeClocks()
		for j := range t.Subtasks {
			if t.Subtasks[j].ID == "" {
				t.Subtasks[j].ID = NewID()
			}
		}
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("task %d (%s): %w", i, t.Name, err)
		}
	}

	for _, t := range snap.Tasks {
		err := repo.UpdateTask(ctx, t)
		if errors.Is(err, ErrNotFound) {
			err = repo.CreateTask(ctx, t)
		}
		if err != nil {
			return 0, fmt.Errorf("import %s: %w", t.ID, err)
		}
	}
	if snap.AlarmsEnabled != nil {
		if err := SetAlarmsEnabled(ctx, repo, *snap.AlarmsEnabled); err != nil {
			return 0, err
		}
	}
	return len(snap.Tasks), nil
}
