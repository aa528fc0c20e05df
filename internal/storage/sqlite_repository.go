package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/dayplan/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

// NewID returns a fresh random identifier for tasks and subtasks.
func NewID() string {
	return uuid.NewString()
}

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// OpenSQLite opens the database at path, applies the schema and returns a
// ready repository.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Tasks returns every task in insertion order. It satisfies
// scheduler.TaskSource.
func (r *SQLiteRepository) Tasks(ctx context.Context) ([]model.Task, error) {
	return r.ListTasks(ctx, TaskListFilter{})
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, in model.Task) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, name, start_time, end_time, repeat, created_on, alarm_enabled, alarm_lead_minutes, notes, icon, color, inserted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.ID, in.Name, in.StartTime, in.EndTime, string(in.Repeat), in.CreatedAt,
			boolInt(in.AlarmEnabled), in.AlarmLeadMinutes, in.Notes, in.Icon, in.Color, mustTime(r.now()),
		)
		if err != nil {
			return err
		}
		return insertSubtasks(ctx, tx, in.ID, in.Subtasks)
	})
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, start_time, end_time, repeat, created_on, alarm_enabled, alarm_lead_minutes, notes, icon, color
		FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	subs, err := r.subtasksFor(ctx, []string{task.ID})
	if err != nil {
		return model.Task{}, err
	}
	task.Subtasks = subs[task.ID]
	return task, nil
}

// UpdateTask rewrites the task row and replaces its subtask list.
func (r *SQLiteRepository) UpdateTask(ctx context.Context, in model.Task) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET name = ?, start_time = ?, end_time = ?, repeat = ?, created_on = ?, alarm_enabled = ?, alarm_lead_minutes = ?, notes = ?, icon = ?, color = ?
			WHERE id = ?`,
			in.Name, in.StartTime, in.EndTime, string(in.Repeat), in.CreatedAt,
			boolInt(in.AlarmEnabled), in.AlarmLeadMinutes, in.Notes, in.Icon, in.Color, in.ID,
		)
		if err != nil {
			return err
		}
		if err := checkRowsAffected(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM subtasks WHERE task_id = ?`, in.ID); err != nil {
			return err
		}
		return insertSubtasks(ctx, tx, in.ID, in.Subtasks)
	})
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM subtasks WHERE task_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return checkRowsAffected(res)
	})
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error) {
	query := `SELECT id, name, start_time, end_time, repeat, created_on, alarm_enabled, alarm_lead_minutes, notes, icon, color FROM tasks`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.Repeat != "" {
		clauses = append(clauses, "repeat = ?")
		args = append(args, string(filter.Repeat))
	}
	if filter.AlarmEnabled != nil {
		clauses = append(clauses, "alarm_enabled = ?")
		args = append(args, boolInt(*filter.AlarmEnabled))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY rowid ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	ids := make([]string, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
		ids = append(ids, task.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subs, err := r.subtasksFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Subtasks = subs[out[i].ID]
	}
	return out, nil
}

// FindTask resolves a full id or a unique id prefix.
func (r *SQLiteRepository) FindTask(ctx context.Context, idPrefix string) (model.Task, error) {
	idPrefix = strings.TrimSpace(idPrefix)
	if idPrefix == "" {
		return model.Task{}, ErrNotFound
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM tasks WHERE substr(id, 1, ?) = ? LIMIT 2`, len(idPrefix), idPrefix)
	if err != nil {
		return model.Task{}, err
	}
	ids := make([]string, 0, 2)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return model.Task{}, err
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return model.Task{}, err
	}
	switch len(ids) {
	case 0:
		return model.Task{}, ErrNotFound
	case 1:
		return r.GetTask(ctx, ids[0])
	default:
		return model.Task{}, fmt.Errorf("%w: %q", ErrAmbiguous, idPrefix)
	}
}

func (r *SQLiteRepository) ToggleSubtask(ctx context.Context, taskID, subtaskID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subtasks SET completed = 1 - completed WHERE task_id = ? AND id = ?`, taskID, subtaskID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) SetAlarm(ctx context.Context, taskID string, enabled bool, leadMinutes int) error {
	if leadMinutes < 0 {
		return fmt.Errorf("%w: %d", model.ErrInvalidLead, leadMinutes)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET alarm_enabled = ?, alarm_lead_minutes = ? WHERE id = ?`,
		boolInt(enabled), leadMinutes, taskID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (Setting, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM settings WHERE key = ?`, key)
	var out Setting
	var updated string
	if err := row.Scan(&out.Key, &out.Value, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Setting{}, ErrNotFound
		}
		return Setting{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return Setting{}, err
	}
	out.UpdatedAt = updatedAt
	return out, nil
}

func (r *SQLiteRepository) PutSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, mustTime(r.now()))
	return err
}

// DeleteAll clears every task, subtask and setting.
func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{`DELETE FROM subtasks`, `DELETE FROM tasks`, `DELETE FROM settings`} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) subtasksFor(ctx context.Context, taskIDs []string) (map[string][]model.Subtask, error) {
	out := make(map[string][]model.Subtask, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(taskIDs))
	for i, id := range taskIDs {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(taskIDs)), ",")
	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, id, text, completed FROM subtasks
		WHERE task_id IN (`+placeholders+`)
		ORDER BY task_id, position ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var taskID string
		var sub model.Subtask
		var completed int
		if err := rows.Scan(&taskID, &sub.ID, &sub.Text, &completed); err != nil {
			return nil, err
		}
		sub.Completed = completed == 1
		out[taskID] = append(out[taskID], sub)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertSubtasks(ctx context.Context, tx *sql.Tx, taskID string, subs []model.Subtask) error {
	for i, s := range subs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO subtasks (id, task_id, position, text, completed) VALUES (?, ?, ?, ?, ?)`,
			s.ID, taskID, i, s.Text, boolInt(s.Completed)); err != nil {
			return fmt.Errorf("insert subtask %s: %w", s.ID, err)
		}
	}
	return nil
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var out model.Task
	var repeat string
	var alarm int
	if err := s.Scan(&out.ID, &out.Name, &out.StartTime, &out.EndTime, &repeat, &out.CreatedAt,
		&alarm, &out.AlarmLeadMinutes, &out.Notes, &out.Icon, &out.Color); err != nil {
		return model.Task{}, err
	}
	out.Repeat = model.Repeat(repeat)
	out.AlarmEnabled = alarm == 1
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
