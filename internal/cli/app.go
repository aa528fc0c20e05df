package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sandeepkv93/dayplan/internal/logger"
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
	"github.com/sandeepkv93/dayplan/internal/storage"
	"github.com/sandeepkv93/dayplan/internal/update"
)

// app is the wiring shared by every subcommand: resolved config, logger and
// an open repository.
type app struct {
	cfg     update.RuntimeConfig
	log     *logger.Logger
	repo    *storage.SQLiteRepository
	closers []io.Closer
}

type openOptions struct {
	// logTo sends logs to the writer; nil means the configured log file.
	logTo io.Writer
	seed  bool
}

func openApp(ctx context.Context, opts *options, oo openOptions) (*app, error) {
	cfg, err := update.LoadRuntimeConfig(opts.configPath, ".env", filepath.Join(update.DataDir(), ".env"))
	if err != nil {
		return nil, err
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}

	a := &app{cfg: cfg}
	logOpts := []logger.Option{logger.WithLevel(cfg.LogLevel), logger.WithFormat(cfg.LogFormat)}
	if oo.logTo != nil {
		a.log = logger.New(append(logOpts, logger.WithOutput(oo.logTo))...)
	} else {
		l, closer, err := logger.OpenFile(cfg.LogFile, logOpts...)
		if err != nil {
			return nil, err
		}
		a.log = l
		a.closers = append(a.closers, closer)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	a.repo = repo
	a.closers = append(a.closers, repo)

	if oo.seed {
		seeded, err := storage.SeedDefaults(ctx, repo, model.DateString(opts.now()))
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("seed defaults: %w", err)
		}
		if seeded {
			a.log.InfoContext(ctx, "seeded default routines", "db", cfg.DBPath)
		}
	}
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) alerter(bell io.Writer) scheduler.Alerter {
	var all scheduler.MultiAlerter
	if a.cfg.Bell && bell != nil {
		all = append(all, scheduler.NewBellAlerter(bell, 0))
	}
	if a.cfg.DesktopNotifications {
		all = append(all, scheduler.NewNotifyAlerter())
	}
	switch len(all) {
	case 0:
		return scheduler.NopAlerter{}
	case 1:
		return all[0]
	default:
		return all
	}
}

func (a *app) newEngine(ctx context.Context, now func() time.Time, bell io.Writer) (*scheduler.Engine, error) {
	enabled, err := storage.AlarmsEnabled(ctx, a.repo)
	if err != nil {
		return nil, fmt.Errorf("read alarm switch: %w", err)
	}
	return scheduler.NewEngine(a.repo, scheduler.Config{
		Interval: a.cfg.PollInterval,
		Buffer:   a.cfg.EventBuffer,
		Enabled:  enabled,
		Now:      now,
		Alerter:  a.alerter(bell),
		Logger:   a.log,
	}), nil
}

// resolveTask finds a task by id prefix with a readable error.
func (a *app) resolveTask(ctx context.Context, prefix string) (model.Task, error) {
	task, err := a.repo.FindTask(ctx, prefix)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return model.Task{}, fmt.Errorf("no task matches %q", prefix)
	case errors.Is(err, storage.ErrAmbiguous):
		return model.Task{}, fmt.Errorf("%q matches more than one task", prefix)
	case err != nil:
		return model.Task{}, err
	}
	return task, nil
}
