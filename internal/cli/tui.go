package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/dayplan/internal/update"
)

func runTUI(cmd *cobra.Command, opts *options) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := openApp(ctx, opts, openOptions{seed: true})
	if err != nil {
		return err
	}
	defer a.Close()

	engine, err := a.newEngine(ctx, opts.now, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	engine.Start(ctx)
	defer engine.Stop()

	m := update.NewModel(a.repo, a.cfg,
		update.WithScheduler(engine),
		update.WithLogger(a.log),
		update.WithClock(opts.now),
	)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dayplan failed: %w", err)
	}
	a.log.InfoContext(ctx, "timeline closed", "dropped_alarm_events", engine.Dropped())
	return nil
}
