package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/dayplan/internal/scheduler"
)

func newAlarmsCmd(opts *options) *cobra.Command {
	var (
		ring     time.Duration
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "alarms",
		Short: "Run the alarm engine without the TUI",
		Long: `Run the alarm engine headless and print every alarm event. A ringing
alarm is dismissed automatically after --ring.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			a, err := openApp(ctx, opts, openOptions{logTo: cmd.ErrOrStderr(), seed: true})
			if err != nil {
				return err
			}
			defer a.Close()

			engine, err := a.newEngine(ctx, opts.now, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.log.InfoContext(ctx, "alarm engine started", "poll_interval", a.cfg.PollInterval.String())
			engine.Start(ctx)
			defer engine.Stop()
			return watchAlarms(ctx, a, engine, cmd.OutOrStdout(), ring)
		},
	}
	cmd.Flags().DurationVar(&ring, "ring", time.Minute, "how long an alarm rings before it is dismissed")
	cmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	return cmd
}

func watchAlarms(ctx context.Context, a *app, engine *scheduler.Engine, w io.Writer, ring time.Duration) error {
	var autoDismiss <-chan time.Time
	for {
		select {
		case ev, ok := <-engine.C():
			if !ok {
				return nil
			}
			name := ev.TaskID
			if task, err := a.repo.GetTask(ctx, ev.TaskID); err == nil {
				name = task.Name
			}
			line := fmt.Sprintf("%s %s %s", ev.At.Format("2006-01-02 15:04:05"), ev.Kind, name)
			if ev.Trigger != "" {
				line += " " + ev.Trigger
			}
			fmt.Fprintln(w, line)
			switch ev.Kind {
			case scheduler.EventFired:
				autoDismiss = time.After(ring)
			case scheduler.EventCleared:
				autoDismiss = nil
			}
		case <-autoDismiss:
			autoDismiss = nil
			if err := engine.Dismiss(); err != nil {
				a.log.WarnContext(ctx, "auto dismiss failed", "error", err)
			}
		case <-ctx.Done():
			if dropped := engine.Dropped(); dropped > 0 {
				a.log.WarnContext(ctx, "alarm events dropped", "count", dropped)
			}
			return nil
		}
	}
}
