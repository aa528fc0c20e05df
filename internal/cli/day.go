package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/dayplan/internal/commands"
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/timeline"
)

func newDayCmd(opts *options) *cobra.Command {
	var (
		date    string
		allGaps bool
	)
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Print the timeline for a day",
		Long: `Print the tasks, free gaps and overlaps of one day.

--date accepts today, +N, -N or YYYY-MM-DD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts, openOptions{logTo: cmd.ErrOrStderr(), seed: true})
			if err != nil {
				return err
			}
			defer a.Close()

			now := opts.now()
			target, err := resolveDate(date, model.DateString(now))
			if err != nil {
				return err
			}
			tasks, err := a.repo.Tasks(ctx)
			if err != nil {
				return fmt.Errorf("load tasks: %w", err)
			}
			day := timeline.ProjectDay(tasks, target)
			items, err := timeline.Analyze(day)
			if err != nil {
				return err
			}
			summary := timeline.Summarize(items)
			if !allGaps {
				items = timeline.FilterGaps(items, a.cfg.MinGapMinutes)
			}
			activeID, _, err := timeline.ResolveActive(day, now, target)
			if err != nil {
				return err
			}
			printDay(cmd.OutOrStdout(), target, items, activeID, summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "today", "day to show: today, +N, -N or YYYY-MM-DD")
	cmd.Flags().BoolVar(&allGaps, "all-gaps", false, "list gaps shorter than min_gap_minutes too")
	return cmd
}

// resolveDate reads the same forms as the palette's goto command.
func resolveDate(raw, today string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return today, nil
	}
	parsed, err := commands.Parse("goto " + raw)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", raw, err)
	}
	g := parsed.Goto
	switch {
	case g.Today:
		return today, nil
	case g.Date != "":
		return g.Date, nil
	default:
		return model.AddDays(today, g.Offset)
	}
}

func printDay(w io.Writer, date string, items []timeline.Item, activeID string, s timeline.Summary) {
	fmt.Fprintf(w, "%s\n", date)
	if len(items) == 0 {
		fmt.Fprintln(w, "  nothing scheduled")
	}
	for _, it := range items {
		span := model.FormatSpan(it.Minutes)
		switch it.Kind {
		case timeline.ItemTask:
			marker := " "
			if it.Task.ID == activeID {
				marker = ">"
			}
			if d, err := it.Task.Duration(); err == nil {
				span = model.FormatSpan(d)
			}
			alarm := ""
			if it.Task.AlarmEnabled {
				if trigger, err := it.Task.TriggerTime(); err == nil {
					alarm = "  alarm " + trigger
				}
			}
			fmt.Fprintf(w, "%s %s-%s  %-24s %s  [%s]%s\n", marker, it.Start, it.End, it.Task.Name, span, shortID(it.Task.ID), alarm)
		case timeline.ItemGap:
			fmt.Fprintf(w, "  %s-%s  free %s\n", it.Start, it.End, span)
		case timeline.ItemOverlap:
			fmt.Fprintf(w, "  %s-%s  overlap %s\n", it.Start, it.End, span)
		}
	}
	fmt.Fprintf(w, "%d tasks, %s planned, %s free, %d overlaps\n",
		s.Tasks, model.FormatSpan(s.ScheduledMinutes), model.FormatSpan(s.FreeMinutes), s.Overlaps)
	if s.Closing != "" {
		fmt.Fprintln(w, s.Closing)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
