package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/dayplan/internal/commands"
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/storage"
	"github.com/sandeepkv93/dayplan/internal/timeline"
)

func newListCmd(opts *options) *cobra.Command {
	var (
		repeat    string
		alarmOnly bool
		limit     int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts, openOptions{logTo: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			filter := storage.TaskListFilter{Limit: limit}
			if repeat != "" {
				r, err := model.ParseRepeat(repeat)
				if err != nil {
					return err
				}
				filter.Repeat = r
			}
			if alarmOnly {
				on := true
				filter.AlarmEnabled = &on
			}
			tasks, err := a.repo.ListTasks(ctx, filter)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, t := range tasks {
				alarm := "-"
				if t.AlarmEnabled {
					alarm, _ = t.TriggerTime()
				}
				fmt.Fprintf(w, "%s  %s-%s  %-8s %-10s alarm %-5s %s\n", shortID(t.ID), t.StartTime, t.EndTime, t.Repeat, t.CreatedAt, alarm, t.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&repeat, "repeat", "", "only tasks with this repeat rule")
	cmd.Flags().BoolVar(&alarmOnly, "alarm", false, "only tasks with an alarm")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of tasks")
	return cmd
}

func newAddCmd(opts *options) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "add <name...> <HH:mm>-<HH:mm> [none|daily|weekly|monthly] [lead:<min>]",
		Short: "Add a task",
		Example: `  dayplan add Gym 18:00-19:00 daily lead:10
  dayplan add Dentist 09:30-10:15 --date 2026-03-02`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			parsed, err := commands.Parse("add " + strings.Join(args, " "))
			if err != nil {
				return err
			}
			anchor, err := resolveDate(date, model.DateString(opts.now()))
			if err != nil {
				return err
			}

			a, err := openApp(ctx, opts, openOptions{logTo: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := commands.Execute(parsed, commands.Handlers{
				Add: func(in commands.AddArgs) (commands.Result, error) {
					task := model.Task{
						ID:               storage.NewID(),
						Name:             in.Name,
						StartTime:        in.Start,
						EndTime:          in.End,
						Repeat:           in.Repeat,
						CreatedAt:        anchor,
						AlarmEnabled:     in.AlarmEnabled,
						AlarmLeadMinutes: in.LeadMinutes,
					}
					existing, err := a.repo.Tasks(ctx)
					if err != nil {
						return commands.Result{}, err
					}
					clashes, err := timeline.Conflicts(existing, task, anchor)
					if err != nil {
						return commands.Result{}, err
					}
					if err := a.repo.CreateTask(ctx, task); err != nil {
						return commands.Result{}, err
					}
					msg := fmt.Sprintf("added %s %s %s-%s (%s)", shortID(task.ID), task.Name, task.StartTime, task.EndTime, task.Repeat)
					for _, c := range clashes {
						msg += fmt.Sprintf("\n  overlaps %s %s-%s", c.Name, c.StartTime, c.EndTime)
					}
					return commands.Result{Message: msg}, nil
				},
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "today", "anchor date for the repeat rule")
	return cmd
}

func newRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id-prefix>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts, openOptions{logTo: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.resolveTask(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.repo.DeleteTask(ctx, task.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s %s\n", shortID(task.ID), task.Name)
			return nil
		},
	}
}

func newOccurrencesCmd(opts *options) *cobra.Command {
	var (
		from  string
		count int
	)
	cmd := &cobra.Command{
		Use:   "occurrences <id-prefix>",
		Short: "List the next dates a task occurs on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			start, err := resolveDate(from, model.DateString(opts.now()))
			if err != nil {
				return err
			}
			a, err := openApp(ctx, opts, openOptions{logTo: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.resolveTask(ctx, args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			dates := task.NextOccurrences(start, a.cfg.HorizonDays, count)
			if len(dates) == 0 {
				fmt.Fprintf(w, "%s does not occur within %d days after %s\n", task.Name, a.cfg.HorizonDays, start)
				return nil
			}
			for _, d := range dates {
				fmt.Fprintf(w, "%s %s-%s %s\n", d, task.StartTime, task.EndTime, task.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "today", "list dates after this day")
	cmd.Flags().IntVar(&count, "count", 5, "number of dates")
	return cmd
}
