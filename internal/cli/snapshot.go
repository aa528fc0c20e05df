package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/dayplan/internal/storage"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every task and the alarm switch as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			f, err := pickFormat(format, output)
			if err != nil {
				return err
			}
			a, err := openApp(ctx, opts, openOptions{logTo: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer file.Close()
				w = file
			}
			if err := storage.Export(ctx, a.repo, w, f, opts.now()); err != nil {
				return err
			}
			a.log.InfoContext(ctx, "exported snapshot", "format", string(f), "output", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from --output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func newImportCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load tasks from a JSON or YAML snapshot, replacing tasks with the same id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := pickFormat(format, args[0])
			if err != nil {
				return err
			}
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer file.Close()

			a, err := openApp(ctx, opts, openOptions{logTo: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := storage.Import(ctx, a.repo, file, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from the file extension)")
	return cmd
}

func newResetCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every task and setting",
		Long:  "Delete every task and setting. The default routines are seeded again on the next start.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("reset deletes all tasks; pass --yes to confirm")
			}
			ctx := cmd.Context()
			a, err := openApp(ctx, opts, openOptions{logTo: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.repo.DeleteAll(ctx); err != nil {
				return err
			}
			a.log.InfoContext(ctx, "database reset", "db", a.cfg.DBPath)
			fmt.Fprintln(cmd.OutOrStdout(), "all tasks and settings deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting everything")
	return cmd
}

func pickFormat(flag, path string) (storage.Format, error) {
	if flag != "" {
		return storage.ParseFormat(flag)
	}
	if path == "" {
		return storage.FormatJSON, nil
	}
	return storage.FormatFromPath(path)
}
