package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/monedero-app/monedero/internal/config"
	"github.com/monedero-app/monedero/internal/history"
	"github.com/monedero-app/monedero/internal/logging"
	"github.com/monedero-app/monedero/internal/notice"
)

func newInitCommand() *cobra.Command {
	var (
		backend  string
		currency string
		timezone string
		git      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a data home with a default monedero.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flag, _ := cmd.Flags().GetString(homeFlag)
			home, err := config.ResolveHome(flag)
			if err != nil {
				return err
			}

			cfg := config.Default()
			if backend != "" {
				cfg.Storage.Backend = config.Backend(backend)
			}
			if currency != "" {
				cfg.Display.Currency = currency
			}
			if timezone != "" {
				cfg.Display.Timezone = timezone
			}
			cfg.History.AutoSnapshot = git
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := runInit(home, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized monedero data home at %s\n", home)
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "storage backend: file or sqlite (default file)")
	cmd.Flags().StringVar(&currency, "currency", "", "currency label (default Lps)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA time zone for dates (default UTC)")
	cmd.Flags().BoolVar(&git, "git", false, "keep a git history of the data home")

	return cmd
}

func runInit(home string, cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Join(home, "logs"), 0o755); err != nil {
		return fmt.Errorf("creating data home: %w", err)
	}

	path := filepath.Join(home, config.FileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if !cfg.History.AutoSnapshot {
		return nil
	}
	if err := history.Init(home); err != nil {
		return fmt.Errorf("enabling history: %w", err)
	}
	author := history.Author{Name: cfg.History.AuthorName, Email: cfg.History.AuthorEmail}
	if _, err := history.Snapshot(home, "init", author); err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}
	return nil
}

func newLogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show your recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				sess, err := a.current()
				if err != nil {
					return err
				}
				entries, err := a.activity.ForUser(sess.UserID())
				if err != nil {
					return a.failRead(err)
				}
				a.out.Activity(entries)
				return nil
			})
		},
	}
}

func newSnapshotCommand() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Commit the data home to its git history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				author := history.Author{Name: a.cfg.History.AuthorName, Email: a.cfg.History.AuthorEmail}
				hash, err := history.Snapshot(a.home, message, author)
				switch {
				case errors.Is(err, history.ErrNothingToCommit):
					a.out.Notice(notice.Success("Nothing changed since the last snapshot"))
					return nil
				case errors.Is(err, history.ErrNotEnabled):
					return a.fail(fmt.Errorf("%w; run init --git on a new data home", err))
				case err != nil:
					return a.fail(err)
				}
				count, err := history.Count(a.home)
				if err != nil {
					a.logger.WarnContext(ctx, "counting snapshots failed", logging.FieldError, err)
					a.out.Notice(notice.Success("Snapshot %s", hash))
					return nil
				}
				a.out.Notice(notice.Success("Snapshot %s (%d in history)", hash, count))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "manual snapshot", "snapshot message")

	return cmd
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that every stored value can be read",
		Long: `Decode every stored value and validate each stored transaction.
Exits non-zero when a value is malformed or a transaction is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, runCheck)
		},
	}
}

func runCheck(ctx context.Context, a *app) error {
	report, err := a.repo.Check(ctx)
	if err != nil {
		return a.failRead(err)
	}
	a.out.Check(report)
	if len(report.Problems) > 0 {
		return &shownError{err: fmt.Errorf("%d problems found", len(report.Problems))}
	}
	return nil
}
