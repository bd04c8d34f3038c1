package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/monedero-app/monedero/internal/activity"
	"github.com/monedero-app/monedero/internal/config"
	"github.com/monedero-app/monedero/internal/history"
	"github.com/monedero-app/monedero/internal/id"
	"github.com/monedero-app/monedero/internal/kv"
	"github.com/monedero-app/monedero/internal/kv/sqlitekv"
	"github.com/monedero-app/monedero/internal/ledger"
	"github.com/monedero-app/monedero/internal/logging"
	"github.com/monedero-app/monedero/internal/notice"
	"github.com/monedero-app/monedero/internal/render"
	"github.com/monedero-app/monedero/internal/session"
	"github.com/monedero-app/monedero/internal/storage"
)

// homeFlag is the name of the persistent flag selecting the data home.
const homeFlag = "home"

// shownError wraps an error whose notice was already printed.
type shownError struct {
	err error
}

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

// app holds everything a command needs, opened from the data home.
type app struct {
	home     string
	cfg      *config.Config
	logger   *slog.Logger
	store    kv.Store
	repo     *storage.Repository
	gate     *session.Gate
	ledger   *ledger.Service
	activity *activity.Log
	out      *render.Printer
	loc      *time.Location
}

// openApp loads the config of the selected data home, opens its store and
// resolves the session. A session that cannot be read is reported as a
// notice and treated as logged out.
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()

	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	flag, _ := cmd.Flags().GetString(homeFlag)
	home, err := config.ResolveHome(flag)
	if err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(filepath.Join(home, ".env")); err != nil {
		return nil, err
	}

	cfg, err := config.LoadHome(home)
	if err != nil {
		return nil, err
	}
	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger := logging.New(logging.Config{Level: level, Output: cmd.ErrOrStderr()})

	store, err := openStore(cfg, home)
	if err != nil {
		return nil, err
	}

	ids := id.NewGenerator()
	repo := storage.NewRepository(storage.NewAccessor(store))
	a := &app{
		home:     home,
		cfg:      cfg,
		logger:   logging.WithComponent(logger, logging.ComponentApp),
		store:    store,
		repo:     repo,
		gate:     session.NewGate(repo, session.WithIDs(ids), session.WithLogger(logger)),
		ledger:   ledger.NewService(repo, ids, time.Now, logger),
		activity: activity.New(home, time.Now, logger),
		out:      render.New(cmd.OutOrStdout(), cfg.Display.Currency, cfg.Location()),
		loc:      cfg.Location(),
	}

	if _, err := a.gate.Resolve(ctx); err != nil {
		a.out.Notice(notice.FromError(err))
	}
	return a, nil
}

func openStore(cfg *config.Config, home string) (kv.Store, error) {
	path := cfg.StorePath(home)
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		return sqlitekv.Open(path)
	default:
		return kv.OpenDir(path)
	}
}

// withApp opens the app, runs fn and closes the store.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.store.Close()
	return fn(cmd.Context(), a)
}

// fail prints the notice for err and returns it marked as shown.
func (a *app) fail(err error) error {
	a.out.Notice(notice.FromWriteError(err))
	return &shownError{err: err}
}

// failRead is fail for commands that must read stored data and have no
// defaults to show instead.
func (a *app) failRead(err error) error {
	a.out.Notice(notice.FromReadError(err))
	return &shownError{err: err}
}

// current returns the logged-in session, printing a notice when there is none.
func (a *app) current() (session.Session, error) {
	sess, err := a.gate.Current()
	if err != nil {
		return session.Session{}, a.fail(err)
	}
	return sess, nil
}

// changed records a completed change in the activity log and, when enabled,
// snapshots the data home.
func (a *app) changed(ctx context.Context, userID string, action activity.Action, details, txID string) {
	a.activity.Record(ctx, userID, action, details, txID)

	if !a.cfg.History.AutoSnapshot {
		return
	}
	author := history.Author{Name: a.cfg.History.AuthorName, Email: a.cfg.History.AuthorEmail}
	_, err := history.Snapshot(a.home, fmt.Sprintf("%s: %s", action, details), author)
	if err != nil && !errors.Is(err, history.ErrNothingToCommit) {
		a.logger.WarnContext(ctx, "snapshot failed", "action", action, logging.FieldError, err)
	}
}

// readPassword returns the flag value if set, otherwise prompts. Input is
// hidden when stdin is a terminal.
func readPassword(cmd *cobra.Command, flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
