package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/monedero-app/monedero/internal/activity"
	"github.com/monedero-app/monedero/internal/model"
	"github.com/monedero-app/monedero/internal/notice"
)

func newRegisterCommand() *cobra.Command {
	var (
		email     string
		password  string
		name      string
		birthDate string
		status    string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a user and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				params := model.RegisterParams{Email: email, Name: name}

				if birthDate != "" {
					d, err := time.Parse(time.DateOnly, birthDate)
					if err != nil {
						return a.fail(model.ValidationErrors{{Field: "birthDate", Description: fmt.Sprintf("want YYYY-MM-DD, got %q", birthDate)}})
					}
					params.BirthDate = &d
				}
				if status != "" {
					st, ok := model.ParseStatus(status)
					if !ok {
						return a.fail(model.ValidationErrors{{Field: "status", Description: fmt.Sprintf("unknown status %q", status)}})
					}
					params.Status = st
				}

				pw, err := readPassword(cmd, password, "Password: ")
				if err != nil {
					return err
				}
				params.Password = pw

				return runRegister(ctx, a, params)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&birthDate, "birth-date", "", "birth date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&status, "status", "", "studying or working (required)")

	return cmd
}

func runRegister(ctx context.Context, a *app, params model.RegisterParams) error {
	sess, err := a.gate.Register(ctx, params)
	if err != nil {
		return a.fail(err)
	}
	a.changed(ctx, sess.UserID(), activity.ActionRegister, sess.User.Email, "")
	a.out.Notice(notice.Success("Welcome, %s!", sess.User.DisplayName()))
	return nil
}

func newLoginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a registered user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				pw, err := readPassword(cmd, password, "Password: ")
				if err != nil {
					return err
				}
				return runLogin(ctx, a, email, pw)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runLogin(ctx context.Context, a *app, email, password string) error {
	sess, err := a.gate.Login(ctx, email, password)
	if err != nil {
		return a.fail(err)
	}
	a.changed(ctx, sess.UserID(), activity.ActionLogin, sess.User.Email, "")
	a.out.Notice(notice.Success("Logged in as %s", sess.User.DisplayName()))
	return nil
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, runLogout)
		},
	}
}

func runLogout(ctx context.Context, a *app) error {
	sess, err := a.gate.Current()
	if err != nil {
		a.out.Notice(notice.Success("Not logged in"))
		return nil
	}
	if err := a.gate.Logout(ctx); err != nil {
		return a.fail(err)
	}
	a.changed(ctx, sess.UserID(), activity.ActionLogout, sess.User.Email, "")
	a.out.Notice(notice.Success("Logged out"))
	return nil
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				sess, err := a.current()
				if err != nil {
					return err
				}
				// The session copy has no password; show the full profile when available.
				u, found, err := a.repo.FindUserByEmail(ctx, sess.User.Email)
				if err != nil || !found {
					u = sess.User
				}
				a.out.User(u.Public())
				return nil
			})
		},
	}
}
