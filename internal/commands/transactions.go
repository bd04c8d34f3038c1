package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/monedero-app/monedero/internal/activity"
	"github.com/monedero-app/monedero/internal/ledger"
	"github.com/monedero-app/monedero/internal/model"
	"github.com/monedero-app/monedero/internal/notice"
	"github.com/monedero-app/monedero/internal/summary"
)

func newAddCommand() *cobra.Command {
	var category, date string

	cmd := &cobra.Command{
		Use:   "add <income|expense> <amount> [description...]",
		Short: "Record a transaction",
		Example: `  monedero add income 1200 Sueldo --category other
  monedero add expense 12.50 Almuerzo --category food --date 2025-06-01`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				params, err := parseAddArgs(args, category, date, a.loc)
				if err != nil {
					return a.fail(err)
				}
				return runAdd(ctx, a, params)
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category: food, transport, education, leisure, health, services, other")
	cmd.Flags().StringVarP(&date, "date", "d", "", "date, YYYY-MM-DD (default now)")

	return cmd
}

// parseAddArgs converts command-line input into AddParams. Every problem is
// reported at once as validation errors.
func parseAddArgs(args []string, category, date string, loc *time.Location) (ledger.AddParams, error) {
	var params ledger.AddParams
	var errs model.ValidationErrors

	typ, ok := model.ParseTxType(args[0])
	if !ok {
		errs = append(errs, model.ValidationError{Field: "type", Description: fmt.Sprintf("want income or expense, got %q", args[0])})
	}
	params.Type = typ

	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		errs = append(errs, model.ValidationError{Field: "amount", Description: fmt.Sprintf("%q is not a number", args[1])})
	}
	params.Amount = amount

	params.Description = strings.Join(args[2:], " ")

	switch c, ok := model.ParseCategory(category); {
	case category == "" && typ == model.TxIncome:
		params.Category = model.CategoryOther
	case category == "":
		errs = append(errs, model.ValidationError{Field: "category", Description: "category is required"})
	case !ok:
		errs = append(errs, model.ValidationError{Field: "category", Description: fmt.Sprintf("unknown category %q", category)})
	default:
		params.Category = c
	}

	if date != "" {
		d, err := time.ParseInLocation(time.DateOnly, date, loc)
		if err != nil {
			errs = append(errs, model.ValidationError{Field: "date", Description: fmt.Sprintf("want YYYY-MM-DD, got %q", date)})
		}
		params.Date = d
	}

	if len(errs) > 0 {
		return ledger.AddParams{}, errs
	}
	return params, nil
}

func runAdd(ctx context.Context, a *app, params ledger.AddParams) error {
	sess, err := a.current()
	if err != nil {
		return err
	}
	tx, err := a.ledger.Add(ctx, sess, params)
	if err != nil {
		return a.fail(err)
	}
	details := fmt.Sprintf("%s %s %s", tx.Type, tx.Amount.StringFixed(2), tx.Category)
	a.changed(ctx, sess.UserID(), activity.ActionAdd, details, tx.ID)
	a.out.Notice(notice.Success("Saved %s %s (id %s)", tx.Type, a.out.Money(tx.Amount), tx.ID))
	return nil
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return runDelete(ctx, a, args[0])
			})
		},
	}
}

func runDelete(ctx context.Context, a *app, txID string) error {
	sess, err := a.current()
	if err != nil {
		return err
	}
	removed, err := a.ledger.Delete(ctx, sess, txID)
	if err != nil {
		return a.fail(err)
	}
	if !removed {
		a.out.Notice(notice.Success("No transaction with id %s", txID))
		return nil
	}
	a.changed(ctx, sess.UserID(), activity.ActionDelete, "", txID)
	a.out.Notice(notice.Success("Deleted %s", txID))
	return nil
}

func newListCommand() *cobra.Command {
	var pf periodFlags

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the balance and transactions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				period, err := pf.period(time.Now().In(a.loc))
				if err != nil {
					return a.fail(err)
				}
				txs, err := a.load(ctx)
				if err != nil {
					return err
				}
				txs = summary.Filter(txs, period, a.loc)
				a.out.Balance(summary.Balance(txs))
				a.out.Transactions(txs)
				return nil
			})
		},
	}

	pf.register(cmd)
	return cmd
}

// load returns the session user's list. A storage failure prints a notice
// and yields an empty list.
func (a *app) load(ctx context.Context) ([]model.Transaction, error) {
	sess, err := a.current()
	if err != nil {
		return nil, err
	}
	txs, err := a.ledger.List(ctx, sess)
	if err != nil {
		n := notice.FromError(err)
		a.out.Notice(n)
		if n.Blocking {
			return nil, &shownError{err: err}
		}
		return []model.Transaction{}, nil
	}
	return txs, nil
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty ledger with sample transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, runSeed)
		},
	}
}

func runSeed(ctx context.Context, a *app) error {
	sess, err := a.current()
	if err != nil {
		return err
	}
	n, err := a.ledger.Seed(ctx, sess)
	if err != nil {
		return a.fail(err)
	}
	if n == 0 {
		a.out.Notice(notice.Success("Ledger already has transactions; nothing seeded"))
		return nil
	}
	a.changed(ctx, sess.UserID(), activity.ActionSeed, fmt.Sprintf("%d transactions", n), "")
	a.out.Notice(notice.Success("Added %d sample transactions", n))
	return nil
}
