package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/monedero-app/monedero/internal/model"
	"github.com/monedero-app/monedero/internal/summary"
)

// periodFlags are the --period/--month/--year flags shared by list and summary.
type periodFlags struct {
	kind  string
	month int
	year  int
}

func (pf *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&pf.kind, "period", "p", "all", "all, month or year")
	cmd.Flags().IntVar(&pf.month, "month", 0, "month 1-12 (default current month)")
	cmd.Flags().IntVar(&pf.year, "year", 0, "year (default current year)")
}

// period builds the summary.Period, defaulting month and year from today.
func (pf *periodFlags) period(today time.Time) (summary.Period, error) {
	invalid := func(format string, args ...any) (summary.Period, error) {
		return summary.Period{}, model.ValidationErrors{{Field: "period", Description: fmt.Sprintf(format, args...)}}
	}

	kind, ok := summary.ParsePeriodKind(pf.kind)
	if !ok {
		return invalid("want all, month or year, got %q", pf.kind)
	}
	if pf.month < 0 || pf.month > 12 {
		return invalid("month %d out of range", pf.month)
	}

	year, month := today.Year(), today.Month()
	if pf.year != 0 {
		year = pf.year
	}
	if pf.month != 0 {
		month = time.Month(pf.month)
	}
	ref := time.Date(year, month, 1, 0, 0, 0, 0, today.Location())

	var p summary.Period
	switch kind {
	case summary.PeriodMonth:
		p = summary.MonthOf(ref)
	case summary.PeriodYear:
		p = summary.YearOf(ref)
	default:
		p = summary.AllTime()
	}
	if err := p.Validate(); err != nil {
		return invalid("%s", err.Error())
	}
	return p, nil
}

func newSummaryCommand() *cobra.Command {
	var pf periodFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show balance and expenses by category for a period",
		Example: `  monedero summary --period month
  monedero summary --period year --year 2024`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				today := time.Now().In(a.loc)
				period, err := pf.period(today)
				if err != nil {
					return a.fail(err)
				}
				txs, err := a.load(ctx)
				if err != nil {
					return err
				}
				a.out.Overview(summary.NewOverview(txs, period, today, a.loc))
				return nil
			})
		},
	}

	pf.register(cmd)
	return cmd
}

func newWeekCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show daily totals for the last 7 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				txs, err := a.load(ctx)
				if err != nil {
					return err
				}
				a.out.Balance(summary.Balance(txs))
				a.out.Week(summary.TrailingWeek(txs, time.Now(), a.loc))
				return nil
			})
		},
	}
}
