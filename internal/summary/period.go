package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/monedero-app/monedero/internal/model"
)

// PeriodKind selects how transactions are filtered by date.
type PeriodKind string

const (
	PeriodAll   PeriodKind = "all"
	PeriodMonth PeriodKind = "month"
	PeriodYear  PeriodKind = "year"
)

// ParsePeriodKind accepts all/month/year, also in the stored vocabulary.
func ParsePeriodKind(s string) (PeriodKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "todo":
		return PeriodAll, true
	case "month", "mes":
		return PeriodMonth, true
	case "year", "año", "ano":
		return PeriodYear, true
	}
	return "", false
}

// Period is a calendar filter. Month is used only by PeriodMonth.
type Period struct {
	Kind  PeriodKind
	Month time.Month
	Year  int
}

// AllTime matches every transaction.
func AllTime() Period {
	return Period{Kind: PeriodAll}
}

// MonthOf matches the calendar month of t.
func MonthOf(t time.Time) Period {
	return Period{Kind: PeriodMonth, Month: t.Month(), Year: t.Year()}
}

// YearOf matches the calendar year of t.
func YearOf(t time.Time) Period {
	return Period{Kind: PeriodYear, Year: t.Year()}
}

// Validate checks the period's fields.
func (p Period) Validate() error {
	switch p.Kind {
	case PeriodAll:
		return nil
	case PeriodMonth:
		if p.Month < time.January || p.Month > time.December {
			return fmt.Errorf("month %d out of range", p.Month)
		}
	case PeriodYear:
	default:
		return fmt.Errorf("unknown period %q", p.Kind)
	}
	if p.Year < 1 {
		return fmt.Errorf("year %d out of range", p.Year)
	}
	return nil
}

func (p Period) String() string {
	switch p.Kind {
	case PeriodMonth:
		return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
	case PeriodYear:
		return fmt.Sprintf("%04d", p.Year)
	default:
		return "all time"
	}
}

// Contains reports whether t falls in the period, comparing calendar fields
// in loc.
func (p Period) Contains(t time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	switch p.Kind {
	case PeriodMonth:
		return t.Year() == p.Year && t.Month() == p.Month
	case PeriodYear:
		return t.Year() == p.Year
	default:
		return true
	}
}

// Filter returns the transactions dated within p, in their original order.
func Filter(txs []model.Transaction, p Period, loc *time.Location) []model.Transaction {
	out := make([]model.Transaction, 0, len(txs))
	for _, t := range txs {
		if p.Contains(t.Date, loc) {
			out = append(out, t)
		}
	}
	return out
}

// Overview bundles the views shown on the summary screen. Balance and the
// category breakdown cover the period; Week always covers the whole list.
type Overview struct {
	Period       Period
	Balance      decimal.Decimal
	Income       decimal.Decimal
	Expense      decimal.Decimal
	Categories   Totals
	Week         []DayTotal
	Transactions []model.Transaction
}

// NewOverview computes every view of txs for p.
func NewOverview(txs []model.Transaction, p Period, today time.Time, loc *time.Location) Overview {
	filtered := Filter(txs, p, loc)
	return Overview{
		Period:       p,
		Balance:      Balance(filtered),
		Income:       Income(filtered),
		Expense:      Expense(filtered),
		Categories:   CategoryTotals(filtered),
		Week:         TrailingWeek(txs, today, loc),
		Transactions: filtered,
	}
}
