// Package summary computes the derived views of a transaction list: balance,
// per-category expense totals, period filters and the trailing 7-day series.
// Every function is pure.
package summary

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/monedero-app/monedero/internal/model"
)

// Balance is the signed sum of txs: income adds, expense subtracts.
func Balance(txs []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Signed())
	}
	return total
}

// Income sums the amounts of income transactions.
func Income(txs []model.Transaction) decimal.Decimal {
	return sumType(txs, model.TxIncome)
}

// Expense sums the amounts of expense transactions.
func Expense(txs []model.Transaction) decimal.Decimal {
	return sumType(txs, model.TxExpense)
}

func sumType(txs []model.Transaction, typ model.TxType) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Type == typ {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// Totals maps every known category to its expense total.
type Totals map[model.Category]decimal.Decimal

// CategoryTotals groups expense amounts by category. Every known category is
// present, zero when unused. Income and unknown categories are not counted.
func CategoryTotals(txs []model.Transaction) Totals {
	totals := make(Totals, len(model.Categories()))
	for _, c := range model.Categories() {
		totals[c] = decimal.Zero
	}
	for _, t := range txs {
		if t.Type != model.TxExpense {
			continue
		}
		cur, ok := totals[t.Category]
		if !ok {
			continue
		}
		totals[t.Category] = cur.Add(t.Amount)
	}
	return totals
}

// Sum adds every category total.
func (t Totals) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range t {
		sum = sum.Add(v)
	}
	return sum
}

// Share is one slice of the category breakdown.
type Share struct {
	Category model.Category
	Amount   decimal.Decimal
	// Percent of the total, rounded to one decimal place.
	Percent decimal.Decimal
}

// Shares returns the non-zero categories in display order with their share of
// the total.
func (t Totals) Shares() []Share {
	sum := t.Sum()
	if sum.IsZero() {
		return nil
	}
	hundred := decimal.NewFromInt(100)

	var shares []Share
	for _, c := range model.Categories() {
		amount, ok := t[c]
		if !ok || !amount.IsPositive() {
			continue
		}
		shares = append(shares, Share{
			Category: c,
			Amount:   amount,
			Percent:  amount.Mul(hundred).Div(sum).Round(1),
		})
	}
	return shares
}

// DayTotal is one point of the trailing 7-day series.
type DayTotal struct {
	Key   string // YYYY-MM-DD
	Label string // MM-DD
	Total decimal.Decimal
}

// WeekDays is the length of the trailing series.
const WeekDays = 7

// TrailingWeek returns the signed daily totals of the 7 calendar days ending
// on today, oldest first. Days are calendar dates in loc; transactions outside
// the window are ignored. The result always has 7 entries.
func TrailingWeek(txs []model.Transaction, today time.Time, loc *time.Location) []DayTotal {
	if loc == nil {
		loc = time.UTC
	}
	today = today.In(loc)

	days := make([]DayTotal, WeekDays)
	index := make(map[string]int, WeekDays)
	for i := range WeekDays {
		d := today.AddDate(0, 0, i-(WeekDays-1))
		key := d.Format(time.DateOnly)
		days[i] = DayTotal{Key: key, Label: d.Format("01-02"), Total: decimal.Zero}
		index[key] = i
	}

	for _, t := range txs {
		i, ok := index[t.Date.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		days[i].Total = days[i].Total.Add(t.Signed())
	}
	return days
}
