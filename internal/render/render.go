// Package render prints ledgers, summaries and notices to a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/monedero-app/monedero/internal/activity"
	"github.com/monedero-app/monedero/internal/model"
	"github.com/monedero-app/monedero/internal/notice"
	"github.com/monedero-app/monedero/internal/storage"
	"github.com/monedero-app/monedero/internal/summary"
)

const (
	colorIncome  = lipgloss.Color("#a6e3a1")
	colorExpense = lipgloss.Color("#f38ba8")
	colorMuted   = lipgloss.Color("#7f849c")
	colorAccent  = lipgloss.Color("#89b4fa")
	colorWarn    = lipgloss.Color("#f9e2af")

	barWidth = 24
)

// Printer writes styled output. Colors are dropped automatically when w is
// not a terminal.
type Printer struct {
	w        io.Writer
	currency string
	loc      *time.Location

	title   lipgloss.Style
	muted   lipgloss.Style
	income  lipgloss.Style
	expense lipgloss.Style
	accent  lipgloss.Style
	warn    lipgloss.Style
}

// New creates a Printer. Dates are shown in loc.
func New(w io.Writer, currency string, loc *time.Location) *Printer {
	if loc == nil {
		loc = time.UTC
	}
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:        w,
		currency: currency,
		loc:      loc,
		title:    r.NewStyle().Bold(true),
		muted:    r.NewStyle().Foreground(colorMuted),
		income:   r.NewStyle().Foreground(colorIncome),
		expense:  r.NewStyle().Foreground(colorExpense),
		accent:   r.NewStyle().Foreground(colorAccent).Bold(true),
		warn:     r.NewStyle().Foreground(colorWarn),
	}
}

// Money formats an amount with two decimals and the currency label.
func (p *Printer) Money(d decimal.Decimal) string {
	if p.currency == "" {
		return d.StringFixed(2)
	}
	return p.currency + " " + d.StringFixed(2)
}

// Notice prints a notice on one line.
func (p *Printer) Notice(n notice.Notice) {
	if n.Message == "" {
		return
	}
	var style lipgloss.Style
	switch n.Kind {
	case notice.KindSuccess:
		style = p.income
	case notice.KindRejected:
		style = p.warn
	default:
		style = p.expense
	}
	fmt.Fprintln(p.w, style.Render(n.Message))
}

// Balance prints the balance line.
func (p *Printer) Balance(balance decimal.Decimal) {
	style := p.income
	if balance.IsNegative() {
		style = p.expense
	}
	fmt.Fprintf(p.w, "%s %s\n", p.title.Render("Balance:"), style.Render(p.Money(balance)))
}

// Transactions prints one row per transaction, newest first.
func (p *Printer) Transactions(txs []model.Transaction) {
	fmt.Fprintln(p.w, p.title.Render(fmt.Sprintf("Transactions (%d)", len(txs))))
	if len(txs) == 0 {
		fmt.Fprintln(p.w, p.muted.Render("No transactions yet."))
		return
	}
	for i := len(txs) - 1; i >= 0; i-- {
		fmt.Fprintln(p.w, p.row(txs[i]))
	}
}

func (p *Printer) row(tx model.Transaction) string {
	sign, style := "+", p.income
	if tx.Type != model.TxIncome {
		sign, style = "-", p.expense
	}
	amount := style.Render(fmt.Sprintf("%s%12s", sign, tx.Amount.StringFixed(2)))

	desc := tx.Description
	if desc == "" {
		desc = "(no description)"
	}
	category := ""
	if tx.Category != "" {
		category = " " + p.muted.Render("["+tx.Category.DisplayName()+"]")
	}
	return fmt.Sprintf("%s  %s  %s  %s%s",
		p.muted.Render(tx.ID),
		tx.Date.In(p.loc).Format(time.DateOnly),
		amount,
		desc,
		category,
	)
}

// Categories prints the expense breakdown with each category's share.
func (p *Printer) Categories(totals summary.Totals) {
	fmt.Fprintln(p.w, p.title.Render("Expenses by category"))
	shares := totals.Shares()
	if len(shares) == 0 {
		fmt.Fprintln(p.w, p.muted.Render("No expenses in this period."))
		return
	}
	for _, s := range shares {
		fmt.Fprintf(p.w, "  %-10s %14s  %5s%%\n",
			s.Category.DisplayName(),
			p.Money(s.Amount),
			s.Percent.StringFixed(1),
		)
	}
}

// Week prints the trailing 7-day series as a horizontal bar chart.
func (p *Printer) Week(days []summary.DayTotal) {
	fmt.Fprintln(p.w, p.title.Render("Activity (last 7 days)"))

	peak := decimal.Zero
	for _, d := range days {
		if abs := d.Total.Abs(); abs.GreaterThan(peak) {
			peak = abs
		}
	}
	for _, d := range days {
		fmt.Fprintf(p.w, "  %s %s %s\n", d.Label, p.bar(d.Total, peak), p.Money(d.Total))
	}
}

func (p *Printer) bar(v, peak decimal.Decimal) string {
	n := 0
	if peak.IsPositive() {
		n = int(v.Abs().Mul(decimal.NewFromInt(barWidth)).Div(peak).Ceil().IntPart())
	}
	bar := strings.Repeat("█", n) + strings.Repeat(" ", barWidth-n)
	if v.IsNegative() {
		return p.expense.Render(bar)
	}
	return p.income.Render(bar)
}

// Overview prints the summary screen for one period.
func (p *Printer) Overview(ov summary.Overview) {
	fmt.Fprintln(p.w, p.accent.Render("Summary: "+ov.Period.String()))
	p.Balance(ov.Balance)
	fmt.Fprintf(p.w, "%s %s   %s %s\n",
		p.muted.Render("Income:"), p.income.Render(p.Money(ov.Income)),
		p.muted.Render("Expenses:"), p.expense.Render(p.Money(ov.Expense)),
	)
	fmt.Fprintln(p.w)
	p.Categories(ov.Categories)
	fmt.Fprintln(p.w)
	p.Transactions(ov.Transactions)
}

// User prints the session user's profile.
func (p *Printer) User(u model.User) {
	fmt.Fprintln(p.w, p.accent.Render(u.DisplayName()))
	fmt.Fprintf(p.w, "  email:  %s\n", u.Email)
	fmt.Fprintf(p.w, "  id:     %s\n", p.muted.Render(u.ID))
	if u.BirthDate != nil {
		fmt.Fprintf(p.w, "  born:   %s\n", u.BirthDate.Format(time.DateOnly))
	}
	if u.Status != model.StatusUnset {
		fmt.Fprintf(p.w, "  status: %s\n", u.Status)
	}
}

// Activity prints activity log entries, oldest first.
func (p *Printer) Activity(entries []activity.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, p.muted.Render("No activity recorded."))
		return
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-8s %s", e.Timestamp.In(p.loc).Format("2006-01-02 15:04"), e.Action, e.Details)
		if e.TxID != "" {
			line += " " + p.muted.Render(e.TxID)
		}
		fmt.Fprintln(p.w, strings.TrimRight(line, " "))
	}
}

// Check prints the result of a storage check, one line per problem.
func (p *Printer) Check(report storage.CheckReport) {
	if len(report.Problems) == 0 {
		fmt.Fprintln(p.w, p.income.Render(fmt.Sprintf("All %d stored values are readable.", report.Checked)))
		return
	}
	fmt.Fprintln(p.w, p.title.Render(fmt.Sprintf("%d problems in %d stored values", len(report.Problems), report.Checked)))
	for _, prob := range report.Problems {
		fmt.Fprintf(p.w, "  %s  %s\n", p.warn.Render(prob.Key), prob.Err)
	}
}
