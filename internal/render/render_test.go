package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monedero-app/monedero/internal/activity"
	"github.com/monedero-app/monedero/internal/model"
	"github.com/monedero-app/monedero/internal/notice"
	"github.com/monedero-app/monedero/internal/storage"
	"github.com/monedero-app/monedero/internal/summary"
)

var today = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func txs() []model.Transaction {
	return []model.Transaction{
		{ID: "1", Type: model.TxIncome, Amount: dec("1200"), Description: "Sueldo", Category: model.CategoryOther, Date: today.AddDate(0, 0, -2)},
		{ID: "2", Type: model.TxExpense, Amount: dec("300.5"), Description: "Supermercado", Category: model.CategoryFood, Date: today},
	}
}

func TestMoney(t *testing.T) {
	p := New(&bytes.Buffer{}, "Lps", nil)
	assert.Equal(t, "Lps 6000.00", p.Money(dec("6000")))
	assert.Equal(t, "Lps -0.50", p.Money(dec("-0.5")))
	assert.Equal(t, "1.25", New(&bytes.Buffer{}, "", nil).Money(dec("1.25")))
}

func TestBalance(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "Lps", nil).Balance(summary.Balance(txs()))
	assert.Equal(t, "Balance: Lps 899.50\n", buf.String())
}

func TestTransactions(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "Lps", nil).Transactions(txs())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Transactions (2)", lines[0])
	assert.Contains(t, lines[1], "2025-06-01")
	assert.Contains(t, lines[1], "-      300.50")
	assert.Contains(t, lines[1], "Supermercado [Food]")
	assert.Contains(t, lines[2], "+     1200.00")
}

func TestTransactions_Empty(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "Lps", nil).Transactions(nil)
	assert.Contains(t, buf.String(), "No transactions yet.")
}

func TestTransactions_DateInLocation(t *testing.T) {
	var buf bytes.Buffer
	tx := model.Transaction{ID: "1", Type: model.TxIncome, Amount: dec("1"), Date: time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)}
	New(&buf, "", time.FixedZone("CST", -6*3600)).Transactions([]model.Transaction{tx})
	assert.Contains(t, buf.String(), "2025-05-31")
}

func TestCategories(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "Lps", nil).Categories(summary.CategoryTotals([]model.Transaction{
		{Type: model.TxExpense, Amount: dec("75"), Category: model.CategoryFood},
		{Type: model.TxExpense, Amount: dec("25"), Category: model.CategoryHealth},
	}))
	out := buf.String()
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "Health")
	assert.Contains(t, out, "25.0%")
	assert.NotContains(t, out, "Transport")
}

func TestWeek(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "Lps", nil).Week(summary.TrailingWeek(txs(), today, time.UTC))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 8)
	assert.Contains(t, lines[1], "05-26")
	assert.Contains(t, lines[5], "05-30")
	assert.Contains(t, lines[5], strings.Repeat("█", barWidth))
	assert.Contains(t, lines[7], "06-01")
	assert.Contains(t, lines[7], "Lps -300.50")
}

func TestNotice(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, "", nil)
	p.Notice(notice.Success("saved"))
	p.Notice(notice.Notice{})
	assert.Equal(t, "saved\n", buf.String())
}

func TestUserAndActivity(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, "", nil)
	born := time.Date(2000, 4, 2, 0, 0, 0, 0, time.UTC)
	p.User(model.User{ID: "7", Email: "ana@example.com", Name: "Ana", BirthDate: &born, Status: model.StatusWorking})
	p.Activity([]activity.Entry{{Timestamp: today, Action: activity.ActionAdd, Details: "expense 3.00", TxID: "9"}})

	out := buf.String()
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "2000-04-02")
	assert.Contains(t, out, "Trabaja")
	assert.Contains(t, out, "2025-06-01 12:00  add      expense 3.00 9")
}

func TestCheck(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "Lps", nil).Check(storage.CheckReport{Checked: 3})
	assert.Equal(t, "All 3 stored values are readable.\n", buf.String())

	buf.Reset()
	New(&buf, "Lps", nil).Check(storage.CheckReport{
		Checked:  3,
		Problems: []storage.Problem{{Key: "@transactions_u1", Err: errors.New("bad json")}},
	})
	assert.Contains(t, buf.String(), "1 problems in 3 stored values")
	assert.Contains(t, buf.String(), "@transactions_u1  bad json")
}
