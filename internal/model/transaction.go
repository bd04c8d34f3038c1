package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are persisted as JSON numbers so existing stored lists decode
	// and re-encode unchanged.
	decimal.MarshalJSONWithoutQuotes = true
}

// TxType is the direction of a transaction.
type TxType string

const (
	TxIncome  TxType = "income"
	TxExpense TxType = "expense"
)

// Valid reports whether t is income or expense.
func (t TxType) Valid() bool {
	return t == TxIncome || t == TxExpense
}

// Sign returns +1 for income and -1 for anything else.
func (t TxType) Sign() decimal.Decimal {
	if t == TxIncome {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}

// ParseTxType accepts "income"/"expense" and the short forms "in"/"out".
func ParseTxType(s string) (TxType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "in", "ingreso":
		return TxIncome, true
	case "expense", "out", "gasto":
		return TxExpense, true
	}
	return "", false
}

// Transaction is one entry of a user's transaction list. Amount is never
// negative; the sign comes from Type.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TxType          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    Category        `json:"category,omitempty"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
}

// Signed returns the amount with the sign implied by the type.
func (t Transaction) Signed() decimal.Decimal {
	return t.Amount.Mul(t.Type.Sign())
}

// Validate checks the fields required before a transaction is saved.
func (t Transaction) Validate() error {
	var errs ValidationErrors

	if !t.Type.Valid() {
		errs = append(errs, ValidationError{Field: "type", Description: fmt.Sprintf("unknown type %q", t.Type)})
	}

	switch {
	case t.Amount.IsZero():
		errs = append(errs, ValidationError{Field: "amount", Description: "amount is required"})
	case t.Amount.IsNegative():
		errs = append(errs, ValidationError{Field: "amount", Description: fmt.Sprintf("amount %s is negative", t.Amount)})
	case !t.Amount.Equal(t.Amount.Round(2)):
		errs = append(errs, ValidationError{Field: "amount", Description: fmt.Sprintf("amount %s has more than 2 decimal places", t.Amount)})
	}

	if !t.Category.Valid() {
		errs = append(errs, ValidationError{Field: "category", Description: fmt.Sprintf("unknown category %q", t.Category)})
	}

	if t.Date.IsZero() {
		errs = append(errs, ValidationError{Field: "date", Description: "date is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
