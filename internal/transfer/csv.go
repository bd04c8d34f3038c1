package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/monedero-app/monedero/internal/model"
)

// Header is the CSV header of an exported transaction list.
const Header = "id,type,amount,description,category,date,created_at"

const (
	numFields = 7
	colID     = 0
	colType   = 1
	colAmount = 2
	colDesc   = 3
	colCat    = 4
	colDate   = 5
	colCreate = 6
)

// CSV is the comma-separated codec. Dates are RFC 3339 with optional
// fractional seconds; a plain YYYY-MM-DD date is accepted on input.
type CSV struct{}

func (CSV) Format() string { return "csv" }

// Encode writes the header followed by one row per transaction.
func (CSV) Encode(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, tx := range txs {
		if err := cw.Write(MarshalTransaction(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ErrHeader is returned when the first CSV row is not Header.
var ErrHeader = errors.New("first row is not the transactions header")

// Decode reads a CSV whose first row is Header. Column names are compared
// case-insensitively.
func (CSV) Decode(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, err
	}

	var txs []model.Transaction
	for i, rec := range records[1:] {
		tx, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func checkHeader(record []string) error {
	want := strings.Split(Header, ",")
	for i, name := range record {
		name = strings.TrimPrefix(name, "\ufeff")
		if !strings.EqualFold(strings.TrimSpace(name), want[i]) {
			return fmt.Errorf("%w: want %q, got %q", ErrHeader, Header, strings.Join(record, ","))
		}
	}
	return nil
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(tx model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = tx.ID
	row[colType] = string(tx.Type)
	row[colAmount] = tx.Amount.String()
	row[colDesc] = tx.Description
	row[colCat] = string(tx.Category)
	row[colDate] = tx.Date.Format(time.RFC3339Nano)
	if !tx.CreatedAt.IsZero() {
		row[colCreate] = tx.CreatedAt.Format(time.RFC3339Nano)
	}
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction. Type and category
// accept either vocabulary; values outside both are kept as written so that
// validation can report them.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(record[colAmount]))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	date, err := parseTime(record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date: %w", err)
	}

	var created time.Time
	if strings.TrimSpace(record[colCreate]) != "" {
		created, err = parseTime(record[colCreate])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing created_at: %w", err)
		}
	}

	typ, ok := model.ParseTxType(record[colType])
	if !ok {
		typ = model.TxType(record[colType])
	}
	cat, ok := model.ParseCategory(record[colCat])
	if !ok {
		cat = model.Category(record[colCat])
	}

	return model.Transaction{
		ID:          strings.TrimSpace(record[colID]),
		Type:        typ,
		Amount:      amount,
		Description: record[colDesc],
		Category:    cat,
		Date:        date,
		CreatedAt:   created,
	}, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither RFC 3339 nor YYYY-MM-DD", s)
	}
	return t, nil
}
