package transfer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/monedero-app/monedero/internal/model"
)

// JSON is the codec for the stored list shape: an array of transactions.
type JSON struct{}

func (JSON) Format() string { return "json" }

func (JSON) Encode(w io.Writer, txs []model.Transaction) error {
	if txs == nil {
		txs = []model.Transaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(txs); err != nil {
		return fmt.Errorf("encoding transactions: %w", err)
	}
	return nil
}

func (JSON) Decode(r io.Reader) ([]model.Transaction, error) {
	var txs []model.Transaction
	if err := json.NewDecoder(r).Decode(&txs); err != nil {
		return nil, fmt.Errorf("decoding transactions: %w", err)
	}
	return txs, nil
}
