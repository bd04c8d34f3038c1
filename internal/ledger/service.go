// Package ledger implements the transaction flows of a logged-in user: list,
// add, delete, seed and import. Every write is a locked read-modify-write of
// the user's whole list.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/monedero-app/monedero/internal/id"
	"github.com/monedero-app/monedero/internal/logging"
	"github.com/monedero-app/monedero/internal/model"
	"github.com/monedero-app/monedero/internal/session"
	"github.com/monedero-app/monedero/internal/storage"
)

// Service provides business logic for transactions.
type Service struct {
	repo   *storage.Repository
	ids    *id.Generator
	clock  func() time.Time
	logger *slog.Logger
}

// NewService creates a ledger Service. A nil clock means time.Now.
func NewService(repo *storage.Repository, ids *id.Generator, clock func() time.Time, logger *slog.Logger) *Service {
	if ids == nil {
		ids = id.NewGenerator()
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:   repo,
		ids:    ids,
		clock:  clock,
		logger: logging.WithComponent(logger, logging.ComponentLedger),
	}
}

// AddParams holds the fields collected by the add-transaction flow.
type AddParams struct {
	Type        model.TxType
	Amount      decimal.Decimal
	Description string
	Category    model.Category
	// Date defaults to now when zero.
	Date time.Time
}

// List returns the session user's transactions in stored order.
func (s *Service) List(ctx context.Context, sess session.Session) ([]model.Transaction, error) {
	if err := requireUser(sess); err != nil {
		return nil, err
	}
	return s.repo.Transactions(ctx, sess.UserID())
}

// Add validates params and appends a new transaction. Nothing is written
// when validation fails.
func (s *Service) Add(ctx context.Context, sess session.Session, params AddParams) (model.Transaction, error) {
	if err := requireUser(sess); err != nil {
		return model.Transaction{}, err
	}

	now := s.clock()
	tx := model.Transaction{
		Type:        params.Type,
		Amount:      params.Amount,
		Description: strings.TrimSpace(params.Description),
		Category:    params.Category,
		Date:        params.Date,
		CreatedAt:   now,
	}
	if tx.Date.IsZero() {
		tx.Date = now
	}
	if err := tx.Validate(); err != nil {
		return model.Transaction{}, err
	}
	tx.ID = s.ids.Next(now)

	if _, err := s.repo.AppendTransaction(ctx, sess.UserID(), tx); err != nil {
		return model.Transaction{}, fmt.Errorf("saving transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "transaction added",
		logging.FieldUserID, sess.UserID(),
		logging.FieldTxID, tx.ID,
		"type", tx.Type,
		"amount", tx.Amount.StringFixed(2),
	)
	return tx, nil
}

// Delete removes the transaction with the given ID. Deleting an unknown ID
// is not an error; removed reports whether anything changed.
func (s *Service) Delete(ctx context.Context, sess session.Session, txID string) (bool, error) {
	if err := requireUser(sess); err != nil {
		return false, err
	}
	removed, _, err := s.repo.DeleteTransaction(ctx, sess.UserID(), txID)
	if err != nil {
		return false, fmt.Errorf("deleting transaction %s: %w", txID, err)
	}
	if removed {
		s.logger.InfoContext(ctx, "transaction deleted", logging.FieldUserID, sess.UserID(), logging.FieldTxID, txID)
	}
	return removed, nil
}

// Seed stores a small sample list for a user whose list is empty. It returns
// the number of transactions written, zero when the list already had data.
func (s *Service) Seed(ctx context.Context, sess session.Session) (int, error) {
	if err := requireUser(sess); err != nil {
		return 0, err
	}

	now := s.clock()
	samples := sampleTransactions(now)
	written := 0
	_, err := s.repo.UpdateTransactions(ctx, sess.UserID(), func(txs []model.Transaction) ([]model.Transaction, error) {
		if len(txs) > 0 {
			return nil, storage.ErrNoChange
		}
		for i := range samples {
			samples[i].ID = s.ids.Next(now)
		}
		written = len(samples)
		return samples, nil
	})
	if err != nil {
		return 0, fmt.Errorf("seeding transactions: %w", err)
	}
	return written, nil
}

// ImportResult reports what Import did.
type ImportResult struct {
	Added   int
	Skipped int
}

// Import appends txs to the session user's list. Every transaction is
// validated before anything is written; those whose ID is already present
// are skipped. Missing IDs are generated and a missing category becomes
// Otros, as in lists written before categories were required.
func (s *Service) Import(ctx context.Context, sess session.Session, txs []model.Transaction) (ImportResult, error) {
	if err := requireUser(sess); err != nil {
		return ImportResult{}, err
	}

	now := s.clock()
	for i := range txs {
		if txs[i].Category == "" {
			txs[i].Category = model.CategoryOther
		}
		if txs[i].CreatedAt.IsZero() {
			txs[i].CreatedAt = createdAt(txs[i].ID, now)
		}
		if err := txs[i].Validate(); err != nil {
			return ImportResult{}, fmt.Errorf("transaction %d: %w", i+1, err)
		}
	}

	var res ImportResult
	_, err := s.repo.UpdateTransactions(ctx, sess.UserID(), func(existing []model.Transaction) ([]model.Transaction, error) {
		seen := make(map[string]bool, len(existing)+len(txs))
		for _, t := range existing {
			seen[t.ID] = true
		}
		for _, t := range txs {
			if t.ID == "" {
				t.ID = s.ids.Next(now)
			}
			if seen[t.ID] {
				res.Skipped++
				continue
			}
			seen[t.ID] = true
			existing = append(existing, t)
			res.Added++
		}
		if res.Added == 0 {
			return nil, storage.ErrNoChange
		}
		return existing, nil
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("importing transactions: %w", err)
	}

	s.logger.InfoContext(ctx, "transactions imported", logging.FieldUserID, sess.UserID(), "added", res.Added, "skipped", res.Skipped)
	return res, nil
}

// createdAt recovers the creation time encoded in a millisecond timestamp
// ID (13 digits), falling back to now for any other ID.
func createdAt(txID string, now time.Time) time.Time {
	if len(txID) != 13 {
		return now
	}
	if t, err := id.Parse(txID); err == nil {
		return t
	}
	return now
}

func requireUser(sess session.Session) error {
	if sess.UserID() == "" {
		return session.ErrNotAuthenticated
	}
	return nil
}

// sampleTransactions returns the starter list: five days of salary and
// groceries ending today.
func sampleTransactions(now time.Time) []model.Transaction {
	day := 24 * time.Hour
	sample := func(typ model.TxType, amount int64, desc string, cat model.Category, daysAgo int) model.Transaction {
		return model.Transaction{
			Type:        typ,
			Amount:      decimal.NewFromInt(amount),
			Description: desc,
			Category:    cat,
			Date:        now.Add(-time.Duration(daysAgo) * day),
			CreatedAt:   now,
		}
	}
	return []model.Transaction{
		sample(model.TxIncome, 1200, "Sueldo", model.CategoryOther, 5),
		sample(model.TxExpense, 200, "Sueldo", model.CategoryOther, 4),
		sample(model.TxIncome, 5000, "Sueldo", model.CategoryOther, 3),
		sample(model.TxIncome, 2000, "Sueldo", model.CategoryOther, 2),
		sample(model.TxIncome, 1200, "Sueldo", model.CategoryOther, 1),
		sample(model.TxExpense, 3000, "Supermercado", model.CategoryFood, 0),
	}
}
