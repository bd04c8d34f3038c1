package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/monedero-app/monedero/internal/model"
)

var (
	// ErrDuplicateUser is returned when a user ID or email is already registered.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrUserNotFound is returned when a user ID is not registered.
	ErrUserNotFound = errors.New("user not found")
)

// Repository exposes the typed values of the key space.
type Repository struct {
	acc *Accessor
}

// NewRepository creates a Repository.
func NewRepository(acc *Accessor) *Repository {
	return &Repository{acc: acc}
}

// SessionUser returns the logged-in user, or nil when nobody is logged in.
func (r *Repository) SessionUser(ctx context.Context) (*model.User, error) {
	var u model.User
	found, err := r.acc.GetJSON(ctx, SessionUserKey, &u)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

// SetSessionUser overwrites the session record. The password is never stored there.
func (r *Repository) SetSessionUser(ctx context.Context, u model.User) error {
	return r.acc.SetJSON(ctx, SessionUserKey, u.Public())
}

// ClearSessionUser removes the session record.
func (r *Repository) ClearSessionUser(ctx context.Context) error {
	return r.acc.Remove(ctx, SessionUserKey)
}

// Users returns every registered user. An absent collection is empty.
func (r *Repository) Users(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if _, err := r.acc.GetJSON(ctx, UsersKey, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// FindUserByEmail looks a user up by email, ignoring case.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (model.User, bool, error) {
	users, err := r.Users(ctx)
	if err != nil {
		return model.User{}, false, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, true, nil
		}
	}
	return model.User{}, false, nil
}

// AddUser appends u to the registered users. IDs and emails must be unique.
func (r *Repository) AddUser(ctx context.Context, u model.User) error {
	_, err := Update(ctx, r.acc, UsersKey, func(users []model.User) ([]model.User, error) {
		for _, existing := range users {
			if existing.ID == u.ID {
				return nil, fmt.Errorf("%w: id %s", ErrDuplicateUser, u.ID)
			}
			if strings.EqualFold(existing.Email, u.Email) {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateUser, u.Email)
			}
		}
		return append(users, u), nil
	})
	return err
}

// ReplaceUser overwrites the registered user with the same ID.
func (r *Repository) ReplaceUser(ctx context.Context, u model.User) error {
	_, err := Update(ctx, r.acc, UsersKey, func(users []model.User) ([]model.User, error) {
		for i := range users {
			if users[i].ID == u.ID {
				users[i] = u
				return users, nil
			}
		}
		return nil, fmt.Errorf("%w: id %s", ErrUserNotFound, u.ID)
	})
	return err
}

// RemoveUser deletes the registered user with the given ID. Removing an
// unknown ID is not an error.
func (r *Repository) RemoveUser(ctx context.Context, userID string) error {
	_, err := Update(ctx, r.acc, UsersKey, func(users []model.User) ([]model.User, error) {
		kept := make([]model.User, 0, len(users))
		for _, u := range users {
			if u.ID != userID {
				kept = append(kept, u)
			}
		}
		if len(kept) == len(users) {
			return nil, ErrNoChange
		}
		return kept, nil
	})
	return err
}

// Transactions returns the list owned by userID. An absent list is empty.
func (r *Repository) Transactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	var txs []model.Transaction
	if _, err := r.acc.GetJSON(ctx, TransactionsKey(userID), &txs); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	return txs, nil
}

// AppendTransaction adds tx to the end of the user's list and returns the new list.
func (r *Repository) AppendTransaction(ctx context.Context, userID string, tx model.Transaction) ([]model.Transaction, error) {
	return r.UpdateTransactions(ctx, userID, func(txs []model.Transaction) ([]model.Transaction, error) {
		return append(txs, tx), nil
	})
}

// DeleteTransaction removes the transaction with id txID. Deleting an
// unknown ID leaves the stored list untouched and reports removed=false.
func (r *Repository) DeleteTransaction(ctx context.Context, userID, txID string) (bool, []model.Transaction, error) {
	removed := false
	txs, err := r.UpdateTransactions(ctx, userID, func(txs []model.Transaction) ([]model.Transaction, error) {
		kept := make([]model.Transaction, 0, len(txs))
		for _, t := range txs {
			if t.ID == txID {
				removed = true
				continue
			}
			kept = append(kept, t)
		}
		if !removed {
			return nil, ErrNoChange
		}
		return kept, nil
	})
	return removed, txs, err
}

// UpdateTransactions runs fn as a locked read-modify-write of the user's list.
func (r *Repository) UpdateTransactions(ctx context.Context, userID string, fn func([]model.Transaction) ([]model.Transaction, error)) ([]model.Transaction, error) {
	txs, err := Update(ctx, r.acc, TransactionsKey(userID), fn)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	return txs, nil
}
