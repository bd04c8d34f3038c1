package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/monedero-app/monedero/internal/model"
)

// Problem is a stored value that cannot be used as is.
type Problem struct {
	Key string
	Err error
}

// CheckReport is the result of Check.
type CheckReport struct {
	Checked  int
	Problems []Problem
}

// Check decodes every value of the key space and validates stored
// transactions. Keys outside the key space are ignored. Only a failure to
// reach the store is returned as an error; bad values become problems.
func (r *Repository) Check(ctx context.Context) (CheckReport, error) {
	keys, err := r.acc.Keys(ctx)
	if err != nil {
		return CheckReport{}, err
	}

	var report CheckReport
	for _, key := range keys {
		var problems []Problem
		switch {
		case key == SessionUserKey:
			var u model.User
			_, err = r.acc.GetJSON(ctx, key, &u)
		case key == UsersKey:
			var users []model.User
			_, err = r.acc.GetJSON(ctx, key, &users)
		case strings.HasPrefix(key, transactionsPrefix):
			var txs []model.Transaction
			_, err = r.acc.GetJSON(ctx, key, &txs)
			for i, tx := range txs {
				if verr := tx.Validate(); verr != nil {
					problems = append(problems, Problem{Key: key, Err: fmt.Errorf("transaction %d (id %s): %w", i+1, tx.ID, verr)})
				}
			}
		default:
			continue
		}

		if errors.Is(err, ErrStorage) {
			return CheckReport{}, err
		}
		if err != nil {
			problems = append(problems, Problem{Key: key, Err: err})
		}
		report.Checked++
		report.Problems = append(report.Problems, problems...)
	}
	return report, nil
}
