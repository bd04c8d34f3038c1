// Package storage reads and writes the JSON values of the key space. Every
// write is a whole-value replacement; read-modify-write sequences on one key
// are serialized through a kv.Locker.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/monedero-app/monedero/internal/kv"
)

var (
	// ErrStorage wraps any failure of the underlying store.
	ErrStorage = errors.New("storage failure")
	// ErrCorrupt marks a stored value that is not valid JSON for its key.
	ErrCorrupt = errors.New("stored value is malformed")
	// ErrNoChange may be returned by an Update func to skip the write.
	ErrNoChange = errors.New("no change")
)

// Error carries the key and the sentinel kind of a failed operation.
type Error struct {
	Op   string
	Key  string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

// Is matches the sentinel kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Accessor encodes values as JSON over a kv.Store.
type Accessor struct {
	store kv.Store
	locks *kv.Locker
}

// NewAccessor creates an Accessor.
func NewAccessor(store kv.Store) *Accessor {
	return &Accessor{store: store, locks: kv.NewLocker()}
}

// GetJSON decodes the value of key into dst. found is false when the key is
// absent, in which case dst is untouched.
func (a *Accessor) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, found, err := a.store.Get(ctx, key)
	if err != nil {
		return false, &Error{Op: "get", Key: key, Kind: ErrStorage, Err: err}
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, &Error{Op: "decode", Key: key, Kind: ErrCorrupt, Err: err}
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func (a *Accessor) SetJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := a.store.Set(ctx, key, data); err != nil {
		return &Error{Op: "set", Key: key, Kind: ErrStorage, Err: err}
	}
	return nil
}

// Remove deletes key.
func (a *Accessor) Remove(ctx context.Context, key string) error {
	if err := a.store.Remove(ctx, key); err != nil {
		return &Error{Op: "remove", Key: key, Kind: ErrStorage, Err: err}
	}
	return nil
}

// Keys lists every stored key.
func (a *Accessor) Keys(ctx context.Context) ([]string, error) {
	keys, err := a.store.Keys(ctx)
	if err != nil {
		return nil, &Error{Op: "keys", Key: "*", Kind: ErrStorage, Err: err}
	}
	return keys, nil
}

// Update runs a read-modify-write of key while holding its lock. fn receives
// the current value (the zero value when absent) and returns the value to
// store. An error from fn aborts without writing; ErrNoChange does the same
// but returns the current value and no error.
func Update[T any](ctx context.Context, a *Accessor, key string, fn func(T) (T, error)) (T, error) {
	var zero T

	unlock, err := a.locks.Lock(ctx, key)
	if err != nil {
		return zero, &Error{Op: "lock", Key: key, Kind: ErrStorage, Err: err}
	}
	defer unlock()

	var cur T
	if _, err := a.GetJSON(ctx, key, &cur); err != nil {
		return zero, err
	}

	next, err := fn(cur)
	if errors.Is(err, ErrNoChange) {
		return cur, nil
	}
	if err != nil {
		return zero, err
	}

	if err := a.SetJSON(ctx, key, next); err != nil {
		return zero, err
	}
	return next, nil
}
