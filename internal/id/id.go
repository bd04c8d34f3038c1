package id

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Format returns the millisecond timestamp ID for t, e.g. "1735689600000".
func Format(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// Parse recovers the creation instant encoded in an ID.
func Parse(id string) (time.Time, error) {
	ms, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ID %q: %w", id, err)
	}
	if ms < 0 {
		return time.Time{}, fmt.Errorf("invalid ID %q: negative timestamp", id)
	}
	return time.UnixMilli(ms).UTC(), nil
}

// Generator hands out timestamp IDs that are strictly increasing within the
// process. Two calls in the same millisecond get consecutive values.
type Generator struct {
	mu   sync.Mutex
	last int64
}

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Next returns the ID for now, bumped past the previous one if needed.
func (g *Generator) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return Format(time.UnixMilli(ms))
}
