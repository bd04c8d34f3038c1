// Package logging builds the structured loggers used across monedero.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Field names shared by every component.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldUserID    = "user_id"
	FieldTxID      = "tx_id"
	FieldKey       = "key"
	FieldError     = "error"
)

// Component names.
const (
	ComponentApp      = "app"
	ComponentStorage  = "storage"
	ComponentSession  = "session"
	ComponentLedger   = "ledger"
	ComponentActivity = "activity"
)

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	Output io.Writer
}

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New creates a text logger. A nil Output discards everything.
func New(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		return Discard()
	}
	return slog.New(slog.NewTextHandler(cfg.Output, &slog.HandlerOptions{Level: cfg.Level}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// WithComponent tags logger with a component name. A nil logger yields Discard.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = Discard()
	}
	return logger.With(FieldComponent, component)
}
