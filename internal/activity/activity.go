// Package activity keeps an append-only CSV log of the mutating actions users
// perform. It lives at logs/activity.csv inside the data home.
package activity

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/monedero-app/monedero/internal/logging"
)

// Action names a logged operation.
type Action string

const (
	ActionRegister Action = "register"
	ActionLogin    Action = "login"
	ActionLogout   Action = "logout"
	ActionAdd      Action = "add"
	ActionDelete   Action = "delete"
	ActionImport   Action = "import"
	ActionSeed     Action = "seed"
)

// Entry is one row of the activity log.
type Entry struct {
	Timestamp time.Time
	UserID    string
	Action    Action
	Details   string
	TxID      string
}

// Header is the CSV header of activity.csv.
const Header = "timestamp,user_id,action,details,tx_id"

const (
	numFields  = 5
	logDir     = "logs"
	logFile    = "activity.csv"
	colTime    = 0
	colUserID  = 1
	colAction  = 2
	colDetails = 3
	colTxID    = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colUserID] = e.UserID
	row[colAction] = string(e.Action)
	row[colDetails] = e.Details
	row[colTxID] = e.TxID
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}
	return Entry{
		Timestamp: ts,
		UserID:    record[colUserID],
		Action:    Action(record[colAction]),
		Details:   record[colDetails],
		TxID:      record[colTxID],
	}, nil
}

// Log appends to and reads the activity file under a data home.
type Log struct {
	home   string
	clock  func() time.Time
	logger *slog.Logger
}

// New creates a Log rooted at home. A nil clock means time.Now.
func New(home string, clock func() time.Time, logger *slog.Logger) *Log {
	if clock == nil {
		clock = time.Now
	}
	return &Log{home: home, clock: clock, logger: logging.WithComponent(logger, logging.ComponentActivity)}
}

// Path returns the location of the CSV file.
func (l *Log) Path() string {
	return filepath.Join(l.home, logDir, logFile)
}

// Append writes entries, creating the file and header if needed.
func (l *Log) Append(entries ...Entry) error {
	if err := os.MkdirAll(filepath.Join(l.home, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := l.Path()
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Record appends one entry stamped with the current time. A failure is
// logged as a warning and otherwise ignored.
func (l *Log) Record(ctx context.Context, userID string, action Action, details, txID string) {
	err := l.Append(Entry{
		Timestamp: l.clock(),
		UserID:    userID,
		Action:    action,
		Details:   details,
		TxID:      txID,
	})
	if err != nil {
		l.logger.WarnContext(ctx, "recording activity failed", "action", action, logging.FieldError, err)
	}
}

// Read returns every entry, oldest first. A missing file yields no entries.
func (l *Log) Read() ([]Entry, error) {
	f, err := os.Open(l.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

// ForUser returns the entries recorded for userID.
func (l *Log) ForUser(userID string) ([]Entry, error) {
	all, err := l.Read()
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range all {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
