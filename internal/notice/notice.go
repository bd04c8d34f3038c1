// Package notice turns results and errors into the short messages shown to
// the user. Nothing here is fatal.
package notice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/monedero-app/monedero/internal/auth"
	"github.com/monedero-app/monedero/internal/model"
	"github.com/monedero-app/monedero/internal/session"
	"github.com/monedero-app/monedero/internal/storage"
)

// Kind classifies a notice.
type Kind string

const (
	KindSuccess  Kind = "success"
	KindError    Kind = "error"
	KindRejected Kind = "rejected"
)

// Notice is a user-facing message.
type Notice struct {
	Kind    Kind
	Message string
	// Blocking is set when the requested action did not happen.
	Blocking bool
}

func (n Notice) String() string {
	return n.Message
}

// Success builds a success notice.
func Success(format string, args ...any) Notice {
	return Notice{Kind: KindSuccess, Message: fmt.Sprintf(format, args...)}
}

// StorageUnavailable is shown when stored data could not be read and empty
// defaults are displayed instead.
const StorageUnavailable = "storage unavailable, showing defaults"

// FromError maps err to a notice.
func FromError(err error) Notice {
	var verrs model.ValidationErrors
	switch {
	case err == nil:
		return Notice{}
	case errors.As(err, &verrs):
		return Notice{Kind: KindError, Message: "check these fields: " + strings.Join(verrs.Fields(), ", "), Blocking: true}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return Notice{Kind: KindRejected, Message: "invalid email or password", Blocking: true}
	case errors.Is(err, storage.ErrDuplicateUser):
		return Notice{Kind: KindRejected, Message: "that email is already registered", Blocking: true}
	case errors.Is(err, session.ErrLoginAfterRegister):
		return Notice{Kind: KindError, Message: "your account was created but you are not logged in; run login", Blocking: true}
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, session.ErrUnresolved):
		return Notice{Kind: KindRejected, Message: "log in first", Blocking: true}
	case errors.Is(err, storage.ErrCorrupt), errors.Is(err, storage.ErrStorage):
		return Notice{Kind: KindError, Message: StorageUnavailable}
	}
	return Notice{Kind: KindError, Message: err.Error(), Blocking: true}
}

// NothingSaved is shown when a write could not reach storage.
const NothingSaved = "storage unavailable, nothing was saved"

// FromWriteError is FromError for operations that change stored data: a
// storage failure means the change did not happen, so the notice blocks.
func FromWriteError(err error) Notice {
	n := FromError(err)
	if n.Message == StorageUnavailable {
		n.Message = NothingSaved
		n.Blocking = true
	}
	return n
}

// ReadFailed is shown when a command needs stored data it could not read.
const ReadFailed = "storage unavailable, could not read your data"

// FromReadError is FromError for commands that cannot fall back to defaults,
// such as export: a storage failure blocks without claiming a lost write.
func FromReadError(err error) Notice {
	n := FromError(err)
	if n.Message == StorageUnavailable {
		n.Message = ReadFailed
		n.Blocking = true
	}
	return n
}
