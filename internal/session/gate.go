// Package session tracks who is logged in. The Gate reads the stored session
// user once, then moves between Authenticated and Unauthenticated as users
// register, log in and log out.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/monedero-app/monedero/internal/auth"
	"github.com/monedero-app/monedero/internal/id"
	"github.com/monedero-app/monedero/internal/logging"
	"github.com/monedero-app/monedero/internal/model"
	"github.com/monedero-app/monedero/internal/storage"
)

var (
	// ErrUnresolved is returned when the gate is used before Resolve.
	ErrUnresolved = errors.New("session not resolved yet")
	// ErrNotAuthenticated is returned when an operation needs a logged-in user.
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrLoginAfterRegister is returned when a user was registered but the
	// session could not be stored and the registration could not be undone.
	ErrLoginAfterRegister = errors.New("registered but not logged in")
)

// State is the gate's position in the session lifecycle.
type State int

const (
	Unresolved State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unresolved"
	}
}

// Session identifies the logged-in user for per-user operations.
type Session struct {
	User model.User
}

// UserID returns the owner of the session.
func (s Session) UserID() string {
	return s.User.ID
}

// Gate is the session state machine.
type Gate struct {
	repo   *storage.Repository
	ids    *id.Generator
	clock  func() time.Time
	logger *slog.Logger

	mu    sync.Mutex
	state State
	user  model.User
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) Option {
	return func(g *Gate) { g.clock = clock }
}

// WithIDs overrides the user ID generator.
func WithIDs(ids *id.Generator) Option {
	return func(g *Gate) { g.ids = ids }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

// NewGate creates a Gate in the Unresolved state.
func NewGate(repo *storage.Repository, opts ...Option) *Gate {
	g := &Gate{
		repo:  repo,
		ids:   id.NewGenerator(),
		clock: time.Now,
		state: Unresolved,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logging.WithComponent(g.logger, logging.ComponentSession)
	return g
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Resolve reads the stored session user. A read failure leaves the gate
// Unauthenticated and returns the error so the caller can show a notice.
func (g *Gate) Resolve(ctx context.Context) (State, error) {
	u, err := g.repo.SessionUser(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()

	if err != nil {
		g.logger.WarnContext(ctx, "reading session user failed", logging.FieldError, err)
		g.setLocked(Unauthenticated, model.User{})
		return g.state, fmt.Errorf("resolving session: %w", err)
	}
	if u == nil {
		g.setLocked(Unauthenticated, model.User{})
		return g.state, nil
	}
	g.setLocked(Authenticated, *u)
	return g.state, nil
}

// Current returns the active session.
func (g *Gate) Current() (Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case Unresolved:
		return Session{}, ErrUnresolved
	case Unauthenticated:
		return Session{}, ErrNotAuthenticated
	}
	return Session{User: g.user}, nil
}

// Register validates params, stores the new user with a hashed password and
// logs them in. Validation happens before any storage call.
func (g *Gate) Register(ctx context.Context, params model.RegisterParams) (Session, error) {
	if err := g.requireResolved(); err != nil {
		return Session{}, err
	}
	if err := params.Validate(); err != nil {
		return Session{}, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return Session{}, err
	}

	u := model.User{
		ID:        g.ids.Next(g.clock()),
		Email:     strings.TrimSpace(params.Email),
		Password:  hash,
		BirthDate: params.BirthDate,
		Status:    params.Status,
		Name:      strings.TrimSpace(params.Name),
	}
	if err := g.repo.AddUser(ctx, u); err != nil {
		return Session{}, fmt.Errorf("registering %s: %w", u.Email, err)
	}
	if err := g.repo.SetSessionUser(ctx, u); err != nil {
		return Session{}, g.undoRegister(ctx, u, err)
	}

	g.logger.InfoContext(ctx, "user registered", logging.FieldUserID, u.ID)
	return g.set(Authenticated, u.Public()), nil
}

// Login checks the credentials and starts a session. Logging in while another
// user is authenticated switches to the new user. A mismatch returns
// auth.ErrInvalidCredentials and changes nothing.
func (g *Gate) Login(ctx context.Context, email, password string) (Session, error) {
	if err := g.requireResolved(); err != nil {
		return Session{}, err
	}

	u, found, err := g.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return Session{}, fmt.Errorf("looking up user: %w", err)
	}
	if !found {
		return Session{}, auth.ErrInvalidCredentials
	}

	needsRehash, err := auth.CheckPassword(u.Password, password)
	if err != nil {
		return Session{}, err
	}

	if needsRehash {
		g.upgradePassword(ctx, u, password)
	}

	if err := g.repo.SetSessionUser(ctx, u); err != nil {
		return Session{}, fmt.Errorf("starting session: %w", err)
	}

	g.logger.InfoContext(ctx, "user logged in", logging.FieldUserID, u.ID)
	return g.set(Authenticated, u.Public()), nil
}

// Logout clears the stored session user.
func (g *Gate) Logout(ctx context.Context) error {
	if err := g.requireResolved(); err != nil {
		return err
	}
	if err := g.repo.ClearSessionUser(ctx); err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	g.set(Unauthenticated, model.User{})
	return nil
}

// undoRegister removes a user whose session could not be stored, so that the
// registration either fully happens or leaves no trace. If the removal fails
// too, the user stays registered and ErrLoginAfterRegister is returned.
func (g *Gate) undoRegister(ctx context.Context, u model.User, cause error) error {
	rbErr := g.repo.RemoveUser(ctx, u.ID)
	if rbErr == nil {
		return fmt.Errorf("starting session: %w", cause)
	}
	g.logger.WarnContext(ctx, "undoing registration failed", logging.FieldUserID, u.ID, logging.FieldError, rbErr)
	return fmt.Errorf("%w: %w", ErrLoginAfterRegister, cause)
}

// upgradePassword replaces a plaintext password with its hash. Failure is
// logged; the login itself still succeeds.
func (g *Gate) upgradePassword(ctx context.Context, u model.User, plain string) {
	hash, err := auth.HashPassword(plain)
	if err == nil {
		u.Password = hash
		err = g.repo.ReplaceUser(ctx, u)
	}
	if err != nil {
		g.logger.WarnContext(ctx, "rehashing legacy password failed", logging.FieldUserID, u.ID, logging.FieldError, err)
		return
	}
	g.logger.InfoContext(ctx, "legacy password rehashed", logging.FieldUserID, u.ID)
}

func (g *Gate) requireResolved() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Unresolved {
		return ErrUnresolved
	}
	return nil
}

func (g *Gate) set(state State, u model.User) Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setLocked(state, u)
	return Session{User: g.user}
}

func (g *Gate) setLocked(state State, u model.User) {
	g.state = state
	g.user = u.Public()
}
