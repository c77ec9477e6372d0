// Package session owns the logged-in user. The server keeps the real session
// in a cookie; this package only mirrors username and balance for display.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rovshanmuradov/paper-trader/internal/api"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	loginFailedMessage    = "Login failed. Please try again."
	registerFailedMessage = "Registration failed. Please try again."

	// unknownUsername is shown when the session was restored from a cookie;
	// GET /portfolio does not report who is logged in.
	unknownUsername = "trader"
)

// Backend is the part of the API client the session needs.
type Backend interface {
	CheckSession(ctx context.Context) (*api.Portfolio, error)
	Login(ctx context.Context, username, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, username, password string) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
}

// User is the in-memory view of the logged-in account.
type User struct {
	Username string
	Balance  decimal.Decimal
}

// Failure is an authentication failure with a message fit for the user.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }
func (f *Failure) Unwrap() error { return f.Err }

// Manager tracks the current user. Safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	backend Backend
	current *User
	logger  *zap.Logger
}

// NewManager creates a manager with no user.
func NewManager(backend Backend, logger *zap.Logger) *Manager {
	return &Manager{
		backend: backend,
		logger:  logger.Named("session"),
	}
}

// Restore checks once for an existing server session. It reports true when
// the check succeeds and, unless a user is already logged in, sets a user with
// an unknown username. Failures are silent and never retried.
func (m *Manager) Restore(ctx context.Context) bool {
	portfolio, err := m.backend.CheckSession(ctx)
	if err != nil {
		m.logger.Debug("No existing session", zap.Error(err))
		return false
	}

	m.mu.Lock()
	if m.current == nil {
		m.current = &User{Balance: portfolio.Balance}
	}
	m.mu.Unlock()

	m.logger.Info("Session restored", zap.String("balance", portfolio.Balance.StringFixed(2)))
	return true
}

// Login authenticates and replaces the current user on success.
func (m *Manager) Login(ctx context.Context, username, password string) (User, error) {
	resp, err := m.backend.Login(ctx, username, password)
	return m.complete("login", loginFailedMessage, username, resp, err)
}

// Register creates an account and replaces the current user on success.
func (m *Manager) Register(ctx context.Context, username, password string) (User, error) {
	resp, err := m.backend.Register(ctx, username, password)
	return m.complete("register", registerFailedMessage, username, resp, err)
}

func (m *Manager) complete(op, genericMessage, username string, resp *api.AuthResponse, err error) (User, error) {
	if err != nil {
		m.logger.Warn("Authentication request failed",
			zap.String("op", op),
			zap.String("username", username),
			zap.Error(err))
		return User{}, &Failure{Message: genericMessage, Err: err}
	}

	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = genericMessage
		}
		m.logger.Info("Authentication rejected",
			zap.String("op", op),
			zap.String("username", username),
			zap.String("reason", resp.Error))
		return User{}, &Failure{Message: msg}
	}

	if resp.User == nil {
		m.logger.Warn("Authentication response without user", zap.String("op", op))
		return User{}, &Failure{Message: genericMessage, Err: api.ErrDecode}
	}

	user := User{Username: resp.User.Username, Balance: resp.User.Balance}
	m.mu.Lock()
	m.current = &user
	m.mu.Unlock()

	m.logger.Info("Authenticated", zap.String("op", op), zap.String("username", user.Username))
	return user, nil
}

// Logout ends the session. The local user is cleared even when the request
// fails; the error is returned only for logging.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.backend.Logout(ctx)
	if err != nil {
		m.logger.Warn("Logout request failed", zap.Error(err))
	}

	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	return err
}

// Current returns a copy of the current user.
func (m *Manager) Current() (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return User{}, false
	}
	return *m.current, true
}

// LoggedIn reports whether a user is present.
func (m *Manager) LoggedIn() bool {
	_, ok := m.Current()
	return ok
}

// SetBalance updates the balance of the current user, if any.
func (m *Manager) SetBalance(balance decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Balance = balance
	}
}

// WelcomeText is the header greeting for u.
func WelcomeText(u User) string {
	name := u.Username
	if name == "" {
		name = unknownUsername
	}
	return "Welcome, " + name + "!"
}

// BalanceText formats the balance line for u.
func BalanceText(u User) string {
	return "Balance: $" + u.Balance.StringFixed(2)
}

// IsFailure reports whether err is a user-facing authentication failure and
// returns its message.
func IsFailure(err error) (string, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Message, true
	}
	return "", false
}
