package auth

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"reqcheck/internal/infrastructure"
)

var (
	// ErrGateDisabled is returned when no password hash is configured.
	ErrGateDisabled = errors.New("access password is not configured")
	// ErrInvalidPassword is returned for a wrong password.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrThrottled is returned when a client exceeded its login attempts.
	ErrThrottled = errors.New("too many login attempts")
)

// Gate checks the shared access password.
type Gate struct {
	hash     []byte
	throttle *Throttle
	logger   *slog.Logger
}

// NewGate creates a gate for the given bcrypt hash. An empty hash yields a
// gate that rejects every login with ErrGateDisabled.
func NewGate(hash string, throttle *Throttle, logger *slog.Logger) (*Gate, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("invalid password hash: %w", err)
		}
	}
	if throttle == nil {
		throttle = NewThrottle(DefaultLoginRate, DefaultLoginBurst)
	}
	return &Gate{
		hash:     []byte(hash),
		throttle: throttle,
		logger:   infrastructure.WithComponent(logger, "auth_gate"),
	}, nil
}

// Enabled reports whether a password is configured.
func (g *Gate) Enabled() bool {
	return len(g.hash) > 0
}

// Check verifies password for the named client. Throttling is applied before
// the comparison so a blocked client cannot keep probing.
func (g *Gate) Check(client, password string) error {
	if !g.Enabled() {
		return ErrGateDisabled
	}
	if !g.throttle.Allow(client) {
		g.logger.Warn("Login throttled", slog.String("client", client))
		return ErrThrottled
	}

	err := bcrypt.CompareHashAndPassword(g.hash, []byte(password))
	switch {
	case err == nil:
		g.throttle.Reset(client)
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		g.logger.Warn("Login failed", slog.String("client", client))
		return ErrInvalidPassword
	default:
		return fmt.Errorf("failed to compare password: %w", err)
	}
}

// HashPassword returns the bcrypt hash to store in configuration.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
