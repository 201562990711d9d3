package auth

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"reqcheck/internal/infrastructure"
	"reqcheck/internal/table"
	"reqcheck/pkg/contracts/domain"
)

var (
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned for sessions past their TTL.
	ErrSessionExpired = errors.New("session expired")
)

// Preferences are the per-session report settings.
type Preferences struct {
	ExportFormat string `json:"export_format"`
	ShowDebug    bool   `json:"show_debug"`
}

// StoredReport is the last report generated in a session together with the
// joined table it was computed from, kept for later exports.
type StoredReport struct {
	Report *domain.Report
	Joined *table.Table
}

// Session is a snapshot of one logged-in session.
type Session struct {
	ID          string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Preferences Preferences
	Report      *StoredReport
}

// Store keeps sessions in memory. Expired sessions are removed lazily.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	defaults Preferences
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore creates a session store whose sessions live for ttl and start with
// the given preferences.
func NewStore(ttl time.Duration, defaults Preferences, logger *slog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		defaults: defaults,
		logger:   infrastructure.WithComponent(logger, "session_store"),
		now:      time.Now,
	}
}

// Create opens a new session.
func (s *Store) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	sess := &Session{
		ID:          uuid.New().String(),
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
		Preferences: s.defaults,
	}
	s.sessions[sess.ID] = sess

	s.logger.Info("Session created", slog.Int("active", len(s.sessions)))
	return *sess
}

// Get returns the live session with the given id.
func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.live(id)
	if err != nil {
		return Session{}, err
	}
	return *sess, nil
}

// Delete ends a session. Unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// UpdatePreferences replaces the preferences of a live session.
func (s *Store) UpdatePreferences(id string, prefs Preferences) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.live(id)
	if err != nil {
		return Session{}, err
	}
	sess.Preferences = prefs
	return *sess, nil
}

// SetReport stores the last report of a live session, replacing any previous one.
func (s *Store) SetReport(id string, report *StoredReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.live(id)
	if err != nil {
		return err
	}
	sess.Report = report
	return nil
}

// Len returns the number of stored sessions, expired ones included until the
// next sweep.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// TTL returns the session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// live returns the session or an error when it is unknown or expired.
// Caller holds s.mu.
func (s *Store) live(id string) (*Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// sweep removes every expired session. Caller holds s.mu.
func (s *Store) sweep(now time.Time) {
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}
