// Package session holds the client-side authentication state.
//
// The Store is read by the route guard and the views and written only by
// the auth service and the session watcher.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
	"github.com/aryan0dhankhar/reviewdesk/internal/observability/metrics"
	"github.com/aryan0dhankhar/reviewdesk/internal/security/auth"
)

// Store caches the authentication flag and the current user, backed by durable storage
type Store struct {
	storage domain.LocalStorage
	logger  *slog.Logger
	now     func() time.Time

	mu            sync.RWMutex
	authenticated bool
	token         string
	user          *domain.UserInfo
	subs          map[int]chan bool
	nextSub       int
}

// Option customises a Store
type Option func(*Store)

// WithClock overrides the time source used for expiry checks
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store and initialises the flag from durable storage
func New(ctx context.Context, storage domain.LocalStorage, logger *slog.Logger, opts ...Option) (*Store, error) {
	if storage == nil {
		return nil, errors.New("session storage required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		storage: storage,
		logger:  logger,
		now:     time.Now,
		subs:    make(map[int]chan bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// IsAuthenticated reports the last checked state. It never touches storage.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// SetAuthenticated flips the flag and notifies subscribers on change
func (s *Store) SetAuthenticated(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(v)
}

// CurrentUser returns the cached identity, if any
func (s *Store) CurrentUser() (*domain.UserInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, false
	}
	u := *s.user
	return &u, true
}

// Token returns the cached bearer token or ""
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Snapshot returns a copy of the whole session
func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := domain.Session{Authenticated: s.authenticated, Token: s.token}
	if s.user != nil {
		u := *s.user
		out.User = &u
	}
	return out
}

// Subscribe returns a channel carrying the flag. The current value is
// delivered immediately; a slow reader only ever sees the latest value.
func (s *Store) Subscribe() (<-chan bool, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan bool, 1)
	ch <- s.authenticated
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Persist writes token and user to durable storage and caches them.
// It does not flip the flag. On failure the previously stored entries are
// put back and the cache is untouched.
func (s *Store) Persist(ctx context.Context, token string, user domain.UserInfo) error {
	if token == "" {
		return errors.New("token required")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	prevUser, err := s.saved(ctx, domain.StorageKeyUser)
	if err != nil {
		return err
	}
	prevToken, err := s.saved(ctx, domain.StorageKeyToken)
	if err != nil {
		return err
	}

	// user first: a stored token is what marks the session as present
	if err := s.storage.SetItem(ctx, domain.StorageKeyUser, string(data)); err != nil {
		s.restore(ctx, prevUser)
		return fmt.Errorf("failed to persist user: %w", err)
	}
	if err := s.storage.SetItem(ctx, domain.StorageKeyToken, token); err != nil {
		s.restore(ctx, prevToken)
		s.restore(ctx, prevUser)
		return fmt.Errorf("failed to persist token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &user
	return nil
}

type savedItem struct {
	key   string
	value string
	ok    bool
}

func (s *Store) saved(ctx context.Context, key string) (savedItem, error) {
	value, ok, err := s.storage.GetItem(ctx, key)
	if err != nil {
		return savedItem{}, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return savedItem{key: key, value: value, ok: ok}, nil
}

func (s *Store) restore(ctx context.Context, item savedItem) {
	var err error
	if item.ok {
		err = s.storage.SetItem(ctx, item.key, item.value)
	} else {
		err = s.storage.RemoveItem(ctx, item.key)
	}
	if err != nil {
		s.logger.Warn("failed to restore session entry",
			slog.String("key", item.key),
			slog.String("error", err.Error()),
		)
	}
}

// Clear removes both entries from durable storage and drops the cache.
// Both removals are attempted even if the first fails.
func (s *Store) Clear(ctx context.Context) error {
	errToken := s.storage.RemoveItem(ctx, domain.StorageKeyToken)
	errUser := s.storage.RemoveItem(ctx, domain.StorageKeyUser)

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := errors.Join(errToken, errUser); err != nil {
		return fmt.Errorf("failed to clear session storage: %w", err)
	}
	return nil
}

// Refresh re-reads durable storage. A missing token or an expired JWT leaves
// the store unauthenticated; expired entries are removed.
func (s *Store) Refresh(ctx context.Context) (bool, error) {
	token, ok, err := s.storage.GetItem(ctx, domain.StorageKeyToken)
	if err != nil {
		return false, fmt.Errorf("failed to read session token: %w", err)
	}
	if !ok || token == "" {
		s.reset()
		return false, nil
	}

	if s.expired(token) {
		s.logger.Info("stored session expired, clearing")
		if err := s.Clear(ctx); err != nil {
			return false, err
		}
		s.SetAuthenticated(false)
		return false, nil
	}

	user := s.readUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	s.setLocked(true)
	return true, nil
}

// ExpiresAt reports the expiry of the cached token when it is a JWT with an exp claim
func (s *Store) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	exp, ok, err := auth.InspectExpiry(token)
	if err != nil || !ok {
		return time.Time{}, false
	}
	return exp, true
}

func (s *Store) expired(token string) bool {
	exp, ok, err := auth.InspectExpiry(token)
	if err != nil {
		if !errors.Is(err, auth.ErrNotJWT) {
			s.logger.Warn("failed to inspect session token", slog.String("error", err.Error()))
		}
		// opaque tokens are trusted while present
		return false
	}
	return ok && !s.now().Before(exp)
}

func (s *Store) readUser(ctx context.Context) *domain.UserInfo {
	raw, ok, err := s.storage.GetItem(ctx, domain.StorageKeyUser)
	if err != nil {
		s.logger.Warn("failed to read cached user", slog.String("error", err.Error()))
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	var user domain.UserInfo
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("cached user is corrupt", slog.String("error", err.Error()))
		return nil
	}
	return &user
}

func (s *Store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.setLocked(false)
}

func (s *Store) setLocked(v bool) {
	metrics.SetAuthenticated(v)
	if s.authenticated == v {
		return
	}
	s.authenticated = v
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}
