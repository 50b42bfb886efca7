// Package tokenstore owns the client's session state: the credential pair,
// the cached user, and the authenticated and loading flags.
//
// The store is the single writer of that state. Readers get deep copies
// from Snapshot. Every persist-worthy mutation writes the
// domain.PersistedSession projection to a storage engine; loading-flag
// changes never touch storage.
package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/wastewise/wastewise-go/internal/core/domain"
	"github.com/wastewise/wastewise-go/internal/storage"
	"github.com/wastewise/wastewise-go/internal/telemetry/logger"
)

// Store holds the session state behind a mutex.
type Store struct {
	mu     sync.RWMutex
	state  domain.SessionState
	engine storage.KVEngine
	key    []byte
	logger logger.Logger

	watchMu  sync.Mutex
	watchers map[uint64]func(domain.SessionState)
	nextID   uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithKey overrides the storage key (default domain.PersistKey).
func WithKey(key string) Option {
	return func(s *Store) { s.key = []byte(key) }
}

// New creates an empty store persisting into engine. A nil engine keeps
// the session in memory only.
func New(engine storage.KVEngine, opts ...Option) *Store {
	if engine == nil {
		engine = storage.NewMemoryEngine()
	}
	s := &Store{
		engine:   engine,
		key:      []byte(domain.PersistKey),
		logger:   logger.Default(),
		watchers: make(map[uint64]func(domain.SessionState)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "tokenstore")
	return s
}

// Load rehydrates the state from storage. A missing record leaves the
// store empty. An undecodable record, or one claiming authentication
// without an access token, is discarded. A record that cannot be opened
// (wrong passphrase) is left in place and reported.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.engine.Get(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
		return nil
	case errors.Is(err, storage.ErrDecryptionFailed), errors.Is(err, storage.ErrNotSealed):
		return domain.ErrSealFailed.WithCause(err)
	case err != nil:
		return fmt.Errorf("tokenstore: load: %w", err)
	}

	var rec domain.PersistedSession
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("discarding undecodable session record", "error", err)
		s.discard(ctx)
		return nil
	}

	state := rec.State()
	if !state.Valid() {
		s.logger.Warn("discarding session record without access token")
		s.discard(ctx)
		return nil
	}

	s.mu.Lock()
	state.IsLoading = s.state.IsLoading
	s.state = state
	s.mu.Unlock()

	s.logger.Debug("session restored", "authenticated", state.IsAuthenticated)
	s.broadcast()
	return nil
}

func (s *Store) discard(ctx context.Context) {
	if err := s.engine.Delete(ctx, s.key); err != nil {
		s.logger.Warn("failed to delete session record", "error", err)
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Credentials returns a copy of the current credentials, or nil.
func (s *Store) Credentials() *domain.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Credentials.Clone()
}

// AccessToken returns the access token, or "".
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Credentials == nil {
		return ""
	}
	return s.state.Credentials.Access
}

// RefreshToken returns the refresh token, or "".
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Credentials == nil {
		return ""
	}
	return s.state.Credentials.Refresh
}

// IsAuthenticated reports the authenticated flag.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated
}

// User returns a copy of the cached user, or nil.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

// SetCredentials replaces the credential pair wholesale and marks the
// session authenticated.
func (s *Store) SetCredentials(ctx context.Context, c *domain.Credentials) error {
	if !c.HasAccess() {
		return domain.ErrInvalidArgument.WithDetails("credentials without access token")
	}
	return s.mutate(ctx, func(st *domain.SessionState) {
		st.Credentials = c.Clone()
		st.IsAuthenticated = true
	})
}

// SetAccess swaps in a new access token and keeps the current refresh token.
func (s *Store) SetAccess(ctx context.Context, access string) error {
	if access == "" {
		return domain.ErrInvalidArgument.WithDetails("empty access token")
	}
	return s.mutate(ctx, func(st *domain.SessionState) {
		refresh := ""
		if st.Credentials != nil {
			refresh = st.Credentials.Refresh
		}
		st.Credentials = &domain.Credentials{Access: access, Refresh: refresh}
		st.IsAuthenticated = true
	})
}

// SetUser replaces the cached user record.
func (s *Store) SetUser(ctx context.Context, u *domain.User) error {
	return s.mutate(ctx, func(st *domain.SessionState) {
		if u == nil {
			st.User = nil
			return
		}
		cp := *u
		st.User = &cp
	})
}

// SetLoading flips the loading flag. Not persisted.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	changed := s.state.IsLoading != loading
	s.state.IsLoading = loading
	s.mu.Unlock()
	if changed {
		s.broadcast()
	}
}

// Clear drops user, credentials and the authenticated flag and erases the
// persisted record. The loading flag is left alone. Clearing an empty
// store is a no-op that still succeeds.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.state = domain.SessionState{IsLoading: s.state.IsLoading}
	s.mu.Unlock()

	s.broadcast()
	if err := s.engine.Delete(ctx, s.key); err != nil {
		return domain.ErrPersistFailed.WithCause(err)
	}
	return nil
}

// mutate applies fn under the lock and persists the projection.
func (s *Store) mutate(ctx context.Context, fn func(*domain.SessionState)) error {
	s.mu.Lock()
	fn(&s.state)
	rec := s.state.Persisted()
	s.mu.Unlock()

	s.broadcast()
	return s.persist(ctx, rec)
}

func (s *Store) persist(ctx context.Context, rec domain.PersistedSession) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return domain.ErrPersistFailed.WithCause(err)
	}
	if err := s.engine.Set(ctx, s.key, data); err != nil {
		s.logger.Error("failed to persist session", "error", err)
		return domain.ErrPersistFailed.WithCause(err)
	}
	return nil
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the mutating goroutine. The returned func unregisters it.
func (s *Store) Subscribe(fn func(domain.SessionState)) (unsubscribe func()) {
	s.watchMu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.watchMu.Unlock()

	return func() {
		s.watchMu.Lock()
		delete(s.watchers, id)
		s.watchMu.Unlock()
	}
}

func (s *Store) broadcast() {
	s.watchMu.Lock()
	if len(s.watchers) == 0 {
		s.watchMu.Unlock()
		return
	}
	fns := make([]func(domain.SessionState), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.watchMu.Unlock()

	snap := s.Snapshot()
	for _, fn := range fns {
		fn(snap.Clone())
	}
}

// Close closes the storage engine.
func (s *Store) Close() error {
	return s.engine.Close()
}
