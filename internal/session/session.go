// Package session implements the client-side credential store: in-memory
// session state persisted between runs, a one-way hydration gate, and
// change notification for interested consumers.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spellbook-cards/spellbook-go/internal/model"
)

// Snapshot is an immutable copy of the session at one point in time.
type Snapshot struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry
	User         *model.User
	Hydrated     bool
}

// Store is the single source of truth for session credentials. It is safe for
// concurrent use. Mutations update memory synchronously; the durable write is
// best-effort and never fails the mutation (errors are logged only).
type Store struct {
	persister Persister
	log       *zap.Logger

	// hydrateMu serializes Hydrate so the persister is loaded at most once,
	// without holding mu across the disk read.
	hydrateMu sync.Mutex

	mu       sync.Mutex
	access   string
	refresh  string
	expires  time.Time
	user     *model.User
	hydrated bool
	subs     []func(Snapshot)
}

// NewStore constructs a Store backed by the given persister. A nil persister
// yields a purely in-memory session (useful for tests).
func NewStore(p Persister, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{persister: p, log: log}
}

// SetTokens replaces the access/refresh token fields. A nil pair clears both.
// The refresh token is kept unchanged when the pair carries none, so a
// non-rotating refresh response does not drop the stored refresh token.
func (s *Store) SetTokens(t *model.TokenPair) {
	s.mu.Lock()
	if t == nil {
		s.access, s.refresh, s.expires = "", "", time.Time{}
	} else {
		s.access = t.AccessToken
		s.expires = t.ExpiresAt
		if t.RefreshToken != "" {
			s.refresh = t.RefreshToken
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snap)
	s.notify(snap)
}

// SetUser replaces the cached profile. Tokens are not affected.
func (s *Store) SetUser(u *model.User) {
	s.mu.Lock()
	s.user = cloneUser(u)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snap)
	s.notify(snap)
}

// Logout clears all session fields and removes persisted state. Idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	s.access, s.refresh, s.expires, s.user = "", "", time.Time{}, nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Clear(context.Background()); err != nil {
			s.log.Warn("clear persisted session", zap.Error(err))
		}
	}
	s.notify(snap)
}

// AccessToken returns the current bearer credential, empty when signed out.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

// RefreshToken returns the stored refresh credential, empty when absent.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

// User returns the cached profile, nil when none is cached. Callers deciding
// auth state must go through AuthState: a cached profile without an access
// token does not constitute a valid session.
func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneUser(s.user)
}

// Snapshot returns a copy of the full session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to run after every session mutation, including the
// hydration transition. Subscribers run synchronously on the mutating call.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		AccessToken:  s.access,
		RefreshToken: s.refresh,
		ExpiresAt:    s.expires,
		User:         cloneUser(s.user),
		Hydrated:     s.hydrated,
	}
}

func (s *Store) persist(snap Snapshot) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(context.Background(), snap); err != nil {
		s.log.Warn("persist session", zap.Error(err))
	}
}

func (s *Store) notify(snap Snapshot) {
	s.mu.Lock()
	subs := make([]func(Snapshot), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func cloneUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
