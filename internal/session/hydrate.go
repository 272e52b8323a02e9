package session

import (
	"context"
	"fmt"
)

// AuthState is the three-valued answer to "is the user signed in".
// AuthUnknown means the persisted session has not been loaded yet; consumers
// must branch into a neutral waiting path, never the signed-out path.
type AuthState int

const (
	AuthUnknown AuthState = iota
	AuthAnonymous
	AuthSignedIn
)

func (a AuthState) String() string {
	switch a {
	case AuthAnonymous:
		return "anonymous"
	case AuthSignedIn:
		return "signed-in"
	default:
		return "unknown"
	}
}

// Hydrate loads the persisted snapshot into memory. It runs at most once per
// Store: the hydrated flag flips false->true exactly once and never reverts,
// so repeat calls are no-ops. A load failure still completes hydration (the
// session is then anonymous) and the error is reported for logging.
func (s *Store) Hydrate(ctx context.Context) error {
	s.hydrateMu.Lock()
	defer s.hydrateMu.Unlock()

	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	var (
		snap Snapshot
		err  error
	)
	if s.persister != nil {
		snap, err = s.persister.Load(ctx)
	}

	s.mu.Lock()
	if err == nil {
		s.access = snap.AccessToken
		s.refresh = snap.RefreshToken
		s.expires = snap.ExpiresAt
		s.user = cloneUser(snap.User)
	}
	s.hydrated = true
	out := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(out)
	if err != nil {
		return fmt.Errorf("hydrate session: %w", err)
	}
	return nil
}

// Hydrated reports whether the persisted session has been loaded.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// AuthState derives the current auth state. Before hydration it is always
// AuthUnknown. A cached user without an access token reads as anonymous.
func (s *Store) AuthState() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.hydrated:
		return AuthUnknown
	case s.access == "":
		return AuthAnonymous
	default:
		return AuthSignedIn
	}
}

// IsAuthenticated reports a definite signed-in state: hydrated with an access
// token present. The profile may still be fetched lazily.
func (s *Store) IsAuthenticated() bool {
	return s.AuthState() == AuthSignedIn
}
