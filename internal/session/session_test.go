package session

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/spellbook-cards/spellbook-go/internal/model"
)

func testUser() *model.User {
	id, _ := uuid.NewV4()
	return &model.User{ID: id, Username: "gandalf", Email: "g@shire.example"}
}

func signedInStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(nil, nil)
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	s.SetTokens(&model.TokenPair{AccessToken: "acc", RefreshToken: "ref", ExpiresAt: time.Now().Add(15 * time.Minute)})
	s.SetUser(testUser())
	return s
}

func Test_SetTokens_Replace(t *testing.T) {
	s := signedInStore(t)

	s.SetTokens(&model.TokenPair{AccessToken: "acc2", RefreshToken: "ref2"})
	if s.AccessToken() != "acc2" || s.RefreshToken() != "ref2" {
		t.Fatalf("tokens not replaced: access=%q refresh=%q", s.AccessToken(), s.RefreshToken())
	}
}

func Test_SetTokens_KeepsRefreshWhenNotRotated(t *testing.T) {
	s := signedInStore(t)

	s.SetTokens(&model.TokenPair{AccessToken: "acc2"})
	if s.RefreshToken() != "ref" {
		t.Fatalf("refresh token dropped on non-rotating update: %q", s.RefreshToken())
	}
}

func Test_SetTokens_NilClears(t *testing.T) {
	s := signedInStore(t)

	s.SetTokens(nil)
	if s.AccessToken() != "" || s.RefreshToken() != "" {
		t.Fatalf("nil pair must clear both tokens")
	}
}

func Test_Logout_Idempotent(t *testing.T) {
	s := signedInStore(t)

	s.Logout()
	s.Logout()

	if s.AccessToken() != "" || s.RefreshToken() != "" || s.User() != nil {
		t.Fatalf("logout left state behind")
	}
	if s.AuthState() != AuthAnonymous {
		t.Fatalf("AuthState=%v, want anonymous", s.AuthState())
	}
}

func Test_User_ReturnsCopy(t *testing.T) {
	s := signedInStore(t)

	u := s.User()
	u.Username = "saruman"
	if s.User().Username != "gandalf" {
		t.Fatalf("mutating the returned user leaked into the store")
	}
}

func Test_UserWithoutToken_IsAnonymous(t *testing.T) {
	s := NewStore(nil, nil)
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	s.SetUser(testUser())

	if s.AuthState() != AuthAnonymous {
		t.Fatalf("cached user without token must read anonymous, got %v", s.AuthState())
	}
	if s.IsAuthenticated() {
		t.Fatalf("IsAuthenticated true without access token")
	}
}

func Test_Subscribe_NotifiedOnMutations(t *testing.T) {
	s := NewStore(nil, nil)
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	var got []Snapshot
	s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	s.SetTokens(&model.TokenPair{AccessToken: "acc"})
	s.SetUser(testUser())
	s.Logout()

	if len(got) != 3 {
		t.Fatalf("subscriber called %d times, want 3", len(got))
	}
	if got[0].AccessToken != "acc" {
		t.Fatalf("first notification missing token")
	}
	if got[2].AccessToken != "" || got[2].User != nil {
		t.Fatalf("logout notification not cleared")
	}
}
