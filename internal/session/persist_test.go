package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spellbook-cards/spellbook-go/internal/model"
)

func Test_DefaultDir_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got := DefaultDir()
	if got != filepath.Join(dir, "spellbook") {
		t.Fatalf("DefaultDir=%q", got)
	}
}

func Test_FileStore_Roundtrip(t *testing.T) {
	fs := NewFileStore(t.TempDir(), nil)
	ctx := context.Background()

	snap, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load on empty dir: %v", err)
	}
	if snap.AccessToken != "" || snap.RefreshToken != "" {
		t.Fatalf("empty store must yield zero snapshot")
	}

	in := Snapshot{
		AccessToken:  "acc",
		RefreshToken: "ref",
		ExpiresAt:    time.Now().Add(10 * time.Minute).UTC(),
		User:         testUser(),
	}
	if err := fs.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.AccessToken != "acc" || out.RefreshToken != "ref" {
		t.Fatalf("roundtrip lost tokens: %+v", out)
	}
	if out.User == nil || out.User.Username != "gandalf" {
		t.Fatalf("roundtrip lost user: %+v", out.User)
	}
}

func Test_FileStore_Permissions(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir, nil)

	if err := fs.Save(context.Background(), Snapshot{AccessToken: "acc", RefreshToken: "ref"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	for _, name := range []string{"session.json", "refresh.token"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Fatalf("%s mode %04o, want 0600", name, perm)
		}
	}
}

func Test_FileStore_ExpiredRefreshDropped(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir, nil)
	ctx := context.Background()

	if err := fs.Save(ctx, Snapshot{AccessToken: "acc", RefreshToken: "ref"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Backdate the stored expiry past the TTL.
	p := filepath.Join(dir, "refresh.token")
	stale, _ := json.Marshal(refreshFile{RefreshToken: "ref", ExpiresAt: time.Now().Add(-time.Hour)})
	if err := os.WriteFile(p, stale, 0o600); err != nil {
		t.Fatalf("rewrite refresh file: %v", err)
	}

	snap, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.RefreshToken != "" {
		t.Fatalf("expired refresh token survived load")
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatalf("expired refresh file not removed")
	}
}

func Test_FileStore_EmptyRefreshRemovesFile(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir, nil)
	ctx := context.Background()

	if err := fs.Save(ctx, Snapshot{AccessToken: "acc", RefreshToken: "ref"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := fs.Save(ctx, Snapshot{}); err != nil {
		t.Fatalf("Save cleared snapshot: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "refresh.token")); !os.IsNotExist(err) {
		t.Fatalf("refresh file survived a cleared save")
	}
}

func Test_FileStore_Clear(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir, nil)
	ctx := context.Background()

	if err := fs.Save(ctx, Snapshot{AccessToken: "acc", RefreshToken: "ref"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := fs.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := fs.Clear(ctx); err != nil {
		t.Fatalf("Clear twice: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "session") || strings.HasPrefix(e.Name(), "refresh") {
			t.Fatalf("leftover file after Clear: %s", e.Name())
		}
	}
}

func Test_FileStore_CorruptSessionFile(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir, nil)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := fs.Load(context.Background()); err == nil {
		t.Fatalf("want error for corrupt session file")
	}
}

func Test_Store_PersistsThroughFileStore(t *testing.T) {
	dir := t.TempDir()

	s := NewStore(NewFileStore(dir, nil), nil)
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	s.SetTokens(&model.TokenPair{AccessToken: "acc", RefreshToken: "ref", ExpiresAt: time.Now().Add(time.Hour)})
	s.SetUser(testUser())

	// A second store sharing the dir sees the persisted session.
	s2 := NewStore(NewFileStore(dir, nil), nil)
	if err := s2.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate second store: %v", err)
	}
	if s2.AccessToken() != "acc" || s2.RefreshToken() != "ref" {
		t.Fatalf("second store missing tokens")
	}
	if s2.AuthState() != AuthSignedIn {
		t.Fatalf("AuthState=%v, want signed-in", s2.AuthState())
	}

	// Logout wipes the directory for every future store.
	s.Logout()
	s3 := NewStore(NewFileStore(dir, nil), nil)
	if err := s3.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate third store: %v", err)
	}
	if s3.AuthState() != AuthAnonymous {
		t.Fatalf("AuthState after logout=%v, want anonymous", s3.AuthState())
	}
}
