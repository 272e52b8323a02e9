package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spellbook-cards/spellbook-go/internal/model"
)

// Persister stores session state durably between runs.
//
// The session blob (access token + profile) and the refresh token live in
// separate locations with independent lifetimes: the refresh token must
// outlive the blob and carries its own expiry stamp.
type Persister interface {
	// Load reads the persisted snapshot. A missing store yields a zero snapshot.
	Load(ctx context.Context) (Snapshot, error)
	// Save writes the session blob and, when present, the refresh token.
	Save(ctx context.Context, snap Snapshot) error
	// Clear removes all persisted session state. Idempotent.
	Clear(ctx context.Context) error
}

// RefreshTokenTTL bounds how long a persisted refresh token is honored
// locally, independent of the access token blob.
const RefreshTokenTTL = 7 * 24 * time.Hour

// DefaultDir returns the per-user config directory for spellbook state.
func DefaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "spellbook")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "spellbook")
}

// FileStore persists the session under a config directory as two files:
// session.json (access token + profile) and refresh.token (refresh credential
// with its own expiry). Writes are atomic (write-tmp, fsync, rename) and 0600.
type FileStore struct {
	dir string
	log *zap.Logger
	mu  sync.Mutex
}

var _ Persister = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{dir: dir, log: log}
}

func (f *FileStore) sessionPath() string { return filepath.Join(f.dir, "session.json") }
func (f *FileStore) refreshPath() string { return filepath.Join(f.dir, "refresh.token") }

type sessionFile struct {
	AccessToken string      `json:"access_token,omitempty"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        *model.User `json:"user,omitempty"`
	SavedAt     time.Time   `json:"saved_at"`
}

type refreshFile struct {
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Load reads both files. A missing session blob yields an empty snapshot; an
// expired refresh token is dropped and its file removed.
func (f *FileStore) Load(_ context.Context) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var snap Snapshot

	data, err := os.ReadFile(f.sessionPath())
	switch {
	case err == nil:
		f.warnIfOpen(f.sessionPath())
		var sf sessionFile
		if uerr := json.Unmarshal(data, &sf); uerr != nil {
			return Snapshot{}, fmt.Errorf("parse session file: %w", uerr)
		}
		snap.AccessToken = sf.AccessToken
		snap.ExpiresAt = sf.ExpiresAt
		snap.User = sf.User
	case os.IsNotExist(err):
		// first run, nothing persisted yet
	default:
		return Snapshot{}, fmt.Errorf("read session file: %w", err)
	}

	rdata, err := os.ReadFile(f.refreshPath())
	if err == nil {
		f.warnIfOpen(f.refreshPath())
		var rf refreshFile
		if uerr := json.Unmarshal(rdata, &rf); uerr == nil {
			if time.Now().Before(rf.ExpiresAt) {
				snap.RefreshToken = rf.RefreshToken
			} else {
				f.log.Info("persisted refresh token expired, dropping")
				_ = os.Remove(f.refreshPath())
			}
		}
	} else if !os.IsNotExist(err) {
		return Snapshot{}, fmt.Errorf("read refresh token: %w", err)
	}

	return snap, nil
}

// Save writes the session blob and rotates the refresh token file. An empty
// refresh token in the snapshot means the session holds none, so any stored
// refresh token is removed.
func (f *FileStore) Save(_ context.Context, snap Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	sf := sessionFile{
		AccessToken: snap.AccessToken,
		ExpiresAt:   snap.ExpiresAt,
		User:        snap.User,
		SavedAt:     time.Now().UTC(),
	}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := writeAtomic(f.sessionPath(), append(data, '\n')); err != nil {
		return err
	}

	if snap.RefreshToken == "" {
		if err := os.Remove(f.refreshPath()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove refresh token: %w", err)
		}
		return nil
	}

	rf := refreshFile{
		RefreshToken: snap.RefreshToken,
		ExpiresAt:    time.Now().Add(RefreshTokenTTL).UTC(),
	}
	rdata, err := json.Marshal(rf)
	if err != nil {
		return fmt.Errorf("marshal refresh token: %w", err)
	}
	return writeAtomic(f.refreshPath(), append(rdata, '\n'))
}

// Clear removes both files. Missing files are not an error.
func (f *FileStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range []string{f.sessionPath(), f.refreshPath()} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", filepath.Base(p), err)
		}
	}
	return nil
}

// warnIfOpen logs when a credential file is readable by group/other.
// Unix permission bits are meaningless on Windows.
func (f *FileStore) warnIfOpen(path string) {
	if runtime.GOOS == "windows" {
		return
	}
	if info, err := os.Stat(path); err == nil {
		if mode := info.Mode().Perm(); mode&0o077 != 0 {
			f.log.Warn("credential file permissions too open, want 0600",
				zap.String("path", path),
				zap.String("mode", fmt.Sprintf("%04o", mode)))
		}
	}
}

// writeAtomic writes data to path via a temp file, fsync, and rename.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	fh, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		_ = fh.Close()
		_ = os.Remove(tmp)
	}
	if _, err := fh.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := fh.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := fh.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
