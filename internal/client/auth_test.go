package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/spellbook-cards/spellbook-go/internal/session"
)

// unsignedToken builds a JWT carrying only an exp claim. The client never
// verifies signatures, it only reads the expiry.
func unsignedToken(t *testing.T, exp int64) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp})
	s, err := tok.SignedString([]byte("test"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func Test_Login_PopulatesSession(t *testing.T) {
	exp := int64(4102444800) // 2100-01-01
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "gandalf" || req.Password != "mellon" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "bad credentials"})
			return
		}
		writeJSON(w, http.StatusOK, loginResponse{
			AccessToken:  unsignedToken(t, exp),
			RefreshToken: "ref",
			TokenType:    "bearer",
			ExpiresIn:    900,
		})
	})
	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "missing token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"username": "gandalf", "email": "g@shire.example"})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	sess := newSignedInSession(t, "", "")
	c, _ := newTestClient(t, ts, sess)

	u, err := c.Login(context.Background(), "gandalf", "mellon")
	require.NoError(t, err)
	require.Equal(t, "gandalf", u.Username)

	if sess.AuthState() != session.AuthSignedIn {
		t.Fatalf("AuthState=%v after login", sess.AuthState())
	}
	if sess.RefreshToken() != "ref" {
		t.Fatalf("refresh token not stored")
	}
	snap := sess.Snapshot()
	if snap.ExpiresAt.Unix() != exp {
		t.Fatalf("expiry from JWT claims=%v, want %d", snap.ExpiresAt.Unix(), exp)
	}
	if snap.User == nil || snap.User.Username != "gandalf" {
		t.Fatalf("profile not cached after login")
	}
}

func Test_Login_BadCredentials_LeavesStoreAlone(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "bad credentials"})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	sess := newSignedInSession(t, "", "")
	c, _ := newTestClient(t, ts, sess)

	_, err := c.Login(context.Background(), "gandalf", "wrong")
	require.Error(t, err)
	if sess.AuthState() != session.AuthAnonymous {
		t.Fatalf("failed login changed auth state: %v", sess.AuthState())
	}
}

func Test_Register_ValidatesBeforeNetwork(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { hits++ })
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, _ := newTestClient(t, ts, newSignedInSession(t, "", ""))

	cases := []RegisterRequest{
		{Email: "not-an-email", Username: "gandalf", Password: "longenough"},
		{Email: "g@shire.example", Username: "g", Password: "longenough"},
		{Email: "g@shire.example", Username: "gandalf", Password: "short"},
		{Email: "g@shire.example", Username: "gandalf the grey", Password: "longenough"},
	}
	for _, req := range cases {
		if _, err := c.Register(context.Background(), req); err == nil {
			t.Fatalf("register accepted invalid payload %+v", req)
		}
	}
	if hits != 0 {
		t.Fatalf("invalid payloads reached the server %d times", hits)
	}
}

func Test_Logout_AlwaysClearsLocally(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		// Server-side invalidation failing must not keep the client signed in.
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	sess := newSignedInSession(t, "acc", "ref")
	c, _ := newTestClient(t, ts, sess)

	c.Logout(context.Background())
	if sess.AuthState() != session.AuthAnonymous {
		t.Fatalf("logout left session signed in")
	}
}

func Test_TokenExpiry_Fallbacks(t *testing.T) {
	got := tokenExpiry("garbage", 600)
	if d := time.Until(got); d < 9*time.Minute || d > 11*time.Minute {
		t.Fatalf("expires_in fallback gave %v", d)
	}
	got = tokenExpiry("garbage", 0)
	if d := time.Until(got); d < 14*time.Minute || d > 16*time.Minute {
		t.Fatalf("default fallback gave %v", d)
	}
}
