package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spellbook-cards/spellbook-go/internal/model"
)

// RegisterRequest is the payload for account creation. Validation mirrors the
// server-side rules so obviously bad input fails before the network round trip.
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Username   string `json:"username" validate:"required,min=3,max=50,handle"`
	Password   string `json:"password" validate:"required,min=8,max=128"`
	InviteCode string `json:"invite_code,omitempty" validate:"omitempty,max=32"`
}

type loginRequest struct {
	Username string `json:"username"` // username or email
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Login authenticates with a username or email and populates the session
// store: tokens first, then the profile fetched through the authenticated path.
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (*model.User, error) {
	if usernameOrEmail == "" || password == "" {
		return nil, errors.New("login: empty username/password")
	}

	var resp loginResponse
	err := c.doPublic(ctx, http.MethodPost, "/api/v1/auth/login", nil,
		loginRequest{Username: usernameOrEmail, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	c.sess.SetTokens(&model.TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    tokenExpiry(resp.AccessToken, resp.ExpiresIn),
	})

	user, err := c.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profile after login: %w", err)
	}
	c.log.Info("signed in", zap.String("username", user.Username))
	return user, nil
}

// Register creates a new account. Depending on the server's registration mode
// the account may start in pending state; the response is the created user,
// not a token pair, so a follow-up Login is required.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate registration: %w", err)
	}
	var u model.User
	if err := c.doPublic(ctx, http.MethodPost, "/api/v1/auth/register", nil, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout asks the server to invalidate the session (best-effort, failures
// swallowed) and always clears the local store. Safe to call when signed out.
func (c *Client) Logout(ctx context.Context) {
	if c.sess.AccessToken() != "" {
		// Single attempt, no refresh cycle: a dying session is not worth healing.
		if err := c.request(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil, nil, true); err != nil {
			c.log.Debug("server-side logout failed", zap.Error(err))
		}
	}
	c.sess.Logout()
}

// Me fetches the current user profile and refreshes the cached copy in the
// session store (read-through cache).
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me", nil, nil, &u); err != nil {
		return nil, err
	}
	c.sess.SetUser(&u)
	return &u, nil
}

// UpdateProfileRequest carries partial profile updates; nil fields are omitted.
type UpdateProfileRequest struct {
	Username    *string        `json:"username,omitempty" validate:"omitempty,min=3,max=50,handle"`
	Email       *string        `json:"email,omitempty" validate:"omitempty,email"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// UpdateProfile patches the current user and refreshes the cached profile.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*model.User, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate profile update: %w", err)
	}
	var u model.User
	if err := c.do(ctx, http.MethodPatch, "/api/v1/users/me", nil, req, &u); err != nil {
		return nil, err
	}
	c.sess.SetUser(&u)
	return &u, nil
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// ChangePassword rotates the account password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	req := passwordChangeRequest{CurrentPassword: current, NewPassword: next}
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("validate password change: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/api/v1/users/me/password", nil, req, nil)
}

// tokenExpiry recovers the access token expiry from its JWT claims without
// validating the signature (the server owns validation). Falls back to
// expires_in, then to a conservative 15 minutes.
func tokenExpiry(token string, expiresIn int) time.Time {
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	if expiresIn > 0 {
		return time.Now().Add(time.Duration(expiresIn) * time.Second)
	}
	return time.Now().Add(15 * time.Minute)
}
