package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/spellbook-cards/spellbook-go/internal/errs"
	"github.com/spellbook-cards/spellbook-go/internal/model"
)

// payload builds a fresh request body per attempt, so a retried request never
// reuses a consumed reader.
type payload func() (io.Reader, string, error)

// jsonPayload marshals v as a JSON body. A nil v yields an empty body.
func jsonPayload(v any) payload {
	if v == nil {
		return nil
	}
	return func() (io.Reader, string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("marshal request: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

// do performs an authenticated JSON request with one-shot 401 recovery.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.exec(ctx, method, path, query, jsonPayload(body), out)
}

// doPublic performs an unauthenticated request with no recovery cycle. Used
// for login, register, refresh, and invite validation, where a 401 is a real
// answer and must never trigger a refresh.
func (c *Client) doPublic(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.request(ctx, method, path, query, jsonPayload(body), out, false)
}

// exec is the interceptor: one attempt, and on 401 exactly one refresh+resend
// cycle. The retry is an explicit second call rather than a mutable flag on a
// shared request, so concurrent calls cannot leak retries across requests.
// A 401 from the resent request passes through unmodified.
func (c *Client) exec(ctx context.Context, method, path string, query url.Values, pl payload, out any) error {
	err := c.request(ctx, method, path, query, pl, out, true)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		return err
	}

	if rerr := c.refreshSession(ctx); rerr != nil {
		c.log.Info("token refresh failed, clearing session", zap.Error(rerr))
		c.expireSession()
		// The caller sees the original authorization failure, tagged so
		// errors.Is(err, errs.ErrSessionExpired) also holds.
		return errors.Join(err, errs.ErrSessionExpired)
	}

	if c.metrics != nil {
		c.metrics.RetriesTotal.Inc()
	}
	c.log.Debug("resending request after token refresh",
		zap.String("method", method), zap.String("path", path))
	return c.request(ctx, method, path, query, pl, out, true)
}

// request performs a single HTTP attempt. Non-2xx responses become *APIError;
// transport failures are wrapped and returned as-is. When withAuth is set and
// an access token exists it is attached; an absent token never blocks the
// request.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, pl payload, out any, withAuth bool) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var (
		body  io.Reader
		ctype string
	)
	if pl != nil {
		var err error
		body, ctype, err = pl()
		if err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if withAuth {
		if tok := c.sess.AccessToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.count(method, "transport_error")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.count(method, "transport_error")
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.count(method, "error")
		return newAPIError(method, path, resp.StatusCode, respBody)
	}

	c.count(method, "ok")
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"` // present only when rotated
	ExpiresIn    int    `json:"expires_in"`
}

// refreshSession exchanges the stored refresh token for a new access token.
// On success the new tokens replace the old ones in the session store. There
// is deliberately no single-flight guard: concurrent 401s each refresh on
// their own, which is redundant but harmless (last write wins).
func (c *Client) refreshSession(ctx context.Context) error {
	if c.metrics != nil {
		c.metrics.RefreshAttempts.Inc()
	}

	rt := c.sess.RefreshToken()
	if rt == "" {
		if c.metrics != nil {
			c.metrics.RefreshFailures.Inc()
		}
		return errs.ErrNoSession
	}

	var resp refreshResponse
	err := c.doPublic(ctx, http.MethodPost, "/api/v1/auth/refresh", nil, refreshRequest{RefreshToken: rt}, &resp)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RefreshFailures.Inc()
		}
		return fmt.Errorf("refresh access token: %w", err)
	}

	c.sess.SetTokens(&model.TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    tokenExpiry(resp.AccessToken, resp.ExpiresIn),
	})
	return nil
}

// expireSession clears local credentials and signals the UI layer.
func (c *Client) expireSession() {
	if c.metrics != nil {
		c.metrics.ForcedLogouts.Inc()
	}
	c.sess.Logout()
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

func (c *Client) count(method, outcome string) {
	if c.metrics != nil {
		c.metrics.RequestsTotal.WithLabelValues(method, outcome).Inc()
	}
}
