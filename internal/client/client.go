// Package client implements the Spellbook REST API client. Every call flows
// through a request interceptor that attaches the bearer credential from the
// session store and transparently recovers once from access-token expiry.
package client

import (
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spellbook-cards/spellbook-go/internal/metrics"
	"github.com/spellbook-cards/spellbook-go/internal/session"
)

const defaultTimeout = 30 * time.Second

// Client talks to a Spellbook server. Construct with New; the zero value is
// not usable.
type Client struct {
	baseURL   string
	hc        *http.Client
	log       *zap.Logger
	sess      *session.Store
	userAgent string
	metrics   *metrics.Session
	validate  *validator.Validate

	// onSessionExpired fires after a terminal refresh failure has cleared the
	// session store. It is the CLI analog of redirecting to the login screen.
	onSessionExpired func()
}

// New creates a client for the server at baseURL, reading and writing
// credentials through sess.
func New(baseURL string, sess *session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		sess:      sess,
		log:       zap.NewNop(),
		userAgent: "spellbook-go",
		validate:  newValidator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hc == nil {
		c.hc = &http.Client{Timeout: defaultTimeout}
	}
	return c
}

// Session exposes the backing session store (for auth state queries).
func (c *Client) Session() *session.Store { return c.sess }

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client (testing, proxies, transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout sets the per-request timeout on the default http.Client.
// Ignored when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if c.hc == nil {
			c.hc = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the structured logger. Defaults to a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithMetrics attaches prometheus session metrics.
func WithMetrics(m *metrics.Session) Option {
	return func(c *Client) { c.metrics = m }
}

// WithSessionExpiredHandler installs the hook that fires when a terminal
// refresh failure forces a sign-out.
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

// newValidator builds the request payload validator with the custom "handle"
// rule: letters, digits, hyphens, and underscores only.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if r != '-' && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
		}
		return true
	})
	return v
}
