package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/spellbook-cards/spellbook-go/internal/model"
)

// AdminUsers lists all accounts, optionally filtered by approval status.
func (c *Client) AdminUsers(ctx context.Context, status string) ([]model.User, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/users", q, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

type userStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected suspended"`
}

// SetUserStatus moves an account through the approval workflow.
func (c *Client) SetUserStatus(ctx context.Context, userID uuid.UUID, status string) (*model.User, error) {
	req := userStatusRequest{Status: status}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate status: %w", err)
	}
	var u model.User
	if err := c.do(ctx, http.MethodPatch, "/api/v1/admin/users/"+userID.String()+"/status", nil, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser permanently removes an account and its data.
func (c *Client) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/admin/users/"+userID.String(), nil, nil, nil)
}

// Settings fetches the server's registration configuration.
func (c *Client) Settings(ctx context.Context) (*model.SystemSettings, error) {
	var s model.SystemSettings
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/settings", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

type settingsRequest struct {
	RegistrationMode string `json:"registration_mode" validate:"required,oneof=OPEN INVITE_ONLY ADMIN_APPROVAL"`
}

// UpdateSettings switches the registration mode.
func (c *Client) UpdateSettings(ctx context.Context, registrationMode string) (*model.SystemSettings, error) {
	req := settingsRequest{RegistrationMode: registrationMode}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}
	var s model.SystemSettings
	if err := c.do(ctx, http.MethodPatch, "/api/v1/admin/settings", nil, req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// AdminStats summarizes accounts for the admin dashboard.
func (c *Client) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	var st model.AdminStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/stats", nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// CreateInviteRequest issues a registration invite.
type CreateInviteRequest struct {
	Email     string     `json:"email,omitempty" validate:"omitempty,email"`
	MaxUses   int        `json:"max_uses,omitempty" validate:"omitempty,min=1,max=100"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Notes     string     `json:"notes,omitempty" validate:"max=500"`
}

// InviteList is a page of invites.
type InviteList struct {
	Invites []model.Invite `json:"invites"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	Size    int            `json:"size"`
	HasNext bool           `json:"has_next"`
}

// CreateInvite issues a new registration invite code.
func (c *Client) CreateInvite(ctx context.Context, req CreateInviteRequest) (*model.Invite, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate invite: %w", err)
	}
	var inv model.Invite
	if err := c.do(ctx, http.MethodPost, "/api/v1/admin/invites", nil, req, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Invites pages through issued invites.
func (c *Client) Invites(ctx context.Context, page, size int) (*InviteList, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	var list InviteList
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/invites", q, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// RevokeInvite disables an invite code before it is used up.
func (c *Client) RevokeInvite(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/admin/invites/"+id.String(), nil, nil, nil)
}

type inviteValidationRequest struct {
	Code  string `json:"code"`
	Email string `json:"email,omitempty"`
}

// InviteValidation is the public answer to "is this code usable".
type InviteValidation struct {
	Valid           bool   `json:"valid"`
	Code            string `json:"code"`
	EmailRestricted bool   `json:"email_restricted"`
}

// ValidateInvite checks an invite code before registration. Public endpoint,
// so a signed-out client can call it.
func (c *Client) ValidateInvite(ctx context.Context, code, email string) (*InviteValidation, error) {
	var v InviteValidation
	err := c.doPublic(ctx, http.MethodPost, "/api/v1/auth/validate-invite", nil,
		inviteValidationRequest{Code: code, Email: email}, &v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
