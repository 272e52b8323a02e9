// Package model defines domain entities exchanged with the Spellbook API.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// TokenPair collects issued access/refresh tokens (refresh optional on rotation).
type TokenPair struct {
	AccessToken  string
	RefreshToken string    // empty when the server did not issue/rotate one
	ExpiresAt    time.Time // access token expiry (for diagnostics and refresh scheduling)
}

// User is the authenticated account profile as returned by /users/me and admin listings.
type User struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Username    string         `json:"username"`
	IsActive    bool           `json:"is_active"`
	IsAdmin     bool           `json:"is_admin"`
	Status      string         `json:"status,omitempty"` // pending, approved, rejected, suspended
	Preferences map[string]any `json:"preferences,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
}

// CardSet is a printed set a card belongs to.
type CardSet struct {
	ID          uuid.UUID      `json:"id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date,omitempty"`
	CardCount   int            `json:"card_count,omitempty"`
	IconURL     string         `json:"icon_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Card is a single printing of a card.
type Card struct {
	ID              uuid.UUID      `json:"id"`
	ScryfallID      *uuid.UUID     `json:"scryfall_id,omitempty"`
	OracleID        *uuid.UUID     `json:"oracle_id,omitempty"`
	Name            string         `json:"name"`
	ManaCost        string         `json:"mana_cost,omitempty"`
	TypeLine        string         `json:"type_line,omitempty"`
	OracleText      string         `json:"oracle_text,omitempty"`
	Power           string         `json:"power,omitempty"`
	Toughness       string         `json:"toughness,omitempty"`
	Colors          string         `json:"colors,omitempty"`
	ColorIdentity   string         `json:"color_identity,omitempty"`
	Rarity          string         `json:"rarity,omitempty"`
	FlavorText      string         `json:"flavor_text,omitempty"`
	Artist          string         `json:"artist,omitempty"`
	CollectorNumber string         `json:"collector_number,omitempty"`
	ImageURIs       map[string]any `json:"image_uris,omitempty"`
	Prices          map[string]any `json:"prices,omitempty"`
	Legalities      map[string]any `json:"legalities,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	Set             *CardSet       `json:"set,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// CollectionCard is a card entry inside a collection.
type CollectionCard struct {
	ID             uuid.UUID `json:"id"`
	CardScryfallID uuid.UUID `json:"card_scryfall_id"`
	Quantity       int       `json:"quantity"`
	Condition      string    `json:"condition,omitempty"`
	Card           *Card     `json:"card,omitempty"`
}

// Collection is a named set of owned cards.
type Collection struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"user_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Cards       []CollectionCard `json:"cards,omitempty"`
}

// Scan statuses mirror the server-side processing pipeline.
const (
	ScanPending      = "pending"
	ScanProcessing   = "processing"
	ScanCompleted    = "completed"
	ScanFailed       = "failed"
	ScanManualReview = "manual_review"
	ScanConfirmed    = "confirmed"
	ScanRejected     = "rejected"
)

// DetectedCard is a recognition candidate for a scanned image.
type DetectedCard struct {
	ScryfallID      uuid.UUID `json:"scryfall_id"`
	Name            string    `json:"name"`
	SetCode         string    `json:"set_code"`
	CollectorNumber string    `json:"collector_number,omitempty"`
	Confidence      float64   `json:"confidence"`
	ImageURI        string    `json:"image_uri,omitempty"`
}

// BoundingBox locates a detected card within the scanned image.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Scan is a single uploaded card image and its recognition state.
type Scan struct {
	ID      uuid.UUID  `json:"id"`
	BatchID *uuid.UUID `json:"batch_id,omitempty"`
	UserID  uuid.UUID  `json:"user_id"`
	Status  string     `json:"status"`

	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	OriginalURL  string `json:"original_url,omitempty"`
	ImageWidth   int    `json:"image_width,omitempty"`
	ImageHeight  int    `json:"image_height,omitempty"`

	DetectedName        string         `json:"detected_name,omitempty"`
	DetectedSetCode     string         `json:"detected_set_code,omitempty"`
	BestMatchScryfallID *uuid.UUID     `json:"best_match_scryfall_id,omitempty"`
	BestMatchConfidence *float64       `json:"best_match_confidence,omitempty"`
	DetectedCards       []DetectedCard `json:"detected_cards,omitempty"`
	BoundingBox         *BoundingBox   `json:"bounding_box,omitempty"`

	ConfirmedCardID   *uuid.UUID `json:"confirmed_card_id,omitempty"`
	AddedToCollection bool       `json:"added_to_collection"`

	ProcessingTimeMs int        `json:"processing_time_ms,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`
}

// ScanBatch groups scans uploaded together.
type ScanBatch struct {
	ID                  uuid.UUID  `json:"id"`
	UserID              uuid.UUID  `json:"user_id"`
	Name                string     `json:"name,omitempty"`
	Description         string     `json:"description,omitempty"`
	Source              string     `json:"source"`
	Status              string     `json:"status"`
	TotalScans          int        `json:"total_scans"`
	CompletedScans      int        `json:"completed_scans"`
	FailedScans         int        `json:"failed_scans"`
	AutoAddToCollection bool       `json:"auto_add_to_collection"`
	TargetCollectionID  *uuid.UUID `json:"target_collection_id,omitempty"`
	ConfidenceThreshold float64    `json:"confidence_threshold"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`

	// Present only on the detail endpoint.
	Scans           []Scan  `json:"scans,omitempty"`
	ProgressPercent float64 `json:"progress_percent,omitempty"`
}

// ScanStats summarizes a user's scanning activity.
type ScanStats struct {
	TotalScans              int      `json:"total_scans"`
	PendingScans            int      `json:"pending_scans"`
	CompletedScans          int      `json:"completed_scans"`
	FailedScans             int      `json:"failed_scans"`
	ManualReviewScans       int      `json:"manual_review_scans"`
	AverageConfidence       *float64 `json:"average_confidence,omitempty"`
	AverageProcessingTimeMs *int     `json:"average_processing_time_ms,omitempty"`
	CardsAddedToCollection  int      `json:"cards_added_to_collection"`
}

// QueueStatus reports the server-side scan processing queue.
type QueueStatus struct {
	QueueLength          int  `json:"queue_length"`
	ActiveWorkers        int  `json:"active_workers"`
	EstimatedWaitSeconds *int `json:"estimated_wait_seconds,omitempty"`
}

// Invite is an admin-issued registration invite.
type Invite struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	Email       string     `json:"email,omitempty"`
	CreatedByID uuid.UUID  `json:"created_by_id"`
	UsedByID    *uuid.UUID `json:"used_by_id,omitempty"`
	Status      string     `json:"status"`
	MaxUses     int        `json:"max_uses"`
	UsesCount   int        `json:"uses_count"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// Registration modes enforced by the server.
const (
	RegistrationOpen          = "OPEN"
	RegistrationInviteOnly    = "INVITE_ONLY"
	RegistrationAdminApproval = "ADMIN_APPROVAL"
)

// SystemSettings is the admin-visible server configuration.
type SystemSettings struct {
	RegistrationMode string `json:"registration_mode"`
}

// AdminStats summarizes accounts for the admin dashboard.
type AdminStats struct {
	TotalUsers       int    `json:"total_users"`
	PendingUsers     int    `json:"pending_users"`
	ApprovedUsers    int    `json:"approved_users"`
	AdminUsers       int    `json:"admin_users"`
	RegistrationMode string `json:"registration_mode"`
}
