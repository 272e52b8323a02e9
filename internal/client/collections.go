package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gofrs/uuid/v5"

	"github.com/spellbook-cards/spellbook-go/internal/model"
)

// CreateCollectionRequest names a new collection.
type CreateCollectionRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

// UpdateCollectionRequest carries partial collection updates.
type UpdateCollectionRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// AddCardRequest places a card printing into a collection.
type AddCardRequest struct {
	CardScryfallID uuid.UUID `json:"card_scryfall_id" validate:"required"`
	Quantity       int       `json:"quantity" validate:"min=1"`
	Condition      string    `json:"condition,omitempty"`
}

// UpdateCardRequest adjusts an existing collection entry.
type UpdateCardRequest struct {
	Quantity  *int    `json:"quantity,omitempty" validate:"omitempty,min=1"`
	Condition *string `json:"condition,omitempty"`
}

// CreateCollection creates a new named collection.
func (c *Client) CreateCollection(ctx context.Context, req CreateCollectionRequest) (*model.Collection, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate collection: %w", err)
	}
	var col model.Collection
	if err := c.do(ctx, http.MethodPost, "/api/v1/collections/", nil, req, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// Collections lists the current user's collections.
func (c *Client) Collections(ctx context.Context) ([]model.Collection, error) {
	var cols []model.Collection
	if err := c.do(ctx, http.MethodGet, "/api/v1/collections/", nil, nil, &cols); err != nil {
		return nil, err
	}
	return cols, nil
}

// Collection fetches a single collection with its cards.
func (c *Client) Collection(ctx context.Context, id uuid.UUID) (*model.Collection, error) {
	var col model.Collection
	if err := c.do(ctx, http.MethodGet, "/api/v1/collections/"+id.String(), nil, nil, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// UpdateCollection renames or re-describes a collection.
func (c *Client) UpdateCollection(ctx context.Context, id uuid.UUID, req UpdateCollectionRequest) (*model.Collection, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate collection update: %w", err)
	}
	var col model.Collection
	if err := c.do(ctx, http.MethodPut, "/api/v1/collections/"+id.String(), nil, req, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// DeleteCollection removes a collection and all of its entries.
func (c *Client) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/collections/"+id.String(), nil, nil, nil)
}

// AddCard adds a card to a collection. Adding an already-present printing
// bumps the quantity server-side.
func (c *Client) AddCard(ctx context.Context, collectionID uuid.UUID, req AddCardRequest) (*model.CollectionCard, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate card entry: %w", err)
	}
	var cc model.CollectionCard
	if err := c.do(ctx, http.MethodPost, "/api/v1/collections/"+collectionID.String()+"/cards", nil, req, &cc); err != nil {
		return nil, err
	}
	return &cc, nil
}

// CollectionCards lists the entries of a collection.
func (c *Client) CollectionCards(ctx context.Context, collectionID uuid.UUID) ([]model.CollectionCard, error) {
	var cards []model.CollectionCard
	if err := c.do(ctx, http.MethodGet, "/api/v1/collections/"+collectionID.String()+"/cards", nil, nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// UpdateCard changes the quantity or condition of a collection entry.
func (c *Client) UpdateCard(ctx context.Context, collectionID, cardID uuid.UUID, req UpdateCardRequest) (*model.CollectionCard, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate card update: %w", err)
	}
	var cc model.CollectionCard
	path := "/api/v1/collections/" + collectionID.String() + "/cards/" + cardID.String()
	if err := c.do(ctx, http.MethodPut, path, nil, req, &cc); err != nil {
		return nil, err
	}
	return &cc, nil
}

// RemoveCard deletes an entry from a collection.
func (c *Client) RemoveCard(ctx context.Context, collectionID, cardID uuid.UUID) error {
	path := "/api/v1/collections/" + collectionID.String() + "/cards/" + cardID.String()
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
