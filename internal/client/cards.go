package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gofrs/uuid/v5"

	"github.com/spellbook-cards/spellbook-go/internal/model"
)

// CardSearchParams filters card searches. Zero values are omitted.
type CardSearchParams struct {
	Query   string // free-text name search
	Colors  string // e.g. "WU"
	Set     string // set code
	Rarity  string
	Type    string // type line filter
	Page    int
	PerPage int
}

func (p CardSearchParams) values() url.Values {
	q := url.Values{}
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	if p.Colors != "" {
		q.Set("colors", p.Colors)
	}
	if p.Set != "" {
		q.Set("set", p.Set)
	}
	if p.Rarity != "" {
		q.Set("rarity", p.Rarity)
	}
	if p.Type != "" {
		q.Set("type", p.Type)
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	return q
}

// CardSearchResult is the data+meta envelope returned by card searches.
type CardSearchResult struct {
	Data []model.Card   `json:"data"`
	Meta map[string]any `json:"meta"`
}

// SearchCards searches card printings.
func (c *Client) SearchCards(ctx context.Context, p CardSearchParams) (*CardSearchResult, error) {
	var res CardSearchResult
	if err := c.do(ctx, http.MethodGet, "/api/v1/cards/search", p.values(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SearchUniqueCards searches cards collapsed to one result per name.
func (c *Client) SearchUniqueCards(ctx context.Context, p CardSearchParams) (*CardSearchResult, error) {
	var res CardSearchResult
	if err := c.do(ctx, http.MethodGet, "/api/v1/cards/search-unique", p.values(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Card fetches a single printing by its ID.
func (c *Client) Card(ctx context.Context, id uuid.UUID) (*model.Card, error) {
	var card model.Card
	if err := c.do(ctx, http.MethodGet, "/api/v1/cards/"+id.String(), nil, nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// CardVersions lists all printings sharing an oracle identity.
func (c *Client) CardVersions(ctx context.Context, oracleID uuid.UUID) ([]model.Card, error) {
	var cards []model.Card
	if err := c.do(ctx, http.MethodGet, "/api/v1/cards/oracle/"+oracleID.String()+"/versions", nil, nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// Sets lists all known card sets.
func (c *Client) Sets(ctx context.Context) ([]model.CardSet, error) {
	var sets []model.CardSet
	if err := c.do(ctx, http.MethodGet, "/api/v1/cards/sets", nil, nil, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// Set fetches a single set by its code.
func (c *Client) Set(ctx context.Context, code string) (*model.CardSet, error) {
	var set model.CardSet
	if err := c.do(ctx, http.MethodGet, "/api/v1/cards/sets/"+url.PathEscape(code), nil, nil, &set); err != nil {
		return nil, err
	}
	return &set, nil
}
