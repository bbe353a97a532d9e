// Package scryfall is the external card-metadata provider client. It is
// consulted only when a card is first created locally; existing local
// references never go through it.
package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.scryfall.com"

// ErrNotFound means the provider has no card with the requested exact name
// (and set, when given).
var ErrNotFound = errors.New("scryfall: card not found")

// CardData is the provider's view of one printing, trimmed to the fields the
// catalog stores. Raw keeps the full payload verbatim.
type CardData struct {
	ID              string
	Name            string
	SetCode         string
	CollectorNumber string
	ImageURL        string
	UsdPrice        decimal.NullDecimal
	EurPrice        decimal.NullDecimal
	Raw             json.RawMessage
}

// Client looks up a card by its exact name, optionally pinned to a set.
type Client interface {
	NamedExact(ctx context.Context, name, setCode string) (*CardData, error)
}

type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

func New() *HTTPClient {
	return &HTTPClient{
		baseURL: defaultBaseURL,
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

// NewWithBaseURL is used by tests to point the client at a stub server.
func NewWithBaseURL(baseURL string) *HTTPClient {
	c := New()
	c.baseURL = baseURL
	return c
}

type namedResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Set             string `json:"set"`
	CollectorNumber string `json:"collector_number"`
	ImageURIs       struct {
		Normal string `json:"normal"`
	} `json:"image_uris"`
	Prices struct {
		Usd string `json:"usd"`
		Eur string `json:"eur"`
	} `json:"prices"`
}

func (c *HTTPClient) NamedExact(ctx context.Context, name, setCode string) (*CardData, error) {
	q := url.Values{}
	q.Set("exact", name)
	if setCode != "" {
		q.Set("set", setCode)
	}
	endpoint := c.baseURL + "/cards/named?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("scryfall: build request: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scryfall: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("scryfall: read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		log.Warnf("scryfall returned status %d for %q", resp.StatusCode, name)
		return nil, fmt.Errorf("scryfall: unexpected status %d", resp.StatusCode)
	}

	var wire namedResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("scryfall: decode response: %w", err)
	}

	card := &CardData{
		ID:              wire.ID,
		Name:            wire.Name,
		SetCode:         wire.Set,
		CollectorNumber: wire.CollectorNumber,
		ImageURL:        wire.ImageURIs.Normal,
		UsdPrice:        parsePrice(wire.Prices.Usd),
		EurPrice:        parsePrice(wire.Prices.Eur),
		Raw:             json.RawMessage(body),
	}
	return card, nil
}

// parsePrice converts the provider's string price to a decimal; missing or
// malformed prices become null rather than an error.
func parsePrice(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Warnf("scryfall: unparseable price %q", s)
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
