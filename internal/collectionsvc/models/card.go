package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Card is one printing in the local catalog. Identity fields (id, set_code,
// collector_number) never change after creation; descriptive fields are
// refreshed from the provider payload.
type Card struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	SetCode         string              `json:"set_code"`
	CollectorNumber string              `json:"collector_number"`
	ImageURL        string              `json:"image_url,omitempty"`
	UsdPrice        decimal.NullDecimal `json:"usd_price"`
	EurPrice        decimal.NullDecimal `json:"eur_price"`
	ScryfallData    json.RawMessage     `json:"scryfall_data,omitempty"`
	LastUpdated     time.Time           `json:"last_updated"`
}

// CardPatch carries a partial card update; nil fields keep their prior value.
type CardPatch struct {
	Name         *string              `json:"name"`
	SetCode      *string              `json:"set_code"`
	ImageURL     *string              `json:"image_url"`
	UsdPrice     *decimal.NullDecimal `json:"usd_price"`
	EurPrice     *decimal.NullDecimal `json:"eur_price"`
	ScryfallData json.RawMessage      `json:"scryfall_data"`
}
