package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Binder represents the binders table in the database.
type Binder struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BinderPatch carries a partial binder update; nil fields keep their prior
// value.
type BinderPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// BinderSummary is a binder with its aggregate card count, used by listings.
type BinderSummary struct {
	Binder
	CardCount int64 `json:"card_count"`
}

// BinderCard is one ledger row of a binder. A binder holds at most one row
// per card; condition and notes are row metadata, not part of the key.
type BinderCard struct {
	BinderID  int64  `json:"binder_id"`
	CardID    string `json:"card_id"`
	Quantity  int    `json:"quantity"`
	Condition string `json:"condition"`
	Notes     string `json:"notes"`
}

// BinderCardDetail is a binder ledger row joined with card descriptive
// fields.
type BinderCardDetail struct {
	CardID    string              `json:"id"`
	Name      string              `json:"name"`
	SetCode   string              `json:"set_code"`
	ImageURL  string              `json:"image_url,omitempty"`
	UsdPrice  decimal.NullDecimal `json:"usd_price"`
	EurPrice  decimal.NullDecimal `json:"eur_price"`
	Quantity  int                 `json:"quantity"`
	Condition string              `json:"condition"`
	Notes     string              `json:"notes"`
}

// BinderDetail is a binder with its full ledger.
type BinderDetail struct {
	Binder
	Cards []BinderCardDetail `json:"cards"`
}
