package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deck represents the decks table in the database.
type Deck struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Format      string    `json:"format,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DeckPatch carries a partial deck update; nil fields keep their prior value.
type DeckPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Format      *string `json:"format"`
}

// DeckCard is one ledger row of a deck. The same card may appear once in the
// mainboard and once in the sideboard.
type DeckCard struct {
	DeckID      int64  `json:"deck_id"`
	CardID      string `json:"card_id"`
	Quantity    int    `json:"quantity"`
	IsSideboard bool   `json:"is_sideboard"`
}

// DeckCardDetail is a deck ledger row joined with card descriptive fields.
type DeckCardDetail struct {
	CardID      string              `json:"id"`
	Name        string              `json:"name"`
	SetCode     string              `json:"set_code"`
	ImageURL    string              `json:"image_url,omitempty"`
	UsdPrice    decimal.NullDecimal `json:"usd_price"`
	Quantity    int                 `json:"quantity"`
	IsSideboard bool                `json:"is_sideboard"`
}

// DeckDetail is a deck with its ledger split into boards.
type DeckDetail struct {
	Deck
	Mainboard []DeckCardDetail `json:"mainboard"`
	Sideboard []DeckCardDetail `json:"sideboard"`
}
