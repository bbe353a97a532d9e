package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is the full table set. The FK constraints on the ledger tables are
// a backstop; the service layer checks existence before writing so callers
// get precise errors instead of constraint violations.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		set_code TEXT NOT NULL DEFAULT '',
		collector_number TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		usd_price NUMERIC,
		eur_price NUMERIC,
		scryfall_data JSONB,
		last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS cards_set_number_idx
		ON cards (set_code, collector_number)
		WHERE set_code <> '' AND collector_number <> ''`,
	`CREATE TABLE IF NOT EXISTS decks (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users (id),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		format TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS binders (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users (id),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS deck_cards (
		deck_id BIGINT NOT NULL REFERENCES decks (id),
		card_id TEXT NOT NULL REFERENCES cards (id),
		quantity INT NOT NULL CHECK (quantity > 0),
		is_sideboard BOOLEAN NOT NULL DEFAULT false,
		PRIMARY KEY (deck_id, card_id, is_sideboard)
	)`,
	`CREATE TABLE IF NOT EXISTS binder_cards (
		binder_id BIGINT NOT NULL REFERENCES binders (id),
		card_id TEXT NOT NULL REFERENCES cards (id),
		quantity INT NOT NULL CHECK (quantity > 0),
		condition TEXT NOT NULL DEFAULT 'NM',
		notes TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (binder_id, card_id)
	)`,
}

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
