package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardtrove/collection-services/internal/collectionsvc/models"
)

type CardStore struct {
	db *pgxpool.Pool
}

func NewCardStore(db *pgxpool.Pool) *CardStore {
	return &CardStore{db: db}
}

const cardColumns = `id, name, set_code, collector_number, image_url, usd_price, eur_price, scryfall_data, last_updated`

func scanCard(row pgx.Row) (*models.Card, error) {
	var c models.Card
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.SetCode,
		&c.CollectorNumber,
		&c.ImageURL,
		&c.UsdPrice,
		&c.EurPrice,
		&c.ScryfallData,
		&c.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CardStore) GetByID(ctx context.Context, id string) (*models.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE id = $1
	`

	card, err := scanCard(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get card by id: %w", err)
	}

	return card, nil
}

// GetByExactName returns a single printing for an exact name. When several
// printings share the name, the set_code-descending order makes the pick
// deterministic; callers needing a specific printing must supply set or id.
func (s *CardStore) GetByExactName(ctx context.Context, name string) (*models.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE name = $1
		ORDER BY set_code DESC
		LIMIT 1
	`

	card, err := scanCard(s.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get card by name: %w", err)
	}

	return card, nil
}

// ListByName returns every printing whose name exactly equals name, most
// recent set first.
func (s *CardStore) ListByName(ctx context.Context, name string) ([]*models.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE name = $1
		ORDER BY set_code DESC, collector_number DESC
	`

	rows, err := s.db.Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards by name: %w", err)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}

func (s *CardStore) GetBySetAndNumber(ctx context.Context, setCode, collectorNumber string) (*models.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE set_code = $1 AND collector_number = $2
	`

	card, err := scanCard(s.db.QueryRow(ctx, query, setCode, collectorNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get card by set and number: %w", err)
	}

	return card, nil
}

// Search does a case-insensitive substring match on name, optionally
// constrained to one set.
func (s *CardStore) Search(ctx context.Context, fragment, setFilter string) ([]*models.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE name ILIKE $1
		ORDER BY name, set_code
	`
	args := []interface{}{"%" + fragment + "%"}

	if setFilter != "" {
		query = `
			SELECT ` + cardColumns + `
			FROM cards
			WHERE name ILIKE $1 AND set_code = $2
			ORDER BY name, set_code
		`
		args = append(args, setFilter)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}

func (s *CardStore) Create(ctx context.Context, card *models.Card) (*models.Card, error) {
	query := `
		INSERT INTO cards
			(id, name, set_code, collector_number, image_url, usd_price, eur_price, scryfall_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + cardColumns

	created, err := scanCard(s.db.QueryRow(ctx, query,
		card.ID,
		card.Name,
		card.SetCode,
		card.CollectorNumber,
		card.ImageURL,
		card.UsdPrice,
		card.EurPrice,
		card.ScryfallData,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	return created, nil
}

// Update replaces only the fields the patch carries; nil patch fields keep
// their prior value. Returns nil when the card does not exist.
func (s *CardStore) Update(ctx context.Context, id string, patch models.CardPatch) (*models.Card, error) {
	query := `
		UPDATE cards
		SET
			name = COALESCE($1, name),
			set_code = COALESCE($2, set_code),
			image_url = COALESCE($3, image_url),
			usd_price = COALESCE($4, usd_price),
			eur_price = COALESCE($5, eur_price),
			scryfall_data = COALESCE($6, scryfall_data),
			last_updated = now()
		WHERE id = $7
		RETURNING ` + cardColumns

	card, err := scanCard(s.db.QueryRow(ctx, query,
		patch.Name,
		patch.SetCode,
		patch.ImageURL,
		patch.UsdPrice,
		patch.EurPrice,
		patch.ScryfallData,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update card: %w", err)
	}

	return card, nil
}

// ReferenceCount counts the ledger rows (deck and binder) referencing a card.
func (s *CardStore) ReferenceCount(ctx context.Context, id string) (int64, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM deck_cards WHERE card_id = $1) +
			(SELECT COUNT(*) FROM binder_cards WHERE card_id = $1)
	`

	var count int64
	if err := s.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count card references: %w", err)
	}

	return count, nil
}

// Delete removes an unreferenced card. Returns nil when the card does not
// exist. Callers must check ReferenceCount first; a referenced card fails on
// the ledger FK constraints.
func (s *CardStore) Delete(ctx context.Context, id string) (*models.Card, error) {
	query := `DELETE FROM cards WHERE id = $1 RETURNING ` + cardColumns

	card, err := scanCard(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete card: %w", err)
	}

	return card, nil
}

// DeleteCascade removes every ledger row referencing the card and then the
// card itself, in one transaction, so a concurrent reader never sees an
// orphaned ledger row. Returns nil when the card does not exist.
func (s *CardStore) DeleteCascade(ctx context.Context, id string) (*models.Card, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin cascade delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM deck_cards WHERE card_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete deck ledger rows: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM binder_cards WHERE card_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete binder ledger rows: %w", err)
	}

	card, err := scanCard(tx.QueryRow(ctx, `DELETE FROM cards WHERE id = $1 RETURNING `+cardColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete card: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit cascade delete: %w", err)
	}

	return card, nil
}
