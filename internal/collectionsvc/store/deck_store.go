package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardtrove/collection-services/internal/collectionsvc/models"
)

type DeckStore struct {
	db *pgxpool.Pool
}

func NewDeckStore(db *pgxpool.Pool) *DeckStore {
	return &DeckStore{db: db}
}

const deckColumns = `id, user_id, name, description, format, created_at, updated_at`

func scanDeck(row pgx.Row) (*models.Deck, error) {
	var d models.Deck
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Name,
		&d.Description,
		&d.Format,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DeckStore) ListByOwner(ctx context.Context, userID int64) ([]*models.Deck, error) {
	query := `
		SELECT ` + deckColumns + `
		FROM decks
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var decks []*models.Deck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, deck)
	}

	return decks, rows.Err()
}

func (s *DeckStore) GetByID(ctx context.Context, id int64) (*models.Deck, error) {
	query := `
		SELECT ` + deckColumns + `
		FROM decks
		WHERE id = $1
	`

	deck, err := scanDeck(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get deck by id: %w", err)
	}

	return deck, nil
}

// GetByName is exact-match lookup. Duplicate names per owner are tolerated;
// the first match in insertion order is returned, so callers needing a
// specific deck should resolve by id.
func (s *DeckStore) GetByName(ctx context.Context, userID int64, name string) (*models.Deck, error) {
	query := `
		SELECT ` + deckColumns + `
		FROM decks
		WHERE user_id = $1 AND name = $2
		LIMIT 1
	`

	deck, err := scanDeck(s.db.QueryRow(ctx, query, userID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get deck by name: %w", err)
	}

	return deck, nil
}

func (s *DeckStore) SearchByName(ctx context.Context, userID int64, fragment string) ([]*models.Deck, error) {
	query := `
		SELECT ` + deckColumns + `
		FROM decks
		WHERE user_id = $1 AND name ILIKE $2
		ORDER BY name
	`

	rows, err := s.db.Query(ctx, query, userID, "%"+fragment+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search decks: %w", err)
	}
	defer rows.Close()

	var decks []*models.Deck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, deck)
	}

	return decks, rows.Err()
}

func (s *DeckStore) Create(ctx context.Context, deck *models.Deck) (*models.Deck, error) {
	query := `
		INSERT INTO decks (user_id, name, description, format)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + deckColumns

	created, err := scanDeck(s.db.QueryRow(ctx, query, deck.UserID, deck.Name, deck.Description, deck.Format))
	if err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}

	return created, nil
}

func (s *DeckStore) Update(ctx context.Context, id int64, patch models.DeckPatch) (*models.Deck, error) {
	query := `
		UPDATE decks
		SET
			name = COALESCE($1, name),
			description = COALESCE($2, description),
			format = COALESCE($3, format),
			updated_at = now()
		WHERE id = $4
		RETURNING ` + deckColumns

	deck, err := scanDeck(s.db.QueryRow(ctx, query, patch.Name, patch.Description, patch.Format, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update deck: %w", err)
	}

	return deck, nil
}

// Delete removes the deck's ledger rows and then the deck, in one
// transaction. Returns the deleted deck, or nil when it does not exist.
func (s *DeckStore) Delete(ctx context.Context, id int64) (*models.Deck, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin deck delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM deck_cards WHERE deck_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete deck ledger rows: %w", err)
	}

	deck, err := scanDeck(tx.QueryRow(ctx, `DELETE FROM decks WHERE id = $1 RETURNING `+deckColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete deck: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit deck delete: %w", err)
	}

	return deck, nil
}

func scanDeckCard(row pgx.Row) (*models.DeckCard, error) {
	var dc models.DeckCard
	err := row.Scan(&dc.DeckID, &dc.CardID, &dc.Quantity, &dc.IsSideboard)
	if err != nil {
		return nil, err
	}
	return &dc, nil
}

// AddCard upserts a deck ledger row keyed on (deck_id, card_id,
// is_sideboard). Quantities add up; two concurrent adds of the same card
// both land because the merge is a single statement.
func (s *DeckStore) AddCard(ctx context.Context, deckID int64, cardID string, quantity int, isSideboard bool) (*models.DeckCard, error) {
	query := `
		INSERT INTO deck_cards (deck_id, card_id, quantity, is_sideboard)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (deck_id, card_id, is_sideboard)
		DO UPDATE SET
			quantity = deck_cards.quantity + EXCLUDED.quantity
		RETURNING deck_id, card_id, quantity, is_sideboard
	`

	row, err := scanDeckCard(s.db.QueryRow(ctx, query, deckID, cardID, quantity, isSideboard))
	if err != nil {
		return nil, fmt.Errorf("failed to add card to deck: %w", err)
	}

	return row, nil
}

// RemoveCard decrements a ledger row or deletes it when the removal covers
// the whole quantity. The row is locked for the duration so a concurrent
// add or remove cannot interleave. Returns the deleted or updated row and
// whether the row was removed entirely; (nil, false) when the card is not
// in the deck's board.
func (s *DeckStore) RemoveCard(ctx context.Context, deckID int64, cardID string, quantity int, isSideboard bool) (*models.DeckCard, bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin card removal: %w", err)
	}
	defer tx.Rollback(ctx)

	existing, err := scanDeckCard(tx.QueryRow(ctx, `
		SELECT deck_id, card_id, quantity, is_sideboard
		FROM deck_cards
		WHERE deck_id = $1 AND card_id = $2 AND is_sideboard = $3
		FOR UPDATE
	`, deckID, cardID, isSideboard))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to lock deck ledger row: %w", err)
	}

	var result *models.DeckCard
	removed := existing.Quantity <= quantity
	if removed {
		result, err = scanDeckCard(tx.QueryRow(ctx, `
			DELETE FROM deck_cards
			WHERE deck_id = $1 AND card_id = $2 AND is_sideboard = $3
			RETURNING deck_id, card_id, quantity, is_sideboard
		`, deckID, cardID, isSideboard))
	} else {
		result, err = scanDeckCard(tx.QueryRow(ctx, `
			UPDATE deck_cards
			SET quantity = quantity - $4
			WHERE deck_id = $1 AND card_id = $2 AND is_sideboard = $3
			RETURNING deck_id, card_id, quantity, is_sideboard
		`, deckID, cardID, isSideboard, quantity))
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to remove card from deck: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit card removal: %w", err)
	}

	return result, removed, nil
}

const deckCardDetailQuery = `
	SELECT
		c.id,
		c.name,
		c.set_code,
		c.image_url,
		c.usd_price,
		dc.quantity,
		dc.is_sideboard
	FROM deck_cards dc
	JOIN cards c ON dc.card_id = c.id
`

func collectDeckCardDetails(rows pgx.Rows) ([]models.DeckCardDetail, error) {
	defer rows.Close()

	var cards []models.DeckCardDetail
	for rows.Next() {
		var d models.DeckCardDetail
		err := rows.Scan(
			&d.CardID,
			&d.Name,
			&d.SetCode,
			&d.ImageURL,
			&d.UsdPrice,
			&d.Quantity,
			&d.IsSideboard,
		)
		if err != nil {
			return nil, err
		}
		cards = append(cards, d)
	}

	return cards, rows.Err()
}

// ListCards returns the deck's ledger joined with card fields, mainboard
// first, then by card name.
func (s *DeckStore) ListCards(ctx context.Context, deckID int64) ([]models.DeckCardDetail, error) {
	rows, err := s.db.Query(ctx, deckCardDetailQuery+`
		WHERE dc.deck_id = $1
		ORDER BY dc.is_sideboard, c.name
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deck cards: %w", err)
	}

	return collectDeckCardDetails(rows)
}

// ListCardsByBoard returns only one board's rows.
func (s *DeckStore) ListCardsByBoard(ctx context.Context, deckID int64, isSideboard bool) ([]models.DeckCardDetail, error) {
	rows, err := s.db.Query(ctx, deckCardDetailQuery+`
		WHERE dc.deck_id = $1 AND dc.is_sideboard = $2
		ORDER BY c.name
	`, deckID, isSideboard)
	if err != nil {
		return nil, fmt.Errorf("failed to list deck board: %w", err)
	}

	return collectDeckCardDetails(rows)
}
