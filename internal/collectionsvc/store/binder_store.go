package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardtrove/collection-services/internal/collectionsvc/models"
)

type BinderStore struct {
	db *pgxpool.Pool
}

func NewBinderStore(db *pgxpool.Pool) *BinderStore {
	return &BinderStore{db: db}
}

const binderColumns = `id, user_id, name, description, created_at, updated_at`

func scanBinder(row pgx.Row) (*models.Binder, error) {
	var b models.Binder
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.Name,
		&b.Description,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByOwner returns the owner's binders with their aggregate card counts,
// ordered by name.
func (s *BinderStore) ListByOwner(ctx context.Context, userID int64) ([]*models.BinderSummary, error) {
	query := `
		SELECT b.id, b.user_id, b.name, b.description, b.created_at, b.updated_at,
		       COUNT(bc.card_id) AS card_count
		FROM binders b
		LEFT JOIN binder_cards bc ON b.id = bc.binder_id
		WHERE b.user_id = $1
		GROUP BY b.id
		ORDER BY b.name
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list binders: %w", err)
	}
	defer rows.Close()

	var binders []*models.BinderSummary
	for rows.Next() {
		var b models.BinderSummary
		err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.Name,
			&b.Description,
			&b.CreatedAt,
			&b.UpdatedAt,
			&b.CardCount,
		)
		if err != nil {
			return nil, err
		}
		binders = append(binders, &b)
	}

	return binders, rows.Err()
}

func (s *BinderStore) GetByID(ctx context.Context, id int64) (*models.Binder, error) {
	query := `
		SELECT ` + binderColumns + `
		FROM binders
		WHERE id = $1
	`

	binder, err := scanBinder(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get binder by id: %w", err)
	}

	return binder, nil
}

// GetByName is exact-match lookup; arbitrary single match under duplicate
// names.
func (s *BinderStore) GetByName(ctx context.Context, userID int64, name string) (*models.Binder, error) {
	query := `
		SELECT ` + binderColumns + `
		FROM binders
		WHERE user_id = $1 AND name = $2
		LIMIT 1
	`

	binder, err := scanBinder(s.db.QueryRow(ctx, query, userID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get binder by name: %w", err)
	}

	return binder, nil
}

func (s *BinderStore) SearchByName(ctx context.Context, userID int64, fragment string) ([]*models.Binder, error) {
	query := `
		SELECT ` + binderColumns + `
		FROM binders
		WHERE user_id = $1 AND name ILIKE $2
		ORDER BY name
	`

	rows, err := s.db.Query(ctx, query, userID, "%"+fragment+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search binders: %w", err)
	}
	defer rows.Close()

	var binders []*models.Binder
	for rows.Next() {
		binder, err := scanBinder(rows)
		if err != nil {
			return nil, err
		}
		binders = append(binders, binder)
	}

	return binders, rows.Err()
}

func (s *BinderStore) Create(ctx context.Context, binder *models.Binder) (*models.Binder, error) {
	query := `
		INSERT INTO binders (user_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING ` + binderColumns

	created, err := scanBinder(s.db.QueryRow(ctx, query, binder.UserID, binder.Name, binder.Description))
	if err != nil {
		return nil, fmt.Errorf("failed to create binder: %w", err)
	}

	return created, nil
}

func (s *BinderStore) Update(ctx context.Context, id int64, patch models.BinderPatch) (*models.Binder, error) {
	query := `
		UPDATE binders
		SET
			name = COALESCE($1, name),
			description = COALESCE($2, description),
			updated_at = now()
		WHERE id = $3
		RETURNING ` + binderColumns

	binder, err := scanBinder(s.db.QueryRow(ctx, query, patch.Name, patch.Description, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update binder: %w", err)
	}

	return binder, nil
}

// Delete removes the binder's ledger rows and then the binder, in one
// transaction. Returns the deleted binder, or nil when it does not exist.
func (s *BinderStore) Delete(ctx context.Context, id int64) (*models.Binder, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin binder delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM binder_cards WHERE binder_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete binder ledger rows: %w", err)
	}

	binder, err := scanBinder(tx.QueryRow(ctx, `DELETE FROM binders WHERE id = $1 RETURNING `+binderColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete binder: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit binder delete: %w", err)
	}

	return binder, nil
}

func scanBinderCard(row pgx.Row) (*models.BinderCard, error) {
	var bc models.BinderCard
	err := row.Scan(&bc.BinderID, &bc.CardID, &bc.Quantity, &bc.Condition, &bc.Notes)
	if err != nil {
		return nil, err
	}
	return &bc, nil
}

// AddCard upserts a binder ledger row keyed on (binder_id, card_id).
// Quantities add up; condition and notes are overwritten by the new values
// (last write wins on metadata). A single statement, so concurrent adds of
// the same card both land.
func (s *BinderStore) AddCard(ctx context.Context, binderID int64, cardID string, quantity int, condition, notes string) (*models.BinderCard, error) {
	query := `
		INSERT INTO binder_cards (binder_id, card_id, quantity, condition, notes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (binder_id, card_id)
		DO UPDATE SET
			quantity = binder_cards.quantity + EXCLUDED.quantity,
			condition = EXCLUDED.condition,
			notes = EXCLUDED.notes
		RETURNING binder_id, card_id, quantity, condition, notes
	`

	row, err := scanBinderCard(s.db.QueryRow(ctx, query, binderID, cardID, quantity, condition, notes))
	if err != nil {
		return nil, fmt.Errorf("failed to add card to binder: %w", err)
	}

	return row, nil
}

// RemoveCard decrements a ledger row or deletes it when the removal covers
// the whole quantity, holding a row lock so concurrent mutations cannot
// interleave. Returns (nil, false) when the card is not in the binder.
func (s *BinderStore) RemoveCard(ctx context.Context, binderID int64, cardID string, quantity int) (*models.BinderCard, bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin card removal: %w", err)
	}
	defer tx.Rollback(ctx)

	existing, err := scanBinderCard(tx.QueryRow(ctx, `
		SELECT binder_id, card_id, quantity, condition, notes
		FROM binder_cards
		WHERE binder_id = $1 AND card_id = $2
		FOR UPDATE
	`, binderID, cardID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to lock binder ledger row: %w", err)
	}

	var result *models.BinderCard
	removed := existing.Quantity <= quantity
	if removed {
		result, err = scanBinderCard(tx.QueryRow(ctx, `
			DELETE FROM binder_cards
			WHERE binder_id = $1 AND card_id = $2
			RETURNING binder_id, card_id, quantity, condition, notes
		`, binderID, cardID))
	} else {
		result, err = scanBinderCard(tx.QueryRow(ctx, `
			UPDATE binder_cards
			SET quantity = quantity - $3
			WHERE binder_id = $1 AND card_id = $2
			RETURNING binder_id, card_id, quantity, condition, notes
		`, binderID, cardID, quantity))
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to remove card from binder: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit card removal: %w", err)
	}

	return result, removed, nil
}

const binderCardDetailQuery = `
	SELECT
		c.id,
		c.name,
		c.set_code,
		c.image_url,
		c.usd_price,
		c.eur_price,
		bc.quantity,
		bc.condition,
		bc.notes
	FROM binder_cards bc
	JOIN cards c ON bc.card_id = c.id
`

func collectBinderCardDetails(rows pgx.Rows) ([]models.BinderCardDetail, error) {
	defer rows.Close()

	var cards []models.BinderCardDetail
	for rows.Next() {
		var d models.BinderCardDetail
		err := rows.Scan(
			&d.CardID,
			&d.Name,
			&d.SetCode,
			&d.ImageURL,
			&d.UsdPrice,
			&d.EurPrice,
			&d.Quantity,
			&d.Condition,
			&d.Notes,
		)
		if err != nil {
			return nil, err
		}
		cards = append(cards, d)
	}

	return cards, rows.Err()
}

// ListCards returns the binder's ledger joined with card fields, ordered by
// card name.
func (s *BinderStore) ListCards(ctx context.Context, binderID int64) ([]models.BinderCardDetail, error) {
	rows, err := s.db.Query(ctx, binderCardDetailQuery+`
		WHERE bc.binder_id = $1
		ORDER BY c.name
	`, binderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list binder cards: %w", err)
	}

	return collectBinderCardDetails(rows)
}

// ListCardsByCondition returns only rows of one condition grade.
func (s *BinderStore) ListCardsByCondition(ctx context.Context, binderID int64, condition string) ([]models.BinderCardDetail, error) {
	rows, err := s.db.Query(ctx, binderCardDetailQuery+`
		WHERE bc.binder_id = $1 AND bc.condition = $2
		ORDER BY c.name
	`, binderID, condition)
	if err != nil {
		return nil, fmt.Errorf("failed to list binder cards by condition: %w", err)
	}

	return collectBinderCardDetails(rows)
}
