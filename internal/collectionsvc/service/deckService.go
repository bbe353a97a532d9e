package service

import (
	"context"

	"github.com/cardtrove/collection-services/internal/collectionsvc/apperr"
	"github.com/cardtrove/collection-services/internal/collectionsvc/models"
)

// DeckRegistry is the store surface the deck service needs. Implemented by
// store.DeckStore; faked in tests.
type DeckRegistry interface {
	ListByOwner(ctx context.Context, userID int64) ([]*models.Deck, error)
	GetByID(ctx context.Context, id int64) (*models.Deck, error)
	GetByName(ctx context.Context, userID int64, name string) (*models.Deck, error)
	SearchByName(ctx context.Context, userID int64, fragment string) ([]*models.Deck, error)
	Create(ctx context.Context, deck *models.Deck) (*models.Deck, error)
	Update(ctx context.Context, id int64, patch models.DeckPatch) (*models.Deck, error)
	Delete(ctx context.Context, id int64) (*models.Deck, error)
	AddCard(ctx context.Context, deckID int64, cardID string, quantity int, isSideboard bool) (*models.DeckCard, error)
	RemoveCard(ctx context.Context, deckID int64, cardID string, quantity int, isSideboard bool) (*models.DeckCard, bool, error)
	ListCards(ctx context.Context, deckID int64) ([]models.DeckCardDetail, error)
	ListCardsByBoard(ctx context.Context, deckID int64, isSideboard bool) ([]models.DeckCardDetail, error)
}

type DeckService struct {
	store    DeckRegistry
	resolver CardResolver
}

func NewDeckService(store DeckRegistry, resolver CardResolver) *DeckService {
	return &DeckService{store: store, resolver: resolver}
}

func (s *DeckService) List(ctx context.Context, ownerID int64) ([]*models.Deck, error) {
	decks, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal("failed to list decks", err)
	}
	return decks, nil
}

// Get returns the deck with its ledger split into mainboard and sideboard.
func (s *DeckService) Get(ctx context.Context, id int64) (*models.DeckDetail, error) {
	deck, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("deck lookup failed", err)
	}
	if deck == nil {
		return nil, apperr.NotFound("deck %d not found", id)
	}

	cards, err := s.store.ListCards(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to list deck cards", err)
	}

	detail := &models.DeckDetail{
		Deck:      *deck,
		Mainboard: []models.DeckCardDetail{},
		Sideboard: []models.DeckCardDetail{},
	}
	for _, c := range cards {
		if c.IsSideboard {
			detail.Sideboard = append(detail.Sideboard, c)
		} else {
			detail.Mainboard = append(detail.Mainboard, c)
		}
	}
	return detail, nil
}

func (s *DeckService) GetByName(ctx context.Context, ownerID int64, name string) (*models.Deck, error) {
	if name == "" {
		return nil, apperr.Invalid("deck name is required")
	}

	deck, err := s.store.GetByName(ctx, ownerID, name)
	if err != nil {
		return nil, apperr.Internal("deck lookup failed", err)
	}
	if deck == nil {
		return nil, apperr.NotFound("deck %q not found", name)
	}
	return deck, nil
}

func (s *DeckService) Search(ctx context.Context, ownerID int64, fragment string) ([]*models.Deck, error) {
	if fragment == "" {
		return nil, apperr.Invalid("search query is required")
	}

	decks, err := s.store.SearchByName(ctx, ownerID, fragment)
	if err != nil {
		return nil, apperr.Internal("deck search failed", err)
	}
	return decks, nil
}

func (s *DeckService) Create(ctx context.Context, ownerID int64, name, description, format string) (*models.Deck, error) {
	if name == "" {
		return nil, apperr.Invalid("deck name is required")
	}

	deck, err := s.store.Create(ctx, &models.Deck{
		UserID:      ownerID,
		Name:        name,
		Description: description,
		Format:      format,
	})
	if err != nil {
		return nil, apperr.Internal("failed to create deck", err)
	}
	return deck, nil
}

func (s *DeckService) Update(ctx context.Context, id int64, patch models.DeckPatch) (*models.Deck, error) {
	deck, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, apperr.Internal("failed to update deck", err)
	}
	if deck == nil {
		return nil, apperr.NotFound("deck %d not found", id)
	}
	return deck, nil
}

// Delete removes the deck and all of its ledger rows, returning the deleted
// deck for confirmation.
func (s *DeckService) Delete(ctx context.Context, id int64) (*models.Deck, error) {
	deck, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to delete deck", err)
	}
	if deck == nil {
		return nil, apperr.NotFound("deck %d not found", id)
	}
	return deck, nil
}

// AddCard resolves the card reference and merges the quantity into the
// (deck, card, board) ledger row. Quantity defaults to 1.
func (s *DeckService) AddCard(ctx context.Context, deckID int64, cardRef, setCode string, quantity int, isSideboard bool) (*models.DeckCard, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, apperr.Invalid("quantity must be positive")
	}

	deck, err := s.store.GetByID(ctx, deckID)
	if err != nil {
		return nil, apperr.Internal("deck lookup failed", err)
	}
	if deck == nil {
		return nil, apperr.NotFound("deck %d not found", deckID)
	}

	card, err := s.resolver.Resolve(ctx, cardRef, setCode)
	if err != nil {
		return nil, err
	}

	row, err := s.store.AddCard(ctx, deckID, card.ID, quantity, isSideboard)
	if err != nil {
		return nil, apperr.Internal("failed to add card to deck", err)
	}
	return row, nil
}

// RemoveCard takes quantity copies of a card out of one board; the row is
// deleted when the removal covers it. Returns the resulting row and whether
// it was removed entirely.
func (s *DeckService) RemoveCard(ctx context.Context, deckID int64, cardID string, quantity int, isSideboard bool) (*models.DeckCard, bool, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, false, apperr.Invalid("quantity must be positive")
	}

	deck, err := s.store.GetByID(ctx, deckID)
	if err != nil {
		return nil, false, apperr.Internal("deck lookup failed", err)
	}
	if deck == nil {
		return nil, false, apperr.NotFound("deck %d not found", deckID)
	}

	row, removed, err := s.store.RemoveCard(ctx, deckID, cardID, quantity, isSideboard)
	if err != nil {
		return nil, false, apperr.Internal("failed to remove card from deck", err)
	}
	if row == nil {
		return nil, false, apperr.NotFound("card not in deck")
	}
	return row, removed, nil
}

func (s *DeckService) ListCards(ctx context.Context, deckID int64) ([]models.DeckCardDetail, error) {
	deck, err := s.store.GetByID(ctx, deckID)
	if err != nil {
		return nil, apperr.Internal("deck lookup failed", err)
	}
	if deck == nil {
		return nil, apperr.NotFound("deck %d not found", deckID)
	}

	cards, err := s.store.ListCards(ctx, deckID)
	if err != nil {
		return nil, apperr.Internal("failed to list deck cards", err)
	}
	return cards, nil
}

// ListBoard returns only the mainboard or only the sideboard rows.
func (s *DeckService) ListBoard(ctx context.Context, deckID int64, isSideboard bool) ([]models.DeckCardDetail, error) {
	deck, err := s.store.GetByID(ctx, deckID)
	if err != nil {
		return nil, apperr.Internal("deck lookup failed", err)
	}
	if deck == nil {
		return nil, apperr.NotFound("deck %d not found", deckID)
	}

	cards, err := s.store.ListCardsByBoard(ctx, deckID, isSideboard)
	if err != nil {
		return nil, apperr.Internal("failed to list deck board", err)
	}
	return cards, nil
}
