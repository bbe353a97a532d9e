package service

import (
	"context"
	"strings"

	"github.com/cardtrove/collection-services/internal/collectionsvc/apperr"
	"github.com/cardtrove/collection-services/internal/collectionsvc/models"
)

// DefaultCondition is the grade assumed when a caller adds copies without
// stating one.
const DefaultCondition = "NM"

// condition grades, best to worst
var validConditions = map[string]bool{
	"NM":  true,
	"LP":  true,
	"MP":  true,
	"HP":  true,
	"DMG": true,
}

// BinderRegistry is the store surface the binder service needs. Implemented
// by store.BinderStore; faked in tests.
type BinderRegistry interface {
	ListByOwner(ctx context.Context, userID int64) ([]*models.BinderSummary, error)
	GetByID(ctx context.Context, id int64) (*models.Binder, error)
	GetByName(ctx context.Context, userID int64, name string) (*models.Binder, error)
	SearchByName(ctx context.Context, userID int64, fragment string) ([]*models.Binder, error)
	Create(ctx context.Context, binder *models.Binder) (*models.Binder, error)
	Update(ctx context.Context, id int64, patch models.BinderPatch) (*models.Binder, error)
	Delete(ctx context.Context, id int64) (*models.Binder, error)
	AddCard(ctx context.Context, binderID int64, cardID string, quantity int, condition, notes string) (*models.BinderCard, error)
	RemoveCard(ctx context.Context, binderID int64, cardID string, quantity int) (*models.BinderCard, bool, error)
	ListCards(ctx context.Context, binderID int64) ([]models.BinderCardDetail, error)
	ListCardsByCondition(ctx context.Context, binderID int64, condition string) ([]models.BinderCardDetail, error)
}

type BinderService struct {
	store    BinderRegistry
	resolver CardResolver
}

func NewBinderService(store BinderRegistry, resolver CardResolver) *BinderService {
	return &BinderService{store: store, resolver: resolver}
}

func (s *BinderService) List(ctx context.Context, ownerID int64) ([]*models.BinderSummary, error) {
	binders, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal("failed to list binders", err)
	}
	return binders, nil
}

// Get returns the binder with its full ledger.
func (s *BinderService) Get(ctx context.Context, id int64) (*models.BinderDetail, error) {
	binder, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("binder lookup failed", err)
	}
	if binder == nil {
		return nil, apperr.NotFound("binder %d not found", id)
	}

	cards, err := s.store.ListCards(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to list binder cards", err)
	}
	if cards == nil {
		cards = []models.BinderCardDetail{}
	}

	return &models.BinderDetail{Binder: *binder, Cards: cards}, nil
}

func (s *BinderService) GetByName(ctx context.Context, ownerID int64, name string) (*models.Binder, error) {
	if name == "" {
		return nil, apperr.Invalid("binder name is required")
	}

	binder, err := s.store.GetByName(ctx, ownerID, name)
	if err != nil {
		return nil, apperr.Internal("binder lookup failed", err)
	}
	if binder == nil {
		return nil, apperr.NotFound("binder %q not found", name)
	}
	return binder, nil
}

func (s *BinderService) Search(ctx context.Context, ownerID int64, fragment string) ([]*models.Binder, error) {
	if fragment == "" {
		return nil, apperr.Invalid("search query is required")
	}

	binders, err := s.store.SearchByName(ctx, ownerID, fragment)
	if err != nil {
		return nil, apperr.Internal("binder search failed", err)
	}
	return binders, nil
}

func (s *BinderService) Create(ctx context.Context, ownerID int64, name, description string) (*models.Binder, error) {
	if name == "" {
		return nil, apperr.Invalid("binder name is required")
	}

	binder, err := s.store.Create(ctx, &models.Binder{
		UserID:      ownerID,
		Name:        name,
		Description: description,
	})
	if err != nil {
		return nil, apperr.Internal("failed to create binder", err)
	}
	return binder, nil
}

func (s *BinderService) Update(ctx context.Context, id int64, patch models.BinderPatch) (*models.Binder, error) {
	binder, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, apperr.Internal("failed to update binder", err)
	}
	if binder == nil {
		return nil, apperr.NotFound("binder %d not found", id)
	}
	return binder, nil
}

// Delete removes the binder and all of its ledger rows, returning the
// deleted binder for confirmation.
func (s *BinderService) Delete(ctx context.Context, id int64) (*models.Binder, error) {
	binder, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to delete binder", err)
	}
	if binder == nil {
		return nil, apperr.NotFound("binder %d not found", id)
	}
	return binder, nil
}

// AddCard resolves the card reference and merges the quantity into the
// binder's row for that card. Quantity defaults to 1, condition to NM.
// Condition and notes overwrite whatever the row carried before.
func (s *BinderService) AddCard(ctx context.Context, binderID int64, cardRef, setCode string, quantity int, condition, notes string) (*models.BinderCard, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, apperr.Invalid("quantity must be positive")
	}

	condition, err := normalizeCondition(condition)
	if err != nil {
		return nil, err
	}

	binder, err := s.store.GetByID(ctx, binderID)
	if err != nil {
		return nil, apperr.Internal("binder lookup failed", err)
	}
	if binder == nil {
		return nil, apperr.NotFound("binder %d not found", binderID)
	}

	card, err := s.resolver.Resolve(ctx, cardRef, setCode)
	if err != nil {
		return nil, err
	}

	row, err := s.store.AddCard(ctx, binderID, card.ID, quantity, condition, notes)
	if err != nil {
		return nil, apperr.Internal("failed to add card to binder", err)
	}
	return row, nil
}

// RemoveCard takes quantity copies of a card out of the binder; the row is
// deleted when the removal covers it.
func (s *BinderService) RemoveCard(ctx context.Context, binderID int64, cardID string, quantity int) (*models.BinderCard, bool, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, false, apperr.Invalid("quantity must be positive")
	}

	binder, err := s.store.GetByID(ctx, binderID)
	if err != nil {
		return nil, false, apperr.Internal("binder lookup failed", err)
	}
	if binder == nil {
		return nil, false, apperr.NotFound("binder %d not found", binderID)
	}

	row, removed, err := s.store.RemoveCard(ctx, binderID, cardID, quantity)
	if err != nil {
		return nil, false, apperr.Internal("failed to remove card from binder", err)
	}
	if row == nil {
		return nil, false, apperr.NotFound("card not in binder")
	}
	return row, removed, nil
}

func (s *BinderService) ListCards(ctx context.Context, binderID int64) ([]models.BinderCardDetail, error) {
	binder, err := s.store.GetByID(ctx, binderID)
	if err != nil {
		return nil, apperr.Internal("binder lookup failed", err)
	}
	if binder == nil {
		return nil, apperr.NotFound("binder %d not found", binderID)
	}

	cards, err := s.store.ListCards(ctx, binderID)
	if err != nil {
		return nil, apperr.Internal("failed to list binder cards", err)
	}
	return cards, nil
}

// CardsByCondition returns only the binder rows carrying one grade.
func (s *BinderService) CardsByCondition(ctx context.Context, binderID int64, condition string) ([]models.BinderCardDetail, error) {
	condition, err := normalizeCondition(condition)
	if err != nil {
		return nil, err
	}

	binder, err := s.store.GetByID(ctx, binderID)
	if err != nil {
		return nil, apperr.Internal("binder lookup failed", err)
	}
	if binder == nil {
		return nil, apperr.NotFound("binder %d not found", binderID)
	}

	cards, err := s.store.ListCardsByCondition(ctx, binderID, condition)
	if err != nil {
		return nil, apperr.Internal("failed to list binder cards by condition", err)
	}
	return cards, nil
}

func normalizeCondition(condition string) (string, error) {
	if condition == "" {
		return DefaultCondition, nil
	}
	c := strings.ToUpper(condition)
	if !validConditions[c] {
		return "", apperr.Invalid("unknown condition %q", condition)
	}
	return c, nil
}
