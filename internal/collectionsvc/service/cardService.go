package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid"
	guuid "github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/cardtrove/collection-services/internal/collectionsvc/apperr"
	"github.com/cardtrove/collection-services/internal/collectionsvc/models"
	"github.com/cardtrove/collection-services/internal/collectionsvc/scryfall"
)

// CardCatalog is the store surface the card service needs. Implemented by
// store.CardStore; faked in tests.
type CardCatalog interface {
	GetByID(ctx context.Context, id string) (*models.Card, error)
	GetByExactName(ctx context.Context, name string) (*models.Card, error)
	ListByName(ctx context.Context, name string) ([]*models.Card, error)
	GetBySetAndNumber(ctx context.Context, setCode, collectorNumber string) (*models.Card, error)
	Search(ctx context.Context, fragment, setFilter string) ([]*models.Card, error)
	Create(ctx context.Context, card *models.Card) (*models.Card, error)
	Update(ctx context.Context, id string, patch models.CardPatch) (*models.Card, error)
	ReferenceCount(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) (*models.Card, error)
	DeleteCascade(ctx context.Context, id string) (*models.Card, error)
}

// CardResolver turns a flexible card reference (id, exact name, or name plus
// set) into exactly one catalog row. Satisfied by CardService and shared by
// every mutation path that accepts such a reference.
type CardResolver interface {
	Resolve(ctx context.Context, ref, setCode string) (*models.Card, error)
}

type CardService struct {
	store    CardCatalog
	provider scryfall.Client
}

func NewCardService(store CardCatalog, provider scryfall.Client) *CardService {
	return &CardService{store: store, provider: provider}
}

func (s *CardService) Get(ctx context.Context, id string) (*models.Card, error) {
	card, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("card lookup failed", err)
	}
	if card == nil {
		return nil, apperr.NotFound("card %s not found", id)
	}
	return card, nil
}

// Resolve applies the disambiguation policy:
//   - a UUID-shaped reference is an id lookup, authoritative
//   - otherwise every printing with that exact name is fetched; the optional
//     set qualifier narrows them case-insensitively
//   - one match wins; several matches without a set qualifier come back as
//     an ambiguous error carrying the candidate printings
func (s *CardService) Resolve(ctx context.Context, ref, setCode string) (*models.Card, error) {
	if ref == "" {
		return nil, apperr.Invalid("card reference is required")
	}

	if _, err := guuid.Parse(ref); err == nil {
		card, err := s.store.GetByID(ctx, ref)
		if err != nil {
			return nil, apperr.Internal("card lookup failed", err)
		}
		if card == nil {
			return nil, apperr.NotFound("card %s not found", ref)
		}
		return card, nil
	}

	printings, err := s.store.ListByName(ctx, ref)
	if err != nil {
		return nil, apperr.Internal("card lookup failed", err)
	}

	matches := printings
	if setCode != "" {
		matches = nil
		for _, p := range printings {
			if strings.EqualFold(p.SetCode, setCode) {
				matches = append(matches, p)
			}
		}
	}

	switch {
	case len(matches) == 0:
		if setCode != "" && len(printings) > 0 {
			return nil, apperr.NotFound("card %q has no printing in set %q", ref, setCode)
		}
		return nil, apperr.NotFound("card %q not found", ref)
	case len(matches) == 1 || setCode != "":
		// with a set qualifier the list order (set_code, collector_number
		// descending) makes the pick deterministic
		return matches[0], nil
	default:
		candidates := make([]apperr.Candidate, 0, len(matches))
		for _, p := range matches {
			candidates = append(candidates, apperr.Candidate{
				ID:       p.ID,
				Name:     p.Name,
				SetCode:  p.SetCode,
				ImageURL: p.ImageURL,
			})
		}
		return nil, apperr.Ambiguous("card name matches multiple printings, supply a set code", candidates)
	}
}

// CreateFromScryfall looks the card up at the provider by exact name and
// ingests it into the local catalog. Fails with a conflict when the printing
// already exists locally.
func (s *CardService) CreateFromScryfall(ctx context.Context, name, setCode string) (*models.Card, error) {
	if name == "" {
		return nil, apperr.Invalid("card name is required")
	}

	data, err := s.provider.NamedExact(ctx, name, setCode)
	if err != nil {
		if errors.Is(err, scryfall.ErrNotFound) {
			return nil, apperr.Upstream("card not found at provider", err)
		}
		return nil, apperr.Upstream("provider lookup failed", err)
	}

	id := data.ID
	if id == "" {
		// provider payloads always carry an id in practice; generate one as
		// a local fallback so identity stays stable
		local, err := uuid.NewV4()
		if err != nil {
			return nil, apperr.Internal("failed to generate card id", err)
		}
		id = local.String()
	}

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("card lookup failed", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("card %q (%s) already exists in the collection", existing.Name, existing.ID)
	}

	if data.SetCode != "" && data.CollectorNumber != "" {
		dup, err := s.store.GetBySetAndNumber(ctx, data.SetCode, data.CollectorNumber)
		if err != nil {
			return nil, apperr.Internal("card lookup failed", err)
		}
		if dup != nil {
			return nil, apperr.Conflict("printing %s/%s already exists as card %s", data.SetCode, data.CollectorNumber, dup.ID)
		}
	}

	card, err := s.store.Create(ctx, &models.Card{
		ID:              id,
		Name:            data.Name,
		SetCode:         data.SetCode,
		CollectorNumber: data.CollectorNumber,
		ImageURL:        data.ImageURL,
		UsdPrice:        data.UsdPrice,
		EurPrice:        data.EurPrice,
		ScryfallData:    data.Raw,
	})
	if err != nil {
		return nil, apperr.Internal("failed to create card", err)
	}

	log.Infof("card %q (%s) ingested from provider", card.Name, card.ID)
	return card, nil
}

// Update resolves a flexible reference and applies a partial update to the
// card's descriptive fields.
func (s *CardService) Update(ctx context.Context, ref, setCode string, patch models.CardPatch) (*models.Card, error) {
	card, err := s.Resolve(ctx, ref, setCode)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, card.ID, patch)
	if err != nil {
		return nil, apperr.Internal("failed to update card", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("card %s not found", card.ID)
	}
	return updated, nil
}

// Delete resolves a flexible reference and removes the card. A card still
// referenced by any ledger row is protected; force removes the referencing
// rows and the card atomically.
func (s *CardService) Delete(ctx context.Context, ref, setCode string, force bool) (*models.Card, error) {
	card, err := s.Resolve(ctx, ref, setCode)
	if err != nil {
		return nil, err
	}

	refs, err := s.store.ReferenceCount(ctx, card.ID)
	if err != nil {
		return nil, apperr.Internal("failed to count card references", err)
	}
	if refs > 0 && !force {
		return nil, apperr.Conflict("card %q is referenced by %d collection row(s); remove it from decks and binders first or force the delete", card.Name, refs)
	}

	var deleted *models.Card
	if force {
		deleted, err = s.store.DeleteCascade(ctx, card.ID)
	} else {
		deleted, err = s.store.Delete(ctx, card.ID)
	}
	if err != nil {
		return nil, apperr.Internal("failed to delete card", err)
	}
	if deleted == nil {
		return nil, apperr.NotFound("card %s not found", card.ID)
	}
	return deleted, nil
}

func (s *CardService) Search(ctx context.Context, fragment, setFilter string) ([]*models.Card, error) {
	if fragment == "" {
		return nil, apperr.Invalid("search query is required")
	}

	cards, err := s.store.Search(ctx, fragment, setFilter)
	if err != nil {
		return nil, apperr.Internal("card search failed", err)
	}
	return cards, nil
}

func (s *CardService) GetBySetAndNumber(ctx context.Context, setCode, collectorNumber string) (*models.Card, error) {
	if setCode == "" || collectorNumber == "" {
		return nil, apperr.Invalid("set code and collector number are required")
	}

	card, err := s.store.GetBySetAndNumber(ctx, setCode, collectorNumber)
	if err != nil {
		return nil, apperr.Internal("card lookup failed", err)
	}
	if card == nil {
		return nil, apperr.NotFound("no card %s/%s", setCode, collectorNumber)
	}
	return card, nil
}
