package service

import (
	"context"
	"sort"
	"strings"

	"github.com/cardtrove/collection-services/internal/collectionsvc/models"
	"github.com/cardtrove/collection-services/internal/collectionsvc/scryfall"
)

// In-memory store fakes. They mirror the documented store contracts: the
// ledger upserts merge quantities, removals delete or decrement, container
// deletes cascade.

type fakeCardCatalog struct {
	cards map[string]*models.Card
	decks *fakeDeckRegistry
	binds *fakeBinderRegistry
}

func newFakeCardCatalog(cards ...*models.Card) *fakeCardCatalog {
	f := &fakeCardCatalog{cards: make(map[string]*models.Card)}
	for _, c := range cards {
		f.cards[c.ID] = c
	}
	return f
}

func sortPrintings(cards []*models.Card) {
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].SetCode != cards[j].SetCode {
			return cards[i].SetCode > cards[j].SetCode
		}
		return cards[i].CollectorNumber > cards[j].CollectorNumber
	})
}

func (f *fakeCardCatalog) GetByID(ctx context.Context, id string) (*models.Card, error) {
	return f.cards[id], nil
}

func (f *fakeCardCatalog) GetByExactName(ctx context.Context, name string) (*models.Card, error) {
	printings, _ := f.ListByName(ctx, name)
	if len(printings) == 0 {
		return nil, nil
	}
	return printings[0], nil
}

func (f *fakeCardCatalog) ListByName(ctx context.Context, name string) ([]*models.Card, error) {
	var printings []*models.Card
	for _, c := range f.cards {
		if c.Name == name {
			printings = append(printings, c)
		}
	}
	sortPrintings(printings)
	return printings, nil
}

func (f *fakeCardCatalog) GetBySetAndNumber(ctx context.Context, setCode, collectorNumber string) (*models.Card, error) {
	for _, c := range f.cards {
		if c.SetCode == setCode && c.CollectorNumber == collectorNumber {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCardCatalog) Search(ctx context.Context, fragment, setFilter string) ([]*models.Card, error) {
	var matches []*models.Card
	for _, c := range f.cards {
		if !strings.Contains(strings.ToLower(c.Name), strings.ToLower(fragment)) {
			continue
		}
		if setFilter != "" && c.SetCode != setFilter {
			continue
		}
		matches = append(matches, c)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Name != matches[j].Name {
			return matches[i].Name < matches[j].Name
		}
		return matches[i].SetCode < matches[j].SetCode
	})
	return matches, nil
}

func (f *fakeCardCatalog) Create(ctx context.Context, card *models.Card) (*models.Card, error) {
	cp := *card
	f.cards[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeCardCatalog) Update(ctx context.Context, id string, patch models.CardPatch) (*models.Card, error) {
	c, ok := f.cards[id]
	if !ok {
		return nil, nil
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.SetCode != nil {
		c.SetCode = *patch.SetCode
	}
	if patch.ImageURL != nil {
		c.ImageURL = *patch.ImageURL
	}
	if patch.UsdPrice != nil {
		c.UsdPrice = *patch.UsdPrice
	}
	if patch.EurPrice != nil {
		c.EurPrice = *patch.EurPrice
	}
	if patch.ScryfallData != nil {
		c.ScryfallData = patch.ScryfallData
	}
	return c, nil
}

func (f *fakeCardCatalog) ReferenceCount(ctx context.Context, id string) (int64, error) {
	var count int64
	if f.decks != nil {
		for _, row := range f.decks.rows {
			if row.CardID == id {
				count++
			}
		}
	}
	if f.binds != nil {
		for _, row := range f.binds.rows {
			if row.CardID == id {
				count++
			}
		}
	}
	return count, nil
}

func (f *fakeCardCatalog) Delete(ctx context.Context, id string) (*models.Card, error) {
	c, ok := f.cards[id]
	if !ok {
		return nil, nil
	}
	delete(f.cards, id)
	return c, nil
}

func (f *fakeCardCatalog) DeleteCascade(ctx context.Context, id string) (*models.Card, error) {
	if f.decks != nil {
		for key, row := range f.decks.rows {
			if row.CardID == id {
				delete(f.decks.rows, key)
			}
		}
	}
	if f.binds != nil {
		for key, row := range f.binds.rows {
			if row.CardID == id {
				delete(f.binds.rows, key)
			}
		}
	}
	return f.Delete(ctx, id)
}

type deckRowKey struct {
	deckID      int64
	cardID      string
	isSideboard bool
}

type fakeDeckRegistry struct {
	catalog *fakeCardCatalog
	decks   map[int64]*models.Deck
	rows    map[deckRowKey]*models.DeckCard
	nextID  int64
}

func newFakeDeckRegistry(catalog *fakeCardCatalog) *fakeDeckRegistry {
	f := &fakeDeckRegistry{
		catalog: catalog,
		decks:   make(map[int64]*models.Deck),
		rows:    make(map[deckRowKey]*models.DeckCard),
	}
	if catalog != nil {
		catalog.decks = f
	}
	return f
}

func (f *fakeDeckRegistry) ListByOwner(ctx context.Context, userID int64) ([]*models.Deck, error) {
	var decks []*models.Deck
	for _, d := range f.decks {
		if d.UserID == userID {
			decks = append(decks, d)
		}
	}
	sort.Slice(decks, func(i, j int) bool { return decks[i].ID > decks[j].ID })
	return decks, nil
}

func (f *fakeDeckRegistry) GetByID(ctx context.Context, id int64) (*models.Deck, error) {
	return f.decks[id], nil
}

func (f *fakeDeckRegistry) GetByName(ctx context.Context, userID int64, name string) (*models.Deck, error) {
	for _, d := range f.decks {
		if d.UserID == userID && d.Name == name {
			return d, nil
		}
	}
	return nil, nil
}

func (f *fakeDeckRegistry) SearchByName(ctx context.Context, userID int64, fragment string) ([]*models.Deck, error) {
	var decks []*models.Deck
	for _, d := range f.decks {
		if d.UserID == userID && strings.Contains(strings.ToLower(d.Name), strings.ToLower(fragment)) {
			decks = append(decks, d)
		}
	}
	sort.Slice(decks, func(i, j int) bool { return decks[i].Name < decks[j].Name })
	return decks, nil
}

func (f *fakeDeckRegistry) Create(ctx context.Context, deck *models.Deck) (*models.Deck, error) {
	f.nextID++
	cp := *deck
	cp.ID = f.nextID
	f.decks[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeDeckRegistry) Update(ctx context.Context, id int64, patch models.DeckPatch) (*models.Deck, error) {
	d, ok := f.decks[id]
	if !ok {
		return nil, nil
	}
	if patch.Name != nil {
		d.Name = *patch.Name
	}
	if patch.Description != nil {
		d.Description = *patch.Description
	}
	if patch.Format != nil {
		d.Format = *patch.Format
	}
	return d, nil
}

func (f *fakeDeckRegistry) Delete(ctx context.Context, id int64) (*models.Deck, error) {
	d, ok := f.decks[id]
	if !ok {
		return nil, nil
	}
	for key := range f.rows {
		if key.deckID == id {
			delete(f.rows, key)
		}
	}
	delete(f.decks, id)
	return d, nil
}

func (f *fakeDeckRegistry) AddCard(ctx context.Context, deckID int64, cardID string, quantity int, isSideboard bool) (*models.DeckCard, error) {
	key := deckRowKey{deckID, cardID, isSideboard}
	if row, ok := f.rows[key]; ok {
		row.Quantity += quantity
		cp := *row
		return &cp, nil
	}
	row := &models.DeckCard{DeckID: deckID, CardID: cardID, Quantity: quantity, IsSideboard: isSideboard}
	f.rows[key] = row
	cp := *row
	return &cp, nil
}

func (f *fakeDeckRegistry) RemoveCard(ctx context.Context, deckID int64, cardID string, quantity int, isSideboard bool) (*models.DeckCard, bool, error) {
	key := deckRowKey{deckID, cardID, isSideboard}
	row, ok := f.rows[key]
	if !ok {
		return nil, false, nil
	}
	if row.Quantity <= quantity {
		delete(f.rows, key)
		return row, true, nil
	}
	row.Quantity -= quantity
	cp := *row
	return &cp, false, nil
}

func (f *fakeDeckRegistry) ListCards(ctx context.Context, deckID int64) ([]models.DeckCardDetail, error) {
	var details []models.DeckCardDetail
	for key, row := range f.rows {
		if key.deckID != deckID {
			continue
		}
		card := f.catalog.cards[row.CardID]
		details = append(details, models.DeckCardDetail{
			CardID:      row.CardID,
			Name:        card.Name,
			SetCode:     card.SetCode,
			ImageURL:    card.ImageURL,
			UsdPrice:    card.UsdPrice,
			Quantity:    row.Quantity,
			IsSideboard: row.IsSideboard,
		})
	}
	sort.Slice(details, func(i, j int) bool {
		if details[i].IsSideboard != details[j].IsSideboard {
			return !details[i].IsSideboard
		}
		return details[i].Name < details[j].Name
	})
	return details, nil
}

func (f *fakeDeckRegistry) ListCardsByBoard(ctx context.Context, deckID int64, isSideboard bool) ([]models.DeckCardDetail, error) {
	all, _ := f.ListCards(ctx, deckID)
	var board []models.DeckCardDetail
	for _, d := range all {
		if d.IsSideboard == isSideboard {
			board = append(board, d)
		}
	}
	return board, nil
}

type binderRowKey struct {
	binderID int64
	cardID   string
}

type fakeBinderRegistry struct {
	catalog *fakeCardCatalog
	binders map[int64]*models.Binder
	rows    map[binderRowKey]*models.BinderCard
	nextID  int64
}

func newFakeBinderRegistry(catalog *fakeCardCatalog) *fakeBinderRegistry {
	f := &fakeBinderRegistry{
		catalog: catalog,
		binders: make(map[int64]*models.Binder),
		rows:    make(map[binderRowKey]*models.BinderCard),
	}
	if catalog != nil {
		catalog.binds = f
	}
	return f
}

func (f *fakeBinderRegistry) ListByOwner(ctx context.Context, userID int64) ([]*models.BinderSummary, error) {
	var binders []*models.BinderSummary
	for _, b := range f.binders {
		if b.UserID != userID {
			continue
		}
		summary := &models.BinderSummary{Binder: *b}
		for key := range f.rows {
			if key.binderID == b.ID {
				summary.CardCount++
			}
		}
		binders = append(binders, summary)
	}
	sort.Slice(binders, func(i, j int) bool { return binders[i].Name < binders[j].Name })
	return binders, nil
}

func (f *fakeBinderRegistry) GetByID(ctx context.Context, id int64) (*models.Binder, error) {
	return f.binders[id], nil
}

func (f *fakeBinderRegistry) GetByName(ctx context.Context, userID int64, name string) (*models.Binder, error) {
	for _, b := range f.binders {
		if b.UserID == userID && b.Name == name {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBinderRegistry) SearchByName(ctx context.Context, userID int64, fragment string) ([]*models.Binder, error) {
	var binders []*models.Binder
	for _, b := range f.binders {
		if b.UserID == userID && strings.Contains(strings.ToLower(b.Name), strings.ToLower(fragment)) {
			binders = append(binders, b)
		}
	}
	sort.Slice(binders, func(i, j int) bool { return binders[i].Name < binders[j].Name })
	return binders, nil
}

func (f *fakeBinderRegistry) Create(ctx context.Context, binder *models.Binder) (*models.Binder, error) {
	f.nextID++
	cp := *binder
	cp.ID = f.nextID
	f.binders[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeBinderRegistry) Update(ctx context.Context, id int64, patch models.BinderPatch) (*models.Binder, error) {
	b, ok := f.binders[id]
	if !ok {
		return nil, nil
	}
	if patch.Name != nil {
		b.Name = *patch.Name
	}
	if patch.Description != nil {
		b.Description = *patch.Description
	}
	return b, nil
}

func (f *fakeBinderRegistry) Delete(ctx context.Context, id int64) (*models.Binder, error) {
	b, ok := f.binders[id]
	if !ok {
		return nil, nil
	}
	for key := range f.rows {
		if key.binderID == id {
			delete(f.rows, key)
		}
	}
	delete(f.binders, id)
	return b, nil
}

func (f *fakeBinderRegistry) AddCard(ctx context.Context, binderID int64, cardID string, quantity int, condition, notes string) (*models.BinderCard, error) {
	key := binderRowKey{binderID, cardID}
	if row, ok := f.rows[key]; ok {
		row.Quantity += quantity
		row.Condition = condition
		row.Notes = notes
		cp := *row
		return &cp, nil
	}
	row := &models.BinderCard{BinderID: binderID, CardID: cardID, Quantity: quantity, Condition: condition, Notes: notes}
	f.rows[key] = row
	cp := *row
	return &cp, nil
}

func (f *fakeBinderRegistry) RemoveCard(ctx context.Context, binderID int64, cardID string, quantity int) (*models.BinderCard, bool, error) {
	key := binderRowKey{binderID, cardID}
	row, ok := f.rows[key]
	if !ok {
		return nil, false, nil
	}
	if row.Quantity <= quantity {
		delete(f.rows, key)
		return row, true, nil
	}
	row.Quantity -= quantity
	cp := *row
	return &cp, false, nil
}

func (f *fakeBinderRegistry) ListCards(ctx context.Context, binderID int64) ([]models.BinderCardDetail, error) {
	var details []models.BinderCardDetail
	for key, row := range f.rows {
		if key.binderID != binderID {
			continue
		}
		card := f.catalog.cards[row.CardID]
		details = append(details, models.BinderCardDetail{
			CardID:    row.CardID,
			Name:      card.Name,
			SetCode:   card.SetCode,
			ImageURL:  card.ImageURL,
			UsdPrice:  card.UsdPrice,
			EurPrice:  card.EurPrice,
			Quantity:  row.Quantity,
			Condition: row.Condition,
			Notes:     row.Notes,
		})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Name < details[j].Name })
	return details, nil
}

func (f *fakeBinderRegistry) ListCardsByCondition(ctx context.Context, binderID int64, condition string) ([]models.BinderCardDetail, error) {
	all, _ := f.ListCards(ctx, binderID)
	var matches []models.BinderCardDetail
	for _, d := range all {
		if d.Condition == condition {
			matches = append(matches, d)
		}
	}
	return matches, nil
}

// fakeProvider serves scripted provider lookups for card ingestion tests,
// keyed by "name|set".
type fakeProvider struct {
	cards map[string]*scryfall.CardData
	err   error
}

func (f *fakeProvider) NamedExact(ctx context.Context, name, setCode string) (*scryfall.CardData, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.cards[name+"|"+setCode]; ok {
		return c, nil
	}
	return nil, scryfall.ErrNotFound
}
