package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardtrove/collection-services/internal/collectionsvc/apperr"
	"github.com/cardtrove/collection-services/internal/collectionsvc/models"
)

func newBinderFixture(t *testing.T) (*BinderService, *fakeBinderRegistry, *models.Binder) {
	t.Helper()

	catalog := testCatalog()
	binders := newFakeBinderRegistry(catalog)
	svc := NewBinderService(binders, NewCardService(catalog, &fakeProvider{}))

	binder, err := svc.Create(context.Background(), 1, "Trades", "cards up for trade")
	require.NoError(t, err)
	return svc, binders, binder
}

func TestAddCardDefaultsConditionAndQuantity(t *testing.T) {
	svc, _, binder := newBinderFixture(t)

	row, err := svc.AddCard(context.Background(), binder.ID, counterID, "", 0, "", "")
	require.NoError(t, err)
	require.Equal(t, 1, row.Quantity)
	require.Equal(t, "NM", row.Condition)
}

func TestAddCardRejectsUnknownCondition(t *testing.T) {
	svc, _, binder := newBinderFixture(t)

	_, err := svc.AddCard(context.Background(), binder.ID, counterID, "", 1, "MINTY", "")
	require.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestAddCardNormalizesCondition(t *testing.T) {
	svc, _, binder := newBinderFixture(t)

	row, err := svc.AddCard(context.Background(), binder.ID, counterID, "", 1, "lp", "")
	require.NoError(t, err)
	require.Equal(t, "LP", row.Condition)
}

func TestAddCardMergesQuantityAndOverwritesMetadata(t *testing.T) {
	svc, _, binder := newBinderFixture(t)

	_, err := svc.AddCard(context.Background(), binder.ID, counterID, "", 2, "NM", "from booster")
	require.NoError(t, err)

	row, err := svc.AddCard(context.Background(), binder.ID, counterID, "", 3, "LP", "one is worn")
	require.NoError(t, err)
	require.Equal(t, 5, row.Quantity, "quantities add up")
	require.Equal(t, "LP", row.Condition, "last write wins on condition")
	require.Equal(t, "one is worn", row.Notes)
}

func TestAddCardAmbiguousThenQualified(t *testing.T) {
	svc, _, binder := newBinderFixture(t)

	_, err := svc.AddCard(context.Background(), binder.ID, "Lightning Bolt", "", 1, "", "")
	require.True(t, apperr.IsAmbiguous(err))

	candidates := apperr.CandidatesOf(err)
	require.Len(t, candidates, 2)

	row, err := svc.AddCard(context.Background(), binder.ID, "Lightning Bolt", "lea", 1, "", "")
	require.NoError(t, err)
	require.Equal(t, boltAlphaID, row.CardID)
	require.Equal(t, 1, row.Quantity)
	require.Equal(t, "NM", row.Condition)
}

func TestBinderHoldsOneRowPerCard(t *testing.T) {
	svc, binders, binder := newBinderFixture(t)

	_, err := svc.AddCard(context.Background(), binder.ID, "Lightning Bolt", "lea", 1, "NM", "")
	require.NoError(t, err)
	_, err = svc.AddCard(context.Background(), binder.ID, "Lightning Bolt", "leb", 1, "NM", "")
	require.NoError(t, err)

	// different printings are different cards, so two rows
	require.Len(t, binders.rows, 2)

	// the same printing again merges into its row
	_, err = svc.AddCard(context.Background(), binder.ID, "Lightning Bolt", "lea", 2, "NM", "")
	require.NoError(t, err)
	require.Len(t, binders.rows, 2)
}

func TestRemoveCardFromBinder(t *testing.T) {
	svc, _, binder := newBinderFixture(t)

	_, err := svc.AddCard(context.Background(), binder.ID, counterID, "", 3, "", "")
	require.NoError(t, err)

	row, removed, err := svc.RemoveCard(context.Background(), binder.ID, counterID, 2)
	require.NoError(t, err)
	require.False(t, removed)
	require.Equal(t, 1, row.Quantity)

	_, removed, err = svc.RemoveCard(context.Background(), binder.ID, counterID, 0)
	require.NoError(t, err)
	require.True(t, removed, "default removal quantity of 1 covers the last copy")

	_, _, err = svc.RemoveCard(context.Background(), binder.ID, counterID, 1)
	require.True(t, apperr.IsNotFound(err))
}

func TestCardsByCondition(t *testing.T) {
	svc, _, binder := newBinderFixture(t)

	_, err := svc.AddCard(context.Background(), binder.ID, counterID, "", 1, "NM", "")
	require.NoError(t, err)
	_, err = svc.AddCard(context.Background(), binder.ID, "Lightning Bolt", "lea", 1, "HP", "battered")
	require.NoError(t, err)

	cards, err := svc.CardsByCondition(context.Background(), binder.ID, "HP")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	require.Equal(t, "Lightning Bolt", cards[0].Name)

	_, err = svc.CardsByCondition(context.Background(), binder.ID, "SHINY")
	require.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestDeleteBinderCascades(t *testing.T) {
	svc, binders, binder := newBinderFixture(t)

	_, err := svc.AddCard(context.Background(), binder.ID, counterID, "", 2, "", "")
	require.NoError(t, err)

	deleted, err := svc.Delete(context.Background(), binder.ID)
	require.NoError(t, err)
	require.Equal(t, binder.ID, deleted.ID)
	require.Empty(t, binders.rows)

	_, err = svc.Get(context.Background(), binder.ID)
	require.True(t, apperr.IsNotFound(err))
}

func TestListBindersCountsCards(t *testing.T) {
	svc, _, binder := newBinderFixture(t)

	_, err := svc.AddCard(context.Background(), binder.ID, counterID, "", 4, "", "")
	require.NoError(t, err)
	_, err = svc.AddCard(context.Background(), binder.ID, "Lightning Bolt", "lea", 1, "", "")
	require.NoError(t, err)

	summaries, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, int64(2), summaries[0].CardCount)
}

func TestCreateBinderRequiresName(t *testing.T) {
	catalog := testCatalog()
	svc := NewBinderService(newFakeBinderRegistry(catalog), NewCardService(catalog, &fakeProvider{}))

	_, err := svc.Create(context.Background(), 1, "", "")
	require.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}
