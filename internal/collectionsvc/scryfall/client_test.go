package scryfall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const boltPayload = `{
	"id": "4457ed35-7c10-48c8-9776-456485fdf070",
	"name": "Lightning Bolt",
	"set": "clb",
	"collector_number": "187",
	"image_uris": {"normal": "https://cards.example/bolt.jpg"},
	"prices": {"usd": "1.53", "eur": null}
}`

func TestNamedExact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cards/named", r.URL.Path)
		require.Equal(t, "Lightning Bolt", r.URL.Query().Get("exact"))
		require.Empty(t, r.URL.Query().Get("set"))
		w.Write([]byte(boltPayload))
	}))
	defer srv.Close()

	card, err := NewWithBaseURL(srv.URL).NamedExact(context.Background(), "Lightning Bolt", "")
	require.NoError(t, err)
	require.Equal(t, "4457ed35-7c10-48c8-9776-456485fdf070", card.ID)
	require.Equal(t, "clb", card.SetCode)
	require.Equal(t, "187", card.CollectorNumber)
	require.Equal(t, "https://cards.example/bolt.jpg", card.ImageURL)
	require.True(t, card.UsdPrice.Valid)
	require.Equal(t, "1.53", card.UsdPrice.Decimal.String())
	require.False(t, card.EurPrice.Valid, "missing price stays null")
	require.JSONEq(t, boltPayload, string(card.Raw), "raw payload kept verbatim")
}

func TestNamedExactPassesSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "clb", r.URL.Query().Get("set"))
		w.Write([]byte(boltPayload))
	}))
	defer srv.Close()

	_, err := NewWithBaseURL(srv.URL).NamedExact(context.Background(), "Lightning Bolt", "clb")
	require.NoError(t, err)
}

func TestNamedExactNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"object":"error","code":"not_found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewWithBaseURL(srv.URL).NamedExact(context.Background(), "No Such Card", "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNamedExactServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewWithBaseURL(srv.URL).NamedExact(context.Background(), "Lightning Bolt", "")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
