package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/cardtrove/collection-services/internal/collectionsvc/apperr"
	"github.com/cardtrove/collection-services/internal/collectionsvc/models"
)

type createDeckRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Format      string `json:"format"`
}

func (h *Handler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req createDeckRequest
	if !h.decode(w, r, &req) {
		return
	}

	deck, err := h.decks.Create(r.Context(), h.ownerID(r), req.Name, req.Description, req.Format)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusCreated, deck)
}

func (h *Handler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.decks.List(r.Context(), h.ownerID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, decks)
}

// SearchDecks matches deck names by substring; ?name= does an exact lookup
// instead.
func (h *Handler) SearchDecks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if name := q.Get("name"); name != "" {
		deck, err := h.decks.GetByName(r.Context(), h.ownerID(r), name)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeData(w, http.StatusOK, deck)
		return
	}

	decks, err := h.decks.Search(r.Context(), h.ownerID(r), q.Get("q"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, decks)
}

func (h *Handler) GetDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	deck, err := h.decks.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, deck)
}

func (h *Handler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var patch models.DeckPatch
	if !h.decode(w, r, &patch) {
		return
	}

	deck, err := h.decks.Update(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, deck)
}

func (h *Handler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	deck, err := h.decks.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.CreateResponse(w, Response{
		Message: "deck deleted",
		Code:    http.StatusOK,
		Data:    deck,
	})
}

type addDeckCardRequest struct {
	CardID      string `json:"card_id"`
	CardName    string `json:"card_name"`
	SetCode     string `json:"set_code"`
	Quantity    int    `json:"quantity"`
	IsSideboard bool   `json:"is_sideboard"`
}

// AddDeckCard adds copies of a card to one board of a deck. The card may be
// referenced by id or by exact name (plus set when the name is printed in
// several sets).
func (h *Handler) AddDeckCard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req addDeckCardRequest
	if !h.decode(w, r, &req) {
		return
	}

	ref := req.CardID
	if ref == "" {
		ref = req.CardName
	}
	if ref == "" {
		h.writeError(w, apperr.Invalid("card_id or card_name is required"))
		return
	}

	row, err := h.decks.AddCard(r.Context(), id, ref, req.SetCode, req.Quantity, req.IsSideboard)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusCreated, row)
}

// RemoveDeckCard removes ?quantity= copies (default 1) of a card from one
// board (?sideboard=true). The ledger row disappears once its quantity is
// used up.
func (h *Handler) RemoveDeckCard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	q := r.URL.Query()
	quantity := 0
	if s := q.Get("quantity"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			h.writeError(w, apperr.Invalid("malformed quantity"))
			return
		}
		quantity = n
	}
	sideboard := q.Get("sideboard") == "true"

	row, removed, err := h.decks.RemoveCard(r.Context(), id, chi.URLParam(r, "cardID"), quantity, sideboard)
	if err != nil {
		h.writeError(w, err)
		return
	}

	msg := "card quantity reduced"
	if removed {
		msg = "card removed from deck"
	}
	h.CreateResponse(w, Response{
		Message: msg,
		Code:    http.StatusOK,
		Data:    row,
	})
}

// ListDeckCards returns the deck's ledger; ?board=mainboard or
// ?board=sideboard narrows it to one board.
func (h *Handler) ListDeckCards(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var (
		cards interface{}
		err   error
	)
	switch r.URL.Query().Get("board") {
	case "":
		cards, err = h.decks.ListCards(r.Context(), id)
	case "mainboard":
		cards, err = h.decks.ListBoard(r.Context(), id, false)
	case "sideboard":
		cards, err = h.decks.ListBoard(r.Context(), id, true)
	default:
		h.writeError(w, apperr.Invalid("board must be mainboard or sideboard"))
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, cards)
}
