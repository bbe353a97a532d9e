package handlers

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/cardtrove/collection-services/internal/collectionsvc/models"
)

type createCardRequest struct {
	CardName string `json:"card_name"`
	SetCode  string `json:"set_code"`
}

// CreateCard ingests a card from the external provider by exact name.
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if !h.decode(w, r, &req) {
		return
	}

	card, err := h.cards.CreateFromScryfall(r.Context(), req.CardName, req.SetCode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusCreated, card)
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, card)
}

// SearchCards is a case-insensitive substring search, optionally limited to
// one set via ?set=.
func (h *Handler) SearchCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	cards, err := h.cards.Search(r.Context(), q.Get("q"), q.Get("set"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, cards)
}

// UpdateCard accepts a flexible card reference in the path (id or exact
// name, with ?set= as qualifier) and a partial update in the body.
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	var patch models.CardPatch
	if !h.decode(w, r, &patch) {
		return
	}

	card, err := h.cards.Update(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("set"), patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, card)
}

// DeleteCard removes a card from the catalog. ?force=true also removes every
// deck and binder row referencing it; without force a referenced card is a
// conflict.
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	card, err := h.cards.Delete(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("set"), force)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.CreateResponse(w, Response{
		Message: "card deleted",
		Code:    http.StatusOK,
		Data:    card,
	})
}
