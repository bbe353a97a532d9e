package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/cardtrove/collection-services/internal/collectionsvc/apperr"
	"github.com/cardtrove/collection-services/internal/collectionsvc/models"
)

type createBinderRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) CreateBinder(w http.ResponseWriter, r *http.Request) {
	var req createBinderRequest
	if !h.decode(w, r, &req) {
		return
	}

	binder, err := h.binders.Create(r.Context(), h.ownerID(r), req.Name, req.Description)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusCreated, binder)
}

func (h *Handler) ListBinders(w http.ResponseWriter, r *http.Request) {
	binders, err := h.binders.List(r.Context(), h.ownerID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, binders)
}

// SearchBinders matches binder names by substring; ?name= does an exact
// lookup instead.
func (h *Handler) SearchBinders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if name := q.Get("name"); name != "" {
		binder, err := h.binders.GetByName(r.Context(), h.ownerID(r), name)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeData(w, http.StatusOK, binder)
		return
	}

	binders, err := h.binders.Search(r.Context(), h.ownerID(r), q.Get("q"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, binders)
}

func (h *Handler) GetBinder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	binder, err := h.binders.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, binder)
}

func (h *Handler) UpdateBinder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var patch models.BinderPatch
	if !h.decode(w, r, &patch) {
		return
	}

	binder, err := h.binders.Update(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, binder)
}

func (h *Handler) DeleteBinder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	binder, err := h.binders.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.CreateResponse(w, Response{
		Message: "binder deleted",
		Code:    http.StatusOK,
		Data:    binder,
	})
}

type addBinderCardRequest struct {
	CardID    string `json:"card_id"`
	CardName  string `json:"card_name"`
	SetCode   string `json:"set_code"`
	Quantity  int    `json:"quantity"`
	Condition string `json:"condition"`
	Notes     string `json:"notes"`
}

// AddBinderCard adds copies of a card to the binder. Condition defaults to
// NM; condition and notes replace whatever the row carried before, while
// quantities accumulate.
func (h *Handler) AddBinderCard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req addBinderCardRequest
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

	row, err := h.binders.AddCard(r.Context(), id, ref, req.SetCode, req.Quantity, req.Condition, req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusCreated, row)
}

// RemoveBinderCard removes ?quantity= copies (default 1) of a card; the
// ledger row disappears once its quantity is used up.
func (h *Handler) RemoveBinderCard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	quantity := 0
	if s := r.URL.Query().Get("quantity"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			h.writeError(w, apperr.Invalid("malformed quantity"))
			return
		}
		quantity = n
	}

	row, removed, err := h.binders.RemoveCard(r.Context(), id, chi.URLParam(r, "cardID"), quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}

	msg := "card quantity reduced"
	if removed {
		msg = "card removed from binder"
	}
	h.CreateResponse(w, Response{
		Message: msg,
		Code:    http.StatusOK,
		Data:    row,
	})
}

func (h *Handler) ListBinderCards(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	cards, err := h.binders.ListCards(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, cards)
}

func (h *Handler) BinderCardsByCondition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	cards, err := h.binders.CardsByCondition(r.Context(), id, chi.URLParam(r, "condition"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, cards)
}
