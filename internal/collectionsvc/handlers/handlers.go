package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"

	"github.com/cardtrove/collection-services/internal/collectionsvc/apperr"
	"github.com/cardtrove/collection-services/internal/collectionsvc/service"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth

	cards   *service.CardService
	decks   *service.DeckService
	binders *service.BinderService

	defaultOwnerID int64
}

func NewHandler(cards *service.CardService, decks *service.DeckService, binders *service.BinderService, defaultOwnerID int64) *Handler {
	return &Handler{
		cards:          cards,
		decks:          decks,
		binders:        binders,
		defaultOwnerID: defaultOwnerID,
	}
}

type Response struct {
	Message string      `json:"message,omitempty"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

func (h *Handler) writeData(w http.ResponseWriter, code int, data interface{}) {
	h.CreateResponse(w, Response{Code: code, Data: data})
}

// writeError maps the core's failure kinds to status codes. The core never
// shapes transport responses itself.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)

	var code int
	switch kind {
	case apperr.KindNotFound:
		code = http.StatusNotFound
	case apperr.KindAmbiguous:
		code = http.StatusMultipleChoices
	case apperr.KindConflict:
		code = http.StatusConflict
	case apperr.KindInvalid:
		code = http.StatusBadRequest
	case apperr.KindUpstream:
		code = http.StatusBadGateway
	default:
		code = http.StatusInternalServerError
		log.Errorf("internal error: %v", err)
	}

	rsp := Response{Code: code, Error: err.Error()}
	if candidates := apperr.CandidatesOf(err); candidates != nil {
		rsp.Data = map[string]interface{}{"candidates": candidates}
	}
	h.CreateResponse(w, rsp)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, apperr.Invalid("invalid request body: %v", err))
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		h.writeError(w, apperr.Invalid("malformed %s", name))
		return 0, false
	}
	return id, true
}

// ownerID resolves the collection owner from the verified session token,
// falling back to the seeded default owner.
func (h *Handler) ownerID(r *http.Request) int64 {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || claims == nil {
		return h.defaultOwnerID
	}
	switch v := claims["user_id"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case json.Number:
		if id, err := v.Int64(); err == nil {
			return id
		}
	case string:
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return id
		}
	}
	return h.defaultOwnerID
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "collection service is running",
		Code:    http.StatusOK,
	})
}
