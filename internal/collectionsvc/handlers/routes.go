package handlers

import (
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes here
		r.Get("/health", h.HealthHandler)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Route("/cards", func(r chi.Router) {
				r.Post("/", h.CreateCard)
				r.Get("/", h.SearchCards)
				r.Get("/{id}", h.GetCard)
				r.Put("/{id}", h.UpdateCard)
				r.Delete("/{id}", h.DeleteCard)
			})

			r.Route("/decks", func(r chi.Router) {
				r.Get("/search", h.SearchDecks)
				r.Get("/", h.ListDecks)
				r.Post("/", h.CreateDeck)
				r.Get("/{id}", h.GetDeck)
				r.Put("/{id}", h.UpdateDeck)
				r.Delete("/{id}", h.DeleteDeck)
				r.Post("/{id}/cards", h.AddDeckCard)
				r.Get("/{id}/cards", h.ListDeckCards)
				r.Delete("/{id}/cards/{cardID}", h.RemoveDeckCard)
			})

			r.Route("/binders", func(r chi.Router) {
				r.Get("/search", h.SearchBinders)
				r.Get("/", h.ListBinders)
				r.Post("/", h.CreateBinder)
				r.Get("/{id}", h.GetBinder)
				r.Put("/{id}", h.UpdateBinder)
				r.Delete("/{id}", h.DeleteBinder)
				r.Post("/{id}/cards", h.AddBinderCard)
				r.Get("/{id}/cards", h.ListBinderCards)
				r.Get("/{id}/cards/condition/{condition}", h.BinderCardsByCondition)
				r.Delete("/{id}/cards/{cardID}", h.RemoveBinderCard)
			})
		})
	})
}

func (h *Handler) InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := h.tokenAuth.Encode(map[string]interface{}{
		"user_id": h.defaultOwnerID,
		"exp":     expirationTime,
	})

	// For debugging only, comment it out in production
	log.Infof("DEBUG: JWT for testing expires soon : %s", tokenString)
}
