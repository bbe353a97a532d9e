package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/cardtrove/collection-services/configs"
	"github.com/cardtrove/collection-services/internal/collectionsvc/db"
	handlers "github.com/cardtrove/collection-services/internal/collectionsvc/handlers"
	"github.com/cardtrove/collection-services/internal/collectionsvc/scryfall"
	"github.com/cardtrove/collection-services/internal/collectionsvc/service"
	"github.com/cardtrove/collection-services/internal/collectionsvc/store"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "collection"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {

	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(ctx, dbpool); err != nil {
		cancel()
		log.Fatalf("Failed to run schema migration: %v", err)
	}

	userStore := store.NewUserStore(dbpool)
	userService := service.NewUserService(userStore)

	// all collections belong to the seeded default owner until a session
	// names another one
	owner, err := userService.GetOrCreateDefault(ctx)
	cancel()
	if err != nil {
		log.Fatalf("Failed to seed default user: %v", err)
	}
	log.Infof("default owner ready (id %d)", owner.ID)

	cardStore := store.NewCardStore(dbpool)
	cardService := service.NewCardService(cardStore, scryfall.New())

	deckStore := store.NewDeckStore(dbpool)
	deckService := service.NewDeckService(deckStore, cardService)

	binderStore := store.NewBinderStore(dbpool)
	binderService := service.NewBinderService(binderStore, cardService)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(cardService, deckService, binderService, owner.ID)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("COLLECTION_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
