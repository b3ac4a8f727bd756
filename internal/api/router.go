package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duelhq/duelsync/internal/api/handler"
	apimiddleware "github.com/duelhq/duelsync/internal/api/middleware"
	"github.com/duelhq/duelsync/internal/middleware"
	"github.com/duelhq/duelsync/internal/services/history"
	"github.com/duelhq/duelsync/internal/services/identity"
	"github.com/duelhq/duelsync/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	SessionController session.ControllerInterface
	HistoryService    *history.Service
	IdentityProvider  identity.Provider
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(cfg.SessionController, cfg.IdentityProvider)
	eventsHandler := handler.NewEventsHandler(cfg.SessionController, cfg.Logger)
	matchHandler := handler.NewMatchHandler(cfg.HistoryService)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(apimiddleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Game lifecycle
	api.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/games/{code}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{code}/join", gameHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/games/{code}/counter", gameHandler.AdjustCounter).Methods(http.MethodPost)
	api.HandleFunc("/games/{code}/advance", gameHandler.AdvanceTurn).Methods(http.MethodPost)
	api.HandleFunc("/games/{code}/surrender", gameHandler.Surrender).Methods(http.MethodPost)
	api.HandleFunc("/games/{code}/disconnect", gameHandler.Disconnect).Methods(http.MethodPost)

	// Live state stream
	api.HandleFunc("/games/{code}/events", eventsHandler.Stream).Methods(http.MethodGet)

	// Match history
	api.HandleFunc("/matches", matchHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", matchHandler.Get).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
