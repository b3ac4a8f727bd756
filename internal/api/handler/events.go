package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/duelhq/duelsync/internal/api/response"
	"github.com/duelhq/duelsync/internal/model"
	"github.com/duelhq/duelsync/internal/services/session"
)

// keepaliveInterval is how often an SSE comment is sent to hold the
// connection open through idle proxies
const keepaliveInterval = 15 * time.Second

// EventsHandler streams game-state snapshots over SSE
type EventsHandler struct {
	controller session.ControllerInterface
	logger     *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(controller session.ControllerInterface, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		controller: controller,
		logger:     logger.With("component", "events"),
	}
}

// Stream handles GET /games/{code}/events. Each write to the game document
// is delivered as a `state` event carrying the full snapshot; deletion is a
// `deleted` event. The watch subscription is released when the client goes
// away.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, NewInternalError())
		return
	}

	code := gameCode(r)
	game, err := h.controller.GetGame(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	// Slow consumers drop intermediate snapshots rather than block the
	// watch callback; the latest state always arrives
	updates := make(chan *model.GameState, 8)
	unsub, err := h.controller.WatchGame(r.Context(), code, func(g *model.GameState) {
		select {
		case updates <- g:
		default:
		}
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	defer unsub()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	h.writeState(w, game)
	flusher.Flush()

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case g := <-updates:
			if g == nil {
				fmt.Fprint(w, "event: deleted\ndata: null\n\n")
				flusher.Flush()
				return
			}
			h.writeState(w, g)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

func (h *EventsHandler) writeState(w http.ResponseWriter, g *model.GameState) {
	data, err := json.Marshal(response.GameStateFromModel(g))
	if err != nil {
		h.logger.Error("failed to marshal game state", "error", err)
		return
	}
	fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
}
