package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duelhq/duelsync/internal/api/request"
	"github.com/duelhq/duelsync/internal/api/response"
	"github.com/duelhq/duelsync/internal/model"
	"github.com/duelhq/duelsync/internal/services/identity"
	"github.com/duelhq/duelsync/internal/services/session"
)

// GameHandler handles game lifecycle endpoints
type GameHandler struct {
	controller session.ControllerInterface
	identity   identity.Provider
}

// NewGameHandler creates a new game handler
func NewGameHandler(controller session.ControllerInterface, identity identity.Provider) *GameHandler {
	return &GameHandler{
		controller: controller,
		identity:   identity,
	}
}

// Create handles POST /games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid JSON body"))
		return
	}
	if req.DisplayName == "" {
		WriteError(w, NewInvalidRequestError("display_name is required"))
		return
	}

	host := h.identity.NewPlayer(req.DisplayName, req.DeckLabel)
	game, err := h.controller.CreateGame(r.Context(), host)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreateGameResponse{
		PlayerID: string(host.ID),
		Game:     response.GameStateFromModel(game),
	})
}

// Join handles POST /games/{code}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid JSON body"))
		return
	}

	var guest model.PlayerState
	if req.PlayerID != "" {
		// Reconnecting as an identity already seated in the game
		guest = model.PlayerState{ID: model.PlayerID(req.PlayerID), DisplayName: req.DisplayName}
	} else {
		if req.DisplayName == "" {
			WriteError(w, NewInvalidRequestError("display_name is required"))
			return
		}
		guest = h.identity.NewPlayer(req.DisplayName, req.DeckLabel)
	}

	game, err := h.controller.JoinGame(r.Context(), gameCode(r), guest)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CreateGameResponse{
		PlayerID: string(guest.ID),
		Game:     response.GameStateFromModel(game),
	})
}

// Get handles GET /games/{code}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	game, err := h.controller.GetGame(r.Context(), gameCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameStateFromModel(game))
}

// AdjustCounter handles POST /games/{code}/counter
func (h *GameHandler) AdjustCounter(w http.ResponseWriter, r *http.Request) {
	var req request.AdjustCounterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid JSON body"))
		return
	}
	if req.PlayerID == "" {
		WriteError(w, NewInvalidRequestError("player_id is required"))
		return
	}
	kind, err := model.ParseCounterKind(req.Counter)
	if err != nil {
		WriteError(w, err)
		return
	}

	game, err := h.controller.AdjustCounter(r.Context(), gameCode(r), model.PlayerID(req.PlayerID), kind, req.Delta)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameStateFromModel(game))
}

// AdvanceTurn handles POST /games/{code}/advance
func (h *GameHandler) AdvanceTurn(w http.ResponseWriter, r *http.Request) {
	game, err := h.controller.AdvanceTurn(r.Context(), gameCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameStateFromModel(game))
}

// Surrender handles POST /games/{code}/surrender
func (h *GameHandler) Surrender(w http.ResponseWriter, r *http.Request) {
	var req request.SurrenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid JSON body"))
		return
	}
	if req.PlayerID == "" {
		WriteError(w, NewInvalidRequestError("player_id is required"))
		return
	}

	game, err := h.controller.Surrender(r.Context(), gameCode(r), model.PlayerID(req.PlayerID))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameStateFromModel(game))
}

// Disconnect handles POST /games/{code}/disconnect
func (h *GameHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	var req request.DisconnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid JSON body"))
		return
	}
	if req.PlayerID == "" {
		WriteError(w, NewInvalidRequestError("player_id is required"))
		return
	}

	game, err := h.controller.MarkDisconnected(r.Context(), gameCode(r), model.PlayerID(req.PlayerID))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameStateFromModel(game))
}

// gameCode extracts and normalizes the game code path variable
func gameCode(r *http.Request) model.GameCode {
	return model.NormalizeCode(mux.Vars(r)["code"])
}
