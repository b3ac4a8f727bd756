package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duelhq/duelsync/internal/api/response"
	"github.com/duelhq/duelsync/internal/model"
	"github.com/duelhq/duelsync/internal/services/history"
)

// MatchHandler serves persisted match history
type MatchHandler struct {
	history *history.Service
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(history *history.Service) *MatchHandler {
	return &MatchHandler{history: history}
}

// List handles GET /matches
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.ListMatches(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	matches := make([]response.MatchRecord, len(records))
	for i, rec := range records {
		matches[i] = response.MatchRecordFromModel(rec)
	}
	response.JSON(w, http.StatusOK, response.MatchList{Matches: matches})
}

// Get handles GET /matches/{id}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.history.GetMatch(r.Context(), model.MatchID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.MatchRecordFromModel(record))
}
