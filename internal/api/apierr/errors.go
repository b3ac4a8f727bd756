package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/duelhq/duelsync/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest         = "INVALID_REQUEST"
	CodeGameNotFound           = "GAME_NOT_FOUND"
	CodeGameFull               = "GAME_FULL"
	CodePlayerNotInGame        = "PLAYER_NOT_IN_GAME"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeUnknownCounter         = "UNKNOWN_COUNTER"
	CodeVersionConflict        = "VERSION_CONFLICT"
	CodeCorruptGameState       = "CORRUPT_GAME_STATE"
	CodeMatchNotFound          = "MATCH_NOT_FOUND"
	CodeStoreUnavailable       = "STORE_UNAVAILABLE"
	CodeInternalError          = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrGameFull):
		return &httpError{http.StatusConflict, APIError{CodeGameFull, "Game already has two players"}}
	case errors.Is(err, model.ErrPlayerNotInGame):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotInGame, "Player is not in this game"}}
	case errors.Is(err, model.ErrInvalidStateTransition):
		return &httpError{http.StatusConflict, APIError{CodeInvalidStateTransition, "Action not allowed in the game's current status"}}
	case errors.Is(err, model.ErrUnknownCounter):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownCounter, "Counter must be morale or energy"}}
	case errors.Is(err, model.ErrVersionConflict):
		return &httpError{http.StatusConflict, APIError{CodeVersionConflict, "Game changed since last read; re-read and retry"}}
	case errors.Is(err, model.ErrCorruptGameState):
		return &httpError{http.StatusInternalServerError, APIError{CodeCorruptGameState, "Stored game state is corrupt"}}
	case errors.Is(err, model.ErrMatchNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeMatchNotFound, "Match record not found"}}
	case errors.Is(err, model.ErrStoreRead), errors.Is(err, model.ErrStoreWrite):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Storage temporarily unavailable"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
