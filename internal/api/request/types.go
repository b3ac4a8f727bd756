package request

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	DisplayName string `json:"display_name"`
	DeckLabel   string `json:"deck_label,omitempty"`
}

// JoinGameRequest is the request body for joining a game. PlayerID is set
// only when reconnecting as an identity already seated in the game.
type JoinGameRequest struct {
	PlayerID    string `json:"player_id,omitempty"`
	DisplayName string `json:"display_name"`
	DeckLabel   string `json:"deck_label,omitempty"`
}

// AdjustCounterRequest is the request body for adjusting a counter
type AdjustCounterRequest struct {
	PlayerID string `json:"player_id"`
	Counter  string `json:"counter"`
	Delta    int    `json:"delta"`
}

// SurrenderRequest is the request body for conceding the match
type SurrenderRequest struct {
	PlayerID string `json:"player_id"`
}

// DisconnectRequest is the request body for flagging a disconnect
type DisconnectRequest struct {
	PlayerID string `json:"player_id"`
}
