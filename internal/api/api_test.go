package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelhq/duelsync/internal/api"
	"github.com/duelhq/duelsync/internal/api/response"
	"github.com/duelhq/duelsync/internal/factory"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		SessionController: app.SessionController,
		HistoryService:    app.HistoryService,
		IdentityProvider:  app.IdentityProvider,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// createActiveGame creates a game and joins a second player, returning the
// code and both player ids
func (ts *testServer) createActiveGame(t *testing.T) (code, hostID, guestID string) {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{"display_name": "Alice"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created response.CreateGameResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = ts.request(http.MethodPost, "/api/v1/games/"+created.Game.Code+"/join", map[string]string{"display_name": "Bob"})
	require.Equal(t, http.StatusOK, rr.Code)
	var joined response.CreateGameResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &joined))

	return created.Game.Code, created.PlayerID, joined.PlayerID
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateGame(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{
		"display_name": "Alice",
		"deck_label":   "Control",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.CreateGameResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.PlayerID)
	assert.Len(t, resp.Game.Code, 6)
	assert.Equal(t, "setup", resp.Game.Status)
	require.Len(t, resp.Game.Players, 1)
	assert.Equal(t, "Alice", resp.Game.Players[0].DisplayName)
	assert.Equal(t, 50, resp.Game.Players[0].Morale)
	assert.True(t, resp.Game.Players[0].IsHost)
}

func TestCreateGameMissingName(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_REQUEST")
}

func TestJoinGame(t *testing.T) {
	ts := newTestServer(t)
	code, hostID, guestID := ts.createActiveGame(t)

	rr := ts.request(http.MethodGet, "/api/v1/games/"+code, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var game response.GameState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &game))
	assert.Equal(t, "active", game.Status)
	require.Len(t, game.Players, 2)
	assert.NotEqual(t, hostID, guestID)
	assert.Contains(t, []string{hostID, guestID}, game.PriorityPlayer)
}

func TestJoinGameCodeIsCaseInsensitive(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{"display_name": "Alice"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created response.CreateGameResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	lower := ""
	for _, c := range created.Game.Code {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower += string(c)
	}

	rr = ts.request(http.MethodPost, "/api/v1/games/"+lower+"/join", map[string]string{"display_name": "Bob"})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestJoinGameNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/games/NOSUCH/join", map[string]string{"display_name": "Bob"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "GAME_NOT_FOUND")
}

func TestJoinGameFull(t *testing.T) {
	ts := newTestServer(t)
	code, _, _ := ts.createActiveGame(t)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+code+"/join", map[string]string{"display_name": "Carol"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "GAME_FULL")
}

func TestAdjustCounterAndAdvance(t *testing.T) {
	ts := newTestServer(t)
	code, hostID, _ := ts.createActiveGame(t)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+code+"/counter", map[string]any{
		"player_id": hostID,
		"counter":   "morale",
		"delta":     -55,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var game response.GameState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &game))
	assert.Equal(t, -5, game.Players[0].Morale)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+code+"/advance", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &game))

	require.Len(t, game.Rounds, 1)
	assert.Equal(t, "morale_at_or_below_zero", game.Rounds[0].EndReason)
	assert.Equal(t, 2, game.CurrentRound)
	assert.Equal(t, 50, game.Players[0].Morale)
}

func TestAdjustCounterUnknownKind(t *testing.T) {
	ts := newTestServer(t)
	code, hostID, _ := ts.createActiveGame(t)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+code+"/counter", map[string]any{
		"player_id": hostID,
		"counter":   "mana",
		"delta":     1,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "UNKNOWN_COUNTER")
}

func TestAdjustCounterBeforeJoinRejected(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{"display_name": "Alice"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created response.CreateGameResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = ts.request(http.MethodPost, "/api/v1/games/"+created.Game.Code+"/counter", map[string]any{
		"player_id": created.PlayerID,
		"counter":   "morale",
		"delta":     -5,
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_STATE_TRANSITION")
}

func TestSurrenderEndsMatchAndRecordsHistory(t *testing.T) {
	ts := newTestServer(t)
	code, hostID, guestID := ts.createActiveGame(t)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+code+"/surrender", map[string]string{
		"player_id": hostID,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var game response.GameState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &game))
	assert.Equal(t, "ended", game.Status)
	require.NotNil(t, game.Winner)
	assert.Equal(t, guestID, *game.Winner)

	rr = ts.request(http.MethodGet, "/api/v1/matches", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var list response.MatchList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Matches, 1)
	assert.Equal(t, "surrender", list.Matches[0].WinType)

	rr = ts.request(http.MethodGet, "/api/v1/matches/"+list.Matches[0].ID, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMutualDisconnectEndsMatch(t *testing.T) {
	ts := newTestServer(t)
	code, hostID, guestID := ts.createActiveGame(t)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+code+"/disconnect", map[string]string{"player_id": hostID})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+code+"/disconnect", map[string]string{"player_id": guestID})
	require.Equal(t, http.StatusOK, rr.Code)

	var game response.GameState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &game))
	assert.Equal(t, "ended", game.Status)
	require.NotNil(t, game.Winner)
	assert.Equal(t, "incomplete", *game.Winner)
	assert.True(t, game.Incomplete)
}

func TestGetMatchNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/matches/nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "MATCH_NOT_FOUND")
}
