package main

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iakhil/parlance/game"
	"github.com/iakhil/parlance/leaderboard"
)

func newTestHandler(t *testing.T, ratePerMinute int) (http.Handler, *HTTPHandler) {
	t.Helper()
	board, err := leaderboard.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { board.Close() })

	rooms := game.NewRegistry(testWords(8))
	hub := NewHub()
	h := &HTTPHandler{
		Gateway: NewGateway(rooms, hub, NewReconnectJWT("test-secret")),
		Hub:     hub,
		Rooms:   rooms,
		Board:   board,
	}
	config := &Config{AllowedOrigins: []string{"*"}, RateLimitPerMinute: ratePerMinute}
	return NewHTTPServer(h, config), h
}

func do(t *testing.T, handler http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	var parsed map[string]any
	json.Unmarshal(rec.Body.Bytes(), &parsed)
	return rec.Code, parsed
}

func TestHealth(t *testing.T) {
	handler, _ := newTestHandler(t, 100)
	status, body := do(t, handler, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"status": "ok", "websocket": "enabled"}, body)
}

func TestSubmitScore(t *testing.T) {
	handler, _ := newTestHandler(t, 100)

	status, body := do(t, handler, http.MethodPost, "/api/submit-score", `{"player_name":"Alice","score":120.7,"words_learned":5}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["rank"])
	assert.Equal(t, "Score submitted successfully", body["message"])

	_, body = do(t, handler, http.MethodPost, "/api/submit-score", `{"player_name":"Bob","score":200,"words_learned":5}`)
	assert.Equal(t, float64(1), body["rank"])
	_, body = do(t, handler, http.MethodPost, "/api/submit-score", `{"player_name":"Cat","score":50,"words_learned":2}`)
	assert.Equal(t, float64(3), body["rank"])
}

func TestSubmitScoreInvalid(t *testing.T) {
	handler, _ := newTestHandler(t, 100)

	status, body := do(t, handler, http.MethodPost, "/api/submit-score", `{"player_name":"   ","score":10}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid player name", body["error"])

	for _, score := range []string{"1e300", "-5", "4294967296"} {
		status, body = do(t, handler, http.MethodPost, "/api/submit-score", `{"player_name":"Alice","score":`+score+`}`)
		assert.Equal(t, http.StatusBadRequest, status, score)
		assert.Equal(t, "Invalid score", body["error"], score)
	}

	status, body = do(t, handler, http.MethodPost, "/api/submit-score", `{"player_name":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestLeaderboardAndStats(t *testing.T) {
	handler, _ := newTestHandler(t, 100)
	do(t, handler, http.MethodPost, "/api/submit-score", `{"player_name":"Alice","score":10,"words_learned":1}`)
	do(t, handler, http.MethodPost, "/api/submit-score", `{"player_name":"Bob","score":30,"words_learned":3}`)

	status, body := do(t, handler, http.MethodGet, "/api/leaderboard", "")
	require.Equal(t, http.StatusOK, status)
	rows := body["leaderboard"].([]any)
	require.Len(t, rows, 2)
	first := rows[0].(map[string]any)
	assert.Equal(t, "Bob", first["player_name"])
	assert.Equal(t, float64(1), first["rank"])
	assert.Equal(t, "Just now", first["time_ago"])

	status, body = do(t, handler, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["total_games"])
	assert.Equal(t, float64(30), body["highest_score"])
	assert.Equal(t, float64(4), body["total_words_learned"])
}

func TestEmptyLeaderboard(t *testing.T) {
	handler, _ := newTestHandler(t, 100)
	status, body := do(t, handler, http.MethodGet, "/api/leaderboard", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["leaderboard"])
}

func TestGetRoom(t *testing.T) {
	handler, h := newTestHandler(t, 100)
	room, err := h.Rooms.Create("a", "Alice")
	require.NoError(t, err)

	status, body := do(t, handler, http.MethodGet, "/api/rooms/"+strings.ToLower(room.Code), "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, room.Code, body["room_code"])
	assert.Equal(t, "waiting", body["status"])
	assert.Equal(t, []any{"Alice"}, body["players"])

	status, body = do(t, handler, http.MethodGet, "/api/rooms/NOPE00", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Room not found", body["error"])
}

func TestRateLimit(t *testing.T) {
	handler, _ := newTestHandler(t, 2)
	for i := 0; i < 2; i++ {
		status, _ := do(t, handler, http.MethodGet, "/api/stats", "")
		require.Equal(t, http.StatusOK, status)
	}
	status, _ := do(t, handler, http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusTooManyRequests, status)
}

type wsPeer struct {
	conn net.Conn
	rw   io.ReadWriter
}

func dial(t *testing.T, serverURL string) *wsPeer {
	t.Helper()
	conn, br, _, err := ws.Dial(context.Background(), "ws"+strings.TrimPrefix(serverURL, "http")+"/ws")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	var r io.Reader = conn
	if br != nil {
		r = br
	}
	return &wsPeer{conn: conn, rw: struct {
		io.Reader
		io.Writer
	}{r, conn}}
}

func (p *wsPeer) send(t *testing.T, payload string) {
	t.Helper()
	require.NoError(t, wsutil.WriteClientText(p.conn, []byte(payload)))
}

func (p *wsPeer) read(t *testing.T) map[string]any {
	t.Helper()
	data, err := wsutil.ReadServerText(p.rw)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	return parsed
}

func TestWebsocketMatchmaking(t *testing.T) {
	handler, _ := newTestHandler(t, 100)
	server := httptest.NewServer(handler)
	defer server.Close()

	alice := dial(t, server.URL)
	assert.Equal(t, "connected", alice.read(t)["type"])
	alice.send(t, `{"type":"create_game","player_name":"Alice"}`)
	created := alice.read(t)
	require.Equal(t, "room_created", created["type"])
	roomCode := created["room_code"].(string)

	bob := dial(t, server.URL)
	assert.Equal(t, "connected", bob.read(t)["type"])
	bob.send(t, `{"type":"unknown_event"}`)
	bob.send(t, `{"type":"join_game","room_code":"`+roomCode+`","player_name":"Bob"}`)
	joined := bob.read(t)
	assert.Equal(t, "room_joined", joined["type"])
	assert.Equal(t, "Alice", joined["opponent_name"])

	opponent := alice.read(t)
	assert.Equal(t, "opponent_joined", opponent["type"])
	assert.Equal(t, "Bob", opponent["opponent_name"])

	bob.conn.Close()
	left := alice.read(t)
	assert.Equal(t, "opponent_disconnected", left["type"])
	assert.Equal(t, "Opponent disconnected", left["message"])
}
