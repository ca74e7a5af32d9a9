package main

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/gobwas/ws"

	"github.com/iakhil/parlance/code"
	"github.com/iakhil/parlance/game"
	"github.com/iakhil/parlance/leaderboard"
)

type HTTPHandler struct {
	Gateway *Gateway
	Hub     *Hub
	Rooms   *game.Registry
	Board   leaderboard.Store
	Now     func() time.Time
}

func NewHTTPServer(h *HTTPHandler, config *Config) http.Handler {
	if h.Now == nil {
		h.Now = time.Now
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	}))
	r.Use(middleware.RealIP)
	r.Use(middleware.Heartbeat("/ping"))

	r.Get("/ws", h.websocket())
	r.Get("/health", h.health())
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(config.RateLimitPerMinute, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint)))
		r.Post("/api/submit-score", h.submitScore())
		r.Get("/api/leaderboard", h.getLeaderboard())
		r.Get("/api/stats", h.getStats())
		r.Get("/api/rooms/{roomCode}", h.getRoom())
	})
	return r
}

func (h *HTTPHandler) websocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			LogErrorWhileUpgradingHTTP(err)
			return
		}
		client := NewClient(conn, r.RemoteAddr)
		session := client.Session()
		h.Hub.Register(client)
		go client.WritePump()
		session.Log.Connected()
		h.Gateway.Connect(session)

		defer func() {
			h.Gateway.Disconnect(session)
			h.Hub.Unregister(client.ID)
			client.Close()
			session.Log.Disconnected()
		}()

		for {
			msg, err := client.ReadMessage()
			if err != nil {
				if errors.Is(err, ErrUndefinedType) {
					continue
				}
				if IsRecoverable(err) {
					h.Gateway.Reject(session, err)
					continue
				}
				return
			}
			h.Gateway.Handle(session, msg)
		}
	}
}

func (h *HTTPHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "websocket": "enabled"})
	}
}

// maxSubmittedScore bounds scores before they are converted to int.
const maxSubmittedScore = math.MaxInt32

type submitScoreRequest struct {
	PlayerName   string  `json:"player_name"`
	Score        float64 `json:"score"`
	WordsLearned int     `json:"words_learned"`
}

func (h *HTTPHandler) submitScore() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if math.IsNaN(req.Score) || req.Score < 0 || req.Score > maxSubmittedScore {
			writeError(w, http.StatusBadRequest, leaderboard.ErrInvalidScore.Error())
			return
		}
		rank, err := h.Board.Submit(r.Context(), req.PlayerName, int(req.Score), req.WordsLearned)
		switch {
		case errors.Is(err, leaderboard.ErrInvalidName), errors.Is(err, leaderboard.ErrInvalidScore):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			LogDatabaseError(err)
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rank": rank, "message": "Score submitted successfully"})
	}
}

type leaderboardRow struct {
	Rank         int    `json:"rank"`
	PlayerName   string `json:"player_name"`
	Score        int    `json:"score"`
	WordsLearned int    `json:"words_learned"`
	TimeAgo      string `json:"time_ago"`
}

func (h *HTTPHandler) getLeaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := h.Board.Top(r.Context(), leaderboard.DefaultLimit)
		if err != nil {
			LogDatabaseError(err)
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		now := h.Now()
		rows := make([]leaderboardRow, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, leaderboardRow{
				Rank:         e.Rank,
				PlayerName:   e.PlayerName,
				Score:        e.Score,
				WordsLearned: e.WordsLearned,
				TimeAgo:      leaderboard.TimeAgo(now, e.RecordedAt),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"leaderboard": rows})
	}
}

func (h *HTTPHandler) getStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.Board.Aggregate(r.Context())
		if err != nil {
			LogDatabaseError(err)
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func (h *HTTPHandler) getRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, err := h.Rooms.Get(code.Normalize(chi.URLParam(r, "roomCode")))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"room_code": room.Code,
			"status":    room.Status,
			"players":   playerNames(room),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
