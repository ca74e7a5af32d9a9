// Package leaderboard persists finished-game results in SQLite and answers
// the ranking and aggregate queries shown on the scoreboard.
package leaderboard

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

const (
	MaxNameLength = 100
	DefaultLimit  = 50
	timeLayout    = "2006-01-02 15:04:05.000000"
)

var (
	ErrInvalidName  = errors.New("Invalid player name")
	ErrInvalidScore = errors.New("Invalid score")
)

type Entry struct {
	Rank         int       `json:"rank"`
	PlayerName   string    `json:"player_name"`
	Score        int       `json:"score"`
	WordsLearned int       `json:"words_learned"`
	RecordedAt   time.Time `json:"recorded_at"`
}

type Stats struct {
	TotalGames        int `json:"total_games"`
	HighestScore      int `json:"highest_score"`
	AverageScore      int `json:"average_score"`
	TotalWordsLearned int `json:"total_words_learned"`
}

// Store is what the HTTP layer needs from the leaderboard.
type Store interface {
	Submit(ctx context.Context, playerName string, score, wordsLearned int) (rank int, err error)
	Top(ctx context.Context, limit int) ([]Entry, error)
	Aggregate(ctx context.Context) (Stats, error)
}

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the SQLite database at dsn and applies the
// schema. ":memory:" gives a private in-memory database.
func Open(dsn string) (*SQLiteStore, error) {
	memory := dsn == ":memory:"
	if !memory {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		dsn += "?_busy_timeout=5000&_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if memory {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Submit records a result and returns its rank: one more than the number of
// strictly better scores.
func (s *SQLiteStore) Submit(ctx context.Context, playerName string, score, wordsLearned int) (int, error) {
	name := strings.TrimSpace(playerName)
	if name == "" || len([]rune(name)) > MaxNameLength {
		return 0, ErrInvalidName
	}
	if score < 0 || wordsLearned < 0 {
		return 0, ErrInvalidScore
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO leaderboard (player_name, score, words_learned, recorded_at) VALUES (?, ?, ?, ?)`,
		name, score, wordsLearned, s.now().UTC().Format(timeLayout),
	); err != nil {
		return 0, fmt.Errorf("insert result: %w", err)
	}

	var rank int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) + 1 FROM leaderboard WHERE score > ?`, score,
	).Scan(&rank); err != nil {
		return 0, fmt.Errorf("rank result: %w", err)
	}
	return rank, nil
}

// Top returns the best results, highest score first and most recent first
// among equal scores.
func (s *SQLiteStore) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT player_name, score, words_learned, recorded_at
        FROM leaderboard
        ORDER BY score DESC, recorded_at DESC, id DESC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e        Entry
			recorded string
		)
		if err := rows.Scan(&e.PlayerName, &e.Score, &e.WordsLearned, &recorded); err != nil {
			return nil, err
		}
		e.Rank = len(out) + 1
		e.RecordedAt, _ = time.Parse(timeLayout, recorded)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Aggregate(ctx context.Context) (Stats, error) {
	var (
		st  Stats
		avg float64
	)
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COALESCE(MAX(score), 0),
               COALESCE(AVG(score), 0),
               COALESCE(SUM(words_learned), 0)
        FROM leaderboard`,
	).Scan(&st.TotalGames, &st.HighestScore, &avg, &st.TotalWordsLearned)
	if err != nil {
		return Stats{}, err
	}
	st.AverageScore = int(avg)
	return st, nil
}
