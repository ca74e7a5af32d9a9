package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/iakhil/parlance/words"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// WordScore records one accepted swipe.
type WordScore struct {
	WordIndex int     `json:"word_index"`
	Score     int     `json:"score"`
	TimeMs    float64 `json:"time_ms"`
	IsCorrect bool    `json:"is_correct"`
}

type Player struct {
	ConnID           string      `json:"-"`
	Name             string      `json:"name"`
	Score            int         `json:"score"`
	CurrentWordIndex int         `json:"current_word_index"`
	WordScores       []WordScore `json:"word_scores"`
	Ready            bool        `json:"ready"`
	Finished         bool        `json:"finished"`
}

func newPlayer(connID, name string) *Player {
	return &Player{ConnID: connID, Name: NormalizeName(name), WordScores: []WordScore{}}
}

// Streak is the number of earlier swipes that scored points.
func (p *Player) Streak() int {
	streak := 0
	for _, ws := range p.WordScores {
		if ws.Score > 0 {
			streak++
		}
	}
	return streak
}

func (p *Player) resetProgress() {
	p.Score = 0
	p.CurrentWordIndex = 0
	p.WordScores = []WordScore{}
	p.Ready = false
	p.Finished = false
}

func (p *Player) clone() *Player {
	if p == nil {
		return nil
	}
	c := *p
	c.WordScores = slices.Clone(p.WordScores)
	return &c
}

// Swipe is a player's verdict on one definition card.
type Swipe struct {
	WordIndex       int
	DefinitionIndex int
	Direction       string
	SwipeTimeMs     float64
	IsCorrect       bool
}

func (s Swipe) Validate() error {
	if s.SwipeTimeMs < 0 {
		return fmt.Errorf("%w: swipe_time_ms must not be negative", ErrValidation)
	}
	if s.DefinitionIndex < 0 {
		return fmt.Errorf("%w: definition_index must not be negative", ErrValidation)
	}
	switch s.Direction {
	case "", "left", "right":
	default:
		return fmt.Errorf("%w: direction must be left or right", ErrValidation)
	}
	return nil
}

// Room is one two-player match. Values handed out by the Registry are
// snapshots; mutating them does not affect the registry.
type Room struct {
	Code      string       `json:"room_code"`
	Words     []words.Word `json:"words"`
	Status    Status       `json:"status"`
	Player1   *Player      `json:"player1"`
	Player2   *Player      `json:"player2"`
	CreatedAt time.Time    `json:"created_at"`
	// IdleSince is when the room last started waiting for an opponent.
	IdleSince time.Time `json:"-"`
	// Members are the connections receiving room broadcasts: the occupied
	// slots plus any connection attached through rejoin.
	Members []string `json:"-"`

	cleanup *time.Timer
}

// PlayerFor returns the slot held by connID, or nil.
func (r *Room) PlayerFor(connID string) *Player {
	if r.Player1 != nil && r.Player1.ConnID == connID {
		return r.Player1
	}
	if r.Player2 != nil && r.Player2.ConnID == connID {
		return r.Player2
	}
	return nil
}

// OpponentOf returns the slot opposite connID, or nil when connID holds no
// slot or the other slot is empty.
func (r *Room) OpponentOf(connID string) *Player {
	switch {
	case r.Player1 != nil && r.Player1.ConnID == connID:
		return r.Player2
	case r.Player2 != nil && r.Player2.ConnID == connID:
		return r.Player1
	}
	return nil
}

// Winner returns the player with the strictly higher score. tie is true when
// both scores are equal.
func (r *Room) Winner() (winner *Player, tie bool) {
	if r.Player1 == nil || r.Player2 == nil {
		return nil, false
	}
	switch {
	case r.Player1.Score > r.Player2.Score:
		return r.Player1, false
	case r.Player2.Score > r.Player1.Score:
		return r.Player2, false
	}
	return nil, true
}

// MembersExcept lists the broadcast members other than connID.
func (r *Room) MembersExcept(connID string) []string {
	out := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		if m != connID {
			out = append(out, m)
		}
	}
	return out
}

func (r *Room) hasMember(connID string) bool {
	return slices.Contains(r.Members, connID)
}

func (r *Room) addMember(connID string) {
	if !r.hasMember(connID) {
		r.Members = append(r.Members, connID)
	}
}

func (r *Room) removeMember(connID string) {
	if i := slices.Index(r.Members, connID); i >= 0 {
		r.Members = slices.Delete(r.Members, i, i+1)
	}
}

func (r *Room) ready(connID string) (started bool, err error) {
	p := r.PlayerFor(connID)
	if p == nil {
		return false, ErrPlayerNotInRoom
	}
	p.Ready = true
	if r.Status == StatusWaiting && r.Player2 != nil && r.Player1.Ready && r.Player2.Ready {
		r.Status = StatusPlaying
		return true, nil
	}
	return false, nil
}

// swipe applies s for connID and reports the points earned and whether both
// players are now done.
func (r *Room) swipe(connID string, s Swipe) (points int, over bool, err error) {
	if r.Status != StatusPlaying {
		return 0, false, ErrGameNotInProgress
	}
	p := r.PlayerFor(connID)
	if p == nil {
		return 0, false, ErrPlayerNotFound
	}
	if s.WordIndex < 0 || s.WordIndex >= len(r.Words) || s.WordIndex != p.CurrentWordIndex {
		return 0, false, ErrInvalidWordIndex
	}

	points = Score(s.IsCorrect, s.SwipeTimeMs, p.Streak())
	p.WordScores = append(p.WordScores, WordScore{
		WordIndex: s.WordIndex,
		Score:     points,
		TimeMs:    s.SwipeTimeMs,
		IsCorrect: s.IsCorrect,
	})
	p.Score += points
	p.CurrentWordIndex = s.WordIndex + 1
	p.Finished = p.CurrentWordIndex == len(r.Words)

	if r.Player1.Finished && r.Player2 != nil && r.Player2.Finished {
		r.Status = StatusFinished
		return points, true, nil
	}
	return points, false, nil
}

func (r *Room) snapshot() Room {
	return Room{
		Code:      r.Code,
		Words:     slices.Clone(r.Words),
		Status:    r.Status,
		Player1:   r.Player1.clone(),
		Player2:   r.Player2.clone(),
		CreatedAt: r.CreatedAt,
		IdleSince: r.IdleSince,
		Members:   slices.Clone(r.Members),
	}
}
