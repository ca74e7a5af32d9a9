package main

import (
	"github.com/iakhil/parlance/game"
	"github.com/iakhil/parlance/words"
)

// Inbound

type CreateGameMessage struct {
	PlayerName string `json:"player_name"`
}

type JoinGameMessage struct {
	RoomCode   string `json:"room_code"`
	PlayerName string `json:"player_name"`
}

type PlayerReadyMessage struct {
	RoomCode string `json:"room_code"`
}

type SwipeActionMessage struct {
	RoomCode        string  `json:"room_code"`
	WordIndex       int     `json:"word_index"`
	DefinitionIndex int     `json:"definition_index"`
	Direction       string  `json:"direction"`
	SwipeTimeMs     float64 `json:"swipe_time_ms"`
	IsCorrect       bool    `json:"is_correct"`
}

// RejoinRoomMessage names the room directly or through a rejoin key. The key
// wins when both are present and valid.
type RejoinRoomMessage struct {
	RoomCode  string `json:"room_code"`
	RejoinKey string `json:"rejoin_key"`
}

// Outbound

const (
	TypeConnected            = "connected"
	TypeRoomCreated          = "room_created"
	TypeRoomJoined           = "room_joined"
	TypeOpponentJoined       = "opponent_joined"
	TypeJoinError            = "join_error"
	TypeGameStart            = "game_start"
	TypeOpponentProgress     = "opponent_progress"
	TypeSwipeConfirmed       = "swipe_confirmed"
	TypeGameEnd              = "game_end"
	TypeOpponentDisconnected = "opponent_disconnected"
	TypeRoomRejoined         = "room_rejoined"
	TypeRejoinError          = "rejoin_error"
	TypeError                = "error"
)

type ConnectedMessage struct {
	Type         string `json:"type"`
	Message      string `json:"message"`
	ConnectionID string `json:"connection_id"`
}

type RoomCreatedMessage struct {
	Type       string `json:"type"`
	RoomCode   string `json:"room_code"`
	PlayerName string `json:"player_name"`
	RejoinKey  string `json:"rejoin_key,omitempty"`
}

type RoomJoinedMessage struct {
	Type         string `json:"type"`
	RoomCode     string `json:"room_code"`
	PlayerName   string `json:"player_name"`
	OpponentName string `json:"opponent_name"`
	RejoinKey    string `json:"rejoin_key,omitempty"`
}

type OpponentJoinedMessage struct {
	Type         string `json:"type"`
	OpponentName string `json:"opponent_name"`
}

type GameStartMessage struct {
	Type         string       `json:"type"`
	Words        []words.Word `json:"words"`
	OpponentName string       `json:"opponent_name"`
}

type OpponentProgressMessage struct {
	Type              string `json:"type"`
	OpponentScore     int    `json:"opponent_score"`
	OpponentWordIndex int    `json:"opponent_word_index"`
	OpponentFinished  bool   `json:"opponent_finished"`
}

type SwipeConfirmedMessage struct {
	Type       string `json:"type"`
	WordIndex  int    `json:"word_index"`
	Score      int    `json:"score"`
	TotalScore int    `json:"total_score"`
}

type GameEndMessage struct {
	Type          string  `json:"type"`
	YourScore     int     `json:"your_score"`
	OpponentScore int     `json:"opponent_score"`
	Winner        *string `json:"winner"`
	IsTie         bool    `json:"is_tie"`
}

type OpponentDisconnectedMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type RoomRejoinedMessage struct {
	Type     string      `json:"type"`
	RoomCode string      `json:"room_code"`
	Status   game.Status `json:"status"`
	Players  []string    `json:"players"`
}

// ErrorMessage carries join_error, rejoin_error and error replies.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
