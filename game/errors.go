package game

import "errors"

var (
	ErrRoomNotFound       = errors.New("Room not found")
	ErrRoomNotJoinable    = errors.New("Room is full or already in progress")
	ErrPlayerNotInRoom    = errors.New("Player not in room")
	ErrPlayerNotFound     = errors.New("Player not found")
	ErrGameNotInProgress  = errors.New("Game not in progress")
	ErrInvalidWordIndex   = errors.New("Invalid word index")
	ErrValidation         = errors.New("Invalid payload")
	ErrCodeSpaceExhausted = errors.New("Could not allocate a room code")
)
