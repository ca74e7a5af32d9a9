package main

import (
	"context"
	"time"

	"github.com/iakhil/parlance/code"
	"github.com/iakhil/parlance/game"
)

// Session identifies the connection an inbound message came from.
type Session struct {
	ID  string
	Log ConnLogger
}

// Gateway turns inbound messages into registry operations and fans the
// results out. Registry calls return before anything is emitted.
type Gateway struct {
	rooms *game.Registry
	out   Emitter
	keys  *ReconnectJWT
}

func NewGateway(rooms *game.Registry, out Emitter, keys *ReconnectJWT) *Gateway {
	return &Gateway{rooms: rooms, out: out, keys: keys}
}

func (g *Gateway) Connect(s Session) {
	g.out.Emit(s.ID, ConnectedMessage{Type: TypeConnected, Message: "Connected to server", ConnectionID: s.ID})
}

func (g *Gateway) Handle(s Session, msg any) {
	switch m := msg.(type) {
	case CreateGameMessage:
		g.createGame(s, m)
	case JoinGameMessage:
		g.joinGame(s, m)
	case PlayerReadyMessage:
		g.playerReady(s, m)
	case SwipeActionMessage:
		g.swipe(s, m)
	case RejoinRoomMessage:
		g.rejoin(s, m)
	}
}

// Reject answers a message that could not be read or decoded.
func (g *Gateway) Reject(s Session, err error) {
	s.Log.Rejected("read", err)
	g.out.Emit(s.ID, ErrorMessage{Type: TypeError, Message: err.Error()})
}

func (g *Gateway) createGame(s Session, m CreateGameMessage) {
	room, err := g.rooms.Create(s.ID, m.PlayerName)
	if err != nil {
		g.fail(s, "create_game", TypeError, err)
		return
	}
	g.out.Emit(s.ID, RoomCreatedMessage{
		Type:       TypeRoomCreated,
		RoomCode:   room.Code,
		PlayerName: room.Player1.Name,
		RejoinKey:  g.rejoinKey(s, room.Code),
	})
	s.Log.CreatedRoom(room.Code)
}

func (g *Gateway) joinGame(s Session, m JoinGameMessage) {
	room, err := g.rooms.Join(code.Normalize(m.RoomCode), s.ID, m.PlayerName)
	if err != nil {
		g.fail(s, "join_game", TypeJoinError, err)
		return
	}
	g.out.Emit(s.ID, RoomJoinedMessage{
		Type:         TypeRoomJoined,
		RoomCode:     room.Code,
		PlayerName:   room.Player2.Name,
		OpponentName: room.Player1.Name,
		RejoinKey:    g.rejoinKey(s, room.Code),
	})
	for _, id := range room.MembersExcept(s.ID) {
		g.out.Emit(id, OpponentJoinedMessage{Type: TypeOpponentJoined, OpponentName: room.Player2.Name})
	}
	s.Log.JoinedRoom(room.Code)
}

func (g *Gateway) playerReady(s Session, m PlayerReadyMessage) {
	res, err := g.rooms.Ready(code.Normalize(m.RoomCode), s.ID)
	if err != nil {
		g.fail(s, "player_ready", TypeError, err)
		return
	}
	if !res.Started {
		return
	}
	room := res.Room
	for _, id := range room.Members {
		opponentName := ""
		if opp := room.OpponentOf(id); opp != nil {
			opponentName = opp.Name
		}
		g.out.Emit(id, GameStartMessage{Type: TypeGameStart, Words: room.Words, OpponentName: opponentName})
	}
	s.Log.GameStarted(room.Code)
}

func (g *Gateway) swipe(s Session, m SwipeActionMessage) {
	res, err := g.rooms.Swipe(code.Normalize(m.RoomCode), s.ID, game.Swipe{
		WordIndex:       m.WordIndex,
		DefinitionIndex: m.DefinitionIndex,
		Direction:       m.Direction,
		SwipeTimeMs:     m.SwipeTimeMs,
		IsCorrect:       m.IsCorrect,
	})
	if err != nil {
		g.fail(s, "swipe_action", TypeError, err)
		return
	}
	progress := OpponentProgressMessage{
		Type:              TypeOpponentProgress,
		OpponentScore:     res.Player.Score,
		OpponentWordIndex: res.Player.CurrentWordIndex,
		OpponentFinished:  res.Player.Finished,
	}
	for _, id := range res.Room.MembersExcept(s.ID) {
		g.out.Emit(id, progress)
	}
	if res.GameOver {
		g.endGame(s, res.Room)
	}
	g.out.Emit(s.ID, SwipeConfirmedMessage{
		Type:       TypeSwipeConfirmed,
		WordIndex:  m.WordIndex,
		Score:      res.Points,
		TotalScore: res.Player.Score,
	})
}

func (g *Gateway) endGame(s Session, room game.Room) {
	winner, tie := room.Winner()
	var winnerName *string
	if winner != nil {
		name := winner.Name
		winnerName = &name
	}
	for _, id := range room.Members {
		me, opp := room.PlayerFor(id), room.OpponentOf(id)
		if me == nil {
			me, opp = room.Player1, room.Player2
		}
		g.out.Emit(id, GameEndMessage{
			Type:          TypeGameEnd,
			YourScore:     me.Score,
			OpponentScore: opp.Score,
			Winner:        winnerName,
			IsTie:         tie,
		})
	}
	logged := ""
	if winner != nil {
		logged = winner.Name
	}
	s.Log.GameEnded(room.Code, logged, tie)
}

func (g *Gateway) rejoin(s Session, m RejoinRoomMessage) {
	roomCode := code.Normalize(m.RoomCode)
	if m.RejoinKey != "" && g.keys != nil {
		if signed := g.keys.RoomCodeFromRejoinKey(m.RejoinKey); signed != "" {
			roomCode = signed
		}
	}
	room, err := g.rooms.Rejoin(roomCode, s.ID)
	if err != nil {
		g.fail(s, "rejoin_room", TypeRejoinError, err)
		return
	}
	g.out.Emit(s.ID, RoomRejoinedMessage{
		Type:     TypeRoomRejoined,
		RoomCode: room.Code,
		Status:   room.Status,
		Players:  playerNames(room),
	})
	s.Log.RejoinedRoom(room.Code)
}

// Disconnect detaches the connection from every room and tells whoever is
// left behind.
func (g *Gateway) Disconnect(s Session) {
	for _, res := range g.rooms.Disconnect(s.ID) {
		if res.Notify {
			for _, id := range res.Recipients {
				g.out.Emit(id, OpponentDisconnectedMessage{Type: TypeOpponentDisconnected, Message: "Opponent disconnected"})
			}
		}
		if res.Removed {
			s.Log.RemovingRoom(res.Room.Code)
		} else {
			s.Log.LeftRoom(res.Room.Code)
		}
	}
}

// Expire drops waiting rooms older than ttl and tells their members.
func (g *Gateway) Expire(ttl time.Duration) int {
	expired := g.rooms.Sweep(ttl)
	for _, room := range expired {
		for _, id := range room.Members {
			g.out.Emit(id, ErrorMessage{Type: TypeError, Message: "Room expired"})
		}
	}
	if len(expired) > 0 {
		LogRoomsExpired(len(expired))
	}
	return len(expired)
}

// RunSweeper calls Expire every interval until ctx is done.
func (g *Gateway) RunSweeper(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.Expire(ttl)
		case <-ctx.Done():
			return
		}
	}
}

func (g *Gateway) fail(s Session, event, replyType string, err error) {
	s.Log.Rejected(event, err)
	g.out.Emit(s.ID, ErrorMessage{Type: replyType, Message: err.Error()})
}

func (g *Gateway) rejoinKey(s Session, roomCode string) string {
	if g.keys == nil {
		return ""
	}
	key, err := g.keys.GenerateRejoinKey(roomCode)
	if err != nil {
		s.Log.RejoinKeyFailed(err)
		return ""
	}
	return key
}

func playerNames(room game.Room) []string {
	names := make([]string, 0, 2)
	for _, p := range []*game.Player{room.Player1, room.Player2} {
		if p != nil {
			names = append(names, p.Name)
		}
	}
	return names
}
