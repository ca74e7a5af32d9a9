package main

import (
	"encoding/json"
	"errors"
	"net"
	"sync"

	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	sendQueueSize    = 64
	inboundPerSecond = 20
	inboundBurst     = 40
)

var (
	ErrUndefinedType    = errors.New("incorrect type")
	ErrMalformedMessage = errors.New("Malformed message")
	ErrRateLimited      = errors.New("Too many messages")
	ErrClientClosed     = errors.New("client closed")
	ErrSendQueueFull    = errors.New("send queue full")
)

// Client is one websocket connection. Writes go through a buffered queue
// drained by WritePump, so Send never blocks on the network.
type Client struct {
	ID string

	conn      net.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	limiter   *rate.Limiter
	logger    ConnLogger
}

func NewClient(conn net.Conn, ip string) *Client {
	id := uuid.NewString()
	return &Client{
		ID:      id,
		conn:    conn,
		send:    make(chan []byte, sendQueueSize),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(inboundPerSecond, inboundBurst),
		logger:  GetConnLogger(ip, id),
	}
}

func (c *Client) Session() Session {
	return Session{ID: c.ID, Log: c.logger}
}

// Send queues message for delivery. A client whose queue is full is closed.
func (c *Client) Send(message any) error {
	encoded, err := json.Marshal(message)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	select {
	case c.send <- encoded:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		c.Close()
		return ErrSendQueueFull
	}
}

func (c *Client) WritePump() {
	for {
		select {
		case msg := <-c.send:
			if err := wsutil.WriteServerText(c.conn, msg); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// ReadMessage returns one of the inbound message structs. Network errors end
// the connection; ErrUndefinedType, ErrMalformedMessage and ErrRateLimited
// do not.
func (c *Client) ReadMessage() (any, error) {
	msg, err := wsutil.ReadClientText(c.conn)
	if err != nil {
		return nil, err
	}
	if !c.limiter.Allow() {
		return nil, ErrRateLimited
	}
	envelope, err := UnmarshalJSON[struct {
		Type string `json:"type"`
	}](msg)
	if err != nil {
		return nil, ErrMalformedMessage
	}
	var parsed any
	switch envelope.Type {
	case "create_game":
		parsed, err = UnmarshalJSON[CreateGameMessage](msg)
	case "join_game":
		parsed, err = UnmarshalJSON[JoinGameMessage](msg)
	case "player_ready":
		parsed, err = UnmarshalJSON[PlayerReadyMessage](msg)
	case "swipe_action":
		parsed, err = UnmarshalJSON[SwipeActionMessage](msg)
	case "rejoin_room":
		parsed, err = UnmarshalJSON[RejoinRoomMessage](msg)
	default:
		return nil, ErrUndefinedType
	}
	if err != nil {
		return nil, ErrMalformedMessage
	}
	return parsed, nil
}

// IsRecoverable reports whether a ReadMessage error leaves the connection usable.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrUndefinedType) || errors.Is(err, ErrMalformedMessage) || errors.Is(err, ErrRateLimited)
}
