package main

import (
	"encoding/json"
	"errors"
	"net"
	"testing"

	"github.com/gobwas/ws/wsutil"
	"golang.org/x/time/rate"
)

func TestSendMessage(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	c := NewClient(server, "127.0.0.1")
	defer c.Close()
	go c.WritePump()

	if err := c.Send(RoomCreatedMessage{Type: TypeRoomCreated, RoomCode: "ABC123", PlayerName: "Alice"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	data, err := wsutil.ReadServerText(client)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var parsed RoomCreatedMessage
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Errorf("incorrect json sent")
	}
	if parsed.Type != "room_created" {
		t.Errorf("wrong type expected: %v got: %v", "room_created", parsed.Type)
	}
	if parsed.RoomCode != "ABC123" {
		t.Errorf("wrong code expected: %v got: %v", "ABC123", parsed.RoomCode)
	}
}

func writeFromClient(conn net.Conn, payload string) {
	go wsutil.WriteClientText(conn, []byte(payload))
}

func TestReadMessage(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	c := NewClient(server, "127.0.0.1")
	defer c.Close()

	writeFromClient(client, `{"type":"swipe_action","room_code":"abc123","word_index":2,"definition_index":1,"direction":"left","swipe_time_ms":350.5,"is_correct":true}`)
	msg, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	swipe, ok := msg.(SwipeActionMessage)
	if !ok {
		t.Fatalf("wrong message type: %T", msg)
	}
	expected := SwipeActionMessage{RoomCode: "abc123", WordIndex: 2, DefinitionIndex: 1, Direction: "left", SwipeTimeMs: 350.5, IsCorrect: true}
	if swipe != expected {
		t.Errorf("expected: %+v got: %+v", expected, swipe)
	}

	writeFromClient(client, `{"type":"join_game","room_code":"ABC123","player_name":"Bob"}`)
	msg, err = c.ReadMessage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if join, ok := msg.(JoinGameMessage); !ok || join.PlayerName != "Bob" {
		t.Errorf("wrong join message: %#v", msg)
	}
}

func TestReadMessageErrors(t *testing.T) {
	cases := []struct {
		payload  string
		expected error
	}{
		{`{"type":"pause"}`, ErrUndefinedType},
		{`not json`, ErrMalformedMessage},
		{`{"type":"swipe_action","word_index":"first"}`, ErrMalformedMessage},
	}
	client, server := net.Pipe()
	defer client.Close()
	c := NewClient(server, "127.0.0.1")
	defer c.Close()

	for _, tc := range cases {
		writeFromClient(client, tc.payload)
		_, err := c.ReadMessage()
		if !errors.Is(err, tc.expected) {
			t.Errorf("%s: expected %v got %v", tc.payload, tc.expected, err)
		}
		if !IsRecoverable(err) {
			t.Errorf("%s: error should be recoverable", tc.payload)
		}
	}
}

func TestReadMessageRateLimited(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	c := NewClient(server, "127.0.0.1")
	defer c.Close()
	c.limiter = rate.NewLimiter(0, 1)

	writeFromClient(client, `{"type":"create_game","player_name":"Alice"}`)
	if _, err := c.ReadMessage(); err != nil {
		t.Fatalf("first message should pass: %v", err)
	}
	writeFromClient(client, `{"type":"create_game","player_name":"Alice"}`)
	if _, err := c.ReadMessage(); !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected rate limit got %v", err)
	}
}

func TestReadMessageConnectionClosed(t *testing.T) {
	client, server := net.Pipe()
	c := NewClient(server, "127.0.0.1")
	client.Close()
	_, err := c.ReadMessage()
	if err == nil || IsRecoverable(err) {
		t.Errorf("expected fatal error got %v", err)
	}
}

func TestSendAfterClose(t *testing.T) {
	_, server := net.Pipe()
	c := NewClient(server, "127.0.0.1")
	c.Close()
	c.Close()
	if err := c.Send(ErrorMessage{Type: TypeError}); !errors.Is(err, ErrClientClosed) {
		t.Errorf("expected ErrClientClosed got %v", err)
	}
}

func TestSendQueueFull(t *testing.T) {
	_, server := net.Pipe()
	c := NewClient(server, "127.0.0.1")
	for i := 0; i < sendQueueSize; i++ {
		if err := c.Send(ErrorMessage{Type: TypeError}); err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}
	if err := c.Send(ErrorMessage{Type: TypeError}); !errors.Is(err, ErrSendQueueFull) {
		t.Errorf("expected ErrSendQueueFull got %v", err)
	}
	if err := c.Send(ErrorMessage{Type: TypeError}); !errors.Is(err, ErrClientClosed) {
		t.Errorf("slow client should be closed, got %v", err)
	}
}

func TestHubEmit(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	c := NewClient(server, "127.0.0.1")
	defer c.Close()
	go c.WritePump()

	hub := NewHub()
	hub.Register(c)
	hub.Emit("someone-else", ErrorMessage{Type: TypeError, Message: "lost"})
	hub.Emit(c.ID, ErrorMessage{Type: TypeError, Message: "hello"})

	data, err := wsutil.ReadServerText(client)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var parsed ErrorMessage
	json.Unmarshal(data, &parsed)
	if parsed.Message != "hello" {
		t.Errorf("expected hello got %v", parsed.Message)
	}

	hub.Unregister(c.ID)
	if hub.Len() != 0 {
		t.Errorf("expected empty hub got %v", hub.Len())
	}
}
