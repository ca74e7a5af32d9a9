package game

import (
	"sync"
	"time"

	"github.com/iakhil/parlance/code"
	"github.com/iakhil/parlance/words"
)

const (
	WordsPerRoom        = 5
	DefaultCleanupGrace = 30 * time.Second
	maxCodeAttempts     = 16
)

// Registry owns every live room. All room state is read and written with mu
// held; callers receive snapshots and must do their I/O after the call
// returns.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	byConn map[string]map[string]struct{} // connection id -> member room codes

	pool      *words.Pool
	grace     time.Duration
	newCode   func() string
	now       func() time.Time
	onCleanup func(code string)
}

type Option func(*Registry)

// WithCleanupGrace sets the delay between a game ending and its room being deleted.
func WithCleanupGrace(d time.Duration) Option {
	return func(r *Registry) { r.grace = d }
}

func WithCodeGenerator(gen func() string) Option {
	return func(r *Registry) { r.newCode = gen }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithCleanupHook registers fn to run, without the lock, after a finished
// room has been deleted by its grace timer.
func WithCleanupHook(fn func(code string)) Option {
	return func(r *Registry) { r.onCleanup = fn }
}

func NewRegistry(pool *words.Pool, opts ...Option) *Registry {
	r := &Registry{
		rooms:   make(map[string]*Room),
		byConn:  make(map[string]map[string]struct{}),
		pool:    pool,
		grace:   DefaultCleanupGrace,
		newCode: code.GenerateRandom,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create opens a waiting room with connID in the first slot.
func (r *Registry) Create(connID, name string) (Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomCode, err := r.freshCodeLocked()
	if err != nil {
		return Room{}, err
	}
	room := &Room{
		Code:      roomCode,
		Words:     r.pool.Sample(WordsPerRoom),
		Status:    StatusWaiting,
		Player1:   newPlayer(connID, name),
		CreatedAt: r.now(),
		IdleSince: r.now(),
	}
	r.rooms[roomCode] = room
	r.addMemberLocked(room, connID)
	return room.snapshot(), nil
}

func (r *Registry) freshCodeLocked() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		c := r.newCode()
		if _, taken := r.rooms[c]; !taken {
			return c, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

// Join puts connID into the second slot of a waiting room.
func (r *Registry) Join(roomCode, connID, name string) (Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomCode]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	if room.Status != StatusWaiting || room.Player2 != nil || room.PlayerFor(connID) != nil {
		return Room{}, ErrRoomNotJoinable
	}
	room.Player2 = newPlayer(connID, name)
	r.addMemberLocked(room, connID)
	return room.snapshot(), nil
}

func (r *Registry) Get(roomCode string) (Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomCode]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	return room.snapshot(), nil
}

// Remove deletes the room if present. Removing an absent code is a no-op.
func (r *Registry) Remove(roomCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteLocked(roomCode)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// ForEachRoomContainingConnection calls fn with a snapshot of every room
// connID is a member of. fn runs with the registry lock held and must not
// call back into the registry.
func (r *Registry) ForEachRoomContainingConnection(connID string, fn func(Room)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eachRoomLocked(connID, func(room *Room) { fn(room.snapshot()) })
}

func (r *Registry) eachRoomLocked(connID string, fn func(*Room)) {
	codes := make([]string, 0, len(r.byConn[connID]))
	for c := range r.byConn[connID] {
		codes = append(codes, c)
	}
	for _, c := range codes {
		if room, ok := r.rooms[c]; ok {
			fn(room)
		}
	}
}

type ReadyResult struct {
	Room    Room
	Started bool
}

// Ready marks connID ready and starts the game once both slots are ready.
func (r *Registry) Ready(roomCode, connID string) (ReadyResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomCode]
	if !ok {
		return ReadyResult{}, ErrRoomNotFound
	}
	started, err := room.ready(connID)
	if err != nil {
		return ReadyResult{}, err
	}
	return ReadyResult{Room: room.snapshot(), Started: started}, nil
}

type SwipeResult struct {
	Room Room
	// Player is the acting player after the swipe was applied.
	Player   Player
	Points   int
	GameOver bool
}

// Swipe records one action for connID. When it completes the game the room
// is marked finished and scheduled for deletion after the grace period.
func (r *Registry) Swipe(roomCode, connID string, s Swipe) (SwipeResult, error) {
	if err := s.Validate(); err != nil {
		return SwipeResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomCode]
	if !ok {
		return SwipeResult{}, ErrRoomNotFound
	}
	points, over, err := room.swipe(connID, s)
	if err != nil {
		return SwipeResult{}, err
	}
	if over {
		r.scheduleCleanupLocked(room)
	}
	return SwipeResult{
		Room:     room.snapshot(),
		Player:   *room.PlayerFor(connID).clone(),
		Points:   points,
		GameOver: over,
	}, nil
}

type DisconnectResult struct {
	// Room is the state after the disconnect was applied; for a removed room
	// it is the last state before deletion.
	Room    Room
	Removed bool
	// Notify is set when the remaining members must hear about the departure.
	Notify bool
	// Recipients are the members still attached to the room.
	Recipients []string
}

// Disconnect detaches connID from every room it belongs to. A departing
// creator deletes the room; a departing joiner frees the second slot and a
// game in progress goes back to waiting. A finished room keeps its status and
// is still deleted by its grace timer.
func (r *Registry) Disconnect(connID string) []DisconnectResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []DisconnectResult
	r.eachRoomLocked(connID, func(room *Room) {
		res := DisconnectResult{Recipients: room.MembersExcept(connID)}
		switch {
		case room.Player1 != nil && room.Player1.ConnID == connID:
			res.Removed = true
			res.Notify = room.Player2 != nil
			res.Room = room.snapshot()
			r.deleteLocked(room.Code)
		case room.Player2 != nil && room.Player2.ConnID == connID:
			room.Player2 = nil
			if room.Status == StatusPlaying {
				room.Player1.resetProgress()
				room.Status = StatusWaiting
				room.IdleSince = r.now()
			}
			r.removeMemberLocked(room, connID)
			res.Notify = true
			res.Room = room.snapshot()
		default:
			r.removeMemberLocked(room, connID)
			res.Room = room.snapshot()
		}
		out = append(out, res)
	})
	return out
}

// Rejoin attaches connID to an existing room's broadcasts. It does not give
// the connection a slot.
func (r *Registry) Rejoin(roomCode, connID string) (Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomCode]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	r.addMemberLocked(room, connID)
	return room.snapshot(), nil
}

// Sweep deletes rooms that have been waiting for an opponent longer than
// maxAge and returns their last state.
func (r *Registry) Sweep(maxAge time.Duration) []Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxAge)
	var expired []Room
	for c, room := range r.rooms {
		if room.Status == StatusWaiting && room.IdleSince.Before(cutoff) {
			expired = append(expired, room.snapshot())
			r.deleteLocked(c)
		}
	}
	return expired
}

func (r *Registry) scheduleCleanupLocked(room *Room) {
	r.cancelCleanupLocked(room)
	roomCode := room.Code
	var timer *time.Timer
	// Stop cannot recall a callback already waiting on mu, so the callback
	// checks that its timer is still the room's pending cleanup.
	timer = time.AfterFunc(r.grace, func() {
		r.mu.Lock()
		current, ok := r.rooms[roomCode]
		removed := ok && current == room && current.cleanup == timer && current.Status == StatusFinished
		if removed {
			r.deleteLocked(roomCode)
		}
		r.mu.Unlock()
		if removed && r.onCleanup != nil {
			r.onCleanup(roomCode)
		}
	})
	room.cleanup = timer
}

func (r *Registry) cancelCleanupLocked(room *Room) {
	if room.cleanup != nil {
		room.cleanup.Stop()
		room.cleanup = nil
	}
}

func (r *Registry) deleteLocked(roomCode string) {
	room, ok := r.rooms[roomCode]
	if !ok {
		return
	}
	r.cancelCleanupLocked(room)
	for _, m := range room.Members {
		r.unindexLocked(m, roomCode)
	}
	delete(r.rooms, roomCode)
}

func (r *Registry) addMemberLocked(room *Room, connID string) {
	room.addMember(connID)
	set, ok := r.byConn[connID]
	if !ok {
		set = make(map[string]struct{})
		r.byConn[connID] = set
	}
	set[room.Code] = struct{}{}
}

func (r *Registry) removeMemberLocked(room *Room, connID string) {
	room.removeMember(connID)
	r.unindexLocked(connID, room.Code)
}

func (r *Registry) unindexLocked(connID, roomCode string) {
	set := r.byConn[connID]
	delete(set, roomCode)
	if len(set) == 0 {
		delete(r.byConn, connID)
	}
}
