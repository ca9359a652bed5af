package game

import (
	"context"
	"errors"
	"strings"
	"sync"

	"skirmish/server/internal/net/proto"
	"skirmish/server/logging"
	"skirmish/server/logging/lifecycle"
)

// Registry errors surfaced to the gateway. Everything else in the
// protocol fails silently.
var (
	ErrRoomExists   = errors.New("room exists")
	ErrRoomNotFound = errors.New("no such room")
)

// Registry is the process-wide room map. It owns creation, lookup, and
// removal; everything inside a room belongs to that room's goroutine.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	cfg       Config
	publisher logging.Publisher
}

// RegistryStats summarizes the registry for diagnostics.
type RegistryStats struct {
	Rooms   int `json:"rooms"`
	Players int `json:"players"`
	Running int `json:"running"`
}

// NewRegistry constructs an empty registry.
func NewRegistry(cfg Config, publisher logging.Publisher) *Registry {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Registry{
		rooms:     make(map[string]*Room),
		cfg:       cfg.withDefaults(),
		publisher: publisher,
	}
}

// Create makes a room with the sender as host and first member, starts
// its goroutine, and registers it. An explicit code that collides
// returns ErrRoomExists; generated codes are trusted to be free.
func (reg *Registry) Create(code, name, hostID string, info proto.PlayerInfo, conn Conn) (*Room, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = GenerateCode()
	}

	reg.mu.Lock()
	if _, taken := reg.rooms[code]; taken {
		reg.mu.Unlock()
		return nil, ErrRoomExists
	}
	room := newRoom(code, name, reg.cfg, reg.publisher, reg.Remove)
	room.hostID = hostID
	host := newPlayer(hostID, info, TeamBlue, conn)
	room.players[hostID] = host
	room.order = append(room.order, hostID)
	room.memberCount.Store(1)
	reg.rooms[code] = room
	reg.mu.Unlock()

	go room.Run()

	lifecycle.RoomCreated(context.Background(), reg.publisher,
		logging.EntityRef{ID: hostID, Kind: logging.EntityKindPlayer},
		lifecycle.RoomPayload{Code: code, Name: room.Name(), Members: 1})

	return room, nil
}

// Get looks a room up by code.
func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[strings.ToUpper(code)]
	return room, ok
}

// Remove drops a room from the map. Called by rooms as they destroy
// themselves; removing an absent code is harmless.
func (reg *Registry) Remove(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

// Rooms returns a snapshot of every registered room.
func (reg *Registry) Rooms() []*Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// DropSession posts a leave to every room. Membership is not indexed
// by session, so disconnect cleanup scans the whole registry; each
// room decides on its own goroutine whether the session was a member.
func (reg *Registry) DropSession(sessionID string) {
	for _, room := range reg.Rooms() {
		room.Post(LeaveCommand{SessionID: sessionID})
	}
}

// Shutdown asks every room to tear down. Used on process exit.
func (reg *Registry) Shutdown() {
	for _, room := range reg.Rooms() {
		room.Close()
	}
}

// Stats reports aggregate counts for the diagnostics endpoint. Counts
// are point-in-time hints, not invariants.
func (reg *Registry) Stats() RegistryStats {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	stats := RegistryStats{Rooms: len(reg.rooms)}
	for _, room := range reg.rooms {
		stats.Players += room.MemberCount()
		if room.Running() {
			stats.Running++
		}
	}
	return stats
}
