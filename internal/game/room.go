package game

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"skirmish/server/internal/net/proto"
	"skirmish/server/logging"
	"skirmish/server/logging/lifecycle"
	"skirmish/server/logging/network"
)

// Status is the room's match state machine.
type Status int

const (
	StatusNotStarted Status = iota
	StatusRunning
)

// CapturePoint holds a domination control value in [-1, 1]; positive
// favors blue, negative red.
type CapturePoint struct {
	Progress float64
}

// Room owns a lobby's configuration, membership, and match state. All
// mutation flows through a single goroutine consuming the inbox, so no
// two operations on the same room ever interleave; the only cross-
// goroutine entry points are Post, Code, and Name.
type Room struct {
	code     string
	name     string
	hostID   string
	mode     proto.Mode
	settings proto.Settings

	players map[string]*Player
	// order preserves join order for roster text and deterministic
	// host succession.
	order []string

	status    Status
	remaining float64
	scoreBlue float64
	scoreRed  float64
	points    []CapturePoint

	tick   uint64
	ticker *time.Ticker

	// memberCount and running shadow len(players) and status for
	// cross-goroutine readers (diagnostics); the room goroutine is the
	// only writer.
	memberCount atomic.Int64
	running     atomic.Bool

	epochs   map[string]uint64
	respawns map[respawnKey]*time.Timer

	cfg       Config
	rng       *rand.Rand
	publisher logging.Publisher
	onEmpty   func(code string)

	inbox     chan any
	quit      chan struct{}
	closeOnce sync.Once
}

type respawnKey struct {
	sessionID string
	epoch     uint64
}

func newRoom(code, name string, cfg Config, publisher logging.Publisher, onEmpty func(code string)) *Room {
	if name == "" {
		name = defaultRoomName
	}
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	points := make([]CapturePoint, capturePointCount)
	return &Room{
		code:      code,
		name:      name,
		mode:      proto.ModeDeathmatch,
		settings:  proto.DefaultSettings(),
		players:   make(map[string]*Player),
		points:    points,
		epochs:    make(map[string]uint64),
		respawns:  make(map[respawnKey]*time.Timer),
		cfg:       cfg.withDefaults(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		publisher: publisher,
		onEmpty:   onEmpty,
		inbox:     make(chan any, cfg.withDefaults().InboxSize),
		quit:      make(chan struct{}),
	}
}

// Code returns the room's immutable join code.
func (r *Room) Code() string { return r.code }

// Name returns the room's immutable display name.
func (r *Room) Name() string { return r.name }

// MemberCount reports the current membership size. Safe from any
// goroutine.
func (r *Room) MemberCount() int { return int(r.memberCount.Load()) }

// Running reports whether a match is in progress. Safe from any
// goroutine.
func (r *Room) Running() bool { return r.running.Load() }

// Post queues a command for the room goroutine. Commands posted after
// the room is destroyed are dropped.
func (r *Room) Post(cmd any) {
	select {
	case <-r.quit:
	case r.inbox <- cmd:
	}
}

// Close asks the room goroutine to tear the room down. Safe to call
// from any goroutine and after destruction.
func (r *Room) Close() {
	r.Post(closeCommand{})
}

// Run consumes commands and tick events until the room is destroyed.
// The ticker channel is nil while no match runs, so the select only
// sees ticks in StatusRunning.
func (r *Room) Run() {
	for {
		var tickC <-chan time.Time
		if r.ticker != nil {
			tickC = r.ticker.C
		}
		select {
		case <-r.quit:
			return
		case cmd := <-r.inbox:
			r.handleCommand(cmd)
		case <-tickC:
			r.stepTick()
		}
	}
}

// destroy cancels the tick loop and every pending respawn, releases
// the registry slot, and stops the run loop. Must only be called from
// the room goroutine (or before Run starts).
func (r *Room) destroy() {
	r.closeOnce.Do(func() {
		r.stopTicker()
		r.status = StatusNotStarted
		r.running.Store(false)
		for key, timer := range r.respawns {
			timer.Stop()
			delete(r.respawns, key)
		}
		close(r.quit)
		if r.onEmpty != nil {
			r.onEmpty(r.code)
		}
		lifecycle.RoomDestroyed(context.Background(), r.publisher, r.tick,
			r.entityRef(), lifecycle.RoomPayload{Code: r.code, Name: r.name, Members: len(r.players)})
	})
}

func (r *Room) stopTicker() {
	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
	}
}

func (r *Room) entityRef() logging.EntityRef {
	return logging.EntityRef{ID: r.code, Kind: logging.EntityKindRoom}
}

func playerRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer}
}

// broadcast fans a message out to every member in join order. A failed
// write is logged and skipped; it never aborts delivery to the rest
// and never mutates room state. The failing member is reaped later by
// the gateway's disconnect path.
func (r *Room) broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for _, id := range r.order {
		player := r.players[id]
		if player == nil || player.conn == nil {
			continue
		}
		if err := player.conn.Send(data); err != nil {
			network.DeliveryFailed(context.Background(), r.publisher, r.tick, playerRef(id), err)
		}
	}
}

// sendTo delivers a message to a single member's connection.
func (r *Room) sendTo(conn Conn, msg any) {
	if conn == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := conn.Send(data); err != nil {
		network.DeliveryFailed(context.Background(), r.publisher, r.tick, r.entityRef(), err)
	}
}

func (r *Room) rosterText() string {
	names := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if p := r.players[id]; p != nil {
			names = append(names, p.Name)
		}
	}
	return "Room: " + r.name + " · Code: " + r.code + " · Players: " + strings.Join(names, ", ")
}

func (r *Room) stateMessage() proto.StateMessage {
	players := make([]proto.PlayerSnapshot, 0, len(r.order))
	kills := make(map[string]int, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		if p == nil {
			continue
		}
		players = append(players, p.snapshot())
		kills[id] = p.Kills
	}
	points := make([]proto.CapturePointSnapshot, len(r.points))
	for i, point := range r.points {
		points[i] = proto.CapturePointSnapshot{Progress: point.Progress}
	}
	return proto.StateMessage{
		Type:      proto.TypeState,
		Time:      proto.FormatClock(r.remaining),
		Kills:     kills,
		Players:   players,
		ScoreBlue: r.scoreBlue,
		ScoreRed:  r.scoreRed,
		Points:    points,
	}
}

func (r *Room) broadcastState() {
	r.broadcast(r.stateMessage())
}
