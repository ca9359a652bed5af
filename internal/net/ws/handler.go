package ws

import (
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"skirmish/server/internal/game"
	"skirmish/server/internal/net/proto"
	"skirmish/server/internal/telemetry"
	"skirmish/server/logging"
	"skirmish/server/logging/network"
)

const (
	writeWait            = 10 * time.Second
	defaultSweepInterval = 30 * time.Second
)

// GatewayConfig tunes the connection gateway.
type GatewayConfig struct {
	Logger        telemetry.Logger
	Publisher     logging.Publisher
	SweepInterval time.Duration
}

// Gateway accepts websocket connections, mints an opaque session id
// per connection, forwards well-formed messages into the engine, and
// drives disconnect cleanup. It owns sessions; rooms only see the
// game.Conn half.
type Gateway struct {
	registry  *game.Registry
	logger    telemetry.Logger
	publisher logging.Publisher
	upgrader  websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*session

	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
}

// NewGateway constructs a gateway and starts its liveness sweep.
func NewGateway(registry *game.Registry, cfg GatewayConfig) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(func(string, ...any) {})
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	sweepInterval := cfg.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}

	g := &Gateway{
		registry:  registry,
		logger:    logger,
		publisher: publisher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
		sessions:      make(map[string]*session),
		sweepInterval: sweepInterval,
		stop:          make(chan struct{}),
	}
	go g.runSweep()
	return g
}

// session pairs a connection with its minted id. Writes are serialized
// under mu with a deadline so one stalled client cannot wedge a
// broadcast.
type session struct {
	id    string
	conn  *websocket.Conn
	mu    sync.Mutex
	alive atomic.Bool
}

// Send implements game.Conn.
func (s *session) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Close implements game.Conn.
func (s *session) Close() error {
	return s.conn.Close()
}

// Handle upgrades the request and runs the connection's read loop
// until the client goes away.
func (g *Gateway) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Printf("upgrade failed: %v", err)
		return
	}

	sess := &session{id: uuid.NewString(), conn: conn}
	sess.alive.Store(true)
	conn.SetPongHandler(func(string) error {
		sess.alive.Store(true)
		return nil
	})

	g.mu.Lock()
	g.sessions[sess.id] = sess
	g.mu.Unlock()

	network.SessionOpened(r.Context(), g.publisher, sessionRef(sess.id))

	if !g.send(sess, proto.ConnectedMessage{Type: proto.TypeConnected, ClientID: sess.id}) {
		g.teardown(sess, "write_failed")
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			reason := "closed"
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				reason = "read_error"
			}
			g.teardown(sess, reason)
			return
		}

		var msg proto.ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			g.logger.Printf("discarding malformed message from %s: %v", sess.id, err)
			continue
		}
		g.dispatch(sess, msg)
	}
}

// dispatch routes one parsed message. Create and join reply with
// explicit errors; every other failure is silent per the protocol.
func (g *Gateway) dispatch(sess *session, msg proto.ClientMessage) {
	switch msg.Type {
	case proto.TypeCreateRoom:
		room, err := g.registry.Create(msg.Code, msg.Name, sess.id, playerInfo(msg.Player), sess)
		if err != nil {
			if errors.Is(err, game.ErrRoomExists) {
				g.send(sess, proto.ErrorMessage{Type: proto.TypeError, Text: "Room exists"})
			}
			return
		}
		g.send(sess, proto.RoomCreatedMessage{
			Type:     proto.TypeRoomCreated,
			Code:     room.Code(),
			Name:     room.Name(),
			ClientID: sess.id,
		})
	case proto.TypeJoinRoom:
		room, ok := g.registry.Get(msg.Code)
		if !ok {
			g.send(sess, proto.ErrorMessage{Type: proto.TypeError, Text: "No such room"})
			return
		}
		room.Post(game.JoinCommand{SessionID: sess.id, Info: playerInfo(msg.Player), Conn: sess})
	case proto.TypeSetMode:
		if room, ok := g.registry.Get(msg.Code); ok {
			room.Post(game.SetModeCommand{SessionID: sess.id, Mode: msg.Mode})
		}
	case proto.TypeSetSettings:
		if room, ok := g.registry.Get(msg.Code); ok && msg.Settings != nil {
			room.Post(game.SetSettingsCommand{SessionID: sess.id, Settings: *msg.Settings})
		}
	case proto.TypeStartGame:
		if room, ok := g.registry.Get(msg.Code); ok {
			room.Post(game.StartCommand{SessionID: sess.id})
		}
	case proto.TypeSpawn:
		if room, ok := g.registry.Get(msg.Code); ok {
			room.Post(game.SpawnCommand{SessionID: sess.id, Pos: msg.Pos, Color: msg.Color})
		}
	case proto.TypeMove:
		if room, ok := g.registry.Get(msg.Code); ok {
			room.Post(game.MoveCommand{SessionID: sess.id, Pos: msg.Pos})
		}
	case proto.TypeShoot:
		if room, ok := g.registry.Get(msg.Code); ok {
			room.Post(game.ShootCommand{SessionID: sess.id})
		}
	case proto.TypeHit:
		if room, ok := g.registry.Get(msg.Code); ok {
			room.Post(game.HitCommand{From: msg.From, To: msg.To})
		}
	case proto.TypeRequestRebuild:
		if room, ok := g.registry.Get(msg.Code); ok {
			room.Post(game.RebuildCommand{SessionID: sess.id})
		}
	default:
		// Unrecognized types are dropped without reply.
	}
}

// teardown runs disconnect cleanup exactly once per session: drop the
// session, scan every room for memberships, close the socket.
func (g *Gateway) teardown(sess *session, reason string) {
	g.mu.Lock()
	_, known := g.sessions[sess.id]
	delete(g.sessions, sess.id)
	g.mu.Unlock()
	if !known {
		return
	}

	g.registry.DropSession(sess.id)
	sess.conn.Close()
	network.SessionClosed(context.Background(), g.publisher, sessionRef(sess.id),
		network.SessionClosedPayload{Reason: reason})
}

func (g *Gateway) send(sess *session, msg any) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		g.logger.Printf("failed to marshal reply for %s: %v", sess.id, err)
		return true
	}
	if err := sess.Send(data); err != nil {
		return false
	}
	return true
}

// runSweep probes liveness on a fixed period. A session that has not
// answered the previous ping is force-closed, which makes its read
// loop fail and take the ordinary disconnect path.
func (g *Gateway) runSweep() {
	ticker := time.NewTicker(g.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			for _, sess := range g.snapshotSessions() {
				if !sess.alive.Load() {
					network.SweepClosed(context.Background(), g.publisher, sessionRef(sess.id))
					sess.conn.Close()
					continue
				}
				sess.alive.Store(false)
				deadline := time.Now().Add(writeWait)
				if err := sess.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					g.logger.Printf("ping failed for %s: %v", sess.id, err)
				}
			}
		}
	}
}

func (g *Gateway) snapshotSessions() []*session {
	g.mu.Lock()
	defer g.mu.Unlock()
	sessions := make([]*session, 0, len(g.sessions))
	for _, sess := range g.sessions {
		sessions = append(sessions, sess)
	}
	return sessions
}

// SessionCount reports live sessions for diagnostics.
func (g *Gateway) SessionCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}

// Close stops the sweep and closes every live connection.
func (g *Gateway) Close() {
	g.stopOnce.Do(func() {
		close(g.stop)
	})
	for _, sess := range g.snapshotSessions() {
		sess.conn.Close()
	}
}

func playerInfo(info *proto.PlayerInfo) proto.PlayerInfo {
	if info == nil {
		return proto.PlayerInfo{}
	}
	return *info
}

func sessionRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindSession}
}
