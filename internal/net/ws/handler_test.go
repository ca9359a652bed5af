package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"skirmish/server/internal/game"
	"skirmish/server/internal/net/proto"
)

type harness struct {
	registry *game.Registry
	gateway  *Gateway
	server   *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	registry := game.NewRegistry(game.Config{
		TickInterval: 10 * time.Millisecond,
		RespawnDelay: 30 * time.Millisecond,
	}, nil)
	gateway := NewGateway(registry, GatewayConfig{})
	server := httptest.NewServer(http.HandlerFunc(gateway.Handle))
	t.Cleanup(func() {
		server.Close()
		gateway.Close()
		registry.Shutdown()
	})
	return &harness{registry: registry, gateway: gateway, server: server}
}

func (h *harness) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg proto.ClientMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func read(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	return decoded
}

// readUntil skips messages until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		msg := read(t, conn)
		if msg["type"] == typ {
			return msg
		}
	}
	t.Fatalf("no %q message before deadline", typ)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestConnectMintsSessionID(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)

	msg := read(t, conn)
	require.Equal(t, proto.TypeConnected, msg["type"])
	require.NotEmpty(t, msg["clientId"])

	waitFor(t, func() bool { return h.gateway.SessionCount() == 1 })

	other := h.dial(t)
	otherMsg := read(t, other)
	require.NotEqual(t, msg["clientId"], otherMsg["clientId"])
}

func TestCreateRoomRoundTrip(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)
	read(t, conn) // connected

	send(t, conn, proto.ClientMessage{
		Type:   proto.TypeCreateRoom,
		Code:   "abc123",
		Name:   "Alice's Room",
		Player: &proto.PlayerInfo{Name: "Alice", Color: "#ff0000"},
	})

	created := read(t, conn)
	require.Equal(t, proto.TypeRoomCreated, created["type"])
	require.Equal(t, "ABC123", created["code"])
	require.Equal(t, "Alice's Room", created["name"])
	require.NotEmpty(t, created["clientId"])

	room, ok := h.registry.Get("ABC123")
	require.True(t, ok)
	require.Equal(t, 1, room.MemberCount())
}

func TestCreateRoomGeneratesCode(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)
	read(t, conn)

	send(t, conn, proto.ClientMessage{Type: proto.TypeCreateRoom})

	created := read(t, conn)
	require.Equal(t, proto.TypeRoomCreated, created["type"])
	code, _ := created["code"].(string)
	require.Len(t, code, 6)
	require.Equal(t, strings.ToUpper(code), code)
}

func TestCreateDuplicateCodeReturnsError(t *testing.T) {
	h := newHarness(t)
	first := h.dial(t)
	read(t, first)
	send(t, first, proto.ClientMessage{Type: proto.TypeCreateRoom, Code: "ABC123"})
	readUntil(t, first, proto.TypeRoomCreated)

	second := h.dial(t)
	read(t, second)
	send(t, second, proto.ClientMessage{Type: proto.TypeCreateRoom, Code: "ABC123"})

	failure := read(t, second)
	require.Equal(t, proto.TypeError, failure["type"])
	require.Equal(t, "Room exists", failure["text"])
}

func TestJoinUnknownRoomReturnsError(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)
	read(t, conn)

	send(t, conn, proto.ClientMessage{Type: proto.TypeJoinRoom, Code: "NOPE42"})

	failure := read(t, conn)
	require.Equal(t, proto.TypeError, failure["type"])
	require.Equal(t, "No such room", failure["text"])
}

func TestJoinRoomDeliversConfigAndRoster(t *testing.T) {
	h := newHarness(t)
	host := h.dial(t)
	read(t, host)
	send(t, host, proto.ClientMessage{
		Type:   proto.TypeCreateRoom,
		Code:   "ABC123",
		Name:   "Alice's Room",
		Player: &proto.PlayerInfo{Name: "Alice"},
	})
	readUntil(t, host, proto.TypeRoomCreated)

	guest := h.dial(t)
	read(t, guest)
	send(t, guest, proto.ClientMessage{
		Type:   proto.TypeJoinRoom,
		Code:   "abc123",
		Player: &proto.PlayerInfo{Name: "Bob"},
	})

	joined := readUntil(t, guest, proto.TypeRoomJoined)
	require.Equal(t, "ABC123", joined["code"])
	require.Equal(t, "Alice's Room", joined["name"])
	require.Equal(t, "dm", joined["mode"])
	require.NotNil(t, joined["settings"])

	lobby := readUntil(t, guest, proto.TypeLobby)
	text, _ := lobby["text"].(string)
	require.Contains(t, text, "Alice")
	require.Contains(t, text, "Bob")
	require.Contains(t, text, "ABC123")

	hostLobby := readUntil(t, host, proto.TypeLobby)
	require.Contains(t, hostLobby["text"], "Bob")
}

func TestDisconnectRemovesSessionFromRooms(t *testing.T) {
	h := newHarness(t)
	host := h.dial(t)
	read(t, host)
	send(t, host, proto.ClientMessage{Type: proto.TypeCreateRoom, Code: "ABC123"})
	readUntil(t, host, proto.TypeRoomCreated)

	guest := h.dial(t)
	read(t, guest)
	send(t, guest, proto.ClientMessage{Type: proto.TypeJoinRoom, Code: "ABC123"})
	readUntil(t, guest, proto.TypeRoomJoined)

	room, ok := h.registry.Get("ABC123")
	require.True(t, ok)
	waitFor(t, func() bool { return room.MemberCount() == 2 })

	guest.Close()

	waitFor(t, func() bool { return room.MemberCount() == 1 })
	waitFor(t, func() bool { return h.gateway.SessionCount() == 1 })
}

func TestLastDisconnectDestroysRoom(t *testing.T) {
	h := newHarness(t)
	host := h.dial(t)
	read(t, host)
	send(t, host, proto.ClientMessage{Type: proto.TypeCreateRoom, Code: "GONE22"})
	readUntil(t, host, proto.TypeRoomCreated)

	host.Close()

	waitFor(t, func() bool {
		_, ok := h.registry.Get("GONE22")
		return !ok
	})
}

func TestStartGameBroadcastsStateTicks(t *testing.T) {
	h := newHarness(t)
	host := h.dial(t)
	connected := read(t, host)
	hostID, _ := connected["clientId"].(string)
	require.NotEmpty(t, hostID)

	send(t, host, proto.ClientMessage{Type: proto.TypeCreateRoom, Code: "ABC123"})
	readUntil(t, host, proto.TypeRoomCreated)

	send(t, host, proto.ClientMessage{Type: proto.TypeStartGame, Code: "ABC123"})

	start := readUntil(t, host, proto.TypeStart)
	require.Equal(t, "dm", start["mode"])

	state := readUntil(t, host, proto.TypeState)
	require.Equal(t, "09:59", state["time"])
	players, _ := state["players"].([]any)
	require.Len(t, players, 1)
	kills, _ := state["kills"].(map[string]any)
	require.Contains(t, kills, hostID)
}

func TestShootRelayedToRoom(t *testing.T) {
	h := newHarness(t)
	host := h.dial(t)
	connected := read(t, host)
	hostID, _ := connected["clientId"].(string)
	send(t, host, proto.ClientMessage{Type: proto.TypeCreateRoom, Code: "ABC123"})
	readUntil(t, host, proto.TypeRoomCreated)

	guest := h.dial(t)
	read(t, guest)
	send(t, guest, proto.ClientMessage{Type: proto.TypeJoinRoom, Code: "ABC123"})
	readUntil(t, guest, proto.TypeRoomJoined)

	send(t, host, proto.ClientMessage{Type: proto.TypeShoot, Code: "ABC123"})

	shot := readUntil(t, guest, proto.TypeShootFired)
	require.Equal(t, hostID, shot["from"])
}

func TestMalformedMessageIgnored(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)
	read(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	send(t, conn, proto.ClientMessage{Type: "mystery"})

	// Connection survives both; a later request still round-trips.
	send(t, conn, proto.ClientMessage{Type: proto.TypeJoinRoom, Code: "NOPE42"})
	failure := read(t, conn)
	require.Equal(t, proto.TypeError, failure["type"])
}

func TestSweepClosesSilentSessions(t *testing.T) {
	registry := game.NewRegistry(game.Config{}, nil)
	gateway := NewGateway(registry, GatewayConfig{SweepInterval: 30 * time.Millisecond})
	server := httptest.NewServer(http.HandlerFunc(gateway.Handle))
	t.Cleanup(func() {
		server.Close()
		gateway.Close()
		registry.Shutdown()
	})

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	// The client never reads, so its ping handler never runs and no
	// pong goes back; the second sweep closes the connection.

	waitFor(t, func() bool { return gateway.SessionCount() == 0 })
}
