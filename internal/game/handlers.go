package game

import (
	"context"
	"fmt"

	"skirmish/server/internal/net/proto"
	"skirmish/server/logging/lifecycle"
)

// Commands accepted by Room.Post. The gateway constructs these from
// parsed wire messages; the room goroutine is the only consumer.
type (
	// JoinCommand adds the session as a member and echoes the room
	// configuration back over Conn.
	JoinCommand struct {
		SessionID string
		Info      proto.PlayerInfo
		Conn      Conn
	}
	// LeaveCommand removes the session if it is a member. Posted by
	// the gateway's disconnect cleanup to every room.
	LeaveCommand struct {
		SessionID string
	}
	// SetModeCommand switches the ruleset. Host only.
	SetModeCommand struct {
		SessionID string
		Mode      proto.Mode
	}
	// SetSettingsCommand replaces the mode settings. Host only.
	SetSettingsCommand struct {
		SessionID string
		Settings  proto.Settings
	}
	// StartCommand begins the match. Host only; no-op while running.
	StartCommand struct {
		SessionID string
	}
	// SpawnCommand places the member and updates its color.
	SpawnCommand struct {
		SessionID string
		Pos       *proto.Vec3
		Color     string
	}
	// MoveCommand updates the member's reported position.
	MoveCommand struct {
		SessionID string
		Pos       *proto.Vec3
	}
	// ShootCommand relays a shot effect; no state changes.
	ShootCommand struct {
		SessionID string
	}
	// HitCommand applies reported damage from one member to another.
	HitCommand struct {
		From string
		To   string
	}
	// RebuildCommand relays an arena rebuild request. Host only.
	RebuildCommand struct {
		SessionID string
	}
)

type closeCommand struct{}

type respawnCommand struct {
	SessionID string
	Epoch     uint64
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case JoinCommand:
		r.handleJoin(c)
	case LeaveCommand:
		r.handleLeave(c.SessionID)
	case SetModeCommand:
		r.handleSetMode(c)
	case SetSettingsCommand:
		r.handleSetSettings(c)
	case StartCommand:
		if c.SessionID == r.hostID {
			r.startMatch()
		}
	case SpawnCommand:
		r.handleSpawn(c)
	case MoveCommand:
		if p, ok := r.players[c.SessionID]; ok && c.Pos != nil {
			p.Pos = *c.Pos
		}
	case ShootCommand:
		r.broadcast(proto.ShootMessage{Type: proto.TypeShootFired, From: c.SessionID})
	case HitCommand:
		r.handleHit(c)
	case RebuildCommand:
		if c.SessionID == r.hostID {
			r.broadcast(proto.RebuildMessage{Type: proto.TypeRebuild})
		}
	case respawnCommand:
		r.handleRespawn(c)
	case closeCommand:
		r.destroy()
	}
}

func (r *Room) handleJoin(cmd JoinCommand) {
	if _, exists := r.players[cmd.SessionID]; exists {
		return
	}
	team := TeamBlue
	if len(r.players)%2 == 1 {
		team = TeamRed
	}
	player := newPlayer(cmd.SessionID, cmd.Info, team, cmd.Conn)
	r.players[cmd.SessionID] = player
	r.order = append(r.order, cmd.SessionID)
	r.memberCount.Store(int64(len(r.players)))
	if r.hostID == "" {
		r.hostID = cmd.SessionID
	}

	r.sendTo(cmd.Conn, proto.RoomJoinedMessage{
		Type:     proto.TypeRoomJoined,
		Code:     r.code,
		Name:     r.name,
		ClientID: cmd.SessionID,
		Mode:     r.mode,
		Settings: r.settings,
	})
	r.broadcast(proto.LobbyMessage{Type: proto.TypeLobby, Text: r.rosterText()})

	lifecycle.PlayerJoined(context.Background(), r.publisher, r.tick,
		playerRef(cmd.SessionID), lifecycle.RoomPayload{Code: r.code, Members: len(r.players)})
}

func (r *Room) handleLeave(sessionID string) {
	if _, ok := r.players[sessionID]; !ok {
		return
	}
	delete(r.players, sessionID)
	r.memberCount.Store(int64(len(r.players)))
	for i, id := range r.order {
		if id == sessionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.cancelRespawns(sessionID)

	lifecycle.PlayerLeft(context.Background(), r.publisher, r.tick,
		playerRef(sessionID), lifecycle.RoomPayload{Code: r.code, Members: len(r.players)})

	if r.hostID == sessionID {
		if len(r.order) == 0 {
			r.destroy()
			return
		}
		r.hostID = r.order[0]
		lifecycle.HostPromoted(context.Background(), r.publisher, r.tick,
			playerRef(r.hostID), lifecycle.RoomPayload{Code: r.code, Members: len(r.players)})
	} else if len(r.players) == 0 {
		r.destroy()
		return
	}

	r.broadcast(proto.LobbyMessage{
		Type: proto.TypeLobby,
		Text: fmt.Sprintf("Player left. %d players", len(r.players)),
	})
}

func (r *Room) handleSetMode(cmd SetModeCommand) {
	if cmd.SessionID != r.hostID || !cmd.Mode.Valid() {
		return
	}
	r.mode = cmd.Mode
	r.broadcast(proto.ModeMessage{Type: proto.TypeMode, Mode: r.mode})
}

func (r *Room) handleSetSettings(cmd SetSettingsCommand) {
	if cmd.SessionID != r.hostID {
		return
	}
	r.settings = cmd.Settings
	r.broadcast(proto.SettingsMessage{Type: proto.TypeSettings, Settings: r.settings})
}

func (r *Room) handleSpawn(cmd SpawnCommand) {
	player, ok := r.players[cmd.SessionID]
	if !ok {
		return
	}
	if cmd.Pos != nil {
		player.Pos = *cmd.Pos
	}
	if cmd.Color != "" {
		player.Color = cmd.Color
	}
	r.broadcast(proto.LobbyMessage{
		Type: proto.TypeLobby,
		Text: player.Name + " spawned",
	})
}
