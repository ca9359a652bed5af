package game

import "skirmish/server/internal/net/proto"

// Teams.
const (
	TeamBlue = "blue"
	TeamRed  = "red"
)

// Conn is the transport half of a member: the room writes marshaled
// messages through it and never reads. The gateway's session satisfies
// it; tests substitute recorders.
type Conn interface {
	Send(data []byte) error
	Close() error
}

// Player is a room member's authoritative state. Only the owning
// room's goroutine touches it.
type Player struct {
	ID    string
	Name  string
	Color string
	Pos   proto.Vec3
	HP    int
	Kills int
	Team  string
	// Damage overrides the default hit damage when positive.
	Damage int

	conn Conn
}

func newPlayer(id string, info proto.PlayerInfo, team string, conn Conn) *Player {
	name := info.Name
	if name == "" {
		name = defaultPlayerName
	}
	color := info.Color
	if color == "" {
		color = defaultPlayerColor
	}
	return &Player{
		ID:    id,
		Name:  name,
		Color: color,
		Pos:   defaultSpawn,
		HP:    maxHealth,
		Team:  team,
		conn:  conn,
	}
}

func (p *Player) snapshot() proto.PlayerSnapshot {
	team := p.Team
	if team == "" {
		team = TeamBlue
	}
	return proto.PlayerSnapshot{
		ID:    p.ID,
		Name:  p.Name,
		Color: p.Color,
		Pos:   p.Pos,
		HP:    p.HP,
		Kills: p.Kills,
		Team:  team,
	}
}
