package game

import (
	"time"

	"skirmish/server/internal/net/proto"
)

const (
	tickSeconds         = 0.1 // logical time per tick, independent of wall clock
	defaultTickInterval = 100 * time.Millisecond
	defaultRespawnDelay = 2000 * time.Millisecond
	defaultInboxSize    = 256

	maxHealth     = 100
	defaultDamage = 34

	capturePointCount = 3
	captureDrift      = 0.01 // per-tick perturbation bound
	controlThreshold  = 0.1  // mean progress needed for a team to score
	scoreStep         = 0.02

	defaultPlayerName  = "Player"
	defaultPlayerColor = "#60a5fa"
	defaultRoomName    = "Room"

	victoryText = "Match ended"
)

// defaultSpawn is where players appear on join, respawn, and match start.
var defaultSpawn = proto.Vec3{X: 0, Y: 1.8, Z: 0}

// Config tunes per-room timing. Tests shorten the durations; production
// uses DefaultConfig.
type Config struct {
	TickInterval time.Duration
	RespawnDelay time.Duration
	InboxSize    int
}

// DefaultConfig returns production timing.
func DefaultConfig() Config {
	return Config{
		TickInterval: defaultTickInterval,
		RespawnDelay: defaultRespawnDelay,
		InboxSize:    defaultInboxSize,
	}
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = defaultTickInterval
	}
	if c.RespawnDelay <= 0 {
		c.RespawnDelay = defaultRespawnDelay
	}
	if c.InboxSize <= 0 {
		c.InboxSize = defaultInboxSize
	}
	return c
}
