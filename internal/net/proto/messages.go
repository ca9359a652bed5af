package proto

import "fmt"

// Client message type identifiers.
const (
	TypeCreateRoom     = "createRoom"
	TypeJoinRoom       = "joinRoom"
	TypeSetMode        = "setMode"
	TypeSetSettings    = "setSettings"
	TypeStartGame      = "startGame"
	TypeSpawn          = "spawn"
	TypeMove           = "move"
	TypeShoot          = "shoot"
	TypeHit            = "hit"
	TypeRequestRebuild = "requestRebuild"
)

// Server message type identifiers.
const (
	TypeConnected   = "connected"
	TypeRoomCreated = "roomCreated"
	TypeRoomJoined  = "roomJoined"
	TypeError       = "error"
	TypeLobby       = "lobby"
	TypeMode        = "mode"
	TypeSettings    = "settings"
	TypeStart       = "start"
	TypeState       = "state"
	TypeShootFired  = "shoot"
	TypeHitLanded   = "hit"
	TypeVictory     = "victory"
	TypeRebuild     = "rebuild"
)

// Mode selects the ruleset a room plays under.
type Mode string

const (
	ModeDeathmatch Mode = "dm"
	ModeDomination Mode = "dom"
)

// Valid reports whether the mode names a known ruleset.
func (m Mode) Valid() bool {
	return m == ModeDeathmatch || m == ModeDomination
}

// Vec3 is a position in the client's coordinate space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DeathmatchSettings bounds a deathmatch round.
type DeathmatchSettings struct {
	Kills   int `json:"kills"`
	Minutes int `json:"minutes"`
}

// DominationSettings bounds a domination round.
type DominationSettings struct {
	Score   int `json:"score"`
	Minutes int `json:"minutes"`
}

// Settings carries the per-mode configuration a host can edit. Both
// blocks travel together so switching modes keeps prior tuning.
type Settings struct {
	Deathmatch DeathmatchSettings `json:"dm"`
	Domination DominationSettings `json:"dom"`
}

// DefaultSettings returns the configuration new rooms start with.
func DefaultSettings() Settings {
	return Settings{
		Deathmatch: DeathmatchSettings{Kills: 20, Minutes: 10},
		Domination: DominationSettings{Score: 150, Minutes: 10},
	}
}

// Minutes returns the round duration for the given mode.
func (s Settings) Minutes(mode Mode) int {
	if mode == ModeDomination {
		return s.Domination.Minutes
	}
	return s.Deathmatch.Minutes
}

// PlayerInfo is the client-supplied identity attached to create/join
// requests. Both fields are trusted as-is.
type PlayerInfo struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ClientMessage captures an inbound websocket message. A single
// envelope covers every client type; unused fields stay zero.
type ClientMessage struct {
	Type     string      `json:"type"`
	Code     string      `json:"code,omitempty"`
	Name     string      `json:"name,omitempty"`
	Player   *PlayerInfo `json:"player,omitempty"`
	Mode     Mode        `json:"mode,omitempty"`
	Settings *Settings   `json:"settings,omitempty"`
	Pos      *Vec3       `json:"pos,omitempty"`
	Color    string      `json:"color,omitempty"`
	From     string      `json:"from,omitempty"`
	To       string      `json:"to,omitempty"`
}

// ConnectedMessage delivers the session id minted at connect time.
type ConnectedMessage struct {
	Type     string `json:"type"`
	ClientID string `json:"clientId"`
}

// RoomCreatedMessage acknowledges a successful create request.
type RoomCreatedMessage struct {
	Type     string `json:"type"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	ClientID string `json:"clientId"`
}

// RoomJoinedMessage echoes room configuration to a joining player.
type RoomJoinedMessage struct {
	Type     string   `json:"type"`
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	ClientID string   `json:"clientId"`
	Mode     Mode     `json:"mode"`
	Settings Settings `json:"settings"`
}

// ErrorMessage is the only explicit failure reply in the protocol.
type ErrorMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// LobbyMessage carries human-readable roster text.
type LobbyMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ModeMessage announces a mode change.
type ModeMessage struct {
	Type string `json:"type"`
	Mode Mode   `json:"mode"`
}

// SettingsMessage announces replaced settings.
type SettingsMessage struct {
	Type     string   `json:"type"`
	Settings Settings `json:"settings"`
}

// StartMessage announces a match start with its ruleset.
type StartMessage struct {
	Type     string   `json:"type"`
	Mode     Mode     `json:"mode"`
	Settings Settings `json:"settings"`
}

// PlayerSnapshot is one player's entry in a state broadcast.
type PlayerSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Pos   Vec3   `json:"pos"`
	HP    int    `json:"hp"`
	Kills int    `json:"kills"`
	Team  string `json:"team"`
}

// CapturePointSnapshot reports one domination point's control value.
type CapturePointSnapshot struct {
	Progress float64 `json:"progress"`
}

// StateMessage is the full authoritative snapshot broadcast each tick.
type StateMessage struct {
	Type      string                 `json:"type"`
	Time      string                 `json:"time"`
	Kills     map[string]int         `json:"kills"`
	Players   []PlayerSnapshot       `json:"players"`
	ScoreBlue float64                `json:"scoreBlue"`
	ScoreRed  float64                `json:"scoreRed"`
	Points    []CapturePointSnapshot `json:"points"`
}

// ShootMessage relays a shot so other clients can play effects.
type ShootMessage struct {
	Type string `json:"type"`
	From string `json:"from"`
}

// HitMessage announces resolved damage between two players.
type HitMessage struct {
	Type string `json:"type"`
	From string `json:"from"`
	To   string `json:"to"`
}

// VictoryMessage ends a match with display text.
type VictoryMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// RebuildMessage asks clients to rebuild the arena.
type RebuildMessage struct {
	Type string `json:"type"`
}

// FormatClock renders remaining seconds as MM:SS for state broadcasts.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	return fmt.Sprintf("%02d:%02d", whole/60, whole%60)
}
