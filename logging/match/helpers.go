package match

import (
	"context"

	"skirmish/server/logging"
)

const (
	// EventStarted is emitted on the NotStarted to Running transition.
	EventStarted logging.EventType = "match.started"
	// EventEnded is emitted when a running match hits an end condition.
	EventEnded logging.EventType = "match.ended"
)

// StartedPayload records the ruleset a match began with.
type StartedPayload struct {
	Mode    string `json:"mode"`
	Seconds int    `json:"seconds"`
	Players int    `json:"players"`
}

// EndedPayload records why a match stopped.
type EndedPayload struct {
	Mode      string  `json:"mode"`
	Reason    string  `json:"reason"`
	ScoreBlue float64 `json:"scoreBlue"`
	ScoreRed  float64 `json:"scoreRed"`
}

// End reasons.
const (
	ReasonTimeExpired = "time_expired"
	ReasonKillLimit   = "kill_limit"
	ReasonRoomClosed  = "room_closed"
)

// Started publishes a match start event.
func Started(ctx context.Context, pub logging.Publisher, tick uint64, room logging.EntityRef, payload StartedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStarted,
		Tick:     tick,
		Actor:    room,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryMatch,
		Payload:  payload,
	})
}

// Ended publishes a match end event.
func Ended(ctx context.Context, pub logging.Publisher, tick uint64, room logging.EntityRef, payload EndedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEnded,
		Tick:     tick,
		Actor:    room,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryMatch,
		Payload:  payload,
	})
}
