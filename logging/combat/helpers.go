package combat

import (
	"context"

	"skirmish/server/logging"
)

const (
	// EventHit is emitted for every resolved damage application.
	EventHit logging.EventType = "combat.hit"
	// EventKill is emitted when a hit drops a target to zero hp.
	EventKill logging.EventType = "combat.kill"
	// EventRespawn is emitted when a scheduled respawn lands.
	EventRespawn logging.EventType = "combat.respawn"
)

// HitPayload records resolved damage.
type HitPayload struct {
	Damage   int `json:"damage"`
	TargetHP int `json:"targetHp"`
}

// KillPayload records the attacker's updated kill count.
type KillPayload struct {
	Kills int `json:"kills"`
}

// Hit publishes a damage event at debug severity; hits are the
// engine's highest-volume event.
func Hit(ctx context.Context, pub logging.Publisher, tick uint64, attacker, target logging.EntityRef, payload HitPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventHit,
		Tick:     tick,
		Actor:    attacker,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// Kill publishes a kill event.
func Kill(ctx context.Context, pub logging.Publisher, tick uint64, attacker, target logging.EntityRef, payload KillPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventKill,
		Tick:     tick,
		Actor:    attacker,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// Respawn publishes a respawn event.
func Respawn(ctx context.Context, pub logging.Publisher, tick uint64, target logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRespawn,
		Tick:     tick,
		Actor:    target,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
	})
}
