package game

import (
	"context"
	"time"

	"skirmish/server/internal/net/proto"
	"skirmish/server/logging/combat"
)

// handleHit applies client-reported damage. Both parties must be
// current members; otherwise the report is dropped. A target driven to
// zero hp credits the attacker and schedules a delayed respawn, then a
// hit notification and a full snapshot go out.
func (r *Room) handleHit(cmd HitCommand) {
	attacker, ok := r.players[cmd.From]
	if !ok {
		return
	}
	target, ok := r.players[cmd.To]
	if !ok {
		return
	}

	damage := attacker.Damage
	if damage <= 0 {
		damage = defaultDamage
	}
	if damage < 1 {
		damage = 1
	}

	target.HP -= damage
	if target.HP < 0 {
		target.HP = 0
	}

	combat.Hit(context.Background(), r.publisher, r.tick,
		playerRef(attacker.ID), playerRef(target.ID),
		combat.HitPayload{Damage: damage, TargetHP: target.HP})

	if target.HP == 0 {
		attacker.Kills++
		r.scheduleRespawn(target.ID)
		combat.Kill(context.Background(), r.publisher, r.tick,
			playerRef(attacker.ID), playerRef(target.ID),
			combat.KillPayload{Kills: attacker.Kills})
	}

	r.broadcast(proto.HitMessage{Type: proto.TypeHitLanded, From: attacker.ID, To: target.ID})
	r.broadcastState()
}

// scheduleRespawn arms a one-shot timer that resets the target after
// the configured delay. Timers are keyed by (session, kill epoch) so
// rapid repeat kills each get their own timer, and removing the player
// or destroying the room cancels whatever is still pending.
func (r *Room) scheduleRespawn(sessionID string) {
	r.epochs[sessionID]++
	key := respawnKey{sessionID: sessionID, epoch: r.epochs[sessionID]}
	r.respawns[key] = time.AfterFunc(r.cfg.RespawnDelay, func() {
		r.Post(respawnCommand{SessionID: key.sessionID, Epoch: key.epoch})
	})
}

// handleRespawn lands a fired respawn timer. For a live member the
// reset is unconditional, overwriting whatever happened to hp or
// position in the interim. A departed player is never resurrected.
func (r *Room) handleRespawn(cmd respawnCommand) {
	key := respawnKey{sessionID: cmd.SessionID, epoch: cmd.Epoch}
	if timer, ok := r.respawns[key]; ok {
		timer.Stop()
		delete(r.respawns, key)
	}
	player, ok := r.players[cmd.SessionID]
	if !ok {
		return
	}
	player.HP = maxHealth
	player.Pos = defaultSpawn
	combat.Respawn(context.Background(), r.publisher, r.tick, playerRef(cmd.SessionID))
}

// cancelRespawns stops every pending respawn for a departing player.
func (r *Room) cancelRespawns(sessionID string) {
	for key, timer := range r.respawns {
		if key.sessionID == sessionID {
			timer.Stop()
			delete(r.respawns, key)
		}
	}
	delete(r.epochs, sessionID)
}
