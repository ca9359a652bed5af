package game

import (
	"context"
	"time"

	"skirmish/server/internal/net/proto"
	"skirmish/server/logging/match"
)

// startMatch transitions NotStarted to Running. Calling it while a
// match runs is a no-op, which guards against duplicate tick loops.
func (r *Room) startMatch() {
	if r.status == StatusRunning {
		return
	}
	r.status = StatusRunning
	r.running.Store(true)
	r.tick = 0

	for _, player := range r.players {
		player.HP = maxHealth
		player.Kills = 0
		player.Pos = defaultSpawn
	}
	r.scoreBlue = 0
	r.scoreRed = 0
	for i := range r.points {
		r.points[i].Progress = 0
	}
	r.remaining = float64(r.settings.Minutes(r.mode) * 60)

	r.broadcast(proto.StartMessage{Type: proto.TypeStart, Mode: r.mode, Settings: r.settings})
	match.Started(context.Background(), r.publisher, r.tick, r.entityRef(), match.StartedPayload{
		Mode:    string(r.mode),
		Seconds: int(r.remaining),
		Players: len(r.players),
	})

	r.ticker = time.NewTicker(r.cfg.TickInterval)
}

// stepTick advances one 100ms logical tick: countdown first, then
// domination simulation, then the snapshot broadcast, then the end
// check. Time elapses in fixed steps regardless of scheduling jitter.
func (r *Room) stepTick() {
	if r.status != StatusRunning {
		return
	}
	r.tick++

	r.remaining -= tickSeconds
	if r.remaining < 0 {
		r.remaining = 0
	}

	if r.mode == proto.ModeDomination {
		r.stepCapturePoints()
	}

	r.broadcastState()

	if reason, over := r.endCondition(); over {
		r.endMatch(reason)
	}
}

// stepCapturePoints nudges every point with unseeded noise, clamps to
// [-1, 1], and scores whichever team holds the mean beyond the control
// threshold.
func (r *Room) stepCapturePoints() {
	var sum float64
	for i := range r.points {
		p := r.points[i].Progress + (r.rng.Float64()-0.5)*2*captureDrift
		if p > 1 {
			p = 1
		} else if p < -1 {
			p = -1
		}
		r.points[i].Progress = p
		sum += p
	}
	mean := sum / float64(len(r.points))
	if mean > controlThreshold {
		r.scoreBlue += scoreStep
	} else if mean < -controlThreshold {
		r.scoreRed += scoreStep
	}
}

func (r *Room) endCondition() (string, bool) {
	if r.remaining <= 0 {
		return match.ReasonTimeExpired, true
	}
	if r.mode == proto.ModeDeathmatch {
		limit := r.settings.Deathmatch.Kills
		for _, player := range r.players {
			if player.Kills >= limit {
				return match.ReasonKillLimit, true
			}
		}
	}
	return "", false
}

func (r *Room) endMatch(reason string) {
	r.stopTicker()
	r.status = StatusNotStarted
	r.running.Store(false)
	r.broadcast(proto.VictoryMessage{Type: proto.TypeVictory, Text: victoryText})
	match.Ended(context.Background(), r.publisher, r.tick, r.entityRef(), match.EndedPayload{
		Mode:      string(r.mode),
		Reason:    reason,
		ScoreBlue: r.scoreBlue,
		ScoreRed:  r.scoreRed,
	})
}
