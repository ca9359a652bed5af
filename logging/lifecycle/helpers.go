package lifecycle

import (
	"context"

	"skirmish/server/logging"
)

const (
	// EventRoomCreated is emitted when a room enters the registry.
	EventRoomCreated logging.EventType = "lifecycle.room_created"
	// EventRoomDestroyed is emitted when a room leaves the registry.
	EventRoomDestroyed logging.EventType = "lifecycle.room_destroyed"
	// EventPlayerJoined is emitted when a player joins a room.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerLeft is emitted when a player leaves a room.
	EventPlayerLeft logging.EventType = "lifecycle.player_left"
	// EventHostPromoted is emitted when host privilege moves.
	EventHostPromoted logging.EventType = "lifecycle.host_promoted"
)

// RoomPayload carries room identity for lifecycle events.
type RoomPayload struct {
	Code    string `json:"code"`
	Name    string `json:"name,omitempty"`
	Members int    `json:"members"`
}

// RoomCreated publishes a room creation event.
func RoomCreated(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload RoomPayload) {
	publish(ctx, pub, EventRoomCreated, 0, actor, payload)
}

// RoomDestroyed publishes a room teardown event.
func RoomDestroyed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RoomPayload) {
	publish(ctx, pub, EventRoomDestroyed, tick, actor, payload)
}

// PlayerJoined publishes a membership gain event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RoomPayload) {
	publish(ctx, pub, EventPlayerJoined, tick, actor, payload)
}

// PlayerLeft publishes a membership loss event.
func PlayerLeft(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RoomPayload) {
	publish(ctx, pub, EventPlayerLeft, tick, actor, payload)
}

// HostPromoted publishes a host succession event.
func HostPromoted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RoomPayload) {
	publish(ctx, pub, EventHostPromoted, tick, actor, payload)
}

func publish(ctx context.Context, pub logging.Publisher, typ logging.EventType, tick uint64, actor logging.EntityRef, payload RoomPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     typ,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}
