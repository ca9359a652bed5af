package network

import (
	"context"

	"skirmish/server/logging"
)

const (
	// EventSessionOpened is emitted when the gateway mints a session.
	EventSessionOpened logging.EventType = "network.session_opened"
	// EventSessionClosed is emitted when a connection ends.
	EventSessionClosed logging.EventType = "network.session_closed"
	// EventDeliveryFailed is emitted when a broadcast write to one
	// recipient fails; delivery to the rest continues.
	EventDeliveryFailed logging.EventType = "network.delivery_failed"
	// EventSweepClosed is emitted when the liveness sweep force-closes
	// an unresponsive connection.
	EventSweepClosed logging.EventType = "network.sweep_closed"
)

// SessionClosedPayload records why a session ended.
type SessionClosedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// SessionOpened publishes a connect event.
func SessionOpened(ctx context.Context, pub logging.Publisher, session logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSessionOpened,
		Actor:    session,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNetwork,
	})
}

// SessionClosed publishes a disconnect event.
func SessionClosed(ctx context.Context, pub logging.Publisher, session logging.EntityRef, payload SessionClosedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSessionClosed,
		Actor:    session,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}

// DeliveryFailed publishes a per-recipient broadcast failure.
func DeliveryFailed(ctx context.Context, pub logging.Publisher, tick uint64, session logging.EntityRef, err error) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventDeliveryFailed,
		Tick:     tick,
		Actor:    session,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
	}
	if err != nil {
		event = event.WithExtra("error", err.Error())
	}
	pub.Publish(ctx, event)
}

// SweepClosed publishes a forced close from the liveness sweep.
func SweepClosed(ctx context.Context, pub logging.Publisher, session logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSweepClosed,
		Actor:    session,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
	})
}
