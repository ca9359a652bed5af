package logging

import (
	"context"
	"testing"
	"time"
)

// captureSink records delivered events without locking; router tests
// only read it after Close has flushed the workers.
type captureSink struct {
	events []Event
}

func (s *captureSink) Write(event Event) error {
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) Close(context.Context) error { return nil }

func TestRouterDeliversToSinks(t *testing.T) {
	sink := &captureSink{}
	clock := ClockFunc(func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	})
	router := NewRouter(Config{MinimumSeverity: SeverityInfo}, clock, []NamedSink{
		{Name: "capture", Sink: sink},
	})

	router.Publish(context.Background(), Event{
		Type:     "combat.kill",
		Tick:     42,
		Actor:    EntityRef{ID: "p1", Kind: EntityKindPlayer},
		Severity: SeverityInfo,
		Category: CategoryCombat,
	})
	router.Publish(context.Background(), Event{
		Type:     "combat.hit",
		Severity: SeverityDebug,
	})

	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 delivered event after severity filtering, got %d", len(sink.events))
	}
	got := sink.events[0]
	if got.Type != "combat.kill" || got.Tick != 42 {
		t.Fatalf("unexpected event: %+v", got)
	}
	if !got.Time.Equal(clock.Now()) {
		t.Fatalf("expected router to stamp the clock time, got %v", got.Time)
	}

	stats := router.Stats()
	if stats.EventsTotal != 1 || stats.DroppedTotal != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRouterAppliesConfiguredFields(t *testing.T) {
	sink := &captureSink{}
	router := NewRouter(Config{
		Fields: map[string]any{"service": "skirmish", "region": "eu"},
	}, nil, []NamedSink{{Name: "capture", Sink: sink}})

	router.Publish(context.Background(), Event{
		Type:     "lifecycle.room_created",
		Severity: SeverityInfo,
		Extra:    map[string]any{"region": "us"},
	})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sink.events))
	}
	extra := sink.events[0].Extra
	if extra["service"] != "skirmish" {
		t.Fatalf("expected configured field applied, got %v", extra)
	}
	if extra["region"] != "us" {
		t.Fatalf("expected event's own field to win, got %v", extra["region"])
	}
}

func TestRouterIgnoresEmptyAndPostCloseEvents(t *testing.T) {
	sink := &captureSink{}
	router := NewRouter(Config{}, nil, []NamedSink{{Name: "capture", Sink: sink}})

	router.Publish(context.Background(), Event{})

	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	router.Publish(context.Background(), Event{Type: "combat.hit", Severity: SeverityInfo})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	if len(sink.events) != 0 {
		t.Fatalf("expected nothing delivered, got %d", len(sink.events))
	}
}

func TestRouterSinkLookup(t *testing.T) {
	sink := &captureSink{}
	router := NewRouter(Config{}, nil, []NamedSink{{Name: "capture", Sink: sink}})
	defer router.Close(context.Background())

	if got := router.Sink("capture"); got != sink {
		t.Fatalf("expected registered sink back")
	}
	if got := router.Sink("missing"); got != nil {
		t.Fatalf("expected nil for unknown sink, got %v", got)
	}
}

func TestWithFields(t *testing.T) {
	var captured Event
	base := PublisherFunc(func(_ context.Context, event Event) {
		captured = event
	})

	wrapped := WithFields(base, map[string]any{"room": "ABC123"})
	wrapped.Publish(context.Background(), Event{Type: "match.started", Severity: SeverityInfo})

	if captured.Extra["room"] != "ABC123" {
		t.Fatalf("expected field injected, got %+v", captured.Extra)
	}

	if got := WithFields(nil, map[string]any{"a": 1}); got == nil {
		t.Fatalf("expected nop publisher for nil base")
	}
}

func TestParseSeverity(t *testing.T) {
	cases := map[string]Severity{
		"debug": SeverityDebug,
		"info":  SeverityInfo,
		"warn":  SeverityWarn,
		"error": SeverityError,
		"":      SeverityInfo,
		"junk":  SeverityInfo,
	}
	for input, want := range cases {
		if got := ParseSeverity(input); got != want {
			t.Fatalf("ParseSeverity(%q) = %v, want %v", input, got, want)
		}
	}
}
