package proto

import (
	"encoding/json"
	"testing"
)

func TestFormatClock(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{600, "10:00"},
		{599.9, "09:59"},
		{61, "01:01"},
		{59.4, "00:59"},
		{0, "00:00"},
		{-5, "00:00"},
		{3599, "59:59"},
	}
	for _, tc := range cases {
		if got := FormatClock(tc.seconds); got != tc.want {
			t.Fatalf("FormatClock(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Deathmatch.Kills != 20 || s.Deathmatch.Minutes != 10 {
		t.Fatalf("unexpected deathmatch defaults: %+v", s.Deathmatch)
	}
	if s.Domination.Score != 150 || s.Domination.Minutes != 10 {
		t.Fatalf("unexpected domination defaults: %+v", s.Domination)
	}
}

func TestSettingsMinutesPerMode(t *testing.T) {
	s := Settings{
		Deathmatch: DeathmatchSettings{Minutes: 5},
		Domination: DominationSettings{Minutes: 8},
	}
	if got := s.Minutes(ModeDeathmatch); got != 5 {
		t.Fatalf("expected 5 dm minutes, got %d", got)
	}
	if got := s.Minutes(ModeDomination); got != 8 {
		t.Fatalf("expected 8 dom minutes, got %d", got)
	}
}

func TestModeValid(t *testing.T) {
	if !ModeDeathmatch.Valid() || !ModeDomination.Valid() {
		t.Fatalf("expected built-in modes valid")
	}
	if Mode("ctf").Valid() || Mode("").Valid() {
		t.Fatalf("expected unknown modes invalid")
	}
}

func TestClientMessageDecode(t *testing.T) {
	raw := `{"type":"createRoom","code":"abc123","name":"Alice's Room","player":{"name":"Alice","color":"#ff0000"},"mode":"dom","pos":{"x":1,"y":1.8,"z":-2}}`
	var msg ClientMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if msg.Type != TypeCreateRoom || msg.Code != "abc123" || msg.Name != "Alice's Room" {
		t.Fatalf("unexpected envelope: %+v", msg)
	}
	if msg.Player == nil || msg.Player.Name != "Alice" || msg.Player.Color != "#ff0000" {
		t.Fatalf("unexpected player info: %+v", msg.Player)
	}
	if msg.Mode != ModeDomination {
		t.Fatalf("unexpected mode %q", msg.Mode)
	}
	if msg.Pos == nil || (*msg.Pos != Vec3{X: 1, Y: 1.8, Z: -2}) {
		t.Fatalf("unexpected pos: %+v", msg.Pos)
	}
}

func TestStateMessageShape(t *testing.T) {
	msg := StateMessage{
		Type:  TypeState,
		Time:  "09:59",
		Kills: map[string]int{"p1": 2},
		Players: []PlayerSnapshot{{
			ID: "p1", Name: "Alice", Color: "#ff0000", HP: 66, Kills: 2, Team: "blue",
		}},
		Points: []CapturePointSnapshot{{Progress: 0.25}},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	for _, key := range []string{"type", "time", "kills", "players", "scoreBlue", "scoreRed", "points"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("state message missing %q: %s", key, data)
		}
	}
}
