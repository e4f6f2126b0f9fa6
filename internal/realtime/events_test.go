package realtime

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseEvent(t *testing.T) {
	data := []byte(`{"type":"response.audio.delta","event_id":"evt_abc123","delta":"AAAA","item_id":"item_1"}`)

	ev, err := ParseEvent(data)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Type != EventTypeResponseAudioDelta {
		t.Errorf("expected type %s, got %s", EventTypeResponseAudioDelta, ev.Type)
	}
	if ev.EventID != "evt_abc123" {
		t.Errorf("expected event_id preserved, got %q", ev.EventID)
	}
	if ev.Str("delta") != "AAAA" {
		t.Errorf("expected delta field, got %q", ev.Str("delta"))
	}
	if _, ok := ev.Fields["type"]; ok {
		t.Error("expected type lifted out of the fields map")
	}
}

func TestParseEventMissingType(t *testing.T) {
	if _, err := ParseEvent([]byte(`{"event_id":"evt_1"}`)); err == nil {
		t.Error("expected error for frame without a type")
	}
	if _, err := ParseEvent([]byte(`{"type":""}`)); err == nil {
		t.Error("expected error for frame with an empty type")
	}
	if _, err := ParseEvent([]byte(`{"type":42}`)); err == nil {
		t.Error("expected error for frame with a non-string type")
	}
}

func TestParseEventMalformed(t *testing.T) {
	if _, err := ParseEvent([]byte(`{not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestEventMarshal(t *testing.T) {
	ev := NewEvent(EventTypeInputAudioBufferAppend, map[string]any{"audio": "AAAA"})
	ev.EventID = "evt_out1"

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("marshaled event is not valid JSON: %v", err)
	}
	if m["type"] != EventTypeInputAudioBufferAppend {
		t.Errorf("expected type on the wire, got %v", m["type"])
	}
	if m["event_id"] != "evt_out1" {
		t.Errorf("expected event_id on the wire, got %v", m["event_id"])
	}
	if m["audio"] != "AAAA" {
		t.Errorf("expected audio field flattened onto the frame, got %v", m["audio"])
	}
}

func TestEventMarshalOmitsEmptyID(t *testing.T) {
	data, err := json.Marshal(NewEvent(EventTypeResponseCreate, nil))
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	if strings.Contains(string(data), "event_id") {
		t.Errorf("expected no event_id when unset, got %s", data)
	}
}

func TestEventFieldAccessors(t *testing.T) {
	ev := NewEvent("close", map[string]any{"code": float64(1008), "reason": "policy"})

	if ev.Int("code") != 1008 {
		t.Errorf("expected code 1008, got %d", ev.Int("code"))
	}
	if ev.Str("reason") != "policy" {
		t.Errorf("expected reason field, got %q", ev.Str("reason"))
	}
	if ev.Int("missing") != 0 || ev.Str("missing") != "" {
		t.Error("expected zero values for absent fields")
	}
}

func TestNewEventID(t *testing.T) {
	id := newEventID()
	if !strings.HasPrefix(id, "evt_") {
		t.Errorf("expected evt_ prefix, got %q", id)
	}
	if id == newEventID() {
		t.Error("expected identifiers to be unique")
	}
}
