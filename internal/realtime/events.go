package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Wildcard subscribes a listener to every event type.
const Wildcard = "*"

const (
	EventTypeSessionCreated               = "session.created"
	EventTypeSessionUpdate                = "session.update"
	EventTypeInputAudioBufferAppend       = "input_audio_buffer.append"
	EventTypeInputAudioBufferCommit       = "input_audio_buffer.commit"
	EventTypeInputAudioBufferClear        = "input_audio_buffer.clear"
	EventTypeConversationItemCreate       = "conversation.item.create"
	EventTypeResponseCreate               = "response.create"
	EventTypeResponseCancel               = "response.cancel"
	EventTypeResponseAudioDelta           = "response.audio.delta"
	EventTypeResponseAudioDone            = "response.audio.done"
	EventTypeResponseAudioTranscriptDelta = "response.audio_transcript.delta"
	EventTypeResponseAudioTranscriptDone  = "response.audio_transcript.done"
	EventTypeResponseDone                 = "response.done"
	EventTypeInputTranscriptionCompleted  = "conversation.item.input_audio_transcription.completed"
	EventTypeError                        = "error"

	// EventTypeClose is synthesized locally when the connection terminates;
	// it never travels on the wire.
	EventTypeClose = "close"
)

// Event is a single protocol message, inbound or outbound. Type discriminates
// the shape of Fields; EventID correlates requests and is assigned by the
// sender when absent.
type Event struct {
	Type       string
	EventID    string
	Fields     map[string]any
	ReceivedAt time.Time
}

// NewEvent builds an outbound event. Fields may be nil.
func NewEvent(eventType string, fields map[string]any) Event {
	return Event{Type: eventType, Fields: fields}
}

// ParseEvent decodes a wire frame into an Event.
func ParseEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(e.Fields)+2)
	for k, v := range e.Fields {
		m[k] = v
	}
	m["type"] = e.Type
	if e.EventID != "" {
		m["event_id"] = e.EventID
	}
	return json.Marshal(m)
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("malformed event payload: %w", err)
	}
	eventType, ok := m["type"].(string)
	if !ok || eventType == "" {
		return errors.New("event has no type field")
	}
	delete(m, "type")
	if id, ok := m["event_id"].(string); ok {
		e.EventID = id
		delete(m, "event_id")
	}
	e.Type = eventType
	e.Fields = m
	return nil
}

// Str returns the named field as a string, or "" when absent or not a string.
func (e Event) Str(key string) string {
	s, _ := e.Fields[key].(string)
	return s
}

// Int returns the named field as an int, or 0 when absent.
func (e Event) Int(key string) int {
	switch v := e.Fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func newEventID() string {
	return "evt_" + uuid.New().String()[:12]
}
