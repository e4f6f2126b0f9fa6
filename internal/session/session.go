package session

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/eleven-am/voice-client/internal/realtime"
)

// Conn is the slice of the realtime client this orchestrator needs.
type Conn interface {
	Subscribe(eventType string, fn realtime.Listener) realtime.Subscription
	Send(ev realtime.Event) error
}

// TurnFunc receives each completed conversation turn.
type TurnFunc func(role, text string)

// Session is the orchestration collaborator sitting above the transport: it
// configures the remote session once established and folds transcript deltas
// into whole turns. It holds no protocol state the transport needs.
type Session struct {
	conn   Conn
	cfg    SessionConfig
	onTurn TurnFunc
	log    *slog.Logger

	mu      sync.Mutex
	pending strings.Builder
}

func New(conn Conn, cfg SessionConfig, onTurn TurnFunc, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		conn:   conn,
		cfg:    cfg,
		onTurn: onTurn,
		log:    log.With("component", "session"),
	}
}

// Attach registers the session's listeners. Call before Connect; the registry
// is cleared on teardown, so a reconnected client needs a fresh Attach.
func (s *Session) Attach() {
	s.conn.Subscribe(realtime.EventTypeSessionCreated, s.onSessionCreated)
	s.conn.Subscribe(realtime.EventTypeResponseAudioTranscriptDelta, s.onTranscriptDelta)
	s.conn.Subscribe(realtime.EventTypeResponseAudioTranscriptDone, s.onTranscriptDone)
	s.conn.Subscribe(realtime.EventTypeInputTranscriptionCompleted, s.onInputTranscription)
	s.conn.Subscribe(realtime.EventTypeError, s.onError)
}

func (s *Session) onSessionCreated(ev realtime.Event) {
	update := realtime.NewEvent(realtime.EventTypeSessionUpdate, map[string]any{
		"session": s.cfg,
	})
	if err := s.conn.Send(update); err != nil {
		s.log.Error("failed to push session configuration", "error", err)
	}
}

func (s *Session) onTranscriptDelta(ev realtime.Event) {
	s.mu.Lock()
	s.pending.WriteString(ev.Str("delta"))
	s.mu.Unlock()
}

func (s *Session) onTranscriptDone(ev realtime.Event) {
	s.mu.Lock()
	text := s.pending.String()
	s.pending.Reset()
	s.mu.Unlock()

	if text == "" {
		text = ev.Str("transcript")
	}
	s.emit("assistant", text)
}

func (s *Session) onInputTranscription(ev realtime.Event) {
	s.emit("user", ev.Str("transcript"))
}

func (s *Session) onError(ev realtime.Event) {
	s.log.Error("remote error event", "detail", ev.Fields)
}

func (s *Session) emit(role, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if s.onTurn != nil {
		s.onTurn(role, text)
		return
	}
	s.log.Info("turn", "role", role, "text", text)
}

// SendText injects a typed user message and asks for a spoken response,
// bypassing the microphone path.
func (s *Session) SendText(text string) error {
	item := realtime.NewEvent(realtime.EventTypeConversationItemCreate, map[string]any{
		"item": map[string]any{
			"type": "message",
			"role": "user",
			"content": []map[string]any{
				{"type": "input_text", "text": text},
			},
		},
	})
	if err := s.conn.Send(item); err != nil {
		return err
	}
	return s.conn.Send(realtime.NewEvent(realtime.EventTypeResponseCreate, nil))
}
