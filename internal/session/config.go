package session

// SessionConfig mirrors the session.update payload accepted by the remote
// endpoint. Zero-value fields are omitted from the wire.
type SessionConfig struct {
	Instructions            string                   `json:"instructions,omitempty"`
	Voice                   string                   `json:"voice,omitempty"`
	Modalities              []string                 `json:"modalities,omitempty"`
	InputAudioFormat        string                   `json:"input_audio_format,omitempty"`
	OutputAudioFormat       string                   `json:"output_audio_format,omitempty"`
	InputAudioTranscription *InputAudioTranscription `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetectionConfig     `json:"turn_detection,omitempty"`
	Temperature             float32                  `json:"temperature,omitempty"`
}

type InputAudioTranscription struct {
	Model    string `json:"model,omitempty"`
	Language string `json:"language,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
}

type TurnDetectionConfig struct {
	Type              string  `json:"type,omitempty"`
	Threshold         float32 `json:"threshold,omitempty"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms,omitempty"`
	SilenceDurationMs int     `json:"silence_duration_ms,omitempty"`
	CreateResponse    *bool   `json:"create_response,omitempty"`
}

// DefaultConfig is pushed after session.created when the caller supplies
// nothing: audio both ways in PCM16 with server-side voice activity detection.
func DefaultConfig() SessionConfig {
	return SessionConfig{
		Modalities:        []string{"text", "audio"},
		InputAudioFormat:  "pcm16",
		OutputAudioFormat: "pcm16",
		TurnDetection:     &TurnDetectionConfig{Type: "server_vad"},
	}
}
