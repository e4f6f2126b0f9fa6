package bootstrap

import (
	"log/slog"
	"time"

	"github.com/eleven-am/voice-client/internal/device"
	"github.com/eleven-am/voice-client/internal/realtime"
)

// BuildClient assembles a realtime client with whatever audio devices can be
// acquired. A missing microphone or speaker degrades the session instead of
// failing it: capture is skipped, inbound audio is discarded.
func BuildClient(cfg *Config, log *slog.Logger) (*realtime.Client, func()) {
	var source realtime.Source
	var player realtime.Player

	mic, err := device.NewMicrophone(realtime.SampleRate, log)
	if err != nil {
		log.Warn("microphone unavailable, capture disabled", "error", err)
	} else {
		source = mic
	}

	speaker, err := device.NewSpeaker(realtime.SampleRate, log)
	if err != nil {
		log.Warn("speaker unavailable, playback disabled", "error", err)
	} else {
		player = speaker
	}

	client := realtime.NewClient(realtime.Config{
		URL:              cfg.RealtimeURL,
		Model:            cfg.Model,
		Credential:       cfg.APIKey,
		HandshakeTimeout: time.Duration(cfg.ConnectTimeoutSec) * time.Second,
	}, source, player, log)

	cleanup := func() {
		_ = client.Close()
		if mic != nil {
			mic.Close()
		}
	}
	return client, cleanup
}
