package realtime

import "time"

const (
	// SampleRate is the fixed session sample rate, mono PCM16.
	SampleRate = 24000

	DefaultURL   = "wss://api.openai.com/v1/realtime"
	DefaultModel = "gpt-4o-realtime-preview"

	defaultHandshakeTimeout = 15 * time.Second
)

// Config carries everything a Client needs up front. Device handles are
// constructor parameters rather than fields poked in later, so a Client is
// fully wired the moment it exists.
type Config struct {
	// URL is the realtime WebSocket endpoint.
	URL string

	// Model is negotiated as a query parameter during the handshake.
	Model string

	// Credential is presented as a WebSocket subprotocol token during the
	// handshake. It never appears in a message body.
	Credential string

	HandshakeTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = defaultHandshakeTimeout
	}
	return c
}
