package device

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/eleven-am/voice-client/internal/audio"
)

// Speaker plays decoded float32 chunks through the default output device. It
// satisfies the playback queue's Player contract: Play returns immediately and
// the done callback fires once the chunk has finished.
type Speaker struct {
	ctx  *oto.Context
	rate int
	log  *slog.Logger
}

// NewSpeaker acquires the output audio context at the given sample rate, mono
// signed 16-bit. The context readiness channel is waited on here so the first
// Play is audible from its first sample.
func NewSpeaker(sampleRate int, log *slog.Logger) (*Speaker, error) {
	if log == nil {
		log = slog.Default()
	}

	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("device: init speaker: %w", err)
	}
	<-ready

	return &Speaker{ctx: ctx, rate: sampleRate, log: log.With("device", "speaker")}, nil
}

func (s *Speaker) Play(pcm []float32, done func()) error {
	data := audio.EncodeSamples(pcm)
	player := s.ctx.NewPlayer(bytes.NewReader(data))
	player.Play()

	duration := time.Duration(len(pcm)) * time.Second / time.Duration(s.rate)
	go func() {
		time.Sleep(duration)
		for player.IsPlaying() {
			time.Sleep(5 * time.Millisecond)
		}
		if err := player.Close(); err != nil {
			s.log.Error("failed to close player", "error", err)
		}
		if done != nil {
			done()
		}
	}()
	return nil
}
