package realtime

import (
	"log/slog"
	"sync"

	"github.com/eleven-am/voice-client/internal/audio"
)

// BlockSize is the number of mono samples in one captured audio block.
const BlockSize = 4096

// Source is a live input device delivering captured samples in arbitrary-size
// batches via the callback passed to Start.
type Source interface {
	Start(onSamples func([]float32)) error
	Stop() error
}

// CapturePipeline assembles microphone samples into fixed-size blocks and
// ships each block to the transport as an input_audio_buffer.append event.
// Blocks captured while the connection is not open are counted but discarded:
// buffering them would grow without bound and replay stale audio after
// reconnect.
type CapturePipeline struct {
	source Source
	ready  func() bool
	send   func(Event) error
	log    *slog.Logger

	mu      sync.Mutex
	started bool
	block   []float32
	blocks  uint64
}

func NewCapturePipeline(source Source, ready func() bool, send func(Event) error, log *slog.Logger) *CapturePipeline {
	if log == nil {
		log = slog.Default()
	}
	return &CapturePipeline{
		source: source,
		ready:  ready,
		send:   send,
		log:    log,
		block:  make([]float32, 0, BlockSize),
	}
}

// Start begins pulling samples from the source. It runs synchronously inside
// the connect path so the earliest frames are not lost while the remote
// endpoint is already listening. A missing source disables capture rather than
// failing the session.
func (p *CapturePipeline) Start() error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return nil
	}
	if p.source == nil {
		p.mu.Unlock()
		p.log.Warn("no capture source configured, session is receive-only")
		return nil
	}
	p.started = true
	p.blocks = 0
	p.block = p.block[:0]
	p.mu.Unlock()

	if err := p.source.Start(p.onSamples); err != nil {
		p.mu.Lock()
		p.started = false
		p.mu.Unlock()
		return err
	}
	return nil
}

func (p *CapturePipeline) onSamples(samples []float32) {
	p.mu.Lock()
	p.block = append(p.block, samples...)
	var full [][]float32
	for len(p.block) >= BlockSize {
		block := make([]float32, BlockSize)
		copy(block, p.block[:BlockSize])
		p.block = p.block[BlockSize:]
		full = append(full, block)
		p.blocks++
	}
	p.mu.Unlock()

	for _, block := range full {
		p.emit(block)
	}
}

func (p *CapturePipeline) emit(block []float32) {
	if !p.ready() {
		return
	}
	wireText := audio.ToWireText(audio.EncodeSamples(block))
	ev := NewEvent(EventTypeInputAudioBufferAppend, map[string]any{"audio": wireText})
	if err := p.send(ev); err != nil {
		p.log.Error("failed to send captured audio block", "error", err)
	}
}

// Stop releases the input device. Safe to call repeatedly.
func (p *CapturePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.block = p.block[:0]
	p.mu.Unlock()

	if err := p.source.Stop(); err != nil {
		p.log.Error("failed to stop capture source", "error", err)
	}
}

// Blocks reports how many full blocks have been captured since Start.
func (p *CapturePipeline) Blocks() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blocks
}
