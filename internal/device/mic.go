package device

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
)

// Microphone captures mono float32 samples from the default input device and
// pushes them to the callback supplied at Start. It satisfies the capture
// pipeline's Source contract.
type Microphone struct {
	ctx  *malgo.AllocatedContext
	rate int
	log  *slog.Logger

	mu     sync.Mutex
	device *malgo.Device
}

// NewMicrophone acquires an audio context for capture at the given sample
// rate. Device acquisition failures are returned to the caller, which may
// choose to run receive-only.
func NewMicrophone(sampleRate int, log *slog.Logger) (*Microphone, error) {
	if log == nil {
		log = slog.Default()
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("device: init capture context: %w", err)
	}
	return &Microphone{ctx: ctx, rate: sampleRate, log: log.With("device", "microphone")}, nil
}

func (m *Microphone) Start(onSamples func([]float32)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device != nil {
		return nil
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = 1
	cfg.SampleRate = uint32(m.rate)
	cfg.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frameCount uint32) {
			onSamples(decodeF32LE(input, int(frameCount)))
		},
	}

	device, err := malgo.InitDevice(m.ctx.Context, cfg, callbacks)
	if err != nil {
		return fmt.Errorf("device: init microphone: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("device: start microphone: %w", err)
	}

	m.device = device
	m.log.Debug("microphone started", "sample_rate", m.rate)
	return nil
}

func (m *Microphone) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == nil {
		return nil
	}
	if err := m.device.Stop(); err != nil {
		m.log.Error("failed to stop microphone", "error", err)
	}
	m.device.Uninit()
	m.device = nil
	return nil
}

// Close releases the audio context. The microphone cannot be restarted after.
func (m *Microphone) Close() {
	_ = m.Stop()
	if m.ctx != nil {
		_ = m.ctx.Uninit()
		m.ctx.Free()
		m.ctx = nil
	}
}

func decodeF32LE(data []byte, frames int) []float32 {
	if frames*4 > len(data) {
		frames = len(data) / 4
	}
	samples := make([]float32, frames)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return samples
}
