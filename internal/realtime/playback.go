package realtime

import (
	"log/slog"
	"sync"

	"github.com/eleven-am/voice-client/internal/audio"
)

// Player starts playback of one decoded chunk and invokes done when the chunk
// has finished playing. Play must not block for the duration of the audio.
type Player interface {
	Play(pcm []float32, done func()) error
}

// PlaybackQueue schedules synthesized audio chunks strictly in arrival order,
// one at a time, each decoded from its wire text just before playback. A chunk
// that fails to decode or start is logged and skipped so the queue never
// wedges on corrupt input.
type PlaybackQueue struct {
	player Player
	log    *slog.Logger

	mu      sync.Mutex
	queue   []string
	playing bool
	gen     uint64
}

func NewPlaybackQueue(player Player, log *slog.Logger) *PlaybackQueue {
	if log == nil {
		log = slog.Default()
	}
	return &PlaybackQueue{player: player, log: log}
}

// Enqueue appends a base64 PCM16 chunk at the tail and starts playback of the
// head when nothing is currently playing.
func (q *PlaybackQueue) Enqueue(wireText string) {
	q.mu.Lock()
	q.queue = append(q.queue, wireText)
	start := !q.playing
	if start {
		q.playing = true
	}
	gen := q.gen
	q.mu.Unlock()

	if start {
		q.playHead(gen)
	}
}

// playHead pops the head chunk and starts it; the player's completion callback
// re-enters playHead so chunks run back to back. Undecodable or unplayable
// chunks advance the loop to the next head. The generation tag detects a Drain
// that happened while a chunk was in flight: the stale completion must not
// touch a queue that has since been reset or refilled.
func (q *PlaybackQueue) playHead(gen uint64) {
	for {
		q.mu.Lock()
		if gen != q.gen {
			q.mu.Unlock()
			return
		}
		if len(q.queue) == 0 {
			q.playing = false
			q.mu.Unlock()
			return
		}
		head := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()

		raw, err := audio.FromWireText(head)
		if err != nil {
			q.log.Error("skipping undecodable audio chunk", "error", err)
			continue
		}

		if q.player == nil {
			// no output device acquired; consume silently
			continue
		}

		if err := q.player.Play(audio.DecodeSamples(raw), func() { q.playHead(gen) }); err != nil {
			q.log.Error("playback start failed, skipping chunk", "error", err)
			continue
		}
		return
	}
}

// Drain discards all pending chunks, resets the playing flag, and invalidates
// the completion callback of any chunk still in flight. Returns the number of
// chunks dropped.
func (q *PlaybackQueue) Drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.queue)
	q.queue = nil
	q.playing = false
	q.gen++
	return n
}

func (q *PlaybackQueue) IsPlaying() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}
