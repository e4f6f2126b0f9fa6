package realtime

import (
	"errors"
	"testing"

	"github.com/eleven-am/voice-client/internal/audio"
)

// fakePlayer records every chunk handed to it and lets the test finish chunks
// by hand, so ordering and back-to-back chaining are observable.
type fakePlayer struct {
	chunks [][]float32
	dones  []func()
	err    error
}

func (f *fakePlayer) Play(pcm []float32, done func()) error {
	if f.err != nil {
		return f.err
	}
	f.chunks = append(f.chunks, pcm)
	f.dones = append(f.dones, done)
	return nil
}

func (f *fakePlayer) finish(i int) {
	f.dones[i]()
}

func chunkText(samples ...float32) string {
	return audio.ToWireText(audio.EncodeSamples(samples))
}

func TestPlaybackQueueOrder(t *testing.T) {
	player := &fakePlayer{}
	q := NewPlaybackQueue(player, discardLogger())

	q.Enqueue(chunkText(0.1))
	q.Enqueue(chunkText(0.2))
	q.Enqueue(chunkText(0.3))

	if len(player.chunks) != 1 {
		t.Fatalf("expected exactly one chunk playing, got %d", len(player.chunks))
	}
	if !q.IsPlaying() {
		t.Error("expected queue to report playing")
	}

	player.finish(0)
	if len(player.chunks) != 2 {
		t.Fatalf("expected second chunk to start on completion, got %d started", len(player.chunks))
	}
	player.finish(1)
	player.finish(2)

	if len(player.chunks) != 3 {
		t.Fatalf("expected three chunks played, got %d", len(player.chunks))
	}
	if q.IsPlaying() {
		t.Error("expected queue to go idle after the last chunk")
	}

	// arrival order preserved
	wantFirst := audio.DecodeSamples(audio.EncodeSamples([]float32{0.1}))[0]
	if player.chunks[0][0] != wantFirst {
		t.Errorf("expected first enqueued chunk to play first, got %v", player.chunks[0][0])
	}
}

func TestPlaybackQueueSkipsUndecodable(t *testing.T) {
	player := &fakePlayer{}
	q := NewPlaybackQueue(player, discardLogger())

	q.Enqueue("%%%not-base64%%%")
	q.Enqueue(chunkText(0.5))

	if len(player.chunks) != 1 {
		t.Fatalf("expected the bad chunk skipped and the good one playing, got %d", len(player.chunks))
	}
}

func TestPlaybackQueueSkipsFailedStart(t *testing.T) {
	player := &fakePlayer{err: errors.New("device busy")}
	q := NewPlaybackQueue(player, discardLogger())

	q.Enqueue(chunkText(0.5))

	if q.IsPlaying() {
		t.Error("expected queue idle after every chunk failed to start")
	}
}

func TestPlaybackQueueNilPlayer(t *testing.T) {
	q := NewPlaybackQueue(nil, discardLogger())

	q.Enqueue(chunkText(0.5))
	q.Enqueue(chunkText(0.6))

	if q.IsPlaying() {
		t.Error("expected chunks consumed silently without an output device")
	}
}

func TestPlaybackQueueDrain(t *testing.T) {
	player := &fakePlayer{}
	q := NewPlaybackQueue(player, discardLogger())

	q.Enqueue(chunkText(0.1))
	q.Enqueue(chunkText(0.2))
	q.Enqueue(chunkText(0.3))

	if dropped := q.Drain(); dropped != 2 {
		t.Errorf("expected 2 pending chunks dropped, got %d", dropped)
	}
	if q.IsPlaying() {
		t.Error("expected playing flag reset after drain")
	}

	// the completion of the in-flight chunk must not restart anything
	player.finish(0)
	if len(player.chunks) != 1 {
		t.Errorf("expected no further playback after drain, got %d chunks", len(player.chunks))
	}
}

func TestPlaybackQueueStaleCompletionAfterDrain(t *testing.T) {
	player := &fakePlayer{}
	q := NewPlaybackQueue(player, discardLogger())

	q.Enqueue(chunkText(0.1))
	q.Enqueue(chunkText(0.2))
	q.Drain()

	// a fresh chunk enqueued after the drain starts immediately
	q.Enqueue(chunkText(0.3))
	if len(player.chunks) != 2 {
		t.Fatalf("expected the post-drain chunk playing, got %d started", len(player.chunks))
	}
	if !q.IsPlaying() {
		t.Fatal("expected queue playing the post-drain chunk")
	}

	// the drained chunk finishing now must not start a second concurrent
	// playback or disturb the new one
	player.finish(0)
	if len(player.chunks) != 2 {
		t.Errorf("expected stale completion ignored, got %d chunks started", len(player.chunks))
	}
	if !q.IsPlaying() {
		t.Error("expected the live chunk unaffected by the stale completion")
	}

	player.finish(1)
	if q.IsPlaying() {
		t.Error("expected queue idle after the live chunk finished")
	}
}
