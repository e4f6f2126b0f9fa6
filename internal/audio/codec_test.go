package audio

import (
	"math"
	"testing"
)

func TestEncodeSamplesScaling(t *testing.T) {
	pcm := EncodeSamples([]float32{-1.0, 0.0, 1.0, 0.5, -0.5})

	want := []int16{-32768, 0, 32767, 16384, -16384}
	if len(pcm) != len(want)*2 {
		t.Fatalf("expected %d bytes, got %d", len(want)*2, len(pcm))
	}
	for i, w := range want {
		got := int16(uint16(pcm[i*2]) | uint16(pcm[i*2+1])<<8)
		if got != w {
			t.Errorf("sample %d: expected %d, got %d", i, w, got)
		}
	}
}

func TestEncodeSamplesClamps(t *testing.T) {
	pcm := EncodeSamples([]float32{2.5, -3.0})

	if got := int16(uint16(pcm[0]) | uint16(pcm[1])<<8); got != 32767 {
		t.Errorf("expected over-range sample clamped to 32767, got %d", got)
	}
	if got := int16(uint16(pcm[2]) | uint16(pcm[3])<<8); got != -32768 {
		t.Errorf("expected under-range sample clamped to -32768, got %d", got)
	}
}

func TestDecodeSamplesExtremes(t *testing.T) {
	// -32768 and 32767 little-endian
	samples := DecodeSamples([]byte{0x00, 0x80, 0xFF, 0x7F})

	if samples[0] != -1.0 {
		t.Errorf("expected full-scale negative to decode to -1.0, got %v", samples[0])
	}
	if samples[1] != 1.0 {
		t.Errorf("expected full-scale positive to decode to 1.0, got %v", samples[1])
	}
}

func TestRoundTripWithinQuantization(t *testing.T) {
	in := []float32{-1.0, -0.75, -0.25, -0.0001, 0.0, 0.0001, 0.25, 0.75, 1.0}

	out := DecodeSamples(EncodeSamples(in))
	if len(out) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(out))
	}
	for i := range in {
		diff := math.Abs(float64(out[i]) - float64(in[i]))
		if diff > 1.0/32767.0 {
			t.Errorf("sample %d: round trip drifted by %v (in %v, out %v)", i, diff, in[i], out[i])
		}
	}
}

func TestWireTextRoundTrip(t *testing.T) {
	raw := []byte{0x00, 0x01, 0xFE, 0xFF}

	decoded, err := FromWireText(ToWireText(raw))
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(decoded) != len(raw) {
		t.Fatalf("expected %d bytes, got %d", len(raw), len(decoded))
	}
	for i := range raw {
		if decoded[i] != raw[i] {
			t.Errorf("byte %d: expected %#x, got %#x", i, raw[i], decoded[i])
		}
	}
}

func TestWireTextEmpty(t *testing.T) {
	decoded, err := FromWireText(ToWireText(nil))
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("expected empty payload, got %d bytes", len(decoded))
	}
}

func TestFromWireTextRejectsGarbage(t *testing.T) {
	if _, err := FromWireText("not!!base64"); err == nil {
		t.Error("expected error for invalid base64 input")
	}
}
