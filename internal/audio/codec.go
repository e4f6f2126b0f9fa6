package audio

import (
	"encoding/base64"
	"encoding/binary"
	"math"
)

// EncodeSamples converts linear float samples to signed 16-bit little-endian
// PCM. Samples are clamped to [-1, 1]; negative values scale by 32768 and
// non-negative by 32767 so both full-scale extremes stay representable.
func EncodeSamples(samples []float32) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		var v int16
		if s < 0 {
			v = int16(math.Round(float64(s) * 32768.0))
		} else {
			v = int16(math.Round(float64(s) * 32767.0))
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	return pcm
}

// DecodeSamples converts signed 16-bit little-endian PCM back to linear float
// samples. Inverse of EncodeSamples up to quantization: negative values divide
// by 32768, non-negative by 32767.
func DecodeSamples(pcm []byte) []float32 {
	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		if v < 0 {
			samples[i] = float32(v) / 32768.0
		} else {
			samples[i] = float32(v) / 32767.0
		}
	}
	return samples
}

// ToWireText encodes raw bytes as base64 for embedding in JSON message fields.
func ToWireText(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// FromWireText decodes the base64 wire representation back to raw bytes.
func FromWireText(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(text)
}
