package audio

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// Speech payload format declared by the speech-synthesis backend. The
// decoder itself is format-agnostic; these are the values callers pass for
// narration payloads.
const (
	SpeechSampleRate = 24000
	SpeechChannels   = 1
)

// ErrDecode is wrapped by all decode failures: empty or malformed base64
// payloads. A failed decode never yields a partial buffer.
var ErrDecode = errors.New("audio: malformed pcm payload")

// DecodePCM16 decodes a base64-encoded stream of interleaved 16-bit signed
// little-endian PCM samples into a channel-separated [Buffer], scaling each
// sample by 1/32768 into [-1, 1].
//
// The frame count is the total sample count divided by channels, truncated
// when the division is uneven; a dangling odd byte is likewise dropped.
// Both are quantization artifacts of a short payload, not errors. No
// resampling or channel mixing is performed.
func DecodePCM16(payload string, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio: sample rate must be positive, got %d", sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("audio: channel count must be positive, got %d", channels)
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("%w: %d bytes is too short for int16 samples", ErrDecode, len(raw))
	}

	samples := len(raw) / 2
	frames := samples / channels

	buf := &Buffer{
		SampleRate: sampleRate,
		Channels:   make([][]float32, channels),
	}
	for ch := range channels {
		buf.Channels[ch] = make([]float32, frames)
	}

	for i := range frames {
		for ch := range channels {
			idx := (i*channels + ch) * 2
			s := int16(raw[idx]) | int16(raw[idx+1])<<8
			buf.Channels[ch][i] = float32(s) / 32768.0
		}
	}
	return buf, nil
}

// EncodePCM16 is the inverse of [DecodePCM16]: it interleaves the buffer's
// channels into 16-bit little-endian PCM and base64-encodes the result.
// Samples outside [-1, 1] are clamped. Used by tests and by the null sink's
// payload round-trips.
func EncodePCM16(buf *Buffer) string {
	frames := buf.FrameCount()
	channels := buf.ChannelCount()
	raw := make([]byte, frames*channels*2)

	for i := range frames {
		for ch := range channels {
			// Scale by 32768 to mirror the decoder exactly; clamp to the
			// asymmetric int16 range.
			v := int32(buf.Channels[ch][i] * 32768)
			if v > 32767 {
				v = 32767
			} else if v < -32768 {
				v = -32768
			}
			s := int16(v)
			idx := (i*channels + ch) * 2
			raw[idx] = byte(s)
			raw[idx+1] = byte(s >> 8)
		}
	}
	return base64.StdEncoding.EncodeToString(raw)
}
