// Package tts provides the speech synthesis boundary for the agent.
//
// A Synthesizer turns one reply into a complete audio buffer. Providers
// are interchangeable behind the interface; Chain falls back across
// providers so a synthesis outage degrades to the next voice rather
// than a silent turn.
package tts

import (
	"context"
	"time"
)

// Synthesizer converts text to speech.
type Synthesizer interface {
	// Speak converts one reply to audio, returning the complete buffer.
	Speak(ctx context.Context, text string) (*Audio, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// Audio is one complete synthesis result.
type Audio struct {
	// Data contains the raw audio in the specified format.
	Data []byte

	// Format describes the audio encoding and sample rate.
	Format Format

	// Duration is the estimated playback duration.
	Duration time.Duration

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the time to last byte in milliseconds.
	LatencyMs int64
}

// Format describes audio encoding parameters.
type Format struct {
	Encoding   Encoding
	SampleRate int // Hz
	Channels   int // 1 mono, 2 stereo
	BitDepth   int // bits per sample for PCM
}

// Encoding identifies the audio codec and sample rate.
// Values match ElevenLabs output format options.
type Encoding string

const (
	EncodingPCM16 Encoding = "pcm_16000"
	EncodingPCM22 Encoding = "pcm_22050"
	EncodingPCM24 Encoding = "pcm_24000"
	EncodingPCM44 Encoding = "pcm_44100"
	EncodingMP3   Encoding = "mp3_44100_128"
)

// SampleRate returns the sample rate in Hz for the encoding.
func (e Encoding) SampleRate() int {
	switch e {
	case EncodingPCM16:
		return 16000
	case EncodingPCM22:
		return 22050
	case EncodingPCM24:
		return 24000
	case EncodingPCM44, EncodingMP3:
		return 44100
	default:
		return 24000
	}
}

// Disabled is a Synthesizer that produces no audio. Replies degrade to
// text-only delivery, for running without a synthesis provider.
type Disabled struct{}

// Speak implements Synthesizer with no audio output.
func (Disabled) Speak(context.Context, string) (*Audio, error) { return nil, nil }

// Health implements Synthesizer.
func (Disabled) Health(context.Context) error { return nil }

// Close implements Synthesizer.
func (Disabled) Close() error { return nil }

var _ Synthesizer = Disabled{}

// MIME returns the MIME type for the encoding.
func (e Encoding) MIME() string {
	switch e {
	case EncodingMP3:
		return "audio/mpeg"
	case EncodingPCM16, EncodingPCM22, EncodingPCM24, EncodingPCM44:
		return "audio/pcm"
	default:
		return "audio/mpeg"
	}
}
