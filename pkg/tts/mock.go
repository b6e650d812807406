package tts

import (
	"context"
	"sync"
	"time"
)

// Mock is a configurable fake Synthesizer for tests. Function fields
// override behavior; unset fields return canned successes.
type Mock struct {
	mu sync.Mutex

	// SpeakFunc overrides Speak when set.
	SpeakFunc func(ctx context.Context, text string) (*Audio, error)

	// HealthFunc overrides Health when set.
	HealthFunc func(ctx context.Context) error

	// SpeakCalls records every text passed to Speak.
	SpeakCalls []string

	closed bool
}

// NewMock creates a mock that succeeds with a small PCM buffer.
func NewMock() *Mock {
	return &Mock{}
}

// Speak implements Synthesizer.
func (m *Mock) Speak(ctx context.Context, text string) (*Audio, error) {
	m.mu.Lock()
	m.SpeakCalls = append(m.SpeakCalls, text)
	fn := m.SpeakFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}
	if text == "" {
		return nil, ErrEmptyText
	}
	return &Audio{
		Data:      make([]byte, 2*len(text)),
		Format:    Format{Encoding: EncodingPCM24, SampleRate: 24000, Channels: 1, BitDepth: 16},
		Duration:  time.Duration(len(text)) * 50 * time.Millisecond,
		CharCount: len(text),
	}, nil
}

// Health implements Synthesizer.
func (m *Mock) Health(ctx context.Context) error {
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

// Close implements Synthesizer.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// CallCount returns the number of Speak calls.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SpeakCalls)
}

// Verify Mock implements Synthesizer at compile time.
var _ Synthesizer = (*Mock)(nil)
