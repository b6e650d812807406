package tts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewElevenLabsValidation(t *testing.T) {
	if _, err := NewElevenLabs(); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("missing key error = %v, want ErrNoAPIKey", err)
	}
	if _, err := NewElevenLabs(WithAPIKey("k"), WithVoice("")); !errors.Is(err, ErrNoVoiceID) {
		t.Errorf("missing voice error = %v, want ErrNoVoiceID", err)
	}
}

func newElevenLabsServer(t *testing.T, handler http.HandlerFunc, opts ...Option) *ElevenLabs {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	opts = append([]Option{
		WithAPIKey("test-key"),
		WithVoice("voice-1"),
		WithBaseURL(ts.URL),
		WithRetry(1, 10*time.Millisecond),
	}, opts...)

	e, err := NewElevenLabs(opts...)
	if err != nil {
		t.Fatalf("NewElevenLabs failed: %v", err)
	}
	return e
}

func TestElevenLabsSpeak(t *testing.T) {
	audio := []byte{0x01, 0x02, 0x03, 0x04}
	e := newElevenLabsServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text-to-speech/voice-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if key := r.Header.Get("xi-api-key"); key != "test-key" {
			t.Errorf("api key header = %q", key)
		}
		w.Write(audio)
	})

	result, err := e.Speak(context.Background(), "Hello traveler")
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if len(result.Data) != len(audio) {
		t.Errorf("audio = %d bytes, want %d", len(result.Data), len(audio))
	}
	if result.Format.SampleRate != 24000 || result.Format.Channels != 1 {
		t.Errorf("format = %+v", result.Format)
	}
	if result.CharCount != len("Hello traveler") {
		t.Errorf("char count = %d", result.CharCount)
	}
}

func TestElevenLabsSpeakEmptyText(t *testing.T) {
	e := newElevenLabsServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty text reached the API")
	})
	if _, err := e.Speak(context.Background(), "   "); !errors.Is(err, ErrEmptyText) {
		t.Errorf("error = %v, want ErrEmptyText", err)
	}
}

func TestElevenLabsSpeakRetries(t *testing.T) {
	var calls atomic.Int32
	e := newElevenLabsServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte{0x00, 0x00})
	})

	if _, err := e.Speak(context.Background(), "retry me"); err != nil {
		t.Fatalf("Speak failed after retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestElevenLabsSpeakAPIError(t *testing.T) {
	e := newElevenLabsServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":{"message":"invalid api key"}}`))
	})

	_, err := e.Speak(context.Background(), "hello")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if !apiErr.IsUnauthorized() {
		t.Errorf("status = %d, want 401", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid api key" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestChainFallsBack(t *testing.T) {
	broken := NewMock()
	broken.SpeakFunc = func(context.Context, string) (*Audio, error) {
		return nil, &APIError{StatusCode: 500, Provider: "primary"}
	}
	working := NewMock()

	chain, err := NewChain(broken, working)
	if err != nil {
		t.Fatal(err)
	}

	audio, err := chain.Speak(context.Background(), "fallback test")
	if err != nil {
		t.Fatalf("chain Speak failed: %v", err)
	}
	if audio == nil || len(audio.Data) == 0 {
		t.Error("fallback produced no audio")
	}
	if working.CallCount() != 1 {
		t.Errorf("fallback provider calls = %d, want 1", working.CallCount())
	}
}

func TestChainAllFail(t *testing.T) {
	failing := func() *Mock {
		m := NewMock()
		m.SpeakFunc = func(context.Context, string) (*Audio, error) {
			return nil, &APIError{StatusCode: 503, Provider: "down"}
		}
		return m
	}

	chain, err := NewChain(failing(), failing())
	if err != nil {
		t.Fatal(err)
	}

	_, err = chain.Speak(context.Background(), "nobody home")
	var chainErr *ChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("error = %v, want ChainError", err)
	}
	if len(chainErr.Errors) != 2 {
		t.Errorf("recorded %d errors, want 2", len(chainErr.Errors))
	}
}

func TestChainRequiresProviders(t *testing.T) {
	if _, err := NewChain(); !errors.Is(err, ErrAllProvidersFailed) {
		t.Errorf("empty chain error = %v", err)
	}
}

func TestEncodingSampleRates(t *testing.T) {
	tests := []struct {
		encoding Encoding
		want     int
	}{
		{EncodingPCM16, 16000},
		{EncodingPCM24, 24000},
		{EncodingPCM44, 44100},
		{EncodingMP3, 44100},
		{Encoding("bogus"), 24000},
	}
	for _, tt := range tests {
		if got := tt.encoding.SampleRate(); got != tt.want {
			t.Errorf("SampleRate(%s) = %d, want %d", tt.encoding, got, tt.want)
		}
	}
}
