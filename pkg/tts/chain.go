package tts

import (
	"context"
	"fmt"

	"github.com/teslashibe/go-nomad/internal/log"
)

// Chain implements Synthesizer by trying providers in order. The first
// success wins; if all fail, an aggregate error is returned.
type Chain struct {
	providers []Synthesizer
}

// NewChain creates a fallback chain. At least one provider is required.
func NewChain(providers ...Synthesizer) (*Chain, error) {
	if len(providers) == 0 {
		return nil, ErrAllProvidersFailed
	}
	return &Chain{providers: providers}, nil
}

// Speak tries each provider until one succeeds.
func (c *Chain) Speak(ctx context.Context, text string) (*Audio, error) {
	var errs []error

	for i, p := range c.providers {
		audio, err := p.Speak(ctx, text)
		if err == nil {
			if i > 0 {
				log.Info("fallback synthesizer succeeded", "provider_index", i)
			}
			return audio, nil
		}

		errs = append(errs, err)
		log.Warn("synthesizer failed, trying next", "provider_index", i, "error", err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, &ChainError{Errors: errs}
}

// Health returns an error only when every provider is unhealthy.
func (c *Chain) Health(ctx context.Context) error {
	var healthy int
	var lastErr error

	for _, p := range c.providers {
		if err := p.Health(ctx); err != nil {
			lastErr = err
		} else {
			healthy++
		}
	}

	if healthy == 0 {
		return fmt.Errorf("all %d synthesizers unhealthy: %w", len(c.providers), lastErr)
	}
	return nil
}

// Close closes all providers.
func (c *Chain) Close() error {
	var lastErr error
	for _, p := range c.providers {
		if err := p.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// ChainError aggregates errors from all providers in a chain.
type ChainError struct {
	Errors []error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	if len(e.Errors) == 0 {
		return "tts chain: no errors recorded"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("tts chain: %v", e.Errors[0])
	}
	return fmt.Sprintf("tts chain: all %d providers failed, last error: %v",
		len(e.Errors), e.Errors[len(e.Errors)-1])
}

// Unwrap returns the last error in the chain.
func (e *ChainError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

// Verify Chain implements Synthesizer at compile time.
var _ Synthesizer = (*Chain)(nil)
