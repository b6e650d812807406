package oracle

import "time"

// Config holds oracle client configuration.
type Config struct {
	// Connection
	BaseURL string // OpenAI-compatible API base URL
	APIKey  string

	// Model and request defaults
	Model       string
	MaxTokens   int
	Temperature float64

	// Timeout bounds one plan call.
	Timeout time.Duration

	// Retry configuration for retryable API errors.
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConfig returns sensible defaults for a voice turn loop. The
// timeout is short because the user is waiting for a spoken reply.
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4o-mini",
		MaxTokens:   512,
		Temperature: 0.7,
		Timeout:     15 * time.Second,
		MaxRetries:  1,
		RetryDelay:  500 * time.Millisecond,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.APIKey == "" && c.BaseURL == "" {
		return ErrNoAPIKey
	}
	if c.Model == "" {
		return ErrNoModel
	}
	return nil
}

// Option is a functional option for configuring the client.
type Option func(*Config)

// WithBaseURL sets the API base URL.
// Examples: "https://api.openai.com/v1", "http://localhost:11434/v1"
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithMaxTokens limits the reply length.
func WithMaxTokens(n int) Option {
	return func(c *Config) { c.MaxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Config) { c.Temperature = t }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithRetry configures retry behavior for retryable API errors.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Config) {
		c.MaxRetries = maxRetries
		c.RetryDelay = delay
	}
}
