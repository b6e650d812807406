package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/teslashibe/go-nomad/internal/log"
)

// Client is an Oracle backed by an OpenAI-compatible chat API.
type Client struct {
	config Config
	api    *openai.Client
}

// NewClient creates an oracle client.
//
//	o, err := oracle.NewClient(
//	    oracle.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    oracle.WithModel("gpt-4o-mini"),
//	)
func NewClient(opts ...Option) (*Client, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	apiConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		apiConfig.BaseURL = config.BaseURL
	}

	return &Client{
		config: config,
		api:    openai.NewClientWithConfig(apiConfig),
	}, nil
}

// Plan implements Oracle.
func (c *Client) Plan(ctx context.Context, req *Request) (*Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    toChatMessages(req.Messages),
		MaxTokens:   c.config.MaxTokens,
		Temperature: float32(c.config.Temperature),
	}
	if len(req.Tools) > 0 {
		chatReq.Tools = toChatTools(req.Tools)
		chatReq.ToolChoice = "auto"
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Warn("retrying oracle call", "attempt", attempt, "error", lastErr)
			select {
			case <-time.After(c.config.RetryDelay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			}
		}

		start := time.Now()
		resp, err := c.api.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			lastErr = mapAPIError(err)
			if isRetryable(lastErr) && attempt < c.config.MaxRetries {
				continue
			}
			return nil, lastErr
		}

		if len(resp.Choices) == 0 {
			return nil, ErrEmptyDecision
		}
		decision := fromChatMessage(resp.Choices[0].Message)
		log.Debug("oracle decision",
			"tool_calls", len(decision.ToolCalls),
			"reply_len", len(decision.Reply),
			"latency_ms", time.Since(start).Milliseconds())
		return decision, nil
	}
	return nil, lastErr
}

// Health implements Oracle by listing available models.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if _, err := c.api.ListModels(ctx); err != nil {
		return mapAPIError(err)
	}
	return nil
}

// Close implements Oracle. The underlying client holds no connections.
func (c *Client) Close() error {
	return nil
}

func toChatMessages(msgs []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(msgs))
	for i, m := range msgs {
		cm := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			cm.ToolCalls = append(cm.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out[i] = cm
	}
	return out
}

func toChatTools(tools []Tool) []openai.Tool {
	out := make([]openai.Tool, len(tools))
	for i, t := range tools {
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return out
}

func fromChatMessage(m openai.ChatCompletionMessage) *Decision {
	d := &Decision{Reply: m.Content}
	for _, tc := range m.ToolCalls {
		d.ToolCalls = append(d.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return d
}

func mapAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Provider:   "openai",
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func isRetryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsRetryable()
}
