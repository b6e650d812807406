// Package oracle is the language-model boundary for the concierge agent.
//
// An Oracle receives the conversation so far plus the fixed tool catalog
// and returns a Decision: zero or more proposed tool calls and a draft
// spoken reply. The oracle proposes; it never executes. Validation and
// dispatch of the proposed calls belong to the caller.
//
// The default implementation speaks the OpenAI-compatible chat API, so
// any provider exposing that surface (OpenAI, Ollama, vLLM, Together)
// can serve as the oracle.
package oracle

import (
	"context"
)

// Role identifies a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of conversation history sent to the oracle.
type Message struct {
	Role    Role
	Content string

	// Name carries the tool name on RoleTool messages.
	Name string

	// ToolCalls are calls previously proposed by the assistant.
	ToolCalls []ToolCall

	// ToolCallID links a RoleTool message to the call it answers.
	ToolCallID string
}

// ToolCall is one proposed tool invocation.
type ToolCall struct {
	// ID uniquely identifies the call within the conversation.
	ID string

	// Name of the tool to invoke.
	Name string

	// Arguments is the raw JSON argument object as proposed. It is not
	// validated here; the planner checks it against the tool schema.
	Arguments string
}

// Tool declares one callable tool to the oracle.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema
}

// Request is one planning request.
type Request struct {
	// Messages is the full conversation context, system prompt first.
	Messages []Message

	// Tools is the fixed catalog the oracle may propose calls against.
	Tools []Tool
}

// Decision is the oracle's proposal for one turn.
type Decision struct {
	// ToolCalls are the proposed invocations, possibly empty.
	ToolCalls []ToolCall

	// Reply is the draft natural-language reply, possibly empty when
	// the oracle wants tool results before speaking.
	Reply string
}

// Oracle plans one conversation turn. Implementations must treat the
// upstream model as potentially slow or unavailable and bound every
// call with the request context.
type Oracle interface {
	Plan(ctx context.Context, req *Request) (*Decision, error)

	// Health checks connectivity and credentials.
	Health(ctx context.Context) error

	// Close releases resources.
	Close() error
}
