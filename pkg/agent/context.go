package agent

import (
	"fmt"

	"github.com/teslashibe/go-nomad/pkg/oracle"
)

// DefaultMaxEntries bounds the conversation history sent to the oracle.
const DefaultMaxEntries = 200

// Context is the ordered conversation history for one room session.
// It is owned by the controller's turn loop and mutated by no one else,
// so it needs no locking. Entries are append-only; when the size bound
// is hit the oldest entries are dropped, except the system prompt which
// is always retained at position zero.
type Context struct {
	system     oracle.Message
	entries    []oracle.Message
	maxEntries int
}

// NewContext creates a context with the given system prompt.
func NewContext(systemPrompt string) *Context {
	return &Context{
		system:     oracle.Message{Role: oracle.RoleSystem, Content: systemPrompt},
		maxEntries: DefaultMaxEntries,
	}
}

// WithMaxEntries sets the history bound, not counting the system prompt.
func (c *Context) WithMaxEntries(n int) *Context {
	if n > 0 {
		c.maxEntries = n
		c.truncate()
	}
	return c
}

// AddUtterance appends one finalized user turn.
func (c *Context) AddUtterance(speaker, text string) {
	content := text
	if speaker != "" {
		content = fmt.Sprintf("[%s] %s", speaker, text)
	}
	c.append(oracle.Message{Role: oracle.RoleUser, Content: content})
}

// AddReply appends the assistant's spoken reply.
func (c *Context) AddReply(text string) {
	c.append(oracle.Message{Role: oracle.RoleAssistant, Content: text})
}

// AddToolCalls records the calls the oracle proposed this turn.
func (c *Context) AddToolCalls(calls []oracle.ToolCall) {
	if len(calls) == 0 {
		return
	}
	c.append(oracle.Message{Role: oracle.RoleAssistant, ToolCalls: calls})
}

// AddToolResult records one tool outcome, keyed to its originating call.
func (c *Context) AddToolResult(callID, tool, content string) {
	c.append(oracle.Message{
		Role:       oracle.RoleTool,
		Name:       tool,
		ToolCallID: callID,
		Content:    content,
	})
}

// AddNote records a controller-side observation the oracle should see on
// the next turn, such as a rejected tool call.
func (c *Context) AddNote(text string) {
	c.append(oracle.Message{Role: oracle.RoleSystem, Content: text})
}

// Messages returns the full history, system prompt first. The returned
// slice is a copy; mutating it does not affect the context.
func (c *Context) Messages() []oracle.Message {
	out := make([]oracle.Message, 0, len(c.entries)+1)
	out = append(out, c.system)
	out = append(out, c.entries...)
	return out
}

// Len returns the number of entries, not counting the system prompt.
func (c *Context) Len() int {
	return len(c.entries)
}

// Reset clears the history at session end, keeping the system prompt.
func (c *Context) Reset() {
	c.entries = nil
}

func (c *Context) append(m oracle.Message) {
	c.entries = append(c.entries, m)
	c.truncate()
}

func (c *Context) truncate() {
	if over := len(c.entries) - c.maxEntries; over > 0 {
		c.entries = c.entries[over:]
	}
	// Never lead with an orphaned tool result whose originating call
	// was truncated away; chat APIs reject that shape.
	for len(c.entries) > 0 && c.entries[0].Role == oracle.RoleTool {
		c.entries = c.entries[1:]
	}
}
