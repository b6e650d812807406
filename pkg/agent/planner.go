package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/teslashibe/go-nomad/internal/log"
	"github.com/teslashibe/go-nomad/pkg/catalog"
	"github.com/teslashibe/go-nomad/pkg/oracle"
)

// PlannedCall is one validated remote tool invocation.
type PlannedCall struct {
	// CallID is the oracle's identifier, used to key the result back
	// into the conversation.
	CallID string

	// Request is the validated gateway request.
	Request catalog.Request
}

// PlannedIntent is one validated local intent.
type PlannedIntent struct {
	CallID string
	Name   string
	Args   map[string]any
}

// Plan is the validated outcome of one oracle consultation. Every call
// names a tool inside the fixed catalog and carries schema-valid
// arguments; everything the oracle proposed outside that contract was
// dropped and recorded as a rejection.
type Plan struct {
	// Calls are remote catalog invocations, in proposal order.
	Calls []PlannedCall

	// Intents are controller-handled operations, in proposal order.
	Intents []PlannedIntent

	// Raw are the oracle's proposed calls before validation, recorded
	// into the conversation so tool results can reference them.
	Raw []oracle.ToolCall

	// Reply is the oracle's draft reply, possibly empty.
	Reply string
}

// Planner turns conversation context into validated tool plans. It is a
// thin adapter over the oracle: the oracle proposes, the planner checks
// every proposal against the declared schemas and drops what fails.
type Planner struct {
	oracle oracle.Oracle
}

// NewPlanner creates a planner backed by the given oracle.
func NewPlanner(o oracle.Oracle) *Planner {
	return &Planner{oracle: o}
}

// Plan consults the oracle with the full context and the fixed tool set,
// then validates each proposed call. Rejected calls are dropped from the
// plan and the rejection reason is recorded into convo so the next
// oracle consultation can see it. Duplicate calls to the same tool are
// all kept; each is a distinct user-relevant request.
func (p *Planner) Plan(ctx context.Context, convo *Context) (*Plan, error) {
	decision, err := p.oracle.Plan(ctx, &oracle.Request{
		Messages: convo.Messages(),
		Tools:    oracleTools(),
	})
	if err != nil {
		return nil, fmt.Errorf("plan turn: %w", err)
	}

	plan := &Plan{Reply: decision.Reply}
	for _, call := range decision.ToolCalls {
		if call.ID == "" {
			call.ID = uuid.NewString()
		}

		args, err := parseArgs(call.Arguments)
		if err != nil {
			p.reject(convo, call, fmt.Sprintf("malformed arguments: %v", err))
			continue
		}

		switch {
		case isLocalIntent(call.Name):
			if err := validateIntentArgs(call.Name, args); err != nil {
				p.reject(convo, call, err.Error())
				continue
			}
			plan.Raw = append(plan.Raw, call)
			plan.Intents = append(plan.Intents, PlannedIntent{
				CallID: call.ID,
				Name:   call.Name,
				Args:   args,
			})

		case catalog.Known(call.Name):
			if err := catalog.ValidateArgs(catalog.ToolName(call.Name), args); err != nil {
				p.reject(convo, call, err.Error())
				continue
			}
			plan.Raw = append(plan.Raw, call)
			plan.Calls = append(plan.Calls, PlannedCall{
				CallID: call.ID,
				Request: catalog.Request{
					ID:   call.ID,
					Tool: catalog.ToolName(call.Name),
					Args: args,
				},
			})

		default:
			p.reject(convo, call, fmt.Sprintf("unknown tool %q", call.Name))
		}
	}

	return plan, nil
}

// Compose asks the oracle for a spoken reply over the updated context,
// offering no tools so the answer is pure text.
func (p *Planner) Compose(ctx context.Context, convo *Context) (string, error) {
	decision, err := p.oracle.Plan(ctx, &oracle.Request{Messages: convo.Messages()})
	if err != nil {
		return "", fmt.Errorf("compose reply: %w", err)
	}
	return decision.Reply, nil
}

func (p *Planner) reject(convo *Context, call oracle.ToolCall, reason string) {
	log.Warn("dropped proposed tool call", "tool", call.Name, "reason", reason)
	convo.AddNote(fmt.Sprintf("Tool call %s rejected: %s", call.Name, reason))
}

func parseArgs(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
