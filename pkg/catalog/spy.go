package catalog

import (
	"context"
	"sync"
)

// Spy is a Gateway for testing. It records every request and answers from
// scripted results keyed by tool name, or via InvokeFunc when set.
type Spy struct {
	mu sync.Mutex

	// InvokeFunc overrides all scripted behavior when set.
	InvokeFunc func(ctx context.Context, req Request) Result

	// Results maps tool names to scripted results. The request ID and tool
	// are filled in from the request.
	Results map[ToolName]Result

	// Requests captures every Invoke call for assertions.
	Requests []Request
}

// NewSpy creates a Spy with an empty script.
func NewSpy() *Spy {
	return &Spy{Results: make(map[ToolName]Result)}
}

// Script sets the result returned for a tool.
func (s *Spy) Script(tool ToolName, result Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Results[tool] = result
}

// Invoke implements Gateway.
func (s *Spy) Invoke(ctx context.Context, req Request) Result {
	s.mu.Lock()
	s.Requests = append(s.Requests, req)
	fn := s.InvokeFunc
	scripted, ok := s.Results[req.Tool]
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if !ok {
		return Failure(req, "no scripted result")
	}
	scripted.ID = req.ID
	scripted.Tool = req.Tool
	return scripted
}

// CallCount returns the number of recorded requests.
func (s *Spy) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// CallsFor returns the recorded requests for one tool.
func (s *Spy) CallsFor(tool ToolName) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, r := range s.Requests {
		if r.Tool == tool {
			out = append(out, r)
		}
	}
	return out
}
