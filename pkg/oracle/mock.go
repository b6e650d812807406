package oracle

import (
	"context"
	"sync"
)

// Mock is a scripted Oracle for tests. Decisions queued with Enqueue are
// returned in order; PlanFunc overrides everything when set.
type Mock struct {
	mu sync.Mutex

	// PlanFunc, when set, handles Plan directly.
	PlanFunc func(ctx context.Context, req *Request) (*Decision, error)

	// HealthErr is returned by Health.
	HealthErr error

	queue    []*Decision
	planErr  error
	requests []*Request
}

// NewMock creates an empty mock.
func NewMock() *Mock {
	return &Mock{}
}

// Enqueue scripts the next decisions in order. When the queue runs dry,
// Plan returns an empty reply.
func (m *Mock) Enqueue(decisions ...*Decision) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, decisions...)
}

// FailWith makes every subsequent Plan call return err.
func (m *Mock) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.planErr = err
}

// Plan implements Oracle.
func (m *Mock) Plan(ctx context.Context, req *Request) (*Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PlanFunc != nil {
		return m.PlanFunc(ctx, req)
	}

	m.requests = append(m.requests, req)
	if m.planErr != nil {
		return nil, m.planErr
	}
	if len(m.queue) == 0 {
		return &Decision{Reply: "Okay."}, nil
	}
	d := m.queue[0]
	m.queue = m.queue[1:]
	return d, nil
}

// Health implements Oracle.
func (m *Mock) Health(context.Context) error {
	return m.HealthErr
}

// Close implements Oracle.
func (m *Mock) Close() error {
	return nil
}

// Requests returns the captured plan requests.
func (m *Mock) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent plan request, or nil.
func (m *Mock) LastRequest() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}
