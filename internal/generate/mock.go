package generate

import (
	"context"
	"fmt"
	"sync"
)

// MockGenerator is a scripted Generator for tests. Results are keyed by
// prompt; a call whose prompt has a registered gate blocks until that gate
// is released, which lets tests force completion order.
type MockGenerator struct {
	mu      sync.Mutex
	results map[string]mockResult
	gates   map[string]chan struct{}
	calls   []Request
}

type mockResult struct {
	image []byte
	err   error
}

// NewMockGenerator creates an empty mock. Unscripted prompts succeed with a
// placeholder payload.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		results: make(map[string]mockResult),
		gates:   make(map[string]chan struct{}),
	}
}

// Succeed scripts a successful result for the given prompt.
func (m *MockGenerator) Succeed(prompt string, image []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[prompt] = mockResult{image: image}
}

// Fail scripts a failure for the given prompt.
func (m *MockGenerator) Fail(prompt string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[prompt] = mockResult{err: err}
}

// Hold makes calls for the given prompt block until Release is called.
func (m *MockGenerator) Hold(prompt string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gates[prompt] = make(chan struct{})
}

// Release unblocks held calls for the given prompt.
func (m *MockGenerator) Release(prompt string) {
	m.mu.Lock()
	gate, ok := m.gates[prompt]
	if ok {
		delete(m.gates, prompt)
	}
	m.mu.Unlock()
	if ok {
		close(gate)
	}
}

// Calls returns a copy of every request seen so far.
func (m *MockGenerator) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// Generate returns the scripted result for req.Prompt, honoring any gate.
func (m *MockGenerator) Generate(ctx context.Context, req Request) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	gate := m.gates[req.Prompt]
	res, scripted := m.results[req.Prompt]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if !scripted {
		return []byte(fmt.Sprintf("rendered:%s", req.Prompt)), nil
	}
	return res.image, res.err
}
