package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockResponse is one canned reply for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockGrade builds a canned response carrying a well-formed grade
// payload, the common case in grading tests.
func MockGrade(score int, feedback string) MockResponse {
	payload, _ := json.Marshal(map[string]any{
		"score":    score,
		"feedback": feedback,
	})
	return MockResponse{
		Content: payload,
		Usage:   Usage{InputTokens: 120, OutputTokens: 40},
	}
}

// MockProvider is a deterministic Provider for tests. Replies are
// consumed in FIFO order and every request is recorded in Calls.
type MockProvider struct {
	mu    sync.Mutex
	queue []MockResponse
	Calls []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{queue: responses}
}

// Generate pops the next canned reply. An exhausted queue reports the
// provider as unavailable, which keeps misconfigured tests loud.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.queue) == 0 {
		return nil, &ErrProviderUnavailable{Err: fmt.Errorf("mock queue exhausted after %d calls", len(m.Calls))}
	}

	next := m.queue[0]
	m.queue = m.queue[1:]

	if next.Err != nil {
		return nil, next.Err
	}

	return &Response{
		Content:    next.Content,
		Usage:      next.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse queues one more canned reply.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resp)
}

// CallCount reports how many Generate calls were made so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
