package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockResponse is a canned reply for MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
	// Truncated makes the reply stop at the token cap.
	Truncated bool
}

// MockProvider serves canned replies in order. It runs them through the
// same preparation and validation as the real adapters, so fenced or
// malformed feedback JSON fails here the way it would in production.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	// Calls holds every request as the caller sent it.
	Calls []Request
	// Prepared holds the same requests after purpose defaults were applied.
	Prepared []Request
}

// NewMockProvider creates a MockProvider with the given canned replies.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate serves the next canned reply. An empty queue is reported as an
// unavailable provider.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	prepared := prepare(ctx, req)
	m.Prepared = append(m.Prepared, prepared)

	if len(m.responses) == 0 {
		return nil, &Error{Kind: KindUnavailable, Provider: "mock", Err: errors.New("no canned reply left")}
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	if next.Err != nil {
		return nil, next.Err
	}

	stop := StopEnd
	if next.Truncated {
		stop = StopMaxTokens
	}
	return finish("mock", prepared, reply{text: string(next.Content), usage: next.Usage, model: "mock", stop: stop})
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse queues another canned reply.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
