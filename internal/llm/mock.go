package llm

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MockResponse scripts one Generate call. Err wins over Content; Delay
// holds the call open first so tests can cancel it mid-flight.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
	Delay   time.Duration
}

// MockProvider replays scripted responses in order and records what it was
// asked. Once the script runs out every call fails as unavailable, which is
// also how the "mock" provider behaves when selected in config.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse

	// Calls and Purposes are appended in call order. Read them only after
	// the calls under test have returned.
	Calls    []Request
	Purposes []string
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	next, ok := m.record(ctx, req)
	if !ok {
		return nil, &ErrProviderUnavailable{}
	}
	if err := sleepCtx(ctx, next.Delay); err != nil {
		return nil, err
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", StopReason: StopEnd}, nil
}

// record logs the call and pops the next scripted response.
func (m *MockProvider) record(ctx context.Context, req Request) (MockResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	m.Purposes = append(m.Purposes, PurposeFrom(ctx))
	if len(m.script) == 0 {
		return MockResponse{}, false
	}
	next := m.script[0]
	m.script = m.script[1:]
	return next, true
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) Name() string { return ProviderMock }

// AddResponse extends the script.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	m.script = append(m.script, resp)
	m.mu.Unlock()
}

// Pending is the number of scripted responses not yet served.
func (m *MockProvider) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.script)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
