package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted reply. Chunks, when set, is what Stream
// delivers in place of Content; Err is delivered after any chunks.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
	Chunks  []string
}

// MockProvider replays scripted replies in order and remembers every
// request. It answers ErrProviderUnavailable once the script runs out.
// Selected with provider "mock".
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) ModelID() string { return "mock" }

// Generate replays the next scripted response. A call whose context has
// already ended is recorded and fails with the context's error.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	r, err := m.pop(req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return &Response{Content: r.Content, Usage: r.Usage, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) Stream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	r, err := m.pop(req)
	if err != nil {
		return nil, err
	}

	pieces := r.Chunks
	if len(pieces) == 0 && len(r.Content) > 0 {
		pieces = []string{string(r.Content)}
	}
	out := make(chan StreamChunk, len(pieces)+1)
	go func() {
		defer close(out)
		for _, p := range pieces {
			if !send(ctx, out, StreamChunk{Text: p}) {
				return
			}
		}
		if r.Err != nil {
			send(ctx, out, StreamChunk{Err: r.Err})
		}
	}()
	return out, nil
}

func (m *MockProvider) pop(req Request) (MockResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if len(m.script) == 0 {
		return MockResponse{}, &ErrProviderUnavailable{}
	}
	r := m.script[0]
	m.script = m.script[1:]
	return r, nil
}

// LastCall returns the most recent request.
func (m *MockProvider) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Request{}, false
	}
	return m.calls[len(m.calls)-1], true
}

// CallCount counts Generate and Stream calls, including failed ones.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
