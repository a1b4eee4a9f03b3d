package execution

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agentsleague/prepeval/internal/trace"
)

// MockResponse is a scripted answer for one role.
type MockResponse struct {
	Output  string
	Session *trace.Node
	Err     error
}

// MockEngine is a simple mock implementation for testing
type MockEngine struct {
	modelID string

	mu        sync.Mutex
	responses map[string]MockResponse
	requests  []ExecutionRequest
}

// NewMockEngine creates a new mock engine
func NewMockEngine(modelID string) *MockEngine {
	return &MockEngine{
		modelID:   modelID,
		responses: map[string]MockResponse{},
	}
}

// WithResponse scripts the response returned for role (case-insensitive).
func (m *MockEngine) WithResponse(role string, resp MockResponse) *MockEngine {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[strings.ToLower(role)] = resp
	return m
}

// Requests returns the requests received so far, in call order.
func (m *MockEngine) Requests() []ExecutionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutionRequest(nil), m.requests...)
}

func (m *MockEngine) Initialize(ctx context.Context) error {
	return nil
}

func (m *MockEngine) Execute(ctx context.Context, req *ExecutionRequest) (*ExecutionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to MockEngine.Execute")
	}
	start := time.Now()

	m.mu.Lock()
	m.requests = append(m.requests, *req)
	scripted, ok := m.responses[strings.ToLower(req.Role)]
	m.mu.Unlock()

	if ok && scripted.Err != nil {
		return nil, scripted.Err
	}

	output := fmt.Sprintf("Mock response for: %s", req.Message)
	if ok {
		output = scripted.Output
	}

	transcript := newSessionTranscript(req.Role)
	transcript.addText("user", req.Message)
	transcript.addText("assistant", output)
	session := transcript.Node()
	if ok && scripted.Session != nil {
		session = *scripted.Session
	}

	return &ExecutionResponse{
		FinalOutput: output,
		Session:     session,
		ModelID:     m.modelID,
		DurationMs:  time.Since(start).Milliseconds(),
		Success:     true,
	}, nil
}

func (m *MockEngine) Shutdown(ctx context.Context) error {
	return nil
}
