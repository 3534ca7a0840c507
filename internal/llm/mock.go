package llm

import (
	"context"
	"sync"
)

// CompletionCall records one call made against the mock.
type CompletionCall struct {
	Prompt      string
	Temperature float64
}

// MockClient is a configurable completion client for testing.
// Set the func fields to script responses; calls are tracked for assertions.
// Safe for concurrent use, matching the coordinator's fan-out.
type MockClient struct {
	mu sync.Mutex

	// CompleteFunc overrides plain-text completions. When nil, TextResponse
	// and TextError are returned.
	CompleteFunc func(prompt string, temperature float64) (string, error)
	TextResponse string
	TextError    error

	// JSONFunc overrides structured completions; it returns the raw JSON
	// that is decoded into the caller's target. When nil, JSONResponse and
	// JSONError are used.
	JSONFunc     func(prompt string, temperature float64) (string, error)
	JSONResponse string
	JSONError    error

	// Call tracking for assertions
	CompleteCalls []CompletionCall
	JSONCalls     []CompletionCall
}

func NewMockClient() *MockClient {
	return &MockClient{
		TextResponse: "mock completion",
		JSONResponse: "{}",
	}
}

func (c *MockClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	c.mu.Lock()
	c.CompleteCalls = append(c.CompleteCalls, CompletionCall{Prompt: prompt, Temperature: temperature})
	fn, resp, err := c.CompleteFunc, c.TextResponse, c.TextError
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fn != nil {
		return fn(prompt, temperature)
	}
	if err != nil {
		return "", err
	}
	return resp, nil
}

func (c *MockClient) CompleteJSON(ctx context.Context, prompt string, temperature float64, out any) error {
	c.mu.Lock()
	c.JSONCalls = append(c.JSONCalls, CompletionCall{Prompt: prompt, Temperature: temperature})
	fn, resp, err := c.JSONFunc, c.JSONResponse, c.JSONError
	c.mu.Unlock()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	raw := resp
	if fn != nil {
		var fnErr error
		raw, fnErr = fn(prompt, temperature)
		if fnErr != nil {
			return fnErr
		}
	} else if err != nil {
		return err
	}

	return decodeJSON(raw, out)
}

// Calls returns how many completions of either kind were made.
func (c *MockClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.CompleteCalls) + len(c.JSONCalls)
}

// Reset clears all recorded calls and scripted responses.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CompleteFunc = nil
	c.TextResponse = "mock completion"
	c.TextError = nil
	c.JSONFunc = nil
	c.JSONResponse = "{}"
	c.JSONError = nil
	c.CompleteCalls = nil
	c.JSONCalls = nil
}
