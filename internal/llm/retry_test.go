package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
)

func newTestRetrier(client domain.CompletionClient) *Retrier {
	r := NewRetrier(client, nil)
	r.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return r
}

func TestRetrier_TransientThenSuccess(t *testing.T) {
	calls := 0
	mock := NewMockClient()
	mock.CompleteFunc = func(prompt string, temperature float64) (string, error) {
		calls++
		if calls < 3 {
			return "", domain.Transientf("rate limited")
		}
		return "ok", nil
	}

	r := newTestRetrier(mock)
	result, err := r.Complete(context.Background(), "prompt", 0.7)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if result != "ok" {
		t.Errorf("expected ok, got %q", result)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestRetrier_TransientExhausted(t *testing.T) {
	calls := 0
	mock := NewMockClient()
	mock.CompleteFunc = func(prompt string, temperature float64) (string, error) {
		calls++
		return "", domain.Transientf("still down")
	}

	r := newTestRetrier(mock)
	_, err := r.Complete(context.Background(), "prompt", 0.7)
	if !domain.IsTransient(err) {
		t.Fatalf("expected transient error after exhaustion, got %v", err)
	}
	if calls != DefaultMaxAttempts {
		t.Errorf("expected %d attempts, got %d", DefaultMaxAttempts, calls)
	}
}

func TestRetrier_PermanentNotRetried(t *testing.T) {
	calls := 0
	mock := NewMockClient()
	mock.CompleteFunc = func(prompt string, temperature float64) (string, error) {
		calls++
		return "", domain.Permanentf("bad prompt")
	}

	r := newTestRetrier(mock)
	_, err := r.Complete(context.Background(), "prompt", 0.7)
	if !domain.IsPermanent(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("permanent error should not be retried, got %d attempts", calls)
	}
}

func TestRetrier_DelayGrowsExponentially(t *testing.T) {
	r := newTestRetrier(NewMockClient())
	r.Jitter = 0

	d1 := r.delayFor(1)
	d2 := r.delayFor(2)
	d3 := r.delayFor(3)

	if d1 != time.Second {
		t.Errorf("expected base delay 1s, got %v", d1)
	}
	if d2 != 2*time.Second || d3 != 4*time.Second {
		t.Errorf("expected doubling delays, got %v %v", d2, d3)
	}
}

func TestRetrier_CancelledContext(t *testing.T) {
	mock := NewMockClient()
	mock.CompleteFunc = func(prompt string, temperature float64) (string, error) {
		return "", domain.Transientf("slow")
	}

	r := NewRetrier(mock, nil) // real sleep, cancelled before it elapses

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Complete(ctx, "prompt", 0.7)
	if !errors.Is(err, context.Canceled) && !domain.IsTransient(err) {
		t.Fatalf("expected cancellation or transient error, got %v", err)
	}
}

func TestRetrier_CompleteJSON(t *testing.T) {
	calls := 0
	mock := NewMockClient()
	mock.JSONFunc = func(prompt string, temperature float64) (string, error) {
		calls++
		if calls == 1 {
			return "", domain.Transientf("blip")
		}
		return `{"score": 7}`, nil
	}

	r := newTestRetrier(mock)
	var out struct {
		Score float64 `json:"score"`
	}
	if err := r.CompleteJSON(context.Background(), "prompt", 0.3, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Score != 7 {
		t.Errorf("expected score 7, got %v", out.Score)
	}
}

func TestDecodeJSON_StripsFences(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	if err := decodeJSON("```json\n{\"name\":\"x\"}\n```", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "x" {
		t.Errorf("expected x, got %q", out.Name)
	}
}

func TestDecodeJSON_MalformedIsPermanent(t *testing.T) {
	var out map[string]any
	err := decodeJSON("not json at all", &out)
	if !domain.IsPermanent(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}
