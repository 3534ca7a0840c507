package llm

import (
	"context"
	"math/rand"
	"time"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = time.Second
	DefaultBackoffFactor  = 2.0
	DefaultJitterFraction = 0.25
)

// Retrier wraps a CompletionClient with exponential backoff on transient
// errors. Permanent errors pass through untouched so the pipeline can reject
// the affected idea immediately.
type Retrier struct {
	Client      domain.CompletionClient
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
	Jitter      float64 // fraction of the delay randomized, 0..1

	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetrier wraps client with the default 3-attempt, 1s-base, factor-2
// backoff policy.
func NewRetrier(client domain.CompletionClient, logger *zap.Logger) *Retrier {
	return &Retrier{
		Client:      client,
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Factor:      DefaultBackoffFactor,
		Jitter:      DefaultJitterFraction,
		logger:      logger,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// delayFor computes the backoff before attempt n (1-based; no delay before
// the first attempt).
func (r *Retrier) delayFor(attempt int) time.Duration {
	d := float64(r.BaseDelay)
	for i := 1; i < attempt; i++ {
		d *= r.Factor
	}
	if r.Jitter > 0 {
		d += d * r.Jitter * (rand.Float64()*2 - 1)
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

func (r *Retrier) do(ctx context.Context, call func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		if attempt > 1 {
			if sleepErr := r.sleep(ctx, r.delayFor(attempt-1)); sleepErr != nil {
				return sleepErr
			}
		}

		err = call(ctx)
		if err == nil || !domain.IsTransient(err) {
			return err
		}

		if r.logger != nil {
			r.logger.Warn("transient completion failure",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", r.MaxAttempts),
				zap.Error(err))
		}
	}
	return err
}

func (r *Retrier) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	var result string
	err := r.do(ctx, func(ctx context.Context) error {
		var callErr error
		result, callErr = r.Client.Complete(ctx, prompt, temperature)
		return callErr
	})
	return result, err
}

func (r *Retrier) CompleteJSON(ctx context.Context, prompt string, temperature float64, out any) error {
	return r.do(ctx, func(ctx context.Context) error {
		return r.Client.CompleteJSON(ctx, prompt, temperature, out)
	})
}
