package llm

import (
	"context"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
	"golang.org/x/time/rate"
)

// Limiter throttles completion calls across the whole process so concurrent
// idea pipelines share one provider budget.
type Limiter struct {
	client  domain.CompletionClient
	limiter *rate.Limiter
}

// NewLimiter wraps client with a token bucket of rps requests per second and
// the given burst.
func NewLimiter(client domain.CompletionClient, rps float64, burst int) *Limiter {
	return &Limiter{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (l *Limiter) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return l.client.Complete(ctx, prompt, temperature)
}

func (l *Limiter) CompleteJSON(ctx context.Context, prompt string, temperature float64, out any) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	return l.client.CompleteJSON(ctx, prompt, temperature, out)
}
