package llm

import (
	"context"
	"errors"
	"log"
	"time"

	llmclient "lifestream/internal/llm/client"
)

// Retry resubmits a call up to maxAttempts times with exponential backoff
// starting at baseDelay. Only transient upstream errors are retried.
func Retry(maxAttempts int, baseDelay time.Duration, logger *log.Logger) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	if logger == nil {
		logger = log.Default()
	}
	return func(next llmclient.ChatClient) llmclient.ChatClient {
		if maxAttempts == 1 {
			return next
		}
		return &retrying{next: next, max: maxAttempts, base: baseDelay, logger: logger}
	}
}

type retrying struct {
	next   llmclient.ChatClient
	max    int
	base   time.Duration
	logger *log.Logger
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) Complete(ctx context.Context, msgs []llmclient.Message, temperature float64) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := r.next.Complete(ctx, msgs, temperature)
		if err == nil {
			return out, nil
		}
		last = err
		if !retryable(err) || i == r.max-1 {
			break
		}
		delay := r.base * time.Duration(1<<i)
		r.logger.Printf("llm %s phase=%s attempt %d/%d failed, retrying in %s: %v", r.next.Name(), PhaseFrom(ctx), i+1, r.max, delay, err)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	}
	return "", last
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var ue *llmclient.UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	return ue.Temporary()
}
