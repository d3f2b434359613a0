package llm

import (
	"context"
	"errors"
	"log"
	"time"

	llmclient "lifestream/internal/llm/client"
)

// Middleware decorates a ChatClient to inject cross-cutting concerns
// (rate limiting, logging, hooks, timeouts).
type Middleware func(llmclient.ChatClient) llmclient.ChatClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner llmclient.ChatClient, mws ...Middleware) llmclient.ChatClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate Limiting --------

// RateLimit limits request rate using rpsLimiter.
// If rps <= 0, the limiter is disabled.
func RateLimit(rps float64, burst int) Middleware {
	return func(next llmclient.ChatClient) llmclient.ChatClient {
		return &rateLimited{next: next, rl: newRPSLimiter(rps, burst)}
	}
}

type rateLimited struct {
	next llmclient.ChatClient
	rl   *rpsLimiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error {
	c.rl.Stop()
	return c.next.Close()
}
func (c *rateLimited) Complete(ctx context.Context, msgs []llmclient.Message, temperature float64) (string, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return "", err
	}
	return c.next.Complete(ctx, msgs, temperature)
}

// -------- Timeout --------

// WithTimeout bounds each call. Expiry surfaces as an UpstreamError of kind
// timeout when the inner client did not already classify it.
func WithTimeout(d time.Duration) Middleware {
	return func(next llmclient.ChatClient) llmclient.ChatClient {
		if d <= 0 {
			return next
		}
		return &timed{next: next, d: d}
	}
}

type timed struct {
	next llmclient.ChatClient
	d    time.Duration
}

func (c *timed) Name() string { return c.next.Name() }
func (c *timed) Close() error { return c.next.Close() }
func (c *timed) Complete(ctx context.Context, msgs []llmclient.Message, temperature float64) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, c.d)
	defer cancel()
	out, err := c.next.Complete(cctx, msgs, temperature)
	if err != nil && !llmclient.IsUpstream(err) && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return "", &llmclient.UpstreamError{Backend: c.next.Name(), Kind: llmclient.KindTimeout, Err: err}
	}
	return out, err
}

// -------- Logging & Hooks --------

// WithLogging logs request size and errors. Provide a custom logger or nil
// to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next llmclient.ChatClient) llmclient.ChatClient {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next llmclient.ChatClient
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) Complete(ctx context.Context, msgs []llmclient.Message, temperature float64) (string, error) {
	l.log.Printf("LLM request (%s): %d chars via %s", PhaseFrom(ctx), llmclient.PromptChars(msgs), l.next.Name())
	out, err := l.next.Complete(ctx, msgs, temperature)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", PhaseFrom(ctx), err)
	}
	return out, err
}

// WithHooks calls HookFrom(ctx).Before/After around Complete.
// If no hook is present in the context, it is a no-op.
func WithHooks() Middleware {
	return func(next llmclient.ChatClient) llmclient.ChatClient {
		return &hooked{next: next}
	}
}

type hooked struct{ next llmclient.ChatClient }

func (h *hooked) Name() string { return h.next.Name() }
func (h *hooked) Close() error { return h.next.Close() }
func (h *hooked) Complete(ctx context.Context, msgs []llmclient.Message, temperature float64) (string, error) {
	hook := HookFrom(ctx)
	if hook != nil {
		hook.Before(ctx, PhaseFrom(ctx), msgs)
	}
	out, err := h.next.Complete(ctx, msgs, temperature)
	if hook != nil {
		hook.After(ctx, PhaseFrom(ctx), out, err)
	}
	return out, err
}
