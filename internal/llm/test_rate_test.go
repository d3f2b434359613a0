package llm

import (
	"context"
	"sync"
	"testing"
	"time"

	llmclient "lifestream/internal/llm/client"
	"lifestream/internal/tester"
)

// spy records timestamps when requests reach the inner client
type spyingClient struct {
	next  llmclient.ChatClient
	mu    sync.Mutex
	times []time.Time
}

func (s *spyingClient) Name() string { return s.next.Name() }
func (s *spyingClient) Close() error { return s.next.Close() }
func (s *spyingClient) Complete(ctx context.Context, msgs []llmclient.Message, temperature float64) (string, error) {
	s.mu.Lock()
	s.times = append(s.times, time.Now())
	s.mu.Unlock()
	return s.next.Complete(ctx, msgs, temperature)
}

func TestRate_RPS_2PerSecond_Burst1_Spacing(t *testing.T) {
	rec := &spyingClient{next: NewFakeClient()}
	cli := Wrap(rec, RateLimit(2, 1))
	t.Cleanup(func() { _ = cli.Close() })

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := cli.Complete(ctx, nil, 0); err != nil {
			t.Fatal(err)
		}
	}
	elapsed := time.Since(start)

	tester.True(t, elapsed >= 450*time.Millisecond, "expected throttling >=450ms, got %v", elapsed)
	tester.Eq(t, len(rec.times), 2, "two calls should reach inner client")
}

func TestRate_Burst2_FirstTwoImmediate(t *testing.T) {
	cli := RateLimit(2, 2)(NewFakeClient())
	t.Cleanup(func() { _ = cli.Close() })

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := cli.Complete(ctx, nil, 0); err != nil {
			t.Fatal(err)
		}
	}
	tester.True(t, time.Since(start) < 200*time.Millisecond, "burst calls should not wait")
}

func TestRate_DisabledWhenZero(t *testing.T) {
	cli := RateLimit(0, 0)(NewFakeClient())
	start := time.Now()
	for i := 0; i < 20; i++ {
		if _, err := cli.Complete(context.Background(), nil, 0); err != nil {
			t.Fatal(err)
		}
	}
	tester.True(t, time.Since(start) < 200*time.Millisecond, "disabled limiter should not wait")
	tester.NoErr(t, cli.Close())
}

func TestRate_ContextCanceledWhileWaiting(t *testing.T) {
	cli := RateLimit(0.5, 1)(NewFakeClient())
	t.Cleanup(func() { _ = cli.Close() })

	if _, err := cli.Complete(context.Background(), nil, 0); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := cli.Complete(ctx, nil, 0)
	tester.ErrIs(t, err, context.DeadlineExceeded)
}

func TestRate_CloseTwice(t *testing.T) {
	cli := RateLimit(5, 1)(NewFakeClient())
	tester.NoErr(t, cli.Close())
	tester.NoErr(t, cli.Close())
}
