package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	llmclient "lifestream/internal/llm/client"
)

// Call is one request seen by FakeClient.
type Call struct {
	Phase       string
	Messages    []llmclient.Message
	Temperature float64
}

// FakeClient returns deterministic Markdown per phase for tests.
// Responses can be scripted per phase; Err, when set, fails every call.
type FakeClient struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string]string
	Err       error
}

func NewFakeClient() *FakeClient {
	return &FakeClient{responses: map[string]string{}}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// Respond scripts the reply for one phase.
func (f *FakeClient) Respond(phase, text string) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[phase] = text
	return f
}

func (f *FakeClient) Complete(ctx context.Context, msgs []llmclient.Message, temperature float64) (string, error) {
	phase := PhaseFrom(ctx)
	f.mu.Lock()
	f.calls = append(f.calls, Call{Phase: phase, Messages: append([]llmclient.Message(nil), msgs...), Temperature: temperature})
	n := len(f.calls)
	text, scripted := f.responses[phase]
	err := f.Err
	f.mu.Unlock()

	if err != nil {
		return "", err
	}
	if scripted {
		return text, nil
	}
	switch phase {
	case PhaseMap, PhaseMerge:
		return fmt.Sprintf("- fake bullet %d", n), nil
	case PhaseCues:
		return "## Cues\n### Keywords\n- fake\n\n### Next Actions (Executable)\n- [ ] fake action", nil
	default:
		return "## Cues\n### Keywords\n- fake\n\n### Next Actions (Executable)\n- [ ] fake action\n\n## Executive Summary\nfake report " + fmt.Sprint(n), nil
	}
}

// Calls returns a copy of every request seen so far.
func (f *FakeClient) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsIn counts requests made in one phase.
func (f *FakeClient) CallsIn(phase string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Phase == phase {
			n++
		}
	}
	return n
}

// Phases lists the phase of every call in order, joined by commas.
func (f *FakeClient) Phases() string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Phase
	}
	return strings.Join(out, ",")
}
