package llm

import (
	"context"

	llmclient "lifestream/internal/llm/client"
)

// Phases of one generation run, recorded in the context of every LLM call.
const (
	PhaseDirect = "direct"
	PhaseMap    = "map"
	PhaseMerge  = "merge"
	PhaseReduce = "reduce"
	PhaseCues   = "cues"
)

type PromptHook interface {
	Before(ctx context.Context, phase string, msgs []llmclient.Message)
	After(ctx context.Context, phase string, out string, err error)
}

type ctxKeyHook struct{}
type ctxKeyPhase struct{}

// WithHook attaches a PromptHook to ctx; the WithHooks middleware reads it.
func WithHook(ctx context.Context, hook PromptHook) context.Context {
	return context.WithValue(ctx, ctxKeyHook{}, hook)
}

func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// HookFrom returns the hook stored in the context.
func HookFrom(ctx context.Context) PromptHook {
	if v := ctx.Value(ctxKeyHook{}); v != nil {
		if h, ok := v.(PromptHook); ok {
			return h
		}
	}
	return nil
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPhase{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}
