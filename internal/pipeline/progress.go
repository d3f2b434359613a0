package pipeline

import "context"

// Stages reported through an Observer.
const (
	StagePlan   = "plan"
	StageMap    = "map"
	StageMerge  = "merge"
	StageReduce = "reduce"
	StageDirect = "direct"
)

// Event describes one step of a generation run. Index is 1-based within Total.
type Event struct {
	Stage string `json:"stage"`
	Label string `json:"label,omitempty"`
	Index int    `json:"index"`
	Total int    `json:"total"`
	Path  string `json:"path,omitempty"`
}

// Observer receives progress events. With a map concurrency above one it is
// called from several goroutines.
type Observer func(Event)

type ctxKeyObserver struct{}

// WithObserver attaches an Observer to ctx.
func WithObserver(ctx context.Context, obs Observer) context.Context {
	return context.WithValue(ctx, ctxKeyObserver{}, obs)
}

func emit(ctx context.Context, ev Event) {
	if obs, ok := ctx.Value(ctxKeyObserver{}).(Observer); ok && obs != nil {
		obs(ev)
	}
}
