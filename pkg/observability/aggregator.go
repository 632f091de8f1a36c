package observability

import (
	"context"

	"github.com/aretw0/turing/pkg/domain"
)

// Aggregator combines multiple hook sets into a single view.
// Observers are invoked in registration order.
type Aggregator struct {
	hooks []domain.LifecycleHooks
}

// NewAggregator creates a new aggregator.
func NewAggregator(hooks ...domain.LifecycleHooks) *Aggregator {
	return &Aggregator{
		hooks: append([]domain.LifecycleHooks(nil), hooks...),
	}
}

// Add registers another observer.
func (a *Aggregator) Add(h domain.LifecycleHooks) {
	a.hooks = append(a.hooks, h)
}

// Hooks returns a single hook set that fans out to every registered observer.
func (a *Aggregator) Hooks() domain.LifecycleHooks {
	hooks := append([]domain.LifecycleHooks(nil), a.hooks...)
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.EventBase) {
			for _, h := range hooks {
				if h.OnRunStart != nil {
					h.OnRunStart(ctx, e)
				}
			}
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			for _, h := range hooks {
				if h.OnStep != nil {
					h.OnStep(ctx, e)
				}
			}
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			for _, h := range hooks {
				if h.OnHalt != nil {
					h.OnHalt(ctx, e)
				}
			}
		},
	}
}
