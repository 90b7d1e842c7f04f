package hooks

import (
	"context"
	"sort"

	"github.com/agentscope-go/shutdown/telemetry"
)

// Hook is the capability a per-execution observer exposes: {onEvent,
// priority, complete} (spec.md §4.3). Lower Priority values run first.
type Hook interface {
	Priority() int
	OnEvent(ctx context.Context, event Event) error
	Complete(ctx context.Context) error
}

// Chain dispatches events to a priority-ordered list of hooks, modeled on
// the fan-out loop in runtime/agent/hooks/bus.go, generalized with priority
// ordering and abort-gating: once a hook marks the event aborted, later
// hooks in the chain do not run, since an abort decision must gate any
// hooks with irreversible side effects (spec.md §4.3 "Ordering and
// priority").
type Chain struct {
	hooks  []Hook
	tracer telemetry.Tracer
}

// NewChain builds a Chain from hooks, sorted by ascending Priority. The
// chain traces through telemetry.NopTracer{} until WithTracer installs a
// real one.
func NewChain(hooks ...Hook) *Chain {
	sorted := make([]Hook, len(hooks))
	copy(sorted, hooks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority() < sorted[j].Priority() })
	return &Chain{hooks: sorted, tracer: telemetry.NopTracer{}}
}

// WithTracer installs tracer for spans around Dispatch/Complete and returns
// the chain, so callers can write hooks.NewChain(h...).WithTracer(t). A nil
// tracer is ignored.
func (c *Chain) WithTracer(tracer telemetry.Tracer) *Chain {
	if tracer != nil {
		c.tracer = tracer
	}
	return c
}

// Dispatch delivers event to each hook in priority order, inside a single
// span covering this execution's hook handling for the event. A hook
// returning an error stops the chain and propagates to the agent as any
// other hook failure (spec.md §4.7 "Hook event delivery errors"); the agent
// decides how to react, this chain does not abort the event on the hook's
// behalf.
func (c *Chain) Dispatch(ctx context.Context, event Event) error {
	ctx, span := c.tracer.Start(ctx, "hooks.dispatch")
	defer span.End()

	for _, h := range c.hooks {
		if err := h.OnEvent(ctx, event); err != nil {
			span.RecordError(err)
			return err
		}
		if event.IsAborted() {
			return nil
		}
	}
	return nil
}

// Complete calls Complete on every hook in the chain, inside a single span,
// continuing past per-hook errors the way
// LifecycleController.forceCheckpointAll does not let one failing context
// stop the others. The first error encountered, if any, is returned after
// every hook has had a chance to run.
func (c *Chain) Complete(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "hooks.complete")
	defer span.End()

	var first error
	for _, h := range c.hooks {
		if err := h.Complete(ctx); err != nil {
			if first == nil {
				first = err
			}
			span.RecordError(err)
		}
	}
	return first
}
