package shutdown

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/agentscope-go/shutdown/telemetry"
)

// DefaultDrainDeadline is the single tuning knob spec.md §4.4 names: how long
// AwaitDrain waits before force-checkpointing whatever is left.
const DefaultDrainDeadline = 30 * time.Second

// WaitForSignal blocks until ctx is cancelled or one of sigs arrives on the
// process, then runs the controller's drain sequence: log the pre-drain
// activeCount, initiateDrain, then awaitDrain(deadline). It returns once
// the controller has reached StateTerminated, so the caller can safely
// finish shutting down the rest of the process (example/cmd/assistant/
// main.go's signal-channel pattern, generalized into a reusable hook instead
// of being inlined in main).
//
// If deadline is zero, DefaultDrainDeadline is used.
func (c *LifecycleController) WaitForSignal(ctx context.Context, deadline time.Duration, sigs ...os.Signal) bool {
	if deadline <= 0 {
		deadline = DefaultDrainDeadline
	}
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt}
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, sigs...)
	defer signal.Stop(sigc)

	select {
	case sig := <-sigc:
		c.logger.Info(ctx, "shutdown signal received", telemetry.KV{K: "signal", V: sig.String()}, telemetry.KV{K: "activeCount", V: c.ActiveCount()})
	case <-ctx.Done():
		c.logger.Info(ctx, "shutdown context cancelled", telemetry.KV{K: "activeCount", V: c.ActiveCount()})
	}

	c.InitiateDrain(ctx)
	return c.AwaitDrain(ctx, deadline)
}
