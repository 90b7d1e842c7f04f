package shutdown_test

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agentscope-go/shutdown/shutdown"
	"github.com/agentscope-go/shutdown/session/inmem"
)

// TestInterruptAndSaveIsIdempotentForAnyCallCount is spec.md §8 property 8:
// interruptAndSave() called N times is equivalent to once.
func TestInterruptAndSaveIsIdempotentForAnyCallCount(t *testing.T) {
	params := gopter.DefaultTestParameters()
	props := gopter.NewProperties(params)

	props.Property("N calls to InterruptAndSave serialize at most once", prop.ForAll(
		func(n int) bool {
			ctrl := shutdown.New(nil, nil)
			store := inmem.New()
			agent := &fakeAgent{}
			rc, err := ctrl.Register(context.Background(), "sess", agent, store)
			if err != nil {
				return false
			}
			for i := 0; i < n; i++ {
				rc.InterruptAndSave(context.Background())
			}
			agent.mu.Lock()
			defer agent.mu.Unlock()
			return agent.serialized <= 1
		},
		gen.IntRange(0, 20),
	))

	props.TestingRun(t)
}

// TestInitiateDrainIsIdempotentForAnyCallCount is spec.md §8 property 9.
func TestInitiateDrainIsIdempotentForAnyCallCount(t *testing.T) {
	params := gopter.DefaultTestParameters()
	props := gopter.NewProperties(params)

	props.Property("N calls to InitiateDrain behave like one", prop.ForAll(
		func(n int) bool {
			ctrl := shutdown.New(nil, nil)
			for i := 0; i < n; i++ {
				ctrl.InitiateDrain(context.Background())
			}
			return ctrl.CurrentState() == shutdown.StateDraining
		},
		gen.IntRange(1, 20),
	))

	props.TestingRun(t)
}

// TestRegisterAtMostOnceBeforeDrain is spec.md §8 property 1, restricted to
// the controller's own guarantee: registering the same session repeatedly
// while RUNNING never grows the active table past one entry for that key.
func TestRegisterAtMostOnceBeforeDrain(t *testing.T) {
	params := gopter.DefaultTestParameters()
	props := gopter.NewProperties(params)

	props.Property("repeated register for one sessionId keeps active count at 1", prop.ForAll(
		func(n int) bool {
			ctrl := shutdown.New(nil, nil)
			store := inmem.New()
			for i := 0; i < n; i++ {
				if _, err := ctrl.Register(context.Background(), "sess", &fakeAgent{}, store); err != nil {
					return false
				}
			}
			return ctrl.ActiveCount() == 1
		},
		gen.IntRange(1, 10),
	))

	props.TestingRun(t)
}
