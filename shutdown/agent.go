package shutdown

import (
	"context"

	"github.com/agentscope-go/shutdown/session"
)

// AgentHandle is the consumed contract the core holds against whatever
// reasoning loop it is coordinating (spec.md §6). The core never calls into
// the agent's reasoning or tool-execution logic directly; it only asks the
// agent to interrupt itself and to serialize/restore its state.
type AgentHandle interface {
	// Interrupt is asynchronous and cooperative: it sets an internal flag the
	// agent polls at its own safe points. It never blocks and never panics.
	Interrupt()

	// SerializeTo takes a synchronous snapshot of the agent's memory and
	// reasoning state into store under key. Implementations should be
	// idempotent; the core may call this more than once for the same key.
	SerializeTo(ctx context.Context, store session.Store, key string) error
}
