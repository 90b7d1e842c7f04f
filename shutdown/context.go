package shutdown

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/agentscope-go/shutdown/session"
	"github.com/agentscope-go/shutdown/telemetry"
)

// RequestContext links a session key to the agent handling it and the store
// it checkpoints into. One is created per registered execution and
// discarded on unregister or force-checkpoint (spec.md §3).
type RequestContext struct {
	SessionID string
	Agent     AgentHandle
	Store     session.Store
	StartTime time.Time

	// interrupted is set exactly once, via CAS, making InterruptAndSave
	// idempotent without the check-then-set race the source material has.
	interrupted atomic.Bool

	logger telemetry.Logger
}

// NewRequestContext constructs a RequestContext for a freshly registered
// execution. logger may be nil, in which case a no-op logger is used.
func NewRequestContext(sessionID string, agent AgentHandle, store session.Store, logger telemetry.Logger) *RequestContext {
	if logger == nil {
		logger = telemetry.NopLogger{}
	}
	return &RequestContext{
		SessionID: sessionID,
		Agent:     agent,
		Store:     store,
		StartTime: time.Now(),
		logger:    logger,
	}
}

// InterruptAndSave is idempotent: only the first caller performs work. It
// sends a best-effort cooperative interrupt to the agent, then asks the
// agent to serialize its state. Both the interrupt and the serialization
// swallow their own errors (logged, not propagated) per spec.md §4.2/§4.7 —
// the caller's correctness must not depend on either succeeding.
func (c *RequestContext) InterruptAndSave(ctx context.Context) {
	if !c.interrupted.CompareAndSwap(false, true) {
		return
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error(ctx, "agent interrupt panicked", telemetry.KV{K: "sessionId", V: c.SessionID}, telemetry.KV{K: "panic", V: r})
			}
		}()
		c.Agent.Interrupt()
	}()

	if err := c.Agent.SerializeTo(ctx, c.Store, c.SessionID); err != nil {
		c.logger.Error(ctx, "failed to serialize agent state on interrupt", telemetry.KV{K: "sessionId", V: c.SessionID}, telemetry.KV{K: "error", V: err})
	}
}
