package shutdown

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agentscope-go/shutdown/session"
	"github.com/agentscope-go/shutdown/telemetry"
)

// LifecycleController is the process-wide singleton tracking all active
// agent executions and owning the shutdown state machine (spec.md §4.1). It
// is exposed through an explicit accessor (Default) rather than hidden
// static access from business code, per spec.md §9's design note.
type LifecycleController struct {
	mu     sync.RWMutex
	active map[string]*RequestContext

	state atomic.Int32 // LifecycleState

	drainOnce sync.Once
	drainCh   chan struct{}
	drainMu   sync.Mutex // guards drainCh creation/close pairing

	logger  telemetry.Logger
	metrics telemetry.Metrics
	tracer  telemetry.Tracer
}

// New constructs a LifecycleController in StateRunning. Most callers should
// use Default() instead; New is exposed for tests and for processes that
// intentionally run more than one controller (e.g. in-process multi-tenant
// hosting). tracer is variadic so existing two-argument call sites keep
// compiling; it defaults to telemetry.NopTracer{} when omitted.
func New(logger telemetry.Logger, metrics telemetry.Metrics, tracer ...telemetry.Tracer) *LifecycleController {
	if logger == nil {
		logger = telemetry.NopLogger{}
	}
	if metrics == nil {
		metrics = telemetry.NopMetrics{}
	}
	var t telemetry.Tracer = telemetry.NopTracer{}
	if len(tracer) > 0 && tracer[0] != nil {
		t = tracer[0]
	}
	c := &LifecycleController{
		active:  make(map[string]*RequestContext),
		logger:  logger,
		metrics: metrics,
		tracer:  t,
	}
	c.state.Store(int32(StateRunning))
	return c
}

var (
	defaultOnce sync.Once
	defaultCtrl *LifecycleController
)

// Default returns the process-wide singleton controller, constructing it on
// first use with no-op telemetry. Call SetDefault during startup if real
// telemetry should be wired in before any component reaches for Default.
func Default() *LifecycleController {
	defaultOnce.Do(func() {
		if defaultCtrl == nil {
			defaultCtrl = New(nil, nil)
		}
	})
	return defaultCtrl
}

// SetDefault installs c as the process-wide singleton. It must be called
// before any component calls Default, typically once at startup. It exists
// so that real telemetry can be wired into the singleton without making
// every call site thread a controller reference through the whole program.
func SetDefault(c *LifecycleController) {
	defaultOnce.Do(func() {})
	defaultCtrl = c
}

// ResetForTest restores c to a fresh StateRunning state with an empty active
// table. It exists only for tests; production code must never call it.
func (c *LifecycleController) ResetForTest() {
	c.mu.Lock()
	c.active = make(map[string]*RequestContext)
	c.mu.Unlock()
	c.state.Store(int32(StateRunning))
	c.drainMu.Lock()
	c.drainCh = nil
	c.drainMu.Unlock()
	c.drainOnce = sync.Once{}
}

// Register inserts a RequestContext into the active table. It fails with
// ErrNotAccepting if the controller is not StateRunning. If sessionID is
// already registered, the previous context is replaced (logged as a
// warning) — see spec.md §9's Open Question on re-registration semantics,
// resolved in DESIGN.md to preserve overwrite for behavioral parity with the
// source material rather than reject with a conflict error.
func (c *LifecycleController) Register(ctx context.Context, sessionID string, agent AgentHandle, store session.Store) (*RequestContext, error) {
	if !c.IsAccepting() {
		return nil, ErrNotAccepting
	}

	rc := NewRequestContext(sessionID, agent, store, c.logger)

	c.mu.Lock()
	_, existed := c.active[sessionID]
	c.active[sessionID] = rc
	count := len(c.active)
	c.mu.Unlock()

	if existed {
		c.logger.Warn(ctx, "request already registered for session, overwriting", telemetry.KV{K: "sessionId", V: sessionID})
	}
	c.logger.Debug(ctx, "registered request", telemetry.KV{K: "sessionId", V: sessionID}, telemetry.KV{K: "activeCount", V: count})
	c.metrics.IncCounter(ctx, "shutdown.registered", 1)
	c.metrics.RecordGauge(ctx, "shutdown.active_count", float64(count))
	return rc, nil
}

// Unregister removes sessionID from the active table. If the controller is
// StateDraining and the table becomes empty, the drain waiter is signaled.
// Unregistering an absent key is a no-op (spec.md §4.7, Scenario E).
func (c *LifecycleController) Unregister(ctx context.Context, sessionID string) {
	c.mu.Lock()
	_, existed := c.active[sessionID]
	delete(c.active, sessionID)
	empty := len(c.active) == 0
	count := len(c.active)
	c.mu.Unlock()

	if !existed {
		return
	}

	c.logger.Debug(ctx, "unregistered request", telemetry.KV{K: "sessionId", V: sessionID}, telemetry.KV{K: "activeCount", V: count})
	c.metrics.IncCounter(ctx, "shutdown.unregistered", 1)
	c.metrics.RecordGauge(ctx, "shutdown.active_count", float64(count))

	if LifecycleState(c.state.Load()) == StateDraining && empty {
		c.signalDrainComplete()
	}
}

// IsAccepting reports whether the controller is StateRunning.
func (c *LifecycleController) IsAccepting() bool {
	return LifecycleState(c.state.Load()) == StateRunning
}

// CurrentState returns the controller's current lifecycle state.
func (c *LifecycleController) CurrentState() LifecycleState {
	return LifecycleState(c.state.Load())
}

// ActiveCount returns the number of currently registered executions.
func (c *LifecycleController) ActiveCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.active)
}

// FindByAgent performs a linear identity scan for the RequestContext holding
// agent, for edge-case reverse lookup (spec.md §4.1). Returns nil if none
// match.
func (c *LifecycleController) FindByAgent(agent AgentHandle) *RequestContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, rc := range c.active {
		if rc.Agent == agent {
			return rc
		}
	}
	return nil
}

// InitiateDrain transitions RUNNING -> DRAINING. It is idempotent: calls
// after the first have no effect. It arms the single-shot drain waiter.
func (c *LifecycleController) InitiateDrain(ctx context.Context) {
	c.drainOnce.Do(func() {
		if !c.state.CompareAndSwap(int32(StateRunning), int32(StateDraining)) {
			return
		}
		c.drainMu.Lock()
		c.drainCh = make(chan struct{})
		c.drainMu.Unlock()
		c.logger.Info(ctx, "shutdown initiated", telemetry.KV{K: "activeCount", V: c.ActiveCount()})
	})
}

func (c *LifecycleController) signalDrainComplete() {
	c.drainMu.Lock()
	ch := c.drainCh
	c.drainMu.Unlock()
	if ch == nil {
		return
	}
	select {
	case <-ch:
		// already closed
	default:
		close(ch)
	}
}

// AwaitDrain must be called only after InitiateDrain. It blocks until either
// the active table empties (returns true, transitions to StateTerminated)
// or deadline elapses (returns false, force-checkpoints all remaining
// contexts, then transitions to StateTerminated).
func (c *LifecycleController) AwaitDrain(ctx context.Context, deadline time.Duration) bool {
	ctx, span := c.tracer.Start(ctx, "shutdown.await_drain")
	defer span.End()

	if LifecycleState(c.state.Load()) != StateDraining {
		c.logger.Warn(ctx, "awaitDrain called but not draining")
		return true
	}

	if c.ActiveCount() == 0 {
		c.state.Store(int32(StateTerminated))
		c.logger.Info(ctx, "no active requests, shutdown complete")
		return true
	}

	c.drainMu.Lock()
	ch := c.drainCh
	c.drainMu.Unlock()

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case <-ch:
		if c.ActiveCount() == 0 {
			c.state.Store(int32(StateTerminated))
			c.logger.Info(ctx, "all requests completed normally")
			return true
		}
	case <-timer.C:
	}

	c.logger.Warn(ctx, "drain deadline reached, force-checkpointing remaining requests", telemetry.KV{K: "activeCount", V: c.ActiveCount()})
	c.forceCheckpointAll(ctx)
	c.state.Store(int32(StateTerminated))
	return false
}

// forceCheckpointAll iterates a snapshot of the active table and invokes
// InterruptAndSave on each context. Per-context errors are already caught
// and logged inside InterruptAndSave; one failing context must not prevent
// the others from being processed.
func (c *LifecycleController) forceCheckpointAll(ctx context.Context) {
	c.mu.Lock()
	snapshot := make([]*RequestContext, 0, len(c.active))
	for _, rc := range c.active {
		snapshot = append(snapshot, rc)
	}
	c.active = make(map[string]*RequestContext)
	c.mu.Unlock()

	for _, rc := range snapshot {
		rc.InterruptAndSave(ctx)
	}
}
