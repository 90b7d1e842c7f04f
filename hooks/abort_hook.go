package hooks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/agentscope-go/shutdown/shutdown"
	"github.com/agentscope-go/shutdown/session"
	"github.com/agentscope-go/shutdown/telemetry"
)

// ResumeMessageTemplate is the exact wording spec.md §4.3 prescribes for the
// synthetic system message injected on resume. It intentionally differs
// from the source material's Java wording (which adds "IMPORTANT:" and "You
// have already made progress."); spec.md is authoritative where it is not
// silent.
const ResumeMessageTemplate = "Your previous execution was interrupted at %s due to: %s. Review your conversation history and continue from where you left off. Do not restart from the beginning."

// AgentAbortHook is the per-execution hook described in spec.md §4.3. It
// registers the execution with the LifecycleController on the first
// PreReasoning event, injects a resume prompt if an InterruptedMarker is
// present, and aborts with checkpoint once the controller stops accepting
// work. It is grounded on
// io.agentscope.core.shutdown.GracefulShutdownHook in original_source/, with
// the registered/resumed flags replaced by atomics for race-free
// idempotence instead of the source's plain volatile booleans.
type AgentAbortHook struct {
	store      session.Store
	sessionKey string
	controller *shutdown.LifecycleController
	logger     telemetry.Logger

	registerOnce sync.Once
	registerErr  error
	registered   atomic.Bool
	resumed      atomic.Bool
	completed    atomic.Bool

	mu              sync.Mutex
	registeredAgent shutdown.AgentHandle
	requestCtx      *shutdown.RequestContext
}

// NewAgentAbortHook constructs a hook for one execution against sessionKey.
func NewAgentAbortHook(store session.Store, sessionKey string, controller *shutdown.LifecycleController, logger telemetry.Logger) *AgentAbortHook {
	if logger == nil {
		logger = telemetry.NopLogger{}
	}
	return &AgentAbortHook{store: store, sessionKey: sessionKey, controller: controller, logger: logger}
}

// Priority implements Hook. 0 is the lowest numeric value, so this hook
// runs before any other hook registered on the same agent (spec.md §4.3
// "Ordering and priority").
func (h *AgentAbortHook) Priority() int { return 0 }

// OnEvent implements Hook, following spec.md §4.3's algorithm exactly.
func (h *AgentAbortHook) OnEvent(ctx context.Context, event Event) error {
	if event.Kind() == KindPreReasoning {
		// A failure here (NotAccepting) must short-circuit: the execution
		// never started, so no marker is written (spec.md §8 Scenario F).
		if err := h.ensureRegistered(ctx, event.Agent()); err != nil {
			return err
		}

		if !h.resumed.Load() {
			if err := h.handleResumeIfNeeded(ctx, event.(*PreReasoningEvent)); err != nil {
				h.logger.Error(ctx, "failed to handle resume", telemetry.KV{K: "sessionKey", V: h.sessionKey}, telemetry.KV{K: "error", V: err})
			}
		}
	}

	if !h.controller.IsAccepting() {
		switch event.Kind() {
		case KindPreReasoning, KindPreActing:
			h.handleShutdown(ctx, event)
		}
	}

	return nil
}

func (h *AgentAbortHook) ensureRegistered(ctx context.Context, agent shutdown.AgentHandle) error {
	h.registerOnce.Do(func() {
		h.mu.Lock()
		h.registeredAgent = agent
		h.mu.Unlock()

		rc, err := h.controller.Register(ctx, h.sessionKey, agent, h.store)
		if err != nil {
			h.registerErr = err
			return
		}
		h.mu.Lock()
		h.requestCtx = rc
		h.mu.Unlock()
		h.registered.Store(true)
	})
	return h.registerErr
}

func (h *AgentAbortHook) handleResumeIfNeeded(ctx context.Context, event *PreReasoningEvent) error {
	raw, err := h.store.Get(ctx, h.sessionKey, shutdown.InterruptedMarkerField)
	if err != nil {
		if err == session.ErrNotFound {
			return nil
		}
		return err
	}

	marker, err := shutdown.UnmarshalInterruptedMarker(raw)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(ResumeMessageTemplate, marker.InterruptedAt, marker.Reason)
	event.AppendMessage(SystemMessage(text))

	if err := h.store.Delete(ctx, h.sessionKey, shutdown.InterruptedMarkerField); err != nil {
		h.logger.Error(ctx, "failed to delete interrupted marker after resume", telemetry.KV{K: "sessionKey", V: h.sessionKey}, telemetry.KV{K: "error", V: err})
	}
	h.resumed.Store(true)
	return nil
}

func (h *AgentAbortHook) handleShutdown(ctx context.Context, event Event) {
	reason := shutdown.PublicErrorShuttingDown
	marker := shutdown.NewInterruptedMarker(reason)
	data, err := marker.Marshal()
	if err != nil {
		h.logger.Error(ctx, "failed to marshal interrupted marker", telemetry.KV{K: "sessionKey", V: h.sessionKey}, telemetry.KV{K: "error", V: err})
	} else if err := h.store.Save(ctx, h.sessionKey, shutdown.InterruptedMarkerField, data); err != nil {
		h.logger.Error(ctx, "failed to save interrupted marker", telemetry.KV{K: "sessionKey", V: h.sessionKey}, telemetry.KV{K: "error", V: err})
	}

	event.Abort(reason, h.store, h.sessionKey)
}

// Complete implements Hook. It is idempotent: only the first call deletes
// the marker, serializes the agent and unregisters; later calls return nil
// without doing anything. Callers must not call Complete after an abort —
// the abort path has already persisted the marker and state (spec.md §4.3
// "Completion contract").
func (h *AgentAbortHook) Complete(ctx context.Context) error {
	if !h.completed.CompareAndSwap(false, true) {
		return nil
	}

	if err := h.store.Delete(ctx, h.sessionKey, shutdown.InterruptedMarkerField); err != nil {
		h.logger.Error(ctx, "failed to delete interrupted marker on complete", telemetry.KV{K: "sessionKey", V: h.sessionKey}, telemetry.KV{K: "error", V: err})
	}

	h.mu.Lock()
	agent := h.registeredAgent
	h.mu.Unlock()

	if agent != nil {
		if err := agent.SerializeTo(ctx, h.store, h.sessionKey); err != nil {
			h.logger.Error(ctx, "failed to serialize agent state on complete", telemetry.KV{K: "sessionKey", V: h.sessionKey}, telemetry.KV{K: "error", V: err})
		}
	}

	if h.registered.CompareAndSwap(true, false) {
		h.controller.Unregister(ctx, h.sessionKey)
	}

	return nil
}
