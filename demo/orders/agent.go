package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentscope-go/shutdown/shutdown"
	"github.com/agentscope-go/shutdown/hooks"
	"github.com/agentscope-go/shutdown/session"
	"github.com/agentscope-go/shutdown/telemetry"
)

// sysPrompt mirrors OrderService.java's SYS_PROMPT: the four steps always
// run in this exact sequence.
const sysPrompt = `You are an order processing assistant. Your job is to process customer orders by:
1. First, validate the order using the validate_order tool
2. Then, check inventory for each product using the check_inventory tool
3. Next, process the payment using the process_payment tool
4. Finally, send a confirmation notification using the send_notification tool

Always process orders in this exact sequence. If any step fails, stop and report the error.`

// StepEvent is one unit of progress an Agent run reports to its caller,
// mirroring the step/content distinction in OrderResponse.processing.
type StepEvent struct {
	Step    string
	Content string
}

// Agent drives the four order-processing tool steps through a hook chain,
// implementing shutdown.AgentHandle so the coordination core can interrupt
// and checkpoint it. It is grounded on OrderService.java's ReActAgent
// wiring, with the ReAct planner loop replaced by the fixed step sequence
// the system prompt already commits to.
type Agent struct {
	sessionKey string
	store      session.Store
	logger     telemetry.Logger
	now        func() time.Time
	reasoner   Reasoner

	mu        sync.Mutex
	memory    *Memory
	steps     []ToolStep
	cancel    context.CancelFunc
	cancelled bool
}

// NewAgent constructs an Agent for order, loading any previously persisted
// Memory from store under sessionKey (OrderService.java's
// agent.loadIfExists). reasoner may be nil, in which case the deterministic
// offline fallback is used.
func NewAgent(ctx context.Context, sessionKey string, order Order, store session.Store, logger telemetry.Logger, now func() time.Time, reasoner Reasoner) (*Agent, error) {
	if logger == nil {
		logger = telemetry.NopLogger{}
	}
	if now == nil {
		now = time.Now
	}
	if reasoner == nil {
		reasoner = offlineReasoner{}
	}

	memory := &Memory{Order: order}
	if raw, err := store.Get(ctx, sessionKey, memoryField); err == nil {
		if restored, err := unmarshalMemory(raw); err == nil {
			memory = restored
		}
	} else if err != session.ErrNotFound {
		return nil, fmt.Errorf("loading order memory: %w", err)
	}

	return &Agent{
		sessionKey: sessionKey,
		store:      store,
		logger:     logger,
		now:        now,
		reasoner:   reasoner,
		memory:     memory,
		steps: []ToolStep{
			ValidateOrderStep(),
			CheckInventoryStep(),
			ProcessPaymentStep(now),
			SendNotificationStep(),
		},
	}, nil
}

const memoryField = "agent_memory"

// Interrupt implements shutdown.AgentHandle. It cancels the run's internal
// context so any tool step blocked on a tick wakes immediately, the Go
// analogue of OrderProcessingTools checking
// Thread.currentThread().isInterrupted() between sleeps.
func (a *Agent) Interrupt() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelled = true
	if a.cancel != nil {
		a.cancel()
	}
}

// SerializeTo implements shutdown.AgentHandle by marshaling the run's Memory
// into store under key. It is idempotent: callers may invoke it more than
// once for the same key.
func (a *Agent) SerializeTo(ctx context.Context, store session.Store, key string) error {
	a.mu.Lock()
	data, err := marshalMemory(a.memory)
	a.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshaling order memory: %w", err)
	}
	return store.Save(ctx, key, memoryField, data)
}

// Run drives the order through its fixed tool sequence, dispatching a
// PreReasoning event before each step's "planning" and a PreActing event
// before the step itself runs, through chain. emit is called for every
// progress tick and step completion. Run returns a *shutdown.AbortSignal
// (via errors.As) if chain aborts the run.
func (a *Agent) Run(ctx context.Context, chain *hooks.Chain, emit func(StepEvent)) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	wasCancelled := a.cancelled
	a.mu.Unlock()
	defer cancel()

	if wasCancelled {
		return nil
	}

	a.mu.Lock()
	resuming := len(a.memory.CompletedSteps) > 0
	a.mu.Unlock()
	if resuming {
		a.logger.Info(ctx, "resuming order processing run", telemetry.KV{K: "sessionKey", V: a.sessionKey})
		emit(StepEvent{Step: "resumed", Content: "Resuming from saved state"})
	}

	firstStep := true
	for _, step := range a.steps {
		a.mu.Lock()
		done := a.memory.hasCompleted(step.Name)
		a.mu.Unlock()
		if done {
			firstStep = false
			continue
		}

		explanation, err := a.reasoner.Explain(ctx, a.memory.Order, step.Name)
		if err != nil {
			explanation = "deciding to run " + step.Name
		}
		messages := []hooks.Message{{Role: "assistant", Text: explanation}}
		if firstStep && !resuming {
			messages = append([]hooks.Message{{Role: "system", Text: sysPrompt}}, messages...)
		}
		firstStep = false

		reasoning := hooks.NewPreReasoningEvent(a, messages)
		if err := chain.Dispatch(ctx, reasoning); err != nil {
			return err
		}
		if reasoning.IsAborted() {
			return a.raiseAbort(ctx, reasoning)
		}

		acting := hooks.NewPreActingEvent(a, hooks.ToolCall{Name: step.Name, Args: map[string]any{"orderId": a.memory.Order.ID}})
		if err := chain.Dispatch(ctx, acting); err != nil {
			return err
		}
		if acting.IsAborted() {
			return a.raiseAbort(ctx, acting)
		}

		result, err := step.Run(runCtx, a.memory.Order, func(tick string) {
			emit(StepEvent{Step: step.Name, Content: tick})
		})

		a.mu.Lock()
		a.memory.record("assistant", result)
		if err == nil {
			a.memory.markCompleted(step.Name)
		}
		a.mu.Unlock()

		emit(StepEvent{Step: step.Name, Content: result})

		if err != nil {
			return nil
		}
	}

	emit(StepEvent{Step: "completed", Content: fmt.Sprintf("Order %s processed successfully.", a.memory.Order.ID)})
	return nil
}

// raiseAbort implements the agent-side half of the abort contract: if the
// event asked for state to be saved, serialize before unwinding, then raise
// the distinguished *shutdown.AbortSignal the streaming boundary matches on
// (shutdown/signal.go).
func (a *Agent) raiseAbort(ctx context.Context, event hooks.Event) error {
	saved := false
	if event.SaveStateOnAbort() {
		if err := a.SerializeTo(ctx, event.AbortStore(), event.AbortKey()); err != nil {
			a.logger.Error(ctx, "failed to serialize agent state on abort", telemetry.KV{K: "sessionKey", V: event.AbortKey()}, telemetry.KV{K: "error", V: err})
		} else {
			saved = true
		}
	}
	return &shutdown.AbortSignal{Reason: event.AbortReason(), SessionKey: event.AbortKey(), StateSaved: saved}
}
