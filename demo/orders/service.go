package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentscope-go/shutdown/shutdown"
	"github.com/agentscope-go/shutdown/hooks"
	"github.com/agentscope-go/shutdown/session"
	"github.com/agentscope-go/shutdown/telemetry"
)

// Request is the inbound order-processing request, grounded on
// OrderRequest.java. SessionID is optional: when absent a new one is
// generated and the order starts fresh; when present the service looks for
// an InterruptedMarker and resumes instead.
type Request struct {
	SessionID string
	OrderID   string
	Products  []Product
}

// Service drives order-processing runs against the coordination core,
// grounded on OrderService.java's processOrder.
type Service struct {
	controller *shutdown.LifecycleController
	store      session.Store
	logger     telemetry.Logger
	reasoner   Reasoner
	tracer     telemetry.Tracer
}

// NewService wires controller and store into a Service. reasoner may be
// nil, in which case every run uses the deterministic offline fallback; see
// NewOpenAIReasoner for wiring a real model call. tracer is variadic so
// existing four-argument call sites keep compiling; it defaults to
// telemetry.NopTracer{} when omitted.
func NewService(controller *shutdown.LifecycleController, store session.Store, logger telemetry.Logger, reasoner Reasoner, tracer ...telemetry.Tracer) *Service {
	if logger == nil {
		logger = telemetry.NopLogger{}
	}
	if reasoner == nil {
		reasoner = offlineReasoner{}
	}
	var t telemetry.Tracer = telemetry.NopTracer{}
	if len(tracer) > 0 && tracer[0] != nil {
		t = tracer[0]
	}
	return &Service{controller: controller, store: store, logger: logger, reasoner: reasoner, tracer: t}
}

// Process runs req through an Agent, streaming Response values on the
// returned channel until the run finishes, is interrupted, or errors. The
// channel is closed when the run ends; callers must drain it.
func (s *Service) Process(ctx context.Context, req Request) <-chan Response {
	out := make(chan Response, 8)

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "order-" + uuid.NewString()[:8]
	}

	go func() {
		defer close(out)
		s.run(ctx, sessionID, req, out)
	}()

	return out
}

func (s *Service) run(ctx context.Context, sessionID string, req Request, out chan<- Response) {
	order := Order{ID: req.OrderID, Products: req.Products}

	_, resumeErr := s.store.Get(ctx, sessionID, shutdown.InterruptedMarkerField)
	isResume := resumeErr == nil

	agent, err := NewAgent(ctx, sessionID, order, s.store, s.logger, time.Now, s.reasoner)
	if err != nil {
		out <- errorResponse(sessionID, err.Error())
		return
	}

	abortHook := hooks.NewAgentAbortHook(s.store, sessionID, s.controller, s.logger)
	chain := hooks.NewChain(abortHook).WithTracer(s.tracer)

	if isResume {
		out <- resumedResponse(sessionID, "Resuming from saved state")
	}

	runErr := agent.Run(ctx, chain, func(evt StepEvent) {
		if evt.Step == "completed" {
			out <- completedResponse(sessionID, evt.Content)
			return
		}
		if evt.Step == "resumed" {
			return
		}
		out <- processingResponse(sessionID, evt.Step, evt.Content)
	})

	if aborted, ok := runErr.(*shutdown.AbortSignal); ok {
		s.logger.Info(ctx, "order processing aborted due to shutdown", telemetry.KV{K: "sessionId", V: sessionID})
		out <- interruptedResponse(sessionID, fmt.Sprintf("%s. State saved. Retry with sessionId: %s", aborted.Reason, sessionID))
		return
	}
	if runErr != nil {
		s.logger.Error(ctx, "order processing failed", telemetry.KV{K: "sessionId", V: sessionID}, telemetry.KV{K: "error", V: runErr})
		if err := agent.SerializeTo(ctx, s.store, sessionID); err != nil {
			s.logger.Error(ctx, "failed to serialize agent state after error", telemetry.KV{K: "error", V: err})
		}
		out <- errorResponse(sessionID, runErr.Error())
		return
	}

	if err := abortHook.Complete(ctx); err != nil {
		s.logger.Error(ctx, "hook completion failed", telemetry.KV{K: "sessionId", V: sessionID}, telemetry.KV{K: "error", V: err})
	}
}

// SessionStatus reports whether sessionID is unknown, interrupted, or found,
// mirroring OrderController.checkSession: existence is checked first, then
// the same InterruptedMarkerField lookup run performs before starting an
// agent, so a session that was checkpointed mid-run is reported as
// "interrupted" with the marker's reason and timestamp rather than as a
// plain "found".
func (s *Service) SessionStatus(ctx context.Context, sessionID string) (Response, error) {
	exists, err := s.store.Exists(ctx, sessionID)
	if err != nil {
		return Response{}, err
	}
	if !exists {
		return notFoundResponse(sessionID, "Session not found"), nil
	}

	data, err := s.store.Get(ctx, sessionID, shutdown.InterruptedMarkerField)
	if err == nil {
		marker, err := shutdown.UnmarshalInterruptedMarker(data)
		if err != nil {
			return Response{}, err
		}
		message := fmt.Sprintf(
			"Session interrupted at %s. Reason: %s. Include this sessionId in your next request to resume.",
			marker.InterruptedAt, marker.Reason)
		return interruptedResponse(sessionID, message), nil
	}

	return foundResponse(sessionID, "Session exists"), nil
}

// IsAccepting reports whether the coordination core is still taking new
// registrations, so the HTTP boundary can reject with 503 before it commits
// to a response status (spec.md §4.7, §8 Scenario F) instead of discovering
// ErrNotAccepting only after the SSE stream has already started.
func (s *Service) IsAccepting() bool {
	return s.controller.IsAccepting()
}
