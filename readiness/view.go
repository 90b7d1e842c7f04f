// Package readiness derives liveness/readiness status from the
// LifecycleController's state for external health polling (spec.md §4.5).
package readiness

import "github.com/agentscope-go/shutdown/shutdown"

// Status is the outcome a liveness or readiness check reports.
type Status string

const (
	// StatusUp is reported by Liveness unconditionally while the process is
	// alive.
	StatusUp Status = "UP"
	// StatusReady is reported by Readiness when the controller is accepting
	// new work.
	StatusReady Status = "READY"
	// StatusNotReady is reported by Readiness when the controller is
	// draining or terminated.
	StatusNotReady Status = "NOT_READY"
)

// Report is the payload returned by both Liveness and Readiness.
type Report struct {
	Status         Status                   `json:"status"`
	LifecycleState shutdown.LifecycleState  `json:"lifecycleState"`
	ActiveCount    int                      `json:"activeCount"`
	Message        string                   `json:"message,omitempty"`
}

// View is a pure projection of a LifecycleController's state. It holds no
// state of its own.
type View struct {
	controller *shutdown.LifecycleController
}

// NewView wraps controller.
func NewView(controller *shutdown.LifecycleController) *View {
	return &View{controller: controller}
}

// Liveness always reports StatusUp while the process is alive; it includes
// the current LifecycleState and ActiveCount for observability.
func (v *View) Liveness() Report {
	return Report{
		Status:         StatusUp,
		LifecycleState: v.controller.CurrentState(),
		ActiveCount:    v.controller.ActiveCount(),
	}
}

// Readiness reports StatusReady iff the controller is accepting new work.
// Otherwise it reports StatusNotReady with a message a traffic router can
// surface.
func (v *View) Readiness() Report {
	if v.controller.IsAccepting() {
		return Report{
			Status:         StatusReady,
			LifecycleState: v.controller.CurrentState(),
			ActiveCount:    v.controller.ActiveCount(),
		}
	}
	return Report{
		Status:         StatusNotReady,
		LifecycleState: v.controller.CurrentState(),
		ActiveCount:    v.controller.ActiveCount(),
		Message:        "Service is shutting down",
	}
}
