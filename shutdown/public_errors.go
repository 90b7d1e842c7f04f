package shutdown

import "errors"

// This file defines the user-facing text and sentinel error kinds emitted by
// the coordination core (spec.md §7 ERROR HANDLING DESIGN). Callers may
// override the message variable at process startup to customize UX text.
var (
	// PublicErrorShuttingDown is the reason text attached to markers and
	// abort signals raised while the controller is DRAINING or TERMINATED.
	PublicErrorShuttingDown = "Service is shutting down, please retry later"
)

// ErrNotAccepting is returned by LifecycleController.Register when the
// controller is not in StateRunning.
var ErrNotAccepting = errors.New("shutdown: not accepting new registrations")
