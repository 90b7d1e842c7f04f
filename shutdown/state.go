package shutdown

import (
	"encoding/json"
	"fmt"
)

// LifecycleState is one of the three monotonic phases a process passes
// through: accepting work, draining in-flight work, and fully stopped.
// Transitions only ever move forward: RUNNING -> DRAINING -> TERMINATED.
type LifecycleState int32

const (
	// StateRunning accepts new registrations.
	StateRunning LifecycleState = iota
	// StateDraining no longer accepts new registrations; existing work is
	// given bounded time to finish.
	StateDraining
	// StateTerminated means the drain window has closed; the active table is
	// guaranteed empty.
	StateTerminated
)

// String implements fmt.Stringer for log output.
func (s LifecycleState) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateDraining:
		return "DRAINING"
	case StateTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders the state as its String() form (e.g. "RUNNING")
// rather than the bare underlying integer, for wire-contract parity with
// HealthController.java's state.name() (spec.md §6's readiness payloads).
func (s LifecycleState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *LifecycleState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "RUNNING":
		*s = StateRunning
	case "DRAINING":
		*s = StateDraining
	case "TERMINATED":
		*s = StateTerminated
	default:
		return fmt.Errorf("shutdown: unknown LifecycleState %q", str)
	}
	return nil
}
