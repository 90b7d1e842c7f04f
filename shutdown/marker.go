package shutdown

import (
	"encoding/json"
	"time"
)

// InterruptedMarkerField is the reserved session field name the core uses to
// record that an execution ended in abort. It must never collide with a
// field name the agent chooses for its own state.
const InterruptedMarkerField = "interrupted_state"

// InterruptedMarker is the sentinel persisted when an execution is aborted.
// Its presence under InterruptedMarkerField for a sessionId is read by the
// next execution on that key to decide whether to inject a resume prompt.
type InterruptedMarker struct {
	Reason        string    `json:"reason"`
	InterruptedAt time.Time `json:"interruptedAt"`
}

// NewInterruptedMarker builds a marker stamped with the current time.
func NewInterruptedMarker(reason string) InterruptedMarker {
	return InterruptedMarker{Reason: reason, InterruptedAt: time.Now()}
}

// Marshal serializes the marker for storage via session.Store.
func (m InterruptedMarker) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalInterruptedMarker is the inverse of Marshal.
func UnmarshalInterruptedMarker(b []byte) (InterruptedMarker, error) {
	var m InterruptedMarker
	err := json.Unmarshal(b, &m)
	return m, err
}
