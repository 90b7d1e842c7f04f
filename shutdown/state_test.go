package shutdown_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentscope-go/shutdown/shutdown"
)

func TestLifecycleStateMarshalsAsReadinessString(t *testing.T) {
	for state, want := range map[shutdown.LifecycleState]string{
		shutdown.StateRunning:    `"RUNNING"`,
		shutdown.StateDraining:   `"DRAINING"`,
		shutdown.StateTerminated: `"TERMINATED"`,
	} {
		data, err := json.Marshal(state)
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
}

func TestLifecycleStateUnmarshalRoundTrips(t *testing.T) {
	for _, state := range []shutdown.LifecycleState{shutdown.StateRunning, shutdown.StateDraining, shutdown.StateTerminated} {
		data, err := json.Marshal(state)
		require.NoError(t, err)

		var got shutdown.LifecycleState
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, state, got)
	}
}

func TestLifecycleStateUnmarshalRejectsUnknownValue(t *testing.T) {
	var got shutdown.LifecycleState
	err := json.Unmarshal([]byte(`"BOGUS"`), &got)
	assert.Error(t, err)
}
