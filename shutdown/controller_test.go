package shutdown_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentscope-go/shutdown/shutdown"
	"github.com/agentscope-go/shutdown/session"
	"github.com/agentscope-go/shutdown/session/inmem"
)

type fakeAgent struct {
	mu          sync.Mutex
	interrupted bool
	serialized  int
	serializeErr error
}

func (a *fakeAgent) Interrupt() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.interrupted = true
}

func (a *fakeAgent) SerializeTo(_ context.Context, _ session.Store, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.serialized++
	return a.serializeErr
}

func TestRegisterUnregisterHappyPath(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	store := inmem.New()
	agent := &fakeAgent{}

	rc, err := ctrl.Register(context.Background(), "sess-1", agent, store)
	require.NoError(t, err)
	require.Equal(t, 1, ctrl.ActiveCount())

	ctrl.Unregister(context.Background(), "sess-1")
	assert.Equal(t, 0, ctrl.ActiveCount())
	assert.NotNil(t, rc)
}

func TestRegisterFailsWhenNotAccepting(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	store := inmem.New()
	ctrl.InitiateDrain(context.Background())

	_, err := ctrl.Register(context.Background(), "sess-1", &fakeAgent{}, store)
	require.ErrorIs(t, err, shutdown.ErrNotAccepting)
}

func TestUnregisterUnknownSessionIsNoop(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	ctrl.Unregister(context.Background(), "does-not-exist")
	assert.Equal(t, 0, ctrl.ActiveCount())
}

func TestInitiateDrainIdempotent(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	ctrl.InitiateDrain(context.Background())
	ctrl.InitiateDrain(context.Background())
	ctrl.InitiateDrain(context.Background())
	assert.Equal(t, shutdown.StateDraining, ctrl.CurrentState())
}

func TestAwaitDrainEmptyTableReturnsTrueImmediately(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	ctrl.InitiateDrain(context.Background())
	ok := ctrl.AwaitDrain(context.Background(), time.Second)
	assert.True(t, ok)
	assert.Equal(t, shutdown.StateTerminated, ctrl.CurrentState())
}

func TestAwaitDrainZeroDeadlineForceCheckpoints(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	store := inmem.New()
	agent := &fakeAgent{}
	_, err := ctrl.Register(context.Background(), "sess-1", agent, store)
	require.NoError(t, err)

	ctrl.InitiateDrain(context.Background())
	ok := ctrl.AwaitDrain(context.Background(), 0)

	assert.False(t, ok)
	assert.Equal(t, shutdown.StateTerminated, ctrl.CurrentState())
	assert.Equal(t, 0, ctrl.ActiveCount())
	agent.mu.Lock()
	assert.True(t, agent.interrupted)
	assert.Equal(t, 1, agent.serialized)
	agent.mu.Unlock()
}

func TestAwaitDrainSucceedsWhenAllUnregisterBeforeDeadline(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	store := inmem.New()
	_, err := ctrl.Register(context.Background(), "sess-1", &fakeAgent{}, store)
	require.NoError(t, err)

	ctrl.InitiateDrain(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		ctrl.Unregister(context.Background(), "sess-1")
	}()

	ok := ctrl.AwaitDrain(context.Background(), time.Second)
	assert.True(t, ok)
	assert.Equal(t, shutdown.StateTerminated, ctrl.CurrentState())
}

func TestDoubleRegisterOverwrites(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	store := inmem.New()
	agent1 := &fakeAgent{}
	agent2 := &fakeAgent{}

	_, err := ctrl.Register(context.Background(), "sess-1", agent1, store)
	require.NoError(t, err)
	rc2, err := ctrl.Register(context.Background(), "sess-1", agent2, store)
	require.NoError(t, err)

	require.Equal(t, 1, ctrl.ActiveCount())
	found := ctrl.FindByAgent(agent2)
	require.NotNil(t, found)
	assert.Equal(t, rc2, found)

	ctrl.Unregister(context.Background(), "sess-1")
	assert.Equal(t, 0, ctrl.ActiveCount())
}

func TestInterruptAndSaveIdempotent(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	store := inmem.New()
	agent := &fakeAgent{}
	rc, err := ctrl.Register(context.Background(), "sess-1", agent, store)
	require.NoError(t, err)

	rc.InterruptAndSave(context.Background())
	rc.InterruptAndSave(context.Background())
	rc.InterruptAndSave(context.Background())

	agent.mu.Lock()
	defer agent.mu.Unlock()
	assert.Equal(t, 1, agent.serialized)
}

func TestLifecycleStateNeverGoesBackward(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	assert.Equal(t, shutdown.StateRunning, ctrl.CurrentState())
	ctrl.InitiateDrain(context.Background())
	assert.Equal(t, shutdown.StateDraining, ctrl.CurrentState())
	ctrl.AwaitDrain(context.Background(), time.Millisecond)
	assert.Equal(t, shutdown.StateTerminated, ctrl.CurrentState())

	// Further drain calls must not move the state backward.
	ctrl.InitiateDrain(context.Background())
	assert.Equal(t, shutdown.StateTerminated, ctrl.CurrentState())
}
