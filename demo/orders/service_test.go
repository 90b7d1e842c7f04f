package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentscope-go/shutdown/shutdown"
	"github.com/agentscope-go/shutdown/demo/orders"
	"github.com/agentscope-go/shutdown/session/inmem"
)

func drain(ch <-chan orders.Response) []orders.Response {
	var out []orders.Response
	for r := range ch {
		out = append(out, r)
	}
	return out
}

func TestProcessNewOrderRunsAllStepsToCompletion(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	store := inmem.New()
	svc := orders.NewService(ctrl, store, nil, nil)

	req := orders.Request{OrderID: "ORD-1", Products: []orders.Product{{ID: "PROD-1", Quantity: 2}}}
	responses := drain(svc.Process(context.Background(), req))

	require.NotEmpty(t, responses)
	last := responses[len(responses)-1]
	assert.Equal(t, "completed", last.Status)
	assert.NotEmpty(t, last.SessionID)
	assert.Equal(t, 0, ctrl.ActiveCount(), "the hook must unregister on completion")
}

func TestProcessResumesFromInterruptedMarker(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	store := inmem.New()
	svc := orders.NewService(ctrl, store, nil, nil)

	marker := shutdown.NewInterruptedMarker("draining")
	data, err := marker.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "sess-resume", shutdown.InterruptedMarkerField, data))

	req := orders.Request{SessionID: "sess-resume", OrderID: "ORD-2", Products: []orders.Product{{ID: "PROD-1", Quantity: 1}}}
	responses := drain(svc.Process(context.Background(), req))

	require.NotEmpty(t, responses)
	assert.Equal(t, "resumed", responses[0].Status)
	last := responses[len(responses)-1]
	assert.Equal(t, "completed", last.Status)
}

func TestProcessAbortsCleanlyWhenDrainStarts(t *testing.T) {
	ctrl := shutdown.New(nil, nil)
	store := inmem.New()
	svc := orders.NewService(ctrl, store, nil, nil)

	req := orders.Request{SessionID: "sess-abort", OrderID: "ORD-3", Products: []orders.Product{{ID: "PROD-1", Quantity: 1}}}
	out := svc.Process(context.Background(), req)

	time.Sleep(50 * time.Millisecond)
	ctrl.InitiateDrain(context.Background())

	responses := drain(out)
	require.NotEmpty(t, responses)
	last := responses[len(responses)-1]
	assert.Equal(t, "interrupted", last.Status)

	exists, err := store.Exists(context.Background(), "sess-abort")
	require.NoError(t, err)
	assert.True(t, exists, "agent memory must be persisted before the run unwinds")
}
