package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentscope-go/shutdown/demo/orders"
)

func TestValidateOrderStepEmitsProgressAndCompletes(t *testing.T) {
	step := orders.ValidateOrderStep()
	order := orders.Order{ID: "ORD-9"}

	var ticks []string
	result, err := step.Run(context.Background(), order, func(tick string) { ticks = append(ticks, tick) })

	require.NoError(t, err)
	assert.Len(t, ticks, 4)
	assert.Contains(t, result, "ORD-9")
	assert.Contains(t, result, "validated successfully")
}

func TestCheckInventoryStepReportsOutOfStock(t *testing.T) {
	step := orders.CheckInventoryStep()
	order := orders.Order{ID: "ORD-9", Products: []orders.Product{{ID: "PROD-1", Quantity: 500}}}

	result, err := step.Run(context.Background(), order, func(string) {})

	require.NoError(t, err)
	assert.Contains(t, result, "exceeds stock")
}

func TestProcessPaymentStepUsesInjectedClock(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	step := orders.ProcessPaymentStep(func() time.Time { return fixed })
	order := orders.Order{ID: "ORD-9", Products: []orders.Product{{ID: "PROD-1", Quantity: 1}}}

	result, err := step.Run(context.Background(), order, func(string) {})

	require.NoError(t, err)
	assert.Contains(t, result, "TXN-")
	assert.Contains(t, result, "99.99")
}

func TestStepRunReturnsErrorWhenContextCancelled(t *testing.T) {
	step := orders.ValidateOrderStep()
	order := orders.Order{ID: "ORD-9"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := step.Run(ctx, order, func(string) {})

	require.Error(t, err)
	assert.Contains(t, result, "interrupted")
}
