package orders_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentscope-go/shutdown/demo/orders"
)

func TestNewOpenAIReasonerFallsBackToOfflineWithoutAPIKey(t *testing.T) {
	reasoner := orders.NewOpenAIReasoner("", nil)

	text, err := reasoner.Explain(context.Background(), orders.Order{ID: "ORD-1"}, "validate_order")

	require.NoError(t, err)
	assert.Contains(t, text, "validate_order")
	assert.Contains(t, text, "ORD-1")
}
