// Package orders is a demo order-processing agent built on top of the
// coordination core: an AgentHandle with four simulated tool steps, a
// service that drives it through a reasoning loop, and an SSE handler that
// streams progress to clients. It is grounded on
// io.agentscope.examples.shutdown's OrderProcessingTools/OrderService/
// OrderController/OrderResponse in original_source/.
package orders

import (
	"context"
	"fmt"
	"time"
)

// ToolStep is one simulated unit of order-processing work. Each step emits
// progress updates through emit and checks interrupted between ticks, the
// way OrderProcessingTools.java checks Thread.currentThread().isInterrupted()
// between its simulated sleep ticks.
type ToolStep struct {
	Name     string
	Ticks    []string
	Interval time.Duration
	Run      func(ctx context.Context, order Order, emit func(string)) (string, error)
}

// Order is the subset of an order request the simulated tools need.
type Order struct {
	ID       string
	Products []Product
}

// Product is one line item on an order.
type Product struct {
	ID       string
	Quantity int
}

// TotalAmount mirrors OrderService.java's flat per-unit pricing used to
// build the synthetic user message for a new order.
func (o Order) TotalAmount() float64 {
	var total float64
	for _, p := range o.Products {
		total += float64(p.Quantity) * 99.99
	}
	return total
}

func tickStep(name string, ticks []string, interval time.Duration, result func(Order) string) ToolStep {
	return ToolStep{
		Name:     name,
		Ticks:    ticks,
		Interval: interval,
		Run: func(ctx context.Context, order Order, emit func(string)) (string, error) {
			for _, tick := range ticks {
				select {
				case <-ctx.Done():
					return fmt.Sprintf("%s interrupted - order: %s", name, order.ID), ctx.Err()
				case <-time.After(interval):
					emit(tick)
				}
			}
			return result(order), nil
		},
	}
}

// ValidateOrderStep simulates validating the order, grounded on
// OrderProcessingTools.validateOrder. It inspects no order data and always
// reports success.
func ValidateOrderStep() ToolStep {
	return tickStep("validate_order",
		[]string{"Validating order... 25%", "Validating order... 50%", "Validating order... 75%", "Validating order... 100%"},
		150*time.Millisecond,
		func(o Order) string {
			return fmt.Sprintf("Order %s validated successfully. Customer verified, order data valid.", o.ID)
		})
}

// CheckInventoryStep checks whether the requested quantity of each product
// is available, grounded on OrderProcessingTools.checkInventory. The
// simulated warehouse always holds 100 units per product.
func CheckInventoryStep() ToolStep {
	const available = 100
	return ToolStep{
		Name:     "check_inventory",
		Interval: 150 * time.Millisecond,
		Run: func(ctx context.Context, order Order, emit func(string)) (string, error) {
			ticks := []string{"Checking inventory... 25%", "Checking inventory... 50%", "Checking inventory... 75%", "Checking inventory... 100%"}
			for _, tick := range ticks {
				select {
				case <-ctx.Done():
					return "check_inventory interrupted - order: " + order.ID, ctx.Err()
				case <-time.After(150 * time.Millisecond):
					emit(tick)
				}
			}
			var out string
			for _, p := range order.Products {
				inStock := p.Quantity <= available
				if inStock {
					out += fmt.Sprintf("Product %s has %d units available. Requested quantity %d is in stock.\n", p.ID, available, p.Quantity)
				} else {
					out += fmt.Sprintf("Product %s has only %d units available. Requested quantity %d exceeds stock.\n", p.ID, available, p.Quantity)
				}
			}
			return out, nil
		},
	}
}

// ProcessPaymentStep is the longest, most critical step: six authorization
// stages grounded on OrderProcessingTools.processPayment. now is injected so
// the synthetic transaction ID is deterministic in tests instead of reaching
// for time.Now (which the host program may not want to call from inside a
// tool).
func ProcessPaymentStep(now func() time.Time) ToolStep {
	stages := []string{
		"Connecting to payment gateway...",
		"Verifying payment details...",
		"Authorizing transaction...",
		"Processing payment...",
		"Confirming transaction...",
		"Finalizing payment...",
	}
	return ToolStep{
		Name:     "process_payment",
		Interval: 150 * time.Millisecond,
		Run: func(ctx context.Context, order Order, emit func(string)) (string, error) {
			for _, stage := range stages {
				select {
				case <-ctx.Done():
					return fmt.Sprintf("Payment processing interrupted - order: %s. Transaction rolled back.", order.ID), ctx.Err()
				case <-time.After(150 * time.Millisecond):
					emit(stage)
				}
			}
			txn := now().UnixNano()
			return fmt.Sprintf("Payment of $%.2f for order %s processed successfully. Transaction ID: TXN-%d", order.TotalAmount(), order.ID, txn), nil
		},
	}
}

// SendNotificationStep delivers the final confirmation, grounded on
// OrderProcessingTools.sendNotification.
func SendNotificationStep() ToolStep {
	return tickStep("send_notification",
		[]string{"Sending notification... 50%", "Sending notification... 100%"},
		150*time.Millisecond,
		func(o Order) string {
			return fmt.Sprintf("Notification sent for order %s: 'Your order has been processed.'. Delivery confirmed via email and SMS.", o.ID)
		})
}
