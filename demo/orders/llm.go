package orders

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/agentscope-go/shutdown/telemetry"
)

// Reasoner produces the short planning commentary emitted with each
// PreReasoning event. It is the seam between the fixed tool sequence and a
// real model call, grounded on features/model/openai's Client in the teacher
// tree — scaled down to the single "what are you about to do" completion
// this demo needs instead of a full planner round-trip.
type Reasoner interface {
	Explain(ctx context.Context, order Order, nextStep string) (string, error)
}

// offlineReasoner is the deterministic fallback used when no API key is
// configured, so the demo runs without network access.
type offlineReasoner struct{}

func (offlineReasoner) Explain(_ context.Context, order Order, nextStep string) (string, error) {
	return fmt.Sprintf("Next, I will run %s for order %s.", nextStep, order.ID), nil
}

// OpenAIReasoner issues a short chat completion per PreReasoning event.
type OpenAIReasoner struct {
	client openai.Client
	model  openai.ChatModel
	logger telemetry.Logger
}

// NewOpenAIReasoner builds a Reasoner backed by the OpenAI Chat Completions
// API if apiKey is non-empty; otherwise it returns the deterministic offline
// fallback, mirroring how the teacher only ever wires one of its several
// model backends per deployment (features/model/{openai,anthropic,bedrock}).
func NewOpenAIReasoner(apiKey string, logger telemetry.Logger) Reasoner {
	if logger == nil {
		logger = telemetry.NopLogger{}
	}
	if apiKey == "" {
		return offlineReasoner{}
	}
	return &OpenAIReasoner{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModelGPT4oMini,
		logger: logger,
	}
}

// Explain implements Reasoner.
func (r *OpenAIReasoner) Explain(ctx context.Context, order Order, nextStep string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nIn one short sentence, state that you are about to run the %s step for order %s.", sysPrompt, nextStep, order.ID)

	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		r.logger.Warn(ctx, "openai reasoning call failed, falling back to offline text", telemetry.KV{K: "error", V: err})
		return offlineReasoner{}.Explain(ctx, order, nextStep)
	}
	if len(resp.Choices) == 0 {
		return offlineReasoner{}.Explain(ctx, order, nextStep)
	}
	return resp.Choices[0].Message.Content, nil
}
