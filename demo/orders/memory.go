package orders

import (
	"encoding/json"
)

// Memory is the persisted state of one order-processing run: the messages
// exchanged so far and which steps have already completed. It is the Go
// analogue of OrderService.java's InMemoryMemory, scoped down to what this
// demo actually needs to resume correctly.
type Memory struct {
	Order          Order    `json:"order"`
	CompletedSteps []string `json:"completedSteps"`
	Transcript     []Turn   `json:"transcript"`
}

// Turn is one exchange recorded in the transcript, mirroring the
// role/content shape of io.agentscope.core.message.Msg.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

func (m *Memory) hasCompleted(step string) bool {
	for _, s := range m.CompletedSteps {
		if s == step {
			return true
		}
	}
	return false
}

func (m *Memory) markCompleted(step string) {
	if !m.hasCompleted(step) {
		m.CompletedSteps = append(m.CompletedSteps, step)
	}
}

func (m *Memory) record(role, text string) {
	m.Transcript = append(m.Transcript, Turn{Role: role, Text: text})
}

func marshalMemory(m *Memory) ([]byte, error) {
	return json.Marshal(m)
}

func unmarshalMemory(data []byte) (*Memory, error) {
	var m Memory
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
