// Package hooks implements the per-execution hook protocol that suspends an
// agent at safe points, checkpoints its state, and terminates its stream
// with a distinguished abort signal (spec.md §4.3). The event types here
// model PreReasoning/PreActing as a small tagged union, following the
// teacher's baseEvent-embedding convention in runtime/agent/hooks/events.go,
// scaled down to the two event kinds this core cares about.
package hooks

import (
	"github.com/agentscope-go/shutdown/shutdown"
	"github.com/agentscope-go/shutdown/session"
)

// Kind identifies which of the two safe points an Event represents.
type Kind int

const (
	// KindPreReasoning is emitted once per reasoning step, just before the
	// LLM call.
	KindPreReasoning Kind = iota
	// KindPreActing is emitted once per tool invocation, just before the
	// tool runs.
	KindPreActing
)

// Message is a single entry in the list of messages that will be sent to
// the LLM for a reasoning step.
type Message struct {
	Role string
	Text string
}

// SystemMessage is a convenience constructor for the resume-injection
// message (spec.md §4.3 step 2).
func SystemMessage(text string) Message {
	return Message{Role: "system", Text: text}
}

// Event is the capability a hook observes: {proceed, modified-event,
// abort(reason, save?)}, per spec.md §9's design note on languages without
// subtype polymorphism. PreReasoningEvent and PreActingEvent both satisfy
// it.
type Event interface {
	Kind() Kind
	Agent() shutdown.AgentHandle

	// Abort marks the event aborted. If store is non-nil and key is
	// non-empty, the agent is expected to serialize its state into store
	// under key before raising the abort signal.
	Abort(reason string, store session.Store, key string)

	IsAborted() bool
	AbortReason() string
	SaveStateOnAbort() bool
	AbortStore() session.Store
	AbortKey() string
}

type abortable struct {
	agent  shutdown.AgentHandle
	aborted bool
	reason  string
	store   session.Store
	key     string
}

func (a *abortable) Agent() shutdown.AgentHandle { return a.agent }

func (a *abortable) Abort(reason string, store session.Store, key string) {
	a.aborted = true
	a.reason = reason
	a.store = store
	a.key = key
}

func (a *abortable) IsAborted() bool       { return a.aborted }
func (a *abortable) AbortReason() string   { return a.reason }
func (a *abortable) SaveStateOnAbort() bool { return a.store != nil && a.key != "" }
func (a *abortable) AbortStore() session.Store { return a.store }
func (a *abortable) AbortKey() string      { return a.key }

// PreReasoningEvent carries the modifiable list of messages that will be
// sent to the LLM for this reasoning step.
type PreReasoningEvent struct {
	abortable
	InputMessages []Message
}

// NewPreReasoningEvent constructs a PreReasoningEvent for agent.
func NewPreReasoningEvent(agent shutdown.AgentHandle, inputMessages []Message) *PreReasoningEvent {
	e := &PreReasoningEvent{InputMessages: inputMessages}
	e.agent = agent
	return e
}

// Kind implements Event.
func (e *PreReasoningEvent) Kind() Kind { return KindPreReasoning }

// AppendMessage appends m to the end of InputMessages, so it is the last
// instruction the model sees (spec.md §4.3 step 2).
func (e *PreReasoningEvent) AppendMessage(m Message) {
	e.InputMessages = append(e.InputMessages, m)
}

// ToolCall is the modifiable tool-call descriptor carried by a
// PreActingEvent.
type ToolCall struct {
	Name string
	Args map[string]any
}

// PreActingEvent carries the modifiable tool-call descriptor for this
// acting step.
type PreActingEvent struct {
	abortable
	ToolCall ToolCall
}

// NewPreActingEvent constructs a PreActingEvent for agent.
func NewPreActingEvent(agent shutdown.AgentHandle, call ToolCall) *PreActingEvent {
	e := &PreActingEvent{ToolCall: call}
	e.agent = agent
	return e
}

// Kind implements Event.
func (e *PreActingEvent) Kind() Kind { return KindPreActing }
