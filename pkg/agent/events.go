package agent

import (
	"fmt"
	"sync"
)

// Event types understood by the streaming boundary.
const (
	EventMessageChunk   = "message_chunk"
	EventToolCalls      = "tool_calls"
	EventToolCallChunks = "tool_call_chunks"
	EventToolCallResult = "tool_call_result"
)

// ToolCall identifies one tool invocation within an event.
type ToolCall struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Args string `json:"args"`
}

// Event is one streamed fragment of model content, tagged with enough
// metadata for the transport boundary to classify and route it.
type Event struct {
	Type       string     `json:"-"`
	ThreadID   string     `json:"thread_id"`
	Agent      string     `json:"agent"`
	ID         string     `json:"id"`
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// EventSink receives run events. Implementations must be safe for
// concurrent use; worker tasks of one fan-out round emit concurrently.
type EventSink interface {
	Send(Event)
}

// emitter assigns monotonically increasing message identifiers and stamps
// every event with the run's thread id. A nil sink drops everything.
type emitter struct {
	sink     EventSink
	threadID string

	mu   sync.Mutex
	next uint64
}

func newEmitter(sink EventSink, threadID string) *emitter {
	return &emitter{sink: sink, threadID: threadID}
}

// nextMessageID reserves an id shared by all fragments of one message.
func (e *emitter) nextMessageID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	return fmt.Sprintf("%s-%d", e.threadID, e.next)
}

func (e *emitter) send(ev Event) {
	if e.sink == nil {
		return
	}
	ev.ThreadID = e.threadID
	ev.Role = "assistant"
	e.sink.Send(ev)
}

func (e *emitter) messageChunk(agent, msgID, content string) {
	e.send(Event{Type: EventMessageChunk, Agent: agent, ID: msgID, Content: content})
}

func (e *emitter) toolCalls(agent, msgID string, calls ...ToolCall) {
	e.send(Event{Type: EventToolCalls, Agent: agent, ID: msgID, ToolCalls: calls})
}

func (e *emitter) toolCallChunk(agent, msgID, callID, argsChunk string) {
	e.send(Event{Type: EventToolCallChunks, Agent: agent, ID: msgID, ToolCallID: callID, Content: argsChunk})
}

func (e *emitter) toolCallResult(agent, msgID, callID, content string) {
	e.send(Event{Type: EventToolCallResult, Agent: agent, ID: msgID, ToolCallID: callID, Content: content})
}
