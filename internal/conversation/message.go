// ABOUTME: Core data types for an AI-to-AI conversation transcript
// ABOUTME: Messages are immutable once appended; events wrap them for streaming

package conversation

import (
	"time"
)

// Sender identifies who produced a message: one of the two participants
// or the system pseudo-sender used for in-band failure records.
type Sender string

const (
	SenderAI1    Sender = "ai1"
	SenderAI2    Sender = "ai2"
	SenderSystem Sender = "system"
)

// Other returns the opposite participant. System has no counterpart and
// maps to itself.
func (s Sender) Other() Sender {
	switch s {
	case SenderAI1:
		return SenderAI2
	case SenderAI2:
		return SenderAI1
	default:
		return s
	}
}

// State is the lifecycle state of a conversation. Transitions form a DAG
// with completed and error as terminal sinks.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
	StateError     State = "error"
)

// Terminal reports whether no further transitions or messages can occur.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateError
}

// Message is a single immutable utterance in a conversation transcript.
// Ordering is append-only and timestamp-monotonic within a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Sender         Sender    `json:"sender"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	Tokens         *int      `json:"tokens"`
}

// EventType tags the two kinds of events carried on the bus.
type EventType string

const (
	EventMessage      EventType = "message"
	EventStatusUpdate EventType = "status_update"
)

// Event is one unit published on the bus: either a newly appended Message
// or a state change. Events are ephemeral; they exist only on the bus and
// while in flight to stream subscribers.
type Event struct {
	Type    EventType `json:"type"`
	Message *Message  `json:"message,omitempty"`
	State   State     `json:"state,omitempty"`
}

// Terminal reports whether this event ends a subscriber's stream.
func (e Event) Terminal() bool {
	return e.Type == EventStatusUpdate && e.State.Terminal()
}
