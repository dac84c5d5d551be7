// ABOUTME: Orchestrator owns one conversation: its transcript, state machine and turn loop
// ABOUTME: Alternates two generation agents, honoring pause/resume/stop cooperatively

package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// GenerateRequest is what the orchestrator hands the external generation
// collaborator for one turn. History is the full transcript so far; role
// mapping from the speaker's perspective is the generator's concern.
type GenerateRequest struct {
	Provider  string
	Model     string
	Persona   string
	Speaker   Sender
	History   []Message
	MaxTokens int
}

// GenerateResult is one successful generation. Tokens is nil when the
// generator cannot count for the model.
type GenerateResult struct {
	Text   string
	Tokens *int
}

// Generator is the external text-generation collaborator. A failed call is
// terminal for the conversation; the orchestrator never retries.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

// Orchestrator drives a single conversation. The turn loop is the only
// writer of the message sequence and (together with lifecycle commands)
// of the state; stream subscribers are read-only.
type Orchestrator struct {
	id        string
	config    Config
	createdAt time.Time
	gen       Generator
	logger    *slog.Logger

	mu       sync.Mutex
	messages []Message
	state    State

	gate     *gate
	stop     chan struct{}
	stopOnce sync.Once
	bus      *Bus
}

// New constructs an Orchestrator in the idle state. The turn loop does not
// start until Run is called.
func New(id string, cfg Config, gen Generator, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		id:        id,
		config:    cfg,
		createdAt: time.Now().UTC(),
		gen:       gen,
		logger:    logger.With("component", "orchestrator", "conversation_id", id),
		state:     StateIdle,
		gate:      newGate(),
		stop:      make(chan struct{}),
		bus:       NewBus(),
	}
}

// ID returns the conversation identifier.
func (o *Orchestrator) ID() string { return o.id }

// CreatedAt returns the construction time, used by the eviction sweep.
func (o *Orchestrator) CreatedAt() time.Time { return o.createdAt }

// Config returns the immutable conversation configuration.
func (o *Orchestrator) Config() Config { return o.config }

// State returns the externally visible lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// MessageCount returns the current transcript length.
func (o *Orchestrator) MessageCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.messages)
}

// Snapshot is a point-in-time read of a conversation.
type Snapshot struct {
	ID        string
	State     State
	CreatedAt time.Time
	Config    Config
	Messages  []Message
}

// Snapshot returns the config, state and a copy of the message sequence.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	msgs := make([]Message, len(o.messages))
	copy(msgs, o.messages)
	return Snapshot{
		ID:        o.id,
		State:     o.state,
		CreatedAt: o.createdAt,
		Config:    o.config,
		Messages:  msgs,
	}
}

// Run executes the turn-taking loop until the message limit is reached, a
// stop is requested, or a generation call fails. It is intended to run on
// its own goroutine; call it at most once.
func (o *Orchestrator) Run(ctx context.Context) {
	o.setState(StateRunning)

	if o.stopped() || ctx.Err() != nil {
		o.setState(StateCompleted)
		return
	}

	// Participant A opens the exchange from an empty history, with the
	// seed prompt folded into its persona instructions.
	first := o.config.AI1
	persona := first.Persona
	if persona != "" {
		persona += "\n\n"
	}
	persona += "Respond to this initial prompt: " + o.config.InitialPrompt

	result, err := o.gen.Generate(ctx, GenerateRequest{
		Provider:  first.Provider,
		Model:     first.Model,
		Persona:   persona,
		Speaker:   SenderAI1,
		MaxTokens: o.config.MaxTokensPerResponse,
	})
	if err != nil {
		o.fail(err)
		return
	}
	o.append(SenderAI1, result.Text, result.Tokens)

	produced := 1
	turn := SenderAI2

	for produced < o.config.MessageLimit && !o.stopped() && ctx.Err() == nil {
		// Suspension point: wait out a pause. Stop opens the gate too,
		// so a paused loop wakes and observes it below.
		select {
		case <-o.gate.wait():
		case <-o.stop:
		case <-ctx.Done():
		}
		if o.stopped() || ctx.Err() != nil {
			break
		}

		pc := o.config.AI1
		if turn == SenderAI2 {
			pc = o.config.AI2
		}

		result, err := o.gen.Generate(ctx, GenerateRequest{
			Provider:  pc.Provider,
			Model:     pc.Model,
			Persona:   pc.Persona,
			Speaker:   turn,
			History:   o.historySnapshot(),
			MaxTokens: o.config.MaxTokensPerResponse,
		})
		if err != nil {
			o.fail(err)
			return
		}
		o.append(turn, result.Text, result.Tokens)
		produced++
		turn = turn.Other()

		if o.config.MessageDelayMS > 0 && produced < o.config.MessageLimit {
			o.sleep(ctx, time.Duration(o.config.MessageDelayMS)*time.Millisecond)
		}
	}

	o.setState(StateCompleted)
}

// Pause shuts the cooperative gate. The loop blocks before its next
// generation call; a call already in flight is allowed to complete.
func (o *Orchestrator) Pause() {
	o.gate.clear()
	o.setState(StatePaused)
	o.logger.Debug("conversation paused")
}

// Resume opens the gate. Idempotent when the conversation is not paused.
func (o *Orchestrator) Resume() {
	o.gate.set()
	o.setState(StateRunning)
	o.logger.Debug("conversation resumed")
}

// Stop requests termination. The externally visible state flips to
// completed immediately; the loop converges to the same terminal state
// once it next checks the flag. The gate is opened so a paused loop can
// wake up and observe the stop.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() { close(o.stop) })
	o.gate.set()
	o.setState(StateCompleted)
	o.logger.Debug("conversation stopped")
}

// Subscribe returns a live event stream for this conversation. The stream
// first replays every message accumulated so far, then switches to live
// events, and ends after delivering a terminal status update. Cancelling
// ctx ends only this subscriber.
func (o *Orchestrator) Subscribe(ctx context.Context) <-chan Event {
	// History snapshot and live attachment must happen atomically with
	// respect to the loop's append+publish, or a message could be both
	// replayed and delivered live, or missed entirely.
	o.mu.Lock()
	history := make([]Message, len(o.messages))
	copy(history, o.messages)
	state := o.state
	var live <-chan Event
	if !state.Terminal() {
		live = o.bus.Subscribe(ctx)
	}
	o.mu.Unlock()

	out := make(chan Event)
	go func() {
		defer close(out)

		for i := range history {
			select {
			case out <- Event{Type: EventMessage, Message: &history[i]}:
			case <-ctx.Done():
				return
			}
		}

		if live == nil {
			// Already finished: deliver the terminal status and end.
			select {
			case out <- Event{Type: EventStatusUpdate, State: state}:
			case <-ctx.Done():
			}
			return
		}

		for ev := range live {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// historySnapshot copies the transcript for a generation call.
func (o *Orchestrator) historySnapshot() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	msgs := make([]Message, len(o.messages))
	copy(msgs, o.messages)
	return msgs
}

// append adds a message to the transcript and publishes it. Appending and
// publishing share the orchestrator lock so subscribers attaching in
// Subscribe never see a gap between replay and live events.
func (o *Orchestrator) append(sender Sender, content string, tokens *int) {
	msg := Message{
		ID:             uuid.New().String(),
		ConversationID: o.id,
		Sender:         sender,
		Content:        content,
		Timestamp:      time.Now().UTC(),
		Tokens:         tokens,
	}
	o.mu.Lock()
	o.messages = append(o.messages, msg)
	o.bus.Publish(Event{Type: EventMessage, Message: &msg})
	o.mu.Unlock()
}

// setState transitions the state machine and publishes a status update.
// Terminal states are sinks: once completed or error, further transitions
// are ignored, which is what lets Stop flip the state synchronously while
// the loop finishes its iteration.
func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	if o.state == s || o.state.Terminal() {
		o.mu.Unlock()
		return
	}
	o.state = s
	o.bus.Publish(Event{Type: EventStatusUpdate, State: s})
	o.mu.Unlock()
}

// fail records a generation failure: a system message first, then the
// terminal error status, so subscribers see the failure in-band before
// their streams end.
func (o *Orchestrator) fail(err error) {
	o.logger.Error("generation failed", "error", err)
	o.append(SenderSystem, fmt.Sprintf("Error: %v", err), nil)
	o.setState(StateError)
}

// stopped reports whether Stop has been called.
func (o *Orchestrator) stopped() bool {
	select {
	case <-o.stop:
		return true
	default:
		return false
	}
}

// sleep suspends the loop for the inter-message delay. A stop request or
// context cancellation interrupts it.
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-o.stop:
	case <-ctx.Done():
	}
}
