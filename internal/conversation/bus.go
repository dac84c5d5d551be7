// ABOUTME: Ordered single-producer broadcast bus for conversation events
// ABOUTME: Per-subscriber cursors over an unbounded buffer; no event is ever dropped

package conversation

import (
	"context"
	"sync"
)

// Bus delivers every published event to every subscriber in publish order.
// The producer appends to an unbounded ordered buffer and never blocks;
// each subscriber drains from its own cursor, so a slow subscriber cannot
// lose events or affect other subscribers.
//
// Subscriptions begin at the buffer tail: a subscriber sees only events
// published after it attached. History replay is the orchestrator's job,
// read from its message list rather than from the bus.
type Bus struct {
	mu     sync.Mutex
	cond   *sync.Cond
	events []Event
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	b := &Bus{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Publish appends an event and wakes all waiting subscribers. It never
// blocks. Publishing to a closed bus is a no-op.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.events = append(b.events, ev)
	b.cond.Broadcast()
}

// Subscribe attaches a new subscriber at the current buffer tail and
// returns a channel of events in publish order. The channel is closed
// after a terminal status event is delivered, when ctx is cancelled, or
// when the bus is closed and the subscriber has drained its cursor.
// Cancelling one subscriber has no effect on the producer or on other
// subscribers.
func (b *Bus) Subscribe(ctx context.Context) <-chan Event {
	b.mu.Lock()
	cursor := len(b.events)
	b.mu.Unlock()

	out := make(chan Event)

	// cond.Wait cannot observe ctx directly; wake all waiters on cancel
	// and let each re-check its own context.
	unregister := context.AfterFunc(ctx, func() {
		b.cond.Broadcast()
	})

	go func() {
		defer close(out)
		defer unregister()

		for {
			b.mu.Lock()
			for cursor >= len(b.events) && !b.closed && ctx.Err() == nil {
				b.cond.Wait()
			}
			if ctx.Err() != nil || cursor >= len(b.events) {
				b.mu.Unlock()
				return
			}
			ev := b.events[cursor]
			cursor++
			b.mu.Unlock()

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
			if ev.Terminal() {
				return
			}
		}
	}()

	return out
}

// Close stops the bus. Subscribers finish draining whatever their cursors
// have not yet delivered, then their channels close. Safe to call more
// than once.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cond.Broadcast()
}
