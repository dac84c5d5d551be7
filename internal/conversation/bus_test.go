// ABOUTME: Tests for the ordered broadcast bus
// ABOUTME: Covers publish order, independent cursors, terminal semantics, cancellation

package conversation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageEvent(id string) Event {
	return Event{Type: EventMessage, Message: &Message{ID: id, Sender: SenderAI1, Content: "hi", Timestamp: time.Now()}}
}

func collectEvents(t *testing.T, ch <-chan Event, n int) []Event {
	t.Helper()
	out := make([]Event, 0, n)
	for len(out) < n {
		select {
		case ev, ok := <-ch:
			require.True(t, ok, "stream closed after %d of %d events", len(out), n)
			out = append(out, ev)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d events", len(out), n)
		}
	}
	return out
}

func requireClosed(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.False(t, ok, "expected closed stream, got event %+v", ev)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream to close")
	}
}

func TestBus_DeliversInPublishOrder(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe(t.Context())

	for i := 0; i < 10; i++ {
		b.Publish(messageEvent(fmt.Sprintf("evt-%d", i)))
	}

	got := collectEvents(t, ch, 10)
	for i, ev := range got {
		assert.Equal(t, fmt.Sprintf("evt-%d", i), ev.Message.ID)
	}
}

func TestBus_SlowSubscriberLosesNothing(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe(t.Context())

	// Publisher must never block, even with no one draining.
	for i := 0; i < 1000; i++ {
		b.Publish(messageEvent(fmt.Sprintf("evt-%d", i)))
	}

	got := collectEvents(t, ch, 1000)
	for i, ev := range got {
		require.Equal(t, fmt.Sprintf("evt-%d", i), ev.Message.ID)
	}
}

func TestBus_MultipleSubscribersEachGetEverything(t *testing.T) {
	b := NewBus()
	ch1 := b.Subscribe(t.Context())
	ch2 := b.Subscribe(t.Context())

	b.Publish(messageEvent("a"))
	b.Publish(messageEvent("b"))

	for _, ch := range []<-chan Event{ch1, ch2} {
		got := collectEvents(t, ch, 2)
		assert.Equal(t, "a", got[0].Message.ID)
		assert.Equal(t, "b", got[1].Message.ID)
	}
}

func TestBus_LateSubscriberSeesOnlyNewEvents(t *testing.T) {
	b := NewBus()
	b.Publish(messageEvent("before"))

	ch := b.Subscribe(t.Context())
	b.Publish(messageEvent("after"))

	got := collectEvents(t, ch, 1)
	assert.Equal(t, "after", got[0].Message.ID)
}

func TestBus_TerminalStatusEndsStream(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe(t.Context())

	b.Publish(messageEvent("a"))
	b.Publish(Event{Type: EventStatusUpdate, State: StateCompleted})
	b.Publish(messageEvent("late"))

	got := collectEvents(t, ch, 2)
	assert.Equal(t, EventMessage, got[0].Type)
	assert.Equal(t, StateCompleted, got[1].State)
	requireClosed(t, ch)
}

func TestBus_NonTerminalStatusDoesNotEndStream(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe(t.Context())

	b.Publish(Event{Type: EventStatusUpdate, State: StatePaused})
	b.Publish(messageEvent("a"))

	got := collectEvents(t, ch, 2)
	assert.Equal(t, StatePaused, got[0].State)
	assert.Equal(t, "a", got[1].Message.ID)
}

func TestBus_CancellingOneSubscriberDoesNotAffectOthers(t *testing.T) {
	b := NewBus()

	ctx1, cancel1 := context.WithCancel(t.Context())
	ch1 := b.Subscribe(ctx1)
	ch2 := b.Subscribe(t.Context())

	cancel1()
	requireClosed(t, ch1)

	b.Publish(messageEvent("a"))
	got := collectEvents(t, ch2, 1)
	assert.Equal(t, "a", got[0].Message.ID)
}

func TestBus_CloseEndsSubscribersAfterDrain(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe(t.Context())

	b.Publish(messageEvent("a"))
	b.Close()

	got := collectEvents(t, ch, 1)
	assert.Equal(t, "a", got[0].Message.ID)
	requireClosed(t, ch)

	// Publishing after close is a no-op rather than a panic.
	b.Publish(messageEvent("ignored"))
}
