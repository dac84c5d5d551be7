// ABOUTME: Resettable gate used as the cooperative pause/resume signal
// ABOUTME: The turn loop waits on it only at defined suspension points

package conversation

import "sync"

// gate is a resettable "may proceed" signal. It starts open. Clearing it
// swaps in a fresh unclosed channel so waiters block; setting it closes
// the current channel so waiters proceed.
type gate struct {
	mu sync.Mutex
	ch chan struct{}
}

func newGate() *gate {
	g := &gate{ch: make(chan struct{})}
	close(g.ch)
	return g
}

// set opens the gate. Idempotent.
func (g *gate) set() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.ch:
	default:
		close(g.ch)
	}
}

// clear shuts the gate so that wait() blocks. Idempotent.
func (g *gate) clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.ch:
		g.ch = make(chan struct{})
	default:
	}
}

// wait returns a channel that is closed while the gate is open.
func (g *gate) wait() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ch
}
