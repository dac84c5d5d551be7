// ABOUTME: Process-wide registry mapping conversation ids to orchestrators
// ABOUTME: A background sweep evicts terminal conversations past the retention window

package conversation

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrNotFound is returned for commands against an unknown conversation id.
var ErrNotFound = errors.New("conversation not found")

// Registry owns the id-to-orchestrator map. It is constructed once at
// process start and injected into the serving layer. Orchestrators never
// evict themselves; the registry's sweep goroutine removes terminal
// entries older than the retention window.
type Registry struct {
	mu            sync.RWMutex
	conversations map[string]*Orchestrator

	sweepInterval time.Duration
	retention     time.Duration
	logger        *slog.Logger

	done   chan struct{}
	closed bool
}

// NewRegistry creates a registry and starts its eviction sweep.
func NewRegistry(sweepInterval, retention time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		conversations: make(map[string]*Orchestrator),
		sweepInterval: sweepInterval,
		retention:     retention,
		logger:        logger.With("component", "registry"),
		done:          make(chan struct{}),
	}
	go r.sweep()
	return r
}

// Add registers an orchestrator under its id.
func (r *Registry) Add(o *Orchestrator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[o.ID()] = o
}

// Get looks up an orchestrator. Returns ErrNotFound for unknown ids.
func (r *Registry) Get(id string) (*Orchestrator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

// List returns all registered orchestrators in unspecified order.
func (r *Registry) List() []*Orchestrator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Orchestrator, 0, len(r.conversations))
	for _, o := range r.conversations {
		out = append(out, o)
	}
	return out
}

// Remove deletes an entry. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conversations, id)
}

// Len returns the number of registered conversations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conversations)
}

// sweep runs in a background goroutine, periodically evicting finished
// conversations past the retention window.
func (r *Registry) sweep() {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.runSweep(time.Now())
		case <-r.done:
			return
		}
	}
}

// runSweep removes every terminal conversation whose age since creation
// exceeds the retention window.
func (r *Registry) runSweep(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for id, o := range r.conversations {
		if o.State().Terminal() && now.Sub(o.CreatedAt()) > r.retention {
			delete(r.conversations, id)
			evicted = append(evicted, id)
		}
	}
	if len(evicted) > 0 {
		r.logger.Info("evicted finished conversations",
			"count", len(evicted),
			"remaining", len(r.conversations))
	}
}

// Close stops the sweep goroutine. Safe to call more than once.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		close(r.done)
		r.closed = true
	}
}
