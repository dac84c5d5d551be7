// ABOUTME: Tests for the conversation registry and its eviction sweep
// ABOUTME: Only terminal conversations past the retention window are evicted

package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, interval, retention time.Duration) *Registry {
	t.Helper()
	r := NewRegistry(interval, retention, testLogger())
	t.Cleanup(r.Close)
	return r
}

func TestRegistry_AddGetRemove(t *testing.T) {
	r := newTestRegistry(t, time.Hour, time.Hour)

	o := New("conv-1", testConfig(2), &scriptedGenerator{}, testLogger())
	r.Add(o)

	got, err := r.Get("conv-1")
	require.NoError(t, err)
	assert.Same(t, o, got)
	assert.Equal(t, 1, r.Len())

	r.Remove("conv-1")
	_, err = r.Get("conv-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_GetUnknownID(t *testing.T) {
	r := newTestRegistry(t, time.Hour, time.Hour)

	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_SweepEvictsOnlyOldTerminalEntries(t *testing.T) {
	r := newTestRegistry(t, time.Hour, time.Hour)

	finished := New("finished", testConfig(2), &scriptedGenerator{}, testLogger())
	finished.Stop() // terminal
	live := New("live", testConfig(2), &scriptedGenerator{}, testLogger())

	r.Add(finished)
	r.Add(live)

	// Within the retention window nothing is evicted, terminal or not.
	r.runSweep(finished.CreatedAt().Add(time.Minute))
	assert.Equal(t, 2, r.Len(), "nothing is old enough yet")

	r.runSweep(finished.CreatedAt().Add(2 * time.Hour))
	_, err := r.Get("finished")
	assert.ErrorIs(t, err, ErrNotFound, "old terminal entry must be evicted")
	_, err = r.Get("live")
	assert.NoError(t, err, "non-terminal entries are never evicted")
}

func TestRegistry_BackgroundSweepRuns(t *testing.T) {
	r := newTestRegistry(t, 10*time.Millisecond, 0)

	o := New("conv-1", testConfig(2), &scriptedGenerator{}, testLogger())
	o.Stop()
	r.Add(o)

	require.Eventually(t, func() bool {
		_, err := r.Get("conv-1")
		return err != nil
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRegistry_ListReturnsAllEntries(t *testing.T) {
	r := newTestRegistry(t, time.Hour, time.Hour)

	r.Add(New("a", testConfig(2), &scriptedGenerator{}, testLogger()))
	r.Add(New("b", testConfig(2), &scriptedGenerator{}, testLogger()))

	all := r.List()
	assert.Len(t, all, 2)
}
