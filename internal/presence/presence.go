// Package presence tracks the display names currently connected. The roster
// is process-local and rebuilt empty on restart.
package presence

import "sync"

// Tracker is a mutex-guarded set of live display names. Two connections
// holding the same name are indistinguishable here.
type Tracker struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{names: make(map[string]struct{})}
}

// Join adds a name to the live set. Idempotent.
func (t *Tracker) Join(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.names[name] = struct{}{}
}

// Leave removes a name. No-op when absent (covers the rename race where the
// old name was already replaced).
func (t *Tracker) Leave(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.names, name)
}

// Rename swaps oldName for newName. No-op when equal.
func (t *Tracker) Rename(oldName, newName string) {
	if oldName == newName {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.names, oldName)
	t.names[newName] = struct{}{}
}

// Snapshot returns a copy of the current roster, order-independent.
func (t *Tracker) Snapshot() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.names))
	for n := range t.names {
		out = append(out, n)
	}
	return out
}
