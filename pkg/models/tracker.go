package models

import "sync"

// Tracker is an open view over a Registry. Providers reads the registry at
// call time; a closed tracker reports nothing.
type Tracker struct {
	registry *Registry
	onChange func(Event)

	mu     sync.RWMutex
	closed bool
}

// Providers returns the currently registered providers in ranking order.
func (t *Tracker) Providers() []Provider {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return nil
	}
	return t.registry.List()
}

// Close stops tracking. It is safe to call more than once.
func (t *Tracker) Close() {
	if t == nil {
		return
	}
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	if t.registry != nil {
		t.registry.untrack(t)
	}
}

// Closed reports whether Close has been called.
func (t *Tracker) Closed() bool {
	if t == nil {
		return true
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

func (t *Tracker) notify(event Event) {
	if t.onChange == nil || t.Closed() {
		return
	}
	t.onChange(event)
}
