// Package models tracks template-model providers: values registered under a
// namespace and name that engines expose to every template they evaluate.
// Providers come and go while renders are in flight, so consumers list them
// fresh for each use instead of caching the result.
package models

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Provider supplies one named template model.
type Provider interface {
	Namespace() string
	Name() string
	// Ranking orders providers sharing a namespace and name. Higher ranking
	// wins.
	Ranking() int
	Model() any
}

// Static returns a Provider for a fixed model value.
func Static(namespace, name string, ranking int, model any) Provider {
	return staticProvider{namespace: namespace, name: name, ranking: ranking, model: model}
}

type staticProvider struct {
	namespace string
	name      string
	ranking   int
	model     any
}

func (p staticProvider) Namespace() string { return p.namespace }
func (p staticProvider) Name() string      { return p.name }
func (p staticProvider) Ranking() int      { return p.ranking }
func (p staticProvider) Model() any        { return p.model }

// EventKind distinguishes registry notifications.
type EventKind int

const (
	Registered EventKind = iota + 1
	Unregistered
)

func (k EventKind) String() string {
	switch k {
	case Registered:
		return "registered"
	case Unregistered:
		return "unregistered"
	default:
		return "unknown"
	}
}

// Event describes a provider entering or leaving the registry.
type Event struct {
	Kind     EventKind
	Provider Provider
}

type entry struct {
	id       int64
	provider Provider
}

// Registry holds the currently registered providers. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	nextID   int64
	entries  map[int64]entry
	trackers map[*Tracker]struct{}
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:  make(map[int64]entry),
		trackers: make(map[*Tracker]struct{}),
	}
}

// Register adds a provider. The returned Registration removes it again.
func (r *Registry) Register(provider Provider) (*Registration, error) {
	if r == nil {
		return nil, errors.New("models: registry is nil")
	}
	if provider == nil {
		return nil, errors.New("models: provider is required")
	}

	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.entries[id] = entry{id: id, provider: provider}
	trackers := r.trackerSnapshot()
	r.mu.Unlock()

	notify(trackers, Event{Kind: Registered, Provider: provider})
	return &Registration{registry: r, id: id}, nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(provider Provider) *Registration {
	reg, err := r.Register(provider)
	if err != nil {
		panic(err)
	}
	return reg
}

// List returns the registered providers sorted by ascending ranking. Among
// equal rankings the most recent registration comes first, so walking the
// list and overwriting on collision leaves the highest ranking, earliest
// registered provider in place.
func (r *Registry) List() []Provider {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	entries := make([]entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		ri, rj := entries[i].provider.Ranking(), entries[j].provider.Ranking()
		if ri == rj {
			return entries[i].id > entries[j].id
		}
		return ri < rj
	})

	providers := make([]Provider, len(entries))
	for idx, e := range entries {
		providers[idx] = e.provider
	}
	return providers
}

// Len reports the number of registered providers.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Track opens a Tracker over the registry. onChange, when non-nil, is called
// synchronously after every registration change until the tracker closes.
func (r *Registry) Track(onChange func(Event)) *Tracker {
	t := &Tracker{registry: r, onChange: onChange}
	if r == nil {
		t.closed = true
		return t
	}
	r.mu.Lock()
	r.trackers[t] = struct{}{}
	r.mu.Unlock()
	return t
}

func (r *Registry) unregister(id int64) bool {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	trackers := r.trackerSnapshot()
	r.mu.Unlock()

	if ok {
		notify(trackers, Event{Kind: Unregistered, Provider: e.provider})
	}
	return ok
}

func (r *Registry) untrack(t *Tracker) {
	r.mu.Lock()
	delete(r.trackers, t)
	r.mu.Unlock()
}

// trackerSnapshot must be called with r.mu held.
func (r *Registry) trackerSnapshot() []*Tracker {
	if len(r.trackers) == 0 {
		return nil
	}
	out := make([]*Tracker, 0, len(r.trackers))
	for t := range r.trackers {
		out = append(out, t)
	}
	return out
}

func notify(trackers []*Tracker, event Event) {
	for _, t := range trackers {
		t.notify(event)
	}
}

// Registration is the handle returned by Register.
type Registration struct {
	registry *Registry
	id       int64
	once     sync.Once
}

// Unregister removes the provider. Calling it more than once is a no-op.
func (r *Registration) Unregister() {
	if r == nil || r.registry == nil {
		return
	}
	r.once.Do(func() {
		r.registry.unregister(r.id)
	})
}

func (r *Registration) String() string {
	if r == nil {
		return "registration(nil)"
	}
	return fmt.Sprintf("registration(%d)", r.id)
}
