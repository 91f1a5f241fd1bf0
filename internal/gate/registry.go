package gate

import (
	"sync"
	"time"
)

// Registry hands out one Gate per client key (session ID for signed-in
// clients, install ID otherwise) so de-duplication state is tracked per app
// shell, not globally.
type Registry struct {
	mu      sync.Mutex
	gates   map[string]*registryEntry
	opts    []Option
	cool    time.Duration
	now     func() time.Time
	maxIdle time.Duration
}

type registryEntry struct {
	gate     *Gate
	lastSeen time.Time
}

// NewRegistry builds a registry whose gates share the given cool-down and
// options. Gates idle for an hour are evicted lazily on the next access.
func NewRegistry(cooldown time.Duration, opts ...Option) *Registry {
	return &Registry{
		gates:   make(map[string]*registryEntry),
		opts:    opts,
		cool:    cooldown,
		now:     time.Now,
		maxIdle: time.Hour,
	}
}

// Get returns the gate for the key, creating it on first sight.
func (r *Registry) Get(key string) *Gate {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.evictIdleLocked(now)

	if e, ok := r.gates[key]; ok {
		e.lastSeen = now
		return e.gate
	}
	g := New(r.cool, r.opts...)
	r.gates[key] = &registryEntry{gate: g, lastSeen: now}
	return g
}

// Len reports the number of tracked gates. Test helper.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.gates)
}

func (r *Registry) evictIdleLocked(now time.Time) {
	for key, e := range r.gates {
		if now.Sub(e.lastSeen) > r.maxIdle {
			delete(r.gates, key)
		}
	}
}
