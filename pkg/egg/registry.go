package egg

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// Registry errors.
var (
	ErrNoKey    = errors.New("descriptor has no trigger key")
	ErrNoAction = errors.New("descriptor has no action")
)

// Descriptor describes a registered special action.
type Descriptor struct {
	// Key is the trigger token: a digit sequence like "911", or an
	// event name for button-triggered actions.
	Key string

	// Label is shown on the panel when the action triggers.
	Label string

	// Message is the operator log line announcing the trigger.
	Message string

	// Action runs when the trigger passes the cooldown gate.
	Action Action

	// Cleanup runs once when the timed effect expires. Nil for
	// instant actions.
	Cleanup func()

	// Cooldown is the minimum interval between activations.
	Cooldown time.Duration

	// EffectDuration is how long the effect stays active before
	// Cleanup runs. Zero for instant actions.
	EffectDuration time.Duration

	// Description summarizes the action for status listings.
	Description string
}

// Timed reports whether the action schedules a cleanup on activation.
func (d Descriptor) Timed() bool {
	return d.EffectDuration > 0 && d.Cleanup != nil
}

// Registry holds special actions keyed by trigger token. The default
// set is registered during setup; more can be added at runtime.
// Registration is add-only and last-write-wins.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Descriptor)}
}

// Register adds or replaces the action for d.Key.
func (r *Registry) Register(d Descriptor) error {
	if d.Key == "" {
		return ErrNoKey
	}
	if d.Action == nil {
		return ErrNoAction
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[d.Key] = d
	return nil
}

// Lookup returns the descriptor registered for a trigger token.
func (r *Registry) Lookup(key string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.actions[key]
	return d, ok
}

// Contains reports whether key is a registered trigger token.
func (r *Registry) Contains(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.actions[key]
	return ok
}

// Keys returns all registered trigger tokens, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.actions))
	for key := range r.actions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// All returns all registered descriptors, sorted by key.
func (r *Registry) All() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Descriptor, 0, len(r.actions))
	for _, d := range r.actions {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })
	return all
}

// Count returns the number of registered actions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actions)
}
