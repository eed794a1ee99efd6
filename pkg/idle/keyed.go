package idle

import "time"

// KeyedDebouncer keeps one independent Debouncer per key, so idle
// notifications from different sessions never suppress each other.
type KeyedDebouncer struct {
	cooldown   time.Duration
	debouncers map[string]*Debouncer
}

// NewKeyedDebouncer creates an empty keyed debouncer.
func NewKeyedDebouncer(cooldown time.Duration) *KeyedDebouncer {
	return &KeyedDebouncer{
		cooldown:   cooldown,
		debouncers: make(map[string]*Debouncer),
	}
}

// OnIdle feeds the notification to the debouncer owned by key, creating it on
// first use.
func (k *KeyedDebouncer) OnIdle(key string, now time.Time) Outcome {
	d, ok := k.debouncers[key]
	if !ok {
		d = NewDebouncer(k.cooldown)
		k.debouncers[key] = d
	}
	return d.OnIdle(now)
}

// State returns the state for key and whether the key has been seen.
func (k *KeyedDebouncer) State(key string) (State, bool) {
	d, ok := k.debouncers[key]
	if !ok {
		return State{}, false
	}
	return d.State(), true
}

// Len returns the number of tracked keys.
func (k *KeyedDebouncer) Len() int {
	return len(k.debouncers)
}
