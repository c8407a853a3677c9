package events

import "sync"

// Observers is an ordered list of callbacks for one event.
// Registration is safe from any goroutine; Emit invokes callbacks
// synchronously in registration order.
type Observers[T any] struct {
	mu  sync.RWMutex
	fns []func(T)
}

// On registers fn.
func (o *Observers[T]) On(fn func(T)) {
	if fn == nil {
		return
	}
	o.mu.Lock()
	o.fns = append(o.fns, fn)
	o.mu.Unlock()
}

// Emit calls every registered callback with v.
func (o *Observers[T]) Emit(v T) {
	o.mu.RLock()
	fns := o.fns
	o.mu.RUnlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Forward returns a callback that re-emits its argument on o.
// It is how a component re-exposes a collaborator's event under its own name.
func (o *Observers[T]) Forward() func(T) {
	return o.Emit
}

// Len reports the number of registered callbacks.
func (o *Observers[T]) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.fns)
}

// Signal is an Observers list for events that carry no payload.
type Signal struct {
	obs Observers[struct{}]
}

// On registers fn.
func (s *Signal) On(fn func()) {
	if fn == nil {
		return
	}
	s.obs.On(func(struct{}) { fn() })
}

// Emit calls every registered callback.
func (s *Signal) Emit() {
	s.obs.Emit(struct{}{})
}
