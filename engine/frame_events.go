package engine

import (
	"sync"

	"github.com/Carmen-Shannon/framebox/engine/camera"
)

// frameBeginRegistry tracks frame-begin callbacks registered through
// Engine.SubscribeFrameBegin. The render loop dispatches all callbacks once
// per rendered frame, before the frame's render pass begins, so staged buffer
// clears apply to the frame about to be drawn.
type frameBeginRegistry struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]func()
}

func newFrameBeginRegistry() *frameBeginRegistry {
	return &frameBeginRegistry{
		nextID: 1,
		subs:   make(map[uint64]func()),
	}
}

// subscribe registers a callback and returns its cancelable handle.
func (r *frameBeginRegistry) subscribe(fn func()) camera.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	return &frameBeginSubscription{registry: r, id: id}
}

// dispatch invokes all registered callbacks. The callback list is snapshotted
// under the lock and invoked outside it, so callbacks may cancel their own
// subscription (or register new ones) without deadlocking.
func (r *frameBeginRegistry) dispatch() {
	r.mu.Lock()
	fns := make([]func(), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// count returns the number of live subscriptions.
func (r *frameBeginRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// frameBeginSubscription is the Subscription handle returned by subscribe.
// Cancel is idempotent via sync.Once.
type frameBeginSubscription struct {
	registry *frameBeginRegistry
	id       uint64
	once     sync.Once
}

var _ camera.Subscription = &frameBeginSubscription{}

func (s *frameBeginSubscription) Cancel() {
	s.once.Do(func() {
		s.registry.mu.Lock()
		delete(s.registry.subs, s.id)
		s.registry.mu.Unlock()
	})
}
