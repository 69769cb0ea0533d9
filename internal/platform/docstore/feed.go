package docstore

import "sync"

// Feed delivers values to a subscriber callback from a dedicated goroutine.
// Only the most recent undelivered value is kept, so a slow subscriber sees
// fewer but never stale snapshots. Callbacks may call back into the store.
type Feed[T any] struct {
	mu         sync.Mutex
	pending    T
	hasPending bool
	err        error
	closed     bool

	wake chan struct{}
	done chan struct{}
	once sync.Once

	deliver func(T)
	fail    func(error)
}

// NewFeed starts the delivery goroutine.
func NewFeed[T any](deliver func(T), fail func(error)) *Feed[T] {
	f := &Feed[T]{
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		deliver: deliver,
		fail:    fail,
	}
	go f.run()
	return f
}

// Push replaces the pending value.
func (f *Feed[T]) Push(v T) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.pending = v
	f.hasPending = true
	f.mu.Unlock()
	f.signal()
}

// Fail delivers err after any pending value and terminates the feed.
func (f *Feed[T]) Fail(err error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.err = err
	f.mu.Unlock()
	f.signal()
}

// Close stops delivery. A callback already running is allowed to finish.
func (f *Feed[T]) Close() {
	f.once.Do(func() {
		f.mu.Lock()
		f.closed = true
		f.mu.Unlock()
		close(f.done)
	})
}

func (f *Feed[T]) signal() {
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

func (f *Feed[T]) run() {
	for {
		select {
		case <-f.done:
			return
		case <-f.wake:
		}
		f.mu.Lock()
		value, ok := f.pending, f.hasPending
		var zero T
		f.pending, f.hasPending = zero, false
		err := f.err
		f.err = nil
		f.mu.Unlock()

		if ok && f.deliver != nil {
			f.deliver(value)
		}
		if err != nil {
			f.Close()
			if f.fail != nil {
				f.fail(err)
			}
			return
		}
	}
}
