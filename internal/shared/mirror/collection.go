package mirror

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
)

// Decoder turns a stored record into a domain value.
type Decoder[T any] func(record docstore.Record) (T, error)

// Collection mirrors a remote collection. Every remote change replaces the
// cached snapshot wholesale.
type Collection[T any] struct {
	store      docstore.Store
	collection string
	decode     Decoder[T]
	opts       options
	runner     *runner

	mu       sync.RWMutex
	snapshot []T
	onChange listeners[func([]T)]
}

// NewCollection builds an idle mirror; call Start to subscribe.
func NewCollection[T any](store docstore.Store, collection string, decode Decoder[T], opts ...Option) *Collection[T] {
	c := &Collection[T]{
		store:      store,
		collection: collection,
		decode:     decode,
		opts:       buildOptions(opts),
		snapshot:   []T{},
	}
	c.runner = newRunner(collection, c.subscribe, c.opts)
	return c
}

// Start opens the subscription in the background and keeps it open until Stop.
func (c *Collection[T]) Start(ctx context.Context) error {
	return c.runner.start(ctx)
}

// Stop closes the subscription. The last snapshot stays readable.
func (c *Collection[T]) Stop() {
	c.runner.stop()
}

// WaitReady blocks until the first snapshot arrives or ctx ends.
func (c *Collection[T]) WaitReady(ctx context.Context) error {
	return c.runner.waitReady(ctx)
}

// CurrentSnapshot returns a copy of the latest snapshot without blocking on the remote store.
func (c *Collection[T]) CurrentSnapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.snapshot))
	copy(out, c.snapshot)
	return out
}

// OnChange registers fn to run after every snapshot replacement.
func (c *Collection[T]) OnChange(fn func([]T)) (cancel func()) {
	return c.onChange.add(fn)
}

// Healthy reports whether the subscription is currently live.
func (c *Collection[T]) Healthy() bool {
	return c.runner.isHealthy()
}

// LastError returns the most recent subscription failure, or nil once healthy again.
func (c *Collection[T]) LastError() error {
	return c.runner.lastError()
}

func (c *Collection[T]) subscribe(ctx context.Context, onError docstore.ErrorFunc) (docstore.Unsubscribe, error) {
	return c.store.Subscribe(ctx, c.collection, c.replace, onError)
}

func (c *Collection[T]) replace(records []docstore.Record) {
	next := make([]T, 0, len(records))
	for _, record := range records {
		value, err := c.decode(record)
		if err != nil {
			c.opts.logger.Warn("skipping undecodable record",
				slog.String("collection", c.collection),
				slog.String("id", record.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		next = append(next, value)
	}

	c.mu.Lock()
	c.snapshot = next
	c.mu.Unlock()
	c.runner.markDelivered()

	c.onChange.each(func(fn func([]T)) {
		out := make([]T, len(next))
		copy(out, next)
		fn(out)
	})
}
