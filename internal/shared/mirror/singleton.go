package mirror

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
)

// Singleton mirrors one remote document that may be absent.
type Singleton[T any] struct {
	store  docstore.Store
	path   string
	decode Decoder[T]
	opts   options
	runner *runner

	mu       sync.RWMutex
	value    T
	present  bool
	onChange listeners[func(T, bool)]
}

// NewSingleton builds an idle singleton mirror for path.
func NewSingleton[T any](store docstore.Store, path string, decode Decoder[T], opts ...Option) *Singleton[T] {
	s := &Singleton[T]{
		store:  store,
		path:   path,
		decode: decode,
		opts:   buildOptions(opts),
	}
	s.runner = newRunner(path, s.subscribe, s.opts)
	return s
}

func (s *Singleton[T]) Start(ctx context.Context) error {
	return s.runner.start(ctx)
}

func (s *Singleton[T]) Stop() {
	s.runner.stop()
}

func (s *Singleton[T]) WaitReady(ctx context.Context) error {
	return s.runner.waitReady(ctx)
}

// Current returns the cached value and whether the remote document exists.
func (s *Singleton[T]) Current() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.present
}

// OnChange registers fn to run after every delivery, including absence.
func (s *Singleton[T]) OnChange(fn func(value T, present bool)) (cancel func()) {
	return s.onChange.add(fn)
}

func (s *Singleton[T]) Healthy() bool {
	return s.runner.isHealthy()
}

func (s *Singleton[T]) LastError() error {
	return s.runner.lastError()
}

func (s *Singleton[T]) subscribe(ctx context.Context, onError docstore.ErrorFunc) (docstore.Unsubscribe, error) {
	return s.store.SubscribeSingleton(ctx, s.path, s.replace, onError)
}

func (s *Singleton[T]) replace(record *docstore.Record) {
	var value T
	present := false
	if record != nil {
		decoded, err := s.decode(*record)
		if err != nil {
			// Keep the previous value; a bad write should not blank the cache.
			s.opts.logger.Warn("skipping undecodable document",
				slog.String("path", s.path),
				slog.String("error", err.Error()),
			)
			s.runner.markDelivered()
			return
		}
		value, present = decoded, true
	}

	s.mu.Lock()
	s.value, s.present = value, present
	s.mu.Unlock()
	s.runner.markDelivered()

	s.onChange.each(func(fn func(T, bool)) { fn(value, present) })
}
