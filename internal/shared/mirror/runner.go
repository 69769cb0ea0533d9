// Package mirror keeps read-only local copies of remote collections current by
// holding a subscription open and resubscribing after failures.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
	"github.com/Apurer/go-gin-pos-server/internal/shared/fault"
)

// ErrAlreadyStarted is returned by Start on a running mirror.
var ErrAlreadyStarted = errors.New("mirror already started")

type options struct {
	logger     *slog.Logger
	newBackOff func() backoff.BackOff
}

// Option configures a mirror.
type Option func(*options)

// WithLogger routes mirror diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBackOff overrides the resubscribe schedule. The factory runs once per Start.
func WithBackOff(factory func() backoff.BackOff) Option {
	return func(o *options) {
		if factory != nil {
			o.newBackOff = factory
		}
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default(), newBackOff: defaultBackOff}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

type subscribeFunc func(ctx context.Context, onError docstore.ErrorFunc) (docstore.Unsubscribe, error)

// runner owns the subscription loop shared by collection and singleton mirrors.
type runner struct {
	name      string
	subscribe subscribeFunc
	opts      options

	mu      sync.RWMutex
	healthy bool
	lastErr error
	cancel  context.CancelFunc
	done    chan struct{}
	ready   chan struct{}
	once    sync.Once
}

func newRunner(name string, subscribe subscribeFunc, opts options) *runner {
	return &runner{name: name, subscribe: subscribe, opts: opts, ready: make(chan struct{})}
}

func (r *runner) start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(runCtx, r.done)
	return nil
}

func (r *runner) stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.healthy = false
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (r *runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	b := r.opts.newBackOff()
	for {
		failed := make(chan error, 1)
		unsubscribe, err := r.subscribe(ctx, func(err error) {
			select {
			case failed <- err:
			default:
			}
		})
		if err == nil {
			b.Reset()
			select {
			case <-ctx.Done():
				unsubscribe()
				return
			case err = <-failed:
				unsubscribe()
			}
		}
		if ctx.Err() != nil {
			return
		}
		r.markFailed(ctx, err)

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (r *runner) markFailed(ctx context.Context, err error) {
	wrapped := fmt.Errorf("%w: %s mirror: %w", fault.ErrRemoteUnavailable, r.name, err)
	r.mu.Lock()
	r.healthy = false
	r.lastErr = wrapped
	r.mu.Unlock()
	r.opts.logger.LogAttrs(ctx, slog.LevelWarn, "mirror subscription failed, resubscribing",
		slog.String("mirror", r.name),
		slog.String("error", err.Error()),
	)
}

func (r *runner) markDelivered() {
	r.mu.Lock()
	r.healthy = true
	r.lastErr = nil
	r.mu.Unlock()
	r.once.Do(func() { close(r.ready) })
}

func (r *runner) isHealthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.healthy
}

func (r *runner) lastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

func (r *runner) waitReady(ctx context.Context) error {
	select {
	case <-r.ready:
		return nil
	case <-ctx.Done():
		if err := r.lastError(); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s mirror: %w", fault.ErrRemoteUnavailable, r.name, ctx.Err())
	}
}

// listeners fans change notifications out to registered callbacks.
type listeners[F any] struct {
	mu   sync.Mutex
	next uint64
	byID map[uint64]F
}

func (l *listeners[F]) add(fn F) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.byID == nil {
		l.byID = map[uint64]F{}
	}
	l.next++
	id := l.next
	l.byID[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.byID, id)
		l.mu.Unlock()
	}
}

func (l *listeners[F]) each(call func(F)) {
	l.mu.Lock()
	fns := make([]F, 0, len(l.byID))
	for _, fn := range l.byID {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		call(fn)
	}
}
