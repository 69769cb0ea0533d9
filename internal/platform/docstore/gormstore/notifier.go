package gormstore

import (
	"context"
	"sync"
)

// Notifier carries change notifications between writers and subscriptions.
type Notifier interface {
	// Notify announces a committed change to collection.
	Notify(ctx context.Context, collection string) error
	// Listen invokes onChange after every change to collection until the returned
	// cancel function runs. onError fires at most once when the feed is lost.
	Listen(ctx context.Context, collection string, onChange func(), onError func(error)) (func(), error)
}

type listener struct {
	onChange func()
	onError  func(error)
}

// LocalNotifier fans notifications out inside one process. It suits the
// sqlite backend where every writer shares the process.
type LocalNotifier struct {
	mu        sync.Mutex
	listeners map[string]map[uint64]listener
	nextID    uint64
}

// NewLocalNotifier constructs an empty notifier.
func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{listeners: map[string]map[uint64]listener{}}
}

// Notify calls every listener registered for collection.
func (n *LocalNotifier) Notify(_ context.Context, collection string) error {
	n.mu.Lock()
	targets := make([]listener, 0, len(n.listeners[collection]))
	for _, l := range n.listeners[collection] {
		targets = append(targets, l)
	}
	n.mu.Unlock()
	for _, l := range targets {
		l.onChange()
	}
	return nil
}

// Listen registers a listener.
func (n *LocalNotifier) Listen(_ context.Context, collection string, onChange func(), onError func(error)) (func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	id := n.nextID
	if n.listeners[collection] == nil {
		n.listeners[collection] = map[uint64]listener{}
	}
	n.listeners[collection][id] = listener{onChange: onChange, onError: onError}
	return func() {
		n.mu.Lock()
		delete(n.listeners[collection], id)
		n.mu.Unlock()
	}, nil
}

// Fail drops every listener and reports err to each of them.
func (n *LocalNotifier) Fail(err error) {
	n.mu.Lock()
	var targets []listener
	for collection, group := range n.listeners {
		for _, l := range group {
			targets = append(targets, l)
		}
		delete(n.listeners, collection)
	}
	n.mu.Unlock()
	for _, l := range targets {
		if l.onError != nil {
			l.onError(err)
		}
	}
}
