package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// DefaultChannel carries document change notifications.
const DefaultChannel = "docstore_changes"

type listener struct {
	onChange func()
	onError  func(error)
}

// Notifier announces document changes with pg_notify and receives them on a
// dedicated pgx connection running LISTEN. Payloads are collection names.
type Notifier struct {
	db      *gorm.DB
	dsn     string
	channel string
	logger  *slog.Logger

	mu        sync.Mutex
	listeners map[string]map[uint64]listener
	nextID    uint64
	conn      *pgx.Conn
	cancel    context.CancelFunc
}

type NotifierOption func(*Notifier)

func WithChannel(channel string) NotifierOption {
	return func(n *Notifier) {
		if strings.TrimSpace(channel) != "" {
			n.channel = channel
		}
	}
}

func WithNotifierLogger(logger *slog.Logger) NotifierOption {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// NewNotifier wires a notifier. db sends notifications, dsn opens the listening connection.
func NewNotifier(db *gorm.DB, dsn string, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		db:        db,
		dsn:       dsn,
		channel:   DefaultChannel,
		logger:    slog.Default(),
		listeners: map[string]map[uint64]listener{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Notify publishes collection on the channel.
func (n *Notifier) Notify(ctx context.Context, collection string) error {
	if n.db == nil {
		return errors.New("postgres notifier has no database")
	}
	return n.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", n.channel, collection).Error
}

// Listen registers a listener, dialing the LISTEN connection on first use.
func (n *Notifier) Listen(ctx context.Context, collection string, onChange func(), onError func(error)) (func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == nil {
		if err := n.startLocked(ctx); err != nil {
			return nil, err
		}
	}
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

// Close stops the LISTEN connection without notifying listeners.
func (n *Notifier) Close() {
	n.mu.Lock()
	cancel := n.cancel
	n.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (n *Notifier) startLocked(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, n.dsn)
	if err != nil {
		return fmt.Errorf("connect listener: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pq.QuoteIdentifier(n.channel)); err != nil {
		_ = conn.Close(context.Background())
		return fmt.Errorf("listen %s: %w", n.channel, err)
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	n.conn = conn
	n.cancel = cancel
	go n.loop(loopCtx, conn)
	return nil
}

func (n *Notifier) loop(ctx context.Context, conn *pgx.Conn) {
	defer conn.Close(context.Background())
	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			n.drop(ctx, conn, err)
			return
		}
		n.dispatch(notification.Payload)
	}
}

func (n *Notifier) dispatch(collection string) {
	n.mu.Lock()
	targets := make([]listener, 0, len(n.listeners[collection]))
	for _, l := range n.listeners[collection] {
		targets = append(targets, l)
	}
	n.mu.Unlock()
	for _, l := range targets {
		l.onChange()
	}
}

// drop forgets every listener; the next Listen call dials a fresh connection.
func (n *Notifier) drop(ctx context.Context, conn *pgx.Conn, cause error) {
	n.mu.Lock()
	if n.conn == conn {
		n.conn = nil
		n.cancel = nil
	}
	var targets []listener
	for collection, group := range n.listeners {
		for _, l := range group {
			targets = append(targets, l)
		}
		delete(n.listeners, collection)
	}
	n.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if n.logger != nil {
		n.logger.Warn("postgres change listener lost", slog.String("channel", n.channel), slog.String("error", cause.Error()))
	}
	for _, l := range targets {
		if l.onError != nil {
			l.onError(cause)
		}
	}
}
