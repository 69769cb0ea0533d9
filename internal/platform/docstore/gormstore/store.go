// Package gormstore persists documents in a relational table through GORM and
// drives subscriptions from a Notifier.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
	"github.com/Apurer/go-gin-pos-server/internal/shared/projection"
)

var _ docstore.Store = (*Store)(nil)

// documentRecord maps a document onto the documents table.
type documentRecord struct {
	Collection string            `gorm:"primaryKey;column:collection;size:128"`
	ID         string            `gorm:"primaryKey;column:id;size:64"`
	Data       docstore.Document `gorm:"column:data;type:text;serializer:json"`
	CreatedAt  time.Time         `gorm:"column:created_at;index"`
	UpdatedAt  time.Time         `gorm:"column:updated_at"`
}

func (documentRecord) TableName() string { return "documents" }

// Store is a docstore.Store backed by GORM.
type Store struct {
	db       *gorm.DB
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore wires a GORM-backed document store. Caller manages DB lifecycle and schema.
func NewStore(db *gorm.DB, notifier Notifier, opts ...Option) *Store {
	s := &Store{
		db:       db,
		notifier: notifier,
		logger:   slog.Default(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	if s.notifier == nil {
		s.notifier = NewLocalNotifier()
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Subscribe delivers the collection now and after every notified change.
func (s *Store) Subscribe(ctx context.Context, collection string, onSnapshot docstore.SnapshotFunc, onError docstore.ErrorFunc) (docstore.Unsubscribe, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	if err := docstore.ValidateCollection(collection); err != nil {
		return nil, err
	}
	feed := docstore.NewFeed(func(records []docstore.Record) { onSnapshot(records) }, onError)
	sub := newReloader(func(ctx context.Context) error {
		records, err := s.load(ctx, collection)
		if err != nil {
			return err
		}
		feed.Push(records)
		return nil
	}, feed.Fail)
	return s.attach(ctx, collection, sub, feed.Close)
}

// SubscribeSingleton delivers one document, or nil while it does not exist.
func (s *Store) SubscribeSingleton(ctx context.Context, path string, onValue docstore.ValueFunc, onError docstore.ErrorFunc) (docstore.Unsubscribe, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return nil, err
	}
	feed := docstore.NewFeed(func(record *docstore.Record) { onValue(record) }, onError)
	sub := newReloader(func(ctx context.Context) error {
		record, err := s.get(ctx, collection, id)
		if err != nil {
			return err
		}
		feed.Push(record)
		return nil
	}, feed.Fail)
	return s.attach(ctx, collection, sub, feed.Close)
}

func (s *Store) attach(ctx context.Context, collection string, sub *reloader, closeFeed func()) (docstore.Unsubscribe, error) {
	// Listen before the first load so no change can slip between them.
	cancelListen, err := s.notifier.Listen(ctx, collection, sub.trigger, sub.fail)
	if err != nil {
		closeFeed()
		return nil, fmt.Errorf("%w: %w", docstore.ErrUnavailable, err)
	}
	sub.trigger()
	go sub.run()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancelListen()
			sub.stop()
			closeFeed()
		})
	}, nil
}

// Create inserts a document under a generated id.
func (s *Store) Create(ctx context.Context, collection string, data docstore.Document) (string, error) {
	if err := s.ensureDB(); err != nil {
		return "", err
	}
	if err := docstore.ValidateCollection(collection); err != nil {
		return "", err
	}
	now := s.now()
	record := documentRecord{
		Collection: collection,
		ID:         s.newID(),
		Data:       data.Clone(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", unavailable(err)
	}
	s.notify(ctx, collection)
	return record.ID, nil
}

// Set upserts the document at path.
func (s *Store) Set(ctx context.Context, path string, data docstore.Document) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}
	now := s.now()
	record := documentRecord{Collection: collection, ID: id, Data: data.Clone(), CreatedAt: now, UpdatedAt: now}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).Create(&record).Error; err != nil {
		return unavailable(err)
	}
	s.notify(ctx, collection)
	return nil
}

// Update merges data into the stored document. Last write wins.
func (s *Store) Update(ctx context.Context, path string, data docstore.Document) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record documentRecord
		if err := tx.First(&record, "collection = ? AND id = ?", collection, id).Error; err != nil {
			return err
		}
		record.Data = docstore.Merge(record.Data, data)
		record.UpdatedAt = s.now()
		return tx.Save(&record).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return docstore.ErrNotFound
	}
	if err != nil {
		return unavailable(err)
	}
	s.notify(ctx, collection)
	return nil
}

// Delete removes the document at path.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).Delete(&documentRecord{})
	if result.Error != nil {
		return unavailable(result.Error)
	}
	if result.RowsAffected == 0 {
		return docstore.ErrNotFound
	}
	s.notify(ctx, collection)
	return nil
}

func (s *Store) load(ctx context.Context, collection string) ([]docstore.Record, error) {
	var rows []documentRecord
	if err := s.db.WithContext(ctx).Where("collection = ?", collection).Find(&rows).Error; err != nil {
		return nil, unavailable(err)
	}
	records := make([]docstore.Record, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toRecord())
	}
	docstore.SortRecords(records)
	return records, nil
}

func (s *Store) get(ctx context.Context, collection, id string) (*docstore.Record, error) {
	var row documentRecord
	err := s.db.WithContext(ctx).First(&row, "collection = ? AND id = ?", collection, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(err)
	}
	record := row.toRecord()
	return &record, nil
}

// notify runs after commit; a lost notification only delays subscribers until the next change.
func (s *Store) notify(ctx context.Context, collection string) {
	if err := s.notifier.Notify(ctx, collection); err != nil && s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "document change notification failed",
			slog.String("collection", collection), slog.String("error", err.Error()))
	}
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("gorm document store not configured")
	}
	return nil
}

func (r documentRecord) toRecord() docstore.Record {
	return docstore.Record{
		ID:       r.ID,
		Data:     r.Data.Clone(),
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", docstore.ErrUnavailable, err)
}

// reloader coalesces change signals and reruns load on its own goroutine.
type reloader struct {
	load  func(context.Context) error
	onErr func(error)
	dirty chan struct{}
	ctx   context.Context
	halt  context.CancelFunc
}

func newReloader(load func(context.Context) error, onErr func(error)) *reloader {
	ctx, cancel := context.WithCancel(context.Background())
	return &reloader{
		load:  load,
		onErr: onErr,
		dirty: make(chan struct{}, 1),
		ctx:   ctx,
		halt:  cancel,
	}
}

func (r *reloader) trigger() {
	select {
	case r.dirty <- struct{}{}:
	default:
	}
}

func (r *reloader) fail(err error) {
	r.halt()
	r.onErr(fmt.Errorf("%w: %w", docstore.ErrUnavailable, err))
}

func (r *reloader) stop() {
	r.halt()
}

func (r *reloader) run() {
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.dirty:
		}
		if err := r.load(r.ctx); err != nil {
			if r.ctx.Err() != nil {
				return
			}
			r.halt()
			r.onErr(err)
			return
		}
	}
}
