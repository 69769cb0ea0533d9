// Package memory is an in-process document store used for tests and as the
// fallback when no database is configured.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
	"github.com/Apurer/go-gin-pos-server/internal/shared/projection"
)

var _ docstore.Store = (*Store)(nil)

type storedDoc struct {
	data     docstore.Document
	metadata projection.Metadata
}

// Store keeps collections in memory and fans full snapshots out to subscribers.
type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]*storedDoc
	feeds       map[string]map[uint64]*docstore.Feed[[]docstore.Record]
	singles     map[string]map[uint64]*docstore.Feed[*docstore.Record]
	nextSub     uint64
	writeErr    error
	now         func() time.Time
	newID       func() string
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		collections: map[string]map[string]*storedDoc{},
		feeds:       map[string]map[uint64]*docstore.Feed[[]docstore.Record]{},
		singles:     map[string]map[uint64]*docstore.Feed[*docstore.Record]{},
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// WithClock overrides the timestamp source.
func (s *Store) WithClock(now func() time.Time) {
	if now == nil {
		return
	}
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// FailWrites makes every subsequent write return err until called with nil.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	s.writeErr = err
	s.mu.Unlock()
}

// Disconnect terminates every live subscription with err, simulating a dropped connection.
func (s *Store) Disconnect(err error) {
	if err == nil {
		err = docstore.ErrUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for collection, feeds := range s.feeds {
		for _, feed := range feeds {
			feed.Fail(err)
		}
		delete(s.feeds, collection)
	}
	for path, feeds := range s.singles {
		for _, feed := range feeds {
			feed.Fail(err)
		}
		delete(s.singles, path)
	}
}

// Subscribe registers a collection listener and immediately queues the current snapshot.
func (s *Store) Subscribe(_ context.Context, collection string, onSnapshot docstore.SnapshotFunc, onError docstore.ErrorFunc) (docstore.Unsubscribe, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return nil, err
	}
	feed := docstore.NewFeed(func(records []docstore.Record) { onSnapshot(records) }, onError)

	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	if s.feeds[collection] == nil {
		s.feeds[collection] = map[uint64]*docstore.Feed[[]docstore.Record]{}
	}
	s.feeds[collection][id] = feed
	feed.Push(s.snapshotLocked(collection))
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.feeds[collection], id)
		s.mu.Unlock()
		feed.Close()
	}, nil
}

// SubscribeSingleton registers a listener for one document path.
func (s *Store) SubscribeSingleton(_ context.Context, path string, onValue docstore.ValueFunc, onError docstore.ErrorFunc) (docstore.Unsubscribe, error) {
	if _, _, err := docstore.SplitPath(path); err != nil {
		return nil, err
	}
	feed := docstore.NewFeed(func(record *docstore.Record) { onValue(record) }, onError)

	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	if s.singles[path] == nil {
		s.singles[path] = map[uint64]*docstore.Feed[*docstore.Record]{}
	}
	s.singles[path][id] = feed
	feed.Push(s.valueLocked(path))
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.singles[path], id)
		s.mu.Unlock()
		feed.Close()
	}, nil
}

// Create stores a new document under a generated id.
func (s *Store) Create(_ context.Context, collection string, data docstore.Document) (string, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return "", fmt.Errorf("%w: %w", docstore.ErrUnavailable, s.writeErr)
	}
	id := s.newID()
	s.putLocked(collection, id, data.Clone())
	return id, nil
}

// Set creates or replaces the document at path.
func (s *Store) Set(_ context.Context, path string, data docstore.Document) error {
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return fmt.Errorf("%w: %w", docstore.ErrUnavailable, s.writeErr)
	}
	s.putLocked(collection, id, data.Clone())
	return nil
}

// Update merges data into an existing document.
func (s *Store) Update(_ context.Context, path string, data docstore.Document) error {
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return fmt.Errorf("%w: %w", docstore.ErrUnavailable, s.writeErr)
	}
	existing, ok := s.collections[collection][id]
	if !ok {
		return docstore.ErrNotFound
	}
	s.putLocked(collection, id, docstore.Merge(existing.data, data))
	return nil
}

// Delete removes the document at path.
func (s *Store) Delete(_ context.Context, path string) error {
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return fmt.Errorf("%w: %w", docstore.ErrUnavailable, s.writeErr)
	}
	if _, ok := s.collections[collection][id]; !ok {
		return docstore.ErrNotFound
	}
	delete(s.collections[collection], id)
	s.publishLocked(collection, id)
	return nil
}

func (s *Store) putLocked(collection, id string, data docstore.Document) {
	docs := s.collections[collection]
	if docs == nil {
		docs = map[string]*storedDoc{}
		s.collections[collection] = docs
	}
	var metadata projection.Metadata
	if existing, ok := docs[id]; ok {
		metadata = existing.metadata
	}
	docs[id] = &storedDoc{data: data, metadata: metadata.Touch(s.now())}
	s.publishLocked(collection, id)
}

func (s *Store) publishLocked(collection, id string) {
	if feeds := s.feeds[collection]; len(feeds) > 0 {
		snapshot := s.snapshotLocked(collection)
		for _, feed := range feeds {
			feed.Push(snapshot)
		}
	}
	path := docstore.Join(collection, id)
	for _, feed := range s.singles[path] {
		feed.Push(s.valueLocked(path))
	}
}

func (s *Store) snapshotLocked(collection string) []docstore.Record {
	docs := s.collections[collection]
	records := make([]docstore.Record, 0, len(docs))
	for id, doc := range docs {
		records = append(records, toRecord(id, doc))
	}
	docstore.SortRecords(records)
	return records
}

func (s *Store) valueLocked(path string) *docstore.Record {
	collection, id, _ := docstore.SplitPath(path)
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil
	}
	record := toRecord(id, doc)
	return &record
}

func toRecord(id string, doc *storedDoc) docstore.Record {
	return docstore.Record{ID: id, Data: doc.data.Clone(), Metadata: doc.metadata}
}
