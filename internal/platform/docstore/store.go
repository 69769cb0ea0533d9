// Package docstore describes the remote document store the terminal core
// synchronizes with. Collections are addressed by name and documents by
// "collection/id" paths. Subscriptions always deliver the full collection.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Apurer/go-gin-pos-server/internal/shared/projection"
)

var (
	// ErrNotFound is returned by Update and Delete for unknown documents.
	ErrNotFound = errors.New("document not found")
	// ErrUnavailable reports a lost connection or a failed remote operation.
	ErrUnavailable = errors.New("document store unavailable")
	// ErrInvalidPath rejects malformed collection or document paths.
	ErrInvalidPath = errors.New("invalid document path")
)

// Document is the schemaless payload of a stored record.
type Document map[string]any

// Record is a stored document plus its identity and persistence metadata.
type Record struct {
	ID       string
	Data     Document
	Metadata projection.Metadata
}

// Unsubscribe stops a subscription. It is safe to call more than once.
type Unsubscribe func()

// SnapshotFunc receives the complete contents of a collection.
type SnapshotFunc func(records []Record)

// ValueFunc receives a singleton document or nil when it does not exist.
type ValueFunc func(record *Record)

// ErrorFunc receives subscription failures. The subscription is dead after it fires.
type ErrorFunc func(err error)

// Store is the contract with the externally owned persistence service.
type Store interface {
	Subscribe(ctx context.Context, collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error)
	SubscribeSingleton(ctx context.Context, path string, onValue ValueFunc, onError ErrorFunc) (Unsubscribe, error)
	Create(ctx context.Context, collection string, data Document) (string, error)
	// Set creates or replaces the document at path.
	Set(ctx context.Context, path string, data Document) error
	// Update merges data into an existing document; absent fields are left untouched.
	Update(ctx context.Context, path string, data Document) error
	Delete(ctx context.Context, path string) error
}

// Join builds a document path.
func Join(collection, id string) string {
	return collection + "/" + id
}

// SplitPath validates and splits a "collection/id" path.
func SplitPath(path string) (string, string, error) {
	collection, id, ok := strings.Cut(strings.TrimSpace(path), "/")
	if !ok || collection == "" || id == "" || strings.Contains(id, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return collection, id, nil
}

// ValidateCollection rejects empty or nested collection names.
func ValidateCollection(collection string) error {
	if strings.TrimSpace(collection) == "" || strings.Contains(collection, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, collection)
	}
	return nil
}

// Merge returns base overlaid with patch.
func Merge(base, patch Document) Document {
	merged := make(Document, len(base)+len(patch))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}

// Pick returns the listed fields of d that are present.
func Pick(d Document, keys ...string) Document {
	picked := make(Document, len(keys))
	for _, k := range keys {
		if v, ok := d[k]; ok {
			picked[k] = v
		}
	}
	return picked
}

// Clone copies the top level of a document.
func (d Document) Clone() Document {
	if d == nil {
		return Document{}
	}
	return Merge(d, nil)
}

// Encode converts a tagged struct into a Document.
func Encode(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Decode fills a tagged struct from a Document.
func Decode(doc Document, dest any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// SortRecords orders records by creation time then id so snapshots are stable.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Metadata.CreatedAt, records[j].Metadata.CreatedAt
		if !a.Equal(b) {
			return a.Before(b)
		}
		return records[i].ID < records[j].ID
	})
}
