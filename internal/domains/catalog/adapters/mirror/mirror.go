// Package mirror keeps the terminal's catalog in sync with the remote items collection.
package mirror

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-pos-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
	"github.com/Apurer/go-gin-pos-server/internal/shared/mirror"
)

// Collection is the remote collection holding catalog items.
const Collection = "items"

// Stored field names, for partial updates.
const (
	FieldName      = "name"
	FieldUnitPrice = "unitPrice"
	FieldCategory  = "category"
)

// itemDocument is the stored shape of a catalog item.
type itemDocument struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Category  string          `json:"category,omitempty"`
}

// Mirror is the catalog read model.
type Mirror struct {
	*mirror.Collection[domain.Item]
}

// New builds an idle catalog mirror.
func New(store docstore.Store, opts ...mirror.Option) *Mirror {
	return &Mirror{Collection: mirror.NewCollection(store, Collection, Decode, opts...)}
}

// Lookup resolves an item id against the current snapshot.
func (m *Mirror) Lookup(id string) (domain.Item, bool) {
	for _, item := range m.CurrentSnapshot() {
		if item.ID == id {
			return item, true
		}
	}
	return domain.Item{}, false
}

// Encode converts an item into its stored document.
func Encode(item domain.Item) (docstore.Document, error) {
	return docstore.Encode(itemDocument{
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Category:  string(item.Category),
	})
}

// Decode validates a stored document into an item.
func Decode(record docstore.Record) (domain.Item, error) {
	var doc itemDocument
	if err := docstore.Decode(record.Data, &doc); err != nil {
		return domain.Item{}, fmt.Errorf("decode item %s: %w", record.ID, err)
	}
	item, err := domain.NewItem(record.ID, doc.Name, doc.UnitPrice, domain.Category(doc.Category))
	if err != nil {
		return domain.Item{}, fmt.Errorf("decode item %s: %w", record.ID, err)
	}
	return *item, nil
}
