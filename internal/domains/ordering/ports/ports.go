package ports

import (
	"context"

	catalogdomain "github.com/Apurer/go-gin-pos-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/domain"
	settingsdomain "github.com/Apurer/go-gin-pos-server/internal/domains/settings/domain"
)

// Catalog resolves item ids against the current catalog snapshot.
type Catalog interface {
	Lookup(id string) (catalogdomain.Item, bool)
}

// Settings supplies the effective business settings.
type Settings interface {
	Current() settingsdomain.Business
}

// OrderStore persists committed orders and returns their identifier.
type OrderStore interface {
	Submit(ctx context.Context, order domain.SubmittedOrder) (string, error)
}

// FulfillmentDispatcher hands a persisted order to the kitchen.
type FulfillmentDispatcher interface {
	Dispatch(ctx context.Context, order domain.SubmittedOrder) error
}

// KitchenPublisher announces submitted orders on the message bus.
type KitchenPublisher interface {
	PublishSubmitted(ctx context.Context, order domain.SubmittedOrder) error
}
