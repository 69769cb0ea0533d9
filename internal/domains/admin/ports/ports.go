package ports

import (
	"context"

	"github.com/Apurer/go-gin-pos-server/internal/domains/admin/domain"
	catalogdomain "github.com/Apurer/go-gin-pos-server/internal/domains/catalog/domain"
	directorydomain "github.com/Apurer/go-gin-pos-server/internal/domains/directory/domain"
	settingsdomain "github.com/Apurer/go-gin-pos-server/internal/domains/settings/domain"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
)

// Writer is the write half of the remote document store.
type Writer interface {
	Create(ctx context.Context, collection string, data docstore.Document) (string, error)
	Set(ctx context.Context, path string, data docstore.Document) error
	Update(ctx context.Context, path string, data docstore.Document) error
	Delete(ctx context.Context, path string) error
}

// Catalog resolves items from the catalog mirror.
type Catalog interface {
	Lookup(id string) (catalogdomain.Item, bool)
}

// Directory resolves employees from the directory mirror.
type Directory interface {
	Lookup(id string) (directorydomain.Employee, bool)
	FindByUsername(username string) (directorydomain.Employee, bool)
}

// Settings reads the effective business settings.
type Settings interface {
	Current() settingsdomain.Business
}

// Gateway exposes the admin mutations to adapters.
type Gateway interface {
	CreateItem(ctx context.Context, input domain.ItemInput) (string, error)
	UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) error
	RequestItemDeletion(ctx context.Context, id string) (domain.Confirmation, error)
	SubmitItemForm(ctx context.Context, form *domain.ItemForm) (string, error)

	CreateEmployee(ctx context.Context, input domain.EmployeeInput) (string, error)
	UpdateEmployee(ctx context.Context, id string, patch domain.EmployeePatch) error
	RequestEmployeeDeletion(ctx context.Context, id string) (domain.Confirmation, error)

	UpdateSettings(ctx context.Context, patch domain.SettingsPatch) error

	Confirm(ctx context.Context, token string) (domain.Confirmation, error)
	Cancel(ctx context.Context, token string) error
	Pending(ctx context.Context) []domain.Confirmation
}
