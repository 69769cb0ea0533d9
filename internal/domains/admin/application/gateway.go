package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-pos-server/internal/domains/admin/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/admin/ports"
	catalogmirror "github.com/Apurer/go-gin-pos-server/internal/domains/catalog/adapters/mirror"
	catalogdomain "github.com/Apurer/go-gin-pos-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/directory/adapters/credentials"
	directorymirror "github.com/Apurer/go-gin-pos-server/internal/domains/directory/adapters/mirror"
	directorydomain "github.com/Apurer/go-gin-pos-server/internal/domains/directory/domain"
	directoryports "github.com/Apurer/go-gin-pos-server/internal/domains/directory/ports"
	settingsmirror "github.com/Apurer/go-gin-pos-server/internal/domains/settings/adapters/mirror"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
)

// DefaultConfirmationTTL bounds how long a delete waits for its confirm.
const DefaultConfirmationTTL = 2 * time.Minute

// Gateway performs admin writes against the remote store. Results show up
// only through the mirrors.
type Gateway struct {
	writer    ports.Writer
	catalog   ports.Catalog
	directory ports.Directory
	settings  ports.Settings
	verifier  directoryports.CredentialVerifier

	confirmations *confirmations
	ttl           time.Duration
	now           func() time.Time
	newToken      func() string
}

type Option func(*Gateway)

func WithVerifier(v directoryports.CredentialVerifier) Option {
	return func(g *Gateway) {
		if v != nil {
			g.verifier = v
		}
	}
}

func WithConfirmationTTL(ttl time.Duration) Option {
	return func(g *Gateway) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

func NewGateway(writer ports.Writer, catalog ports.Catalog, directory ports.Directory, settings ports.Settings, opts ...Option) *Gateway {
	g := &Gateway{
		writer:    writer,
		catalog:   catalog,
		directory: directory,
		settings:  settings,
		verifier:  credentials.PlaintextVerifier{},
		ttl:       DefaultConfirmationTTL,
		now:       time.Now,
		newToken:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	g.confirmations = newConfirmations(g.ttl, g.now, g.newToken)
	return g
}

// CreateItem validates and writes a new catalog item.
func (g *Gateway) CreateItem(ctx context.Context, input domain.ItemInput) (string, error) {
	item, err := input.Item()
	if err != nil {
		return "", mapError(err)
	}
	doc, err := catalogmirror.Encode(item)
	if err != nil {
		return "", err
	}
	id, err := g.writer.Create(ctx, catalogmirror.Collection, doc)
	if err != nil {
		return "", mapError(err)
	}
	return id, nil
}

// SubmitItemForm creates the item described by form and resets the form on success.
func (g *Gateway) SubmitItemForm(ctx context.Context, form *domain.ItemForm) (string, error) {
	if form == nil {
		return "", mapError(domain.ErrEmptyPatch)
	}
	id, err := g.CreateItem(ctx, form.Input())
	if err != nil {
		return "", err
	}
	form.Reset()
	return id, nil
}

// UpdateItem merges the set fields into the stored item.
func (g *Gateway) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) error {
	item, err := patch.Apply(blankItem(id))
	if err != nil {
		return mapError(err)
	}
	full, err := catalogmirror.Encode(item)
	if err != nil {
		return err
	}
	var fields []string
	if patch.Name != nil {
		fields = append(fields, catalogmirror.FieldName)
	}
	if patch.Price != nil {
		fields = append(fields, catalogmirror.FieldUnitPrice)
	}
	if patch.Category != nil {
		fields = append(fields, catalogmirror.FieldCategory)
	}
	return mapError(g.writer.Update(ctx, docstore.Join(catalogmirror.Collection, id), docstore.Pick(full, fields...)))
}

// RequestItemDeletion parks the delete until it is confirmed.
func (g *Gateway) RequestItemDeletion(_ context.Context, id string) (domain.Confirmation, error) {
	item, ok := g.catalog.Lookup(id)
	if !ok {
		return domain.Confirmation{}, mapError(ErrUnknownTarget)
	}
	return g.confirmations.request(domain.KindItem, id, item.Name), nil
}

// CreateEmployee writes a new employee with a unique username.
func (g *Gateway) CreateEmployee(ctx context.Context, input domain.EmployeeInput) (string, error) {
	employee, err := input.Employee()
	if err != nil {
		return "", mapError(err)
	}
	if _, taken := g.directory.FindByUsername(employee.Username); taken {
		return "", mapError(domain.ErrUsernameTaken)
	}
	if employee.Password, err = g.verifier.Prepare(employee.Password); err != nil {
		return "", mapError(fmt.Errorf("%w: %w", ErrUnacceptablePassword, err))
	}
	doc, err := directorymirror.Encode(employee)
	if err != nil {
		return "", err
	}
	id, err := g.writer.Create(ctx, directorymirror.Collection, doc)
	if err != nil {
		return "", mapError(err)
	}
	return id, nil
}

// UpdateEmployee merges the set fields into the stored employee.
func (g *Gateway) UpdateEmployee(ctx context.Context, id string, patch domain.EmployeePatch) error {
	employee, err := patch.Apply(blankEmployee(id))
	if err != nil {
		return mapError(err)
	}
	var fields []string
	if patch.Username != nil {
		if other, taken := g.directory.FindByUsername(employee.Username); taken && other.ID != id {
			return mapError(domain.ErrUsernameTaken)
		}
		fields = append(fields, directorymirror.FieldUsername)
	}
	if patch.Password != nil {
		if employee.Password, err = g.verifier.Prepare(employee.Password); err != nil {
			return mapError(fmt.Errorf("%w: %w", ErrUnacceptablePassword, err))
		}
		fields = append(fields, directorymirror.FieldPassword)
	}
	full, err := directorymirror.Encode(employee)
	if err != nil {
		return err
	}
	return mapError(g.writer.Update(ctx, docstore.Join(directorymirror.Collection, id), docstore.Pick(full, fields...)))
}

// RequestEmployeeDeletion parks the delete until it is confirmed.
func (g *Gateway) RequestEmployeeDeletion(_ context.Context, id string) (domain.Confirmation, error) {
	employee, ok := g.directory.Lookup(id)
	if !ok {
		return domain.Confirmation{}, mapError(ErrUnknownTarget)
	}
	return g.confirmations.request(domain.KindEmployee, id, employee.Username), nil
}

// UpdateSettings merges the patch into the effective settings. A missing
// settings document is written in full.
func (g *Gateway) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) error {
	next, err := patch.Apply(g.settings.Current())
	if err != nil {
		return mapError(err)
	}
	full, err := settingsmirror.Encode(next)
	if err != nil {
		return err
	}
	var fields []string
	if patch.BusinessName != nil {
		fields = append(fields, settingsmirror.FieldBusinessName)
	}
	if patch.TaxRatePercent != nil {
		fields = append(fields, settingsmirror.FieldTaxRatePercent)
	}
	if len(patch.Theme) > 0 {
		fields = append(fields, settingsmirror.FieldTheme)
	}
	err = g.writer.Update(ctx, settingsmirror.Path, docstore.Pick(full, fields...))
	if errors.Is(err, docstore.ErrNotFound) {
		err = g.writer.Set(ctx, settingsmirror.Path, full)
	}
	return mapError(err)
}

// Confirm issues the parked delete. The confirmation stays pending when the
// store could not be reached.
func (g *Gateway) Confirm(ctx context.Context, token string) (domain.Confirmation, error) {
	confirmation, err := g.confirmations.take(strings.TrimSpace(token))
	if err != nil {
		return domain.Confirmation{}, mapError(err)
	}
	var collection string
	switch confirmation.Kind {
	case domain.KindItem:
		collection = catalogmirror.Collection
	case domain.KindEmployee:
		collection = directorymirror.Collection
	}
	if err := g.writer.Delete(ctx, docstore.Join(collection, confirmation.TargetID)); err != nil {
		if errors.Is(err, docstore.ErrUnavailable) {
			g.confirmations.restore(confirmation)
		}
		return domain.Confirmation{}, mapError(err)
	}
	return confirmation, nil
}

// Cancel drops a pending confirmation.
func (g *Gateway) Cancel(_ context.Context, token string) error {
	return mapError(g.confirmations.cancel(strings.TrimSpace(token)))
}

// Pending lists live confirmations, oldest first.
func (g *Gateway) Pending(context.Context) []domain.Confirmation {
	return g.confirmations.list()
}

func blankItem(id string) catalogdomain.Item {
	return catalogdomain.Item{ID: id}
}

func blankEmployee(id string) directorydomain.Employee {
	return directorydomain.Employee{ID: id}
}

var _ ports.Gateway = (*Gateway)(nil)
