// Package mirror keeps employee records in sync for sign-in checks.
package mirror

import (
	"fmt"

	"github.com/Apurer/go-gin-pos-server/internal/domains/directory/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/directory/ports"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
	"github.com/Apurer/go-gin-pos-server/internal/shared/mirror"
)

// Collection is the remote collection holding employee records.
const Collection = "employees"

var _ ports.Directory = (*Mirror)(nil)

const (
	FieldUsername = "username"
	FieldPassword = "password"
)

type employeeDocument struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Mirror is the employee read model.
type Mirror struct {
	*mirror.Collection[domain.Employee]
}

func New(store docstore.Store, opts ...mirror.Option) *Mirror {
	return &Mirror{Collection: mirror.NewCollection(store, Collection, Decode, opts...)}
}

// FindByUsername scans the current snapshot.
func (m *Mirror) FindByUsername(username string) (domain.Employee, bool) {
	for _, employee := range m.CurrentSnapshot() {
		if employee.Username == username {
			return employee, true
		}
	}
	return domain.Employee{}, false
}

// Lookup resolves an employee id against the current snapshot.
func (m *Mirror) Lookup(id string) (domain.Employee, bool) {
	for _, employee := range m.CurrentSnapshot() {
		if employee.ID == id {
			return employee, true
		}
	}
	return domain.Employee{}, false
}

// Encode converts an employee into its stored document.
func Encode(employee domain.Employee) (docstore.Document, error) {
	return docstore.Encode(employeeDocument{Username: employee.Username, Password: employee.Password})
}

func Decode(record docstore.Record) (domain.Employee, error) {
	var doc employeeDocument
	if err := docstore.Decode(record.Data, &doc); err != nil {
		return domain.Employee{}, fmt.Errorf("decode employee %s: %w", record.ID, err)
	}
	employee, err := domain.NewEmployee(record.ID, doc.Username, doc.Password)
	if err != nil {
		return domain.Employee{}, fmt.Errorf("decode employee %s: %w", record.ID, err)
	}
	return *employee, nil
}
