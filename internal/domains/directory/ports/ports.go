package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-pos-server/internal/domains/directory/domain"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Directory is the read side of the employee records.
type Directory interface {
	FindByUsername(username string) (domain.Employee, bool)
}

// CredentialVerifier decides how passwords are stored and compared.
type CredentialVerifier interface {
	// Prepare turns a submitted password into its stored form.
	Prepare(password string) (string, error)
	// Verify compares a stored credential with a submitted password.
	Verify(stored, supplied string) bool
}

// Service exposes the sign-in gates to adapters.
type Service interface {
	SignIn(ctx context.Context, username, password string) (domain.Employee, error)
	UnlockAdmin(ctx context.Context, pin string) error
}
