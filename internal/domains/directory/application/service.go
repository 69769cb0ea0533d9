package application

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/Apurer/go-gin-pos-server/internal/domains/directory/adapters/credentials"
	"github.com/Apurer/go-gin-pos-server/internal/domains/directory/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/directory/ports"
)

// DefaultAdminPIN is the shared PIN used when none is configured.
const DefaultAdminPIN = "1234"

// Service checks sign-in credentials against the employee directory. There is
// no lockout or rate limiting.
type Service struct {
	directory ports.Directory
	verifier  ports.CredentialVerifier
	adminPIN  string
}

type Option func(*Service)

func WithVerifier(verifier ports.CredentialVerifier) Option {
	return func(s *Service) {
		if verifier != nil {
			s.verifier = verifier
		}
	}
}

func WithAdminPIN(pin string) Option {
	return func(s *Service) {
		if pin != "" {
			s.adminPIN = pin
		}
	}
}

func NewService(directory ports.Directory, opts ...Option) *Service {
	s := &Service{
		directory: directory,
		verifier:  credentials.PlaintextVerifier{},
		adminPIN:  DefaultAdminPIN,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SignIn returns the matching employee or an auth failure. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (s *Service) SignIn(_ context.Context, username, password string) (domain.Employee, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Employee{}, mapError(ports.ErrInvalidCredentials)
	}
	employee, ok := s.directory.FindByUsername(username)
	if !ok || !s.verifier.Verify(employee.Password, password) {
		return domain.Employee{}, mapError(ports.ErrInvalidCredentials)
	}
	return employee, nil
}

// UnlockAdmin checks the shared admin PIN.
func (s *Service) UnlockAdmin(_ context.Context, pin string) error {
	if subtle.ConstantTimeCompare([]byte(pin), []byte(s.adminPIN)) != 1 {
		return mapError(ErrInvalidPIN)
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
