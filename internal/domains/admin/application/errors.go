package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-pos-server/internal/domains/admin/domain"
	catalogdomain "github.com/Apurer/go-gin-pos-server/internal/domains/catalog/domain"
	directorydomain "github.com/Apurer/go-gin-pos-server/internal/domains/directory/domain"
	settingsdomain "github.com/Apurer/go-gin-pos-server/internal/domains/settings/domain"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
	"github.com/Apurer/go-gin-pos-server/internal/shared/fault"
)

var (
	// ErrUnknownTarget rejects an id missing from the mirror snapshot.
	ErrUnknownTarget = errors.New("record is not in the current snapshot")
	// ErrUnacceptablePassword wraps a credential the verifier refused to store.
	ErrUnacceptablePassword = errors.New("password cannot be stored")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, catalogdomain.ErrEmptyName),
		errors.Is(err, catalogdomain.ErrInvalidPrice),
		errors.Is(err, catalogdomain.ErrInvalidCategory),
		errors.Is(err, directorydomain.ErrEmptyUsername),
		errors.Is(err, directorydomain.ErrEmptyPassword),
		errors.Is(err, settingsdomain.ErrEmptyBusinessName),
		errors.Is(err, settingsdomain.ErrInvalidTaxRate),
		errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, ErrUnacceptablePassword),
		errors.Is(err, domain.ErrEmptyPatch):
		return fmt.Errorf("%w: %w", fault.ErrInvalidInput, err)
	case errors.Is(err, ErrUnknownTarget),
		errors.Is(err, domain.ErrConfirmationNotFound),
		errors.Is(err, domain.ErrConfirmationExpired),
		errors.Is(err, docstore.ErrNotFound):
		return fmt.Errorf("%w: %w", fault.ErrInvalidReference, err)
	case errors.Is(err, docstore.ErrUnavailable):
		return fmt.Errorf("%w: %w", fault.ErrRemoteUnavailable, err)
	}
	return err
}
