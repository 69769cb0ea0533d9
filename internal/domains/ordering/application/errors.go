package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/domain"
	"github.com/Apurer/go-gin-pos-server/internal/shared/fault"
)

var (
	// ErrSessionNotFound is returned for unknown or closed sessions.
	ErrSessionNotFound = errors.New("order session not found")
	// ErrUnknownItem rejects an item id missing from the catalog snapshot.
	ErrUnknownItem = errors.New("item is not in the catalog")
	// ErrSubmissionInFlight rejects a checkout while another is still running.
	ErrSubmissionInFlight = errors.New("order submission already in progress")
	// ErrCommitFailed wraps order store failures.
	ErrCommitFailed = errors.New("order could not be submitted")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidDiscount) {
		return fmt.Errorf("%w: %w", fault.ErrInvalidInput, err)
	}
	if errors.Is(err, ErrUnknownItem) {
		return fmt.Errorf("%w: %w", fault.ErrInvalidReference, err)
	}
	if errors.Is(err, ErrCommitFailed) && !errors.Is(err, fault.ErrRemoteUnavailable) {
		return fmt.Errorf("%w: %w", fault.ErrRemoteUnavailable, err)
	}
	return err
}
