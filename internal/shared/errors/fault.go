package errors

import (
	"errors"

	"github.com/Apurer/go-gin-pos-server/internal/shared/fault"
)

// FaultMapper translates the shared error taxonomy into problem details.
func FaultMapper(err error) (ProblemDetail, bool) {
	switch {
	case errors.Is(err, fault.ErrInvalidInput):
		return ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, fault.ErrInvalidReference):
		return ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, fault.ErrRemoteUnavailable):
		return ErrUnavailable.WithDetail(err.Error()), true
	case errors.Is(err, fault.ErrAuthFailure):
		return ErrUnauthorized.WithDetail(err.Error()), true
	}
	return ProblemDetail{}, false
}
