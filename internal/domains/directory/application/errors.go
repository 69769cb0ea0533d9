package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-pos-server/internal/domains/directory/ports"
	"github.com/Apurer/go-gin-pos-server/internal/shared/fault"
)

// ErrInvalidPIN rejects a wrong admin PIN.
var ErrInvalidPIN = errors.New("incorrect PIN")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ports.ErrInvalidCredentials) || errors.Is(err, ErrInvalidPIN) {
		return fmt.Errorf("%w: %w", fault.ErrAuthFailure, err)
	}
	return err
}
