package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyBusinessName = errors.New("business name is required")
	ErrInvalidTaxRate    = errors.New("tax rate must be between 0 and 100 percent")
)

var hundred = decimal.NewFromInt(100)

// Business is the per-deployment configuration read by pricing. Theme is
// presentation-only and passed through untouched.
type Business struct {
	BusinessName   string
	TaxRatePercent decimal.Decimal
	Theme          map[string]string
}

// Default builds the settings written when none exist remotely.
func Default(name string, taxRatePercent decimal.Decimal) Business {
	return Business{BusinessName: name, TaxRatePercent: taxRatePercent, Theme: map[string]string{}}
}

// Validate enforces the settings invariants.
func (b Business) Validate() error {
	if strings.TrimSpace(b.BusinessName) == "" {
		return ErrEmptyBusinessName
	}
	return ValidateTaxRate(b.TaxRatePercent)
}

// ValidateTaxRate accepts rates in [0,100].
func ValidateTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return ErrInvalidTaxRate
	}
	return nil
}
