package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmissionStatus is the fulfillment state of a committed order. Only the
// initial state is set here; later transitions belong to the kitchen.
type SubmissionStatus string

const StatusPending SubmissionStatus = "pending"

// SubmittedOrder is the write-once record of a committed sale. Totals are rounded.
type SubmittedOrder struct {
	ID             string
	SessionID      string
	Employee       string
	Order          Snapshot
	TaxRatePercent decimal.Decimal
	Totals         PricingResult
	Status         SubmissionStatus
	SubmittedAt    time.Time
}
