package domain

import (
	"errors"
	"time"
)

// TargetKind names what a pending deletion removes.
type TargetKind string

const (
	KindItem     TargetKind = "item"
	KindEmployee TargetKind = "employee"
)

var (
	ErrConfirmationNotFound = errors.New("confirmation not found")
	ErrConfirmationExpired  = errors.New("confirmation expired")
)

// Confirmation is a destructive request waiting for an explicit confirm.
type Confirmation struct {
	Token       string
	Kind        TargetKind
	TargetID    string
	Label       string
	RequestedAt time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the confirmation can no longer be confirmed at now.
func (c Confirmation) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
