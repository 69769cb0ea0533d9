package application

import (
	"sort"
	"sync"
	"time"

	"github.com/Apurer/go-gin-pos-server/internal/domains/admin/domain"
)

// confirmations holds destructive requests until they are confirmed,
// cancelled or expire.
type confirmations struct {
	mu      sync.Mutex
	pending map[string]domain.Confirmation
	ttl     time.Duration
	now     func() time.Time
	token   func() string
}

func newConfirmations(ttl time.Duration, now func() time.Time, token func() string) *confirmations {
	return &confirmations{pending: map[string]domain.Confirmation{}, ttl: ttl, now: now, token: token}
}

func (c *confirmations) request(kind domain.TargetKind, targetID, label string) domain.Confirmation {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
	now := c.now()
	confirmation := domain.Confirmation{
		Token:       c.token(),
		Kind:        kind,
		TargetID:    targetID,
		Label:       label,
		RequestedAt: now,
		ExpiresAt:   now.Add(c.ttl),
	}
	c.pending[confirmation.Token] = confirmation
	return confirmation
}

// take removes and returns a live confirmation.
func (c *confirmations) take(token string) (domain.Confirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	confirmation, ok := c.pending[token]
	if !ok {
		return domain.Confirmation{}, domain.ErrConfirmationNotFound
	}
	delete(c.pending, token)
	if confirmation.Expired(c.now()) {
		return domain.Confirmation{}, domain.ErrConfirmationExpired
	}
	return confirmation, nil
}

// restore puts back a confirmation whose delete could not be issued.
func (c *confirmations) restore(confirmation domain.Confirmation) {
	c.mu.Lock()
	c.pending[confirmation.Token] = confirmation
	c.mu.Unlock()
}

func (c *confirmations) cancel(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[token]; !ok {
		return domain.ErrConfirmationNotFound
	}
	delete(c.pending, token)
	return nil
}

func (c *confirmations) list() []domain.Confirmation {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
	out := make([]domain.Confirmation, 0, len(c.pending))
	for _, confirmation := range c.pending {
		out = append(out, confirmation)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.Before(out[j].RequestedAt)
		}
		return out[i].Token < out[j].Token
	})
	return out
}

func (c *confirmations) pruneLocked() {
	now := c.now()
	for token, confirmation := range c.pending {
		if confirmation.Expired(now) {
			delete(c.pending, token)
		}
	}
}
