package application

import (
	"context"

	directorydomain "github.com/Apurer/go-gin-pos-server/internal/domains/directory/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/ports"
)

// Service exposes order-entry use cases over the open sessions.
type Service struct {
	sessions *Sessions
	settings ports.Settings
	pipeline *CommitPipeline
}

func NewService(sessions *Sessions, settings ports.Settings, pipeline *CommitPipeline) *Service {
	return &Service{sessions: sessions, settings: settings, pipeline: pipeline}
}

func (s *Service) OpenSession(_ context.Context, employee directorydomain.Employee) (ports.State, error) {
	return s.sessions.Open(employee.Username).State(), nil
}

func (s *Service) CloseSession(_ context.Context, sessionID string) error {
	return s.sessions.Close(sessionID)
}

func (s *Service) Order(_ context.Context, sessionID string) (ports.State, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return ports.State{}, err
	}
	return session.State(), nil
}

func (s *Service) AddItem(ctx context.Context, sessionID, itemID string) (ports.State, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return ports.State{}, err
	}
	return session.AddItem(ctx, itemID)
}

func (s *Service) ChangeQuantity(_ context.Context, sessionID, itemID string, delta int) (ports.State, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return ports.State{}, err
	}
	return session.ChangeQuantity(itemID, delta), nil
}

func (s *Service) RemoveItem(_ context.Context, sessionID, itemID string) (ports.State, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return ports.State{}, err
	}
	return session.RemoveItem(itemID), nil
}

func (s *Service) SetDiscountPercent(_ context.Context, sessionID, raw string) (ports.State, bool, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return ports.State{}, false, err
	}
	state, applied := session.SetDiscountPercent(raw)
	return state, applied, nil
}

func (s *Service) Clear(_ context.Context, sessionID string) (ports.State, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return ports.State{}, err
	}
	return session.Clear(), nil
}

// Checkout commits the session's order. Only one checkout per session runs
// at a time. Once the write succeeds the submitted lines leave the order;
// edits made while it was in flight are kept.
func (s *Service) Checkout(ctx context.Context, sessionID string) (ports.CheckoutResult, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return ports.CheckoutResult{}, err
	}
	if err := session.beginSubmit(); err != nil {
		return ports.CheckoutResult{}, err
	}
	defer session.endSubmit()

	state := session.State()
	submitted, err := s.pipeline.submit(ctx, Draft{
		SessionID:      session.ID(),
		Employee:       session.Employee(),
		Order:          state.Order,
		TaxRatePercent: s.settings.Current().TaxRatePercent,
	})
	if err != nil {
		return ports.CheckoutResult{}, err
	}
	if submitted.ID == "" {
		return ports.CheckoutResult{Submitted: false}, nil
	}
	session.settle(state.Order)
	return ports.CheckoutResult{OrderID: submitted.ID, Submitted: true, Totals: submitted.Totals}, nil
}

func (s *Service) Watch(_ context.Context, sessionID string, fn func(ports.State)) (func(), error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Observe(fn), nil
}

var _ ports.Service = (*Service)(nil)
