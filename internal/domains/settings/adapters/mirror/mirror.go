// Package mirror keeps the business settings singleton in sync and
// materializes a default document while it is found missing.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-pos-server/internal/domains/settings/domain"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
	"github.com/Apurer/go-gin-pos-server/internal/shared/mirror"
)

// Path addresses the settings singleton.
const Path = "settings/business"

const createTimeout = 10 * time.Second

// Stored field names, for partial updates.
const (
	FieldBusinessName   = "businessName"
	FieldTaxRatePercent = "taxRatePercent"
	FieldTheme          = "theme"
)

type businessDocument struct {
	BusinessName   string            `json:"businessName"`
	TaxRatePercent decimal.Decimal   `json:"taxRatePercent"`
	Theme          map[string]string `json:"theme,omitempty"`
}

// Mirror is the settings read model.
type Mirror struct {
	single   *mirror.Singleton[domain.Business]
	store    docstore.Store
	defaults domain.Business
	logger   *slog.Logger

	mu      sync.Mutex
	created bool
}

// New builds an idle settings mirror that falls back to defaults.
func New(store docstore.Store, defaults domain.Business, logger *slog.Logger, opts ...mirror.Option) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Mirror{
		single:   mirror.NewSingleton(store, Path, Decode, append(opts, mirror.WithLogger(logger))...),
		store:    store,
		defaults: defaults,
		logger:   logger,
	}
	m.single.OnChange(func(_ domain.Business, present bool) {
		if !present {
			m.createDefault()
		}
	})
	return m
}

func (m *Mirror) Start(ctx context.Context) error { return m.single.Start(ctx) }

func (m *Mirror) Stop() { m.single.Stop() }

func (m *Mirror) WaitReady(ctx context.Context) error { return m.single.WaitReady(ctx) }

func (m *Mirror) Healthy() bool { return m.single.Healthy() }

func (m *Mirror) LastError() error { return m.single.LastError() }

// Current returns the remote settings, or the defaults while none exist.
func (m *Mirror) Current() domain.Business {
	if value, ok := m.single.Current(); ok {
		return value
	}
	return m.defaults
}

// OnChange registers fn to run with the effective settings after every delivery.
func (m *Mirror) OnChange(fn func(domain.Business)) (cancel func()) {
	return m.single.OnChange(func(value domain.Business, present bool) {
		if !present {
			value = m.defaults
		}
		fn(value)
	})
}

// createDefault writes the default document until one write succeeds. A
// failed write is retried on the next delivery that finds the document absent.
func (m *Mirror) createDefault() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.created {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), createTimeout)
	defer cancel()
	doc, err := Encode(m.defaults)
	if err == nil {
		err = m.store.Set(ctx, Path, doc)
	}
	if err != nil {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "failed to create default settings",
			slog.String("path", Path), slog.String("error", err.Error()))
		return
	}
	m.created = true
	m.logger.LogAttrs(ctx, slog.LevelInfo, "created default settings", slog.String("path", Path))
}

// Encode converts settings into the stored document.
func Encode(b domain.Business) (docstore.Document, error) {
	return docstore.Encode(businessDocument{
		BusinessName:   b.BusinessName,
		TaxRatePercent: b.TaxRatePercent,
		Theme:          b.Theme,
	})
}

// Decode validates the stored document.
func Decode(record docstore.Record) (domain.Business, error) {
	var doc businessDocument
	if err := docstore.Decode(record.Data, &doc); err != nil {
		return domain.Business{}, fmt.Errorf("decode settings: %w", err)
	}
	b := domain.Business{BusinessName: doc.BusinessName, TaxRatePercent: doc.TaxRatePercent, Theme: doc.Theme}
	if b.Theme == nil {
		b.Theme = map[string]string{}
	}
	if err := b.Validate(); err != nil {
		return domain.Business{}, fmt.Errorf("decode settings: %w", err)
	}
	return b, nil
}
