package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/domain"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore/memory"
)

func sampleOrder() domain.SubmittedOrder {
	snapshot := domain.Snapshot{
		Lines:           []domain.Line{{ItemID: "a", Name: "Burger", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2}},
		DiscountPercent: decimal.NewFromInt(10),
	}
	rate := decimal.NewFromInt(8)
	return domain.SubmittedOrder{
		SessionID:      "s1",
		Employee:       "sam",
		Order:          snapshot,
		TaxRatePercent: rate,
		Totals:         domain.ComputeTotals(snapshot, rate).Rounded(),
		Status:         domain.StatusPending,
		SubmittedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestOrderStore_SubmitWritesPendingOrder(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var records []docstore.Record
	received := make(chan struct{}, 4)
	unsubscribe, err := store.Subscribe(ctx, Collection, func(r []docstore.Record) {
		records = r
		received <- struct{}{}
	}, nil)
	require.NoError(t, err)
	defer unsubscribe()
	<-received

	id, err := NewOrderStore(store).Submit(ctx, sampleOrder())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("order not observed")
	}
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, "pending", records[0].Data["status"])
	assert.Equal(t, "19.44", records[0].Data["total"])

	var doc OrderDocument
	require.NoError(t, docstore.Decode(records[0].Data, &doc))
	doc.ID = records[0].ID
	restored := FromDocument(doc)
	assert.Equal(t, "sam", restored.Employee)
	require.Len(t, restored.Order.Lines, 1)
	assert.Equal(t, 2, restored.Order.Lines[0].Quantity)
	assert.True(t, restored.Totals.TaxAmount.Equal(decimal.RequireFromString("1.44")))
}

func TestOrderStore_SubmitPropagatesStoreFailure(t *testing.T) {
	store := memory.NewStore()
	store.FailWrites(errors.New("offline"))

	_, err := NewOrderStore(store).Submit(context.Background(), sampleOrder())
	require.ErrorIs(t, err, docstore.ErrUnavailable)
}
