package mirror

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-pos-server/internal/domains/settings/domain"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore/memory"
)

type countingStore struct {
	docstore.Store
	sets atomic.Int32
}

func (c *countingStore) Set(ctx context.Context, path string, data docstore.Document) error {
	c.sets.Add(1)
	return c.Store.Set(ctx, path, data)
}

func startMirror(t *testing.T, store docstore.Store, defaults domain.Business) *Mirror {
	t.Helper()
	m := New(store, defaults, nil)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.WaitReady(ctx))
	return m
}

func TestMirror_CreatesDefaultExactlyOnce(t *testing.T) {
	backing := memory.NewStore()
	store := &countingStore{Store: backing}
	defaults := domain.Default("Software POS Stand", decimal.RequireFromString("8.25"))

	m := startMirror(t, store, defaults)

	require.Eventually(t, func() bool { return store.sets.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, m.Current().TaxRatePercent.Equal(decimal.RequireFromString("8.25")))

	// A later disappearance does not trigger a second write.
	require.Eventually(t, func() bool {
		return backing.Delete(context.Background(), Path) == nil
	}, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), store.sets.Load())
	assert.Equal(t, "Software POS Stand", m.Current().BusinessName)
}

func TestMirror_RetriesDefaultAfterFailedWrite(t *testing.T) {
	backing := memory.NewStore()
	backing.FailWrites(errors.New("offline"))
	store := &countingStore{Store: backing}
	defaults := domain.Default("Software POS Stand", decimal.RequireFromString("8.25"))

	m := startMirror(t, store, defaults)
	require.Eventually(t, func() bool { return store.sets.Load() == 1 }, time.Second, 5*time.Millisecond)

	backing.FailWrites(nil)
	backing.Disconnect(nil)

	require.Eventually(t, func() bool { return store.sets.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := m.single.Current()
		return ok
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Software POS Stand", m.Current().BusinessName)
}

func TestMirror_ExistingSettingsAreNotOverwritten(t *testing.T) {
	backing := memory.NewStore()
	doc, err := Encode(domain.Default("Corner Cafe", decimal.NewFromInt(8)))
	require.NoError(t, err)
	require.NoError(t, backing.Set(context.Background(), Path, doc))

	store := &countingStore{Store: backing}
	m := startMirror(t, store, domain.Default("Fallback", decimal.RequireFromString("8.25")))

	assert.Equal(t, "Corner Cafe", m.Current().BusinessName)
	assert.True(t, m.Current().TaxRatePercent.Equal(decimal.NewFromInt(8)))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), store.sets.Load())
}

func TestMirror_PropagatesRemoteEdits(t *testing.T) {
	backing := memory.NewStore()
	m := startMirror(t, backing, domain.Default("Stand", decimal.RequireFromString("8.25")))

	require.Eventually(t, func() bool {
		return backing.Update(context.Background(), Path, docstore.Document{"taxRatePercent": "8"}) == nil
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return m.Current().TaxRatePercent.Equal(decimal.NewFromInt(8))
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Stand", m.Current().BusinessName)
}

func TestDecode_RejectsOutOfRangeRate(t *testing.T) {
	_, err := Decode(docstore.Record{ID: "business", Data: docstore.Document{"businessName": "Stand", "taxRatePercent": "120"}})
	assert.ErrorIs(t, err, domain.ErrInvalidTaxRate)
}
