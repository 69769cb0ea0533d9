package mirror

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore/memory"
	"github.com/Apurer/go-gin-pos-server/internal/shared/fault"
)

type item struct {
	ID   string
	Name string
}

func decodeItem(record docstore.Record) (item, error) {
	name, _ := record.Data["name"].(string)
	if name == "" {
		return item{}, errors.New("missing name")
	}
	return item{ID: record.ID, Name: name}, nil
}

func fastRetry() Option {
	return WithBackOff(func() backoff.BackOff { return backoff.NewConstantBackOff(10 * time.Millisecond) })
}

// flakyStore refuses the first n subscribe attempts.
type flakyStore struct {
	docstore.Store
	refusals atomic.Int32
}

func (f *flakyStore) Subscribe(ctx context.Context, collection string, onSnapshot docstore.SnapshotFunc, onError docstore.ErrorFunc) (docstore.Unsubscribe, error) {
	if f.refusals.Add(-1) >= 0 {
		return nil, docstore.ErrUnavailable
	}
	return f.Store.Subscribe(ctx, collection, onSnapshot, onError)
}

func TestCollection_ReplacesSnapshotOnChange(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	_, err := store.Create(ctx, "items", docstore.Document{"name": "Burger"})
	require.NoError(t, err)

	m := NewCollection(store, "items", decodeItem)
	require.NoError(t, m.Start(ctx))
	t.Cleanup(m.Stop)
	require.NoError(t, m.WaitReady(ctx))
	require.Len(t, m.CurrentSnapshot(), 1)
	require.True(t, m.Healthy())

	changes := make(chan []item, 4)
	cancel := m.OnChange(func(items []item) { changes <- items })
	defer cancel()

	_, err = store.Create(ctx, "items", docstore.Document{"name": "Fries"})
	require.NoError(t, err)

	select {
	case items := <-changes:
		require.Len(t, items, 2)
	case <-time.After(time.Second):
		t.Fatal("no change notification")
	}
	assert.Equal(t, m.CurrentSnapshot(), m.CurrentSnapshot())
}

func TestCollection_SkipsUndecodableRecords(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	_, err := store.Create(ctx, "items", docstore.Document{"name": "Soda"})
	require.NoError(t, err)
	_, err = store.Create(ctx, "items", docstore.Document{"price": "1.00"})
	require.NoError(t, err)

	m := NewCollection(store, "items", decodeItem)
	require.NoError(t, m.Start(ctx))
	t.Cleanup(m.Stop)
	require.NoError(t, m.WaitReady(ctx))

	snapshot := m.CurrentSnapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Soda", snapshot[0].Name)
}

func TestCollection_SnapshotIsACopy(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	_, err := store.Create(ctx, "items", docstore.Document{"name": "Soda"})
	require.NoError(t, err)

	m := NewCollection(store, "items", decodeItem)
	require.NoError(t, m.Start(ctx))
	t.Cleanup(m.Stop)
	require.NoError(t, m.WaitReady(ctx))

	snapshot := m.CurrentSnapshot()
	snapshot[0].Name = "changed"
	assert.Equal(t, "Soda", m.CurrentSnapshot()[0].Name)
}

func TestCollection_ResubscribesAfterDisconnect(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	_, err := store.Create(ctx, "items", docstore.Document{"name": "Burger"})
	require.NoError(t, err)

	m := NewCollection(store, "items", decodeItem, fastRetry())
	require.NoError(t, m.Start(ctx))
	t.Cleanup(m.Stop)
	require.NoError(t, m.WaitReady(ctx))

	store.Disconnect(errors.New("socket closed"))

	// The previous snapshot survives the outage.
	require.Len(t, m.CurrentSnapshot(), 1)

	_, err = store.Create(ctx, "items", docstore.Document{"name": "Fries"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return m.Healthy() && len(m.CurrentSnapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCollection_RetriesRefusedSubscribe(t *testing.T) {
	store := &flakyStore{Store: memory.NewStore()}
	store.refusals.Store(2)
	ctx := context.Background()

	m := NewCollection(store, "items", decodeItem, fastRetry())
	require.NoError(t, m.Start(ctx))
	t.Cleanup(m.Stop)

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, m.WaitReady(waitCtx))
	assert.True(t, m.Healthy())
	assert.NoError(t, m.LastError())
}

func TestCollection_WaitReadyReportsRemoteUnavailable(t *testing.T) {
	store := &flakyStore{Store: memory.NewStore()}
	store.refusals.Store(1000)
	ctx := context.Background()

	m := NewCollection(store, "items", decodeItem, fastRetry())
	require.NoError(t, m.Start(ctx))
	t.Cleanup(m.Stop)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	err := m.WaitReady(waitCtx)
	require.ErrorIs(t, err, fault.ErrRemoteUnavailable)
	assert.False(t, m.Healthy())
}

func TestCollection_StartTwiceFails(t *testing.T) {
	m := NewCollection(memory.NewStore(), "items", decodeItem)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)
	require.ErrorIs(t, m.Start(context.Background()), ErrAlreadyStarted)
}

func TestSingleton_TracksPresence(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	m := NewSingleton(store, "settings/business", decodeItem)
	require.NoError(t, m.Start(ctx))
	t.Cleanup(m.Stop)
	require.NoError(t, m.WaitReady(ctx))

	_, present := m.Current()
	require.False(t, present)

	require.NoError(t, store.Set(ctx, "settings/business", docstore.Document{"name": "Stand"}))
	require.Eventually(t, func() bool {
		value, present := m.Current()
		return present && value.Name == "Stand"
	}, time.Second, 5*time.Millisecond)
}
