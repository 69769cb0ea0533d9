package gormstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
	"github.com/Apurer/go-gin-pos-server/internal/platform/migrations"
	"github.com/Apurer/go-gin-pos-server/internal/platform/sqlite"
)

func newTestStore(t *testing.T) (*Store, *LocalNotifier) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sqlite.Connect(context.Background(), sqlite.InMemoryPath(name))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migrations.Run(db))

	notifier := NewLocalNotifier()
	return NewStore(db, notifier), notifier
}

type collector struct {
	mu     sync.Mutex
	latest []docstore.Record
	calls  int
	err    error
}

func (c *collector) snapshot(records []docstore.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest = records
	c.calls++
}

func (c *collector) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *collector) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.latest))
	for _, r := range c.latest {
		name, _ := r.Data["name"].(string)
		out = append(out, name)
	}
	return out
}

func TestStore_SubscribeSeesWrites(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	_, err := store.Create(ctx, "items", docstore.Document{"name": "Burger", "unitPrice": "10.00"})
	require.NoError(t, err)

	c := &collector{}
	unsubscribe, err := store.Subscribe(ctx, "items", c.snapshot, c.fail)
	require.NoError(t, err)
	defer unsubscribe()

	require.Eventually(t, func() bool { return len(c.names()) == 1 }, 2*time.Second, 10*time.Millisecond)

	id, err := store.Create(ctx, "items", docstore.Document{"name": "Fries"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		names := c.names()
		return len(names) == 2 && names[0] == "Burger" && names[1] == "Fries"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, store.Update(ctx, docstore.Join("items", id), docstore.Document{"name": "Curly Fries"}))
	require.Eventually(t, func() bool {
		names := c.names()
		return len(names) == 2 && names[1] == "Curly Fries"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, store.Delete(ctx, docstore.Join("items", id)))
	require.Eventually(t, func() bool { return len(c.names()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestStore_UpdateKeepsAbsentFields(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "employees/e1", docstore.Document{"username": "sam", "password": "pw"}))
	require.NoError(t, store.Update(ctx, "employees/e1", docstore.Document{"password": "new"}))

	record, err := store.get(ctx, "employees", "e1")
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, "sam", record.Data["username"])
	require.Equal(t, "new", record.Data["password"])
}

func TestStore_SetReplacesDocument(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "settings/business", docstore.Document{"businessName": "A", "theme": "dark"}))
	require.NoError(t, store.Set(ctx, "settings/business", docstore.Document{"businessName": "B"}))

	record, err := store.get(ctx, "settings", "business")
	require.NoError(t, err)
	require.Equal(t, "B", record.Data["businessName"])
	_, hasTheme := record.Data["theme"]
	require.False(t, hasTheme)
}

func TestStore_MissingDocuments(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.ErrorIs(t, store.Update(ctx, "items/missing", docstore.Document{"name": "x"}), docstore.ErrNotFound)
	require.ErrorIs(t, store.Delete(ctx, "items/missing"), docstore.ErrNotFound)
}

func TestStore_SingletonAbsentThenPresent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var mu sync.Mutex
	var values []*docstore.Record
	unsubscribe, err := store.SubscribeSingleton(ctx, "settings/business", func(r *docstore.Record) {
		mu.Lock()
		values = append(values, r)
		mu.Unlock()
	}, nil)
	require.NoError(t, err)
	defer unsubscribe()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(values) > 0 && values[0] == nil
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, store.Set(ctx, "settings/business", docstore.Document{"businessName": "Stand"}))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		last := values[len(values)-1]
		return last != nil && last.Data["businessName"] == "Stand"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStore_NotifierLossReportsUnavailable(t *testing.T) {
	store, notifier := newTestStore(t)

	c := &collector{}
	unsubscribe, err := store.Subscribe(context.Background(), "items", c.snapshot, c.fail)
	require.NoError(t, err)
	defer unsubscribe()

	notifier.Fail(errors.New("listener closed"))
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return errors.Is(c.err, docstore.ErrUnavailable)
	}, 2*time.Second, 10*time.Millisecond)
}
