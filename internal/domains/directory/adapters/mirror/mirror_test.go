package mirror

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-pos-server/internal/domains/directory/domain"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore/memory"
)

func TestMirror_FindByUsername(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	doc, err := Encode(domain.Employee{Username: "sam", Password: "pw"})
	require.NoError(t, err)
	_, err = store.Create(ctx, Collection, doc)
	require.NoError(t, err)
	_, err = store.Create(ctx, Collection, docstore.Document{"username": "ghost"})
	require.NoError(t, err)

	m := New(store)
	require.NoError(t, m.Start(ctx))
	t.Cleanup(m.Stop)
	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, m.WaitReady(waitCtx))

	employee, ok := m.FindByUsername("sam")
	require.True(t, ok)
	assert.Equal(t, "pw", employee.Password)

	byID, ok := m.Lookup(employee.ID)
	require.True(t, ok)
	assert.Equal(t, "sam", byID.Username)

	_, ok = m.FindByUsername("ghost")
	assert.False(t, ok, "records without a password are skipped")
}
