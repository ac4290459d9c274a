package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/gasdesk/internal/store"
	"github.com/wolfeidau/gasdesk/internal/store/storetest"
)

func TestDocumentStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.DocumentStore {
		st, err := Open(filepath.Join(t.TempDir(), "gasdesk.db"))
		require.NoError(t, err)
		return st
	})
}

func TestDocumentStore_persistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "gasdesk.db")

	st, err := Open(path)
	require.NoError(t, err)

	key, err := st.Add(ctx, "gasOutletReg", store.Document{"outletName": "Outlet1"})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	doc, err := reopened.Get(ctx, "gasOutletReg", key)
	require.NoError(t, err)
	name, _ := doc.String("outletName")
	require.Equal(t, "Outlet1", name)
}
