// Package storetest holds behaviour checks shared by every
// store.DocumentStore backend.
package storetest

import (
	"context"
	"iter"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/gasdesk/internal/store"
)

// Factory returns an empty store. The store is closed by the suite.
type Factory func(t *testing.T) store.DocumentStore

// Run exercises the DocumentStore contract against the backend built by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	open := func(t *testing.T) store.DocumentStore {
		st := newStore(t)
		t.Cleanup(func() { _ = st.Close() })
		return st
	}

	t.Run("get missing document", func(t *testing.T) {
		st := open(t)

		_, err := st.Get(ctx, "CustomerRegistration", "199012345678")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		st := open(t)

		err := st.Put(ctx, "OrgGasRequests", "B1", store.Document{
			"busiRegNo":     "B1",
			"cylinderType":  "5 kg",
			"cylinderCount": 5,
			"status":        "pending",
		})
		require.NoError(t, err)

		doc, err := st.Get(ctx, "OrgGasRequests", "B1")
		require.NoError(t, err)

		status, ok := doc.String("status")
		require.True(t, ok)
		require.Equal(t, "pending", status)

		count, ok := doc.Int("cylinderCount")
		require.True(t, ok)
		require.EqualValues(t, 5, count)
	})

	t.Run("put overwrites", func(t *testing.T) {
		st := open(t)

		require.NoError(t, st.Put(ctx, "OrgGasRequests", "B1", store.Document{"cylinderCount": 5}))
		require.NoError(t, st.Put(ctx, "OrgGasRequests", "B1", store.Document{"cylinderCount": 9}))

		doc, err := st.Get(ctx, "OrgGasRequests", "B1")
		require.NoError(t, err)
		count, _ := doc.Int("cylinderCount")
		require.EqualValues(t, 9, count)

		require.Equal(t, []string{"B1"}, keys(t, st.List(ctx, "OrgGasRequests")))
	})

	t.Run("returned documents are copies", func(t *testing.T) {
		st := open(t)

		doc := store.Document{"status": "pending"}
		require.NoError(t, st.Put(ctx, "OrgGasRequests", "B1", doc))
		doc["status"] = "mutated"

		got, err := st.Get(ctx, "OrgGasRequests", "B1")
		require.NoError(t, err)
		got["status"] = "mutated again"

		again, err := st.Get(ctx, "OrgGasRequests", "B1")
		require.NoError(t, err)
		status, _ := again.String("status")
		require.Equal(t, "pending", status)
	})

	t.Run("add generates keys in creation order", func(t *testing.T) {
		st := open(t)

		var added []string
		for i := range 5 {
			key, err := st.Add(ctx, "tokens", store.Document{"token": "T", "cylinderCount": i})
			require.NoError(t, err)
			require.NotEmpty(t, key)
			added = append(added, key)
		}

		require.Equal(t, added, keys(t, st.List(ctx, "tokens")))
	})

	t.Run("list walks in key order", func(t *testing.T) {
		st := open(t)

		for _, key := range []string{"c", "a", "b"} {
			require.NoError(t, st.Put(ctx, "gasOutletReg", key, store.Document{"outletName": key}))
		}

		require.Equal(t, []string{"a", "b", "c"}, keys(t, st.List(ctx, "gasOutletReg")))
	})

	t.Run("list of empty collection", func(t *testing.T) {
		st := open(t)

		require.Empty(t, keys(t, st.List(ctx, "tokens")))
	})

	t.Run("list is restartable", func(t *testing.T) {
		st := open(t)

		require.NoError(t, st.Put(ctx, "gasOutletReg", "a", store.Document{"outletName": "a"}))
		seq := st.List(ctx, "gasOutletReg")

		require.Equal(t, []string{"a"}, keys(t, seq))

		require.NoError(t, st.Put(ctx, "gasOutletReg", "b", store.Document{"outletName": "b"}))
		require.Equal(t, []string{"a", "b"}, keys(t, seq))
	})

	t.Run("list observes writes made during the walk", func(t *testing.T) {
		st := open(t)

		require.NoError(t, st.Put(ctx, "gasOutletReg", "a", store.Document{"outletName": "a"}))
		require.NoError(t, st.Put(ctx, "gasOutletReg", "b", store.Document{"outletName": "b"}))

		var seen []string
		for entry, err := range st.List(ctx, "gasOutletReg") {
			require.NoError(t, err)
			seen = append(seen, entry.Key)
			if entry.Key == "a" {
				require.NoError(t, st.Put(ctx, "gasOutletReg", "c", store.Document{"outletName": "c"}))
			}
		}

		require.Equal(t, []string{"a", "b", "c"}, seen)
	})

	t.Run("list stops when consumer breaks", func(t *testing.T) {
		st := open(t)

		for _, key := range []string{"a", "b", "c"} {
			require.NoError(t, st.Put(ctx, "tokens", key, store.Document{"token": key}))
		}

		var seen []string
		for entry, err := range st.List(ctx, "tokens") {
			require.NoError(t, err)
			seen = append(seen, entry.Key)
			break
		}
		require.Equal(t, []string{"a"}, seen)
	})

	t.Run("find filters on field equality", func(t *testing.T) {
		st := open(t)

		require.NoError(t, st.Put(ctx, "CustomerRegistration", "n1", store.Document{"email": "a@b.com"}))
		require.NoError(t, st.Put(ctx, "CustomerRegistration", "n2", store.Document{"email": "x@y.com"}))
		require.NoError(t, st.Put(ctx, "CustomerRegistration", "n3", store.Document{"email": "a@b.com"}))

		require.Equal(t, []string{"n1", "n3"}, keys(t, st.Find(ctx, "CustomerRegistration", "email", "a@b.com")))
		require.Empty(t, keys(t, st.Find(ctx, "CustomerRegistration", "email", "A@B.COM")))
		require.Empty(t, keys(t, st.Find(ctx, "CustomerRegistration", "missing", "a@b.com")))
	})

	t.Run("collections are isolated", func(t *testing.T) {
		st := open(t)

		require.NoError(t, st.Put(ctx, "IndCustGasRequests", "K", store.Document{"status": "pending"}))

		_, err := st.Get(ctx, "OrgGasRequests", "K")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("invalid paths", func(t *testing.T) {
		st := open(t)

		_, err := st.Get(ctx, "", "k")
		require.ErrorIs(t, err, store.ErrInvalidCollection)

		err = st.Put(ctx, "tokens", "a/b", store.Document{})
		require.ErrorIs(t, err, store.ErrInvalidKey)
	})

	t.Run("cancelled context ends the walk with an error", func(t *testing.T) {
		st := open(t)
		require.NoError(t, st.Put(ctx, "tokens", "a", store.Document{"token": "a"}))

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		var walkErr error
		for _, err := range st.List(cancelled, "tokens") {
			if err != nil {
				walkErr = err
				break
			}
		}
		require.Error(t, walkErr)
	})
}

func keys(t *testing.T, seq iter.Seq2[store.Entry, error]) []string {
	t.Helper()

	var out []string
	for entry, err := range seq {
		require.NoError(t, err)
		out = append(out, entry.Key)
	}
	return out
}
