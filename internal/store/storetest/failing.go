package storetest

import (
	"context"
	"errors"
	"iter"

	"github.com/wolfeidau/gasdesk/internal/store"
)

// ErrUnavailable is returned by every Failing operation.
var ErrUnavailable = errors.New("store unavailable for test")

// Failing is a DocumentStore whose operations all fail. Wrap it around a
// working store with Fail to fail only selected collections.
type Failing struct {
	store.DocumentStore

	// Collections limits failures to these collections. Empty fails everything.
	Collections []string
}

// Fail returns a store that fails operations on collections and passes the
// rest to next.
func Fail(next store.DocumentStore, collections ...string) *Failing {
	return &Failing{DocumentStore: next, Collections: collections}
}

func (f *Failing) fails(collection string) bool {
	if f.DocumentStore == nil || len(f.Collections) == 0 {
		return true
	}
	for _, c := range f.Collections {
		if c == collection {
			return true
		}
	}
	return false
}

func (f *Failing) Get(ctx context.Context, collection, key string) (store.Document, error) {
	if f.fails(collection) {
		return nil, ErrUnavailable
	}
	return f.DocumentStore.Get(ctx, collection, key)
}

func (f *Failing) Put(ctx context.Context, collection, key string, doc store.Document) error {
	if f.fails(collection) {
		return ErrUnavailable
	}
	return f.DocumentStore.Put(ctx, collection, key, doc)
}

func (f *Failing) Add(ctx context.Context, collection string, doc store.Document) (string, error) {
	if f.fails(collection) {
		return "", ErrUnavailable
	}
	return f.DocumentStore.Add(ctx, collection, doc)
}

func (f *Failing) List(ctx context.Context, collection string) iter.Seq2[store.Entry, error] {
	if f.fails(collection) {
		return failed
	}
	return f.DocumentStore.List(ctx, collection)
}

func (f *Failing) Find(ctx context.Context, collection, field, value string) iter.Seq2[store.Entry, error] {
	if f.fails(collection) {
		return failed
	}
	return f.DocumentStore.Find(ctx, collection, field, value)
}

func (f *Failing) Close() error {
	if f.DocumentStore == nil {
		return nil
	}
	return f.DocumentStore.Close()
}

func failed(yield func(store.Entry, error) bool) {
	yield(store.Entry{}, ErrUnavailable)
}
