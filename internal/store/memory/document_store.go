package memory

import (
	"context"
	"iter"
	"sync"

	"github.com/google/btree"
	"github.com/wolfeidau/gasdesk/internal/store"
)

type item struct {
	key string
	doc store.Document
}

func lessItem(a, b item) bool {
	return a.key < b.key
}

// DocumentStore implements store.DocumentStore using in-memory storage.
// This implementation is for testing and local development - data is lost on restart.
type DocumentStore struct {
	mu sync.RWMutex

	collections map[string]*btree.BTreeG[item] // collection -> documents ordered by key
}

var _ store.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		collections: make(map[string]*btree.BTreeG[item]),
	}
}

// Get retrieves a document by collection and key.
func (s *DocumentStore) Get(ctx context.Context, collection, key string) (store.Document, error) {
	if err := store.ValidatePath(collection, key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.collections[collection]
	if !ok {
		return nil, store.ErrNotFound
	}

	found, ok := tree.Get(item{key: key})
	if !ok {
		return nil, store.ErrNotFound
	}

	// Clone to avoid external modifications
	return found.doc.Clone(), nil
}

// Put stores a document, replacing any existing document at the same key.
func (s *DocumentStore) Put(ctx context.Context, collection, key string, doc store.Document) error {
	if err := store.ValidatePath(collection, key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tree, ok := s.collections[collection]
	if !ok {
		tree = btree.NewG(8, lessItem)
		s.collections[collection] = tree
	}

	// Clone to avoid external modifications
	tree.ReplaceOrInsert(item{key: key, doc: doc.Clone()})

	return nil
}

// Add stores a document under a generated key.
func (s *DocumentStore) Add(ctx context.Context, collection string, doc store.Document) (string, error) {
	key, err := store.NewKey()
	if err != nil {
		return "", err
	}

	if err := s.Put(ctx, collection, key, doc); err != nil {
		return "", err
	}

	return key, nil
}

// List walks a collection in key order. The lock is only held while
// locating the next item, so writes made during the walk are visible.
func (s *DocumentStore) List(ctx context.Context, collection string) iter.Seq2[store.Entry, error] {
	return func(yield func(store.Entry, error) bool) {
		if err := store.ValidateCollection(collection); err != nil {
			yield(store.Entry{}, err)
			return
		}

		var (
			after   string
			started bool
		)
		for {
			if err := ctx.Err(); err != nil {
				yield(store.Entry{}, err)
				return
			}

			next, ok := s.next(collection, after, started)
			if !ok {
				return
			}

			if !yield(store.Entry{Key: next.key, Document: next.doc.Clone()}, nil) {
				return
			}

			after = next.key
			started = true
		}
	}
}

// next returns the first item with a key after the cursor.
func (s *DocumentStore) next(collection, after string, started bool) (item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.collections[collection]
	if !ok {
		return item{}, false
	}

	var (
		found item
		hit   bool
	)
	tree.AscendGreaterOrEqual(item{key: after}, func(it item) bool {
		if started && it.key == after {
			return true
		}
		found, hit = it, true
		return false
	})

	return found, hit
}

// Find walks the documents whose field equals value.
func (s *DocumentStore) Find(ctx context.Context, collection, field, value string) iter.Seq2[store.Entry, error] {
	return store.Filter(s.List(ctx, collection), field, value)
}

// Close is a no-op for the in-memory store.
func (s *DocumentStore) Close() error {
	return nil
}
