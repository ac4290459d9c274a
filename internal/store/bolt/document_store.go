// Package bolt is a store.DocumentStore backed by a single bbolt file. Each
// collection is a bucket; documents are JSON values keyed by document key.
package bolt

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/gasdesk/internal/store"
	bolt "go.etcd.io/bbolt"
)

// DocumentStore implements store.DocumentStore on bbolt.
type DocumentStore struct {
	path string
	db   *bolt.DB
}

var _ store.DocumentStore = (*DocumentStore)(nil)

// Open creates the bolt file if it doesn't exist and opens it otherwise.
func Open(path string) (*DocumentStore, error) {
	// Ensure the required directory structure exists.
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("unable to create directory for %s: %w", path, err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("unable to open bolt file %s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("Opened bolt document store")

	return &DocumentStore{path: path, db: db}, nil
}

// Get retrieves a document by collection and key.
func (s *DocumentStore) Get(ctx context.Context, collection, key string) (store.Document, error) {
	if err := store.ValidatePath(collection, key); err != nil {
		return nil, err
	}

	var doc store.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(collection))
		if bkt == nil {
			return store.ErrNotFound
		}

		val := bkt.Get([]byte(key))
		if val == nil {
			return store.ErrNotFound
		}

		var err error
		doc, err = store.UnmarshalDocument(val)
		return err
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Put stores a document, replacing any existing document at the same key.
func (s *DocumentStore) Put(ctx context.Context, collection, key string, doc store.Document) error {
	if err := store.ValidatePath(collection, key); err != nil {
		return err
	}

	data, err := doc.Marshal()
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return err
		}
		return bkt.Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", collection, key, err)
	}

	log.Debug().Str("collection", collection).Str("key", key).Msg("Stored document")

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

// List walks a bucket in key order. Every step is its own read
// transaction that seeks past the previous key, so the walk never pins a
// snapshot and never holds a transaction while the consumer runs.
func (s *DocumentStore) List(ctx context.Context, collection string) iter.Seq2[store.Entry, error] {
	return func(yield func(store.Entry, error) bool) {
		if err := store.ValidateCollection(collection); err != nil {
			yield(store.Entry{}, err)
			return
		}

		var (
			after   []byte
			started bool
		)
		for {
			if err := ctx.Err(); err != nil {
				yield(store.Entry{}, err)
				return
			}

			key, val, err := s.next(collection, after, started)
			if err != nil {
				yield(store.Entry{}, err)
				return
			}
			if key == nil {
				return
			}

			doc, err := store.UnmarshalDocument(val)
			if err != nil {
				yield(store.Entry{}, fmt.Errorf("%s/%s: %w", collection, key, err))
				return
			}

			if !yield(store.Entry{Key: string(key), Document: doc}, nil) {
				return
			}

			after = key
			started = true
		}
	}
}

// next returns copies of the first key/value after the cursor, or a nil key
// when the bucket is exhausted.
func (s *DocumentStore) next(collection string, after []byte, started bool) (key, val []byte, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(collection))
		if bkt == nil {
			return nil
		}

		c := bkt.Cursor()
		k, v := c.First()
		if started {
			k, v = c.Seek(after)
			if k != nil && string(k) == string(after) {
				k, v = c.Next()
			}
		}
		if k == nil {
			return nil
		}

		// bolt memory is only valid inside the transaction
		key = append([]byte(nil), k...)
		val = append([]byte(nil), v...)
		return nil
	})
	return key, val, err
}

// Find walks the documents whose field equals value. bbolt has no secondary
// indexes so this is a filtered List.
func (s *DocumentStore) Find(ctx context.Context, collection, field, value string) iter.Seq2[store.Entry, error] {
	return store.Filter(s.List(ctx, collection), field, value)
}

// Close the bolt database.
func (s *DocumentStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
