package store

import (
	"context"
	"errors"
	"iter"
)

// Sentinel errors for common error conditions
var (
	ErrNotFound          = errors.New("document not found")
	ErrInvalidCollection = errors.New("invalid collection name")
	ErrInvalidKey        = errors.New("invalid document key")
)

// Entry is a document together with the key it is stored under.
type Entry struct {
	Key      string
	Document Document
}

// DocumentStore is a flat key-value document store addressed by
// <collection>/<key>. Writes are unconditional overwrites; there are no
// cross-key transactions.
type DocumentStore interface {
	// Get returns the document stored at collection/key.
	// Returns ErrNotFound if there is no such document.
	Get(ctx context.Context, collection, key string) (Document, error)

	// Put writes doc at collection/key, replacing whatever was there.
	Put(ctx context.Context, collection, key string, doc Document) error

	// Add writes doc under a newly generated key and returns the key.
	// Generated keys sort in creation order.
	Add(ctx context.Context, collection string, doc Document) (string, error)

	// List walks the collection in key order. The walk is live: documents
	// written while it is in progress may be observed. Each call to the
	// returned sequence starts a fresh walk.
	List(ctx context.Context, collection string) iter.Seq2[Entry, error]

	// Find walks the documents whose field equals value, in key order.
	Find(ctx context.Context, collection, field, value string) iter.Seq2[Entry, error]

	// Close releases backend resources.
	Close() error
}

// ValidatePath checks a collection/key pair before it reaches a backend.
func ValidatePath(collection, key string) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	if key == "" || containsSlash(key) {
		return ErrInvalidKey
	}
	return nil
}

// ValidateCollection checks a collection name.
func ValidateCollection(collection string) error {
	if collection == "" || containsSlash(collection) {
		return ErrInvalidCollection
	}
	return nil
}

func containsSlash(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return true
		}
	}
	return false
}

// Filter narrows a sequence to documents whose field equals value. Backends
// without server side filtering implement Find with it.
func Filter(seq iter.Seq2[Entry, error], field, value string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for entry, err := range seq {
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if s, ok := entry.Document.String(field); !ok || s != value {
				continue
			}
			if !yield(entry, nil) {
				return
			}
		}
	}
}
