package postgres

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/gasdesk/internal/store"
)

// DocumentStore implements store.DocumentStore on a single PostgreSQL table
// of JSONB documents keyed by (collection, key).
type DocumentStore struct {
	pool *pgxpool.Pool
	cfg  *DocumentStoreConfig
}

var _ store.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore creates a PostgreSQL-backed document store on an existing pool.
// The store takes ownership of the pool and closes it on Close.
func NewDocumentStore(ctx context.Context, pool *pgxpool.Pool, cfg *DocumentStoreConfig) (*DocumentStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if cfg == nil {
		cfg = &DocumentStoreConfig{}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.AutoMigrate {
		if err := RunMigrations(ctx, pool); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return &DocumentStore{pool: pool, cfg: cfg}, nil
}

func (s *DocumentStore) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(s.cfg.QueryTimeoutSeconds)*time.Second)
}

// Get retrieves a document by collection and key.
func (s *DocumentStore) Get(ctx context.Context, collection, key string) (store.Document, error) {
	if err := store.ValidatePath(collection, key); err != nil {
		return nil, err
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	var body []byte
	err := s.pool.QueryRow(ctx, `
		SELECT body FROM documents WHERE collection = $1 AND key = $2
	`, collection, key).Scan(&body)
	if err != nil {
		return nil, mapPostgresError(err)
	}

	return store.UnmarshalDocument(body)
}

// Put stores a document, replacing any existing document at the same key.
func (s *DocumentStore) Put(ctx context.Context, collection, key string, doc store.Document) error {
	if err := store.ValidatePath(collection, key); err != nil {
		return err
	}

	body, err := doc.Marshal()
	if err != nil {
		return err
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (collection, key, body)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, key)
		DO UPDATE SET body = EXCLUDED.body, updated_at = now()
	`, collection, key, string(body))
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", collection, key, mapPostgresError(err))
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

// List walks a collection in key order using keyset pagination.
func (s *DocumentStore) List(ctx context.Context, collection string) iter.Seq2[store.Entry, error] {
	return s.walk(ctx, collection, "", "")
}

// Find walks the documents whose top level string field equals value.
func (s *DocumentStore) Find(ctx context.Context, collection, field, value string) iter.Seq2[store.Entry, error] {
	if field == "" {
		return store.Filter(s.List(ctx, collection), field, value)
	}
	return s.walk(ctx, collection, field, value)
}

// walk fetches pages until one comes back empty. A short page is not treated
// as the end, so rows written behind the cursor mid-walk are still reached.
func (s *DocumentStore) walk(ctx context.Context, collection, field, value string) iter.Seq2[store.Entry, error] {
	return func(yield func(store.Entry, error) bool) {
		if err := store.ValidateCollection(collection); err != nil {
			yield(store.Entry{}, err)
			return
		}

		after := ""
		for {
			if err := ctx.Err(); err != nil {
				yield(store.Entry{}, err)
				return
			}

			page, err := s.page(ctx, collection, after, field, value)
			if err != nil {
				yield(store.Entry{}, err)
				return
			}
			if len(page) == 0 {
				return
			}

			for _, entry := range page {
				if !yield(entry, nil) {
					return
				}
				after = entry.Key
			}
		}
	}
}

func (s *DocumentStore) page(ctx context.Context, collection, after, field, value string) ([]store.Entry, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	var (
		rows pgx.Rows
		err  error
	)
	if field == "" {
		rows, err = s.pool.Query(ctx, `
			SELECT key, body FROM documents
			WHERE collection = $1 AND key > $2
			ORDER BY key
			LIMIT $3
		`, collection, after, s.cfg.PageSize)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT key, body FROM documents
			WHERE collection = $1 AND key > $2
			  AND jsonb_typeof(body->$3) = 'string' AND body->>$3 = $4
			ORDER BY key
			LIMIT $5
		`, collection, after, field, value, s.cfg.PageSize)
	}
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	entries := make([]store.Entry, 0, s.cfg.PageSize)
	for rows.Next() {
		var (
			key  string
			body []byte
		)
		if err := rows.Scan(&key, &body); err != nil {
			return nil, mapPostgresError(err)
		}

		doc, err := store.UnmarshalDocument(body)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", collection, key, err)
		}

		entries = append(entries, store.Entry{Key: key, Document: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(err)
	}

	return entries, nil
}

// Close releases the connection pool.
func (s *DocumentStore) Close() error {
	s.pool.Close()
	return nil
}
