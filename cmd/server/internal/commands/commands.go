package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/gasdesk/internal/logger"
	"github.com/wolfeidau/gasdesk/internal/store"
	boltstore "github.com/wolfeidau/gasdesk/internal/store/bolt"
	memorystore "github.com/wolfeidau/gasdesk/internal/store/memory"
	postgresstore "github.com/wolfeidau/gasdesk/internal/store/postgres"
)

type Globals struct {
	Debug    bool
	Dev      bool
	LogLevel string
	Version  string
}

// Logger builds the process logger and installs it as the zerolog default
// context logger.
func (g *Globals) Logger() (zerolog.Logger, error) {
	log, err := logger.Setup(logger.Config{Dev: g.Dev || g.Debug, Level: g.LogLevel})
	if err != nil {
		return log, err
	}
	zerolog.DefaultContextLogger = &log
	return log, nil
}

type StoreFlags struct {
	Type     string             `help:"store type" default:"memory" env:"GASDESK_STORE_TYPE" enum:"memory,bolt,postgres"`
	BoltPath string             `help:"path to the bolt database file" default:"./data/gasdesk.db" env:"GASDESK_BOLT_PATH"`
	Postgres PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Store Configuration
	PageSize     int   `help:"rows fetched per page when walking a collection" default:"256" env:"GASDESK_POSTGRES_PAGE_SIZE"`
	QueryTimeout int32 `help:"query timeout in seconds" default:"10"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"10"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"GASDESK_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (s *PostgresStoreFlags) poolConfig() *postgresstore.PoolConfig {
	return &postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: s.MaxConnLifetime,
		MaxConnIdleTime: s.MaxConnIdleTime,
	}
}

// open returns the configured document store wrapped with store metrics.
func (s *StoreFlags) open(ctx context.Context) (store.DocumentStore, error) {
	log := zerolog.Ctx(ctx)

	var (
		st  store.DocumentStore
		err error
	)

	switch s.Type {
	case "postgres":
		if err := s.Postgres.Validate(); err != nil {
			return nil, err
		}

		pool, err := postgresstore.NewPool(ctx, s.Postgres.poolConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}

		st, err = postgresstore.NewDocumentStore(ctx, pool, &postgresstore.DocumentStoreConfig{
			AutoMigrate:         s.Postgres.AutoMigrate,
			PageSize:            s.Postgres.PageSize,
			QueryTimeoutSeconds: s.Postgres.QueryTimeout,
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create document store: %w", err)
		}
		log.Info().Bool("auto_migrate", s.Postgres.AutoMigrate).Msg("Using PostgreSQL document store")

	case "bolt":
		st, err = boltstore.Open(s.BoltPath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", s.BoltPath).Msg("Using bolt document store")

	default:
		st = memorystore.NewDocumentStore()
		log.Info().Msg("Using in-memory document store")
	}

	return store.NewInstrumented(st, s.Type), nil
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	// Create HTTP server
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
