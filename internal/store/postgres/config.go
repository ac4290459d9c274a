package postgres

import (
	"fmt"
)

// DefaultPageSize is the number of documents fetched per keyset page while
// walking a collection.
const DefaultPageSize = 256

// DocumentStoreConfig holds configuration for the PostgreSQL document store.
// Pool configuration is handled separately via PoolConfig.
type DocumentStoreConfig struct {
	// AutoMigrate applies pending migrations when the store is opened.
	AutoMigrate bool

	// PageSize is the number of rows fetched per page when walking a collection.
	// Default: 256
	PageSize int

	// QueryTimeoutSeconds bounds each individual query.
	// Default: 10 seconds
	QueryTimeoutSeconds int32
}

// Validate checks that the configuration is valid.
func (c *DocumentStoreConfig) Validate() error {
	if c.PageSize < 0 {
		return fmt.Errorf("page size must not be negative")
	}
	if c.QueryTimeoutSeconds < 0 {
		return fmt.Errorf("query timeout must not be negative")
	}
	return nil
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *DocumentStoreConfig) ApplyDefaults() {
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.QueryTimeoutSeconds == 0 {
		c.QueryTimeoutSeconds = 10
	}
}
