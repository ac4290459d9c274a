package store

import (
	"fmt"

	"github.com/google/uuid"
)

// NewKey generates a document key. UUIDv7 strings sort by creation time, so
// collections walked in key order come back oldest first.
func NewKey() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return id.String(), nil
}
