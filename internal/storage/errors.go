// ABOUTME: Storage error kinds shared by every backend.
// ABOUTME: Missing keys are never errors; unavailable stores wrap ErrStorageUnavailable.
package storage

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable marks failures of the underlying store itself:
// open, query, scan, decode or write errors. Callers may fall back to a
// snapshot for reads when they see it.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrReadOnly is returned for writes while another process holds the KV lock.
var ErrReadOnly = errors.New("database is locked by another process (MCP server?)")

// unavailable wraps err so it matches both ErrStorageUnavailable and the cause.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
