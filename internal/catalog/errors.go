package catalog

import (
	"errors"
	"strings"
)

// ErrDuplicate reports an insert that collided with an existing row, either
// on storage key or on source message id.
var ErrDuplicate = errors.New("duplicate catalog item")

// isUniqueViolation detects SQLite unique-constraint failures. The driver
// does not expose a typed error for this, so match on the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
