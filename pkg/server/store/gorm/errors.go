package gorm

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

// translateError maps driver and GORM errors onto the store package's
// sentinel errors so handlers can switch on them.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return store.ErrDuplicate
		case "23503":
			// Foreign-key violation: the referenced row does not exist
			return store.ErrNotFound
		}
	}
	// pgx reports violations with the same SQLSTATEs in its message
	if strings.Contains(err.Error(), "23505") || strings.Contains(err.Error(), "duplicate key") {
		return store.ErrDuplicate
	}
	if strings.Contains(err.Error(), "23503") || strings.Contains(err.Error(), "foreign key") {
		return store.ErrNotFound
	}

	return err
}
