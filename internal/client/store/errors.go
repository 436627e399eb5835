package store

import (
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrStoreUnavailable  = errors.New("local store unavailable")
	ErrQuotaExceeded     = errors.New("storage quota exceeded")
	ErrTransactionFailed = errors.New("local transaction failed")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownIndex      = errors.New("unknown index")
	ErrMissingID         = errors.New("record has no id")
)

// classify maps a driver error to the store taxonomy while keeping the
// original error in the chain.
func classify(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrTransactionFailed) {
		return err
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_FULL:
			return fmt.Errorf("%s %s: %w: %w: %w", op, collection, ErrStoreUnavailable, ErrQuotaExceeded, err)
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_PERM, sqlite3.SQLITE_READONLY,
			sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_IOERR:
			return fmt.Errorf("%s %s: %w: %w", op, collection, ErrStoreUnavailable, err)
		}
	}
	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%s %s: %w: %w", op, collection, ErrStoreUnavailable, err)
	}

	return fmt.Errorf("%s %s: %w: %w", op, collection, ErrTransactionFailed, err)
}
