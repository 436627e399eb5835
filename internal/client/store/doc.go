// Package store is the local Record Store of the sync engine.
//
// # Overview
//
// A Store keeps named collections of JSON documents in an embedded SQLite
// database (modernc.org/sqlite). Each collection is keyed by id, remembers
// insertion order, and may carry secondary indexes over document fields.
// The schema is versioned with goose: migrations embedded in
// internal/client/migrations are applied in order by Initialize, after which
// the collection/index catalogue is read back from sqlite_master.
//
// # Operations
//
//   - Put upserts a Record; Get, GetAll, Find read typed values back.
//   - Delete removes one document, DeleteRange everything on one side of an
//     index boundary, Clear and ClearAll empty collections.
//   - Update performs a read-modify-write inside one transaction.
//   - Usage reports bytes used against the configured quota.
//
// # Errors
//
// Failures are wrapped around ErrStoreUnavailable (open, migrate, quota,
// permissions) or ErrTransactionFailed (any single statement). A full store
// additionally matches ErrQuotaExceeded. Missing documents are not errors.
//
// # Concurrency
//
// A Store is safe for concurrent use. Concurrent first callers share a
// single initialization; afterwards the pool holds one connection, so
// statements are applied in call order.
package store
