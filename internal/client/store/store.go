package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/migrations"
	"github.com/dmitrijs2005/offsync/internal/dbx"
	"github.com/dmitrijs2005/offsync/internal/logging"
	"github.com/pressly/goose/v3"
	"golang.org/x/sync/singleflight"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// pageSize is SQLite's default page size, used to turn a byte quota into
// max_page_count.
const pageSize = 4096

// Record is anything that can be kept in a collection.
type Record interface {
	RecordID() string
}

// Direction selects the side of the boundary removed by DeleteRange.
type Direction int

const (
	// AtOrBelow removes documents whose indexed value is <= the boundary.
	AtOrBelow Direction = iota
	// AtOrAbove removes documents whose indexed value is >= the boundary.
	AtOrAbove
)

type Option func(*Store)

// WithMaxSizeBytes caps the database size. Writes past the cap fail with
// ErrQuotaExceeded.
func WithMaxSizeBytes(n int64) Option {
	return func(s *Store) { s.maxSize = n }
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

type Store struct {
	path    string
	maxSize int64
	now     func() time.Time
	logger  logging.Logger

	initGroup singleflight.Group

	mu      sync.RWMutex
	db      *sql.DB
	catalog map[string]map[string]struct{}
	version int64
}

// New returns a Store for the database file at path. Nothing is opened until
// Initialize or the first operation.
func New(path string, opts ...Option) *Store {
	s := &Store{path: path, now: time.Now, logger: logging.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Initialize opens the database and brings its schema to the latest version.
// It is safe to call repeatedly and from several goroutines.
func (s *Store) Initialize(ctx context.Context) error {
	if s.opened() {
		return nil
	}
	_, err, _ := s.initGroup.Do("init", func() (any, error) {
		if s.opened() {
			return nil, nil
		}
		return nil, s.open(ctx)
	})
	return err
}

func (s *Store) opened() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db != nil
}

func (s *Store) open(ctx context.Context) error {
	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrStoreUnavailable, s.path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: open %s: %w", ErrStoreUnavailable, s.path, err)
	}

	version, err := migrate(ctx, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: migrate %s: %w", ErrStoreUnavailable, s.path, err)
	}

	catalog, err := loadCatalog(ctx, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: read schema: %w", ErrStoreUnavailable, err)
	}

	// single local writer from here on
	db.SetMaxOpenConns(1)

	s.mu.Lock()
	s.db = db
	s.catalog = catalog
	s.version = version
	s.mu.Unlock()

	s.logger.Info(ctx, "local store ready", "path", s.path, "schema_version", version, "collections", len(catalog))
	return nil
}

func (s *Store) dsn() string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	if s.maxSize > 0 {
		pages := s.maxSize / pageSize
		if pages < 1 {
			pages = 1
		}
		q.Add("_pragma", fmt.Sprintf("max_page_count(%d)", pages))
	}
	return "file:" + s.path + "?" + q.Encode()
}

func migrate(ctx context.Context, db *sql.DB) (int64, error) {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return 0, err
	}
	if _, err := provider.Up(ctx); err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

// loadCatalog reads collections and their <collection>_<field> indexes.
func loadCatalog(ctx context.Context, db *sql.DB) (map[string]map[string]struct{}, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT type, name, tbl_name FROM sqlite_master
		WHERE type IN ('table', 'index')
		  AND name NOT LIKE 'sqlite%'
		  AND tbl_name <> 'goose_db_version'
		ORDER BY type DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	catalog := make(map[string]map[string]struct{})
	for rows.Next() {
		var typ, name, table string
		if err := rows.Scan(&typ, &name, &table); err != nil {
			return nil, err
		}
		switch typ {
		case "table":
			catalog[name] = make(map[string]struct{})
		case "index":
			idx, ok := catalog[table]
			if !ok || !strings.HasPrefix(name, table+"_") {
				continue
			}
			idx[strings.TrimPrefix(name, table+"_")] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Close releases the database. A later operation opens it again.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.catalog = nil
	return err
}

// Version is the applied schema version, 0 before Initialize.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Collections lists the known collections in name order.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.catalog))
	for name := range s.catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Indexes lists the secondary indexes of a collection.
func (s *Store) Indexes(ctx context.Context, collection string) ([]string, error) {
	if _, err := s.handle(ctx, collection); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.catalog[collection]))
	for name := range s.catalog[collection] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// NowMillis is the store clock in milliseconds since epoch.
func (s *Store) NowMillis() int64 {
	return s.now().UnixMilli()
}

// handle initializes the store and checks the collection exists.
func (s *Store) handle(ctx context.Context, collection string) (*sql.DB, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, fmt.Errorf("%w: store closed", ErrStoreUnavailable)
	}
	if _, ok := s.catalog[collection]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return s.db, nil
}

func (s *Store) indexed(ctx context.Context, collection, index string) (*sql.DB, error) {
	db, err := s.handle(ctx, collection)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.catalog[collection][index]; !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownIndex, collection, index)
	}
	return db, nil
}

// Put inserts rec or overwrites the document with the same id.
func (s *Store) Put(ctx context.Context, collection string, rec Record) error {
	id := rec.RecordID()
	if id == "" {
		return fmt.Errorf("put %s: %w", collection, ErrMissingID)
	}

	doc, err := encode(rec)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}

	db, err := s.handle(ctx, collection)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`, ident(collection))
	if _, err := db.ExecContext(ctx, query, id, doc); err != nil {
		return classify("put", collection, err)
	}
	return nil
}

// Delete removes one document. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	db, err := s.handle(ctx, collection)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, ident(collection))
	if _, err := db.ExecContext(ctx, query, id); err != nil {
		return classify("delete", collection, err)
	}
	return nil
}

// DeleteRange removes every document whose index value lies on dir's side of
// bound, inclusive, and returns how many were removed.
func (s *Store) DeleteRange(ctx context.Context, collection, index string, bound any, dir Direction) (int64, error) {
	db, err := s.indexed(ctx, collection, index)
	if err != nil {
		return 0, err
	}

	op := "<="
	if dir == AtOrAbove {
		op = ">="
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s %s ?`, ident(collection), field(index), op)

	n, err := dbx.ExecAffected(ctx, db, query, indexValue(bound))
	if err != nil {
		return 0, classify("delete range", collection, err)
	}
	return n, nil
}

// Clear empties one collection.
func (s *Store) Clear(ctx context.Context, collection string) error {
	db, err := s.handle(ctx, collection)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, ident(collection))); err != nil {
		return classify("clear", collection, err)
	}
	return nil
}

// ClearAll empties every collection in one transaction.
func (s *Store) ClearAll(ctx context.Context) error {
	names, err := s.Collections(ctx)
	if err != nil {
		return err
	}
	s.mu.RLock()
	db := s.db
	s.mu.RUnlock()
	if db == nil {
		return fmt.Errorf("%w: store closed", ErrStoreUnavailable)
	}

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, name := range names {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, ident(name))); err != nil {
				return err
			}
		}
		return nil
	})
	return classify("clear", "all", err)
}

// Usage is the space taken by the store against its quota, in bytes.
// Quota is 0 when no cap is configured.
type Usage struct {
	Used  int64 `json:"used"`
	Quota int64 `json:"quota"`
}

// Usage estimates how much of the quota is in use.
func (s *Store) Usage(ctx context.Context) (Usage, error) {
	if err := s.Initialize(ctx); err != nil {
		return Usage{}, err
	}
	s.mu.RLock()
	db := s.db
	s.mu.RUnlock()

	var pages, size int64
	if err := db.QueryRowContext(ctx, `PRAGMA page_count`).Scan(&pages); err != nil {
		return Usage{}, classify("usage", "", err)
	}
	if err := db.QueryRowContext(ctx, `PRAGMA page_size`).Scan(&size); err != nil {
		return Usage{}, classify("usage", "", err)
	}

	u := Usage{Used: pages * size}
	if s.maxSize > 0 {
		u.Quota = s.maxSize
	}
	return u, nil
}

func ident(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func field(index string) string {
	return fmt.Sprintf(`json_extract(doc, '$.%s')`, index)
}

// indexValue matches how json_extract reports JSON booleans.
func indexValue(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return v
}
