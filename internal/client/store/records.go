package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/offsync/internal/dbx"
)

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return string(b), nil
}

func decode[T any](collection, doc string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return v, fmt.Errorf("decode %s document: %w", collection, err)
	}
	return v, nil
}

// Get returns the document with the given id, or nil when there is none.
func Get[T any](ctx context.Context, s *Store, collection, id string) (*T, error) {
	db, err := s.handle(ctx, collection)
	if err != nil {
		return nil, err
	}

	var doc string
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE id = ?`, ident(collection))
	err = db.QueryRowContext(ctx, query, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get", collection, err)
	}

	v, err := decode[T](collection, doc)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetAll returns documents in insertion order. limit <= 0 means no limit.
func GetAll[T any](ctx context.Context, s *Store, collection string, limit int) ([]T, error) {
	db, err := s.handle(ctx, collection)
	if err != nil {
		return nil, err
	}
	return list[T](ctx, db, collection, "", nil, limit)
}

// Find returns documents whose index equals value, in insertion order.
func Find[T any](ctx context.Context, s *Store, collection, index string, value any, limit int) ([]T, error) {
	db, err := s.indexed(ctx, collection, index)
	if err != nil {
		return nil, err
	}
	where := fmt.Sprintf(`WHERE %s = ?`, field(index))
	return list[T](ctx, db, collection, where, []any{indexValue(value)}, limit)
}

func list[T any](ctx context.Context, db dbx.DBTX, collection, where string, args []any, limit int) ([]T, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s %s ORDER BY seq`, ident(collection), where)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("list", collection, err)
	}
	defer rows.Close()

	result := make([]T, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, classify("list", collection, err)
		}
		v, err := decode[T](collection, doc)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list", collection, err)
	}
	return result, nil
}

// Update loads the document with the given id, lets fn change it and writes
// it back, all in one transaction. It reports false when the id is absent;
// fn is not called then.
func Update[T any](ctx context.Context, s *Store, collection, id string, fn func(item *T) error) (bool, error) {
	db, err := s.handle(ctx, collection)
	if err != nil {
		return false, err
	}

	found := false
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var doc string
		query := fmt.Sprintf(`SELECT doc FROM %s WHERE id = ?`, ident(collection))
		err := tx.QueryRowContext(ctx, query, id).Scan(&doc)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		item, err := decode[T](collection, doc)
		if err != nil {
			return err
		}
		if err := fn(&item); err != nil {
			return err
		}

		updated, err := encode(item)
		if err != nil {
			return err
		}
		query = fmt.Sprintf(`UPDATE %s SET doc = ? WHERE id = ?`, ident(collection))
		if _, err := tx.ExecContext(ctx, query, updated, id); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, classify("update", collection, err)
	}
	return found, nil
}
