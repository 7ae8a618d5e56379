package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FocuswithJustin/htkio/core/errors"
)

const leafIndexSchema = `
CREATE TABLE IF NOT EXISTS leaf_index (
	source     TEXT    NOT NULL,
	macro_id   TEXT    NOT NULL,
	leaf_index INTEGER NOT NULL,
	PRIMARY KEY (source, macro_id),
	UNIQUE (source, leaf_index)
)`

// LeafIndexStore persists leaf macro id numberings, one per source tree
// file.
type LeafIndexStore struct {
	db   *sql.DB
	path string
}

// CreateLeafIndexStore opens or creates a store at path.
func CreateLeafIndexStore(ctx context.Context, path string) (*LeafIndexStore, error) {
	db, err := Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if _, err := db.ExecContext(ctx, leafIndexSchema); err != nil {
		db.Close()
		return nil, errors.NewIO("create schema in", path, err)
	}
	return &LeafIndexStore{db: db, path: path}, nil
}

// OpenLeafIndexStoreReadOnly opens an existing store for reading.
func OpenLeafIndexStoreReadOnly(path string) (*LeafIndexStore, error) {
	db, err := OpenReadOnly(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	return &LeafIndexStore{db: db, path: path}, nil
}

// Close closes the database.
func (s *LeafIndexStore) Close() error {
	return s.db.Close()
}

// Save replaces the numbering stored for source. macroIDs[i] gets index i.
func (s *LeafIndexStore) Save(ctx context.Context, source string, macroIDs []string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewIO("begin transaction on", s.path, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM leaf_index WHERE source = ?`, source); err != nil {
		return errors.NewIO("clear leaf index in", s.path, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO leaf_index (source, macro_id, leaf_index) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.NewIO("prepare insert in", s.path, err)
	}
	defer stmt.Close()

	seen := make(map[string]bool, len(macroIDs))
	for i, id := range macroIDs {
		if seen[id] {
			return errors.NewDuplicate("leaf macro id", id)
		}
		seen[id] = true
		if _, err = stmt.ExecContext(ctx, source, id, i); err != nil {
			return errors.NewIO("insert leaf index into", s.path, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.NewIO("commit", s.path, err)
	}
	return nil
}

// Load returns the macro ids stored for source, in index order.
func (s *LeafIndexStore) Load(ctx context.Context, source string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT macro_id, leaf_index FROM leaf_index WHERE source = ? ORDER BY leaf_index`, source)
	if err != nil {
		return nil, errors.NewIO("query", s.path, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var (
			id  string
			idx int
		)
		if err := rows.Scan(&id, &idx); err != nil {
			return nil, errors.NewIO("scan", s.path, err)
		}
		if idx != len(ids) {
			return nil, errors.NewStructural("leaf index", "%s: source %s has a gap before index %d", s.path, source, idx)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("query", s.path, err)
	}
	if len(ids) == 0 {
		return nil, errors.NewLookup("leaf index source", source)
	}
	return ids, nil
}

// Sources lists the sources with a stored numbering.
func (s *LeafIndexStore) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT source FROM leaf_index ORDER BY source`)
	if err != nil {
		return nil, errors.NewIO("query", s.path, err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, errors.NewIO("scan", s.path, err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sources in %s: %w", s.path, err)
	}
	return sources, nil
}
