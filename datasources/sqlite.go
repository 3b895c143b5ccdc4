/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The eCollection Grid Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package datasources

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/ecollection/grid/core/collection"
	"github.com/ecollection/grid/core/schema"
)

// CurrentSchemaVersion is the target version of the database schema.
const CurrentSchemaVersion = 1

// Store keeps the records of every collection as JSON documents in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and migrates) the database at dbPath. ":memory:" opens a
// private in-memory database.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if dbPath == ":memory:" {
		// Every connection would see its own empty database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "exec %q", pragma)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return errors.Wrap(err, "failed to create migrations table")
	}

	var version int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return errors.Wrap(err, "failed to get current migration version")
	}
	if version >= CurrentSchemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin migration")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		CREATE TABLE records (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (collection, id)
		)
	`); err != nil {
		return errors.Wrap(err, "migration v1 failed")
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", CurrentSchemaVersion); err != nil {
		return errors.Wrap(err, "record migration")
	}
	return errors.Wrap(tx.Commit(), "commit migration")
}

// Put inserts or replaces documents of a collection.
func (s *Store) Put(ctx context.Context, collectionID string, docs ...*collection.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin put")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return errors.Wrap(err, "prepare put")
	}
	defer stmt.Close()

	for _, doc := range docs {
		data, err := json.Marshal(doc.Data)
		if err != nil {
			return errors.Wrapf(err, "encode record %s", doc.Key)
		}
		if _, err := stmt.ExecContext(ctx, collectionID, doc.Key, string(data)); err != nil {
			return errors.Wrapf(err, "store record %s", doc.Key)
		}
	}
	return errors.Wrap(tx.Commit(), "commit put")
}

// Clear removes every record of a collection.
func (s *Store) Clear(ctx context.Context, collectionID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", collectionID)
	return errors.Wrapf(err, "clear %s", collectionID)
}

// Count returns the number of records of a collection.
func (s *Store) Count(ctx context.Context, collectionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE collection = ?", collectionID).Scan(&n)
	return n, errors.Wrapf(err, "count %s", collectionID)
}

// Source returns a collection source reading the records of collectionID.
// View links of the records point below base.
func (s *Store) Source(collectionID string, fields schema.Schema, selectorAttr, base string) *SQLiteSource {
	return &SQLiteSource{
		db:           s.db,
		collectionID: collectionID,
		fields:       fields,
		selectorAttr: selectorAttr,
		base:         base,
	}
}

// SQLiteSource serves one collection of a Store. Unfiltered requests are
// sorted and paged by SQLite; filtered requests are evaluated in memory with
// the same rules as collection.MemorySource.
type SQLiteSource struct {
	db           *sql.DB
	collectionID string
	fields       schema.Schema
	selectorAttr string
	base         string
}

// Fetch loads the page described by req.
func (s *SQLiteSource) Fetch(ctx context.Context, req collection.Request) (*collection.Page, error) {
	where := "collection = ?"
	args := []any{s.collectionID}
	if req.Filter != "" && s.selectorAttr != "" {
		where += " AND json_extract(data, ?) = ?"
		args = append(args, JSONPath(s.selectorAttr), req.Filter)
	}

	if req.Filters.Len() > 0 || crossesList(s.fields, req.SortColumn) {
		records, err := s.query(ctx, "SELECT id, data FROM records WHERE "+where+" ORDER BY rowid", args...)
		if err != nil {
			return nil, err
		}
		return collection.Select(s.fields, records, req, s.selectorAttr), nil
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE "+where, args...).Scan(&total); err != nil {
		return nil, errors.Wrapf(err, "count %s", s.collectionID)
	}

	order := "rowid"
	if req.SortColumn != "" {
		dir := "ASC"
		if req.SortOrder == "desc" {
			dir = "DESC"
		}
		order = "json_extract(data, ?) " + dir + ", rowid"
		args = append(args, JSONPath(req.SortColumn))
	}
	limit := req.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, max(req.Skip, 0))

	records, err := s.query(ctx, "SELECT id, data FROM records WHERE "+where+" ORDER BY "+order+" LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	return &collection.Page{
		Items:    records,
		Offset:   req.Skip,
		Size:     req.Limit,
		Total:    total,
		HasTotal: true,
	}, nil
}

// Get loads the record with the given id.
func (s *SQLiteSource) Get(ctx context.Context, id string) (collection.Record, error) {
	records, err := s.query(ctx, "SELECT id, data FROM records WHERE collection = ? AND id = ?", s.collectionID, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.Wrapf(collection.ErrRecordNotFound, "%s/%s", s.collectionID, id)
	}
	return records[0], nil
}

func (s *SQLiteSource) query(ctx context.Context, q string, args ...any) ([]collection.Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", s.collectionID)
	}
	defer rows.Close()

	var records []collection.Record
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, errors.Wrap(err, "scan record")
		}
		var data map[string]any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return nil, errors.Wrapf(err, "decode record %s", id)
		}
		records = append(records, collection.NewDocument(id, data, s.base))
	}
	return records, errors.Wrap(rows.Err(), "read records")
}

// JSONPath converts a dotted attribute path to an SQLite JSON path.
func JSONPath(attr string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, part := range strings.Split(attr, ".") {
		b.WriteString(`."`)
		b.WriteString(part)
		b.WriteString(`"`)
	}
	return b.String()
}

// crossesList reports whether a path goes through a List field, whose
// values SQLite cannot order the way the grid does.
func crossesList(fields schema.Schema, path string) bool {
	if path == "" {
		return false
	}
	parts := strings.Split(path, ".")
	for i := 1; i <= len(parts); i++ {
		if f, ok := fields.Lookup(strings.Join(parts[:i], "."), nil); ok && f.Kind == schema.List {
			return true
		}
	}
	return false
}
