// Package tablecache stores summaries of linked lookup tables in SQLite,
// keyed by a digest of the forest documents they were computed from.
package tablecache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/funvibe/speclink/internal/prettyprinter"
	"github.com/funvibe/speclink/internal/symbols"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	digest     TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS definitions (
	digest     TEXT NOT NULL REFERENCES runs(digest) ON DELETE CASCADE,
	module     TEXT NOT NULL,
	identifier TEXT NOT NULL,
	namespace  TEXT NOT NULL,
	kind       TEXT NOT NULL,
	reference  INTEGER NOT NULL,
	scope      INTEGER NOT NULL,
	type       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS definitions_digest ON definitions(digest);
`

// Row is one non-builtin definition of a module's table.
type Row struct {
	Module     string
	Identifier string
	Namespace  string
	Kind       string
	Reference  uint64
	Scope      uint64
	Type       string // Rendered type, empty when absent or opaque
}

// Entry is a cached run.
type Entry struct {
	RunID     string
	CreatedAt time.Time
	Rows      []Row
}

// Cache is an open cache database.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	// A single connection keeps PRAGMA settings and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Digest returns the cache key of a set of documents.
func Digest(documents ...[]byte) string {
	h := sha256.New()
	for _, d := range documents {
		fmt.Fprintf(h, "%d:", len(d))
		h.Write(d)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Rows summarizes tables, modules and identifiers in name order.
// Builtin definitions are left out.
func Rows(tables symbols.LookupTableByModule) []Row {
	var rows []Row
	for _, module := range tables.ModuleNames() {
		table := tables[module]
		for _, name := range table.UserNames() {
			cell := table[name]
			for _, v := range cell.Values {
				if v.IsBuiltin() {
					continue
				}
				row := Row{
					Module:     module,
					Identifier: name,
					Namespace:  v.Kind.Namespace().String(),
					Kind:       string(v.Kind),
					Reference:  v.Reference,
					Scope:      v.Scope,
				}
				if v.TypeAnnotation != nil {
					row.Type = prettyprinter.PrintType(v.TypeAnnotation)
				}
				rows = append(rows, row)
			}
			for _, t := range cell.Types {
				row := Row{
					Module:     module,
					Identifier: name,
					Namespace:  symbols.KindTypedef.Namespace().String(),
					Kind:       string(symbols.KindTypedef),
					Reference:  t.Reference,
				}
				if !t.IsOpaque() {
					row.Type = prettyprinter.PrintType(t.Type)
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// Store records rows under digest, replacing an earlier entry.
func (c *Cache) Store(ctx context.Context, digest, runID string, rows []Row) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store %s: %w", digest, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE digest = ?", digest); err != nil {
		return fmt.Errorf("store %s: %w", digest, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (digest, run_id, created_at) VALUES (?, ?, ?)",
		digest, runID, time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("store %s: %w", digest, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO definitions
		(digest, module, identifier, namespace, kind, reference, scope, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store %s: %w", digest, err)
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			digest, r.Module, r.Identifier, r.Namespace, r.Kind, int64(r.Reference), int64(r.Scope), r.Type,
		); err != nil {
			return fmt.Errorf("store %s: %w", digest, err)
		}
	}
	return tx.Commit()
}

// Lookup returns the entry stored under digest. ok is false on a miss.
func (c *Cache) Lookup(ctx context.Context, digest string) (entry *Entry, ok bool, err error) {
	var created int64
	entry = &Entry{}
	err = c.db.QueryRowContext(ctx, "SELECT run_id, created_at FROM runs WHERE digest = ?", digest).
		Scan(&entry.RunID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup %s: %w", digest, err)
	}
	entry.CreatedAt = time.Unix(created, 0)

	rows, err := c.db.QueryContext(ctx, `SELECT module, identifier, namespace, kind, reference, scope, type
		FROM definitions WHERE digest = ? ORDER BY rowid`, digest)
	if err != nil {
		return nil, false, fmt.Errorf("lookup %s: %w", digest, err)
	}
	defer rows.Close()
	for rows.Next() {
		var r Row
		var ref, scope int64
		if err := rows.Scan(&r.Module, &r.Identifier, &r.Namespace, &r.Kind, &ref, &scope, &r.Type); err != nil {
			return nil, false, fmt.Errorf("lookup %s: %w", digest, err)
		}
		r.Reference, r.Scope = uint64(ref), uint64(scope)
		entry.Rows = append(entry.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("lookup %s: %w", digest, err)
	}
	return entry, true, nil
}

// Prune removes entries created before cutoff and returns how many went.
func (c *Cache) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM runs WHERE created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	return res.RowsAffected()
}
