// Package store persists import graphs to SQLite for ad-hoc querying.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/simonhull/firebird-suite/magpie/pkg/graph"
)

const schema = `
CREATE TABLE IF NOT EXISTS files (
  key TEXT PRIMARY KEY,
  is_node BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS edges (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source TEXT NOT NULL REFERENCES files(key),
  target TEXT NOT NULL REFERENCES files(key),
  kind TEXT NOT NULL,
  symbol TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges (source);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges (target);

CREATE TABLE IF NOT EXISTS links (
  source TEXT NOT NULL REFERENCES files(key),
  target TEXT NOT NULL REFERENCES files(key),
  kind TEXT NOT NULL,
  symbol TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (source, target)
);
`

// Store is a SQLite database holding one import graph
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveGraph replaces the stored graph with ig in a single transaction.
func (s *Store) SaveGraph(ctx context.Context, ig *graph.ImportGraph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"links", "edges", "files"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	nodes := make(map[string]bool)
	for _, n := range ig.Nodes() {
		nodes[n] = true
	}
	for _, key := range ig.Files() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO files (key, is_node) VALUES (?, ?)`, key, nodes[key]); err != nil {
			return fmt.Errorf("inserting file %s: %w", key, err)
		}
	}

	for _, e := range ig.Edges() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO edges (source, target, kind, symbol) VALUES (?, ?, ?, ?)`,
			e.From, e.To, string(e.Kind), e.Symbol); err != nil {
			return fmt.Errorf("inserting edge %s -> %s: %w", e.From, e.To, err)
		}
	}

	for _, l := range ig.Links() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO links (source, target, kind, symbol) VALUES (?, ?, ?, ?)`,
			l.From, l.To, string(l.Kind), l.Symbol); err != nil {
			return fmt.Errorf("inserting link %s -> %s: %w", l.From, l.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing graph: %w", err)
	}
	return nil
}

// Files returns every stored file key, sorted.
func (s *Store) Files(ctx context.Context) ([]string, error) {
	return s.strings(ctx, `SELECT key FROM files ORDER BY key`)
}

// Importers returns the distinct files that import key, sorted.
func (s *Store) Importers(ctx context.Context, key string) ([]string, error) {
	return s.strings(ctx, `SELECT DISTINCT source FROM edges WHERE target = ? ORDER BY source`, key)
}

// Edges returns the stored raw edges in insertion order.
func (s *Store) Edges(ctx context.Context) ([]graph.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source, target, kind, symbol FROM edges ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	var edges []graph.Edge
	for rows.Next() {
		var e graph.Edge
		var kind string
		if err := rows.Scan(&e.From, &e.To, &kind, &e.Symbol); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		e.Kind = graph.EdgeKind(kind)
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (s *Store) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
