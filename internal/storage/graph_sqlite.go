package storage

import (
	"database/sql"
	"fmt"

	"github.com/matsen/cograph/internal/cooccur"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection holding a built graph.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS nodes (
			entity TEXT PRIMARY KEY,
			degree INTEGER NOT NULL
		);

		-- Unordered pairs stored with a < b
		CREATE TABLE IF NOT EXISTS edges (
			a TEXT NOT NULL,
			b TEXT NOT NULL,
			PRIMARY KEY (a, b),
			CHECK (a < b)
		);

		CREATE INDEX IF NOT EXISTS idx_edges_b ON edges(b);

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveGraph replaces the stored graph with g in a single transaction.
// kind is recorded as metadata (empty means all kinds).
func (d *DB) SaveGraph(g *cooccur.Graph, kind string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"nodes", "edges", "meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	nodeStmt, err := tx.Prepare(`INSERT INTO nodes (entity, degree) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing nodes insert: %w", err)
	}
	defer nodeStmt.Close()

	for _, n := range g.Nodes() {
		if _, err := nodeStmt.Exec(n, g.Degree(n)); err != nil {
			return fmt.Errorf("inserting node %s: %w", n, err)
		}
	}

	edgeStmt, err := tx.Prepare(`INSERT INTO edges (a, b) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing edges insert: %w", err)
	}
	defer edgeStmt.Close()

	for _, p := range g.Edges() {
		if _, err := edgeStmt.Exec(p.A, p.B); err != nil {
			return fmt.Errorf("inserting edge %s-%s: %w", p.A, p.B, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('kind', ?)`, kind); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	return tx.Commit()
}

// LoadGraph reads the stored graph back.
func (d *DB) LoadGraph() (*cooccur.Graph, error) {
	nodes, err := d.queryStrings(`SELECT entity FROM nodes ORDER BY entity`)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}

	rows, err := d.db.Query(`SELECT a, b FROM edges ORDER BY a, b`)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	var edges []cooccur.Pair
	for rows.Next() {
		var p cooccur.Pair
		if err := rows.Scan(&p.A, &p.B); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		edges = append(edges, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating edges: %w", err)
	}

	return cooccur.FromEdges(nodes, edges), nil
}

// HasNode reports whether entity is stored.
func (d *DB) HasNode(entity string) (bool, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM nodes WHERE entity = ?`, entity).Scan(&n); err != nil {
		return false, fmt.Errorf("querying node: %w", err)
	}
	return n > 0, nil
}

// Neighbors returns the entities adjacent to entity in lexicographic order.
func (d *DB) Neighbors(entity string) ([]string, error) {
	nbrs, err := d.queryStrings(`
		SELECT b FROM edges WHERE a = ?
		UNION
		SELECT a FROM edges WHERE b = ?
		ORDER BY 1
	`, entity, entity)
	if err != nil {
		return nil, fmt.Errorf("querying neighbors: %w", err)
	}
	return nbrs, nil
}

// GraphStats summarizes the stored graph.
type GraphStats struct {
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
	Isolated int    `json:"isolated"`
	Kind     string `json:"kind,omitempty"`
}

// Stats returns counts for the stored graph.
func (d *DB) Stats() (GraphStats, error) {
	var s GraphStats
	err := d.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM nodes),
			(SELECT COUNT(*) FROM edges),
			(SELECT COUNT(*) FROM nodes WHERE degree = 0),
			COALESCE((SELECT value FROM meta WHERE key = 'kind'), '')
	`).Scan(&s.Nodes, &s.Edges, &s.Isolated, &s.Kind)
	if err != nil {
		return GraphStats{}, fmt.Errorf("querying stats: %w", err)
	}
	return s, nil
}

func (d *DB) queryStrings(query string, args ...any) ([]string, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
