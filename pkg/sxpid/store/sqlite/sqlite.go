package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/sxpid/pkg/sxpid/internalerr"
	"github.com/cognicore/sxpid/pkg/sxpid/store"
)

// timeLayout is fixed width so created_at sorts as text in time order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	// PRAGMAs below are per connection
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	title TEXT,
	created_at TEXT NOT NULL,
	sources INTEGER NOT NULL,
	samples INTEGER NOT NULL,
	mi REAL NOT NULL,
	alphabets TEXT,
	bullets TEXT
);

CREATE TABLE IF NOT EXISTS run_nodes (
	run_id TEXT NOT NULL,
	node_id INTEGER NOT NULL,
	label TEXT NOT NULL,
	shared_plus REAL NOT NULL,
	shared_minus REAL NOT NULL,
	shared_info REAL NOT NULL,
	atom_plus REAL NOT NULL,
	atom_minus REAL NOT NULL,
	atom_info REAL NOT NULL,
	PRIMARY KEY(run_id, node_id),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts or replaces a run and its node values
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("save run: empty id: %w", internalerr.ErrInvalidInput)
	}

	alphabets, err := json.Marshal(r.Alphabets)
	if err != nil {
		return err
	}
	bullets, err := json.Marshal(r.Bullets)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO runs (id, title, created_at, sources, samples, mi, alphabets, bullets)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title=excluded.title,
	created_at=excluded.created_at,
	sources=excluded.sources,
	samples=excluded.samples,
	mi=excluded.mi,
	alphabets=excluded.alphabets,
	bullets=excluded.bullets;
`
	if _, err := tx.ExecContext(ctx, stmt,
		r.ID,
		r.Title,
		r.CreatedAt.UTC().Format(timeLayout),
		r.Sources,
		r.Samples,
		r.MI,
		string(alphabets),
		string(bullets),
	); err != nil {
		return err
	}

	if err := replaceRunNodes(ctx, tx, r.ID, r.Nodes); err != nil {
		return err
	}

	return tx.Commit()
}

func replaceRunNodes(ctx context.Context, tx *sql.Tx, runID string, nodes []store.Node) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_nodes WHERE run_id=?`, runID); err != nil {
		return err
	}
	if len(nodes) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_nodes (run_id, node_id, label, shared_plus, shared_minus, shared_info, atom_plus, atom_minus, atom_info)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, n := range nodes {
		if _, err := stmt.ExecContext(ctx, runID, n.ID, n.Label,
			n.SharedPlus, n.SharedMinus, n.SharedInfo,
			n.AtomPlus, n.AtomMinus, n.AtomInfo); err != nil {
			return err
		}
	}
	return nil
}

// GetRun retrieves a run with its node values
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, title, created_at, sources, samples, mi, alphabets, bullets
FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Run{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT node_id, label, shared_plus, shared_minus, shared_info, atom_plus, atom_minus, atom_info
FROM run_nodes WHERE run_id = ? ORDER BY node_id`, id)
	if err != nil {
		return store.Run{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var n store.Node
		if err := rows.Scan(&n.ID, &n.Label,
			&n.SharedPlus, &n.SharedMinus, &n.SharedInfo,
			&n.AtomPlus, &n.AtomMinus, &n.AtomInfo); err != nil {
			return store.Run{}, err
		}
		r.Nodes = append(r.Nodes, n)
	}
	return r, rows.Err()
}

// ListRuns returns the most recent runs first
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, created_at, sources, samples, mi, alphabets, bullets
FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run; node values go with it
func (s *sqliteStore) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (store.Run, error) {
	var (
		r         store.Run
		title     sql.NullString
		created   string
		alphabets sql.NullString
		bullets   sql.NullString
	)
	if err := sc.Scan(&r.ID, &title, &created, &r.Sources, &r.Samples, &r.MI, &alphabets, &bullets); err != nil {
		return store.Run{}, err
	}
	r.Title = title.String

	ts, err := time.Parse(timeLayout, created)
	if err != nil {
		return store.Run{}, fmt.Errorf("run %s: created_at %q: %w", r.ID, created, err)
	}
	r.CreatedAt = ts

	if alphabets.Valid && alphabets.String != "" {
		if err := json.Unmarshal([]byte(alphabets.String), &r.Alphabets); err != nil {
			return store.Run{}, err
		}
	}
	if bullets.Valid && bullets.String != "" {
		if err := json.Unmarshal([]byte(bullets.String), &r.Bullets); err != nil {
			return store.Run{}, err
		}
	}
	return r, nil
}
