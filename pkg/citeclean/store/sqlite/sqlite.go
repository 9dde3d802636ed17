package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/citeclean/pkg/citeclean/internalerr"
	"github.com/cognicore/citeclean/pkg/citeclean/store"
)

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
	// A single writer connection keeps concurrent RecordRun calls from
	// failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}


	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init schema: %v", internalerr.ErrStoreUnavailable, err)
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
	source TEXT NOT NULL DEFAULT '',
	mode TEXT NOT NULL,
	created_at TEXT NOT NULL,
	input_bytes INTEGER NOT NULL,
	output_bytes INTEGER NOT NULL,
	inline_removed INTEGER NOT NULL DEFAULT 0,
	boundary_found INTEGER NOT NULL DEFAULT 0,
	boundary_line INTEGER NOT NULL DEFAULT 0,
	lines_dropped INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// RecordRun inserts or replaces a run, keyed by ID
func (s *sqliteStore) RecordRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("%w: run without id", internalerr.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, source, mode, created_at, input_bytes, output_bytes,
	inline_removed, boundary_found, boundary_line, lines_dropped)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	source=excluded.source,
	mode=excluded.mode,
	created_at=excluded.created_at,
	input_bytes=excluded.input_bytes,
	output_bytes=excluded.output_bytes,
	inline_removed=excluded.inline_removed,
	boundary_found=excluded.boundary_found,
	boundary_line=excluded.boundary_line,
	lines_dropped=excluded.lines_dropped;
`,
		r.ID,
		r.Source,
		r.Mode,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
		r.InputBytes,
		r.OutputBytes,
		r.InlineRemoved,
		boolToInt(r.BoundaryFound),
		r.BoundaryLine,
		r.LinesDropped,
	)
	return err
}

const runColumns = `id, source, mode, created_at, input_bytes, output_bytes,
	inline_removed, boundary_found, boundary_line, lines_dropped`

// GetRun returns a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?;`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	return r, true, nil
}

// ListRuns returns runs newest first. ULIDs sort by creation time, so the
// primary key doubles as the ordering.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT `+runColumns+`
FROM runs
ORDER BY id DESC
LIMIT ?;
`, limit)
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

// Totals aggregates all recorded runs
func (s *sqliteStore) Totals(ctx context.Context) (store.Totals, error) {
	var t store.Totals
	err := s.db.QueryRowContext(ctx, `
SELECT
	COUNT(*),
	COALESCE(SUM(CASE WHEN input_bytes != output_bytes OR inline_removed > 0 OR boundary_found = 1 THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(input_bytes), 0),
	COALESCE(SUM(output_bytes), 0),
	COALESCE(SUM(inline_removed), 0),
	COALESCE(SUM(lines_dropped), 0)
FROM runs;
`).Scan(&t.Runs, &t.Changed, &t.InputBytes, &t.OutputBytes, &t.InlineRemoved, &t.LinesDropped)
	return t, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.Run, error) {
	var r store.Run
	var created string
	var found int64
	if err := sc.Scan(
		&r.ID,
		&r.Source,
		&r.Mode,
		&created,
		&r.InputBytes,
		&r.OutputBytes,
		&r.InlineRemoved,
		&found,
		&r.BoundaryLine,
		&r.LinesDropped,
	); err != nil {
		return store.Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return store.Run{}, fmt.Errorf("run %s: bad created_at %q: %w", r.ID, created, err)
	}
	r.CreatedAt = t
	r.BoundaryFound = found != 0
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
