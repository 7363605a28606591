// Package catalog persists a record of each render run to SQLite so a
// research workflow spanning many models and regions can answer "what was
// this image made from" later. Input files are identified by content hash,
// not just path, since extraction outputs get regenerated in place.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/xxh3"

	_ "modernc.org/sqlite"
)

// Run is one recorded render.
type Run struct {
	ID         int64
	StartedAt  time.Time
	DataPath   string
	DataHash   string
	MetaPath   string
	MetaHash   string
	Rows       int
	ScaleMode  string
	ScaleMin   float64
	ScaleMax   float64
	Cmap       string
	OutputPath string
}

// Catalog wraps the SQLite database holding run records.
type Catalog struct {
	db *sql.DB
}

// Open opens (or creates) the catalog database at path and ensures the
// schema exists.
func Open(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("catalog: ensure dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("pragma busy_timeout=2000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: set busy_timeout: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Catalog{db: db}, nil
}

func initSchema(db *sql.DB) error {
	const schema = `
create table if not exists runs (
	id integer primary key autoincrement,
	started_utc text not null,
	data_path text not null,
	data_hash text not null,
	meta_path text not null,
	meta_hash text not null,
	rows integer not null,
	scale_mode text not null,
	scale_min real not null,
	scale_max real not null,
	cmap text not null,
	output_path text not null
);
create index if not exists runs_started on runs(started_utc);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("catalog: init schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error { return c.db.Close() }

// Record inserts one run and returns its row ID.
func (c *Catalog) Record(run Run) (int64, error) {
	res, err := c.db.Exec(`insert into runs
		(started_utc, data_path, data_hash, meta_path, meta_hash,
		 rows, scale_mode, scale_min, scale_max, cmap, output_path)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.DataPath, run.DataHash, run.MetaPath, run.MetaHash,
		run.Rows, run.ScaleMode, run.ScaleMin, run.ScaleMax,
		run.Cmap, run.OutputPath)
	if err != nil {
		return 0, fmt.Errorf("catalog: record run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("catalog: run id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first.
func (c *Catalog) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.db.Query(`select id, started_utc, data_path, data_hash,
		meta_path, meta_hash, rows, scale_mode, scale_min, scale_max,
		cmap, output_path
		from runs order by id desc limit ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &started, &r.DataPath, &r.DataHash,
			&r.MetaPath, &r.MetaHash, &r.Rows, &r.ScaleMode,
			&r.ScaleMin, &r.ScaleMax, &r.Cmap, &r.OutputPath); err != nil {
			return nil, fmt.Errorf("catalog: scan run: %w", err)
		}
		t, err := time.Parse(time.RFC3339, started)
		if err != nil {
			return nil, fmt.Errorf("catalog: bad timestamp %q: %w", started, err)
		}
		r.StartedAt = t
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate runs: %w", err)
	}
	return out, nil
}

// FingerprintFile hashes a file's contents with xxh3 and returns the digest
// as a fixed-width hex string.
func FingerprintFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("catalog: fingerprint %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", xxh3.Hash(data)), nil
}
