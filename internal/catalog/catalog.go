// SPDX-License-Identifier: MIT

// Package catalog records every product file the pipeline writes to
// blob storage, so operators can answer "which days of this month have
// daily files" without listing containers.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go driver
)

const schemaVersion = 1

// Product kinds.
const (
	KindDaily = "daily"
	KindMask  = "mask"
)

// Record is one cataloged product file.
type Record struct {
	Observatory string `json:"observatory"`
	Instrument  string `json:"instrument"`
	// Date is the product day in the DYYYY-MM-DD grammar.
	Date      string `json:"date"`
	Kind      string `json:"kind"`
	Container string `json:"container"`
	// Blob is the full name within the container.
	Blob      string    `json:"blob"`
	Size      int64     `json:"size"`
	SHA256    string    `json:"sha256"`
	CreatedAt time.Time `json:"createdAt"`
}

// Catalog is a sqlite-backed product index.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog database at path.
func Open(path string) (*Catalog, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: migrate: %w", err)
	}
	return c, nil
}

// Close releases the database.
func (c *Catalog) Close() error { return c.db.Close() }

// Ping reports whether the database answers queries.
func (c *Catalog) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

func (c *Catalog) migrate() error {
	var current int
	if err := c.db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return err
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	schema := `
	CREATE TABLE IF NOT EXISTS products (
		observatory TEXT NOT NULL,
		instrument  TEXT NOT NULL,
		date        TEXT NOT NULL,
		kind        TEXT NOT NULL,
		container   TEXT NOT NULL,
		blob        TEXT NOT NULL,
		size        INTEGER NOT NULL,
		sha256      TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		PRIMARY KEY (container, blob)
	);
	CREATE INDEX IF NOT EXISTS idx_products_lookup
		ON products(observatory, instrument, kind, date);
	`
	if _, err := tx.Exec(schema); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

// Upsert inserts or replaces the record for (container, blob).
func (c *Catalog) Upsert(ctx context.Context, rec Record) error {
	query := `
	INSERT INTO products (observatory, instrument, date, kind, container, blob, size, sha256, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(container, blob) DO UPDATE SET
		observatory = excluded.observatory,
		instrument  = excluded.instrument,
		date        = excluded.date,
		kind        = excluded.kind,
		size        = excluded.size,
		sha256      = excluded.sha256,
		created_at  = excluded.created_at
	`
	_, err := c.db.ExecContext(ctx, query,
		rec.Observatory, rec.Instrument, rec.Date, rec.Kind,
		rec.Container, rec.Blob, rec.Size, rec.SHA256,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("catalog: upsert %s/%s: %w", rec.Container, rec.Blob, err)
	}
	return nil
}

// ByMonth returns records for an observatory, instrument, and kind
// within the given month, ordered by date.
func (c *Catalog) ByMonth(ctx context.Context, observatory, instrument, kind string, year, month int) ([]Record, error) {
	prefix := fmt.Sprintf("D%04d-%02d-", year, month)
	query := `
	SELECT observatory, instrument, date, kind, container, blob, size, sha256, created_at
	FROM products
	WHERE observatory = ? AND instrument = ? AND kind = ? AND date LIKE ?
	ORDER BY date, blob
	`
	rows, err := c.db.QueryContext(ctx, query, observatory, instrument, kind, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("catalog: query month: %w", err)
	}
	defer rows.Close() //nolint:errcheck
	return scanRecords(rows)
}

// ByDate returns all records for one observatory on one day.
func (c *Catalog) ByDate(ctx context.Context, observatory, date string) ([]Record, error) {
	query := `
	SELECT observatory, instrument, date, kind, container, blob, size, sha256, created_at
	FROM products
	WHERE observatory = ? AND date = ?
	ORDER BY instrument, kind, blob
	`
	rows, err := c.db.QueryContext(ctx, query, observatory, date)
	if err != nil {
		return nil, fmt.Errorf("catalog: query date: %w", err)
	}
	defer rows.Close() //nolint:errcheck
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		var created string
		if err := rows.Scan(
			&rec.Observatory, &rec.Instrument, &rec.Date, &rec.Kind,
			&rec.Container, &rec.Blob, &rec.Size, &rec.SHA256, &created,
		); err != nil {
			return nil, fmt.Errorf("catalog: scan: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, rec)
	}
	return out, rows.Err()
}
