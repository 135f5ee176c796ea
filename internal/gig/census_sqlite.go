package gig

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteCensus stores population tables in a SQLite database.
type SQLiteCensus struct {
	db *sql.DB
}

// OpenSQLiteCensus opens a SQLite database at the given path.
func OpenSQLiteCensus(dsn string) (*SQLiteCensus, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteCensus{db: db}, nil
}

const sqliteCensusMigration = `
CREATE TABLE IF NOT EXISTS populations (
	measurement TEXT NOT NULL,
	granularity TEXT NOT NULL,
	year        TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	total       INTEGER NOT NULL CHECK (total >= 0),
	PRIMARY KEY (measurement, granularity, year, entity_id)
);
`

// Migrate creates the populations table.
func (s *SQLiteCensus) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteCensusMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteCensus) Close() error {
	return s.db.Close()
}

// Import replaces table t with rows in a single transaction.
func (s *SQLiteCensus) Import(ctx context.Context, t Table, rows map[string]int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin import")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM populations WHERE measurement = ? AND granularity = ? AND year = ?`,
		t.Measurement, t.Granularity, t.Year,
	); err != nil {
		return 0, eris.Wrapf(err, "sqlite: clear %s", t)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO populations (measurement, granularity, year, entity_id, total) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	var n int64
	for _, id := range sortedKeys(rows) {
		if _, err := stmt.ExecContext(ctx, t.Measurement, t.Granularity, t.Year, id, rows[id]); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert %s", id)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit import")
	}
	return n, nil
}

// Load reads table t into c.
func (s *SQLiteCensus) Load(ctx context.Context, c *MemCensus, t Table) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entity_id, total FROM populations WHERE measurement = ? AND granularity = ? AND year = ?`,
		t.Measurement, t.Granularity, t.Year)
	if err != nil {
		return eris.Wrapf(err, "sqlite: query %s", t)
	}
	defer rows.Close()

	loaded := make(map[string]int64)
	for rows.Next() {
		var id string
		var total int64
		if err := rows.Scan(&id, &total); err != nil {
			return eris.Wrap(err, "sqlite: scan population")
		}
		loaded[id] = total
	}
	if err := rows.Err(); err != nil {
		return eris.Wrap(err, "sqlite: iterate populations")
	}

	c.Put(t, loaded)
	return nil
}
