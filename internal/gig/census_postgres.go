package gig

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/urban-map/internal/db"
)

var populationColumns = []string{"measurement", "granularity", "year", "entity_id", "total"}

// LoadPostgresCensus reads table t from gig.populations into c.
func LoadPostgresCensus(ctx context.Context, pool db.Pool, c *MemCensus, t Table) error {
	rows, err := pool.Query(ctx, `
		SELECT entity_id, total
		FROM gig.populations
		WHERE measurement = $1 AND granularity = $2 AND year = $3`,
		t.Measurement, t.Granularity, t.Year)
	if err != nil {
		return eris.Wrapf(err, "gig: query populations %s", t)
	}
	defer rows.Close()

	loaded := make(map[string]int64)
	for rows.Next() {
		var id string
		var total int64
		if err := rows.Scan(&id, &total); err != nil {
			return eris.Wrap(err, "gig: scan population row")
		}
		if total < 0 {
			return eris.Errorf("gig: negative population %d for %s", total, id)
		}
		loaded[id] = total
	}
	if err := rows.Err(); err != nil {
		return eris.Wrap(err, "gig: iterate population rows")
	}

	c.Put(t, loaded)
	return nil
}

// ImportPostgresCensus replaces table t in gig.populations with rows. The
// delete and the copy share one transaction, so a failed import keeps the
// previous rows.
func ImportPostgresCensus(ctx context.Context, pool db.Pool, t Table, rows map[string]int64) (int64, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "gig: begin populations import")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		DELETE FROM gig.populations
		WHERE measurement = $1 AND granularity = $2 AND year = $3`,
		t.Measurement, t.Granularity, t.Year)
	if err != nil {
		return 0, eris.Wrapf(err, "gig: clear populations %s", t)
	}

	copyRows := make([][]any, 0, len(rows))
	for _, id := range sortedKeys(rows) {
		copyRows = append(copyRows, []any{t.Measurement, t.Granularity, t.Year, id, rows[id]})
	}
	n, err := db.CopyFromSchema(ctx, tx, "gig", "populations", populationColumns, copyRows)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "gig: commit populations import")
	}
	return n, nil
}
