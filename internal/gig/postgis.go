package gig

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/sells-group/urban-map/internal/db"
)

// PostGISProvider reads entities from the gig.ents table.
type PostGISProvider struct {
	pool   db.Pool
	census Census
}

// NewPostGISProvider creates a provider backed by pool.
func NewPostGISProvider(pool db.Pool, census Census) *PostGISProvider {
	return &PostGISProvider{pool: pool, census: census}
}

// ListByType implements Provider.
func (p *PostGISProvider) ListByType(ctx context.Context, t EntityType) ([]*Entity, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, name, COALESCE(district_id, ''), COALESCE(area_sqkm, 0), ST_AsEWKB(geom)
		FROM gig.ents
		WHERE ent_type = $1
		ORDER BY id`, t.String())
	if err != nil {
		return nil, eris.Wrapf(err, "gig: query ents %s", t)
	}
	defer rows.Close()

	var ents []*Entity
	for rows.Next() {
		var (
			id, name, districtID string
			area                 float64
			wkb                  []byte
		)
		if err := rows.Scan(&id, &name, &districtID, &area, &wkb); err != nil {
			return nil, eris.Wrap(err, "gig: scan ent row")
		}

		g, err := ewkb.Unmarshal(wkb)
		if err != nil {
			return nil, eris.Wrapf(err, "gig: decode geometry of %s", id)
		}
		mp, err := toMultiPolygon(g)
		if err != nil {
			return nil, eris.Wrapf(err, "gig: geometry of %s", id)
		}

		e := NewEntity(id, name, t, p.census)
		e.DistrictID = districtID
		e.AreaSqKm = area
		e.Geometry = mp
		ents = append(ents, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "gig: iterate ent rows")
	}
	return ents, nil
}
