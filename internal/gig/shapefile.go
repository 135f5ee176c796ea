package gig

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
)

// Shapefile attribute names, matched case-insensitively.
const (
	shpFieldID       = "id"
	shpFieldName     = "name"
	shpFieldDistrict = "dist_id"
	shpFieldArea     = "area_sqkm"
)

// ShapefileProvider reads entities from <dir>/<type>.shp.
type ShapefileProvider struct {
	dir    string
	census Census
}

// NewShapefileProvider creates a provider rooted at dir.
func NewShapefileProvider(dir string, census Census) *ShapefileProvider {
	return &ShapefileProvider{dir: dir, census: census}
}

// Path returns the shapefile read for entity type t.
func (p *ShapefileProvider) Path(t EntityType) string {
	return filepath.Join(p.dir, t.FileStem()+".shp")
}

// ListByType implements Provider.
func (p *ShapefileProvider) ListByType(ctx context.Context, t EntityType) ([]*Entity, error) {
	path := p.Path(t)
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "gig: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fieldIdx := make(map[string]int)
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}
	idIdx, ok := fieldIdx[shpFieldID]
	if !ok {
		return nil, eris.Errorf("gig: %s has no %s field", path, strings.ToUpper(shpFieldID))
	}

	attr := func(field string) string {
		idx, ok := fieldIdx[field]
		if !ok {
			return ""
		}
		return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
	}

	var ents []*Entity
	for reader.Next() {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "gig: list shapefile")
		}

		n, shape := reader.Shape()
		id := strings.TrimSpace(strings.TrimRight(reader.Attribute(idIdx), "\x00"))
		if id == "" {
			return nil, eris.Errorf("gig: %s record %d has no id", path, n)
		}

		mp, err := shapeToMultiPolygon(shape)
		if err != nil {
			return nil, eris.Wrapf(err, "gig: %s geometry of %s", path, id)
		}

		e := NewEntity(id, attr(shpFieldName), t, p.census)
		e.DistrictID = attr(shpFieldDistrict)
		e.Geometry = mp
		if v := attr(shpFieldArea); v != "" {
			area, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "gig: %s area of %s", path, id)
			}
			e.AreaSqKm = area
		}
		ents = append(ents, e)
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "gig: read shapefile %s", path)
	}

	sortEntities(ents)
	return ents, nil
}
