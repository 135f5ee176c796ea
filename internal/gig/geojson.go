package gig

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// GeoJSONProvider reads entities from <dir>/<type>.geojson feature
// collections.
type GeoJSONProvider struct {
	dir    string
	census Census
}

// NewGeoJSONProvider creates a provider rooted at dir.
func NewGeoJSONProvider(dir string, census Census) *GeoJSONProvider {
	return &GeoJSONProvider{dir: dir, census: census}
}

// Path returns the file read for entity type t.
func (p *GeoJSONProvider) Path(t EntityType) string {
	return filepath.Join(p.dir, t.FileStem()+".geojson")
}

// ListByType implements Provider.
func (p *GeoJSONProvider) ListByType(ctx context.Context, t EntityType) ([]*Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "gig: list geojson")
	}

	path := p.Path(t)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "gig: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "gig: decode %s", path)
	}

	ents := make([]*Entity, 0, len(fc.Features))
	for i, f := range fc.Features {
		e, err := p.featureToEntity(f, t)
		if err != nil {
			return nil, eris.Wrapf(err, "gig: %s feature %d", path, i)
		}
		ents = append(ents, e)
	}
	sortEntities(ents)
	return ents, nil
}

func (p *GeoJSONProvider) featureToEntity(f *geojson.Feature, t EntityType) (*Entity, error) {
	id := stringProperty(f.Properties, "id")
	if id == "" {
		id = f.ID
	}
	if id == "" {
		return nil, eris.New("gig: feature has no id")
	}

	mp, err := toMultiPolygon(f.Geometry)
	if err != nil {
		return nil, eris.Wrapf(err, "gig: geometry of %s", id)
	}

	e := NewEntity(id, stringProperty(f.Properties, "name"), t, p.census)
	e.DistrictID = stringProperty(f.Properties, "district_id")
	e.Geometry = mp
	e.AreaSqKm, err = floatProperty(f.Properties, "area_sqkm")
	if err != nil {
		return nil, eris.Wrapf(err, "gig: area of %s", id)
	}
	return e, nil
}

func stringProperty(props map[string]any, key string) string {
	switch v := props[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// floatProperty returns 0 when the property is absent or null.
func floatProperty(props map[string]any, key string) (float64, error) {
	switch v := props[key].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, eris.Wrapf(err, "gig: parse %s", key)
		}
		return f, nil
	default:
		return 0, eris.Errorf("gig: %s has type %T", key, v)
	}
}

func sortEntities(ents []*Entity) {
	slices.SortFunc(ents, func(a, b *Entity) int {
		return strings.Compare(a.ID, b.ID)
	})
}
