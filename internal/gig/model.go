// Package gig provides geographic entities, their population tables, and the
// providers that load them from GeoJSON, shapefiles, or PostGIS.
package gig

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// EntityType identifies a category of geographic entity.
type EntityType int

// Entity types, from the country down to grama niladhari divisions.
const (
	TypeUnknown EntityType = iota
	TypeCountry
	TypeProvince
	TypeDistrict
	TypeDSD
	TypeGND
	TypeED
	TypePD
	TypeLG
	TypeMOH
)

var entityTypeNames = map[EntityType]string{
	TypeCountry:  "COUNTRY",
	TypeProvince: "PROVINCE",
	TypeDistrict: "DISTRICT",
	TypeDSD:      "DSD",
	TypeGND:      "GND",
	TypeED:       "ED",
	TypePD:       "PD",
	TypeLG:       "LG",
	TypeMOH:      "MOH",
}

// String returns the upper-case name of the type, e.g. "GND".
func (t EntityType) String() string {
	if name, ok := entityTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EntityType(%d)", int(t))
}

// FileStem is the lower-case name used for data files, e.g. "gnd".
func (t EntityType) FileStem() string {
	return strings.ToLower(t.String())
}

// ParseEntityType resolves a type name in any case.
func ParseEntityType(s string) (EntityType, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range entityTypeNames {
		if name == want {
			return t, nil
		}
	}
	return TypeUnknown, eris.Errorf("gig: unknown entity type %q", s)
}

// Table identifies a population dataset by measurement, granularity and year.
type Table struct {
	Measurement string `yaml:"measurement" mapstructure:"measurement"`
	Granularity string `yaml:"granularity" mapstructure:"granularity"`
	Year        string `yaml:"year" mapstructure:"year"`
}

// DefaultTable is the 2012 census population table.
var DefaultTable = Table{
	Measurement: "population-ethnicity",
	Granularity: "regions",
	Year:        "2012",
}

func (t Table) String() string {
	return t.Measurement + "." + t.Granularity + "." + t.Year
}

// ErrNoPopulation is returned when a census table has no row for an entity.
var ErrNoPopulation = errors.New("gig: no population")

// Census resolves total population for an entity in a table.
type Census interface {
	Total(t Table, entityID string) (int64, error)
}

// Entity is a geographic entity with geometry and a population lookup.
type Entity struct {
	ID         string
	Name       string
	Type       EntityType
	DistrictID string
	AreaSqKm   float64
	Geometry   *geom.MultiPolygon

	census Census
}

// NewEntity binds an entity to the census used for population lookups.
func NewEntity(id, name string, t EntityType, census Census) *Entity {
	return &Entity{ID: id, Name: name, Type: t, census: census}
}

// Population returns the entity's total population in table t.
func (e *Entity) Population(t Table) (int64, error) {
	if e.census == nil {
		return 0, eris.Wrapf(ErrNoPopulation, "gig: %s has no census", e.ID)
	}
	n, err := e.census.Total(t, e.ID)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, eris.Errorf("gig: negative population %d for %s", n, e.ID)
	}
	return n, nil
}

// Provider lists entities of a type.
type Provider interface {
	ListByType(ctx context.Context, t EntityType) ([]*Entity, error)
}
