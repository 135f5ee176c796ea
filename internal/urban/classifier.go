// Package urban decides which entities count as urban and aggregates
// population-weighted urban ratios overall and per district.
package urban

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/urban-map/internal/gig"
)

// districtKeyLen is the length of the district prefix of a hierarchical
// entity ID, e.g. "LK-11" in "LK-1127005".
const districtKeyLen = 5

// DefaultColor is the fill used for urban entities unless a classifier
// distinguishes sub-categories.
const DefaultColor = "red"

// LegendEntry is one swatch of a categorical legend.
type LegendEntry struct {
	Color string
	Label string
}

// Classifier decides which entities of one type are urban and how the map
// showing them is labelled and stored. Variants embed Defaults for the
// optional behaviors.
type Classifier interface {
	// EntityType is the category of entities the map scans.
	EntityType() gig.EntityType
	IsUrban(e *gig.Entity) (bool, error)
	TitleLabel() string
	// ImagePath is the overview image path, relative to the output dir.
	ImagePath() string
	Color(e *gig.Entity) string
	// LegendEntries returns nil when the map has no legend.
	LegendEntries() []LegendEntry
	LegendTitle() string
	DistrictKey(e *gig.Entity) (string, error)
}

// Defaults supplies the optional Classifier behaviors: a single fill color,
// no legend, and districts keyed by the entity ID prefix.
type Defaults struct{}

// Color implements Classifier.
func (Defaults) Color(*gig.Entity) string { return DefaultColor }

// LegendEntries implements Classifier.
func (Defaults) LegendEntries() []LegendEntry { return nil }

// LegendTitle implements Classifier.
func (Defaults) LegendTitle() string { return "" }

// DistrictKey implements Classifier.
func (Defaults) DistrictKey(e *gig.Entity) (string, error) {
	return IDPrefixDistrict(e)
}

// IDPrefixDistrict returns the first five characters of the entity ID.
func IDPrefixDistrict(e *gig.Entity) (string, error) {
	if len(e.ID) < districtKeyLen {
		return "", eris.Errorf("urban: id %q too short for a district key", e.ID)
	}
	return e.ID[:districtKeyLen], nil
}
