package urban

import (
	"path/filepath"
	"strconv"

	"github.com/sells-group/urban-map/internal/gig"
)

// Density defaults: grama niladhari divisions above 1,500 people per km².
const (
	DefaultDensityType      = gig.TypeGND
	DefaultDensityThreshold = 1500
)

// Density marks an entity urban when its population density exceeds a
// threshold.
type Density struct {
	Defaults

	entType   gig.EntityType
	threshold int
	table     gig.Table
}

// NewDensity creates a density classifier for entities of type t.
func NewDensity(t gig.EntityType, threshold int, table gig.Table) *Density {
	return &Density{entType: t, threshold: threshold, table: table}
}

// Threshold returns the density threshold in people per km².
func (d *Density) Threshold() int { return d.threshold }

// EntityType implements Classifier.
func (d *Density) EntityType() gig.EntityType { return d.entType }

// IsUrban implements Classifier. Entities without an area have density 0.
func (d *Density) IsUrban(e *gig.Entity) (bool, error) {
	population, err := e.Population(d.table)
	if err != nil {
		return false, err
	}
	return density(population, e.AreaSqKm) > float64(d.threshold), nil
}

func density(population int64, areaSqKm float64) float64 {
	if areaSqKm <= 0 {
		return 0
	}
	return float64(population) / areaSqKm
}

// TitleLabel implements Classifier.
func (d *Density) TitleLabel() string {
	return "Areas with population density > " + FormatInt(int64(d.threshold)) + "/km²"
}

// ImagePath implements Classifier.
func (d *Density) ImagePath() string {
	name := "density_" + strconv.Itoa(d.threshold) + "_" + d.entType.String() + ".png"
	return filepath.Join(ImageDir, name)
}
