package urban

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/urban-map/internal/gig"
)

// Local authority type codes.
const (
	MunicipalCouncil = "MC"
	UrbanCouncil     = "UC"
	PradeshiyaSabha  = "PS"
)

var localAuthorityColors = map[string]string{
	MunicipalCouncil: "red",
	UrbanCouncil:     "orange",
}

// LocalAuthority marks municipal and urban councils as urban. The council
// type is the last word of the entity name, e.g. "Colombo MC".
type LocalAuthority struct {
	Defaults
}

// NewLocalAuthority creates a local authority classifier.
func NewLocalAuthority() *LocalAuthority {
	return &LocalAuthority{}
}

// EntityType implements Classifier.
func (*LocalAuthority) EntityType() gig.EntityType { return gig.TypeLG }

// IsUrban implements Classifier.
func (*LocalAuthority) IsUrban(e *gig.Entity) (bool, error) {
	_, ok := localAuthorityColors[LocalAuthorityType(e)]
	return ok, nil
}

// Color implements Classifier.
func (*LocalAuthority) Color(e *gig.Entity) string {
	if c, ok := localAuthorityColors[LocalAuthorityType(e)]; ok {
		return c
	}
	return DefaultColor
}

// TitleLabel implements Classifier.
func (*LocalAuthority) TitleLabel() string {
	return "Urban = Municipal Councils or Urban Councils"
}

// ImagePath implements Classifier.
func (*LocalAuthority) ImagePath() string {
	return filepath.Join(ImageDir, "local_authority.png")
}

// LegendEntries implements Classifier.
func (*LocalAuthority) LegendEntries() []LegendEntry {
	return []LegendEntry{
		{Color: localAuthorityColors[MunicipalCouncil], Label: MunicipalCouncil},
		{Color: localAuthorityColors[UrbanCouncil], Label: UrbanCouncil},
	}
}

// LegendTitle implements Classifier.
func (*LocalAuthority) LegendTitle() string { return "LG Type" }

// DistrictKey implements Classifier. Local authorities carry their district
// explicitly because their IDs do not nest under district IDs.
func (*LocalAuthority) DistrictKey(e *gig.Entity) (string, error) {
	if e.DistrictID == "" {
		return "", eris.Errorf("urban: %s has no district", e.ID)
	}
	return e.DistrictID, nil
}

// LocalAuthorityType returns the last word of the entity name, or "" for an
// empty name.
func LocalAuthorityType(e *gig.Entity) string {
	fields := strings.Fields(e.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
