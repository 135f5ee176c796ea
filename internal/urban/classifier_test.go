package urban

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/urban-map/internal/gig"
)

func TestDefaults(t *testing.T) {
	var d Defaults
	e := gig.NewEntity("LK-1127005", "Kotahena East", gig.TypeGND, nil)

	assert.Equal(t, "red", d.Color(e))
	assert.Nil(t, d.LegendEntries())
	assert.Empty(t, d.LegendTitle())

	key, err := d.DistrictKey(e)
	require.NoError(t, err)
	assert.Equal(t, "LK-11", key)

	_, err = d.DistrictKey(gig.NewEntity("LK", "short", gig.TypeGND, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}

func TestDensity_IsUrban(t *testing.T) {
	c := gig.NewMemCensus()
	d := NewDensity(gig.TypeGND, 1500, gig.DefaultTable)

	tests := []struct {
		name       string
		population int64
		area       float64
		want       bool
	}{
		{"dense", 16000, 2.0, true},
		{"sparse", 1000, 2.0, false},
		{"at threshold is not urban", 3000, 2.0, false},
		{"zero area", 1000000, 0, false},
		{"negative area", 1000000, -1, false},
		{"zero population", 0, 1.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := gig.NewEntity("LK-"+tt.name, tt.name, gig.TypeGND, c)
			e.AreaSqKm = tt.area
			c.Set(gig.DefaultTable, e.ID, tt.population)

			got, err := d.IsUrban(e)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDensity_MissingPopulation(t *testing.T) {
	d := NewDensity(gig.TypeGND, 1500, gig.DefaultTable)
	e := gig.NewEntity("LK-1127005", "Kotahena East", gig.TypeGND, gig.NewMemCensus())
	e.AreaSqKm = 1

	_, err := d.IsUrban(e)
	assert.ErrorIs(t, err, gig.ErrNoPopulation)
}

func TestDensity_Labels(t *testing.T) {
	d := NewDensity(gig.TypeGND, 1500, gig.DefaultTable)
	assert.Equal(t, gig.TypeGND, d.EntityType())
	assert.Equal(t, 1500, d.Threshold())
	assert.Equal(t, "Areas with population density > 1,500/km²", d.TitleLabel())
	assert.Equal(t, "images/density_1500_GND.png", d.ImagePath())
	assert.Equal(t, "red", d.Color(nil))
	assert.Nil(t, d.LegendEntries())
}

func TestDensity_ImagePathDeterminism(t *testing.T) {
	a := NewDensity(gig.TypeGND, 1500, gig.DefaultTable)
	b := NewDensity(gig.TypeGND, 1500, gig.DefaultTable)
	assert.Equal(t, a.ImagePath(), b.ImagePath())

	paths := map[string]bool{}
	for _, d := range []*Density{
		NewDensity(gig.TypeGND, 1500, gig.DefaultTable),
		NewDensity(gig.TypeGND, 1000, gig.DefaultTable),
		NewDensity(gig.TypeDSD, 1500, gig.DefaultTable),
		NewDensity(gig.TypeDSD, 1000, gig.DefaultTable),
	} {
		paths[d.ImagePath()] = true
	}
	assert.Len(t, paths, 4)
	assert.False(t, paths[NewLocalAuthority().ImagePath()])
}

func TestLocalAuthority(t *testing.T) {
	la := NewLocalAuthority()
	tests := []struct {
		name  string
		urban bool
		color string
	}{
		{"Colombo MC", true, "red"},
		{"Moratuwa MC", true, "red"},
		{"Kolonnawa UC", true, "orange"},
		{"Kesbewa PS", false, "red"},
		{"Unnamed", false, "red"},
		{"", false, "red"},
		{"  Seethawaka   UC  ", true, "orange"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := gig.NewEntity("LG-11001", tt.name, gig.TypeLG, nil)
			urban, err := la.IsUrban(e)
			require.NoError(t, err)
			assert.Equal(t, tt.urban, urban)
			assert.Equal(t, tt.color, la.Color(e))
		})
	}
}

func TestLocalAuthority_Labels(t *testing.T) {
	la := NewLocalAuthority()
	assert.Equal(t, gig.TypeLG, la.EntityType())
	assert.Equal(t, "Urban = Municipal Councils or Urban Councils", la.TitleLabel())
	assert.Equal(t, "images/local_authority.png", la.ImagePath())
	assert.Equal(t, "LG Type", la.LegendTitle())
	assert.Equal(t, []LegendEntry{{Color: "red", Label: "MC"}, {Color: "orange", Label: "UC"}}, la.LegendEntries())
}

func TestLocalAuthority_DistrictKey(t *testing.T) {
	la := NewLocalAuthority()
	e := gig.NewEntity("LG-11001", "Colombo MC", gig.TypeLG, nil)
	_, err := la.DistrictKey(e)
	require.Error(t, err)

	e.DistrictID = "LK-11"
	key, err := la.DistrictKey(e)
	require.NoError(t, err)
	assert.Equal(t, "LK-11", key)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "66.7%", FormatPercent(400.0/600.0))
	assert.Equal(t, "0.0%", FormatPercent(0))
	assert.Equal(t, "100.0%", FormatPercent(1))
	assert.Equal(t, "1,500", FormatInt(1500))
	assert.Equal(t, "20,359,439", FormatInt(20359439))
}
