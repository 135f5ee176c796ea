package urban

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/urban-map/internal/gig"
)

func censusOf(pops map[string]int64) *gig.MemCensus {
	c := gig.NewMemCensus()
	c.Put(gig.DefaultTable, pops)
	return c
}

func TestDefaultPresets(t *testing.T) {
	presets := DefaultPresets()
	require.Len(t, presets, 2)

	la, err := presets[0].Classifier(gig.DefaultTable)
	require.NoError(t, err)
	assert.IsType(t, &LocalAuthority{}, la)

	d, err := presets[1].Classifier(gig.DefaultTable)
	require.NoError(t, err)
	assert.Equal(t, "images/density_1500_GND.png", d.ImagePath())
}

func TestLoadPresets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maps.yaml")
	yaml := `
maps:
  - kind: local_authority
  - kind: density
    ent_type: dsd
    threshold: 1000
  - kind: density
  - kind: density
    threshold: 0
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	presets, err := LoadPresets(path)
	require.NoError(t, err)
	require.Len(t, presets, 4)
	require.NotNil(t, presets[1].Threshold)
	assert.Equal(t, 1000, *presets[1].Threshold)
	assert.Equal(t, "dsd", presets[1].EntType)

	c, err := presets[1].Classifier(gig.DefaultTable)
	require.NoError(t, err)
	assert.Equal(t, gig.TypeDSD, c.EntityType())
	assert.Equal(t, "images/density_1000_DSD.png", c.ImagePath())

	assert.Nil(t, presets[2].Threshold)
	c, err = presets[2].Classifier(gig.DefaultTable)
	require.NoError(t, err)
	assert.Equal(t, "images/density_1500_GND.png", c.ImagePath())
}

func TestPreset_ZeroThresholdIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maps.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maps:\n  - kind: density\n    threshold: 0\n"), 0o644))

	presets, err := LoadPresets(path)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	require.NotNil(t, presets[0].Threshold)

	c, err := presets[0].Classifier(gig.DefaultTable)
	require.NoError(t, err)
	d, ok := c.(*Density)
	require.True(t, ok)
	assert.Equal(t, 0, d.Threshold())
	assert.Equal(t, "images/density_0_GND.png", d.ImagePath())

	e := gig.NewEntity("LK-1100001", "Sparse", gig.TypeGND, censusOf(map[string]int64{"LK-1100001": 1}))
	e.AreaSqKm = 1000
	urban, err := d.IsUrban(e)
	require.NoError(t, err)
	assert.True(t, urban, "any inhabited entity is urban at threshold 0")
}

func TestLoadPresets_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"unknown kind", "maps:\n  - kind: coastal\n", "unknown map kind"},
		{"bad ent type", "maps:\n  - kind: density\n    ent_type: county\n", "unknown entity type"},
		{"negative threshold", "maps:\n  - kind: density\n    threshold: -5\n", "negative density threshold"},
		{"empty", "maps: []\n", "lists no maps"},
		{"bad yaml", "maps: [\n", "parse presets"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "maps.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := LoadPresets(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	_, err := LoadPresets(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
