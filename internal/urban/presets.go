package urban

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/urban-map/internal/gig"
)

// Preset kinds.
const (
	KindDensity        = "density"
	KindLocalAuthority = "local_authority"
)

// Preset configures one map to render.
type Preset struct {
	Kind string `yaml:"kind"`
	// EntType and Threshold apply to density maps; unset values take the
	// density defaults. A threshold of 0 counts every inhabited entity.
	EntType   string `yaml:"ent_type,omitempty"`
	Threshold *int   `yaml:"threshold,omitempty"`
}

// DefaultPresets returns the local authority map and the default density map.
func DefaultPresets() []Preset {
	return []Preset{
		{Kind: KindLocalAuthority},
		{Kind: KindDensity},
	}
}

// LoadPresets reads presets from a YAML file with a top-level "maps" list.
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "urban: read presets %s", path)
	}

	var file struct {
		Maps []Preset `yaml:"maps"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "urban: parse presets")
	}
	if len(file.Maps) == 0 {
		return nil, eris.Errorf("urban: %s lists no maps", path)
	}
	for i, p := range file.Maps {
		if _, err := p.Classifier(gig.DefaultTable); err != nil {
			return nil, eris.Wrapf(err, "urban: preset %d", i)
		}
	}
	return file.Maps, nil
}

// Classifier builds the classifier described by p, reading populations from
// table t.
func (p Preset) Classifier(t gig.Table) (Classifier, error) {
	switch p.Kind {
	case KindLocalAuthority:
		return NewLocalAuthority(), nil
	case KindDensity:
		entType := DefaultDensityType
		if p.EntType != "" {
			parsed, err := gig.ParseEntityType(p.EntType)
			if err != nil {
				return nil, err
			}
			entType = parsed
		}
		threshold := DefaultDensityThreshold
		if p.Threshold != nil {
			threshold = *p.Threshold
		}
		if threshold < 0 {
			return nil, eris.Errorf("urban: negative density threshold %d", threshold)
		}
		return NewDensity(entType, threshold, t), nil
	default:
		return nil, eris.Errorf("urban: unknown map kind %q", p.Kind)
	}
}
