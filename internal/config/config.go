package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Render   RenderConfig   `yaml:"render" mapstructure:"render"`
	Census   CensusConfig   `yaml:"census" mapstructure:"census"`
	Provider ProviderConfig `yaml:"provider" mapstructure:"provider"`
	Remote   RemoteConfig   `yaml:"remote" mapstructure:"remote"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// RenderConfig configures map output.
type RenderConfig struct {
	OutputDir string  `yaml:"output_dir" mapstructure:"output_dir"`
	DPI       int     `yaml:"dpi" mapstructure:"dpi"`
	WidthIn   float64 `yaml:"width_in" mapstructure:"width_in"`
	HeightIn  float64 `yaml:"height_in" mapstructure:"height_in"`
	// Presets is a YAML file of maps to render. Empty means the built-in set.
	Presets string `yaml:"presets" mapstructure:"presets"`
}

// CensusConfig selects the population table and where it is stored.
type CensusConfig struct {
	Measurement string `yaml:"measurement" mapstructure:"measurement"`
	Granularity string `yaml:"granularity" mapstructure:"granularity"`
	Year        string `yaml:"year" mapstructure:"year"`
	Driver      string `yaml:"driver" mapstructure:"driver"`
	// Path is a TSV directory or an SQLite file, depending on Driver.
	Path string `yaml:"path" mapstructure:"path"`
}

// ProviderConfig selects where entities and geometries come from.
type ProviderConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DataDir     string `yaml:"data_dir" mapstructure:"data_dir"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// RemoteConfig configures downloads from a gig-data mirror.
type RemoteConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	CacheDir       string  `yaml:"cache_dir" mapstructure:"cache_dir"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	MaxAttempts    int     `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// Census store drivers.
const (
	CensusTSV      = "tsv"
	CensusSQLite   = "sqlite"
	CensusPostgres = "postgres"
)

// Entity provider drivers.
const (
	ProviderGeoJSON   = "geojson"
	ProviderShapefile = "shapefile"
	ProviderPostGIS   = "postgis"
	ProviderRemote    = "remote"
)

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("URBANMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("render.output_dir", ".")
	v.SetDefault("render.dpi", 300)
	v.SetDefault("render.width_in", 5)
	v.SetDefault("render.height_in", 5)
	v.SetDefault("render.presets", "")
	v.SetDefault("census.measurement", "population-ethnicity")
	v.SetDefault("census.granularity", "regions")
	v.SetDefault("census.year", "2012")
	v.SetDefault("census.driver", CensusTSV)
	v.SetDefault("census.path", "data/census")
	v.SetDefault("provider.driver", ProviderGeoJSON)
	v.SetDefault("provider.data_dir", "data/ents")
	v.SetDefault("provider.database_url", "")
	v.SetDefault("remote.base_url", "https://raw.githubusercontent.com/nuuuwan/gig-data/master")
	v.SetDefault("remote.cache_dir", "data/cache")
	v.SetDefault("remote.requests_per_sec", 5)
	v.SetDefault("remote.max_attempts", 3)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the selected drivers have what they need.
func (c *Config) Validate() error {
	var missing []string

	if c.Render.DPI <= 0 {
		missing = append(missing, "render.dpi (must be > 0)")
	}
	if c.Render.WidthIn <= 0 || c.Render.HeightIn <= 0 {
		missing = append(missing, "render.width_in/height_in (must be > 0)")
	}
	if c.Census.Measurement == "" || c.Census.Granularity == "" || c.Census.Year == "" {
		missing = append(missing, "census.measurement/granularity/year")
	}

	switch c.Census.Driver {
	case CensusTSV, CensusSQLite:
		if c.Census.Path == "" && c.Provider.Driver != ProviderRemote {
			missing = append(missing, "census.path")
		}
	case CensusPostgres:
		if c.Provider.DatabaseURL == "" {
			missing = append(missing, "provider.database_url (census.driver=postgres)")
		}
	default:
		return eris.Errorf("config: unknown census driver %q", c.Census.Driver)
	}

	switch c.Provider.Driver {
	case ProviderGeoJSON, ProviderShapefile:
		if c.Provider.DataDir == "" {
			missing = append(missing, "provider.data_dir")
		}
	case ProviderPostGIS:
		if c.Provider.DatabaseURL == "" {
			missing = append(missing, "provider.database_url")
		}
	case ProviderRemote:
		if c.Remote.BaseURL == "" {
			missing = append(missing, "remote.base_url")
		}
		if c.Remote.CacheDir == "" {
			missing = append(missing, "remote.cache_dir")
		}
		if c.Remote.RequestsPerSec <= 0 {
			missing = append(missing, "remote.requests_per_sec (must be > 0)")
		}
		if c.Remote.MaxAttempts < 1 {
			missing = append(missing, "remote.max_attempts (must be >= 1)")
		}
	default:
		return eris.Errorf("config: unknown provider driver %q", c.Provider.Driver)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: missing or invalid: %s", strings.Join(missing, ", "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
