package main

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/sells-group/urban-map/internal/config"
	"github.com/sells-group/urban-map/internal/db"
	"github.com/sells-group/urban-map/internal/gig"
	"github.com/sells-group/urban-map/internal/render"
	"github.com/sells-group/urban-map/internal/resilience"
)

const fetchTimeout = 60 * time.Second

// env is everything a render needs, built from cfg.
type env struct {
	table    gig.Table
	census   *gig.MemCensus
	provider gig.Provider
	pool     *pgxpool.Pool
}

func (e *env) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
}

func censusTable() gig.Table {
	return gig.Table{
		Measurement: cfg.Census.Measurement,
		Granularity: cfg.Census.Granularity,
		Year:        cfg.Census.Year,
	}
}

// setup loads the census table and builds the configured provider.
func setup(ctx context.Context) (*env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &env{table: censusTable(), census: gig.NewMemCensus()}
	ok := false
	defer func() {
		if !ok {
			e.Close()
		}
	}()

	needsPool := cfg.Census.Driver == config.CensusPostgres || cfg.Provider.Driver == config.ProviderPostGIS
	if needsPool {
		pool, err := db.Connect(ctx, cfg.Provider.DatabaseURL)
		if err != nil {
			return nil, err
		}
		e.pool = pool
	}

	var fetcher *gig.Fetcher
	if cfg.Provider.Driver == config.ProviderRemote {
		fetcher = newFetcher()
	}

	if err := loadCensus(ctx, e, fetcher); err != nil {
		return nil, err
	}
	zap.L().Info("census loaded",
		zap.String("table", e.table.String()),
		zap.String("driver", cfg.Census.Driver),
		zap.Int("rows", e.census.Len(e.table)),
	)

	switch cfg.Provider.Driver {
	case config.ProviderGeoJSON:
		e.provider = gig.NewGeoJSONProvider(cfg.Provider.DataDir, e.census)
	case config.ProviderShapefile:
		e.provider = gig.NewShapefileProvider(cfg.Provider.DataDir, e.census)
	case config.ProviderPostGIS:
		e.provider = gig.NewPostGISProvider(e.pool, e.census)
	case config.ProviderRemote:
		e.provider = gig.NewRemoteProvider(fetcher, e.census)
	default:
		return nil, eris.Errorf("unsupported provider driver: %s", cfg.Provider.Driver)
	}

	ok = true
	return e, nil
}

func loadCensus(ctx context.Context, e *env, fetcher *gig.Fetcher) error {
	switch cfg.Census.Driver {
	case config.CensusTSV:
		path := filepath.Join(cfg.Census.Path, gig.CensusFileName(e.table))
		if fetcher != nil {
			p, err := fetcher.CensusFile(ctx, e.table)
			if err != nil {
				return err
			}
			path = p
		}
		return gig.LoadCensusTSV(e.census, e.table, path)
	case config.CensusSQLite:
		store, err := openSQLiteCensus(ctx)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck
		return store.Load(ctx, e.census, e.table)
	case config.CensusPostgres:
		return gig.LoadPostgresCensus(ctx, e.pool, e.census, e.table)
	default:
		return eris.Errorf("unsupported census driver: %s", cfg.Census.Driver)
	}
}

func openSQLiteCensus(ctx context.Context) (*gig.SQLiteCensus, error) {
	store, err := gig.OpenSQLiteCensus(cfg.Census.Path)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func newFetcher() *gig.Fetcher {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Remote.MaxAttempts
	return gig.NewFetcher(gig.FetcherConfig{
		BaseURL:        cfg.Remote.BaseURL,
		CacheDir:       cfg.Remote.CacheDir,
		RequestsPerSec: cfg.Remote.RequestsPerSec,
		Retry:          retry,
	}, &http.Client{Timeout: fetchTimeout}, zap.L())
}

func rendererOptions(t gig.Table) []render.Option {
	return []render.Option{
		render.WithTable(t),
		render.WithOutputDir(cfg.Render.OutputDir),
		render.WithDPI(cfg.Render.DPI),
		render.WithSize(vg.Length(cfg.Render.WidthIn)*vg.Inch, vg.Length(cfg.Render.HeightIn)*vg.Inch),
		render.WithLogger(zap.L()),
	}
}
