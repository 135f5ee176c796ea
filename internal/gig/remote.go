package gig

import (
	"context"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/urban-map/internal/resilience"
)

// FetcherConfig configures remote gig-data downloads.
type FetcherConfig struct {
	BaseURL        string
	CacheDir       string
	RequestsPerSec float64
	Retry          resilience.RetryConfig
}

// Fetcher downloads entity and census files into a local cache. Files already
// in the cache are not downloaded again.
type Fetcher struct {
	client  *http.Client
	baseURL string
	dir     string
	limiter *rate.Limiter
	retry   resilience.RetryConfig
	log     *zap.Logger
}

// NewFetcher creates a Fetcher. A nil client uses http.DefaultClient.
func NewFetcher(cfg FetcherConfig, client *http.Client, log *zap.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.L()
	}
	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	log = log.With(zap.String("component", "gig.fetcher"))
	retry := cfg.Retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger(log, "gig download")
	}
	return &Fetcher{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		dir:     cfg.CacheDir,
		limiter: rate.NewLimiter(limit, 1),
		retry:   retry,
		log:     log,
	}
}

// EntityFile returns the cached GeoJSON file for entity type t.
func (f *Fetcher) EntityFile(ctx context.Context, t EntityType) (string, error) {
	return f.fetch(ctx, path.Join("ents", t.FileStem()+".geojson"))
}

// CensusFile returns the cached TSV file for table t.
func (f *Fetcher) CensusFile(ctx context.Context, t Table) (string, error) {
	return f.fetch(ctx, path.Join("gig2", CensusFileName(t)))
}

func (f *Fetcher) fetch(ctx context.Context, rel string) (string, error) {
	dest := filepath.Join(f.dir, filepath.FromSlash(rel))
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", eris.Wrap(err, "gig: create cache dir")
	}

	url := f.baseURL + "/" + rel
	err := resilience.Do(ctx, f.retry, func(ctx context.Context) error {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}
		return f.download(ctx, url, dest)
	})
	if err != nil {
		return "", eris.Wrapf(err, "gig: download %s", url)
	}

	f.log.Info("downloaded", zap.String("url", url), zap.String("path", dest))
	return dest, nil
}

// download writes url to dest through a temp file so a failed transfer never
// leaves a partial file in the cache.
func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "build request")
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &resilience.StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return eris.Wrap(err, "create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "close temp file")
	}
	return os.Rename(tmp.Name(), dest)
}

// RemoteProvider lists entities from GeoJSON files fetched on demand.
type RemoteProvider struct {
	fetcher *Fetcher
	local   *GeoJSONProvider
}

// NewRemoteProvider creates a provider that reads through f's cache.
func NewRemoteProvider(f *Fetcher, census Census) *RemoteProvider {
	return &RemoteProvider{
		fetcher: f,
		local:   NewGeoJSONProvider(filepath.Join(f.dir, "ents"), census),
	}
}

// ListByType implements Provider.
func (p *RemoteProvider) ListByType(ctx context.Context, t EntityType) ([]*Entity, error) {
	if _, err := p.fetcher.EntityFile(ctx, t); err != nil {
		return nil, err
	}
	return p.local.ListByType(ctx, t)
}
