// Package render draws urban population maps: an overview of urban entities
// over district outlines, and a choropleth of the urban share per district.
package render

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/sells-group/urban-map/internal/gig"
	"github.com/sells-group/urban-map/internal/urban"
)

// Figure defaults.
const (
	DefaultDPI  = 300
	DefaultSize = 5 * vg.Inch
)

// Renderer renders the maps of one classifier.
type Renderer struct {
	provider   gig.Provider
	classifier urban.Classifier
	table      gig.Table
	outputDir  string
	dpi        int
	width      vg.Length
	height     vg.Length
	log        *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTable sets the population table.
func WithTable(t gig.Table) Option {
	return func(r *Renderer) { r.table = t }
}

// WithOutputDir sets the directory image paths are relative to.
func WithOutputDir(dir string) Option {
	return func(r *Renderer) { r.outputDir = dir }
}

// WithDPI sets the raster resolution.
func WithDPI(dpi int) Option {
	return func(r *Renderer) { r.dpi = dpi }
}

// WithSize sets the figure size.
func WithSize(w, h vg.Length) Option {
	return func(r *Renderer) { r.width, r.height = w, h }
}

// WithLogger sets the logger. The default is zap.L().
func WithLogger(log *zap.Logger) Option {
	return func(r *Renderer) { r.log = log }
}

// New creates a Renderer for classifier c reading entities from p.
func New(p gig.Provider, c urban.Classifier, opts ...Option) (*Renderer, error) {
	if p == nil {
		return nil, eris.New("render: provider is required")
	}
	if c == nil {
		return nil, eris.New("render: classifier is required")
	}
	r := &Renderer{
		provider:   p,
		classifier: c,
		table:      gig.DefaultTable,
		outputDir:  ".",
		dpi:        DefaultDPI,
		width:      DefaultSize,
		height:     DefaultSize,
		log:        zap.L(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.dpi <= 0 || r.width <= 0 || r.height <= 0 {
		return nil, eris.Errorf("render: invalid figure %vx%v at %d dpi", r.width, r.height, r.dpi)
	}
	r.log = r.log.With(zap.String("component", "render"), zap.String("map", c.ImagePath()))
	return r, nil
}

// Overview is the result of RenderOverview.
type Overview struct {
	Path string
	urban.Summary
}

// Choropleth is the result of RenderDistrictChoropleth.
type Choropleth struct {
	Path     string
	Ratios   map[string]float64
	Failures []urban.Failure
}

// Render draws the overview and then the district choropleth.
func (r *Renderer) Render(ctx context.Context) error {
	if _, err := r.RenderOverview(ctx); err != nil {
		return err
	}
	_, err := r.RenderDistrictChoropleth(ctx)
	return err
}

// RenderOverview draws every district outline, fills the urban entities, and
// titles the map with the urban share of the population.
func (r *Renderer) RenderOverview(ctx context.Context) (*Overview, error) {
	log := r.log.With(zap.String("run_id", uuid.NewString()))

	districts, err := r.provider.ListByType(ctx, gig.TypeDistrict)
	if err != nil {
		return nil, eris.Wrap(err, "render: list districts")
	}
	ents, err := r.provider.ListByType(ctx, r.classifier.EntityType())
	if err != nil {
		return nil, eris.Wrapf(err, "render: list %s", r.classifier.EntityType())
	}

	p := newMapPlot("")
	for _, d := range districts {
		if err := addGeometry(p, d.Geometry, districtFill, districtStroke); err != nil {
			return nil, eris.Wrapf(err, "render: draw district %s", d.ID)
		}
	}

	s := urban.Aggregate(r.classifier, ents, r.table, func(o urban.Outcome) error {
		if !o.Urban {
			return nil
		}
		fill, err := ParseColor(r.classifier.Color(o.Entity))
		if err != nil {
			return err
		}
		return addGeometry(p, o.Entity.Geometry, fill, noStroke)
	})
	logFailures(log, s.Failures)

	ratio := s.Ratio()
	log.Info("population totals",
		zap.Int64("total", s.Total),
		zap.Int64("urban", s.Urban),
		zap.String("urban_share", urban.FormatPercent(ratio)),
		zap.Int("failures", len(s.Failures)),
	)

	p.Title.Text = Title(r.classifier.TitleLabel(), ratio)
	if err := r.addLegend(p); err != nil {
		return nil, err
	}

	path := r.path(r.classifier.ImagePath())
	fig := newFigure(r.width, r.height, r.dpi)
	equalAspect(p, r.width, r.height)
	p.Draw(fig.dc)
	if err := fig.save(path); err != nil {
		return nil, err
	}
	log.Info("wrote image", zap.String("path", path))

	return &Overview{Path: path, Summary: s}, nil
}

// RenderDistrictChoropleth colors each district by its urban share.
func (r *Renderer) RenderDistrictChoropleth(ctx context.Context) (*Choropleth, error) {
	log := r.log.With(zap.String("run_id", uuid.NewString()))

	districts, err := r.provider.ListByType(ctx, gig.TypeDistrict)
	if err != nil {
		return nil, eris.Wrap(err, "render: list districts")
	}
	ents, err := r.provider.ListByType(ctx, r.classifier.EntityType())
	if err != nil {
		return nil, eris.Wrapf(err, "render: list %s", r.classifier.EntityType())
	}

	s := urban.AggregateByDistrict(r.classifier, districts, ents, r.table)
	logFailures(log, s.Failures)
	ratios := s.Ratios()

	vmax := urban.MaxRatio(ratios)
	if vmax <= 0 {
		vmax = 1
	}
	cm, err := sequentialReds(vmax)
	if err != nil {
		return nil, err
	}

	p := newMapPlot(r.classifier.TitleLabel() + "\n(% Urban Population by District)")
	for _, d := range districts {
		fill, err := cm.At(ratios[d.ID])
		if err != nil {
			return nil, eris.Wrapf(err, "render: color district %s", d.ID)
		}
		if err := addGeometry(p, d.Geometry, fill, districtStroke); err != nil {
			return nil, eris.Wrapf(err, "render: draw district %s", d.ID)
		}
	}

	path := r.path(DistrictImagePath(r.classifier.ImagePath()))
	fig := newFigure(r.width, r.height, r.dpi)
	mapArea, bar := fig.split()
	equalAspect(p, mapArea.Max.X-mapArea.Min.X, mapArea.Max.Y-mapArea.Min.Y)
	p.Draw(mapArea)
	newColorbarPlot(cm).Draw(bar)
	if err := fig.save(path); err != nil {
		return nil, err
	}
	log.Info("wrote image",
		zap.String("path", path),
		zap.Int("districts", len(districts)),
		zap.Int("with_population", len(ratios)),
	)

	return &Choropleth{Path: path, Ratios: ratios, Failures: s.Failures}, nil
}

func (r *Renderer) addLegend(p *plot.Plot) error {
	entries := r.classifier.LegendEntries()
	if len(entries) == 0 {
		return nil
	}
	p.Legend.Top = true
	if title := r.classifier.LegendTitle(); title != "" {
		p.Legend.Add(title)
	}
	for _, entry := range entries {
		c, err := ParseColor(entry.Color)
		if err != nil {
			return err
		}
		p.Legend.Add(entry.Label, swatch{color: c})
	}
	return nil
}

func (r *Renderer) path(rel string) string {
	return filepath.Join(r.outputDir, rel)
}

// Title is the overview title: the classifier label and the urban share.
func Title(label string, ratio float64) string {
	return label + "\n(" + urban.FormatPercent(ratio) + " of population)"
}

// DistrictImagePath derives the choropleth path from the overview path.
func DistrictImagePath(overview string) string {
	return strings.TrimSuffix(overview, ".png") + "_by_district.png"
}

func logFailures(log *zap.Logger, failures []urban.Failure) {
	for _, f := range failures {
		log.Error("failed to process entity",
			zap.String("entity", f.Name),
			zap.String("entity_id", f.EntityID),
			zap.Error(f.Err),
		)
	}
}
