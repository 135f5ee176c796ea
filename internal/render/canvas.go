package render

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Background styles for district outlines.
var (
	districtFill   = mustColor("white")
	districtStroke = draw.LineStyle{Color: mustColor("lightgray"), Width: vg.Points(0.5)}
	noStroke       = draw.LineStyle{}
)

// colorbarWidth is the strip reserved for the choropleth color bar.
const colorbarWidth = vg.Inch

// ParseColor resolves a CSS color name such as "red" or "lightgray".
func ParseColor(name string) (color.Color, error) {
	c, ok := colornames.Map[name]
	if !ok {
		return nil, eris.Errorf("render: unknown color %q", name)
	}
	return c, nil
}

func mustColor(name string) color.Color {
	c, err := ParseColor(name)
	if err != nil {
		panic(err)
	}
	return c
}

// newMapPlot creates a plot with hidden axes, the way a map is shown.
func newMapPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	return p
}

// addGeometry adds one filled polygon plotter per polygon of mp. Nothing is
// added when any polygon fails.
func addGeometry(p *plot.Plot, mp *geom.MultiPolygon, fill color.Color, stroke draw.LineStyle) error {
	if mp == nil {
		return eris.New("render: missing geometry")
	}
	plotters := make([]plot.Plotter, 0, mp.NumPolygons())
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		rings := make([]plotter.XYer, 0, poly.NumLinearRings())
		for j := 0; j < poly.NumLinearRings(); j++ {
			ring := poly.LinearRing(j)
			xys := make(plotter.XYs, ring.NumCoords())
			for k := range xys {
				c := ring.Coord(k)
				xys[k] = plotter.XY{X: c.X(), Y: c.Y()}
			}
			rings = append(rings, xys)
		}
		pp, err := plotter.NewPolygon(rings...)
		if err != nil {
			return eris.Wrapf(err, "render: polygon %d", i)
		}
		pp.Color = fill
		pp.LineStyle = stroke
		plotters = append(plotters, pp)
	}
	p.Add(plotters...)
	return nil
}

// equalAspect widens one axis so a degree spans the same length on both axes
// of a w by h canvas.
func equalAspect(p *plot.Plot, w, h vg.Length) {
	xr, yr := p.X.Max-p.X.Min, p.Y.Max-p.Y.Min
	if !(xr > 0) || !(yr > 0) || math.IsInf(xr, 0) || math.IsInf(yr, 0) {
		return
	}
	want := float64(w) / float64(h)
	if xr/yr < want {
		pad := (yr*want - xr) / 2
		p.X.Min -= pad
		p.X.Max += pad
	} else {
		pad := (xr/want - yr) / 2
		p.Y.Min -= pad
		p.Y.Max += pad
	}
}

// swatch is a filled legend thumbnail.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.color, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	})
}

// reversed flips a color map so its first control color sits at Min.
type reversed struct {
	palette.ColorMap
}

func (r reversed) At(v float64) (color.Color, error) {
	v = math.Min(math.Max(v, r.Min()), r.Max())
	return r.ColorMap.At(r.Max() - (v - r.Min()))
}

// sequentialReds returns a light-to-dark red color map over [0, vmax].
func sequentialReds(vmax float64) (palette.ColorMap, error) {
	pal, err := brewer.GetPalette(brewer.TypeSequential, "Reds", 9)
	if err != nil {
		return nil, eris.Wrap(err, "render: brewer palette")
	}
	// Luminance maps need increasing lightness, Reds runs light to dark.
	colors := pal.Colors()
	dark := make([]color.Color, len(colors))
	for i, c := range colors {
		dark[len(colors)-1-i] = c
	}
	cm, err := moreland.NewLuminance(dark)
	if err != nil {
		return nil, eris.Wrap(err, "render: luminance map")
	}
	cm.SetMin(0)
	cm.SetMax(vmax)
	return reversed{cm}, nil
}

// percentTicks labels the default ticks as whole percentages.
type percentTicks struct{}

func (percentTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = fmt.Sprintf("%.0f%%", ticks[i].Value*100)
		}
	}
	return ticks
}

// newColorbarPlot draws cm as a vertical bar with percentage ticks.
func newColorbarPlot(cm palette.ColorMap) *plot.Plot {
	p := plot.New()
	p.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true})
	p.HideX()
	p.Y.Padding = 0
	p.Y.Tick.Marker = percentTicks{}
	return p
}

// figure is a fixed-size raster canvas.
type figure struct {
	img *vgimg.Canvas
	dc  draw.Canvas
}

func newFigure(w, h vg.Length, dpi int) *figure {
	img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))
	return &figure{img: img, dc: draw.New(img)}
}

// split returns the map area and the color bar strip on its right.
func (f *figure) split() (mapArea, bar draw.Canvas) {
	width := f.dc.Max.X - f.dc.Min.X
	height := f.dc.Max.Y - f.dc.Min.Y
	mapArea = draw.Crop(f.dc, 0, -colorbarWidth, 0, 0)
	bar = draw.Crop(f.dc, width-colorbarWidth, 0, height/8, -height/8)
	return mapArea, bar
}

// save writes the figure as a PNG, creating parent directories.
func (f *figure) save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "render: create dir for %s", path)
	}
	out, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "render: create %s", path)
	}
	png := vgimg.PngCanvas{Canvas: f.img}
	if _, err := png.WriteTo(out); err != nil {
		_ = out.Close()
		return eris.Wrapf(err, "render: encode %s", path)
	}
	return eris.Wrapf(out.Close(), "render: close %s", path)
}
