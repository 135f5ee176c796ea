package gig

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// toMultiPolygon normalizes polygonal geometry to a MultiPolygon.
func toMultiPolygon(g geom.T) (*geom.MultiPolygon, error) {
	switch g := g.(type) {
	case *geom.MultiPolygon:
		if g.NumPolygons() == 0 {
			return nil, eris.New("gig: empty multipolygon")
		}
		return g, nil
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(g.Layout()).SetSRID(g.SRID())
		if err := mp.Push(g); err != nil {
			return nil, eris.Wrap(err, "gig: wrap polygon")
		}
		return mp, nil
	case nil:
		return nil, eris.New("gig: missing geometry")
	default:
		return nil, eris.Errorf("gig: unsupported geometry %T", g)
	}
}

// shapeToMultiPolygon converts a shapefile polygon to a MultiPolygon. Each
// clockwise ring starts a new polygon; counter-clockwise rings are holes of
// the polygon before them.
func shapeToMultiPolygon(shape shp.Shape) (*geom.MultiPolygon, error) {
	p, ok := shape.(*shp.Polygon)
	if !ok || p == nil {
		return nil, eris.Errorf("gig: unsupported shape %T", shape)
	}
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil, eris.New("gig: empty polygon shape")
	}

	mp := geom.NewMultiPolygon(geom.XY)
	var current *geom.Polygon

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if start < 0 || end > int32(len(p.Points)) || start >= end {
			return nil, eris.Errorf("gig: bad ring bounds %d..%d", start, end)
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if current == nil || signedArea(flat) <= 0 {
			if current != nil {
				if err := mp.Push(current); err != nil {
					return nil, eris.Wrap(err, "gig: push polygon")
				}
			}
			current = geom.NewPolygon(geom.XY)
		}
		if err := current.Push(ring); err != nil {
			return nil, eris.Wrapf(err, "gig: push ring %d", i)
		}
	}
	if err := mp.Push(current); err != nil {
		return nil, eris.Wrap(err, "gig: push polygon")
	}
	return mp, nil
}

// signedArea is the shoelace area of a flat XY ring; negative when clockwise.
func signedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}
