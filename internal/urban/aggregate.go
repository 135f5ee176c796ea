package urban

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/urban-map/internal/gig"
)

// Outcome is the result of classifying one entity. When Err is set the other
// fields are meaningless and the entity must not be counted.
type Outcome struct {
	Entity     *gig.Entity
	Urban      bool
	Population int64
	Err        error
}

// Failure records an entity skipped during aggregation.
type Failure struct {
	EntityID string
	Name     string
	Err      error
}

func failureOf(e *gig.Entity, err error) Failure {
	return Failure{EntityID: e.ID, Name: e.Name, Err: err}
}

// Tally accumulates total and urban population.
type Tally struct {
	Total int64
	Urban int64
}

// Add counts a successful outcome.
func (t *Tally) Add(o Outcome) {
	t.Total += o.Population
	if o.Urban {
		t.Urban += o.Population
	}
}

// Ratio is Urban/Total, or 0 when Total is 0.
func (t Tally) Ratio() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Urban) / float64(t.Total)
}

// Classify looks up the population of e in table t and classifies it.
func Classify(c Classifier, e *gig.Entity, t gig.Table) Outcome {
	o := Outcome{Entity: e}
	population, err := e.Population(t)
	if err != nil {
		o.Err = err
		return o
	}
	urban, err := c.IsUrban(e)
	if err != nil {
		o.Err = err
		return o
	}
	o.Population = population
	o.Urban = urban
	return o
}

// Summary is the result of one pass over all entities.
type Summary struct {
	Tally
	// UrbanEntities lists the entities classified urban, in input order.
	UrbanEntities []*gig.Entity
	Failures      []Failure
}

// Visit is called for every successfully classified entity before it is
// counted. A non-nil error turns the entity into a failure.
type Visit func(o Outcome) error

// Aggregate classifies every entity and tallies population. Failed entities
// are recorded and excluded from both totals. visit may be nil.
func Aggregate(c Classifier, ents []*gig.Entity, t gig.Table, visit Visit) Summary {
	var s Summary
	for _, e := range ents {
		o := Classify(c, e, t)
		if o.Err == nil && visit != nil {
			o.Err = visit(o)
		}
		if o.Err != nil {
			s.Failures = append(s.Failures, failureOf(e, o.Err))
			continue
		}
		s.Add(o)
		if o.Urban {
			s.UrbanEntities = append(s.UrbanEntities, e)
		}
	}
	return s
}

// DistrictSummary holds one tally per known district.
type DistrictSummary struct {
	Tallies  map[string]*Tally
	Failures []Failure
}

// AggregateByDistrict groups entities by c.DistrictKey and tallies each
// district. An entity whose key is not one of districts is a failure.
func AggregateByDistrict(c Classifier, districts, ents []*gig.Entity, t gig.Table) DistrictSummary {
	s := DistrictSummary{Tallies: make(map[string]*Tally, len(districts))}
	for _, d := range districts {
		s.Tallies[d.ID] = &Tally{}
	}

	for _, e := range ents {
		key, err := c.DistrictKey(e)
		if err != nil {
			s.Failures = append(s.Failures, failureOf(e, err))
			continue
		}
		tally, ok := s.Tallies[key]
		if !ok {
			s.Failures = append(s.Failures, failureOf(e, eris.Errorf("urban: unknown district %q", key)))
			continue
		}
		o := Classify(c, e, t)
		if o.Err != nil {
			s.Failures = append(s.Failures, failureOf(e, o.Err))
			continue
		}
		tally.Add(o)
	}
	return s
}

// Ratios returns the urban ratio of every district with population. Districts
// whose total is 0 have no entry.
func (s DistrictSummary) Ratios() map[string]float64 {
	ratios := make(map[string]float64, len(s.Tallies))
	for id, t := range s.Tallies {
		if t.Total > 0 {
			ratios[id] = t.Ratio()
		}
	}
	return ratios
}

// MaxRatio returns the largest ratio, or 0 for an empty map.
func MaxRatio(ratios map[string]float64) float64 {
	var m float64
	for _, r := range ratios {
		m = max(m, r)
	}
	return m
}
