package urban

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/urban-map/internal/gig"
)

func TestTally_Ratio(t *testing.T) {
	assert.Zero(t, Tally{}.Ratio())
	assert.Zero(t, Tally{Total: 0, Urban: 0}.Ratio())
	assert.InDelta(t, 0.25, Tally{Total: 400, Urban: 100}.Ratio(), 1e-12)
	assert.InDelta(t, 1.0, Tally{Total: 7, Urban: 7}.Ratio(), 1e-12)
}

func TestAggregate_ThreeEntities(t *testing.T) {
	c := gig.NewMemCensus()
	ents := testEntities(c, gig.TypeGND,
		map[string]int64{"LK-1100001": 100, "LK-1100002": 200, "LK-1100003": 300},
		"LK-1100001", "LK-1100002", "LK-1100003")
	cl := &stubClassifier{urban: set("LK-1100001", "LK-1100003")}

	s := Aggregate(cl, ents, gig.DefaultTable, nil)
	assert.Equal(t, int64(600), s.Total)
	assert.Equal(t, int64(400), s.Urban)
	assert.InDelta(t, 0.6667, s.Ratio(), 1e-4)
	assert.Equal(t, "66.7%", FormatPercent(s.Ratio()))
	require.Len(t, s.UrbanEntities, 2)
	assert.Equal(t, "LK-1100001", s.UrbanEntities[0].ID)
	assert.Equal(t, "LK-1100003", s.UrbanEntities[1].ID)
	assert.Empty(t, s.Failures)
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(&stubClassifier{}, nil, gig.DefaultTable, nil)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.Ratio())
}

func TestAggregate_FailureIsolation(t *testing.T) {
	pops := map[string]int64{"LK-1100001": 100, "LK-1100002": 200, "LK-1100003": 300, "LK-1100004": 50}
	cl := &stubClassifier{
		urban: set("LK-1100001", "LK-1100003", "LK-1100004"),
		fail:  set("LK-1100002"),
	}

	withFailure := Aggregate(cl, testEntities(gig.NewMemCensus(), gig.TypeGND, pops,
		"LK-1100001", "LK-1100002", "LK-1100003", "LK-1100004"), gig.DefaultTable, nil)
	without := Aggregate(cl, testEntities(gig.NewMemCensus(), gig.TypeGND, pops,
		"LK-1100001", "LK-1100003", "LK-1100004"), gig.DefaultTable, nil)

	assert.Equal(t, without.Tally, withFailure.Tally)
	require.Len(t, withFailure.Failures, 1)
	assert.Equal(t, "LK-1100002", withFailure.Failures[0].EntityID)
	assert.ErrorIs(t, withFailure.Failures[0].Err, errBadEntity)
	assert.Len(t, withFailure.UrbanEntities, 3, "entities after the failure are still processed")
}

func TestAggregate_MissingPopulationSkipped(t *testing.T) {
	c := gig.NewMemCensus()
	ents := testEntities(c, gig.TypeGND, map[string]int64{"LK-1100001": 100}, "LK-1100001", "LK-1100002")
	cl := &stubClassifier{urban: set("LK-1100001", "LK-1100002")}

	s := Aggregate(cl, ents, gig.DefaultTable, nil)
	assert.Equal(t, Tally{Total: 100, Urban: 100}, s.Tally)
	require.Len(t, s.Failures, 1)
	assert.ErrorIs(t, s.Failures[0].Err, gig.ErrNoPopulation)
}

func TestAggregate_RatioBounds(t *testing.T) {
	c := gig.NewMemCensus()
	pops := map[string]int64{"LK-1100001": 0, "LK-1100002": 17, "LK-1100003": 999}
	ents := testEntities(c, gig.TypeGND, pops, "LK-1100001", "LK-1100002", "LK-1100003")

	for _, urban := range []map[string]bool{
		set(), set("LK-1100001"), set("LK-1100002"), set("LK-1100001", "LK-1100002", "LK-1100003"),
	} {
		s := Aggregate(&stubClassifier{urban: urban}, ents, gig.DefaultTable, nil)
		assert.GreaterOrEqual(t, s.Ratio(), 0.0)
		assert.LessOrEqual(t, s.Ratio(), 1.0)
	}
}

func TestAggregate_VisitErrorIsAFailure(t *testing.T) {
	c := gig.NewMemCensus()
	ents := testEntities(c, gig.TypeGND,
		map[string]int64{"LK-1100001": 100, "LK-1100002": 200},
		"LK-1100001", "LK-1100002")
	cl := &stubClassifier{urban: set("LK-1100001", "LK-1100002")}

	var visited []string
	s := Aggregate(cl, ents, gig.DefaultTable, func(o Outcome) error {
		visited = append(visited, o.Entity.ID)
		if o.Entity.ID == "LK-1100001" {
			return errBadEntity
		}
		return nil
	})
	assert.Equal(t, []string{"LK-1100001", "LK-1100002"}, visited)
	assert.Equal(t, Tally{Total: 200, Urban: 200}, s.Tally)
	require.Len(t, s.Failures, 1)
	assert.Equal(t, "LK-1100001", s.Failures[0].Name)
}

func TestAggregateByDistrict(t *testing.T) {
	c := gig.NewMemCensus()
	districts := testEntities(c, gig.TypeDistrict, nil, "LK-11", "LK-12")
	ents := testEntities(c, gig.TypeGND,
		map[string]int64{"LK-1100001": 100, "LK-1100002": 400},
		"LK-1100001", "LK-1100002")
	cl := &stubClassifier{urban: set("LK-1100001")}

	s := AggregateByDistrict(cl, districts, ents, gig.DefaultTable)
	assert.Empty(t, s.Failures)
	assert.Equal(t, Tally{Total: 500, Urban: 100}, *s.Tallies["LK-11"])
	assert.Equal(t, Tally{}, *s.Tallies["LK-12"])

	ratios := s.Ratios()
	assert.Equal(t, map[string]float64{"LK-11": 0.2}, ratios)
	_, ok := ratios["LK-12"]
	assert.False(t, ok, "zero-population district has no entry")
}

func TestAggregateByDistrict_Failures(t *testing.T) {
	c := gig.NewMemCensus()
	districts := testEntities(c, gig.TypeDistrict, nil, "LK-11")
	ents := testEntities(c, gig.TypeGND,
		map[string]int64{"LK-1100001": 100, "LK-9900001": 50, "LK-1100002": 70, "LK": 5},
		"LK-1100001", "LK-9900001", "LK-1100002", "LK", "LK-1100003")
	cl := &stubClassifier{urban: set("LK-1100001"), fail: set("LK-1100002")}

	s := AggregateByDistrict(cl, districts, ents, gig.DefaultTable)
	assert.Equal(t, Tally{Total: 100, Urban: 100}, *s.Tallies["LK-11"])

	failed := map[string]string{}
	for _, f := range s.Failures {
		failed[f.EntityID] = f.Err.Error()
	}
	assert.Len(t, failed, 4)
	assert.Contains(t, failed["LK-9900001"], "unknown district")
	assert.Contains(t, failed["LK"], "too short")
	assert.Contains(t, failed["LK-1100002"], "bad entity")
	assert.Contains(t, failed["LK-1100003"], "no population")
}

func TestAggregateByDistrict_RatioIsExact(t *testing.T) {
	c := gig.NewMemCensus()
	districts := testEntities(c, gig.TypeDistrict, nil, "LK-11", "LK-21", "LK-31")
	ents := testEntities(c, gig.TypeGND,
		map[string]int64{"LK-1100001": 3, "LK-1100002": 4, "LK-2100001": 9, "LK-3100001": 0},
		"LK-1100001", "LK-1100002", "LK-2100001", "LK-3100001")
	cl := &stubClassifier{urban: set("LK-1100002", "LK-2100001", "LK-3100001")}

	ratios := AggregateByDistrict(cl, districts, ents, gig.DefaultTable).Ratios()
	assert.Equal(t, map[string]float64{"LK-11": 4.0 / 7.0, "LK-21": 1.0}, ratios)
	assert.Equal(t, 1.0, MaxRatio(ratios))
	assert.Zero(t, MaxRatio(nil))
}
