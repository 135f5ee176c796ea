package urban

import (
	"errors"

	"github.com/sells-group/urban-map/internal/gig"
)

var errBadEntity = errors.New("bad entity")

// stubClassifier marks entities urban by ID and fails on request.
type stubClassifier struct {
	Defaults
	urban map[string]bool
	fail  map[string]bool
}

func (s *stubClassifier) EntityType() gig.EntityType { return gig.TypeGND }
func (s *stubClassifier) TitleLabel() string         { return "stub" }
func (s *stubClassifier) ImagePath() string          { return "images/stub.png" }

func (s *stubClassifier) IsUrban(e *gig.Entity) (bool, error) {
	if s.fail[e.ID] {
		return false, errBadEntity
	}
	return s.urban[e.ID], nil
}

func set(ids ...string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// testEntities builds entities whose populations are recorded in a census.
// An ID listed without a population has no census row.
func testEntities(c *gig.MemCensus, t gig.EntityType, pops map[string]int64, ids ...string) []*gig.Entity {
	ents := make([]*gig.Entity, 0, len(ids))
	for _, id := range ids {
		if n, ok := pops[id]; ok {
			c.Set(gig.DefaultTable, id, n)
		}
		ents = append(ents, gig.NewEntity(id, id, t, c))
	}
	return ents
}
