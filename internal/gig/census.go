package gig

import (
	"encoding/csv"
	"io"
	"maps"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// MemCensus is an in-memory Census. Every census store loads into one.
type MemCensus struct {
	tables map[Table]map[string]int64
}

// NewMemCensus creates an empty MemCensus.
func NewMemCensus() *MemCensus {
	return &MemCensus{tables: make(map[Table]map[string]int64)}
}

// Set records the total population for one entity.
func (c *MemCensus) Set(t Table, entityID string, total int64) {
	rows, ok := c.tables[t]
	if !ok {
		rows = make(map[string]int64)
		c.tables[t] = rows
	}
	rows[entityID] = total
}

// Put replaces all rows of table t.
func (c *MemCensus) Put(t Table, rows map[string]int64) {
	c.tables[t] = rows
}

// Len returns the number of rows loaded for table t.
func (c *MemCensus) Len(t Table) int {
	return len(c.tables[t])
}

// Total implements Census.
func (c *MemCensus) Total(t Table, entityID string) (int64, error) {
	rows, ok := c.tables[t]
	if !ok {
		return 0, eris.Wrapf(ErrNoPopulation, "gig: table %s not loaded", t)
	}
	n, ok := rows[entityID]
	if !ok {
		return 0, eris.Wrapf(ErrNoPopulation, "gig: %s not in %s", entityID, t)
	}
	return n, nil
}

// ReadCensusTSV parses a tab-separated population table. The header must
// contain an entity_id column. The total column is used when present;
// otherwise the numeric value columns of each row are summed.
func ReadCensusTSV(r io.Reader) (map[string]int64, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "gig: read census header")
	}

	idIdx, totalIdx := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "entity_id":
			idIdx = i
		case "total":
			totalIdx = i
		}
	}
	if idIdx < 0 {
		return nil, eris.New("gig: census header has no entity_id column")
	}

	rows := make(map[string]int64)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "gig: read census line %d", line)
		}
		if idIdx >= len(record) {
			continue
		}
		id := strings.TrimSpace(record[idIdx])
		if id == "" {
			continue
		}

		var total float64
		if totalIdx >= 0 {
			if totalIdx >= len(record) {
				return nil, eris.Errorf("gig: census line %d has no total", line)
			}
			total, err = strconv.ParseFloat(strings.TrimSpace(record[totalIdx]), 64)
			if err != nil {
				return nil, eris.Wrapf(err, "gig: census line %d total", line)
			}
		} else {
			for i, v := range record {
				if i == idIdx {
					continue
				}
				f, perr := strconv.ParseFloat(strings.TrimSpace(v), 64)
				if perr != nil {
					continue
				}
				total += f
			}
		}
		switch {
		case math.IsNaN(total) || math.IsInf(total, 0):
			return nil, eris.Errorf("gig: census line %d: population for %s is not finite", line, id)
		case total < 0:
			return nil, eris.Errorf("gig: census line %d: negative population for %s", line, id)
		case math.Round(total) >= math.MaxInt64:
			return nil, eris.Errorf("gig: census line %d: population for %s out of range", line, id)
		}
		rows[id] = int64(math.Round(total))
	}
	return rows, nil
}

// LoadCensusTSV reads table t from a TSV file into c.
func LoadCensusTSV(c *MemCensus, t Table, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "gig: open census %s", path)
	}
	defer func() { _ = f.Close() }()

	rows, err := ReadCensusTSV(f)
	if err != nil {
		return eris.Wrapf(err, "gig: parse census %s", path)
	}
	c.Put(t, rows)
	return nil
}

// CensusFileName is the file name of table t in a gig-data checkout.
func CensusFileName(t Table) string {
	return t.String() + ".tsv"
}

func sortedKeys(rows map[string]int64) []string {
	return slices.Sorted(maps.Keys(rows))
}
