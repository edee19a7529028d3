package ingest

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// modeInterval returns the most common positive delta between consecutive
// sorted timestamps. Zero deltas from duplicate rows are ignored. Ties go to
// the delta seen first while scanning in time order.
func modeInterval(sorted []time.Time) (time.Duration, error) {
	counts := make(map[time.Duration]int)
	var order []time.Duration
	for i := 1; i < len(sorted); i++ {
		d := sorted[i].Sub(sorted[i-1])
		if d <= 0 {
			continue
		}
		if counts[d] == 0 {
			order = append(order, d)
		}
		counts[d]++
	}
	if len(order) == 0 {
		return 0, fmt.Errorf("%w: could not determine a sampling interval", ErrParse)
	}

	best := order[0]
	for _, d := range order[1:] {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best, nil
}

// grid is the outcome of rebuilding a table onto an even time grid.
type grid struct {
	timestamps []time.Time
	sourceRow  []int // -1 for synthesized rows
	start, end time.Time
	interval   time.Duration
	gaps       int
}

// regularize lays the valid timestamps onto an even grid from the earliest to
// the latest reading. A grid instant takes the last source row stamped with
// it; instants with no row are synthesized and counted as gaps. Rows off the
// grid are dropped.
func regularize(ts []time.Time) (*grid, error) {
	valid := make([]time.Time, 0, len(ts))
	rowAt := make(map[int64]int, len(ts))
	for r, t := range ts {
		if t.IsZero() {
			continue
		}
		valid = append(valid, t)
		rowAt[t.UnixNano()] = r
	}
	if len(valid) < 2 {
		return nil, fmt.Errorf("%w: need at least two valid timestamps, found %d", ErrParse, len(valid))
	}
	slices.SortFunc(valid, time.Time.Compare)

	interval, err := modeInterval(valid)
	if err != nil {
		return nil, err
	}

	g := &grid{start: valid[0], end: valid[len(valid)-1], interval: interval}
	n := int(g.end.Sub(g.start)/interval) + 1
	g.timestamps = make([]time.Time, 0, n)
	g.sourceRow = make([]int, 0, n)
	for cur := g.start; !cur.After(g.end); cur = cur.Add(interval) {
		g.timestamps = append(g.timestamps, cur)
		if r, ok := rowAt[cur.UnixNano()]; ok {
			g.sourceRow = append(g.sourceRow, r)
			continue
		}
		g.sourceRow = append(g.sourceRow, -1)
		g.gaps++
	}
	return g, nil
}

// materialize builds the typed dataset for a grid. Cells that do not parse as
// numbers become NaN.
func materialize(t *table, tsCol int, g *grid) *Dataset {
	ds := &Dataset{
		TimestampColumn: t.headers[tsCol],
		Timestamps:      g.timestamps,
	}
	for i, h := range t.headers {
		if i == tsCol {
			continue
		}
		values := make([]float64, len(g.timestamps))
		for k, r := range g.sourceRow {
			if r < 0 {
				values[k] = math.NaN()
				continue
			}
			values[k] = parseNumber(t.cell(r, i))
		}
		ds.Series = append(ds.Series, Series{Name: h, Index: i, Values: values})
	}
	return ds
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
