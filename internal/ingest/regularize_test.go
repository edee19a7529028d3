package ingest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minutes(base time.Time, offsets ...int) []time.Time {
	out := make([]time.Time, len(offsets))
	for i, m := range offsets {
		out[i] = base.Add(time.Duration(m) * time.Minute)
	}
	return out
}

func TestModeInterval(t *testing.T) {
	base := date(2024, 1, 1, 0, 0, 0)
	tests := []struct {
		name    string
		offsets []int
		want    time.Duration
	}{
		{"uniform", []int{0, 5, 10, 15}, 5 * time.Minute},
		{"dominant with gaps", []int{0, 2, 4, 8, 10, 20}, 2 * time.Minute},
		{"tie goes to first seen", []int{0, 3, 8, 11, 16}, 3 * time.Minute},
		{"tie order follows time", []int{0, 5, 8, 13, 16}, 5 * time.Minute},
		{"duplicates ignored", []int{0, 0, 0, 10, 20}, 10 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := modeInterval(minutes(base, tt.offsets...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := modeInterval(minutes(base, 0, 0))
	assert.ErrorIs(t, err, ErrParse)
}

func TestRegularize(t *testing.T) {
	base := date(2024, 1, 1, 0, 0, 0)
	ts := minutes(base, 10, 0, 5, 25)
	ts = append(ts, time.Time{})

	g, err := regularize(ts)
	require.NoError(t, err)

	assert.Equal(t, base, g.start)
	assert.Equal(t, base.Add(25*time.Minute), g.end)
	assert.Equal(t, 5*time.Minute, g.interval)
	assert.Equal(t, minutes(base, 0, 5, 10, 15, 20, 25), g.timestamps)
	assert.Equal(t, []int{1, 2, 0, -1, -1, 3}, g.sourceRow)
	assert.Equal(t, 2, g.gaps)
}

func TestMaterialize(t *testing.T) {
	tbl := &table{
		headers: []string{"a", "Timestamp", "b"},
		rows:    [][]string{{" 1.5 ", "x", "2"}, {"oops", "y"}},
	}
	g := &grid{timestamps: minutes(date(2024, 1, 1, 0, 0, 0), 0, 1, 2), sourceRow: []int{0, -1, 1}}

	ds := materialize(tbl, 1, g)

	require.Len(t, ds.Series, 2)
	assert.Equal(t, "Timestamp", ds.TimestampColumn)
	a, b := ds.Series[0], ds.Series[1]
	assert.Equal(t, 0, a.Index)
	assert.Equal(t, 2, b.Index)
	assert.Equal(t, 1.5, a.Values[0])
	assert.True(t, math.IsNaN(a.Values[1]))
	assert.True(t, math.IsNaN(a.Values[2]))
	assert.Equal(t, 2.0, b.Values[0])
	assert.True(t, math.IsNaN(b.Values[2]), "short row reads as empty")
}
