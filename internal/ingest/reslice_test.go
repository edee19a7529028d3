package ingest

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() *Dataset {
	base := date(2024, 6, 1, 12, 0, 0)
	return &Dataset{
		TimestampColumn: "Timestamp",
		Timestamps:      minutes(base, 0, 2, 4, 6, 8),
		Series: []Series{
			{Name: "100_1|Pipe|Depth|mm", Index: 1, Values: []float64{1, 2, math.NaN(), 4, 5}},
		},
	}
}

func TestReslice_FullRangeRoundTrip(t *testing.T) {
	ds := sampleDataset()
	s, err := Reslice(ds, 2*time.Minute, ds.Timestamps[0], ds.Timestamps[ds.Len()-1])
	require.NoError(t, err)

	if diff := cmp.Diff(ds, s.Dataset, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("dataset changed (-want +got):\n%s", diff)
	}
	assert.Equal(t, 5, s.Rows)
	assert.Equal(t, 2*time.Minute, s.Interval)
}

func TestReslice_Narrows(t *testing.T) {
	ds := sampleDataset()
	start := date(2024, 6, 1, 12, 1, 0)
	end := date(2024, 6, 1, 12, 6, 0)

	s, err := Reslice(ds, 0, start, end)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, date(2024, 6, 1, 12, 2, 0), s.Start)
	assert.Equal(t, end, s.End)
	assert.Equal(t, 2*time.Minute, s.Interval, "recomputed from retained rows")
	col, ok := s.Dataset.Column("100_1|Pipe|Depth|mm")
	require.True(t, ok)
	assert.Equal(t, 2.0, col.Values[0])
	assert.Equal(t, 4.0, col.Values[2])
	assert.Equal(t, 5, ds.Len(), "source dataset untouched")
}

func TestReslice_KeepsKnownInterval(t *testing.T) {
	ds := sampleDataset()
	s, err := Reslice(ds, 7*time.Minute, ds.Timestamps[0], ds.Timestamps[1])
	require.NoError(t, err)
	assert.Equal(t, 7*time.Minute, s.Interval)
}

func TestReslice_Errors(t *testing.T) {
	ds := sampleDataset()
	tests := []struct {
		name       string
		interval   time.Duration
		start, end time.Time
	}{
		{"start equals end", 2 * time.Minute, ds.Timestamps[1], ds.Timestamps[1]},
		{"start after end", 2 * time.Minute, ds.Timestamps[3], ds.Timestamps[1]},
		{"empty range", 2 * time.Minute, date(2025, 1, 1, 0, 0, 0), date(2025, 1, 2, 0, 0, 0)},
		{"single row cannot yield an interval", 0, date(2024, 6, 1, 12, 3, 0), date(2024, 6, 1, 12, 5, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reslice(ds, tt.interval, tt.start, tt.end)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}
