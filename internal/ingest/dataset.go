package ingest

import (
	"math"
	"time"
)

// Series is one numeric channel. Index is the column's position in the source
// header row. Missing readings are NaN.
type Series struct {
	Name   string
	Index  int
	Values []float64
}

// NullCount reports how many readings are NaN.
func (s *Series) NullCount() int {
	n := 0
	for _, v := range s.Values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Dataset is a regularized time series table. Every series has one value per
// timestamp.
type Dataset struct {
	TimestampColumn string
	Timestamps      []time.Time
	Series          []Series
}

// Len reports the number of rows.
func (d *Dataset) Len() int {
	return len(d.Timestamps)
}

// Column looks a series up by header name.
func (d *Dataset) Column(name string) (*Series, bool) {
	for i := range d.Series {
		if d.Series[i].Name == name {
			return &d.Series[i], true
		}
	}
	return nil, false
}

// filter returns a copy holding only the rows for which keep is true.
func (d *Dataset) filter(keep func(i int) bool) *Dataset {
	out := &Dataset{
		TimestampColumn: d.TimestampColumn,
		Series:          make([]Series, len(d.Series)),
	}
	for i := range d.Series {
		out.Series[i] = Series{Name: d.Series[i].Name, Index: d.Series[i].Index}
	}
	for r, ts := range d.Timestamps {
		if !keep(r) {
			continue
		}
		out.Timestamps = append(out.Timestamps, ts)
		for i := range d.Series {
			out.Series[i].Values = append(out.Series[i].Values, d.Series[i].Values[r])
		}
	}
	return out
}
