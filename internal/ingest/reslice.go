package ingest

import (
	"fmt"
	"time"
)

// Slice is a dataset narrowed to a caller-chosen time range.
type Slice struct {
	Dataset  *Dataset
	Start    time.Time
	End      time.Time
	Interval time.Duration
	Rows     int
}

// Reslice keeps the rows of ds stamped within [start, end]. The interval is
// carried over unless it is zero, in which case it is recomputed from the
// retained rows. Start and End report the first and last retained timestamps.
func Reslice(ds *Dataset, interval time.Duration, start, end time.Time) (*Slice, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start %s must be before end %s", ErrParse,
			start.Format(time.DateTime), end.Format(time.DateTime))
	}

	out := ds.filter(func(i int) bool {
		t := ds.Timestamps[i]
		return !t.Before(start) && !t.After(end)
	})
	if out.Len() == 0 {
		return nil, fmt.Errorf("%w: no data between %s and %s", ErrParse,
			start.Format(time.DateTime), end.Format(time.DateTime))
	}

	if interval == 0 {
		var err error
		if interval, err = modeInterval(out.Timestamps); err != nil {
			return nil, err
		}
	}

	return &Slice{
		Dataset:  out,
		Start:    out.Timestamps[0],
		End:      out.Timestamps[out.Len()-1],
		Interval: interval,
		Rows:     out.Len(),
	}, nil
}
