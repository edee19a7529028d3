package fdv

import (
	"bufio"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/fdv-converter/internal/ingest"
)

const (
	// rainThreshold separates a tip from an empty interval.
	rainThreshold = 1e-5
	// rainLookback bounds how many preceding empty intervals share a tip.
	rainLookback = 4
	// rainSlotCap is the most a tip may spread over the preceding empty slots.
	rainSlotCap = 6.0
	// rainRetain is how many smoothed samples stay buffered for later tips.
	rainRetain = 10
)

// RainfallParams describes one rainfall FDV file.
type RainfallParams struct {
	Path           string
	SiteName       string
	RainfallColumn string
	Start          time.Time
	End            time.Time
	Interval       time.Duration
}

// RainfallStats reports what an encode saw.
type RainfallStats struct {
	Samples int
	Nulls   int
}

var antecedentConstants = func() []string {
	lines := []string{"**CONSTANTS:             35,LOCATION,0_ANT_RAIN,1_ANT_RAIN,2_ANT_RAIN,"}
	for first := 3; first <= 27; first += 4 {
		lines = append(lines, fmt.Sprintf("*+                       %d_ANT_RAIN,%d_ANT_RAIN,%d_ANT_RAIN,%d_ANT_RAIN,",
			first, first+1, first+2, first+3))
	}
	return append(lines, "*+                       START,END,INTERVAL")
}()

func rainfallHeader(site string) []string {
	lines := []string{
		"**DATA_FORMAT:           1,ASCII",
		"**IDENTIFIER:            1," + identifier(site),
		"**FIELD:                 1,INTENSITY",
		"**UNITS:                 1,MM/HR",
		"**FORMAT:                2,F15.1,[5]",
		"**RECORD_LENGTH:         I2,75",
	}
	lines = append(lines, antecedentConstants...)
	return append(lines,
		"**C_UNITS:               35, ,MM,MM,MM,MM,MM,MM,MM,MM,MM,MM,",
		"**C_UNITS:               MM,MM,MM,MM,MM,MM,MM,MM,MM,MM,MM,",
		"**C_UNITS:               MM,MM,MM,MM,MM,MM,MM,MM,MM,MM,GMT,GMT,MIN",
		"**C_FORMAT:              8,A20,F7.2/15F5.1/15F5.1/D10,2X,D10,I4",
		"*CSTART",
		"UNKNOWN              -1.0 ",
		strings.Repeat("-1.0 ", 15),
		strings.Repeat("-1.0 ", 15),
	)
}

// EncodeRainfall writes ds as a rainfall intensity FDV file at p.Path after
// spreading each bucket tip over the empty intervals before it.
func (e *Encoder) EncodeRainfall(ds *ingest.Dataset, p RainfallParams) (RainfallStats, error) {
	if err := validateCommon(ds, p.Path, p.Start, p.End, p.Interval); err != nil {
		return RainfallStats{}, err
	}
	col, ok := ds.Column(p.RainfallColumn)
	if !ok {
		return RainfallStats{}, fmt.Errorf("%w: rainfall column %q not in dataset", ErrInvalidParameter, p.RainfallColumn)
	}

	stats := RainfallStats{Samples: ds.Len(), Nulls: col.NullCount()}
	err := writeFileAtomic(p.Path, func(w *bufio.Writer) error {
		writeRainfall(w, p, col.Values)
		return nil
	})
	if err != nil {
		return RainfallStats{}, fmt.Errorf("encode rainfall: %w", err)
	}

	e.logger.Info("rainfall fdv written", "path", p.Path, "samples", stats.Samples, "nulls", stats.Nulls)
	return stats, nil
}

func writeRainfall(w *bufio.Writer, p RainfallParams, values []float64) {
	writeLines(w, rainfallHeader(p.SiteName))
	writeRange(w, p.Start, p.End, p.Interval)

	rw := &recordWriter{w: w}
	emit := func(out []float64) {
		for _, v := range out {
			fmt.Fprintf(w, "%15.1f", v)
			rw.endSample()
		}
	}
	var s smoother
	for _, v := range values {
		if math.IsNaN(v) {
			v = 0
		}
		emit(s.push(v))
	}
	emit(s.flush())
	rw.finish()
}

// smoother redistributes tipping-bucket readings. A tip that follows empty
// intervals is shared evenly across them and its own slot; a tip above the
// slot cap fills the empty slots with the cap between them and keeps the
// remainder.
type smoother struct {
	buf []float64
}

// push adds a reading and returns any samples that have left the buffer.
func (s *smoother) push(sample float64) []float64 {
	if sample > rainThreshold {
		divisor := 1.0
		count := 0
		offs := len(s.buf) - 1
		for offs >= 0 && count < rainLookback && s.buf[offs] < rainThreshold {
			divisor++
			count++
			offs--
		}
		offs++

		if count > 0 && sample > rainSlotCap {
			share := rainSlotCap / (divisor - 1)
			for i := offs; i < len(s.buf); i++ {
				s.buf[i] = share
			}
			sample -= rainSlotCap
		} else {
			sample /= divisor
			for i := offs; i < len(s.buf); i++ {
				s.buf[i] = sample
			}
		}
	}
	s.buf = append(s.buf, sample)
	if len(s.buf) >= rainRetain {
		return s.drain(rainRetain)
	}
	return nil
}

// flush returns everything still buffered.
func (s *smoother) flush() []float64 {
	return s.drain(0)
}

func (s *smoother) drain(keep int) []float64 {
	if len(s.buf) <= keep {
		return nil
	}
	n := len(s.buf) - keep
	out := make([]float64, n)
	copy(out, s.buf[:n])
	s.buf = append(s.buf[:0], s.buf[n:]...)
	return out
}
