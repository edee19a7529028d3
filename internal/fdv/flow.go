package fdv

import (
	"bufio"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/fdv-converter/internal/hydraulics"
	"github.com/couchcryptid/fdv-converter/internal/ingest"
)

// FlowParams describes one flow FDV file.
type FlowParams struct {
	Path           string
	SiteName       string
	DepthColumn    string
	VelocityColumn string
	Start          time.Time
	End            time.Time
	Interval       time.Duration
	Calculator     hydraulics.Calculator
	// PipeConstant is the HEIGHT constant in metres, or -1 when unknown.
	PipeConstant float64
}

// FlowStats reports what an encode saw.
type FlowStats struct {
	Samples       int
	DepthNulls    int
	VelocityNulls int
}

// Encoder writes FDV files and logs column substitutions and null counts.
type Encoder struct {
	logger *slog.Logger
}

// NewEncoder creates an Encoder.
func NewEncoder(logger *slog.Logger) *Encoder {
	return &Encoder{logger: logger}
}

func flowHeader(site string, pipeConstant float64) []string {
	return []string{
		"**DATA_FORMAT:           1,ASCII",
		"**IDENTIFIER:            1," + identifier(site),
		"**FIELD:                 3,FLOW,DEPTH,VELOCITY",
		"**UNITS:                 3,L/S,MM,M/S",
		"**FORMAT:                3,2I5,F5,[5]",
		"**RECORD_LENGTH:         I2,75",
		"**CONSTANTS:             6,HEIGHT,MIN_VEL,MANHOLE_NO,",
		"*+START,END,INTERVAL",
		"**C_UNITS:               6,MM,M/S,,GMT,GMT,MIN",
		"**C_FORMAT:              10,I5,1X,F5,1X,A20/D10,1X,D10,1X,I2",
		"*CSTART",
		fmt.Sprintf("%7.3f UNKNOWN", pipeConstant),
	}
}

// EncodeFlow writes ds as a flow/depth/velocity FDV file at p.Path.
//
// A missing depth or velocity column is written as zeros. Nulls are counted
// before they are zero-filled. Depth columns whose name carries "mm" (and not
// "level") are scaled to metres before flow is derived. When either depth or
// velocity is zero the flow is zero and the calculator is not consulted.
func (e *Encoder) EncodeFlow(ds *ingest.Dataset, p FlowParams) (FlowStats, error) {
	if err := validateCommon(ds, p.Path, p.Start, p.End, p.Interval); err != nil {
		return FlowStats{}, err
	}
	if p.Calculator == nil {
		return FlowStats{}, fmt.Errorf("%w: flow encoder needs a calculator", ErrInvalidParameter)
	}

	depth, depthNulls := e.channel(ds, p.DepthColumn, "depth", p.Path)
	velocity, velocityNulls := e.channel(ds, p.VelocityColumn, "velocity", p.Path)
	if strings.Contains(p.DepthColumn, "mm") && !strings.Contains(strings.ToLower(p.DepthColumn), "level") {
		for i := range depth {
			depth[i] /= 1000
		}
	}

	stats := FlowStats{Samples: ds.Len(), DepthNulls: depthNulls, VelocityNulls: velocityNulls}
	err := writeFileAtomic(p.Path, func(w *bufio.Writer) error {
		writeFlow(w, p, depth, velocity)
		return nil
	})
	if err != nil {
		return FlowStats{}, fmt.Errorf("encode flow: %w", err)
	}

	e.logger.Info("flow fdv written",
		"path", p.Path,
		"samples", stats.Samples,
		"depth_nulls", stats.DepthNulls,
		"velocity_nulls", stats.VelocityNulls,
	)
	return stats, nil
}

func writeFlow(w *bufio.Writer, p FlowParams, depth, velocity []float64) {
	writeLines(w, flowHeader(p.SiteName, p.PipeConstant))
	writeRange(w, p.Start, p.End, p.Interval)

	rw := &recordWriter{w: w}
	for i := range depth {
		d, v := depth[i], velocity[i]
		flow := 0.0
		if d != 0 && v != 0 {
			flow = p.Calculator.Flow(d, v)
		}
		fmt.Fprintf(w, "%5.0f%5.0f%5.2f", flow, math.Round(d*1000), v)
		rw.endSample()
	}
	rw.finish()
}

// channel copies a column with nulls zero-filled and returns the null count.
// A missing column comes back as zeros with no nulls.
func (e *Encoder) channel(ds *ingest.Dataset, name, role, path string) ([]float64, int) {
	values := make([]float64, ds.Len())
	col, ok := ds.Column(name)
	if !ok {
		e.logger.Warn("column not found, writing zeros",
			"path", path, "role", role, "column", name)
		return values, 0
	}
	nulls := 0
	for i, v := range col.Values {
		if math.IsNaN(v) {
			nulls++
			continue
		}
		values[i] = v
	}
	return values, nulls
}

func validateCommon(ds *ingest.Dataset, path string, start, end time.Time, interval time.Duration) error {
	switch {
	case ds == nil || ds.Len() == 0:
		return fmt.Errorf("%w: dataset is empty", ErrInvalidParameter)
	case path == "":
		return fmt.Errorf("%w: output path is required", ErrInvalidParameter)
	case start.IsZero() || end.IsZero():
		return fmt.Errorf("%w: start and end are required", ErrInvalidParameter)
	case end.Before(start):
		return fmt.Errorf("%w: end %s precedes start %s", ErrInvalidParameter,
			end.Format(time.DateTime), start.Format(time.DateTime))
	case interval < time.Minute:
		return fmt.Errorf("%w: interval %s is below one minute", ErrInvalidParameter, interval)
	case interval%time.Minute != 0:
		return fmt.Errorf("%w: interval %s is not a whole number of minutes", ErrInvalidParameter, interval)
	}
	return nil
}
