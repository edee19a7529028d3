package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/couchcryptid/fdv-converter/internal/domain"
	"github.com/couchcryptid/fdv-converter/internal/fdv"
	"github.com/couchcryptid/fdv-converter/internal/hydraulics"
	"github.com/couchcryptid/fdv-converter/internal/ingest"
	"github.com/couchcryptid/fdv-converter/internal/observability"
)

var (
	// ErrUnsupportedMonitor reports a file whose monitor type has no FDV encoding.
	ErrUnsupportedMonitor = errors.New("unsupported monitor type")
	// ErrMissingChannel reports a file without the column its monitor type needs.
	ErrMissingChannel = errors.New("missing channel")
	// ErrDuplicateOutput reports two jobs resolving to the same output file.
	ErrDuplicateOutput = errors.New("duplicate output name")
)

// ClaimFunc reserves an output file name for the calling job. The returned
// release func gives the name back and must be called if the job then fails.
type ClaimFunc func(name string) (release func(), err error)

// FileConverter implements Converter by ingesting a logger file and encoding it
// as flow or rainfall FDV depending on the detected monitor type.
type FileConverter struct {
	keywords []string
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewConverter creates a FileConverter. Nil keywords keep the default
// timestamp header keywords.
func NewConverter(keywords []string, logger *slog.Logger, metrics *observability.Metrics) *FileConverter {
	return &FileConverter{
		keywords: keywords,
		logger:   logger,
		metrics:  metrics,
	}
}

// Convert runs one job and returns its event with everything known so far
// filled in, even on failure.
func (c *FileConverter) Convert(ctx context.Context, job Job, outDir string, claim ClaimFunc) (domain.JobEvent, error) {
	ev := domain.JobEvent{Input: job.FilePath}
	if err := ctx.Err(); err != nil {
		return ev, err
	}

	logger := c.logger.With("input", job.FilePath)
	var opts []ingest.Option
	if len(c.keywords) > 0 {
		opts = append(opts, ingest.WithTimestampKeywords(c.keywords))
	}
	res, err := ingest.NewProcessor(logger, opts...).Process(job.FilePath)
	if err != nil {
		c.metrics.IngestErrors.Inc()
		return ev, fmt.Errorf("ingest: %w", err)
	}
	c.metrics.FilesIngested.Inc()
	c.metrics.GapsFilled.Add(float64(res.Gaps))

	id := res.Identity
	if job.SiteName != "" {
		id.SiteName = job.SiteName
	}
	ev.SiteID = id.SiteID
	ev.SiteName = id.SiteName
	ev.MonitorType = id.MonitorType
	ev.Start = res.Start
	ev.End = res.End
	ev.Interval = res.Interval
	ev.Samples = res.Dataset.Len()
	ev.Gaps = res.Gaps

	name, err := outputName(id)
	if err != nil {
		return ev, err
	}
	release, err := claim(name)
	if err != nil {
		return ev, err
	}
	out := filepath.Join(outDir, name)

	switch id.MonitorType {
	case domain.MonitorFlow, domain.MonitorDepth:
		err = c.encodeFlow(res, job, id, out, &ev, logger)
	case domain.MonitorRainfall:
		err = c.encodeRainfall(res, id, out, &ev, logger)
	}
	if err != nil {
		release()
		return ev, err
	}

	digest, size, err := digestFile(out)
	if err != nil {
		release()
		return ev, err
	}
	ev.Output = out
	ev.Digest = digest
	c.metrics.OutputBytes.Add(float64(size))
	return ev, nil
}

func (c *FileConverter) encodeFlow(res *ingest.Result, job Job, id domain.Identity, out string, ev *domain.JobEvent, logger *slog.Logger) error {
	if strings.TrimSpace(job.PipeShape) == "" || strings.TrimSpace(job.PipeSize) == "" {
		return fmt.Errorf("%w: %s monitor needs pipeshape and pipesize", hydraulics.ErrInvalidParameter, id.MonitorType)
	}
	shape, err := hydraulics.ParseShape(job.PipeShape)
	if err != nil {
		return err
	}
	calc, err := hydraulics.New(shape, job.PipeSize)
	if err != nil {
		return fmt.Errorf("pipe %s %q: %w", shape, job.PipeSize, err)
	}
	depth, ok := res.Classification.Primary(domain.RoleDepth)
	if !ok {
		return fmt.Errorf("%w: no depth column", ErrMissingChannel)
	}
	velocity, _ := res.Classification.Primary(domain.RoleVelocity)

	stats, err := fdv.NewEncoder(logger).EncodeFlow(res.Dataset, fdv.FlowParams{
		Path:           out,
		SiteName:       id.SiteName,
		DepthColumn:    depth.Name,
		VelocityColumn: velocity.Name,
		Start:          res.Start,
		End:            res.End,
		Interval:       res.Interval,
		Calculator:     calc,
		PipeConstant:   hydraulics.HeaderConstant(shape, job.PipeSize),
	})
	if err != nil {
		return err
	}
	ev.Nulls.Depth = stats.DepthNulls
	ev.Nulls.Velocity = stats.VelocityNulls
	c.metrics.NullReadings.WithLabelValues("depth").Add(float64(stats.DepthNulls))
	c.metrics.NullReadings.WithLabelValues("velocity").Add(float64(stats.VelocityNulls))
	return nil
}

func (c *FileConverter) encodeRainfall(res *ingest.Result, id domain.Identity, out string, ev *domain.JobEvent, logger *slog.Logger) error {
	col, ok := res.Classification.Primary(domain.RoleRainfall)
	if !ok {
		return fmt.Errorf("%w: no rainfall column", ErrMissingChannel)
	}
	stats, err := fdv.NewEncoder(logger).EncodeRainfall(res.Dataset, fdv.RainfallParams{
		Path:           out,
		SiteName:       id.SiteName,
		RainfallColumn: col.Name,
		Start:          res.Start,
		End:            res.End,
		Interval:       res.Interval,
	})
	if err != nil {
		return err
	}
	ev.Nulls.Rainfall = stats.Nulls
	c.metrics.NullReadings.WithLabelValues("rainfall").Add(float64(stats.Nulls))
	return nil
}

// outputName is <site><ext>. Site names are user supplied, so anything that
// would escape the output directory is refused.
func outputName(id domain.Identity) (string, error) {
	ext := id.MonitorType.Extension()
	if ext == "" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMonitor, id.MonitorType)
	}
	site := strings.TrimSpace(id.SiteName)
	if site == "" || site == "." || site == ".." || strings.ContainsAny(site, `/\`) {
		return "", fmt.Errorf("%w: site name %q is not a valid file name", ErrInvalidJob, id.SiteName)
	}
	return site + ext, nil
}

func digestFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("digest output: %w", err)
	}
	defer f.Close()

	h := xxhash.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("digest output: %w", err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), n, nil
}
