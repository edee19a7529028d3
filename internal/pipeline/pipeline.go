package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/fdv-converter/internal/domain"
	"github.com/couchcryptid/fdv-converter/internal/observability"
)

var (
	// ErrNoJobs reports an empty batch.
	ErrNoJobs = errors.New("no jobs")
	// ErrBatchFailed reports a lenient run in which no job succeeded.
	ErrBatchFailed = errors.New("batch failed")
)

// Converter turns one job into an FDV file inside outDir.
type Converter interface {
	Convert(ctx context.Context, job Job, outDir string, claim ClaimFunc) (domain.JobEvent, error)
}

// EventSink receives the per-job events of a finished run.
type EventSink interface {
	Publish(ctx context.Context, events []domain.JobEvent) error
}

// Options tunes a batch run.
type Options struct {
	// Workers bounds concurrent jobs. Values below 1 mean one.
	Workers int
	// FailFast cancels pending jobs on the first failure and skips the archive.
	FailFast bool
}

// Report summarizes a batch run. Jobs is in descriptor order.
type Report struct {
	RunID    string
	Archive  string
	Jobs     []domain.JobEvent
	Duration time.Duration
}

// Succeeded returns the number of jobs that produced an output.
func (r *Report) Succeeded() int {
	n := 0
	for _, j := range r.Jobs {
		if j.Status == domain.JobSucceeded {
			n++
		}
	}
	return n
}

// Failed returns the number of jobs that did not produce an output.
func (r *Report) Failed() int {
	return len(r.Jobs) - r.Succeeded()
}

// Pipeline runs batches of conversion jobs.
type Pipeline struct {
	converter Converter
	sink      EventSink
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options
	ready     atomic.Bool
	last      atomic.Pointer[Report]
}

// New creates a Pipeline. sink may be nil.
func New(c Converter, sink EventSink, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{
		converter: c,
		sink:      sink,
		logger:    logger,
		metrics:   metrics,
		opts:      opts,
	}
}

// CheckReadiness returns nil once a batch has completed with an archive.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a batch yet")
	}
	return nil
}

// LastReport returns the report of the most recent run, or nil.
func (p *Pipeline) LastReport() *Report {
	return p.last.Load()
}

// Run converts every job into outDir and zips the outputs into
// outDir/processed_files.zip. An archive from an earlier run is removed first.
//
// With FailFast the first failure cancels jobs that have not started, no
// archive is written and the failure is returned. Otherwise failed jobs are
// left out of the archive and only reported, and Run fails only if nothing
// succeeded. The returned Report is non-nil whenever jobs were attempted.
func (p *Pipeline) Run(ctx context.Context, jobs []Job, outDir string) (*Report, error) {
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	archive := filepath.Join(outDir, ArchiveName)
	if err := removeStaleArchive(archive); err != nil {
		return nil, err
	}

	start := domain.Now()
	report := &Report{
		RunID: uuid.NewString(),
		Jobs:  make([]domain.JobEvent, len(jobs)),
	}
	logger := p.logger.With("run_id", report.RunID)
	logger.Info("batch started", "jobs", len(jobs), "workers", p.opts.Workers, "fail_fast", p.opts.FailFast)
	p.metrics.BatchRunning.Set(1)
	defer p.metrics.BatchRunning.Set(0)

	g, gctx := new(errgroup.Group), ctx
	if p.opts.FailFast {
		g, gctx = errgroup.WithContext(ctx)
	}
	g.SetLimit(p.opts.Workers)

	registry := newOutputRegistry()
	for i, job := range jobs {
		g.Go(func() error {
			ev, err := p.runJob(gctx, job, outDir, registry)
			ev.RunID = report.RunID
			report.Jobs[i] = ev
			if err != nil && p.opts.FailFast && ev.Status == domain.JobFailed {
				return fmt.Errorf("job %d (%s): %w", i, job.FilePath, err)
			}
			return nil
		})
	}
	runErr := g.Wait()
	if runErr == nil {
		runErr = ctx.Err()
	}

	if runErr == nil {
		outputs := make([]string, 0, len(jobs))
		for _, ev := range report.Jobs {
			if ev.Status == domain.JobSucceeded {
				outputs = append(outputs, ev.Output)
			}
		}
		switch {
		case len(outputs) == 0:
			runErr = fmt.Errorf("%w: all %d jobs failed", ErrBatchFailed, len(jobs))
		default:
			if err := writeArchive(archive, outputs); err != nil {
				runErr = err
			} else {
				report.Archive = archive
			}
		}
	}
	report.Duration = domain.Since(start)

	p.last.Store(report)
	p.publish(ctx, report, logger)

	if runErr != nil {
		logger.Error("batch failed", "error", runErr,
			"succeeded", report.Succeeded(), "failed", report.Failed())
		return report, runErr
	}
	p.ready.Store(true)
	logger.Info("batch finished",
		"archive", report.Archive,
		"succeeded", report.Succeeded(),
		"failed", report.Failed(),
		"duration", report.Duration,
	)
	return report, nil
}

// runJob converts one job and fills in status and timing. A job whose context
// is already done when it is picked up is reported as canceled.
func (p *Pipeline) runJob(ctx context.Context, job Job, outDir string, registry *outputRegistry) (domain.JobEvent, error) {
	if err := ctx.Err(); err != nil {
		p.metrics.JobsTotal.WithLabelValues(string(domain.JobCanceled)).Inc()
		return domain.JobEvent{
			Input:       job.FilePath,
			Status:      domain.JobCanceled,
			Error:       err.Error(),
			ProcessedAt: domain.Now(),
		}, err
	}

	started := domain.Now()
	ev, err := p.converter.Convert(ctx, job, outDir, registry.claimFor(job.FilePath))
	ev.Input = job.FilePath
	ev.Duration = domain.Since(started)
	ev.ProcessedAt = domain.Now()
	p.metrics.JobDuration.Observe(ev.Duration.Seconds())

	if err != nil {
		ev.Status = domain.JobFailed
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			ev.Status = domain.JobCanceled
		}
		ev.Error = err.Error()
		p.metrics.JobsTotal.WithLabelValues(string(ev.Status)).Inc()
		p.logger.Warn("job failed", "input", job.FilePath, "error", err)
		return ev, err
	}
	ev.Status = domain.JobSucceeded
	p.metrics.JobsTotal.WithLabelValues(string(ev.Status)).Inc()
	p.logger.Info("job finished",
		"input", job.FilePath,
		"output", ev.Output,
		"monitor_type", ev.MonitorType,
		"samples", ev.Samples,
		"gaps", ev.Gaps,
		"nulls", ev.Nulls.Total(),
	)
	return ev, nil
}

// publish hands the run's events to the sink. Sink failures are logged and do
// not change the run outcome.
func (p *Pipeline) publish(ctx context.Context, report *Report, logger *slog.Logger) {
	if p.sink == nil {
		return
	}
	if err := p.sink.Publish(context.WithoutCancel(ctx), report.Jobs); err != nil {
		logger.Warn("publish job events failed", "error", err, "events", len(report.Jobs))
	}
}
