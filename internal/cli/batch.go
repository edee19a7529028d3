package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/fdv-converter/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/fdv-converter/internal/adapter/kafka"
	"github.com/couchcryptid/fdv-converter/internal/domain"
	"github.com/couchcryptid/fdv-converter/internal/pipeline"
)

func newBatchCommand(a *app) *cobra.Command {
	var (
		outDir   string
		workers  int
		failFast bool
	)
	cmd := &cobra.Command{
		Use:   "batch <jobs.json>",
		Short: "Convert every job in a descriptor file and zip the outputs",
		Long: `Run a batch of conversions described by a JSON array of jobs:

  [{"filepath": "SiteA1.csv", "pipeshape": "Circular", "pipesize": "300"},
   {"filepath": "RG7.xlsx", "sitename": "Gauge7"}]

Outputs are written to the output directory and collected into
processed_files.zip. With --fail-fast (the default) the first failure stops
the batch and no archive is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("output-dir") {
				a.cfg.OutputDir = outDir
			}
			if cmd.Flags().Changed("workers") {
				a.cfg.Workers = workers
			}
			if cmd.Flags().Changed("fail-fast") {
				a.cfg.FailFast = failFast
			}
			return a.runBatch(cmd.Context(), args[0])
		},
	}
	f := cmd.Flags()
	f.StringVar(&outDir, "output-dir", "", "directory for FDV files and the archive (env FDV_OUTPUT_DIR)")
	f.IntVar(&workers, "workers", 0, "concurrent jobs (env FDV_WORKERS)")
	f.BoolVar(&failFast, "fail-fast", true, "stop on the first failed job (env FDV_FAIL_FAST)")
	return cmd
}

func (a *app) runBatch(ctx context.Context, jobsPath string) error {
	f, err := os.Open(jobsPath)
	if err != nil {
		return fmt.Errorf("open jobs: %w", err)
	}
	jobs, err := pipeline.LoadJobs(f)
	f.Close()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := a.newMetrics()
	conv := pipeline.NewConverter(a.cfg.TimestampKeywords, a.logger, metrics)

	var sink pipeline.EventSink
	if a.cfg.PublishEvents() {
		writer := kafkaadapter.NewWriter(a.cfg, a.logger)
		defer func() {
			if err := writer.Close(); err != nil {
				a.logger.Error("kafka writer close error", "error", err)
			}
		}()
		sink = writer
		a.logger.Info("publishing job events", "brokers", a.cfg.KafkaBrokers, "topic", a.cfg.KafkaTopic)
	}

	p := pipeline.New(conv, sink, a.logger, metrics, pipeline.Options{
		Workers:  a.cfg.Workers,
		FailFast: a.cfg.FailFast,
	})

	if a.cfg.MetricsAddr != "" {
		srv := httpadapter.NewServer(a.cfg.MetricsAddr, p, p, a.logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	report, err := p.Run(ctx, jobs, a.cfg.OutputDir)
	if report != nil {
		a.printReport(report)
	}
	return err
}

func (a *app) printReport(r *pipeline.Report) {
	w := a.out
	printHeading(w, "batch "+r.RunID)
	for _, ev := range r.Jobs {
		switch ev.Status {
		case domain.JobSucceeded:
			printOK(w, "%s -> %s", ev.Input, ev.Output)
		default:
			printFail(w, "%s: %s (%s)", ev.Input, ev.Status, ev.Error)
		}
	}
	if r.Archive != "" {
		printField(w, "archive", "%s", r.Archive)
	}
	printField(w, "jobs", "%d succeeded, %d failed in %s", r.Succeeded(), r.Failed(), r.Duration)
}
