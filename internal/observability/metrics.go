package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fdv"

// Metrics holds the Prometheus counters, histograms, and gauges for conversion runs.
type Metrics struct {
	FilesIngested prometheus.Counter
	IngestErrors  prometheus.Counter
	GapsFilled    prometheus.Counter
	NullReadings  *prometheus.CounterVec // labels: channel={depth,velocity,rainfall}

	JobsTotal    *prometheus.CounterVec // labels: outcome={succeeded,failed,canceled}
	JobDuration  prometheus.Histogram
	OutputBytes  prometheus.Counter
	BatchRunning prometheus.Gauge
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		FilesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_ingested_total",
			Help:      help("Logger files read and regularized."),
		}),
		IngestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_errors_total",
			Help:      help("Logger files that failed ingestion."),
		}),
		GapsFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gaps_filled_total",
			Help:      help("Grid rows synthesized for missing timestamps."),
		}),
		NullReadings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "null_readings_total",
			Help:      help("Missing readings zero-filled by the encoders, by channel."),
		}, []string{"channel"}),
		JobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      help("Conversion jobs by outcome."),
		}, []string{"outcome"}),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      help("Duration of one ingest-and-encode job."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		OutputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_bytes_total",
			Help:      help("Bytes of FDV output written."),
		}),
		BatchRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_running",
			Help:      help("1 while a batch run is in progress."),
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FilesIngested,
		m.IngestErrors,
		m.GapsFilled,
		m.NullReadings,
		m.JobsTotal,
		m.JobDuration,
		m.OutputBytes,
		m.BatchRunning,
	}
}

// NewMetrics creates and registers all conversion metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics(false)
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
