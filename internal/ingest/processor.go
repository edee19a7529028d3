package ingest

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/fdv-converter/internal/domain"
)

// Result is a fully ingested logger file.
type Result struct {
	Path           string
	Dataset        *Dataset
	Start          time.Time
	End            time.Time
	Interval       time.Duration
	Gaps           int
	Layout         string
	Classification domain.Classification
	Identity       domain.Identity
}

// Processor turns raw logger exports into regularized datasets. A Processor
// holds no per-file state, so one value may serve many files, but batch jobs
// each build their own.
type Processor struct {
	keywords []string
	logger   *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithTimestampKeywords overrides the header keywords used to find the
// timestamp column. Keywords are compared in lower case.
func WithTimestampKeywords(keywords []string) Option {
	return func(p *Processor) {
		if len(keywords) == 0 {
			return
		}
		p.keywords = make([]string, len(keywords))
		for i, kw := range keywords {
			p.keywords[i] = strings.ToLower(strings.TrimSpace(kw))
		}
	}
}

// NewProcessor creates a Processor that reports diagnostics through logger.
func NewProcessor(logger *slog.Logger, opts ...Option) *Processor {
	p := &Processor{
		keywords: DefaultTimestampKeywords(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process reads the file at path, rebuilds it on an even time grid and infers
// the monitor identity. Nothing is returned on failure.
func (p *Processor) Process(path string) (*Result, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	tsCol, err := findTimestampColumn(t.headers, p.keywords)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", path, err)
	}
	if t.sourceExt == ".xlsx" {
		convertSerialTimestamps(t, tsCol)
	}

	layout, err := detectLayout(t, tsCol)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", path, err)
	}
	ts, invalid := parseTimestamps(t, tsCol, layout)
	if invalid > 0 {
		p.logger.Warn("dropping rows with unparsable timestamps",
			"file", path, "column", t.headers[tsCol], "rows", invalid)
	}

	g, err := regularize(ts)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", path, err)
	}
	ds := materialize(t, tsCol, g)

	cls := domain.ClassifyColumns(t.headers, tsCol)
	id := domain.InferIdentity(path, cls)

	p.logger.Info("file ingested",
		"file", path,
		"rows", ds.Len(),
		"gaps_filled", g.gaps,
		"interval", g.interval,
		"layout", layout,
		"site_id", id.SiteID,
		"monitor_type", id.MonitorType,
	)

	return &Result{
		Path:           path,
		Dataset:        ds,
		Start:          g.start,
		End:            g.end,
		Interval:       g.interval,
		Gaps:           g.gaps,
		Layout:         layout,
		Classification: cls,
		Identity:       id,
	}, nil
}
