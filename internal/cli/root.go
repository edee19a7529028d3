// Package cli implements the fdvconvert command tree.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/fdv-converter/internal/config"
	"github.com/couchcryptid/fdv-converter/internal/observability"
)

const version = "0.1.0"

// app carries what every subcommand needs once flags and environment are resolved.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	out        io.Writer
	errOut     io.Writer
	newMetrics func() *observability.Metrics

	logLevel  string
	logFormat string
	keywords  string
}

// NewRootCommand builds the fdvconvert command. Results go to out, logs to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	return newRootCommand(&app{out: out, errOut: errOut, newMetrics: observability.NewMetrics})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "fdvconvert",
		Short:   "Convert sewer monitor logger exports to FDV",
		Version: version,
		Long: `Convert flow, depth and rainfall logger exports (CSV or XLSX) into the
fixed-width FDV format used by hydraulic modelling packages.

Settings are read from the environment (and .env) first; flags override them.`,
		Example: `  # Show what was detected in a logger export
  $ fdvconvert inspect SiteA1.csv

  # Convert a flow monitor in a 300 mm circular pipe
  $ fdvconvert flow SiteA1.csv --shape Circular --size 300

  # Convert a rain gauge
  $ fdvconvert rainfall RG7.xlsx

  # Convert a batch described in a job file and zip the results
  $ fdvconvert batch jobs.json --output-dir out

  # Solve the side radius of an egg section
  $ fdvconvert throat --width 1.0 --height 1.5 --form 2`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: json or text (env LOG_FORMAT)")
	pf.StringVar(&a.keywords, "timestamp-keywords", "", "comma separated header keywords for the timestamp column (env FDV_TIMESTAMP_KEYWORDS)")

	root.AddCommand(
		newInspectCommand(a),
		newFlowCommand(a),
		newRainfallCommand(a),
		newBatchCommand(a),
		newThroatCommand(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if flags.Changed("timestamp-keywords") {
		cfg.TimestampKeywords = config.ParseList(a.keywords)
	}
	a.cfg = cfg
	a.logger = observability.NewLogger(a.errOut, cfg.LogLevel, cfg.LogFormat)
	return nil
}
