package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/fdv-converter/internal/domain"
	"github.com/couchcryptid/fdv-converter/internal/fdv"
	"github.com/couchcryptid/fdv-converter/internal/hydraulics"
	"github.com/couchcryptid/fdv-converter/internal/ingest"
)

var errMissingColumn = errors.New("no column for channel")

// windowFlags narrows a conversion to part of the file.
type windowFlags struct {
	start    string
	end      string
	interval time.Duration
}

func (w *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.start, "start", "", "first timestamp to keep, e.g. \"2024-03-01 10:00\"")
	cmd.Flags().StringVar(&w.end, "end", "", "last timestamp to keep")
	cmd.Flags().DurationVar(&w.interval, "interval", 0, "sample interval to record (default: detected)")
}

// window is the rows and range to encode.
type window struct {
	dataset  *ingest.Dataset
	start    time.Time
	end      time.Time
	interval time.Duration
}

// apply narrows res to the flagged range. Without --start or --end the whole
// regularized file is used.
func (w *windowFlags) apply(res *ingest.Result) (window, error) {
	out := window{dataset: res.Dataset, start: res.Start, end: res.End, interval: res.Interval}
	if w.start == "" && w.end == "" {
		if w.interval > 0 {
			out.interval = w.interval
		}
		return out, nil
	}

	start, end := res.Start, res.End
	var err error
	if w.start != "" {
		if start, err = ingest.ParseBoundary(w.start); err != nil {
			return window{}, err
		}
	}
	if w.end != "" {
		if end, err = ingest.ParseBoundary(w.end); err != nil {
			return window{}, err
		}
	}
	slice, err := ingest.Reslice(res.Dataset, w.interval, start, end)
	if err != nil {
		return window{}, err
	}
	return window{dataset: slice.Dataset, start: slice.Start, end: slice.End, interval: slice.Interval}, nil
}

func (a *app) process(path string) (*ingest.Result, error) {
	var opts []ingest.Option
	if len(a.cfg.TimestampKeywords) > 0 {
		opts = append(opts, ingest.WithTimestampKeywords(a.cfg.TimestampKeywords))
	}
	return ingest.NewProcessor(a.logger, opts...).Process(path)
}

// outputPath is --out when given, otherwise <output dir>/<site><ext>.
func (a *app) outputPath(out, site string, mt domain.MonitorType) (string, error) {
	if out != "" {
		return out, nil
	}
	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return filepath.Join(a.cfg.OutputDir, site+mt.Extension()), nil
}

// column picks the named column, falling back to the classified one.
func column(res *ingest.Result, name string, role domain.Role) (string, error) {
	if name != "" {
		if _, ok := res.Dataset.Column(name); !ok {
			return "", fmt.Errorf("%w: %q not in %s", errMissingColumn, name, res.Path)
		}
		return name, nil
	}
	if m, ok := res.Classification.Primary(role); ok {
		return m.Name, nil
	}
	return "", nil
}

func newInspectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the detected layout, identity and channels of a logger export",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			res, err := a.process(args[0])
			if err != nil {
				return err
			}
			w := a.out
			printHeading(w, filepath.Base(res.Path))
			printField(w, "site", "%s (id %s)", res.Identity.SiteName, res.Identity.SiteID)
			printField(w, "monitor", "%s", res.Identity.MonitorType)
			printField(w, "range", "%s .. %s", res.Start.Format(time.DateTime), res.End.Format(time.DateTime))
			printField(w, "interval", "%s", res.Interval)
			printField(w, "rows", "%d (%d gaps filled)", res.Dataset.Len(), res.Gaps)
			printField(w, "layout", "%s", res.Layout)
			printHeading(w, "channels")
			for _, role := range domain.Roles {
				for _, m := range res.Classification[role] {
					nulls := 0
					if s, ok := res.Dataset.Column(m.Name); ok {
						nulls = s.NullCount()
					}
					printField(w, string(role), "%s (nulls %d)", m.Name, nulls)
				}
			}
			return nil
		},
	}
}

func newFlowCommand(a *app) *cobra.Command {
	var (
		shape, size, site, out string
		depthCol, velocityCol  string
		win                    windowFlags
	)
	cmd := &cobra.Command{
		Use:   "flow <file>",
		Short: "Encode a flow or depth monitor export as an FDV file",
		Example: `  $ fdvconvert flow SiteA1.csv --shape Circular --size 300
  $ fdvconvert flow DM4.xlsx --shape "Egg Type 2" --size 1.2 --start "2024-03-01 00:00" --end "2024-03-08 00:00"`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			pipeShape, err := hydraulics.ParseShape(shape)
			if err != nil {
				return err
			}
			calc, err := hydraulics.New(pipeShape, size)
			if err != nil {
				return err
			}
			res, err := a.process(args[0])
			if err != nil {
				return err
			}
			depth, err := column(res, depthCol, domain.RoleDepth)
			if err != nil {
				return err
			}
			velocity, err := column(res, velocityCol, domain.RoleVelocity)
			if err != nil {
				return err
			}
			span, err := win.apply(res)
			if err != nil {
				return err
			}
			if site == "" {
				site = res.Identity.SiteName
			}
			path, err := a.outputPath(out, site, domain.MonitorFlow)
			if err != nil {
				return err
			}

			stats, err := fdv.NewEncoder(a.logger).EncodeFlow(span.dataset, fdv.FlowParams{
				Path:           path,
				SiteName:       site,
				DepthColumn:    depth,
				VelocityColumn: velocity,
				Start:          span.start,
				End:            span.end,
				Interval:       span.interval,
				Calculator:     calc,
				PipeConstant:   hydraulics.HeaderConstant(pipeShape, size),
			})
			if err != nil {
				return err
			}
			printOK(a.out, "%s: %d samples (depth nulls %d, velocity nulls %d)",
				path, stats.Samples, stats.DepthNulls, stats.VelocityNulls)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&shape, "shape", "", "pipe shape: Circular, Rectangular, \"Egg Type 1\", \"Egg Type 2\", \"Egg Type 2a\", \"Two Circles and a Rectangle\"")
	f.StringVar(&size, "size", "", "pipe size: mm for circular and rectangular, comma separated metres otherwise")
	f.StringVar(&site, "site", "", "site name for the header and file name (default: detected)")
	f.StringVarP(&out, "out", "o", "", "output file (default: <output-dir>/<site>.fdv)")
	f.StringVar(&depthCol, "depth-column", "", "depth column header (default: detected)")
	f.StringVar(&velocityCol, "velocity-column", "", "velocity column header (default: detected)")
	win.register(cmd)
	_ = cmd.MarkFlagRequired("shape")
	_ = cmd.MarkFlagRequired("size")
	return cmd
}

func newRainfallCommand(a *app) *cobra.Command {
	var (
		site, out, rainCol string
		win                windowFlags
	)
	cmd := &cobra.Command{
		Use:   "rainfall <file>",
		Short: "Encode a rain gauge export as a rainfall FDV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			res, err := a.process(args[0])
			if err != nil {
				return err
			}
			rain, err := column(res, rainCol, domain.RoleRainfall)
			if err != nil {
				return err
			}
			if rain == "" {
				return fmt.Errorf("%w: rainfall in %s", errMissingColumn, res.Path)
			}
			span, err := win.apply(res)
			if err != nil {
				return err
			}
			if site == "" {
				site = res.Identity.SiteName
			}
			path, err := a.outputPath(out, site, domain.MonitorRainfall)
			if err != nil {
				return err
			}

			stats, err := fdv.NewEncoder(a.logger).EncodeRainfall(span.dataset, fdv.RainfallParams{
				Path:           path,
				SiteName:       site,
				RainfallColumn: rain,
				Start:          span.start,
				End:            span.end,
				Interval:       span.interval,
			})
			if err != nil {
				return err
			}
			printOK(a.out, "%s: %d samples (nulls %d)", path, stats.Samples, stats.Nulls)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&site, "site", "", "site name for the header and file name (default: detected)")
	f.StringVarP(&out, "out", "o", "", "output file (default: <output-dir>/<site>.r)")
	f.StringVar(&rainCol, "rainfall-column", "", "rainfall column header (default: detected)")
	win.register(cmd)
	return cmd
}
