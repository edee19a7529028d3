// Command genmock writes synthetic logger exports and a matching batch job
// file for exercising the converter end to end. Every file is run through the
// real ingest package afterwards so the printed stats match what the
// converter will see.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -days 7
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/fdv-converter/internal/ingest"
	"github.com/couchcryptid/fdv-converter/internal/pipeline"
)

var baseDate = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

const interval = 2 * time.Minute

// sample is one logger row; NaN values are written as empty cells.
type sample struct {
	at     time.Time
	values []float64
}

type mockFile struct {
	name    string
	headers []string
	job     pipeline.Job
	rows    []sample
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "directory to write mock logger files into")
	days := flag.Int("days", 7, "days of data per file")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *outDir == "" || *days < 1 {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	n := *days * int(24*time.Hour/interval)

	files := []mockFile{
		flowFile(rng, "SiteA1.csv", n),
		depthFile(rng, "DM4.csv", n),
		rainFile(rng, "RG7.xlsx", n),
	}

	jobs := make([]pipeline.Job, 0, len(files))
	for _, f := range files {
		path := filepath.Join(*outDir, f.name)
		var err error
		if filepath.Ext(path) == ".xlsx" {
			err = writeXLSX(path, f)
		} else {
			err = writeCSV(path, f)
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
		f.job.FilePath = path
		jobs = append(jobs, f.job)
		log.Printf("%s: %d rows", f.name, len(f.rows))
	}

	jobsPath := filepath.Join(*outDir, "jobs.json")
	if err := writeJSON(jobsPath, jobs); err != nil {
		return fmt.Errorf("writing jobs: %w", err)
	}
	log.Printf("wrote job file: %s", jobsPath)

	return printStats(jobs)
}

// flowFile is a circular pipe with a diurnal depth cycle, a two hour outage,
// one duplicated stamp and one unreadable stamp.
func flowFile(rng *rand.Rand, name string, n int) mockFile {
	f := mockFile{
		name:    name,
		headers: []string{"Timestamp", "100_1|Pipe|Depth|mm", "100_1|Pipe|Velocity|m/s"},
		job:     pipeline.Job{PipeShape: "Circular", PipeSize: "450"},
	}
	for i := range n {
		if i >= n/3 && i < n/3+60 {
			continue
		}
		at := baseDate.Add(time.Duration(i) * interval)
		phase := 2 * math.Pi * float64(at.Hour()*60+at.Minute()) / 1440
		depth := math.Round(120 + 60*math.Sin(phase) + rng.NormFloat64()*4)
		velocity := math.Round((0.6+0.25*math.Sin(phase)+rng.NormFloat64()*0.03)*100) / 100
		if rng.IntN(200) == 0 {
			velocity = math.NaN()
		}
		f.rows = append(f.rows, sample{at: at, values: []float64{depth, velocity}})
	}
	dup := f.rows[10]
	f.rows = append(f.rows[:11], append([]sample{dup}, f.rows[11:]...)...)
	return f
}

func depthFile(rng *rand.Rand, name string, n int) mockFile {
	f := mockFile{
		name:    name,
		headers: []string{"Date Time", "300_2|Outfall|Level|m"},
		job:     pipeline.Job{PipeShape: "Egg Type 2", PipeSize: "1.2", SiteName: "Outfall4"},
	}
	for i := range n {
		at := baseDate.Add(time.Duration(i) * interval)
		level := math.Round((0.3+0.1*math.Sin(float64(i)/90)+rng.NormFloat64()*0.01)*1000) / 1000
		f.rows = append(f.rows, sample{at: at, values: []float64{level}})
	}
	return f
}

// rainFile is a tipping bucket gauge with occasional 0.2 mm tips clustered in storms.
func rainFile(rng *rand.Rand, name string, n int) mockFile {
	f := mockFile{
		name:    name,
		headers: []string{"Timestamp", "200_1|Gauge|Rainfall|mm"},
	}
	storm := 0
	for i := range n {
		at := baseDate.Add(time.Duration(i) * interval)
		if storm == 0 && rng.IntN(400) == 0 {
			storm = 30 + rng.IntN(90)
		}
		v := 0.0
		if storm > 0 {
			storm--
			if rng.IntN(3) == 0 {
				v = 0.2
			}
		}
		f.rows = append(f.rows, sample{at: at, values: []float64{v}})
	}
	return f
}

func writeCSV(path string, f mockFile) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(f.headers); err != nil {
		return err
	}
	for i, s := range f.rows {
		stamp := s.at.Format("02/01/2006 15:04")
		if i == len(f.rows)/2 {
			stamp = "not a date"
		}
		record := []string{stamp}
		for _, v := range s.values {
			record = append(record, formatValue(v))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(path string, f mockFile) error {
	x := excelize.NewFile()
	defer x.Close()

	const sheet = "Sheet1"
	if err := x.SetSheetRow(sheet, "A1", &f.headers); err != nil {
		return err
	}
	for i, s := range f.rows {
		row := []any{s.at.Format("2006-01-02 15:04:05")}
		for _, v := range s.values {
			if math.IsNaN(v) {
				row = append(row, nil)
				continue
			}
			row = append(row, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return x.SaveAs(path)
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(jobs []pipeline.Job) error {
	proc := ingest.NewProcessor(slog.New(slog.DiscardHandler))

	fmt.Println("\n=== Stats for updating test assertions ===")
	for _, job := range jobs {
		res, err := proc.Process(job.FilePath)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", job.FilePath, err)
		}
		fmt.Printf("%s\n", filepath.Base(job.FilePath))
		fmt.Printf("  site=%s id=%s monitor=%s\n", res.Identity.SiteName, res.Identity.SiteID, res.Identity.MonitorType)
		fmt.Printf("  range=%s .. %s interval=%s\n", res.Start.Format(time.DateTime), res.End.Format(time.DateTime), res.Interval)
		fmt.Printf("  rows=%d gaps=%d layout=%q\n", res.Dataset.Len(), res.Gaps, res.Layout)
		for _, s := range res.Dataset.Series {
			fmt.Printf("  %s nulls=%d\n", s.Name, s.NullCount())
		}
	}
	return nil
}
