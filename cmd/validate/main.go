// Command validate checks the outputs of a batch run: every FDV file must
// decode, carry a sample count consistent with its START, END and INTERVAL
// line, and match its copy inside processed_files.zip byte for byte.
//
// Usage:
//
//	go run ./cmd/validate -dir out
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zip"

	"github.com/couchcryptid/fdv-converter/internal/fdv"
	"github.com/couchcryptid/fdv-converter/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", "", "batch output directory")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}
	os.Exit(run(*dir))
}

func run(dir string) int {
	outputs, err := listOutputs(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	decoded := &phase{name: "decode"}
	files := make(map[string][]byte, len(outputs))
	for _, path := range outputs {
		data, err := os.ReadFile(path)
		if err != nil {
			decoded.errorf("%s: %v", path, err)
			continue
		}
		files[filepath.Base(path)] = data
		checkFile(decoded, filepath.Base(path), data)
	}

	archived := &phase{name: "archive"}
	checkArchive(archived, filepath.Join(dir, pipeline.ArchiveName), files)

	code := 0
	for _, p := range []*phase{decoded, archived} {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		code = 1
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	return code
}

func listOutputs(dir string) ([]string, error) {
	var out []string
	for _, pattern := range []string{"*.fdv", "*.r"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no .fdv or .r files in %s", dir)
	}
	sort.Strings(out)
	return out, nil
}

func checkFile(p *phase, name string, data []byte) {
	f, err := fdv.Decode(bytes.NewReader(data))
	if err != nil {
		p.errorf("%s: %v", name, err)
		return
	}
	if f.Interval <= 0 {
		p.errorf("%s: interval %s", name, f.Interval)
		return
	}
	want := int(f.End.Sub(f.Start)/f.Interval) + 1
	if len(f.Samples) != want {
		p.errorf("%s: %d samples, range implies %d", name, len(f.Samples), want)
	}
	for i, s := range f.Samples {
		if len(s) != len(f.Fields) {
			p.errorf("%s: sample %d has %d values for %d fields", name, i, len(s), len(f.Fields))
			break
		}
	}
	fmt.Printf("%-20s %-15s %s .. %s %5d samples  xxh64 %016x\n", name, f.Identifier,
		f.Start.Format("200601021504"), f.End.Format("200601021504"), len(f.Samples), xxhash.Sum64(data))
}

func checkArchive(p *phase, path string, files map[string][]byte) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		p.errorf("%v", err)
		return
	}
	defer zr.Close()

	seen := make(map[string]bool, len(zr.File))
	for _, zf := range zr.File {
		seen[zf.Name] = true
		want, ok := files[zf.Name]
		if !ok {
			p.errorf("%s: in archive but not on disk", zf.Name)
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			p.errorf("%s: %v", zf.Name, err)
			continue
		}
		got, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			p.errorf("%s: %v", zf.Name, err)
			continue
		}
		if xxhash.Sum64(got) != xxhash.Sum64(want) {
			p.errorf("%s: archived copy differs from disk", zf.Name)
		}
	}
	for name := range files {
		if !seen[name] {
			p.errorf("%s: on disk but not in archive", name)
		}
	}
}
