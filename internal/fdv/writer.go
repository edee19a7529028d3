package fdv

import (
	"bufio"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
)

var (
	// ErrInvalidParameter reports encoder input that cannot produce a valid file.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrMalformed reports an FDV file that cannot be decoded.
	ErrMalformed = errors.New("malformed fdv file")
)

const (
	samplesPerLine = 5
	stampLayout    = "200601021504"
	maxIdentifier  = 15
)

// recordWriter lays samples out five to a line.
type recordWriter struct {
	w       *bufio.Writer
	samples int
}

func (r *recordWriter) endSample() {
	r.samples++
	if r.samples%samplesPerLine == 0 {
		r.w.WriteByte('\n')
	}
}

// finish terminates a partial line and writes the blank line and end marker.
func (r *recordWriter) finish() {
	if r.samples%samplesPerLine != 0 {
		r.w.WriteByte('\n')
	}
	r.w.WriteString("\n*END\n")
}

// writeRange writes the metadata line and closes the constants section.
func writeRange(w *bufio.Writer, start, end time.Time, interval time.Duration) {
	fmt.Fprintf(w, "%s %s   %d\n", start.Format(stampLayout), end.Format(stampLayout), int(interval/time.Minute))
	w.WriteString("*CEND\n")
}

// identifier upper-cases a site name and truncates it to the field width.
func identifier(site string) string {
	runes := []rune(site)
	if len(runes) > maxIdentifier {
		runes = runes[:maxIdentifier]
	}
	return strings.ToUpper(string(runes))
}

// outputPerm is the mode of every encoded file.
const outputPerm = 0o644

// writeFileAtomic streams output into a pending file beside path and renames
// it into place only when write succeeds, so a failed encode leaves nothing
// behind.
func writeFileAtomic(path string, write func(w *bufio.Writer) error) error {
	pf, err := renameio.NewPendingFile(path,
		renameio.WithTempDir(filepath.Dir(path)),
		renameio.WithStaticPermissions(outputPerm),
	)
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer pf.Cleanup()

	bw := bufio.NewWriter(pf)
	if err := write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func writeLines(w *bufio.Writer, lines []string) {
	for _, line := range lines {
		w.WriteString(line)
		w.WriteByte('\n')
	}
}
