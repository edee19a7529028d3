package pipeline

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/klauspost/compress/zip"
)

// ArchiveName is the file the batch archive is written to inside the output directory.
const ArchiveName = "processed_files.zip"

// archivePerm is the mode of the archive file. Entries inside it carry 0755.
const archivePerm = 0o644

// writeArchive zips files into dest by base name with deflate compression.
// Every file must exist before anything is written. The archive is assembled
// next to dest and renamed into place.
func writeArchive(dest string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("archive: output %s: %w", f, err)
		}
	}

	pf, err := renameio.NewPendingFile(dest,
		renameio.WithTempDir(filepath.Dir(dest)),
		renameio.WithStaticPermissions(archivePerm),
	)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer pf.Cleanup()

	zw := zip.NewWriter(pf)
	for _, f := range files {
		if err := addToArchive(zw, f); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return nil
}

// removeStaleArchive deletes an archive left by an earlier run so a failed run
// cannot be mistaken for a current one.
func removeStaleArchive(dest string) error {
	if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("archive: remove stale %s: %w", dest, err)
	}
	return nil
}

func addToArchive(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	hdr.Name = filepath.Base(path)
	hdr.Method = zip.Deflate
	hdr.SetMode(0o755)

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("archive: add %s: %w", hdr.Name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("archive: add %s: %w", hdr.Name, err)
	}
	return nil
}

// outputRegistry hands out output names to jobs of one run.
type outputRegistry struct {
	mu    sync.Mutex
	owner map[string]string
}

func newOutputRegistry() *outputRegistry {
	return &outputRegistry{owner: make(map[string]string)}
}

// claimFor returns the ClaimFunc for the job reading input. The release func
// hands the name back so a job that fails after claiming does not block a
// later job with the same output.
func (r *outputRegistry) claimFor(input string) ClaimFunc {
	return func(name string) (func(), error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if prev, ok := r.owner[name]; ok {
			return nil, fmt.Errorf("%w: %s is claimed by %s", ErrDuplicateOutput, name, prev)
		}
		r.owner[name] = input
		return func() { r.release(name, input) }, nil
	}
}

func (r *outputRegistry) release(name, input string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owner[name] == input {
		delete(r.owner, name)
	}
}
