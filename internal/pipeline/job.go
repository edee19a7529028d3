package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidJob reports a job descriptor that cannot be run.
var ErrInvalidJob = errors.New("invalid job")

// Job is one entry of a batch descriptor. PipeShape and PipeSize are only
// consulted for flow and depth monitors. SiteName, when set, replaces the site
// name detected from the file.
type Job struct {
	FilePath  string `json:"filepath"`
	PipeShape string `json:"pipeshape,omitempty"`
	PipeSize  string `json:"pipesize,omitempty"`
	SiteName  string `json:"sitename,omitempty"`
}

// LoadJobs decodes a JSON array of job descriptors.
func LoadJobs(r io.Reader) ([]Job, error) {
	var jobs []Job
	if err := json.NewDecoder(r).Decode(&jobs); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}
	for i, j := range jobs {
		if strings.TrimSpace(j.FilePath) == "" {
			return nil, fmt.Errorf("%w: job %d has no filepath", ErrInvalidJob, i)
		}
	}
	return jobs, nil
}
