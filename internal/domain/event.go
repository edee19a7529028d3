package domain

import "time"

// JobStatus is the outcome of one conversion job.
type JobStatus string

const (
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
	JobCanceled  JobStatus = "canceled"
)

// NullCounts tallies missing readings per channel before they are zero-filled.
type NullCounts struct {
	Flow     int `json:"flow,omitempty"`
	Depth    int `json:"depth,omitempty"`
	Velocity int `json:"velocity,omitempty"`
	Rainfall int `json:"rainfall,omitempty"`
}

// Total sums the null readings across channels.
func (n NullCounts) Total() int {
	return n.Flow + n.Depth + n.Velocity + n.Rainfall
}

// JobEvent records one conversion job of a batch run. It is the payload
// published to the job-event sink.
type JobEvent struct {
	RunID       string        `json:"run_id"`
	Input       string        `json:"input"`
	Output      string        `json:"output,omitempty"`
	Status      JobStatus     `json:"status"`
	Error       string        `json:"error,omitempty"`
	SiteID      string        `json:"site_id,omitempty"`
	SiteName    string        `json:"site_name,omitempty"`
	MonitorType MonitorType   `json:"monitor_type,omitempty"`
	Start       time.Time     `json:"start,omitzero"`
	End         time.Time     `json:"end,omitzero"`
	Interval    time.Duration `json:"interval_ns,omitempty"`
	Samples     int           `json:"samples,omitempty"`
	Gaps        int           `json:"gaps"`
	Nulls       NullCounts    `json:"nulls"`
	Digest      string        `json:"digest,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
	ProcessedAt time.Time     `json:"processed_at"`
}
