package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultTimestampKeywords returns the keywords matched against lowercased
// headers to locate the timestamp column.
func DefaultTimestampKeywords() []string {
	return []string{"timestamp", "time stamp", "time", "date", "datetime"}
}

// timestampLayouts is the detection priority order. Day and month accept one
// or two digits.
var timestampLayouts = []string{
	"2/1/2006 15:04",
	"1/2/2006 15:04",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"20060102150405",
	"2006-1-2 15:04:05",
	"2006/1/2 15:04:05",
}

// formatSampleRows caps how many rows vote on the timestamp layout.
const formatSampleRows = 100

// serialEpoch is day zero of spreadsheet date serials.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const serialLayout = "2006-01-02 15:04:05"

func findTimestampColumn(headers, keywords []string) (int, error) {
	for i, h := range headers {
		lower := strings.ToLower(h)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return i, nil
			}
		}
	}
	return -1, ErrTimestampColumnNotFound
}

// detectLayout credits each of the first sample rows to the first layout that
// parses it and returns the layout with the highest tally. Ties go to the
// layout listed first.
func detectLayout(t *table, col int) (string, error) {
	counts := make([]int, len(timestampLayouts))
	n := min(formatSampleRows, len(t.rows))
	for r := range n {
		v := strings.TrimSpace(t.cell(r, col))
		for i, layout := range timestampLayouts {
			if _, err := time.Parse(layout, v); err == nil {
				counts[i]++
				break
			}
		}
	}

	best := -1
	for i, c := range counts {
		if c > 0 && (best < 0 || c > counts[best]) {
			best = i
		}
	}
	if best < 0 {
		return "", ErrTimestampFormatNotIdentified
	}
	return timestampLayouts[best], nil
}

// parseTimestamps parses every row's timestamp with layout. Rows that fail to
// parse get the zero time and are reported as invalid.
func parseTimestamps(t *table, col int, layout string) (ts []time.Time, invalid int) {
	ts = make([]time.Time, len(t.rows))
	for r := range t.rows {
		parsed, err := time.Parse(layout, strings.TrimSpace(t.cell(r, col)))
		if err != nil {
			invalid++
			continue
		}
		ts[r] = parsed
	}
	return ts, invalid
}

// convertSerialTimestamps rewrites numeric spreadsheet date serials in col as
// "2006-01-02 15:04:05" text. The fractional day is rounded to the second.
func convertSerialTimestamps(t *table, col int) {
	for _, row := range t.rows {
		if col >= len(row) {
			continue
		}
		serial, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil || math.IsNaN(serial) || math.IsInf(serial, 0) {
			continue
		}
		row[col] = serialToTime(serial).Format(serialLayout)
	}
}

func serialToTime(serial float64) time.Time {
	days, frac := math.Modf(serial)
	secs := math.Round(frac * 86400)
	return serialEpoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)
}

// ParseBoundary reads a user-supplied range boundary such as
// "2024-03-01 06:00:00" or the HTML datetime-local form "2024-03-01T06:00".
func ParseBoundary(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised boundary %q", ErrParse, s)
}
