package fdv

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// File is a decoded FDV file.
type File struct {
	Identifier string
	Fields     []string
	Start      time.Time
	End        time.Time
	Interval   time.Duration
	// Samples holds one entry per sample with a value for each field.
	Samples [][]float64
}

// Decode parses an FDV file produced by EncodeFlow or EncodeRainfall.
func Decode(r io.Reader) (*File, error) {
	f := &File{}
	sc := bufio.NewScanner(r)
	lineNo := 0
	var prev string
	inConstants, ended := false, false
	var widths []int

	for sc.Scan() {
		lineNo++
		line := sc.Text()
		switch {
		case ended:
			if strings.TrimSpace(line) != "" {
				return nil, fmt.Errorf("%w: line %d: content after *END", ErrMalformed, lineNo)
			}
		case strings.HasPrefix(line, "**IDENTIFIER:"):
			f.Identifier = declValue(line, 1)
		case strings.HasPrefix(line, "**FIELD:"):
			f.Fields = strings.Split(declValue(line, 0), ",")[1:]
		case line == "*CSTART":
			inConstants = true
		case line == "*CEND":
			if err := f.parseRange(prev); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo-1, err)
			}
			inConstants = false
			w, err := fieldWidths(len(f.Fields))
			if err != nil {
				return nil, err
			}
			widths = w
		case line == "*END":
			ended = true
		case inConstants, strings.HasPrefix(line, "*"):
		case widths == nil:
			return nil, fmt.Errorf("%w: line %d: data before *CEND", ErrMalformed, lineNo)
		default:
			if err := f.parseRecords(line, widths); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
		prev = line
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read fdv: %w", err)
	}
	if !ended {
		return nil, fmt.Errorf("%w: missing *END", ErrMalformed)
	}
	return f, nil
}

// declValue returns the text after the declaration's count prefix, or the
// whole value when skip is zero.
func declValue(line string, skip int) string {
	_, v, _ := strings.Cut(line, ":")
	v = strings.TrimSpace(v)
	if skip == 0 {
		return v
	}
	parts := strings.SplitN(v, ",", skip+1)
	return parts[len(parts)-1]
}

func fieldWidths(n int) ([]int, error) {
	switch n {
	case 3:
		return []int{5, 5, 5}, nil
	case 1:
		return []int{15}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported field count %d", ErrMalformed, n)
	}
}

func (f *File) parseRange(line string) error {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return fmt.Errorf("%w: range line %q", ErrMalformed, line)
	}
	start, err := time.Parse(stampLayout, parts[0])
	if err != nil {
		return fmt.Errorf("%w: start: %v", ErrMalformed, err)
	}
	end, err := time.Parse(stampLayout, parts[1])
	if err != nil {
		return fmt.Errorf("%w: end: %v", ErrMalformed, err)
	}
	minutes, err := strconv.Atoi(parts[2])
	if err != nil {
		return fmt.Errorf("%w: interval: %v", ErrMalformed, err)
	}
	f.Start, f.End, f.Interval = start, end, time.Duration(minutes)*time.Minute
	return nil
}

func (f *File) parseRecords(line string, widths []int) error {
	sampleWidth := 0
	for _, w := range widths {
		sampleWidth += w
	}
	if len(line)%sampleWidth != 0 {
		return fmt.Errorf("%w: record length %d is not a multiple of %d", ErrMalformed, len(line), sampleWidth)
	}
	for pos := 0; pos < len(line); {
		sample := make([]float64, len(widths))
		for i, w := range widths {
			v, err := strconv.ParseFloat(strings.TrimSpace(line[pos:pos+w]), 64)
			if err != nil {
				return fmt.Errorf("%w: field %q: %v", ErrMalformed, line[pos:pos+w], err)
			}
			sample[i] = v
			pos += w
		}
		f.Samples = append(f.Samples, sample)
	}
	return nil
}
