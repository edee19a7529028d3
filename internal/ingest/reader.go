package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// table is a raw header row plus string cells. Rows may be ragged.
type table struct {
	sourceExt string
	headers   []string
	rows      [][]string
}

// cell returns the value at column i of row r, or "" for short rows.
func (t *table) cell(r, i int) string {
	row := t.rows[r]
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func readTable(path string) (*table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	case "":
		return nil, fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func readCSV(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", path, ErrFileNotFound, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	headers, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", ErrEmptyData, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header %s: %w: %w", path, ErrParse, err)
	}

	t := &table{sourceExt: ".csv", headers: headers}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w: %w", path, ErrParse, err)
		}
		t.rows = append(t.rows, rec)
	}
	if len(t.rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyData, path)
	}
	return t, nil
}

func readXLSX(path string) (*table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", path, ErrFileNotFound, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, path)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w: %w", sheets[0], path, ErrParse, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyData, path)
	}
	return &table{sourceExt: ".xlsx", headers: rows[0], rows: rows[1:]}, nil
}
