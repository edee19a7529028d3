package ingest

import "errors"

var (
	ErrUnsupportedFormat            = errors.New("unsupported file format")
	ErrFileNotFound                 = errors.New("file not found")
	ErrEmptyData                    = errors.New("file has no data rows")
	ErrSheetNotFound                = errors.New("no sheets found in workbook")
	ErrTimestampColumnNotFound      = errors.New("timestamp column not found")
	ErrTimestampFormatNotIdentified = errors.New("unable to identify timestamp format")
	ErrParse                        = errors.New("parse error")
)
