package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is returned when there is no record to derive a header from
var ErrEmptyInput = errors.New("no records to export")

// CSV download metadata
const (
	CSVMimeType = "text/csv;charset=utf-8;"
	rowSep      = "\r\n"
)

// Field is one named value of an exported record
type Field struct {
	Name  string
	Value any
}

// Record is an ordered set of fields; order defines the header
type Record []Field

// Get returns the value of the named field
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// ExportCSV renders records as CSV text.
//
// The header is the field names of the first record. Every cell is the JSON
// encoding of the value: strings are double-quoted with JSON escapes, numbers
// are bare, nil becomes an empty JSON string and a field missing from a row
// becomes an empty cell. Rows are joined by CRLF with no trailing separator.
// Consumers must treat quoted cells as JSON strings; a value holding a quote
// is written as \" rather than RFC 4180's "".
func ExportCSV(records []Record) (string, error) {
	if len(records) == 0 {
		return "", ErrEmptyInput
	}

	header := make([]string, 0, len(records[0]))
	for _, f := range records[0] {
		header = append(header, f.Name)
	}

	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(header, ","))

	cells := make([]string, len(header))
	for i, rec := range records {
		for j, name := range header {
			v, ok := rec.Get(name)
			if !ok {
				cells[j] = ""
				continue
			}
			cell, err := encodeCell(v)
			if err != nil {
				return "", fmt.Errorf("row %d field %q: %w", i, name, err)
			}
			cells[j] = cell
		}
		lines = append(lines, strings.Join(cells, ","))
	}

	return strings.Join(lines, rowSep), nil
}

func encodeCell(v any) (string, error) {
	if v == nil {
		v = ""
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// FileSaver delivers exported bytes to the user, e.g. as an HTTP attachment
// or a file on disk.
type FileSaver interface {
	Save(data []byte, filename, mimeType string) error
}

// SalesFilename is the download name for a day's export
func SalesFilename(day string) string {
	return fmt.Sprintf("sales_%s.csv", day)
}

// Download exports records and hands the CSV to saver
func Download(saver FileSaver, records []Record, filename string) error {
	csv, err := ExportCSV(records)
	if err != nil {
		return err
	}
	if err := saver.Save([]byte(csv), filename, CSVMimeType); err != nil {
		return fmt.Errorf("failed to save %s: %w", filename, err)
	}
	return nil
}
