package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/AngelCh415/campaign-metrics/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file has no header row or no data rows")
	ErrTooLarge          = errors.New("file exceeds the upload size limit")
)

// Table is a parsed sheet: unique headers and rows keyed by them.
type Table struct {
	Headers []string
	Rows    []models.RawRow
}

// Parse reads at most maxBytes from r and parses it by the extension of name.
func Parse(name string, r io.Reader, maxBytes int64) (Table, error) {
	data, err := readLimited(r, maxBytes)
	if err != nil {
		return Table{}, err
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", "":
		return ParseCSV(data)
	case ".xlsx":
		return ParseXLSX(data)
	default:
		return Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// ParseCSV parses delimited text. Cells stay strings; typing is left to the
// transformation layer.
func ParseCSV(data []byte) (Table, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse csv: %w", err)
	}
	return buildTable(records)
}

// ParseXLSX reads the first sheet of a workbook.
func ParseXLSX(data []byte) (Table, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Table{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer xl.Close()
	sheet := xl.GetSheetName(0)
	records, err := xl.GetRows(sheet)
	if err != nil {
		return Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return buildTable(records)
}

func buildTable(records [][]string) (Table, error) {
	start := 0
	for start < len(records) && isEmptyRow(records[start]) {
		start++
	}
	if start >= len(records) {
		return Table{}, ErrEmptyFile
	}
	headers := uniqueHeaders(records[start])
	t := Table{Headers: headers}
	for _, rec := range records[start+1:] {
		if isEmptyRow(rec) {
			continue
		}
		row := make(models.RawRow, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = nil
			}
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		return Table{}, ErrEmptyFile
	}
	return t, nil
}

// uniqueHeaders trims headers, names blank ones by position and suffixes
// repeats ("Spend", "Spend_2").
func uniqueHeaders(rec []string) []string {
	out := make([]string, len(rec))
	seen := map[string]int{}
	for i, h := range rec {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		base := h
		for seen[h] > 0 {
			seen[base]++
			h = fmt.Sprintf("%s_%d", base, seen[base])
		}
		seen[h]++
		out[i] = h
	}
	return out
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
