// Package fileparse turns uploaded CSV and XLSX files into header-keyed
// rows. It is the only place the module touches file formats; everything
// downstream works on rows.
package fileparse

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/youssef-benmansour/fuel-vivo/internal/importer"
	"github.com/youssef-benmansour/fuel-vivo/internal/shared"
)

// Parse reads an upload into rows keyed by cleaned column headers. The
// format is chosen by file extension; XLSX parsing uses the first sheet.
func Parse(name string, r io.Reader) ([]importer.Row, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return parseCSV(r)
	case ".xlsx":
		return parseXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported file type %q: %w", filepath.Ext(name), shared.ErrValidation)
	}
}

func parseCSV(r io.Reader) ([]importer.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file: %w", shared.ErrValidation)
	}

	headers := CleanHeaders(records[0])
	rows := make([]importer.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row := make(importer.Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseXLSX(r io.Reader) ([]importer.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets: %w", shared.ErrValidation)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty sheet: %w", shared.ErrValidation)
	}

	headers := CleanHeaders(records[0])
	rows := make([]importer.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row := make(importer.Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CleanHeaders normalizes column names: embedded newlines become spaces,
// runs of whitespace collapse, ends are trimmed. Spreadsheet exports wrap
// long headers across lines.
func CleanHeaders(raw []string) []string {
	cleaned := make([]string, len(raw))
	for i, h := range raw {
		h = strings.ReplaceAll(h, "\r", " ")
		h = strings.ReplaceAll(h, "\n", " ")
		cleaned[i] = strings.Join(strings.Fields(h), " ")
	}
	return cleaned
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
