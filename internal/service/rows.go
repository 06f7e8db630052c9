package service

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/normalize"
)

// row is one decoded record of an import file
type row struct {
	Line int
	Raw  map[string]any
	Err  error
}

// maxLineSize bounds a single NDJSON line
const maxLineSize = 1024 * 1024

// listColumns are CSV columns holding ';'-separated lists
var listColumns = map[string]bool{
	"tags": true, "target_audience": true, "languages": true, "prerequisites": true,
	"learning_objectives": true, "institutions": true, "objectives": true,
	"keywords": true, "references": true, "authors": true,
}

// readRows decodes an import file and calls fn for every record. Malformed
// records are passed with Err set; fn returning an error stops the read.
func readRows(r io.Reader, format models.JobFormat, fn func(row) error) error {
	switch format {
	case models.FormatNDJSON:
		return readNDJSON(r, fn)
	case models.FormatCSV:
		return readCSV(r, fn)
	}
	return fmt.Errorf("unsupported import format: %s", format)
}

func readNDJSON(r io.Reader, fn func(row) error) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		rec := row{Line: lineNum}
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		if err := dec.Decode(&rec.Raw); err != nil {
			rec.Err = fmt.Errorf("invalid JSON: %w", err)
		} else if rec.Raw == nil {
			rec.Err = errors.New("invalid JSON: record must be an object")
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func readCSV(r io.Reader, fn func(row) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return err
			}
			if err := fn(row{Line: perr.Line, Err: perr.Err}); err != nil {
				return err
			}
			continue
		}

		// A quote error in the first column leaves no field positions, so
		// FieldPos is only safe on rows that parsed.
		line, _ := reader.FieldPos(0)
		raw := make(map[string]any, len(header))
		for i, column := range header {
			if i >= len(record) || column == "" {
				continue
			}
			if v, ok := csvValue(column, record[i]); ok {
				raw[column] = v
			}
		}
		if err := fn(row{Line: line, Raw: raw}); err != nil {
			return err
		}
	}
}

// csvValue converts a cell: JSON arrays and objects are decoded, list
// columns are split on ';', everything else stays a string. Empty cells
// are omitted.
func csvValue(column, cell string) (any, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, false
	}
	if cell[0] == '[' || cell[0] == '{' {
		dec := json.NewDecoder(strings.NewReader(cell))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err == nil {
			return v, true
		}
	}
	if listColumns[normalize.SnakeCase(column)] {
		parts := strings.Split(cell, ";")
		items := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		return items, true
	}
	return cell, true
}
