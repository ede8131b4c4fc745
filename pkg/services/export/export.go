// Package export writes report records as a JSON document, JSON lines, CSV or a DuckDB table.
package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/de-tools/soc-atlas/pkg/models/api"
)

type Format string

const (
	FormatJSON   Format = "json"
	FormatJSONL  Format = "jsonl"
	FormatCSV    Format = "csv"
	FormatDuckDB Format = "duckdb"
)

// ErrFileOnly is returned when a format that needs a file path is asked to write to a stream.
var ErrFileOnly = errors.New("format can only be written to a file")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatJSONL, FormatCSV, FormatDuckDB:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (expected json, jsonl, csv or duckdb)", s)
	}
}

// Write encodes reports to w in the given format.
func Write(w io.Writer, format Format, reports []api.SOCReport) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, reports)
	case FormatJSONL:
		return WriteJSONL(w, reports)
	case FormatCSV:
		return WriteCSV(w, reports)
	case FormatDuckDB:
		return fmt.Errorf("%s: %w", format, ErrFileOnly)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteFile creates path and writes reports to it.
func WriteFile(ctx context.Context, path string, format Format, reports []api.SOCReport) error {
	if format == FormatDuckDB {
		return WriteDuckDB(ctx, path, reports)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	bw := bufio.NewWriter(f)
	if err := Write(bw, format, reports); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// WriteJSON writes the array document the viewer loads.
func WriteJSON(w io.Writer, reports []api.SOCReport) error {
	if reports == nil {
		reports = []api.SOCReport{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

// WriteJSONL writes one record per line.
func WriteJSONL(w io.Writer, reports []api.SOCReport) error {
	enc := json.NewEncoder(w)
	for i, r := range reports {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
	}
	return nil
}

// WriteCSV writes a header of wire field names followed by one row per record.
// Text fields are written as is; lists are JSON encoded into their cell.
func WriteCSV(w io.Writer, reports []api.SOCReport) error {
	names := api.FieldNames()
	cw := csv.NewWriter(w)

	if err := cw.Write(names); err != nil {
		return err
	}

	for i, r := range reports {
		row, err := csvRow(r, names)
		if err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRow(r api.SOCReport, names []string) ([]string, error) {
	fields, err := r.WireFields()
	if err != nil {
		return nil, err
	}

	row := make([]string, 0, len(names))
	for _, name := range names {
		raw := fields[name]
		kind, _ := api.KindOf(name)

		switch {
		case len(raw) == 0, string(raw) == "null", string(raw) == "[]":
			row = append(row, "")
		case kind == api.KindText:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, err
			}
			row = append(row, s)
		default:
			row = append(row, string(raw))
		}
	}
	return row, nil
}
