package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrNotArray     = errors.New("report document is not a JSON array")
	ErrNotObject    = errors.New("report record is not a JSON object")
	ErrFieldType    = errors.New("unexpected field type")
	ErrUnknownField = errors.New("unknown report field")
)

// RecordError describes a record that failed boundary validation.
type RecordError struct {
	Index int
	Field string
	Err   error
}

func (e *RecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("record %d: field %q: %v", e.Index, e.Field, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Text is a scalar that may arrive as a string, a number, a boolean or null.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch kind := jsonKind(data); kind {
	case "null":
		*t = ""
	case "string":
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case "number", "boolean":
		*t = Text(data)
	default:
		return fmt.Errorf("%w: expected text, got %s", ErrFieldType, kind)
	}
	return nil
}

func (t Text) String() string {
	return string(t)
}

// StringList accepts an array of scalars, a single string or null.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch kind := jsonKind(data); kind {
	case "null":
		*l = nil
	case "string", "number", "boolean":
		var t Text
		if err := t.UnmarshalJSON(data); err != nil {
			return err
		}
		if strings.TrimSpace(string(t)) == "" {
			*l = nil
			return nil
		}
		*l = StringList{string(t)}
	case "array":
		var items []Text
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("%w: %v", ErrFieldType, err)
		}
		out := make(StringList, 0, len(items))
		for _, item := range items {
			out = append(out, string(item))
		}
		*l = out
	default:
		return fmt.Errorf("%w: expected list, got %s", ErrFieldType, kind)
	}
	return nil
}

// DecodeReports reads a report document. The document must be an array of objects;
// any other shape fails the decode. A field of the wrong type is left empty and
// reported in issues, and the rest of its record is kept. Unknown keys are ignored,
// absent keys stay empty.
func DecodeReports(r io.Reader) (reports []SOCReport, issues []*RecordError, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read report document: %w", err)
	}
	if jsonKind(bytes.TrimSpace(data)) != "array" {
		return nil, nil, ErrNotArray
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse report document: %w", err)
	}

	reports = make([]SOCReport, 0, len(raw))
	for i, item := range raw {
		report, fieldIssues, err := decodeRecord(item)
		if err != nil {
			return nil, nil, &RecordError{Index: i, Err: err}
		}
		for _, issue := range fieldIssues {
			issue.Index = i
		}
		issues = append(issues, fieldIssues...)
		reports = append(reports, report)
	}
	return reports, issues, nil
}

func decodeRecord(data json.RawMessage) (SOCReport, []*RecordError, error) {
	var report SOCReport
	if jsonKind(bytes.TrimSpace(data)) != "object" {
		return report, nil, ErrNotObject
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return report, nil, err
	}

	var issues []*RecordError
	for _, spec := range fieldSpecs {
		value, ok := fields[spec.name]
		if !ok {
			continue
		}
		if err := report.SetField(spec.name, value); err != nil {
			_ = report.SetField(spec.name, []byte("null"))
			issues = append(issues, &RecordError{Field: spec.name, Err: err})
		}
	}
	return report, issues, nil
}

// SetField decodes a single wire value into the named field.
func (r *SOCReport) SetField(name string, value []byte) error {
	for _, spec := range fieldSpecs {
		if spec.name != name {
			continue
		}
		value = bytes.TrimSpace(value)
		if spec.kind == KindObjects {
			if kind := jsonKind(value); kind != "array" && kind != "null" {
				return fmt.Errorf("%w: expected list of objects, got %s", ErrFieldType, kind)
			}
		}
		if err := json.Unmarshal(value, spec.target(r)); err != nil {
			if errors.Is(err, ErrFieldType) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrFieldType, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownField, name)
}

func jsonKind(data []byte) string {
	if len(data) == 0 {
		return "empty"
	}
	switch c := data[0]; {
	case c == '[':
		return "array"
	case c == '{':
		return "object"
	case c == '"':
		return "string"
	case c == 't' || c == 'f':
		return "boolean"
	case c == 'n':
		return "null"
	case c == '-' || (c >= '0' && c <= '9'):
		return "number"
	default:
		return "invalid"
	}
}

// WireFields returns the record's fields keyed by wire name, each as encoded JSON.
func (r SOCReport) WireFields() (map[string]json.RawMessage, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
