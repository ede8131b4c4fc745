package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/de-tools/soc-atlas/pkg/models/api"
	"github.com/de-tools/soc-atlas/pkg/store/duckdb"
)

// Store keeps a report document in the soc_reports table.
type Store interface {
	Replace(ctx context.Context, reports []api.SOCReport) error
	List(ctx context.Context) ([]api.SOCReport, error)
}

type reportStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &reportStore{db: db}, nil
}

// Replace swaps the stored document for reports. It joins the transaction carried by
// ctx, or runs in its own.
func (s *reportStore) Replace(ctx context.Context, reports []api.SOCReport) error {
	if duckdb.GetTransaction(ctx) == nil {
		return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
			return s.replace(ctx, reports)
		})
	}
	return s.replace(ctx, reports)
}

func (s *reportStore) replace(ctx context.Context, reports []api.SOCReport) error {
	tx := duckdb.GetTransaction(ctx)
	if _, err := tx.ExecContext(ctx, `DELETE FROM soc_reports`); err != nil {
		return fmt.Errorf("clear reports: %w", err)
	}
	if len(reports) == 0 {
		return nil
	}

	names := api.FieldNames()
	stmt, err := tx.PrepareContext(ctx, insertQuery(names))
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, report := range reports {
		args, err := insertArgs(i, report, names)
		if err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	return nil
}

func (s *reportStore) List(ctx context.Context) ([]api.SOCReport, error) {
	names := api.FieldNames()
	columns := make([]string, 0, len(names))
	for _, name := range names {
		columns = append(columns, fmt.Sprintf("CAST(%s AS VARCHAR)", quote(name)))
	}
	query := fmt.Sprintf(`SELECT %s FROM soc_reports ORDER BY position`, strings.Join(columns, ", "))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	reports := make([]api.SOCReport, 0)
	for rows.Next() {
		values := make([]sql.NullString, len(names))
		dest := make([]any, len(names))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}

		report, err := fromRow(names, values)
		if err != nil {
			return nil, fmt.Errorf("decode report %d: %w", len(reports), err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

func insertQuery(names []string) string {
	columns := []string{"position"}
	placeholders := []string{"?"}
	for _, name := range names {
		columns = append(columns, quote(name))
		placeholders = append(placeholders, "?")
	}
	return fmt.Sprintf(`INSERT INTO soc_reports (%s) VALUES (%s)`,
		strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}

// insertArgs binds text fields as strings and list fields as JSON text. Empty
// lists are stored as NULL.
func insertArgs(position int, report api.SOCReport, names []string) ([]any, error) {
	fields, err := report.WireFields()
	if err != nil {
		return nil, err
	}

	args := make([]any, 0, len(names)+1)
	args = append(args, position)
	for _, name := range names {
		raw := fields[name]
		kind, _ := api.KindOf(name)
		switch {
		case kind == api.KindText:
			var text string
			if err := json.Unmarshal(raw, &text); err != nil {
				return nil, err
			}
			args = append(args, text)
		case len(raw) == 0, string(raw) == "null", string(raw) == "[]":
			args = append(args, nil)
		default:
			args = append(args, string(raw))
		}
	}
	return args, nil
}

func fromRow(names []string, values []sql.NullString) (api.SOCReport, error) {
	var report api.SOCReport
	for i, name := range names {
		if !values[i].Valid {
			continue
		}
		value := []byte(values[i].String)
		if kind, _ := api.KindOf(name); kind == api.KindText {
			quoted, err := json.Marshal(values[i].String)
			if err != nil {
				return report, err
			}
			value = quoted
		}
		if err := report.SetField(name, value); err != nil {
			return report, fmt.Errorf("field %q: %w", name, err)
		}
	}
	return report, nil
}

func quote(name string) string {
	return `"` + name + `"`
}
