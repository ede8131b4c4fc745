package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

// ReportsTableSchema keeps one row per record. Columns carry the wire field names;
// list fields are stored as JSON.
const ReportsTableSchema = `
	CREATE TABLE IF NOT EXISTS soc_reports (
		position INTEGER NOT NULL PRIMARY KEY,
		"file_name" VARCHAR,
		"ServiceAuditor" VARCHAR,
		"SOC1ReportType" VARCHAR,
		"ReportPeriod" VARCHAR,
		"AuditorOpinionDate" VARCHAR,
		"AuditorOpinionType" VARCHAR,
		"ThirdPartyServiceProvider" JSON,
		"SubserviceProvider" JSON,
		"ServicesProvided" JSON,
		"ControlNumber" JSON,
		"ControlObjective" JSON,
		"ControlDescription" JSON,
		"ReportsInScope" JSON,
		"ReportsOutOfScope" JSON,
		"ControlExceptionIdentified" VARCHAR,
		"CUECNumber" JSON,
		"CUECDescription" JSON,
		loaded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

var bootQueries = []string{
	ReportsTableSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
