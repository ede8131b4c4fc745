package export

import (
	"context"
	"fmt"

	"github.com/de-tools/soc-atlas/pkg/models/api"
	"github.com/de-tools/soc-atlas/pkg/store/duckdb"
	"github.com/de-tools/soc-atlas/pkg/store/duckdb/reports"
	"github.com/rs/zerolog"
)

// WriteDuckDB stores reports in the soc_reports table of the database at path,
// replacing what an earlier export left there.
func WriteDuckDB(ctx context.Context, path string, records []api.SOCReport) error {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: path})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("failed to close database")
		}
	}()

	store, err := reports.NewStore(db)
	if err != nil {
		return err
	}
	err = duckdb.InTransaction(ctx, db, func(ctx context.Context) error {
		return store.Replace(ctx, records)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
