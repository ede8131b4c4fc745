package reports

import (
	"context"

	"github.com/de-tools/soc-atlas/pkg/models/domain"
	"github.com/de-tools/soc-atlas/pkg/store/source"
	"github.com/rs/zerolog"
)

// Dataset is the report document held by the server: the bytes exactly as fetched
// and the records decoded from them. It is read-only once built.
type Dataset struct {
	raw     []byte
	reports []domain.SOCReport
	ready   bool
}

// NewDataset validates raw and keeps both forms.
func NewDataset(ctx context.Context, raw []byte) (*Dataset, error) {
	reports, err := source.Decode(ctx, raw)
	if err != nil {
		return nil, err
	}
	return &Dataset{raw: raw, reports: reports, ready: true}, nil
}

// PendingDataset is a dataset that never finished loading.
func PendingDataset() *Dataset {
	return &Dataset{}
}

// LoadDataset fetches the document once. Failures are logged and leave the
// dataset pending, which the pages render as a loading placeholder.
func LoadDataset(ctx context.Context, f source.Fetcher) *Dataset {
	logger := zerolog.Ctx(ctx)

	raw, err := f.Fetch(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch reports")
		return PendingDataset()
	}

	ds, err := NewDataset(ctx, raw)
	if err != nil {
		logger.Error().Err(err).Msg("failed to decode reports")
		return PendingDataset()
	}

	logger.Info().Int("reports", len(ds.reports)).Msg("reports loaded")
	return ds
}

func (d *Dataset) Ready() bool {
	return d.ready
}
