package commands

import (
	"fmt"

	"github.com/de-tools/soc-atlas/pkg/adapters"
	"github.com/de-tools/soc-atlas/pkg/services/export"
	"github.com/spf13/cobra"
)

type ExportCmd struct {
	env    *Env
	source string
	format string
	output string
}

func NewExportCmd(env *Env) *cobra.Command {
	ec := &ExportCmd{env: env}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert the report document to JSON, JSON lines, CSV or a DuckDB table",
		RunE:  ec.run,
	}

	cmd.Flags().StringVar(&ec.source, "source", "", "URL, s3:// URI or path of the report document (default data.source)")
	cmd.Flags().StringVar(&ec.format, "format", string(export.FormatJSON), "Output format: json, jsonl, csv or duckdb")
	cmd.Flags().StringVar(&ec.output, "output", "", "Output file, - for stdout")

	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(ec.format)
	if err != nil {
		return err
	}

	cfg, err := ec.env.Config()
	if err != nil {
		return err
	}
	ctx, logger := ec.env.Context(cmd.Context(), cfg, cmd.ErrOrStderr())

	src, err := ec.env.OpenSource(ctx, cfg, ec.source)
	if err != nil {
		return err
	}
	reports, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reports: %w", err)
	}
	records := adapters.MapReportsDomainToApi(reports)

	if ec.output == "-" {
		return export.Write(cmd.OutOrStdout(), format, records)
	}
	if err := export.WriteFile(ctx, ec.output, format, records); err != nil {
		return err
	}

	logger.Info().Str("output", ec.output).Int("reports", len(records)).Msg("reports exported")
	return nil
}
