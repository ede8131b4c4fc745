package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/soc-atlas/pkg/models/api"
	"github.com/de-tools/soc-atlas/pkg/services/export"
	"github.com/de-tools/soc-atlas/pkg/services/extract"
	"github.com/spf13/cobra"
)

const (
	backendGemini = "gemini"
	backendDocAI  = "docai"
)

// documentExtractor is the part of an extraction backend the command drives.
type documentExtractor interface {
	Run(ctx context.Context, src extract.DocumentSource) ([]api.SOCReport, error)
}

type ExtractCmd struct {
	env         *Env
	backend     string
	pdfDir      string
	bucket      string
	prefix      string
	model       string
	concurrency int
	outputJSON  string
	outputJSONL string
	outputCSV   string
	outputDB    string
}

func NewExtractCmd(env *Env) *cobra.Command {
	ec := &ExtractCmd{env: env}
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract SOC report fields from PDFs with Gemini or Document AI",
		RunE:  ec.run,
	}

	cmd.Flags().StringVar(&ec.backend, "backend", backendGemini, "Extraction backend: gemini or docai")
	cmd.Flags().StringVar(&ec.pdfDir, "pdf-dir", "", "Directory containing PDF files")
	cmd.Flags().StringVar(&ec.bucket, "bucket", "", "Bucket containing PDF files")
	cmd.Flags().StringVar(&ec.prefix, "prefix", "", "Key prefix of the PDF files in the bucket")
	cmd.Flags().StringVar(&ec.model, "model", "", "Gemini model name (default gemini.model)")
	cmd.Flags().IntVar(&ec.concurrency, "concurrency", extract.DefaultConcurrency, "Number of PDFs processed at once")
	cmd.Flags().StringVar(&ec.outputJSON, "output-json", "", "Write the records as a JSON array document")
	cmd.Flags().StringVar(&ec.outputJSONL, "output-jsonl", "", "Write the records as JSON lines")
	cmd.Flags().StringVar(&ec.outputCSV, "output-csv", "", "Write the records as CSV")
	cmd.Flags().StringVar(&ec.outputDB, "output-duckdb", "", "Write the records to a DuckDB database file")

	cmd.MarkFlagsMutuallyExclusive("pdf-dir", "bucket")
	cmd.MarkFlagsOneRequired("pdf-dir", "bucket")
	cmd.MarkFlagsOneRequired("output-json", "output-jsonl", "output-csv", "output-duckdb")

	return cmd
}

func (ec *ExtractCmd) outputs() map[export.Format]string {
	outputs := map[export.Format]string{}
	if ec.outputJSON != "" {
		outputs[export.FormatJSON] = ec.outputJSON
	}
	if ec.outputJSONL != "" {
		outputs[export.FormatJSONL] = ec.outputJSONL
	}
	if ec.outputCSV != "" {
		outputs[export.FormatCSV] = ec.outputCSV
	}
	if ec.outputDB != "" {
		outputs[export.FormatDuckDB] = ec.outputDB
	}
	return outputs
}

func (ec *ExtractCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := ec.env.Config()
	if err != nil {
		return err
	}
	ctx, logger := ec.env.Context(cmd.Context(), cfg, cmd.ErrOrStderr())

	var src extract.DocumentSource
	switch {
	case ec.pdfDir != "":
		src = extract.DirSource{Dir: ec.pdfDir}
	case ec.bucket != "":
		store, err := ec.env.NewObjectStore(ctx, cfg.S3)
		if err != nil {
			return err
		}
		src = extract.S3Source{Objects: store, Bucket: ec.bucket, Prefix: ec.prefix}
	default:
		return errors.New("either --pdf-dir or --bucket is required")
	}

	var extractor documentExtractor
	switch ec.backend {
	case backendGemini:
		geminiCfg := cfg.Gemini
		if ec.model != "" {
			geminiCfg.Model = ec.model
		}
		gen, closer, err := ec.env.NewGenerator(ctx, geminiCfg)
		if err != nil {
			return fmt.Errorf("failed to create generator: %w", err)
		}
		defer closer.Close()

		extractor = extract.NewExtractor(gen, extract.Options{
			MaxRetries:  geminiCfg.MaxRetries,
			RetryDelay:  geminiCfg.RetryDelay,
			Concurrency: ec.concurrency,
		})
	case backendDocAI:
		proc, closer, err := ec.env.NewProcessor(ctx, cfg.DocAI)
		if err != nil {
			return fmt.Errorf("failed to create document ai processor: %w", err)
		}
		defer closer.Close()

		extractor = extract.NewDocAIExtractor(proc, ec.concurrency)
	default:
		return fmt.Errorf("unknown backend %q: use %s or %s", ec.backend, backendGemini, backendDocAI)
	}

	records, err := extractor.Run(ctx, src)
	if err != nil {
		return fmt.Errorf("failed to extract reports: %w", err)
	}

	return ec.write(ctx, records, func(format export.Format, path string) {
		logger.Info().Str("backend", ec.backend).Str("format", string(format)).Str("output", path).Int("reports", len(records)).Msg("records written")
	})
}

func (ec *ExtractCmd) write(ctx context.Context, records []api.SOCReport, written func(export.Format, string)) error {
	outputs := ec.outputs()
	for _, format := range []export.Format{export.FormatJSON, export.FormatJSONL, export.FormatCSV, export.FormatDuckDB} {
		path, ok := outputs[format]
		if !ok {
			continue
		}
		if err := export.WriteFile(ctx, path, format, records); err != nil {
			return err
		}
		written(format, path)
	}
	return nil
}
