// Package extract fills report records from source PDFs, either by asking a language
// model about each document or by running a Document AI processor over it.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/de-tools/soc-atlas/pkg/models/api"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxRetries  = 5
	DefaultRetryDelay  = 3 * time.Second
	DefaultConcurrency = 2
)

var errUnparseable = errors.New("answer is not valid JSON")

// Generator answers a prompt about a document.
type Generator interface {
	Generate(ctx context.Context, prompt string, doc Document) (string, error)
}

type Options struct {
	MaxRetries  int
	RetryDelay  time.Duration
	Concurrency int
	Prompts     []Prompt
}

type Extractor struct {
	gen    Generator
	opts   Options
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

func NewExtractor(gen Generator, opts Options) *Extractor {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Prompts == nil {
		opts.Prompts = DefaultPrompts
	}

	return &Extractor{
		gen:    gen,
		opts:   opts,
		sleep:  sleepCtx,
		jitter: func() time.Duration { return rand.N(time.Second) },
	}
}

// RecordExtractor turns one document into a report record.
type RecordExtractor interface {
	Extract(ctx context.Context, doc Document) (api.SOCReport, error)
}

// Run extracts a record from every document of src with x, at most concurrency
// documents at a time. Documents that cannot be read are logged and skipped.
// Records are ordered by file name.
func Run(ctx context.Context, src DocumentSource, x RecordExtractor, concurrency int) ([]api.SOCReport, error) {
	logger := zerolog.Ctx(ctx)
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	refs, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	logger.Info().Int("documents", len(refs)).Msg("starting extraction")

	results := make([]*api.SOCReport, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, ref := range refs {
		g.Go(func() error {
			doc, err := src.Open(gctx, ref)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Error().Err(err).Str("document", ref).Msg("failed to read document, skipping")
				return nil
			}

			report, err := x.Extract(gctx, doc)
			if err != nil {
				return err
			}
			results[i] = &report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	reports := make([]api.SOCReport, 0, len(results))
	for _, r := range results {
		if r != nil {
			reports = append(reports, *r)
		}
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].FileName < reports[j].FileName
	})
	return reports, nil
}

// Run extracts every document of src with the configured prompts.
func (e *Extractor) Run(ctx context.Context, src DocumentSource) ([]api.SOCReport, error) {
	return Run(ctx, src, e, e.opts.Concurrency)
}

// Extract asks every prompt about doc. A field whose answer cannot be obtained or
// parsed stays empty. Only cancellation of ctx fails the call.
func (e *Extractor) Extract(ctx context.Context, doc Document) (api.SOCReport, error) {
	logger := zerolog.Ctx(ctx).With().Str("document", doc.Name).Logger()
	report := api.SOCReport{FileName: doc.Name}

	for _, p := range e.opts.Prompts {
		logger.Debug().Str("field", p.Field).Msg("extracting field")

		answer, err := e.ask(ctx, p.Text, doc)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			logger.Error().Err(err).Str("field", p.Field).Msg("failed to extract field")
			continue
		}

		if err := setAnswer(&report, p.Field, answer); err != nil {
			logger.Warn().Err(err).Str("field", p.Field).Str("answer", answer).Msg("discarding answer")
		}
	}

	logger.Info().Msg("document extracted")
	return report, nil
}

// ask retries failed calls with exponential backoff plus up to a second of jitter.
func (e *Extractor) ask(ctx context.Context, prompt string, doc Document) (string, error) {
	var lastErr error
	for attempt := 0; attempt < e.opts.MaxRetries; attempt++ {
		answer, err := e.gen.Generate(ctx, prompt, doc)
		if err == nil {
			return answer, nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt == e.opts.MaxRetries-1 {
			break
		}

		delay := e.opts.RetryDelay*time.Duration(1<<attempt) + e.jitter()
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("generation failed, retrying")
		if err := e.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

// setAnswer stores a model answer in the named field. Empty and null answers leave
// the field absent.
func setAnswer(report *api.SOCReport, field, answer string) error {
	answer = stripFences(answer)
	if answer == "" || answer == "null" {
		return nil
	}

	kind, ok := api.KindOf(field)
	if !ok {
		return fmt.Errorf("%w: %s", api.ErrUnknownField, field)
	}

	value := []byte(answer)
	switch kind {
	case api.KindText:
		if !strings.HasPrefix(answer, `"`) || !json.Valid(value) {
			value, _ = json.Marshal(answer)
		}
	case api.KindList:
		if !json.Valid(value) {
			value, _ = json.Marshal(answer)
		}
	case api.KindObjects:
		if !json.Valid(value) {
			return errUnparseable
		}
	}
	return report.SetField(field, value)
}

// stripFences removes a surrounding Markdown code block.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
