package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/de-tools/soc-atlas/pkg/runtime/logging"
	"github.com/de-tools/soc-atlas/pkg/services/config"
	"github.com/de-tools/soc-atlas/pkg/services/extract"
	s3store "github.com/de-tools/soc-atlas/pkg/store/s3"
	"github.com/de-tools/soc-atlas/pkg/store/source"
	"github.com/rs/zerolog"
)

// ObjectStore is the bucket access the commands need.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}

// Env carries the root flags and the factories of external clients shared by all commands.
// HTTPClient has no timeout: a report fetch waits until it completes or its context ends.
type Env struct {
	ConfigPath string
	Debug      bool

	NewObjectStore func(ctx context.Context, cfg config.S3Config) (ObjectStore, error)
	NewGenerator   func(ctx context.Context, cfg config.GeminiConfig) (extract.Generator, io.Closer, error)
	NewProcessor   func(ctx context.Context, cfg config.DocAIConfig) (extract.EntityProcessor, io.Closer, error)
	HTTPClient     *http.Client
}

func NewEnv() *Env {
	return &Env{
		NewObjectStore: newS3Store,
		NewGenerator:   newGemini,
		NewProcessor:   newDocAI,
		HTTPClient:     &http.Client{},
	}
}

func (e *Env) Config() (*config.Config, error) {
	cfg, err := config.LoadConfig(e.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Context returns ctx carrying a logger that writes to w.
func (e *Env) Context(ctx context.Context, cfg *config.Config, w io.Writer) (context.Context, zerolog.Logger) {
	logger := logging.New(cfg.Log, w, e.Debug)
	return logger.WithContext(ctx), logger
}

// OpenSource resolves location, falling back to the configured data source.
func (e *Env) OpenSource(ctx context.Context, cfg *config.Config, location string) (*source.Source, error) {
	if location == "" {
		location = cfg.Data.Source
	}

	var objects source.ObjectGetter
	if strings.HasPrefix(location, "s3://") {
		store, err := e.NewObjectStore(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		objects = store
	}

	src, err := source.Open(location, e.HTTPClient, objects)
	if err != nil {
		return nil, fmt.Errorf("failed to open report source: %w", err)
	}
	return src, nil
}

func newS3Store(ctx context.Context, cfg config.S3Config) (ObjectStore, error) {
	awsCfg, err := s3store.LoadConfig(ctx, cfg.Region, cfg.Profile)
	if err != nil {
		return nil, err
	}
	return s3store.NewFromConfig(awsCfg), nil
}

func newGemini(ctx context.Context, cfg config.GeminiConfig) (extract.Generator, io.Closer, error) {
	g, err := extract.NewGemini(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return nil, nil, err
	}
	return g, g, nil
}

func newDocAI(ctx context.Context, cfg config.DocAIConfig) (extract.EntityProcessor, io.Closer, error) {
	d, err := extract.NewDocAI(ctx, cfg.Project, cfg.Location, cfg.Processor)
	if err != nil {
		return nil, nil, err
	}
	return d, d, nil
}
