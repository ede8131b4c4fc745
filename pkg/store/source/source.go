// Package source resolves where the report document lives and fetches it.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/de-tools/soc-atlas/pkg/adapters"
	"github.com/de-tools/soc-atlas/pkg/models/api"
	"github.com/de-tools/soc-atlas/pkg/models/domain"
	"github.com/de-tools/soc-atlas/pkg/store/duckdb"
	duckreports "github.com/de-tools/soc-atlas/pkg/store/duckdb/reports"
	s3store "github.com/de-tools/soc-atlas/pkg/store/s3"
	"github.com/rs/zerolog"
)

var ErrNoS3 = errors.New("s3 location requires an s3 store")

const duckDBSuffix = ".duckdb"

// Fetcher returns the raw report document.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// ObjectGetter reads an object from a bucket.
type ObjectGetter interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// Source is a report document at a known location.
type Source struct {
	Location string
	fetcher  Fetcher
}

func New(location string, fetcher Fetcher) *Source {
	return &Source{Location: location, fetcher: fetcher}
}

// Open picks a fetcher for location: http(s) URLs, s3://bucket/key, a DuckDB file
// written by the duckdb export, or a local path.
// objects may be nil when no s3 location is expected.
func Open(location string, client *http.Client, objects ObjectGetter) (*Source, error) {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return New(location, &HTTPFetcher{Client: client, URL: location}), nil
	case strings.HasPrefix(location, "s3://"):
		if objects == nil {
			return nil, ErrNoS3
		}
		bucket, key, err := s3store.ParseURI(location)
		if err != nil {
			return nil, err
		}
		return New(location, &S3Fetcher{Objects: objects, Bucket: bucket, Key: key}), nil
	case location == "":
		return nil, errors.New("report location is empty")
	case strings.HasSuffix(strings.ToLower(location), duckDBSuffix):
		return New(location, &DuckDBFetcher{Path: location}), nil
	default:
		return New(location, &FileFetcher{Path: location}), nil
	}
}

func (s *Source) Fetch(ctx context.Context) ([]byte, error) {
	return s.fetcher.Fetch(ctx)
}

// Load fetches and validates the document.
func (s *Source) Load(ctx context.Context) ([]domain.SOCReport, error) {
	zerolog.Ctx(ctx).Debug().Str("location", s.Location).Msg("fetching reports")

	data, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	reports, err := Decode(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("invalid report document at %s: %w", s.Location, err)
	}
	return reports, nil
}

// Decode validates a raw report document and maps it to domain records. Fields of
// the wrong type are logged and left empty.
func Decode(ctx context.Context, data []byte) ([]domain.SOCReport, error) {
	reports, issues, err := api.DecodeReports(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	for _, issue := range issues {
		logger.Warn().
			Err(issue.Err).
			Int("record", issue.Index).
			Str("field", issue.Field).
			Msg("dropping invalid report field")
	}
	return adapters.MapReportsApiToDomain(reports), nil
}

type HTTPFetcher struct {
	Client *http.Client
	URL    string
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", f.URL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", f.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", f.URL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.URL, err)
	}
	return data, nil
}

type FileFetcher struct {
	Path string
}

func (f *FileFetcher) Fetch(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	return data, nil
}

type S3Fetcher struct {
	Objects ObjectGetter
	Bucket  string
	Key     string
}

func (f *S3Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	return f.Objects.Get(ctx, f.Bucket, f.Key)
}

// DuckDBFetcher reads the records stored in a DuckDB file and encodes them as a
// report document.
type DuckDBFetcher struct {
	Path string
}

func (f *DuckDBFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if _, err := os.Stat(f.Path); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Path, err)
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: f.Path})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	defer db.Close()

	store, err := duckreports.NewStore(db)
	if err != nil {
		return nil, err
	}
	records, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	return json.Marshal(records)
}
