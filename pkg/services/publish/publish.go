// Package publish uploads a validated report document to the bucket the site is served from.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/de-tools/soc-atlas/pkg/models/api"
	"github.com/rs/zerolog"
)

const contentType = "application/json"

var ErrEmptyDocument = errors.New("report document has no records")

// ObjectPutter writes an object to a bucket.
type ObjectPutter interface {
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

type Publisher struct {
	objects ObjectPutter
}

func NewPublisher(objects ObjectPutter) *Publisher {
	return &Publisher{objects: objects}
}

// Publish validates data and uploads it unchanged. Unlike the viewer, it rejects a
// document with any field of the wrong type. It returns the number of records.
func (p *Publisher) Publish(ctx context.Context, data []byte, bucket, key string) (int, error) {
	if bucket == "" || key == "" {
		return 0, errors.New("bucket and key are required")
	}

	reports, issues, err := api.DecodeReports(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("refusing to publish invalid document: %w", err)
	}
	if len(issues) > 0 {
		return 0, fmt.Errorf("refusing to publish invalid document (%d invalid fields): %w", len(issues), issues[0])
	}
	if len(reports) == 0 {
		return 0, ErrEmptyDocument
	}

	if err := p.objects.Put(ctx, bucket, key, data, contentType); err != nil {
		return 0, err
	}

	zerolog.Ctx(ctx).Info().
		Str("bucket", bucket).
		Str("key", key).
		Int("reports", len(reports)).
		Msg("report document published")
	return len(reports), nil
}

func (p *Publisher) PublishFile(ctx context.Context, path, bucket, key string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.Publish(ctx, data, bucket, key)
}
