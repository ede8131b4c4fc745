package extract

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

const pdfMIMEType = "application/pdf"

// Document is one source file handed to the model.
type Document struct {
	Name     string
	MIMEType string
	Data     []byte
}

// DocumentSource lists and reads the PDFs to extract from.
type DocumentSource interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, ref string) (Document, error)
}

// ObjectStore is the part of the S3 store the extractor reads from.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}

type DirSource struct {
	Dir string
}

func (s DirSource) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.Dir, err)
	}

	var refs []string
	for _, entry := range entries {
		if entry.IsDir() || !isPDF(entry.Name()) {
			continue
		}
		refs = append(refs, filepath.Join(s.Dir, entry.Name()))
	}
	sort.Strings(refs)
	return refs, nil
}

func (s DirSource) Open(_ context.Context, ref string) (Document, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	return Document{Name: filepath.Base(ref), MIMEType: pdfMIMEType, Data: data}, nil
}

type S3Source struct {
	Objects ObjectStore
	Bucket  string
	Prefix  string
}

func (s S3Source) List(ctx context.Context) ([]string, error) {
	keys, err := s.Objects.List(ctx, s.Bucket, s.Prefix)
	if err != nil {
		return nil, err
	}

	var refs []string
	for _, key := range keys {
		if isPDF(key) {
			refs = append(refs, key)
		}
	}
	sort.Strings(refs)
	return refs, nil
}

func (s S3Source) Open(ctx context.Context, ref string) (Document, error) {
	data, err := s.Objects.Get(ctx, s.Bucket, ref)
	if err != nil {
		return Document{}, err
	}
	return Document{Name: path.Base(ref), MIMEType: pdfMIMEType, Data: data}, nil
}

func isPDF(name string) bool {
	return strings.EqualFold(path.Ext(name), ".pdf")
}
