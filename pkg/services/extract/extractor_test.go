package extract

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/de-tools/soc-atlas/pkg/models/api"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type generatorFunc func(ctx context.Context, prompt string, doc Document) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string, doc Document) (string, error) {
	return f(ctx, prompt, doc)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string, doc Document) (string, error) {
	args := m.Called(ctx, prompt, doc)
	return args.String(0), args.Error(1)
}

type mockObjects struct {
	mock.Mock
}

func (m *mockObjects) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockObjects) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	args := m.Called(ctx, bucket, prefix)
	return args.Get(0).([]string), args.Error(1)
}

var auditorPrompt = Prompt{Field: "ServiceAuditor", Text: "auditor?"}
var controlsPrompt = Prompt{Field: "ControlNumber", Text: "controls?"}

// newTestExtractor never waits between retries and records the delays it would use.
func newTestExtractor(gen Generator, opts Options) (*Extractor, *[]time.Duration) {
	e := NewExtractor(gen, opts)
	var mu sync.Mutex
	delays := &[]time.Duration{}
	e.sleep = func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		*delays = append(*delays, d)
		return ctx.Err()
	}
	e.jitter = func() time.Duration { return 0 }
	return e, delays
}

func TestExtract_Fields(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, "auditor?", mock.Anything).Return("Acme LLP", nil)
	gen.On("Generate", mock.Anything, "controls?", mock.Anything).Return("```json\n[\"C1\", \"C2\"]\n```", nil)

	e, _ := newTestExtractor(gen, Options{Prompts: []Prompt{auditorPrompt, controlsPrompt}})

	report, err := e.Extract(context.Background(), Document{Name: "A.pdf", MIMEType: pdfMIMEType})

	require.NoError(t, err)
	assert.Equal(t, "A.pdf", report.FileName)
	assert.Equal(t, api.Text("Acme LLP"), report.ServiceAuditor)
	assert.Equal(t, api.StringList{"C1", "C2"}, report.ControlNumber)
	gen.AssertExpectations(t)
}

func TestExtract_RetriesWithBackoff(t *testing.T) {
	calls := 0
	gen := generatorFunc(func(ctx context.Context, prompt string, doc Document) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("resource exhausted")
		}
		return "Acme LLP", nil
	})

	e, delays := newTestExtractor(gen, Options{
		MaxRetries: 5,
		RetryDelay: time.Second,
		Prompts:    []Prompt{auditorPrompt},
	})

	report, err := e.Extract(context.Background(), Document{Name: "A.pdf"})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays)
	assert.Equal(t, api.Text("Acme LLP"), report.ServiceAuditor)
}

func TestExtract_ExhaustedRetriesLeaveFieldEmpty(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := logger.WithContext(context.Background())

	calls := 0
	gen := generatorFunc(func(ctx context.Context, prompt string, doc Document) (string, error) {
		calls++
		if prompt == auditorPrompt.Text {
			return "", errors.New("quota exceeded")
		}
		return `["C1"]`, nil
	})

	e, delays := newTestExtractor(gen, Options{
		MaxRetries: 3,
		RetryDelay: 10 * time.Millisecond,
		Prompts:    []Prompt{auditorPrompt, controlsPrompt},
	})

	report, err := e.Extract(ctx, Document{Name: "A.pdf"})

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Len(t, *delays, 2)
	assert.Empty(t, report.ServiceAuditor)
	assert.Equal(t, api.StringList{"C1"}, report.ControlNumber)
	assert.Contains(t, buf.String(), "quota exceeded")
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := generatorFunc(func(ctx context.Context, prompt string, doc Document) (string, error) {
		cancel()
		return "", ctx.Err()
	})

	e, _ := newTestExtractor(gen, Options{Prompts: []Prompt{auditorPrompt, controlsPrompt}})

	_, err := e.Extract(ctx, Document{Name: "A.pdf"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetAnswer(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		answer  string
		want    api.SOCReport
		wantErr bool
	}{
		{name: "plain text", field: "SOC1ReportType", answer: "Type 2", want: api.SOCReport{SOC1ReportType: "Type 2"}},
		{name: "quoted text", field: "SOC1ReportType", answer: `"Type 2"`, want: api.SOCReport{SOC1ReportType: "Type 2"}},
		{name: "date text", field: "AuditorOpinionDate", answer: "2024-03-31", want: api.SOCReport{AuditorOpinionDate: "2024-03-31"}},
		{name: "null", field: "ServiceAuditor", answer: "null", want: api.SOCReport{}},
		{name: "fenced null", field: "ControlNumber", answer: "```null```", want: api.SOCReport{}},
		{name: "empty", field: "ServiceAuditor", answer: "  ", want: api.SOCReport{}},
		{name: "bare name for list", field: "ThirdPartyServiceProvider", answer: "Cloud Hosting Inc.", want: api.SOCReport{ThirdPartyServiceProvider: api.StringList{"Cloud Hosting Inc."}}},
		{name: "list", field: "SubserviceProvider", answer: `["AWS", "Okta"]`, want: api.SOCReport{SubserviceProvider: api.StringList{"AWS", "Okta"}}},
		{
			name:   "objects",
			field:  "CUECDescription",
			answer: "```json\n[{\"number\": \"CUEC-1\", \"description\": \"Review access\"}]\n```",
			want: api.SOCReport{CUECDescription: []api.NumberedDescription{
				{Number: "CUEC-1", Description: "Review access"},
			}},
		},
		{name: "objects as prose", field: "ServicesProvided", answer: "Payroll processing", wantErr: true},
		{name: "object for list", field: "ControlNumber", answer: `{"id": "C1"}`, wantErr: true},
		{name: "unknown field", field: "Remarks", answer: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var report api.SOCReport
			err := setAnswer(&report, tt.field, tt.answer)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, report)
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := map[string]string{
		"plain":                  "plain",
		"  padded \n":            "padded",
		"```json\n[1, 2]\n```":   "[1, 2]",
		"```\n\"Type 1\"\n```\n": `"Type 1"`,
		"```null```":             "null",
	}
	for in, want := range tests {
		assert.Equal(t, want, stripFences(in), in)
	}
}

func TestRun_DirSource(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "A.PDF", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.7 "+name), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755))

	var mu sync.Mutex
	seen := map[string]string{}
	gen := generatorFunc(func(ctx context.Context, prompt string, doc Document) (string, error) {
		mu.Lock()
		seen[doc.Name] = doc.MIMEType
		mu.Unlock()
		return "Auditor of " + doc.Name, nil
	})

	e, _ := newTestExtractor(gen, Options{Concurrency: 2, Prompts: []Prompt{auditorPrompt}})

	reports, err := e.Run(context.Background(), DirSource{Dir: dir})

	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "A.PDF", reports[0].FileName)
	assert.Equal(t, api.Text("Auditor of A.PDF"), reports[0].ServiceAuditor)
	assert.Equal(t, "b.pdf", reports[1].FileName)
	assert.Equal(t, map[string]string{"A.PDF": pdfMIMEType, "b.pdf": pdfMIMEType}, seen)
}

func TestRun_MissingDir(t *testing.T) {
	e, _ := newTestExtractor(generatorFunc(nil), Options{})

	_, err := e.Run(context.Background(), DirSource{Dir: filepath.Join(t.TempDir(), "missing")})

	assert.Error(t, err)
}

func TestRun_S3SourceSkipsUnreadable(t *testing.T) {
	objects := new(mockObjects)
	objects.On("List", mock.Anything, "soc-bucket", "reports/").
		Return([]string{"reports/z.pdf", "reports/readme.md", "reports/a.pdf"}, nil)
	objects.On("Get", mock.Anything, "soc-bucket", "reports/a.pdf").
		Return(nil, errors.New("access denied"))
	objects.On("Get", mock.Anything, "soc-bucket", "reports/z.pdf").
		Return([]byte("%PDF-1.7"), nil)

	gen := generatorFunc(func(ctx context.Context, prompt string, doc Document) (string, error) {
		return "Acme LLP", nil
	})
	e, _ := newTestExtractor(gen, Options{Prompts: []Prompt{auditorPrompt}})

	reports, err := e.Run(context.Background(), S3Source{Objects: objects, Bucket: "soc-bucket", Prefix: "reports/"})

	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "z.pdf", reports[0].FileName)
	objects.AssertNotCalled(t, "Get", mock.Anything, "soc-bucket", "reports/readme.md")
}

func TestDefaultPrompts_CoverKnownFields(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range DefaultPrompts {
		_, ok := api.KindOf(p.Field)
		assert.True(t, ok, p.Field)
		assert.False(t, seen[p.Field], "duplicate prompt for %s", p.Field)
		seen[p.Field] = true
	}
	assert.Len(t, DefaultPrompts, len(api.FieldNames())-1)
}
