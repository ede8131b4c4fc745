package viewer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/de-tools/soc-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleReports(n int) []domain.SOCReport {
	reports := make([]domain.SOCReport, 0, n)
	for i := 0; i < n; i++ {
		reports = append(reports, domain.SOCReport{
			FileName:       fmt.Sprintf("report-%d.pdf", i),
			ServiceAuditor: fmt.Sprintf("Auditor %d", i),
			ControlNumbers: []string{fmt.Sprintf("C%d.1", i), fmt.Sprintf("C%d.2", i)},
		})
	}
	return reports
}

func staticLoader(reports []domain.SOCReport, err error, calls *int32) Loader {
	return LoaderFunc(func(ctx context.Context) ([]domain.SOCReport, error) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		return reports, err
	})
}

func load(t *testing.T, v *Viewer, ctx context.Context) {
	t.Helper()
	select {
	case res := <-v.Start(ctx):
		v.Apply(res)
	case <-time.After(time.Second):
		t.Fatal("load did not complete")
	}
}

func TestViewer_Scenario(t *testing.T) {
	v := New(staticLoader([]domain.SOCReport{{
		FileName:       "A.pdf",
		ServiceAuditor: "Acme LLP",
		ControlNumbers: []string{"C1", "C2"},
	}}, nil, nil))
	defer v.Close()

	load(t, v, context.Background())

	require.Equal(t, StatusReady, v.Status())
	assert.Equal(t, 0, v.Index())
	assert.Equal(t, "A.pdf", v.Title())
	assert.Equal(t, Field{Label: "Auditor", Value: "Acme LLP"}, v.Summary()[0])
	assert.False(t, v.CanNext())
	assert.False(t, v.CanPrev())

	controls := CategoryIndex("control-numbers")
	require.GreaterOrEqual(t, controls, 0)
	assert.Nil(t, v.Sections()[controls].Items)

	v.Toggle(controls)
	assert.Equal(t, []string{"C1", "C2"}, v.Sections()[controls].Items)
}

func TestViewer_LoadsOnce(t *testing.T) {
	var calls int32
	v := New(staticLoader(sampleReports(3), nil, &calls))
	defer v.Close()

	first := v.Start(context.Background())
	second := v.Start(context.Background())
	assert.Equal(t, first, second)

	v.Apply(<-first)
	v.Next()
	v.Next()
	v.Prev()
	_ = v.Start(context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestViewer_LoadFailureStaysLoading(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := logger.WithContext(context.Background())

	v := New(staticLoader(nil, errors.New("connection refused"), nil))
	defer v.Close()

	load(t, v, ctx)

	assert.Equal(t, StatusLoading, v.Status())
	assert.True(t, v.Loading())
	assert.Equal(t, "", v.Title())
	assert.False(t, v.CanNext())
	assert.False(t, v.CanPrev())
	for _, s := range v.Sections() {
		assert.Zero(t, s.Count)
	}
	assert.Contains(t, buf.String(), "failed to load reports")
	assert.Contains(t, buf.String(), "connection refused")
}

func TestViewer_EmptyListShowsLoading(t *testing.T) {
	v := New(staticLoader([]domain.SOCReport{}, nil, nil))
	defer v.Close()

	load(t, v, context.Background())

	assert.True(t, v.Loading())
	assert.False(t, v.CanNext())
}

func TestViewer_ResultAfterCloseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	v := New(LoaderFunc(func(ctx context.Context) ([]domain.SOCReport, error) {
		<-release
		return sampleReports(2), nil
	}))

	results := v.Start(context.Background())
	v.Close()
	close(release)

	v.Apply(<-results)
	assert.True(t, v.Loading())
}

func TestViewer_CloseCancelsLoad(t *testing.T) {
	v := New(LoaderFunc(func(ctx context.Context) ([]domain.SOCReport, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))

	results := v.Start(context.Background())
	v.Close()

	res := <-results
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestViewer_NavigationBounds(t *testing.T) {
	v := NewReady(sampleReports(3))

	assert.False(t, v.CanPrev())
	v.Prev()
	assert.Equal(t, 0, v.Index())

	v.Next()
	v.Next()
	assert.Equal(t, 2, v.Index())
	assert.False(t, v.CanNext())
	v.Next()
	assert.Equal(t, 2, v.Index())
	assert.Equal(t, "report-2.pdf", v.Title())
}

func TestViewer_NextThenPrevRoundTrip(t *testing.T) {
	reports := sampleReports(4)
	for i := 0; i < len(reports)-1; i++ {
		t.Run(fmt.Sprintf("index %d", i), func(t *testing.T) {
			v := NewReady(reports)
			v.Seek(i)
			v.Next()
			assert.Equal(t, reports[i+1].FileName, v.Title())
			v.Prev()
			assert.Equal(t, i, v.Index())
			assert.Equal(t, reports[i].FileName, v.Title())
		})
	}
}

func TestViewer_Seek(t *testing.T) {
	v := NewReady(sampleReports(3))

	v.Seek(10)
	assert.Equal(t, 2, v.Index())
	v.Seek(-4)
	assert.Equal(t, 0, v.Index())

	empty := NewReady(nil)
	empty.Seek(3)
	assert.Equal(t, 0, empty.Index())
}

func TestViewer_SectionsAreIndependent(t *testing.T) {
	v := NewReady(sampleReports(1))

	v.Toggle(0)
	v.Toggle(3)
	for i, s := range v.Sections() {
		assert.Equal(t, i == 0 || i == 3, s.Trigger.Open, "section %d", i)
	}

	v.Toggle(3)
	assert.True(t, v.Disclosure(0).IsOpen())
	assert.False(t, v.Disclosure(3).IsOpen())
}

func TestViewer_ToggleTwiceRemovesContent(t *testing.T) {
	v := NewReady(sampleReports(1))
	idx := CategoryIndex("control-numbers")

	v.Toggle(idx)
	require.NotNil(t, v.Sections()[idx].Items)
	v.Toggle(idx)
	assert.Nil(t, v.Sections()[idx].Items)
}

func TestViewer_NavigationClosesSections(t *testing.T) {
	v := NewReady(sampleReports(2))
	v.Toggle(1)
	v.Next()
	assert.False(t, v.Disclosure(1).IsOpen())
}

func TestViewer_MissingCollectionRendersEmpty(t *testing.T) {
	v := NewReady([]domain.SOCReport{{FileName: "bare.pdf"}})

	for i := range Categories {
		v.Toggle(i)
	}
	for _, s := range v.Sections() {
		assert.NotNil(t, s.Items, s.Key)
		assert.Empty(t, s.Items, s.Key)
	}
}

func TestViewer_SectionItemsFormatting(t *testing.T) {
	v := NewReady([]domain.SOCReport{{
		FileName:          "A.pdf",
		ServicesProvided:  []domain.ServiceProvided{{Service: "Payroll", Description: "Payroll processing"}, {Service: "Hosting"}},
		ReportsInScope:    []domain.ReportReference{{ReportName: "Payroll", SourcePage: "12", SourceControl: "CO1"}},
		ControlExceptions: "Two exceptions noted",
	}})

	assert.Equal(t, []string{"Payroll: Payroll processing", "Hosting"}, v.SectionItems(CategoryIndex("services")))
	assert.Equal(t, []string{"Payroll - page 12 - control CO1"}, v.SectionItems(CategoryIndex("reports-in-scope")))
	assert.Equal(t, []string{"Two exceptions noted"}, v.SectionItems(CategoryIndex("control-exceptions")))
	assert.Empty(t, v.SectionItems(99))
}

func TestDisclosure(t *testing.T) {
	d := NewDisclosure("Control Numbers")

	assert.Equal(t, Trigger{Label: "Control Numbers"}, d.Trigger())
	assert.Nil(t, d.Content([]string{"C1"}))

	d.Toggle()
	assert.Equal(t, Trigger{Label: "Control Numbers", Open: true}, d.Trigger())
	assert.Equal(t, []string{"C1"}, d.Content([]string{"C1"}))
	assert.Equal(t, []string{}, d.Content(nil))

	d.Toggle()
	assert.False(t, d.IsOpen())
}

func TestDisclosure_WithoutStatePanics(t *testing.T) {
	var d *Disclosure
	assert.Panics(t, func() { d.Trigger() })
	assert.Panics(t, func() { d.Content(nil) })
}
