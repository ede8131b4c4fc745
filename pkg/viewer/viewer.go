// Package viewer holds the state of the single-record report viewer: which record is
// shown, which sections are expanded, and the one-time load of the report list.
package viewer

import (
	"context"
	"sync"

	"github.com/de-tools/soc-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// DefaultPath is where the report document is served next to the application.
const DefaultPath = "/data/soc_reports.json"

type Status int

const (
	StatusLoading Status = iota
	StatusReady
)

func (s Status) String() string {
	if s == StatusReady {
		return "ready"
	}
	return "loading"
}

// Loader fetches the report list.
type Loader interface {
	Load(ctx context.Context) ([]domain.SOCReport, error)
}

type LoaderFunc func(ctx context.Context) ([]domain.SOCReport, error)

func (f LoaderFunc) Load(ctx context.Context) ([]domain.SOCReport, error) {
	return f(ctx)
}

type LoadResult struct {
	Reports []domain.SOCReport
	Err     error
}

// Field is a labeled value of the summary panel.
type Field struct {
	Label string
	Value string
}

// Section pairs a category's disclosure state with the items it currently shows.
type Section struct {
	Key     string
	Trigger Trigger
	Count   int
	Items   []string
}

// Viewer is not safe for concurrent use; callers drive it from a single event loop.
type Viewer struct {
	loader Loader

	once    sync.Once
	results chan LoadResult
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool

	status   Status
	reports  []domain.SOCReport
	index    int
	sections []*Disclosure
}

func New(loader Loader) *Viewer {
	return &Viewer{
		loader:   loader,
		sections: newSections(),
	}
}

// NewReady returns a viewer that already holds reports and never loads.
func NewReady(reports []domain.SOCReport) *Viewer {
	v := New(nil)
	v.setReports(reports)
	return v
}

// Start issues the load exactly once. Every call returns the same channel, which
// receives a single result. The load runs until it finishes or Close is called.
func (v *Viewer) Start(ctx context.Context) <-chan LoadResult {
	v.once.Do(func() {
		v.results = make(chan LoadResult, 1)
		v.ctx, v.cancel = context.WithCancel(ctx)
		if v.loader == nil {
			v.results <- LoadResult{Reports: v.reports}
			return
		}

		go func(ctx context.Context) {
			reports, err := v.loader.Load(ctx)
			v.results <- LoadResult{Reports: reports, Err: err}
		}(v.ctx)
	})
	return v.results
}

// Apply records the outcome of the load. A failure is logged and the viewer keeps
// showing its loading state; nothing retries.
func (v *Viewer) Apply(res LoadResult) {
	if v.closed || v.status == StatusReady {
		return
	}

	logger := zerolog.Ctx(v.context())
	if res.Err != nil {
		logger.Error().Err(res.Err).Msg("failed to load reports")
		return
	}

	v.setReports(res.Reports)
	logger.Debug().Int("reports", len(res.Reports)).Msg("reports loaded")
}

// Close abandons a pending load. A result that arrives afterwards is ignored.
func (v *Viewer) Close() {
	v.closed = true
	if v.cancel != nil {
		v.cancel()
	}
}

func (v *Viewer) Status() Status {
	return v.status
}

func (v *Viewer) Len() int {
	return len(v.reports)
}

func (v *Viewer) Index() int {
	return v.index
}

func (v *Viewer) Current() (domain.SOCReport, bool) {
	if v.status != StatusReady || len(v.reports) == 0 {
		return domain.SOCReport{}, false
	}
	return v.reports[v.index], true
}

// Loading reports whether there is no record to show yet. An empty report list
// keeps the viewer in this state too.
func (v *Viewer) Loading() bool {
	_, ok := v.Current()
	return !ok
}

// Title is the file name of the current report.
func (v *Viewer) Title() string {
	r, _ := v.Current()
	return r.FileName
}

func (v *Viewer) CanPrev() bool {
	return v.status == StatusReady && v.index > 0
}

func (v *Viewer) CanNext() bool {
	return v.status == StatusReady && v.index < len(v.reports)-1
}

func (v *Viewer) Prev() {
	if v.CanPrev() {
		v.moveTo(v.index - 1)
	}
}

func (v *Viewer) Next() {
	if v.CanNext() {
		v.moveTo(v.index + 1)
	}
}

// Seek moves to i clamped to the valid range.
func (v *Viewer) Seek(i int) {
	if i > len(v.reports)-1 {
		i = len(v.reports) - 1
	}
	if i < 0 {
		i = 0
	}
	if i != v.index {
		v.moveTo(i)
	}
}

func (v *Viewer) Summary() []Field {
	r, _ := v.Current()
	return []Field{
		{Label: "Auditor", Value: r.ServiceAuditor},
		{Label: "Report Type", Value: r.ReportType},
		{Label: "Period", Value: r.ReportPeriod},
		{Label: "Opinion Date", Value: r.OpinionDate},
		{Label: "Opinion Type", Value: r.OpinionType},
	}
}

// Disclosure returns the state of section i, or nil when i is out of range.
func (v *Viewer) Disclosure(i int) *Disclosure {
	if i < 0 || i >= len(v.sections) {
		return nil
	}
	return v.sections[i]
}

// Toggle flips section i only. Out of range indexes are ignored.
func (v *Viewer) Toggle(i int) {
	if d := v.Disclosure(i); d != nil {
		d.Toggle()
	}
}

// SectionItems lists everything section i holds for the current report,
// whether or not the section is open.
func (v *Viewer) SectionItems(i int) []string {
	if i < 0 || i >= len(Categories) {
		return []string{}
	}
	r, ok := v.Current()
	if !ok {
		return []string{}
	}
	items := Categories[i].Items(r)
	if items == nil {
		return []string{}
	}
	return items
}

// Sections describes every section of the current report for rendering.
// Items is nil for closed sections.
func (v *Viewer) Sections() []Section {
	res := make([]Section, 0, len(v.sections))
	for i, d := range v.sections {
		items := v.SectionItems(i)
		res = append(res, Section{
			Key:     Categories[i].Key,
			Trigger: d.Trigger(),
			Count:   len(items),
			Items:   d.Content(items),
		})
	}
	return res
}

func (v *Viewer) setReports(reports []domain.SOCReport) {
	v.reports = reports
	v.status = StatusReady
	v.index = 0
	v.sections = newSections()
}

// moveTo changes the current report. Sections belong to the report they were
// opened on, so a new set starts closed.
func (v *Viewer) moveTo(i int) {
	v.index = i
	v.sections = newSections()
}

func (v *Viewer) context() context.Context {
	if v.ctx == nil {
		return context.Background()
	}
	return v.ctx
}

func newSections() []*Disclosure {
	sections := make([]*Disclosure, 0, len(Categories))
	for _, c := range Categories {
		sections = append(sections, NewDisclosure(c.Label))
	}
	return sections
}
