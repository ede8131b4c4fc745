package reports

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/de-tools/soc-atlas/pkg/adapters"
	"github.com/de-tools/soc-atlas/pkg/models/api"
	"github.com/de-tools/soc-atlas/pkg/viewer"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Handler struct {
	data *Dataset
}

func NewHandler(data *Dataset) *Handler {
	if data == nil {
		data = PendingDataset()
	}
	return &Handler{data: data}
}

// Asset serves the report document as fetched.
func (h *Handler) Asset(w http.ResponseWriter, r *http.Request) {
	if !h.data.Ready() {
		http.Error(w, "reports are not available", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(h.data.raw); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to write report document")
	}
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	if !h.data.Ready() {
		http.Error(w, "reports are not available", http.StatusServiceUnavailable)
		return
	}

	response := api.ReportIndex{
		Count:  len(h.data.reports),
		Titles: make([]string, 0, len(h.data.reports)),
	}
	for _, report := range h.data.reports {
		response.Titles = append(response.Titles, report.FileName)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode report index")
	}
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	param := chi.URLParam(r, "index")

	index, err := strconv.Atoi(param)
	if err != nil {
		http.Error(w, "report index must be an integer", http.StatusBadRequest)
		return
	}
	if !h.data.Ready() {
		http.Error(w, "reports are not available", http.StatusServiceUnavailable)
		return
	}
	if index < 0 || index >= len(h.data.reports) {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(adapters.MapReportDomainToApi(h.data.reports[index]))
	if err != nil {
		logger.Error().
			Err(err).
			Int("index", index).
			Msg("failed to encode report")
	}
}

type page struct {
	Loading  bool
	Title    string
	Position int
	Total    int
	Summary  panel
	Sections []pageSection
	CanPrev  bool
	CanNext  bool
	PrevURL  string
	NextURL  string
}

// panel is the data of the "panel" template: a titled list of fields.
type panel struct {
	Title  string
	Fields []viewer.Field
}

type pageSection struct {
	Label     string
	Open      bool
	Count     int
	Items     []string
	ToggleURL string
}

// Viewer renders one report. The query carries the view: i is the report index and
// open lists the expanded section numbers.
func (h *Handler) Viewer(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.ExecuteTemplate(w, "viewer", h.page(r.URL.Query())); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to render viewer page")
	}
}

func (h *Handler) page(query url.Values) page {
	if !h.data.Ready() {
		return page{Loading: true}
	}

	v := viewer.NewReady(h.data.reports)
	if i, err := strconv.Atoi(query.Get("i")); err == nil {
		v.Seek(i)
	}
	open := parseOpen(query.Get("open"), len(viewer.Categories))
	for i := range open {
		v.Toggle(i)
	}
	if v.Loading() {
		return page{Loading: true}
	}

	p := page{
		Title:    v.Title(),
		Position: v.Index() + 1,
		Total:    v.Len(),
		Summary:  panel{Title: "Summary", Fields: v.Summary()},
		CanPrev:  v.CanPrev(),
		CanNext:  v.CanNext(),
		PrevURL:  viewURL(v.Index()-1, nil),
		NextURL:  viewURL(v.Index()+1, nil),
	}
	for i, s := range v.Sections() {
		p.Sections = append(p.Sections, pageSection{
			Label:     s.Trigger.Label,
			Open:      s.Trigger.Open,
			Count:     s.Count,
			Items:     s.Items,
			ToggleURL: viewURL(v.Index(), flip(open, i)),
		})
	}
	return p
}

func parseOpen(raw string, n int) map[int]bool {
	open := map[int]bool{}
	for _, part := range strings.Split(raw, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || i < 0 || i >= n {
			continue
		}
		open[i] = true
	}
	return open
}

func flip(open map[int]bool, i int) map[int]bool {
	res := make(map[int]bool, len(open)+1)
	for k := range open {
		res[k] = true
	}
	if res[i] {
		delete(res, i)
	} else {
		res[i] = true
	}
	return res
}

func viewURL(index int, open map[int]bool) string {
	q := url.Values{}
	q.Set("i", strconv.Itoa(index))
	if len(open) > 0 {
		keys := make([]int, 0, len(open))
		for k := range open {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, strconv.Itoa(k))
		}
		q.Set("open", strings.Join(parts, ","))
	}
	return "/?" + q.Encode()
}
