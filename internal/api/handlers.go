// Package api serves stored datasets as calendar heatmap data over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/janekbaraniewski/calplot/internal/config"
	"github.com/janekbaraniewski/calplot/internal/core"
	"github.com/janekbaraniewski/calplot/internal/palette"
	"github.com/janekbaraniewski/calplot/internal/render"
	"github.com/janekbaraniewski/calplot/internal/source"
	"github.com/janekbaraniewski/calplot/internal/version"
)

const maxImportBytes = 32 << 20

type Handler struct {
	store    *source.Store
	cfg      config.Config
	metrics  *Collector
	gatherer prometheus.Gatherer
	secret   string
}

func NewHandler(store *source.Store, cfg config.Config, metrics *Collector, gatherer prometheus.Gatherer) *Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handler{
		store:    store,
		cfg:      cfg,
		metrics:  metrics,
		gatherer: gatherer,
		secret:   cfg.APISecret,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type CalendarResponse struct {
	Dataset  string               `json:"dataset"`
	Calendar core.Calendar        `json:"calendar"`
	Legend   []palette.LegendStop `json:"legend"`
}

type MonthsResponse struct {
	Dataset string               `json:"dataset"`
	Grid    core.MonthGrid       `json:"grid"`
	Scale   core.ColorScaleRange `json:"scale"`
}

type ImportResponse struct {
	Dataset string `json:"dataset"`
	Rows    int    `json:"rows"`
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.Use(h.instrument)
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/version", h.Version).Methods("GET")
	router.HandleFunc("/api/datasets", h.ListDatasets).Methods("GET")
	router.HandleFunc("/api/datasets/{name}/calendar", h.GetCalendar).Methods("GET")
	router.HandleFunc("/api/datasets/{name}/months", h.GetMonths).Methods("GET")
	router.HandleFunc("/api/datasets/{name}", h.requireToken(h.ImportDataset)).Methods("POST", "PUT")
	router.HandleFunc("/api/datasets/{name}", h.requireToken(h.DeleteDataset)).Methods("DELETE")
	router.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	h.sendJSON(w, status, http.StatusOK)
}

func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, version.Get(), http.StatusOK)
}

// ListDatasets handles GET /api/datasets
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.store.Datasets(r.Context())
	if err != nil {
		log.Printf("[api] listing datasets: %v", err)
		h.sendError(w, r, "failed to list datasets", http.StatusInternalServerError)
		return
	}
	h.metrics.DatasetsInStore.Set(float64(len(sets)))
	if sets == nil {
		sets = []source.Dataset{}
	}
	h.sendJSON(w, sets, http.StatusOK)
}

// GetCalendar handles GET /api/datasets/{name}/calendar. Query parameters
// override the configured start_month, end_month, week_policy, month_ticks,
// missing, zero_floor, cmap_min, cmap_max and colorscale.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	opts, err := h.composeOptions(r)
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	series, ok := h.loadSeries(w, r, name)
	if !ok {
		return
	}

	start := time.Now()
	cal, err := core.Compose(r.Context(), series, opts)
	if err != nil {
		h.sendComposeError(w, r, err)
		return
	}
	h.metrics.RecordCompose(len(cal.Panels), time.Since(start))

	sc, err := h.scale(r, cal.Scale)
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		th := render.ThemeByName(h.cfg.Theme).WithMonthLine(h.cfg.MonthLines.Color)
		out := render.RenderCalendar(cal, sc, render.Options{
			Theme:     th,
			Title:     h.cfg.Title,
			Gap:       h.cfg.Gap,
			MonthGap:  h.cfg.MonthGap,
			ShowScale: h.cfg.ShowScale,
		})
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(out + "\n"))
		return
	}

	h.sendJSON(w, CalendarResponse{
		Dataset:  name,
		Calendar: cal,
		Legend:   sc.Legend(5),
	}, http.StatusOK)
}

// GetMonths handles GET /api/datasets/{name}/months
func (h *Handler) GetMonths(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	series, ok := h.loadSeries(w, r, name)
	if !ok {
		return
	}
	grid := core.AggregateByMonth(series)
	h.sendJSON(w, MonthsResponse{Dataset: name, Grid: grid, Scale: grid.Scale()}, http.StatusOK)
}

// ImportDataset handles POST /api/datasets/{name} with a CSV body. The
// date_column, value_column, label_column and date_format query parameters
// describe the table.
func (h *Handler) ImportDataset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	q := r.URL.Query()
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	defer body.Close()

	series, err := source.ReadCSV(body, source.CSVOptions{
		DateColumn:  q.Get("date_column"),
		ValueColumn: q.Get("value_column"),
		LabelColumn: q.Get("label_column"),
		Format:      h.dateFormat(q.Get("date_format")),
	})
	if err != nil {
		h.metrics.RecordAPIError("invalid_csv", "import")
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	n, err := h.store.Import(r.Context(), name, series)
	if err != nil {
		log.Printf("[api] importing %s: %v", name, err)
		h.sendError(w, r, "failed to store observations", http.StatusInternalServerError)
		return
	}
	h.metrics.RecordImport(name, n)
	h.sendJSON(w, ImportResponse{Dataset: name, Rows: n}, http.StatusCreated)
}

// DeleteDataset handles DELETE /api/datasets/{name}
func (h *Handler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	n, err := h.store.Delete(r.Context(), name)
	if err != nil {
		log.Printf("[api] deleting %s: %v", name, err)
		h.sendError(w, r, "failed to delete dataset", http.StatusInternalServerError)
		return
	}
	if n == 0 {
		h.sendError(w, r, "dataset not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) loadSeries(w http.ResponseWriter, r *http.Request, name string) (core.Series, bool) {
	series, err := h.store.Observations(r.Context(), name, time.Time{}, time.Time{})
	if err != nil {
		log.Printf("[api] loading %s: %v", name, err)
		h.sendError(w, r, "failed to load observations", http.StatusInternalServerError)
		return nil, false
	}
	if len(series) == 0 {
		h.sendError(w, r, "dataset not found", http.StatusNotFound)
		return nil, false
	}
	return series, true
}

func (h *Handler) composeOptions(r *http.Request) (core.ComposeOptions, error) {
	opts := h.cfg.ComposeOptions()
	q := r.URL.Query()

	if v := q.Get("start_month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New("start_month must be an integer")
		}
		opts.Range.Start = m
	}
	if v := q.Get("end_month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New("end_month must be an integer")
		}
		opts.Range.End = m
	}
	if err := opts.Range.Validate(); err != nil {
		return opts, err
	}
	if v := q.Get("week_policy"); v != "" {
		opts.Weeks = core.ParseWeekPolicy(v)
	}
	if v := q.Get("month_ticks"); v != "" {
		opts.Ticks = core.ParseTickStrategy(v)
	}
	if v := q.Get("missing"); v != "" {
		opts.Missing = core.ParseMissingPolicy(v)
	}
	if v := q.Get("zero_floor"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("zero_floor must be a boolean")
		}
		opts.ZeroFloor = b
	}
	for key, dst := range map[string]**float64{"cmap_min": &opts.ScaleMin, "cmap_max": &opts.ScaleMax} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return opts, errors.New(key + " must be a number")
		}
		*dst = core.Float64Ptr(f)
	}
	if opts.ScaleMin != nil && opts.ScaleMax != nil && *opts.ScaleMin > *opts.ScaleMax {
		return opts, errors.New("cmap_min must not exceed cmap_max")
	}
	return opts, nil
}

func (h *Handler) scale(r *http.Request, rng core.ColorScaleRange) (palette.Scale, error) {
	if name := r.URL.Query().Get("colorscale"); name != "" {
		return palette.Named(name, rng)
	}
	return palette.ForConfig(h.cfg.ColorScale, h.cfg.CustomColorScale, rng)
}

func (h *Handler) dateFormat(v string) string {
	if v != "" {
		return v
	}
	return h.cfg.DateFormat
}

func (h *Handler) sendComposeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidRange):
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
	case errors.Is(err, core.ErrNoData):
		h.sendError(w, r, err.Error(), http.StatusNotFound)
	case errors.Is(err, context.Canceled):
		h.sendError(w, r, "request cancelled", http.StatusServiceUnavailable)
	default:
		log.Printf("[api] composing calendar: %v", err)
		h.sendError(w, r, "failed to compose calendar", http.StatusInternalServerError)
	}
}

// sendJSON sends a JSON response
func (h *Handler) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Printf("[api] encoding response: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.Printf("[api] writing response: %v", err)
	}
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIError(http.StatusText(statusCode), routeName(r))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}
	h.sendJSON(w, response, statusCode)
}
