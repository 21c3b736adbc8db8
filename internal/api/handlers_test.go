package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/janekbaraniewski/calplot/internal/config"
	"github.com/janekbaraniewski/calplot/internal/source"
)

const commitsCSV = `ds,value
2019-01-01,4
2019-01-02,7
2019-03-15,2
2020-02-29,9
2020-12-31,1
`

type testServer struct {
	srv     *httptest.Server
	metrics *Collector
	store   *source.Store
}

func newTestServer(t *testing.T, cfg config.Config) *testServer {
	t.Helper()
	store, err := source.OpenStore(filepath.Join(t.TempDir(), "observations.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	reg := prometheus.NewRegistry()
	metrics := NewCollector("calplot", reg)
	h := NewHandler(store, cfg, metrics, reg)
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, metrics: metrics, store: store}
}

func (ts *testServer) do(t *testing.T, method, path, body, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t, config.DefaultConfig())

	resp := ts.do(t, "GET", "/health", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	if got := decode[map[string]string](t, resp)["status"]; got != "healthy" {
		t.Errorf("status = %q", got)
	}

	resp = ts.do(t, "GET", "/version", "", "")
	if got := decode[map[string]string](t, resp)["version"]; got == "" {
		t.Error("version should not be empty")
	}
}

func TestImportAndCalendar(t *testing.T) {
	ts := newTestServer(t, config.DefaultConfig())

	resp := ts.do(t, "POST", "/api/datasets/commits", commitsCSV, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("import status = %d", resp.StatusCode)
	}
	if got := decode[ImportResponse](t, resp); got.Rows != 5 {
		t.Errorf("imported rows = %d, want 5", got.Rows)
	}
	if got := testutil.ToFloat64(ts.metrics.ImportRowsTotal.WithLabelValues("commits")); got != 5 {
		t.Errorf("import_rows_total = %v, want 5", got)
	}

	resp = ts.do(t, "GET", "/api/datasets/commits/calendar", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("calendar status = %d", resp.StatusCode)
	}
	cal := decode[CalendarResponse](t, resp)
	if len(cal.Calendar.Panels) != 2 {
		t.Fatalf("panels = %d, want 2", len(cal.Calendar.Panels))
	}
	if cal.Calendar.Panels[0].Year != 2019 || cal.Calendar.Panels[1].Year != 2020 {
		t.Errorf("years = %d,%d", cal.Calendar.Panels[0].Year, cal.Calendar.Panels[1].Year)
	}
	if n := len(cal.Calendar.Panels[1].Grid.Slots); n != 366 {
		t.Errorf("2020 slots = %d, want 366", n)
	}
	if cal.Calendar.Scale.Min != 1 || cal.Calendar.Scale.Max != 9 {
		t.Errorf("scale = %+v, want 1..9", cal.Calendar.Scale)
	}
	if len(cal.Legend) == 0 {
		t.Error("legend should not be empty")
	}
}

func TestCalendarQueryOverrides(t *testing.T) {
	ts := newTestServer(t, config.DefaultConfig())
	ts.do(t, "POST", "/api/datasets/commits", commitsCSV, "")

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"month range", "?start_month=1&end_month=2", http.StatusOK},
		{"inverted range", "?start_month=6&end_month=2", http.StatusBadRequest},
		{"bad month", "?start_month=jan", http.StatusBadRequest},
		{"bad cmap", "?cmap_max=lots", http.StatusBadRequest},
		{"inverted cmap", "?cmap_min=10&cmap_max=1", http.StatusBadRequest},
		{"zero floor", "?zero_floor=true", http.StatusOK},
		{"bad zero floor", "?zero_floor=maybe", http.StatusBadRequest},
		{"non-finite cmap", "?cmap_min=NaN", http.StatusBadRequest},
		{"cmap bounds", "?cmap_min=0&cmap_max=10", http.StatusOK},
		{"unknown colorscale", "?colorscale=plaid", http.StatusBadRequest},
		{"text output", "?format=text", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, "GET", "/api/datasets/commits/calendar"+tt.query, "", "")
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}

	resp := ts.do(t, "GET", "/api/datasets/commits/calendar?start_month=1&end_month=2&cmap_min=0", "", "")
	cal := decode[CalendarResponse](t, resp)
	if cal.Calendar.Scale.Min != 0 || cal.Calendar.Scale.Max != 9 {
		t.Errorf("scale = %+v, want 0..9", cal.Calendar.Scale)
	}
	if n := len(cal.Calendar.Panels[0].Grid.Slots); n != 59 {
		t.Errorf("2019 Jan-Feb slots = %d, want 59", n)
	}

	resp = ts.do(t, "GET", "/api/datasets/commits/calendar?zero_floor=1", "", "")
	cal = decode[CalendarResponse](t, resp)
	if cal.Calendar.Scale.Min != 0 || cal.Calendar.Scale.Max != 9 {
		t.Errorf("floored scale = %+v, want 0..9", cal.Calendar.Scale)
	}
}

func TestMonthsAndDatasets(t *testing.T) {
	ts := newTestServer(t, config.DefaultConfig())
	ts.do(t, "POST", "/api/datasets/commits", commitsCSV, "")

	resp := ts.do(t, "GET", "/api/datasets/commits/months", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("months status = %d", resp.StatusCode)
	}
	months := decode[MonthsResponse](t, resp)
	if v, ok := months.Grid.Value(2019, 1); !ok || v != 11 {
		t.Errorf("2019-01 = %v,%v, want 11", v, ok)
	}
	if months.Scale.Max != 11 {
		t.Errorf("scale max = %v, want 11", months.Scale.Max)
	}

	resp = ts.do(t, "GET", "/api/datasets", "", "")
	sets := decode[[]source.Dataset](t, resp)
	if len(sets) != 1 || sets[0].Name != "commits" || sets[0].Rows != 5 {
		t.Errorf("datasets = %+v", sets)
	}
	if got := testutil.ToFloat64(ts.metrics.DatasetsInStore); got != 1 {
		t.Errorf("datasets gauge = %v", got)
	}
}

func TestMissingDataset(t *testing.T) {
	ts := newTestServer(t, config.DefaultConfig())

	for _, path := range []string{"/api/datasets/nope/calendar", "/api/datasets/nope/months"} {
		resp := ts.do(t, "GET", path, "", "")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", path, resp.StatusCode)
		}
		if got := decode[ErrorResponse](t, resp); got.Code != http.StatusNotFound {
			t.Errorf("%s body = %+v", path, got)
		}
	}

	resp := ts.do(t, "DELETE", "/api/datasets/nope", "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete status = %d, want 404", resp.StatusCode)
	}
}

func TestImportRejectsBadCSV(t *testing.T) {
	ts := newTestServer(t, config.DefaultConfig())

	tests := []struct {
		name string
		body string
		path string
	}{
		{"bad date", "ds,value\n2019/01/01,3\n", "/api/datasets/x"},
		{"missing column", "day,value\n2019-01-01,3\n", "/api/datasets/x"},
		{"empty", "ds,value\n", "/api/datasets/x"},
		{"only NaN", "ds,value\n2019-01-01,NaN\n", "/api/datasets/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, "POST", tt.path, tt.body, "")
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}

	resp := ts.do(t, "POST", "/api/datasets/x?date_column=day&date_format=%25d/%25m/%25Y", "day,value\n31/12/2019,3\n", "")
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("custom columns status = %d, want 201", resp.StatusCode)
	}
}

func TestSendJSONUnencodableBody(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.sendJSON(rec, map[string]float64{"v": math.NaN()}, http.StatusOK)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `"v"`) {
		t.Errorf("partial body written: %q", rec.Body.String())
	}
}

func TestWriteEndpointsRequireToken(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.APISecret = "s3cret"
	ts := newTestServer(t, cfg)

	if resp := ts.do(t, "POST", "/api/datasets/commits", commitsCSV, ""); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", resp.StatusCode)
	}
	bad, _ := IssueToken("other", "ci", time.Hour, time.Now())
	if resp := ts.do(t, "POST", "/api/datasets/commits", commitsCSV, bad); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong secret status = %d, want 401", resp.StatusCode)
	}

	token, err := IssueToken(cfg.APISecret, "ci", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if resp := ts.do(t, "POST", "/api/datasets/commits", commitsCSV, token); resp.StatusCode != http.StatusCreated {
		t.Errorf("valid token status = %d, want 201", resp.StatusCode)
	}
	if resp := ts.do(t, "GET", "/api/datasets/commits/calendar", "", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("reads should stay open, status = %d", resp.StatusCode)
	}
	if resp := ts.do(t, "DELETE", "/api/datasets/commits", "", token); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, config.DefaultConfig())
	ts.do(t, "GET", "/health", "", "")

	resp := ts.do(t, "GET", "/metrics", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
	if got := testutil.ToFloat64(ts.metrics.APIRequestsTotal.WithLabelValues("/health", "GET", "200")); got != 1 {
		t.Errorf("health requests = %v, want 1", got)
	}
}
