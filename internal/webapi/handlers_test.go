package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/leaderboard"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/snapshot"
)

// mockStore implements SnapshotStore for testing.
type mockStore struct {
	snap       *snapshot.Snapshot
	currentErr error
	refreshErr error
	refreshed  int
}

func (m *mockStore) Current() (*snapshot.Snapshot, error) {
	if m.currentErr != nil {
		return nil, m.currentErr
	}
	if m.snap == nil {
		return nil, snapshot.ErrNoSnapshot
	}
	return m.snap, nil
}

func (m *mockStore) Refresh(context.Context) (*snapshot.Snapshot, error) {
	m.refreshed++
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return m.snap, nil
}

var fetchedAt = time.Date(2026, 2, 18, 15, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func sampleResults() []models.EvaluationResult {
	return []models.EvaluationResult{
		{ID: "r-1", ModelName: "modelA", AgentName: "agentX", BenchmarkName: "bench1", Accuracy: 90, StandardError: 1,
			EndedAt: ptr(fetchedAt.Add(-48 * time.Hour))},
		{ID: "r-2", ModelName: "modelA", AgentName: "agentX", BenchmarkName: "bench2", Accuracy: 70, StandardError: 2,
			BaseModelName: ptr("base"), BaseModelAccuracy: ptr(60.0)},
		{ID: "r-3", ModelName: "modelB", AgentName: "agentY", BenchmarkName: "bench1", Accuracy: 95, StandardError: 0.5,
			EndedAt: ptr(fetchedAt.Add(-time.Hour))},
		{ID: "r-4", ModelName: "modelB", AgentName: "agentY", BenchmarkName: "hidden", Accuracy: 10, StandardError: 0.5},
	}
}

func newLoadedStore(t *testing.T) *mockStore {
	t.Helper()
	snap, err := snapshot.Build(sampleResults(), fetchedAt)
	if err != nil {
		t.Fatal(err)
	}
	return &mockStore{snap: snap}
}

var testConfig = leaderboard.Config{
	Exclude: []string{"hidden"},
	Primary: "bench1",
}

var testView = leaderboard.ViewMode{Tab: leaderboard.TabAll, TopN: 10, RecentN: 10}

func serve(t *testing.T, store SnapshotStore, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	RegisterRoutes(mux, NewHandlers(store, testConfig, testView))
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestHandleHealth(t *testing.T) {
	rec := serve(t, &mockStore{}, http.MethodGet, "/api/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode[HealthResponse](t, rec)
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
	if resp.Version == "" {
		t.Error("expected non-empty version")
	}
}

func TestEndpointsUnavailableBeforeFirstSnapshot(t *testing.T) {
	for _, path := range []string{
		"/api/benchmark-results",
		"/api/benchmark-results/r-1",
		"/api/leaderboard-pivoted",
		"/api/leaderboard",
		"/api/facets",
		"/api/summary",
		"/api/benchmark-stats",
	} {
		rec := serve(t, &mockStore{}, http.MethodGet, path)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", path, rec.Code)
		}
	}
}

func TestStoreErrorIs500(t *testing.T) {
	rec := serve(t, &mockStore{currentErr: errors.New("boom")}, http.MethodGet, "/api/summary")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	errResp := decode[ErrorResponse](t, rec)
	if errResp.Code != http.StatusInternalServerError || !strings.Contains(errResp.Error, "boom") {
		t.Errorf("unexpected error response %+v", errResp)
	}
}

func TestHandleResults(t *testing.T) {
	rec := serve(t, newLoadedStore(t), http.MethodGet, "/api/benchmark-results")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	results := decode[[]models.EvaluationResult](t, rec)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if results[1].BaseModelAccuracy == nil || *results[1].BaseModelAccuracy != 60 {
		t.Errorf("expected baseModelAccuracy 60, got %v", results[1].BaseModelAccuracy)
	}
}

func TestHandleResultDetail(t *testing.T) {
	store := newLoadedStore(t)

	rec := serve(t, store, http.MethodGet, "/api/benchmark-results/r-3")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if r := decode[models.EvaluationResult](t, rec); r.ModelName != "modelB" {
		t.Errorf("expected modelB, got %q", r.ModelName)
	}

	rec = serve(t, store, http.MethodGet, "/api/benchmark-results/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestWritesNotSupported(t *testing.T) {
	store := newLoadedStore(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/benchmark-results"},
		{http.MethodDelete, "/api/benchmark-results/r-1"},
	} {
		rec := serve(t, store, tc.method, tc.path)
		if rec.Code != http.StatusNotImplemented {
			t.Errorf("%s %s: expected 501, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestHandlePivoted(t *testing.T) {
	rec := serve(t, newLoadedStore(t), http.MethodGet, "/api/leaderboard-pivoted")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rows := decode[[]models.PivotedRow](t, rec)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ModelName != "modelA" || rows[1].ModelName != "modelB" {
		t.Errorf("expected modelA, modelB order, got %s, %s", rows[0].ModelName, rows[1].ModelName)
	}
	imp := rows[0].Benchmarks["bench2"].Improvement
	if imp == nil || *imp != 10 {
		t.Errorf("expected improvement 10, got %v", imp)
	}
	if rows[0].Benchmarks["bench1"].Improvement != nil {
		t.Error("expected no improvement without base accuracy")
	}
}

func TestHandleLeaderboard_SortAndFilter(t *testing.T) {
	store := newLoadedStore(t)

	rec := serve(t, store, http.MethodGet, "/api/leaderboard?sort=bench1&dir=desc")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[LeaderboardResponse](t, rec)
	if len(resp.Rows) != 2 || resp.Rows[0].ModelName != "modelB" || resp.Rows[1].ModelName != "modelA" {
		t.Fatalf("unexpected order %+v", resp.Rows)
	}
	if strings.Join(resp.Columns, ",") != "bench1,bench2" {
		t.Errorf("expected columns bench1,bench2, got %v", resp.Columns)
	}
	if resp.Total != 2 || resp.Tab != leaderboard.TabAll {
		t.Errorf("unexpected total/tab %d/%s", resp.Total, resp.Tab)
	}
	if !resp.FetchedAt.Equal(fetchedAt) {
		t.Errorf("expected fetchedAt %s, got %s", fetchedAt, resp.FetchedAt)
	}

	rec = serve(t, store, http.MethodGet, "/api/leaderboard?model=MODELA&sort=bench1&dir=desc")
	resp = decode[LeaderboardResponse](t, rec)
	if len(resp.Rows) != 1 || resp.Rows[0].ModelName != "modelA" {
		t.Fatalf("expected only modelA, got %+v", resp.Rows)
	}
}

func TestHandleLeaderboard_InclusionAndColumns(t *testing.T) {
	rec := serve(t, newLoadedStore(t), http.MethodGet,
		"/api/leaderboard?agents=agentY&benchmarks=bench1&benchmarks=hidden")
	resp := decode[LeaderboardResponse](t, rec)
	if len(resp.Rows) != 1 || resp.Rows[0].AgentName != "agentY" {
		t.Fatalf("expected only agentY, got %+v", resp.Rows)
	}
	if strings.Join(resp.Columns, ",") != "bench1" {
		t.Errorf("excluded benchmark must never be a column, got %v", resp.Columns)
	}
}

func TestHandleLeaderboard_CuratedTab(t *testing.T) {
	rec := serve(t, newLoadedStore(t), http.MethodGet, "/api/leaderboard?tab=curated&topN=0&recentN=1")
	resp := decode[LeaderboardResponse](t, rec)
	if len(resp.Rows) != 1 || resp.Rows[0].ModelName != "modelB" {
		t.Fatalf("expected most recent modelB, got %+v", resp.Rows)
	}
	if resp.View.RecentN != 1 || resp.View.TopN != 0 {
		t.Errorf("unexpected view echo %+v", resp.View)
	}
}

func TestHandleLeaderboard_ImprovementMetric(t *testing.T) {
	rec := serve(t, newLoadedStore(t), http.MethodGet, "/api/leaderboard?sort=bench2&dir=desc&metric.bench2=improvement")
	resp := decode[LeaderboardResponse](t, rec)
	if resp.Sort.Metric("bench2") != leaderboard.MetricImprovement {
		t.Errorf("expected improvement metric echoed, got %+v", resp.Sort)
	}
	if len(resp.Rows) != 2 || resp.Rows[0].ModelName != "modelA" {
		t.Fatalf("row with improvement should lead, got %+v", resp.Rows)
	}
}

func TestHandleLeaderboard_BadQuery(t *testing.T) {
	for _, q := range []string{"dir=up", "tab=recent", "topN=-1", "metric.bench1=speed"} {
		rec := serve(t, newLoadedStore(t), http.MethodGet, "/api/leaderboard?"+q)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestHandleFacets(t *testing.T) {
	rec := serve(t, newLoadedStore(t), http.MethodGet, "/api/facets")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode[FacetsResponse](t, rec)
	if strings.Join(resp.Models, ",") != "modelA,modelB" {
		t.Errorf("unexpected models %v", resp.Models)
	}
	if resp.Primary != "bench1" {
		t.Errorf("expected primary bench1, got %q", resp.Primary)
	}
	var hidden *leaderboard.BenchmarkFacet
	for i := range resp.Benchmarks {
		if resp.Benchmarks[i].Name == "hidden" {
			hidden = &resp.Benchmarks[i]
		}
	}
	if hidden == nil || !hidden.Excluded {
		t.Errorf("expected hidden benchmark flagged as excluded, got %+v", resp.Benchmarks)
	}
}

func TestHandleSummary(t *testing.T) {
	rec := serve(t, newLoadedStore(t), http.MethodGet, "/api/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode[SummaryResponse](t, rec)
	if resp.Results != 4 || resp.Rows != 2 {
		t.Errorf("expected 4 results / 2 rows, got %d / %d", resp.Results, resp.Rows)
	}
	if resp.ImprovedCells != 1 {
		t.Errorf("expected 1 improved cell, got %d", resp.ImprovedCells)
	}
}

func TestHandleBenchmarkStats(t *testing.T) {
	rec := serve(t, newLoadedStore(t), http.MethodGet, "/api/benchmark-stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decode[BenchmarkStatsResponse](t, rec)
	if resp.Primary != "bench1" {
		t.Errorf("expected primary bench1, got %q", resp.Primary)
	}
	if len(resp.Benchmarks) != 2 {
		t.Fatalf("expected 2 benchmarks (hidden excluded), got %d", len(resp.Benchmarks))
	}

	b1 := resp.Benchmarks[0]
	if b1.Benchmark != "bench1" || b1.Rows != 2 {
		t.Errorf("unexpected bench1 stats %+v", b1)
	}
	if b1.Leader == nil || b1.Leader.ModelName != "modelB" {
		t.Errorf("expected modelB to lead bench1, got %+v", b1.Leader)
	}
	if b1.Improvement != nil {
		t.Errorf("bench1 has no base model results, got %+v", b1.Improvement)
	}

	b2 := resp.Benchmarks[1]
	if b2.Improvement == nil || b2.Improvement.Cells != 1 || b2.Improvement.Mean != 10 {
		t.Errorf("unexpected bench2 improvement %+v", b2.Improvement)
	}
	if !resp.FetchedAt.Equal(fetchedAt) {
		t.Errorf("expected fetchedAt %v, got %v", fetchedAt, resp.FetchedAt)
	}
}

func TestHandleRefresh(t *testing.T) {
	store := newLoadedStore(t)
	rec := serve(t, store, http.MethodPost, "/api/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.refreshed != 1 {
		t.Errorf("expected one refresh, got %d", store.refreshed)
	}

	store.refreshErr = errors.New("upstream down")
	rec = serve(t, store, http.MethodPost, "/api/refresh")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	// The previous snapshot is still served.
	rec = serve(t, store, http.MethodGet, "/api/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after failed refresh, got %d", rec.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := CORSMiddleware(next, "http://localhost:5173")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected request passed through, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header for unknown origin, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/leaderboard", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rec.Code)
	}
}
