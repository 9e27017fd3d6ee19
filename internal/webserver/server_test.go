package webserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/leaderboard"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/snapshot"
)

type staticStore struct {
	snap *snapshot.Snapshot
}

func (s *staticStore) Current() (*snapshot.Snapshot, error) {
	if s.snap == nil {
		return nil, snapshot.ErrNoSnapshot
	}
	return s.snap, nil
}

func (s *staticStore) Refresh(context.Context) (*snapshot.Snapshot, error) {
	return s.Current()
}

func loadedStore(t *testing.T, n int) *staticStore {
	t.Helper()
	results := make([]models.EvaluationResult, 0, n)
	for i := range n {
		results = append(results, models.EvaluationResult{
			ID:            fmt.Sprintf("r-%03d", i),
			ModelName:     fmt.Sprintf("model-%03d", i),
			AgentName:     "terminus",
			BenchmarkName: "dev_set_71_tasks",
			Accuracy:      float64(i % 100),
			StandardError: 1,
		})
	}
	snap, err := snapshot.Build(results, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return &staticStore{snap: snap}
}

func newTestServer(t *testing.T, store *staticStore) http.Handler {
	t.Helper()
	srv, err := New(Config{
		Store:          store,
		AllowedOrigins: []string{"http://localhost:5173"},
		Leaderboard:    leaderboard.Config{Primary: "dev_set_71_tasks"},
		View:           leaderboard.ViewMode{Tab: leaderboard.TabAll, TopN: 10, RecentN: 10},
		Title:          "Test Board",
	})
	require.NoError(t, err)
	return srv.Handler()
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	srv, err := New(Config{Store: &staticStore{}})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5000", srv.Addr())
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestServer(t, &staticStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "ok", body["status"])
}

func TestUnknownAPIPathIsJSON404(t *testing.T) {
	handler := newTestServer(t, &staticStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestResponsesAreGzipped(t *testing.T) {
	handler := newTestServer(t, loadedStore(t, 200))

	req := httptest.NewRequest(http.MethodGet, "/api/benchmark-results", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	var results []models.EvaluationResult
	require.NoError(t, json.NewDecoder(zr).Decode(&results))
	assert.Len(t, results, 200)
}

func TestResponsesUncompressedWithoutAcceptEncoding(t *testing.T) {
	handler := newTestServer(t, loadedStore(t, 200))

	req := httptest.NewRequest(http.MethodGet, "/api/benchmark-results", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}

func TestCORSAllowedOrigin(t *testing.T) {
	handler := newTestServer(t, &staticStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPageRendersLeaderboard(t *testing.T) {
	handler := newTestServer(t, loadedStore(t, 3))

	req := httptest.NewRequest(http.MethodGet, "/?sort=dev_set_71_tasks&dir=desc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Test Board</title>")
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "model-002")
}

func TestPageUnavailableBeforeSnapshot(t *testing.T) {
	handler := newTestServer(t, &staticStore{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPageRejectsBadQuery(t *testing.T) {
	handler := newTestServer(t, loadedStore(t, 1))

	req := httptest.NewRequest(http.MethodGet, "/?tab=sideways", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv, err := New(Config{Store: loadedStore(t, 1)})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()              //nolint:errcheck
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
