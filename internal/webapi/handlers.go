package webapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/leaderboard"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/snapshot"
)

// Version is set at build time or defaults to dev.
var Version = "0.1.0"

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	store SnapshotStore
	cfg   leaderboard.Config
	view  leaderboard.ViewMode
}

// NewHandlers creates a new Handlers with the given store, benchmark
// configuration and default view mode.
func NewHandlers(store SnapshotStore, cfg leaderboard.Config, view leaderboard.ViewMode) *Handlers {
	return &Handlers{store: store, cfg: cfg, view: view}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleResults returns every flat result of the current snapshot.
func (h *Handlers) HandleResults(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Results)
}

// HandleResultDetail returns one flat result by id.
func (h *Handlers) HandleResultDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "result id is required")
		return
	}
	snap, ok := h.current(w)
	if !ok {
		return
	}
	res, err := snap.Find(id)
	if err != nil {
		if errors.Is(err, snapshot.ErrResultNotFound) {
			writeError(w, http.StatusNotFound, "result not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleNotSupported answers write requests; results are read-only here.
func (h *Handlers) HandleNotSupported(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotImplemented, "results are read-only; writes go to the upstream store")
}

// HandlePivoted returns every pivoted row ordered by model, then agent.
func (h *Handlers) HandlePivoted(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, leaderboard.SortByIdentity(snap.Rows))
}

// HandleLeaderboard renders the leaderboard for the filter, sort and view
// state given in the query string.
func (h *Handlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	filter, sort, view, err := ParseQuery(r.URL.Query(), h.cfg, h.view)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, ok := h.current(w)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, LeaderboardResponse{
		Result:       leaderboard.Render(snap.Rows, h.cfg, filter, sort, view),
		Filter:       filter,
		Sort:         sort,
		View:         view,
		SnapshotInfo: info(snap),
	})
}

// HandleFacets returns the distinct values for each filter control.
func (h *Handlers) HandleFacets(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, FacetsResponse{
		FacetSet:       leaderboard.Facets(snap.Rows, h.cfg.Exclude),
		Primary:        h.cfg.Primary,
		DefaultVisible: h.cfg.DefaultFilter().Benchmarks,
	})
}

// HandleSummary returns aggregate counts for the current snapshot.
func (h *Handlers) HandleSummary(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse{Summary: snap.Summary, SnapshotInfo: info(snap)})
}

// HandleBenchmarkStats returns per-benchmark statistics for the current
// snapshot. Excluded benchmarks are omitted.
func (h *Handlers) HandleBenchmarkStats(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, BenchmarkStatsResponse{
		Benchmarks:   leaderboard.BenchmarkStatistics(snap.Rows, h.cfg.Exclude),
		Primary:      h.cfg.Primary,
		SnapshotInfo: info(snap),
	})
}

// HandleRefresh re-fetches from upstream. On failure the previous snapshot
// keeps being served and 502 is returned.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Refresh(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse{Summary: snap.Summary, SnapshotInfo: info(snap)})
}

// current fetches the snapshot or writes the error response.
func (h *Handlers) current(w http.ResponseWriter) (*snapshot.Snapshot, bool) {
	snap, err := h.store.Current()
	if err != nil {
		if errors.Is(err, snapshot.ErrNoSnapshot) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return snap, true
}

func info(snap *snapshot.Snapshot) SnapshotInfo {
	return SnapshotInfo{FetchedAt: snap.FetchedAt, Cached: snap.Cached}
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/benchmark-results", h.HandleResults)
	mux.HandleFunc("GET /api/benchmark-results/{id}", h.HandleResultDetail)
	mux.HandleFunc("POST /api/benchmark-results", h.HandleNotSupported)
	mux.HandleFunc("DELETE /api/benchmark-results/{id}", h.HandleNotSupported)
	mux.HandleFunc("GET /api/leaderboard-pivoted", h.HandlePivoted)
	mux.HandleFunc("GET /api/leaderboard", h.HandleLeaderboard)
	mux.HandleFunc("GET /api/facets", h.HandleFacets)
	mux.HandleFunc("GET /api/summary", h.HandleSummary)
	mux.HandleFunc("GET /api/benchmark-stats", h.HandleBenchmarkStats)
	mux.HandleFunc("POST /api/refresh", h.HandleRefresh)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
