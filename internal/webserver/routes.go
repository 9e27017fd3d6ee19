package webserver

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/leaderboard"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/report"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/snapshot"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/webapi"
)

// registerRoutes sets up the API and the HTML page on the given mux.
func registerRoutes(mux *http.ServeMux, cfg Config) {
	webapi.RegisterRoutes(mux, webapi.NewHandlers(cfg.Store, cfg.Leaderboard, cfg.View))
	mux.HandleFunc("/api/", handleUnknownAPI)
	mux.Handle("GET /{$}", pageHandler(cfg))
}

// handleUnknownAPI keeps unmatched /api paths answering in JSON.
func handleUnknownAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"not found","code":404}` + "\n")) //nolint:errcheck
}

// pageHandler renders the configured default view of the current snapshot
// as a standalone HTML page. Query parameters are read the same way as on
// /api/leaderboard.
func pageHandler(cfg Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filter, sort, view, err := webapi.ParseQuery(r.URL.Query(), cfg.Leaderboard, cfg.View)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		snap, err := cfg.Store.Current()
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, snapshot.ErrNoSnapshot) {
				status = http.StatusServiceUnavailable
			}
			http.Error(w, err.Error(), status)
			return
		}

		res := leaderboard.Render(snap.Rows, cfg.Leaderboard, filter, sort, view)
		var buf bytes.Buffer
		if err := report.WriteHTML(&buf, res, report.Options{
			Title:       cfg.Title,
			Primary:     cfg.Leaderboard.Primary,
			GeneratedAt: snap.FetchedAt,
		}); err != nil {
			cfg.Logger.Error("rendering leaderboard page", "error", err)
			http.Error(w, "could not render leaderboard", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		buf.WriteTo(w) //nolint:errcheck
	})
}
