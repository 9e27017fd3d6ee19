package webapi

import (
	"time"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/leaderboard"
)

// SnapshotInfo describes the snapshot a response was computed from.
type SnapshotInfo struct {
	FetchedAt time.Time `json:"fetchedAt"`
	Cached    bool      `json:"cached,omitempty"`
}

// LeaderboardResponse is a rendered leaderboard plus the state that
// produced it, so clients can echo it back.
type LeaderboardResponse struct {
	leaderboard.Result
	Filter leaderboard.FilterState `json:"filter"`
	Sort   leaderboard.SortState   `json:"sort"`
	View   leaderboard.ViewMode    `json:"view"`
	SnapshotInfo
}

// FacetsResponse lists filter options and the configured primary benchmark.
type FacetsResponse struct {
	leaderboard.FacetSet
	Primary        string   `json:"primary"`
	DefaultVisible []string `json:"defaultVisible"`
}

// SummaryResponse is the aggregate counts response.
type SummaryResponse struct {
	leaderboard.Summary
	SnapshotInfo
}

// BenchmarkStatsResponse lists statistics for every visible benchmark.
type BenchmarkStatsResponse struct {
	Benchmarks []leaderboard.BenchmarkStats `json:"benchmarks"`
	Primary    string                       `json:"primary"`
	SnapshotInfo
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
