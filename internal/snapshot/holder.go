// Package snapshot holds the last good set of fetched results and their
// pivoted rows. Readers always see a complete snapshot; a failed refresh
// leaves the previous one in place.
package snapshot

//go:generate go tool mockgen -destination=mock_source_test.go -package=snapshot github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/source ResultSource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/cache"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/leaderboard"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/source"
)

var (
	// ErrNoSnapshot is returned before the first successful fetch.
	ErrNoSnapshot = errors.New("no leaderboard snapshot loaded yet")
	// ErrResultNotFound is returned when no flat result has the requested ID.
	ErrResultNotFound = errors.New("result not found")
)

// Snapshot is one immutable fetch: the flat results, their pivoted rows and
// a summary. Callers must not modify it.
type Snapshot struct {
	Results   []models.EvaluationResult
	Rows      []models.PivotedRow
	Summary   leaderboard.Summary
	FetchedAt time.Time
	// Cached is set when the snapshot was restored from disk rather than
	// fetched from the source.
	Cached bool

	byID map[string]int
}

// Find returns the flat result with id.
func (s *Snapshot) Find(id string) (models.EvaluationResult, error) {
	i, ok := s.byID[id]
	if !ok {
		return models.EvaluationResult{}, fmt.Errorf("%w: %s", ErrResultNotFound, id)
	}
	return s.Results[i], nil
}

// Build groups results into a new snapshot.
func Build(results []models.EvaluationResult, fetchedAt time.Time) (*Snapshot, error) {
	rows, err := leaderboard.Group(results)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]int, len(results))
	for i := range results {
		byID[results[i].ID] = i
	}
	return &Snapshot{
		Results:   results,
		Rows:      rows,
		Summary:   leaderboard.Summarize(results, rows),
		FetchedAt: fetchedAt,
		byID:      byID,
	}, nil
}

// Option configures a Holder.
type Option func(*Holder)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Holder) { h.logger = l }
}

// WithCache persists every good snapshot under key and restores it when the
// source cannot be reached before any snapshot is loaded.
func WithCache(c *cache.Cache, key string) Option {
	return func(h *Holder) {
		h.cache = c
		h.cacheKey = key
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *Holder) { h.now = now }
}

// Holder serves the current snapshot and coordinates refreshes. Concurrent
// Refresh calls share a single fetch.
type Holder struct {
	src      source.ResultSource
	logger   *slog.Logger
	cache    *cache.Cache
	cacheKey string
	now      func() time.Time

	group singleflight.Group

	mu      sync.RWMutex
	current *Snapshot
	lastErr error
}

// New creates a Holder reading from src. No fetch happens until Refresh.
func New(src source.ResultSource, opts ...Option) *Holder {
	h := &Holder{
		src:    src,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Current returns the last good snapshot or ErrNoSnapshot.
func (h *Holder) Current() (*Snapshot, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return nil, ErrNoSnapshot
	}
	return h.current, nil
}

// LastError returns the error of the most recent refresh, or nil.
func (h *Holder) LastError() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastErr
}

// Refresh fetches from the source and swaps in the new snapshot. On failure
// the previous snapshot stays current and the error is returned.
//
// Concurrent callers share one fetch. The fetch keeps the first caller's
// deadline but not its cancellation, so a caller that goes away does not
// fail the others; each caller still returns when its own ctx is done.
func (h *Holder) Refresh(ctx context.Context) (*Snapshot, error) {
	ch := h.group.DoChan("refresh", func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if deadline, ok := ctx.Deadline(); ok {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithDeadline(fetchCtx, deadline)
			defer cancel()
		}
		return h.refresh(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			h.logger.Debug("joined in-flight refresh")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (h *Holder) refresh(ctx context.Context) (*Snapshot, error) {
	start := h.now()
	results, err := h.src.Fetch(ctx)
	if err == nil {
		var snap *Snapshot
		snap, err = Build(results, h.now())
		if err == nil {
			h.store(snap, nil)
			h.logger.Info("leaderboard refreshed",
				"results", len(snap.Results),
				"rows", len(snap.Rows),
				"duration", h.now().Sub(start))
			h.persist(results)
			return snap, nil
		}
	}

	err = fmt.Errorf("refreshing leaderboard: %w", err)
	h.logger.Error("leaderboard refresh failed", "error", err)
	h.store(nil, err)
	// The cache only stands in for an unreachable source, never for
	// records that break the input contract.
	if !errors.Is(err, models.ErrInvalidResult) {
		h.restore()
	}
	return nil, err
}

// store records the outcome of a refresh. A nil snap keeps the current one.
func (h *Holder) store(snap *Snapshot, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if snap != nil {
		h.current = snap
	}
	h.lastErr = err
}

func (h *Holder) persist(results []models.EvaluationResult) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Put(h.cacheKey, results); err != nil {
		h.logger.Warn("could not cache snapshot", "error", err)
	}
}

// restore loads the cached snapshot when nothing has been served yet.
func (h *Holder) restore() {
	if h.cache == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current != nil {
		return
	}

	results, ok := h.cache.Get(h.cacheKey)
	if !ok {
		return
	}
	snap, err := Build(results, h.now())
	if err != nil {
		h.logger.Warn("discarding invalid cached snapshot", "error", err)
		return
	}
	snap.Cached = true
	h.current = snap
	h.logger.Warn("serving cached snapshot", "results", len(results))
}
