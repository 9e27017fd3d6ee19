package webapi

import (
	"context"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/snapshot"
)

// SnapshotStore provides access to the current leaderboard snapshot.
// *snapshot.Holder implements it.
type SnapshotStore interface {
	// Current returns the last good snapshot or snapshot.ErrNoSnapshot.
	Current() (*snapshot.Snapshot, error)
	// Refresh re-fetches from the upstream source.
	Refresh(ctx context.Context) (*snapshot.Snapshot, error)
}

var _ SnapshotStore = (*snapshot.Holder)(nil)
