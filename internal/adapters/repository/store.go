// Package repository persists the ranking session and swipe state as file
// artifacts and provides point-in-time snapshots of them.
package repository

import (
	"context"
	"time"

	"github.com/halden/reelrank/internal/domain/item"
	"github.com/halden/reelrank/internal/domain/session"
	"github.com/halden/reelrank/internal/domain/swipe"
)

// SnapshotInfo describes one named snapshot.
type SnapshotInfo struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store provides serialized access to the ranking state. Every mutating
// operation runs load -> normalize -> mutate -> save as one unit under the
// session lock; reads may run concurrently with each other but not with an
// in-flight write.
type Store interface {
	// LoadSession returns the normalized live session, or ErrNoSession.
	LoadSession(ctx context.Context) (*session.Session, error)

	// UpdateSession applies fn to the normalized live session and persists
	// the result atomically with respect to other store operations.
	UpdateSession(ctx context.Context, fn func(*session.Session) error) (*session.Session, error)

	// ReplaceSession overwrites the live session wholesale.
	ReplaceSession(ctx context.Context, s *session.Session) (*session.Session, error)

	// LoadSwipeState returns the live swipe state with progress records
	// ensured, or ErrNoSwipeState.
	LoadSwipeState(ctx context.Context) (*swipe.State, error)

	// UpdateSwipeState applies fn to the live swipe state and persists it.
	UpdateSwipeState(ctx context.Context, fn func(*swipe.State) error) (*swipe.State, error)

	// ReplaceSwipeState overwrites the live swipe state wholesale.
	ReplaceSwipeState(ctx context.Context, st *swipe.State) (*swipe.State, error)

	// CreateSnapshot copies the live artifacts into a new snapshot keyed by
	// the sanitized name. Fails with ErrSnapshotExists on a name collision
	// and ErrNoSession when there is nothing to capture.
	CreateSnapshot(ctx context.Context, name string) (SnapshotInfo, error)

	// LoadSnapshot overwrites the live artifacts with the named snapshot's
	// copies and returns the freshly normalized session.
	LoadSnapshot(ctx context.Context, name string) (*session.Session, error)

	// ListSnapshots returns known snapshots, newest first.
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)

	// WriteMovieList exports the current title list as the CSV artifact.
	WriteMovieList(ctx context.Context, items []item.Item) error

	// ClearPosters empties the poster directory. Best effort: failures are
	// logged, never propagated.
	ClearPosters(ctx context.Context)

	// Bootstrap prepares the data directories and writes an empty swipe
	// state if none exists yet.
	Bootstrap(ctx context.Context) error
}
