// Package storage persists per-session game state and the shared
// leaderboard. Sessions are stored as JSON blobs keyed by UUID; the
// leaderboard is one shared ordered sequence.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/grand-tour/pkg/leaderboard"
	"github.com/jwebster45206/grand-tour/pkg/state"
)

// Storage is the persistence boundary of the game core.
type Storage interface {
	// Ping tests the backing connection.
	Ping(ctx context.Context) error

	// Close closes the backing connection.
	Close() error

	// SavePlayerState persists a session's state blob.
	SavePlayerState(ctx context.Context, id uuid.UUID, ps *state.PlayerState) error

	// LoadPlayerState retrieves a session's state.
	// Returns nil if the session doesn't exist.
	LoadPlayerState(ctx context.Context, id uuid.UUID) (*state.PlayerState, error)

	// DeletePlayerState removes a session.
	DeletePlayerState(ctx context.Context, id uuid.UUID) error

	// RecordScore appends a finalized run to the leaderboard,
	// keeping it ordered and capped.
	RecordScore(ctx context.Context, entry leaderboard.Entry) error

	// TopScores returns at most k leaderboard entries, descending
	// by score.
	TopScores(ctx context.Context, k int) ([]leaderboard.Entry, error)
}
