package ports

import (
	"context"
	"map-route-service/internal/domain"
)

// HistoryCandidate carries the fields of a search about to be recorded.
// The store assigns the ID and creation timestamp.
type HistoryCandidate struct {
	StartQuery      string
	DestQuery       string
	StartCoordinate domain.Coordinate
	DestCoordinate  domain.Coordinate
}

// Durable, bounded, deduplicated record of past searches.
type HistoryStore interface {
	// Record inserts at the front, removing any prior entry with the
	// same (start, destination) query pair, then truncates to the most
	// recent domain.HistoryLimit entries. A failed persist degrades to
	// in-memory-only and reports domain.ErrPersistenceDegraded; the
	// entry is still recorded.
	Record(ctx context.Context, c HistoryCandidate) (domain.HistoryEntry, error)

	// List returns entries most recent first.
	List(ctx context.Context) ([]domain.HistoryEntry, error)

	// Clear empties the store.
	Clear(ctx context.Context) error

	// Replay returns the stored entry by id so a route can be
	// re-driven without geocoding.
	Replay(ctx context.Context, id int64) (domain.HistoryEntry, error)
}
