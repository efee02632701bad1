package domain

import "time"

// Maximum number of history entries retained; oldest evicted first.
const HistoryLimit = 10

// HistoryEntry records one successful route search so it can be
// replayed without re-geocoding. Entries are never mutated; they are
// destroyed only by eviction or an explicit clear.
type HistoryEntry struct {
	ID              int64
	StartQuery      string
	DestQuery       string
	StartCoordinate Coordinate
	DestCoordinate  Coordinate
	CreatedAt       time.Time
}
