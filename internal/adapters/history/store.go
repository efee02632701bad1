package history

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"map-route-service/internal/domain"
	"map-route-service/internal/ports"
)

// backend is the persistence seam. The production implementation is
// SQLite; tests substitute fakes, including failing ones.
type backend interface {
	load(ctx context.Context) ([]domain.HistoryEntry, error)
	save(ctx context.Context, entries []domain.HistoryEntry) error
	clear(ctx context.Context) error
}

// Store keeps the bounded, deduplicated search history. Reads are
// served from an in-memory mirror loaded at startup; every mutation is
// persisted through the backend. A failed persist flips the store to
// in-memory-only mode for the rest of the session.
type Store struct {
	mu       sync.Mutex
	backend  backend
	entries  []domain.HistoryEntry // most recent first
	degraded bool
	lastID   int64
	now      func() time.Time
}

func newStore(ctx context.Context, b backend, now func() time.Time) (*Store, error) {
	s := &Store{backend: b, now: now}

	entries, err := b.load(ctx)
	if err != nil {
		// Unreadable storage degrades straight to an empty in-memory
		// session rather than failing startup.
		log.Printf("history: load failed, continuing in-memory only: %v", err)
		s.degraded = true
		return s, nil
	}

	if len(entries) > domain.HistoryLimit {
		entries = entries[:domain.HistoryLimit]
	}
	s.entries = entries
	for _, e := range entries {
		if e.ID > s.lastID {
			s.lastID = e.ID
		}
	}
	return s, nil
}

// Record inserts at the front, removing any prior entry for the same
// (start, destination) pair, then truncates to the retention limit.
func (s *Store) Record(ctx context.Context, c ports.HistoryCandidate) (domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := domain.HistoryEntry{
		ID:              s.nextIDLocked(),
		StartQuery:      c.StartQuery,
		DestQuery:       c.DestQuery,
		StartCoordinate: c.StartCoordinate,
		DestCoordinate:  c.DestCoordinate,
		CreatedAt:       s.now(),
	}

	kept := make([]domain.HistoryEntry, 0, len(s.entries)+1)
	kept = append(kept, entry)
	for _, e := range s.entries {
		if e.StartQuery == c.StartQuery && e.DestQuery == c.DestQuery {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) > domain.HistoryLimit {
		kept = kept[:domain.HistoryLimit]
	}
	s.entries = kept

	if err := s.persistLocked(ctx); err != nil {
		return entry, err
	}
	return entry, nil
}

// List returns the entries most recent first.
func (s *Store) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Clear empties the store and persists the empty state.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil

	if s.degraded {
		return nil
	}
	if err := s.backend.clear(ctx); err != nil {
		s.degradeLocked(err)
		return fmt.Errorf("%w: clear: %v", domain.ErrPersistenceDegraded, err)
	}
	return nil
}

// Replay returns the stored entry verbatim so the orchestrator can
// re-drive a route fetch without geocoding.
func (s *Store) Replay(ctx context.Context, id int64) (domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.HistoryEntry{}, fmt.Errorf("history entry %d not found", id)
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.degraded {
		return nil
	}
	if err := s.backend.save(ctx, s.entries); err != nil {
		s.degradeLocked(err)
		return fmt.Errorf("%w: %v", domain.ErrPersistenceDegraded, err)
	}
	return nil
}

// degradeLocked is reported once; afterwards the session silently
// stays in-memory.
func (s *Store) degradeLocked(err error) {
	s.degraded = true
	log.Printf("history: persist failed, falling back to in-memory for this session: %v", err)
}

// Creation-time monotonic token. Wall clock nanos, bumped when two
// records land in the same nanosecond.
func (s *Store) nextIDLocked() int64 {
	id := s.now().UnixNano()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}
