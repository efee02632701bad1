package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"map-route-service/internal/domain"
)

// SQLite-backed persistence for the search history. The whole list is
// rewritten on every mutation; at ten rows this is cheaper than
// tracking positional updates.
type sqliteBackend struct {
	db *sql.DB
}

// NewSqliteStore loads the persisted history and returns a Store
// mirroring it in memory.
func NewSqliteStore(ctx context.Context, db *sql.DB) (*Store, error) {
	return newStore(ctx, &sqliteBackend{db: db}, time.Now)
}

// InitSchema creates the history table. The DDL is portable between
// SQLite and Postgres so cmd/dbtool can reuse it.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS search_history (
		id          BIGINT PRIMARY KEY,
		start_query TEXT NOT NULL,
		dest_query  TEXT NOT NULL,
		start_lat   DOUBLE PRECISION NOT NULL,
		start_lon   DOUBLE PRECISION NOT NULL,
		dest_lat    DOUBLE PRECISION NOT NULL,
		dest_lon    DOUBLE PRECISION NOT NULL,
		created_at  BIGINT NOT NULL
	);
	`)
	if err != nil {
		return fmt.Errorf("init history schema: %w", err)
	}
	return nil
}

func (b *sqliteBackend) load(ctx context.Context) ([]domain.HistoryEntry, error) {
	rows, err := b.db.QueryContext(ctx, `
	SELECT
		id,
		start_query,
		dest_query,
		start_lat,
		start_lon,
		dest_lat,
		dest_lon,
		created_at
	FROM search_history
	ORDER BY id DESC;
	`)
	if err != nil {
		return nil, fmt.Errorf("load history: query: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var createdAt int64
		if err := rows.Scan(
			&e.ID,
			&e.StartQuery,
			&e.DestQuery,
			&e.StartCoordinate.Lat,
			&e.StartCoordinate.Lon,
			&e.DestCoordinate.Lat,
			&e.DestCoordinate.Lon,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("load history: scan: %w", err)
		}
		e.CreatedAt = time.Unix(0, createdAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load history: rows: %w", err)
	}
	return out, nil
}

func (b *sqliteBackend) save(ctx context.Context, entries []domain.HistoryEntry) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save history: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM search_history;`); err != nil {
		return fmt.Errorf("save history: delete: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO search_history (
		id,
		start_query,
		dest_query,
		start_lat,
		start_lon,
		dest_lat,
		dest_lon,
		created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("save history: prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.ID,
			e.StartQuery,
			e.DestQuery,
			e.StartCoordinate.Lat,
			e.StartCoordinate.Lon,
			e.DestCoordinate.Lat,
			e.DestCoordinate.Lon,
			e.CreatedAt.UnixNano(),
		); err != nil {
			return fmt.Errorf("save history: insert id=%d: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save history: commit: %w", err)
	}
	return nil
}

func (b *sqliteBackend) clear(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM search_history;`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
