package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
)

// Known preference keys and theme values (original tile layers).
const (
	KeyTheme = "theme"

	ThemeStreet    = "street"
	ThemeSatellite = "satellite"
	ThemeTopo      = "topo"
)

// ValidTheme reports whether v names a known tile theme.
func ValidTheme(v string) bool {
	return v == ThemeStreet || v == ThemeSatellite || v == ThemeTopo
}

// SqlitePrefs is a key-value preference store persisted next to the
// history. Like the history store it degrades to in-memory-only when a
// write fails.
type SqlitePrefs struct {
	mu       sync.Mutex
	db       *sql.DB
	cache    map[string]string
	degraded bool
}

// InitSchema creates the preferences table; DDL is portable between
// SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS preferences (
		pref_key   TEXT PRIMARY KEY,
		pref_value TEXT NOT NULL
	);
	`)
	if err != nil {
		return fmt.Errorf("init preferences schema: %w", err)
	}
	return nil
}

// NewSqlitePrefs reads all stored preferences once at startup.
func NewSqlitePrefs(ctx context.Context, db *sql.DB) (*SqlitePrefs, error) {
	p := &SqlitePrefs{db: db, cache: map[string]string{}}

	rows, err := db.QueryContext(ctx, `SELECT pref_key, pref_value FROM preferences;`)
	if err != nil {
		log.Printf("prefs: load failed, continuing in-memory only: %v", err)
		p.degraded = true
		return p, nil
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("load preferences: scan: %w", err)
		}
		p.cache[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load preferences: rows: %w", err)
	}
	return p, nil
}

func (p *SqlitePrefs) Get(ctx context.Context, key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.cache[key]
	return v, ok, nil
}

func (p *SqlitePrefs) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("prefs: empty key")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.cache[key] = value

	if p.degraded {
		return nil
	}

	// Upsert form accepted by both SQLite and Postgres.
	_, err := p.db.ExecContext(ctx, `
	INSERT INTO preferences (pref_key, pref_value)
	VALUES (?, ?)
	ON CONFLICT (pref_key) DO UPDATE SET pref_value = excluded.pref_value;
	`, key, value)
	if err != nil {
		p.degraded = true
		log.Printf("prefs: persist failed, falling back to in-memory for this session: %v", err)
	}
	return nil
}
