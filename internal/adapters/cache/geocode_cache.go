package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"map-route-service/internal/domain"
	"map-route-service/internal/platform/obs"
	"map-route-service/internal/ports"
)

// CachedGeocoder decorates a live geocoder with a persistent SQLite
// cache keyed by the normalized query. Cache write failures are logged
// and never surfaced; a cache read failure falls through to the live
// lookup.
type CachedGeocoder struct {
	inner ports.Geocoder
	db    *sql.DB
}

func NewCachedGeocoder(inner ports.Geocoder, db *sql.DB) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, db: db}
}

// InitSchema creates the geocode cache table.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS geocode_cache (
		query        TEXT PRIMARY KEY,
		lat          DOUBLE PRECISION NOT NULL,
		lon          DOUBLE PRECISION NOT NULL,
		display_name TEXT NOT NULL
	);
	`)
	if err != nil {
		return fmt.Errorf("init geocode cache schema: %w", err)
	}
	return nil
}

func (c *CachedGeocoder) Resolve(ctx context.Context, query string) (_ domain.ResolvedPlace, err error) {
	defer obs.Time(ctx, "geocode.cache.Resolve")(&err)

	norm := strings.Join(strings.Fields(query), " ")
	if norm == "" {
		return domain.ResolvedPlace{}, domain.ErrEmptyInput
	}

	if place, ok := c.get(ctx, norm); ok {
		return place, nil
	}

	place, err := c.inner.Resolve(ctx, norm)
	if err != nil {
		return domain.ResolvedPlace{}, err
	}

	// Only successful resolutions are cached; NotFound stays live so
	// newly mapped places are picked up.
	c.put(ctx, place)
	return place, nil
}

func (c *CachedGeocoder) get(ctx context.Context, norm string) (domain.ResolvedPlace, bool) {
	row := c.db.QueryRowContext(ctx, `
	SELECT lat, lon, display_name
	FROM geocode_cache
	WHERE query = ?;
	`, norm)

	var place domain.ResolvedPlace
	place.Query = norm
	err := row.Scan(&place.Coordinate.Lat, &place.Coordinate.Lon, &place.DisplayName)
	switch {
	case err == sql.ErrNoRows:
		return domain.ResolvedPlace{}, false
	case err != nil:
		log.Printf("geocode cache read failed: %v", err)
		return domain.ResolvedPlace{}, false
	}
	return place, true
}

func (c *CachedGeocoder) put(ctx context.Context, place domain.ResolvedPlace) {
	_, err := c.db.ExecContext(ctx, `
	INSERT INTO geocode_cache (query, lat, lon, display_name)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (query) DO UPDATE SET
		lat = excluded.lat,
		lon = excluded.lon,
		display_name = excluded.display_name;
	`, place.Query, place.Coordinate.Lat, place.Coordinate.Lon, place.DisplayName)
	if err != nil {
		log.Printf("geocode cache write failed: %v", err)
	}
}
