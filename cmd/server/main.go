package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"map-route-service/internal/adapters/auth"
	"map-route-service/internal/adapters/cache"
	"map-route-service/internal/adapters/geo"
	"map-route-service/internal/adapters/history"
	"map-route-service/internal/adapters/poi"
	"map-route-service/internal/adapters/prefs"
	"map-route-service/internal/adapters/routing"
	"map-route-service/internal/api"
	"map-route-service/internal/config"
	"map-route-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, Nominatim, OSRM, Overpass)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	port := config.Get("PORT", "8080")

	nominatimURL := config.Get("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	osrmURL := config.Get("OSRM_URL", "https://router.project-osrm.org")
	overpassURL := config.Get("OVERPASS_URL", "https://overpass-api.de")
	userAgent := config.Get("GEOCODER_USER_AGENT", "map-route-service/1.0")

	loginUser := config.Get("LOGIN_USER", "user")
	loginPass := config.Get("LOGIN_PASS", "1234")

	db, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := initSchema(db); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// External-service fetchers share the same per-request timeout.
	const requestTimeout = 12 * time.Second
	geocoder := cache.NewCachedGeocoder(
		geo.NewNominatimGeocoder(nominatimURL, userAgent, requestTimeout),
		db,
	)
	router := routing.NewOSRMRouteProvider(osrmURL, requestTimeout)
	poiProvider := poi.NewOverpassPOIProvider(overpassURL, requestTimeout)

	historyStore, err := history.NewSqliteStore(ctx, db)
	if err != nil {
		log.Fatal(err)
	}
	prefStore, err := prefs.NewSqlitePrefs(ctx, db)
	if err != nil {
		log.Fatal(err)
	}

	gate := auth.NewStaticAuthenticator(loginUser, loginPass)
	orch := services.NewOrchestrator(geocoder, router, poiProvider, historyStore)

	handler := api.NewRouter(orch, historyStore, prefStore, gate)

	// Write timeout covers cold-cache searches hitting three external
	// services in sequence.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

func initSchema(db *sql.DB) error {
	if err := history.InitSchema(db); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	if err := prefs.InitSchema(db); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	if err := cache.InitSchema(db); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}
