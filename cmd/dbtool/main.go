package main

import (
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"map-route-service/internal/adapters/cache"
	"map-route-service/internal/adapters/history"
	"map-route-service/internal/adapters/prefs"
	"map-route-service/internal/platform/db"
)

// dbtool initializes the schema in a Postgres database for deployments
// that point the stores at DATABASE_URL instead of local SQLite.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := history.InitSchema(conn); err != nil {
		log.Fatalf("history schema initialization failed: %v", err)
	}
	if err := prefs.InitSchema(conn); err != nil {
		log.Fatalf("preferences schema initialization failed: %v", err)
	}
	if err := cache.InitSchema(conn); err != nil {
		log.Fatalf("geocode cache schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")
}
