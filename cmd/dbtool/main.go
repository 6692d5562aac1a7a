package main

import (
	"database/sql"
	"log"
	"os"
	"route-planner-service/internal/platform/db"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

// postgresSchema mirrors db.SQLiteSchema for shared installs. Type names
// differ between the engines, so the statement is kept separately here.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS geocode_cache (
    coord_key TEXT PRIMARY KEY,
    lat       DOUBLE PRECISION NOT NULL,
    lon       DOUBLE PRECISION NOT NULL,
    address   TEXT NOT NULL
);
`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.OpenPostgres(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initSchema(conn); err != nil {
		log.Fatal(err)
	}
}

func initSchema(conn *sql.DB) error {
	log.Println("Initializing geocode cache schema...")
	if _, err := conn.Exec(postgresSchema); err != nil {
		return err
	}
	log.Println("Schema ready.")
	return nil
}
