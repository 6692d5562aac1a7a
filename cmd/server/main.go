package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"route-planner-service/internal/adapters/cache"
	"route-planner-service/internal/adapters/elevation"
	"route-planner-service/internal/adapters/geocode"
	"route-planner-service/internal/adapters/routing"
	"route-planner-service/internal/api"
	"route-planner-service/internal/platform/db"
	"route-planner-service/internal/ports"
	"route-planner-service/internal/services"
	"route-planner-service/internal/session"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (routing, elevation, geocoding, cache) behind
// ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := getEnv("PORT", "8080")
	proxyBase := getEnv("PROXY_BASE_URL", "https://proxy.routeplanner.dev")
	if strings.TrimSpace(proxyBase) == "" {
		log.Fatal("PROXY_BASE_URL is required")
	}

	geocodeDB, geocodeCache, err := openGeocodeCache()
	if err != nil {
		log.Fatal(err)
	}
	defer geocodeDB.Close()

	elevationProvider, err := buildElevationProvider(proxyBase)
	if err != nil {
		log.Fatal(err)
	}

	// ORS is tried first on every acquisition; GraphHopper covers its
	// failures.
	providers := []ports.RouteProvider{
		routing.NewORSRouteProvider(proxyBase),
		routing.NewGraphHopperRouteProvider(proxyBase),
	}
	acquisition := services.NewRouteAcquisition(providers, elevationProvider)

	geocoder := geocode.NewCachedGeocoder(geocode.NewMapTilerGeocoder(proxyBase), geocodeCache)
	store := session.NewStore(acquisition, geocoder)
	router := api.NewRouter(store, geocoder)

	// The write timeout covers report generation, which renders every page
	// before the first byte goes out.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openGeocodeCache selects the cache backend. Single-instance installs use
// the file-backed SQLite default; GEOCODE_CACHE=postgres switches to the
// shared table initialized by the dbtool binary.
func openGeocodeCache() (*sql.DB, ports.GeocodeCache, error) {
	switch backend := getEnv("GEOCODE_CACHE", "sqlite"); backend {
	case "sqlite":
		conn, err := db.OpenSQLite(getEnv("DB_PATH", "data/geocode.db"))
		if err != nil {
			return nil, nil, err
		}
		return conn, cache.NewSqliteGeocodeCache(conn), nil
	case "postgres":
		databaseURL := os.Getenv("DATABASE_URL")
		if strings.TrimSpace(databaseURL) == "" {
			return nil, nil, errors.New("DATABASE_URL is required when GEOCODE_CACHE=postgres")
		}
		conn, err := db.OpenPostgres(databaseURL)
		if err != nil {
			return nil, nil, err
		}
		return conn, cache.NewSQLGeocodeCache(conn), nil
	default:
		return nil, nil, fmt.Errorf("unknown GEOCODE_CACHE backend %q", backend)
	}
}

func buildElevationProvider(proxyBase string) (ports.ElevationProvider, error) {
	switch provider := getEnv("ELEVATION_PROVIDER", "open-elevation"); provider {
	case "open-elevation":
		return elevation.NewOpenElevationProvider(getEnv("OPEN_ELEVATION_URL", proxyBase)), nil
	case "srtm":
		return elevation.NewSRTMProvider(http.DefaultClient)
	default:
		return nil, fmt.Errorf("unknown ELEVATION_PROVIDER %q", provider)
	}
}
