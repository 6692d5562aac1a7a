package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route-planner-service/internal/domain"
)

// SQLite backed cache mapping coordinates to reverse-geocoded addresses.
// Keys are the coordinate rounded to five decimals, so re-queries of the
// same pin hit the cache.
type SqliteGeocodeCache struct {
	DB *sql.DB
}

func NewSqliteGeocodeCache(db *sql.DB) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db}
}

// Fetch the cached address for a pin.
func (s *SqliteGeocodeCache) Get(ctx context.Context, pin domain.Pin) (string, bool, error) {
	if s.DB == nil {
		return "", false, errors.New("geocode cache: db is nil")
	}

	q := `
	SELECT address
    FROM geocode_cache
    WHERE coord_key = ?;
	`

	var address string
	err := s.DB.QueryRowContext(ctx, q, coordKey(pin)).Scan(&address)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	return address, true, nil
}

// Store a resolved address for a pin.
func (s *SqliteGeocodeCache) Put(ctx context.Context, pin domain.Pin, address string) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if address == "" {
		return errors.New("insert geocode cache: empty address")
	}

	q := `
	INSERT OR REPLACE INTO geocode_cache (
        coord_key,
        lat,
        lon,
        address
    )
    VALUES (?, ?, ?, ?);
	`

	if _, err := s.DB.ExecContext(ctx, q, coordKey(pin), pin.Lat, pin.Lng, address); err != nil {
		return fmt.Errorf("insert geocode cache coord=%q: %w", coordKey(pin), err)
	}

	return nil
}

// coordKey normalizes a pin to the cache key precision (five decimals,
// about one meter).
func coordKey(pin domain.Pin) string {
	return fmt.Sprintf("%.5f,%.5f", pin.Lat, pin.Lng)
}
