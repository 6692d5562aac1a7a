package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
)

// SQLGeocodeCache is a Postgres-backed cache mapping coordinates to
// reverse-geocoded addresses. Same contract as the SQLite variant; deployed
// installs that share a cache across instances use this one.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// Fetch the cached address for a pin.
func (s *SQLGeocodeCache) Get(ctx context.Context, pin domain.Pin) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

	if s.DB == nil {
		return "", false, errors.New("geocode cache: db is nil")
	}

	q := `
	SELECT address
    FROM geocode_cache
    WHERE coord_key = $1;
	`

	var address string
	err = s.DB.QueryRowContext(ctx, q, coordKey(pin)).Scan(&address)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	return address, true, nil
}

// Store a resolved address for a pin.
func (s *SQLGeocodeCache) Put(ctx context.Context, pin domain.Pin, address string) (err error) {
	defer obs.Time(ctx, "geocode.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if address == "" {
		return errors.New("insert geocode cache: empty address")
	}

	q := `
	INSERT INTO geocode_cache (coord_key, lat, lon, address)
    VALUES ($1, $2, $3, $4)
	ON CONFLICT (coord_key) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		address = EXCLUDED.address;
	`

	if _, err := s.DB.ExecContext(ctx, q, coordKey(pin), pin.Lat, pin.Lng, address); err != nil {
		return fmt.Errorf("insert geocode cache coord=%q: %w", coordKey(pin), err)
	}

	return nil
}
