package ports

import (
	"context"
	"route-planner-service/internal/domain"
)

// Place is one forward-geocoding candidate.
type Place struct {
	// Name is the concise label (street or POI name).
	Name string
	// PlaceName is the full display address.
	PlaceName string
	Center    domain.Pin
}

// SearchOptions bias and bound a forward-geocoding query.
type SearchOptions struct {
	// Proximity biases results toward a map center when non-nil.
	Proximity *domain.Pin
	// Limit caps the number of candidates; zero means provider default.
	Limit int
}

// Contract for the reverse/forward geocoding service.
type Geocoder interface {
	// ReverseGeocode returns the best-match place name for a coordinate.
	ReverseGeocode(ctx context.Context, pin domain.Pin) (string, error)
	// Search returns candidate places for a free-text query.
	Search(ctx context.Context, query string, opts SearchOptions) ([]Place, error)
}
