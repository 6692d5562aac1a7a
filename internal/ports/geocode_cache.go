package ports

import (
	"context"
	"route-planner-service/internal/domain"
)

// Port: a boundary for persisting reverse-geocoded addresses so repeated
// lookups for the same coordinate skip the external API. Keys are the
// coordinate rounded to five decimals (about one meter), matching the
// precision pins are shared and displayed at.
type GeocodeCache interface {
	// Get returns the cached address for a pin, and whether one was found.
	Get(ctx context.Context, pin domain.Pin) (string, bool, error)
	// Put stores a resolved address for a pin.
	Put(ctx context.Context, pin domain.Pin, address string) error
}
